package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalColumns converts the projected column labels to JSON TEXT.
// HTML escaping is disabled so labels round-trip byte for byte.
func marshalColumns(cols []string) (string, error) {
	if cols == nil {
		cols = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cols); err != nil {
		return "", fmt.Errorf("marshal columns: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalColumns parses JSON TEXT written by marshalColumns.
func unmarshalColumns(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var cols []string
	if err := json.Unmarshal([]byte(data), &cols); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	return cols, nil
}
