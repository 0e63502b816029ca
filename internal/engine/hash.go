package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DomainSQL separates statement hashes from any other hash in the log.
// The version suffix allows the normalization to change later.
const DomainSQL = "rdfsql/sql/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SQLHash returns the content hash of a statement. Statements that differ
// only in Unicode normalization, surrounding whitespace, runs of
// whitespace or a trailing semicolon hash equally.
func SQLHash(sql string) string {
	return hashWithDomain(DomainSQL, []byte(NormalizeSQL(sql)))
}

// NormalizeSQL returns the NFC form of sql with whitespace runs outside
// quotes collapsed to one space and any trailing semicolon dropped.
func NormalizeSQL(sql string) string {
	sql = norm.NFC.String(sql)

	var sb strings.Builder
	var quote rune
	space := false
	for _, r := range strings.TrimSpace(sql) {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), "; ")
}
