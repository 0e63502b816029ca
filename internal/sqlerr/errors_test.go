package sqlerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_MatchesWrappedErrors(t *testing.T) {
	err := fmt.Errorf("compile: %w", Unsupported("CASE"))

	assert.True(t, Is(err, CodeUnsupportedConstruct))
	assert.False(t, Is(err, CodeUnsupportedFunction))
	assert.False(t, Is(errors.New("plain"), CodeUnsupportedConstruct))
	assert.False(t, Is(nil, CodeUnsupportedConstruct))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeColumnNotFound, CodeOf(ColumnNotFound("foo.x")))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestError_MessageCarriesKeywordAndFragment(t *testing.T) {
	err := WithFragment(Unsupported("LIKE"), "name LIKE 'a%'")

	msg := err.Error()
	assert.Contains(t, msg, "UNSUPPORTED_CONSTRUCT")
	assert.Contains(t, msg, "[LIKE]")
	assert.Contains(t, msg, `"name LIKE 'a%'"`)
}

func TestWithFragment_KeepsInnermostFragment(t *testing.T) {
	inner := WithFragment(ColumnNotFound("x"), "x = 1")
	outer := WithFragment(inner, "SELECT * FROM foo WHERE x = 1")

	var e *Error
	require.True(t, errors.As(outer, &e))
	assert.Equal(t, "x = 1", e.Fragment)
}

func TestWithFragment_DoesNotMutateOriginal(t *testing.T) {
	orig := TableNotFound("foo")
	_ = WithFragment(orig, "FROM foo")

	assert.Empty(t, orig.Fragment)
}

func TestWithFragment_PassesThroughForeignErrors(t *testing.T) {
	plain := errors.New("plain")
	assert.Same(t, plain, WithFragment(plain, "x"))
}

func TestWrongArgumentCount_Messages(t *testing.T) {
	tests := []struct {
		min, max int
		want     string
	}{
		{1, 1, "takes 1 argument(s)"},
		{2, 3, "takes 2 to 3 argument(s)"},
		{1, -1, "takes at least 1 argument(s)"},
	}

	for _, tt := range tests {
		err := WrongArgumentCount("SUBSTRING", 0, tt.min, tt.max)
		assert.Contains(t, err.Error(), tt.want)
		assert.Equal(t, "SUBSTRING", err.Keyword)
	}
}

func TestKnown(t *testing.T) {
	for _, c := range Codes {
		assert.True(t, Known(c), c)
	}
	assert.False(t, Known("NOPE"))
	assert.False(t, Known(""))
}
