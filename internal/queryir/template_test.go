package queryir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate_Defaults(t *testing.T) {
	tbl := MustParseTemplate(DefaultTableTemplate)
	assert.True(t, tbl.UsesSubject())
	assert.True(t, tbl.UsesURI())
	assert.False(t, tbl.UsesObject())

	got := tbl.Instantiate(Var("t"), nil, IRI("http://example.org/Foo"))
	require.Len(t, got, 1)
	assert.Equal(t, Triple{Subject: Var("t"), Predicate: IRI(RDFType), Object: IRI("http://example.org/Foo")}, got[0])

	col := MustParseTemplate(DefaultColumnTemplate)
	got = col.Instantiate(Var("t"), Var("c"), IRI("http://example.org/p"))
	require.Len(t, got, 1)
	assert.Equal(t, Triple{Subject: Var("t"), Predicate: IRI("http://example.org/p"), Object: Var("c")}, got[0])
}

func TestParseTemplate_MultipleTriplesAndLiterals(t *testing.T) {
	tmpl, err := ParseTemplate(`{subject} a <http://ex/T>. {subject} <http://ex/label> "a \"q\" b"`)
	require.NoError(t, err)

	got := tmpl.Instantiate(Var("s"), nil, "")
	require.Len(t, got, 2)
	assert.Equal(t, IRI("http://ex/T"), got[0].Object)
	assert.Equal(t, String(`a "q" b`), got[1].Object)
}

func TestParseTemplate_InstantiateReturnsFreshSlices(t *testing.T) {
	tmpl := MustParseTemplate(DefaultColumnTemplate)
	a := tmpl.Instantiate(Var("a"), Var("x"), "http://p")
	b := tmpl.Instantiate(Var("b"), Var("y"), "http://p")

	assert.Equal(t, Var("a"), a[0].Subject)
	assert.Equal(t, Var("b"), b[0].Subject)
}

func TestParseTemplate_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
		msg  string
	}{
		{"empty", "   ", "empty"},
		{"short triple", "{subject} a .", "2 terms"},
		{"missing dot", "{subject} a {uri} {subject} a", "missing '.'"},
		{"unterminated iri", "{subject} a <http://x", "unterminated IRI"},
		{"unterminated string", `{subject} <p> "abc`, "unterminated string"},
		{"unknown placeholder", "{subject} a {type} .", "unknown placeholder"},
		{"prefixed name", "{subject} rdf:type {uri} .", "unexpected token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate(tt.text)
			require.Error(t, err)
			var te *TemplateError
			require.True(t, errors.As(err, &te))
			assert.Contains(t, te.Msg, tt.msg)
		})
	}
}
