package queryir

import (
	"fmt"
	"strings"
)

// Template placeholders recognized in query segment templates.
const (
	PlaceholderSubject = "{subject}"
	PlaceholderObject  = "{object}"
	PlaceholderURI     = "{uri}"
)

// Default templates used when a catalog entry does not declare one.
const (
	DefaultTableTemplate  = PlaceholderSubject + " a " + PlaceholderURI + " ."
	DefaultColumnTemplate = PlaceholderSubject + " " + PlaceholderURI + " " + PlaceholderObject + " ."
)

type placeholder int

const (
	phSubject placeholder = iota + 1
	phObject
	phURI
)

func (placeholder) termNode() {}

// Template is a parsed query segment template: a list of triple patterns
// whose terms may be placeholders.
type Template struct {
	text    string
	triples []Triple
	uses    map[placeholder]bool
}

// TemplateError reports a malformed template.
type TemplateError struct {
	Text   string
	Offset int
	Msg    string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %q at offset %d: %s", e.Text, e.Offset, e.Msg)
}

// ParseTemplate parses template text of the form "S P O . S P O ." where
// each term is a placeholder, the keyword a, an <iri>, or a "quoted"
// string literal. The final "." may be omitted.
func ParseTemplate(text string) (*Template, error) {
	toks, err := tokenizeTemplate(text)
	if err != nil {
		return nil, err
	}

	t := &Template{text: text, uses: map[placeholder]bool{}}
	var cur []Term
	for _, tok := range toks {
		if tok.text == "." {
			if len(cur) != 3 {
				return nil, &TemplateError{Text: text, Offset: tok.offset, Msg: fmt.Sprintf("triple has %d terms, want 3", len(cur))}
			}
			t.triples = append(t.triples, Triple{Subject: cur[0], Predicate: cur[1], Object: cur[2]})
			cur = nil
			continue
		}
		term, err := templateTerm(tok)
		if err != nil {
			return nil, &TemplateError{Text: text, Offset: tok.offset, Msg: err.Error()}
		}
		if ph, ok := term.(placeholder); ok {
			t.uses[ph] = true
		}
		cur = append(cur, term)
		if len(cur) > 3 {
			return nil, &TemplateError{Text: text, Offset: tok.offset, Msg: "missing '.' after triple"}
		}
	}
	switch len(cur) {
	case 0:
	case 3:
		t.triples = append(t.triples, Triple{Subject: cur[0], Predicate: cur[1], Object: cur[2]})
	default:
		return nil, &TemplateError{Text: text, Offset: len(text), Msg: fmt.Sprintf("triple has %d terms, want 3", len(cur))}
	}
	if len(t.triples) == 0 {
		return nil, &TemplateError{Text: text, Msg: "template is empty"}
	}
	return t, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
// Use only in tests or for constant templates.
func MustParseTemplate(text string) *Template {
	t, err := ParseTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the source text.
func (t *Template) String() string { return t.text }

// UsesSubject reports whether {subject} appears in the template.
func (t *Template) UsesSubject() bool { return t.uses[phSubject] }

// UsesObject reports whether {object} appears in the template.
func (t *Template) UsesObject() bool { return t.uses[phObject] }

// UsesURI reports whether {uri} appears in the template.
func (t *Template) UsesURI() bool { return t.uses[phURI] }

// Instantiate substitutes the placeholders and returns fresh triples.
// A nil object is only valid for templates that do not use {object}.
func (t *Template) Instantiate(subject, object Term, uri IRI) []Triple {
	sub := func(term Term) Term {
		switch term {
		case phSubject:
			return subject
		case phObject:
			return object
		case phURI:
			return uri
		}
		return term
	}
	out := make([]Triple, len(t.triples))
	for i, tr := range t.triples {
		out[i] = Triple{Subject: sub(tr.Subject), Predicate: sub(tr.Predicate), Object: sub(tr.Object)}
	}
	return out
}

type templateToken struct {
	text   string
	offset int
	quoted bool
}

func tokenizeTemplate(text string) ([]templateToken, error) {
	var toks []templateToken
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '.':
			toks = append(toks, templateToken{text: ".", offset: i})
			i++
		case c == '<':
			end := strings.IndexByte(text[i:], '>')
			if end < 0 {
				return nil, &TemplateError{Text: text, Offset: i, Msg: "unterminated IRI"}
			}
			toks = append(toks, templateToken{text: text[i : i+end+1], offset: i})
			i += end + 1
		case c == '"':
			var sb strings.Builder
			j := i + 1
			closed := false
			for j < len(text) {
				if text[j] == '\\' && j+1 < len(text) {
					sb.WriteByte(text[j+1])
					j += 2
					continue
				}
				if text[j] == '"' {
					closed = true
					break
				}
				sb.WriteByte(text[j])
				j++
			}
			if !closed {
				return nil, &TemplateError{Text: text, Offset: i, Msg: "unterminated string literal"}
			}
			toks = append(toks, templateToken{text: sb.String(), offset: i, quoted: true})
			i = j + 1
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(" \t\n\r<\"", rune(text[j])) {
				// A trailing '.' terminates the triple rather than the token.
				if text[j] == '.' && (j+1 == len(text) || strings.ContainsRune(" \t\n\r", rune(text[j+1]))) {
					break
				}
				j++
			}
			toks = append(toks, templateToken{text: text[i:j], offset: i})
			i = j
		}
	}
	return toks, nil
}

func templateTerm(tok templateToken) (Term, error) {
	if tok.quoted {
		return String(tok.text), nil
	}
	switch tok.text {
	case PlaceholderSubject:
		return phSubject, nil
	case PlaceholderObject:
		return phObject, nil
	case PlaceholderURI:
		return phURI, nil
	case "a":
		return IRI(RDFType), nil
	}
	if strings.HasPrefix(tok.text, "<") {
		iri := strings.TrimSuffix(strings.TrimPrefix(tok.text, "<"), ">")
		if iri == "" || strings.ContainsAny(iri, " {}\"") {
			return nil, fmt.Errorf("invalid IRI %s", tok.text)
		}
		return IRI(iri), nil
	}
	if strings.HasPrefix(tok.text, "{") {
		return nil, fmt.Errorf("unknown placeholder %s", tok.text)
	}
	return nil, fmt.Errorf("unexpected token %q", tok.text)
}
