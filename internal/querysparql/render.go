// Package querysparql renders query IR as SPARQL 1.1 text.
//
// Rendering is deterministic: the same query always produces the same
// bytes, so rendered queries can be hashed, logged and compared against
// golden files.
package querysparql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/rdfsql/internal/queryir"
)

// Renderer converts queries to SPARQL text.
type Renderer struct {
	// Indent is repeated once per nesting level. Default: two spaces.
	Indent string
}

// NewRenderer returns a renderer with the default indent.
func NewRenderer() *Renderer {
	return &Renderer{Indent: "  "}
}

// Render returns the SPARQL text of q.
func (r *Renderer) Render(q *queryir.Query) (string, error) {
	if q == nil {
		return "", fmt.Errorf("cannot render nil query")
	}
	w := &writer{indent: r.Indent}

	for _, p := range q.Prefixes {
		fmt.Fprintf(&w.sb, "PREFIX %s: <%s>\n", p.Name, p.IRI)
	}

	w.sb.WriteString("SELECT ")
	if q.Distinct {
		w.sb.WriteString("DISTINCT ")
	}
	if err := w.projection(q.Projection); err != nil {
		return "", err
	}
	w.sb.WriteString("\nWHERE ")
	if err := w.group(q.Where, 0); err != nil {
		return "", err
	}
	w.sb.WriteByte('\n')

	if len(q.OrderBy) > 0 {
		w.sb.WriteString("ORDER BY")
		for _, k := range q.OrderBy {
			s, err := expr(k.Expr)
			if err != nil {
				return "", fmt.Errorf("order by: %w", err)
			}
			if k.Ascending {
				fmt.Fprintf(&w.sb, " ASC(%s)", s)
			} else {
				fmt.Fprintf(&w.sb, " DESC(%s)", s)
			}
		}
		w.sb.WriteByte('\n')
	}
	if q.Limit != queryir.NoLimit {
		fmt.Fprintf(&w.sb, "LIMIT %d\n", q.Limit)
	}
	if q.Offset != queryir.NoLimit {
		fmt.Fprintf(&w.sb, "OFFSET %d\n", q.Offset)
	}
	return w.sb.String(), nil
}

type writer struct {
	sb     strings.Builder
	indent string
}

func (w *writer) projection(ps []queryir.Projection) error {
	if len(ps) == 0 {
		w.sb.WriteByte('*')
		return nil
	}
	seen := map[queryir.Var]bool{}
	first := true
	for _, p := range ps {
		// SPARQL projects a variable once; the column list keeps duplicates.
		if seen[p.Var] {
			continue
		}
		seen[p.Var] = true
		if !first {
			w.sb.WriteByte(' ')
		}
		first = false
		if p.Expr == nil {
			w.sb.WriteString(p.Var.String())
			continue
		}
		s, err := expr(p.Expr)
		if err != nil {
			return fmt.Errorf("projection %q: %w", p.Name, err)
		}
		fmt.Fprintf(&w.sb, "(%s AS %s)", s, p.Var)
	}
	return nil
}

func (w *writer) line(depth int, s string) {
	w.sb.WriteString(strings.Repeat(w.indent, depth))
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

func (w *writer) group(g *queryir.Group, depth int) error {
	if g == nil {
		return fmt.Errorf("nil group")
	}
	w.sb.WriteString("{\n")
	for _, b := range g.Blocks {
		switch x := b.(type) {
		case *queryir.BGP:
			for _, t := range x.Triples {
				s, err := triple(t)
				if err != nil {
					return err
				}
				w.line(depth+1, s)
			}
		case *queryir.Optional:
			w.sb.WriteString(strings.Repeat(w.indent, depth+1))
			w.sb.WriteString("OPTIONAL ")
			if err := w.group(x.Group, depth+1); err != nil {
				return err
			}
			w.sb.WriteByte('\n')
		case *queryir.Filter:
			s, err := expr(x.Expr)
			if err != nil {
				return fmt.Errorf("filter: %w", err)
			}
			w.line(depth+1, "FILTER("+s+")")
		case *queryir.Bind:
			s, err := expr(x.Expr)
			if err != nil {
				return fmt.Errorf("bind: %w", err)
			}
			w.line(depth+1, fmt.Sprintf("BIND(%s AS %s)", s, x.Var))
		case *queryir.Equate:
			// realized by the shared node variable in the triples
		default:
			panic(fmt.Sprintf("querysparql: unknown block type %T", b))
		}
	}
	w.sb.WriteString(strings.Repeat(w.indent, depth))
	w.sb.WriteByte('}')
	return nil
}

func triple(t queryir.Triple) (string, error) {
	s, err := term(t.Subject)
	if err != nil {
		return "", err
	}
	p, err := term(t.Predicate)
	if err != nil {
		return "", err
	}
	o, err := term(t.Object)
	if err != nil {
		return "", err
	}
	return s + " " + p + " " + o + " .", nil
}

func term(t queryir.Term) (string, error) {
	switch x := t.(type) {
	case queryir.Var:
		return x.String(), nil
	case queryir.IRI:
		if x == queryir.RDFType {
			return "a", nil
		}
		return "<" + string(x) + ">", nil
	case queryir.BlankNode:
		return "_:" + string(x), nil
	case *queryir.Literal:
		return literal(x)
	case nil:
		return "", fmt.Errorf("incomplete triple")
	default:
		return "", fmt.Errorf("unexpected term %T", t)
	}
}

var (
	integerLexical = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalLexical = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
)

func literal(l *queryir.Literal) (string, error) {
	switch l.Kind {
	case queryir.LitString:
		return quote(l.Value), nil
	case queryir.LitNull:
		return "", fmt.Errorf("NULL is only valid in IS NULL tests")
	case queryir.LitBoolean:
		if l.Value == "true" || l.Value == "false" {
			return l.Value, nil
		}
	case queryir.LitInteger:
		if integerLexical.MatchString(l.Value) {
			return l.Value, nil
		}
	case queryir.LitDecimal:
		if decimalLexical.MatchString(l.Value) {
			return l.Value, nil
		}
	}
	return quote(l.Value) + "^^<" + l.Kind.Datatype() + ">", nil
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(s string) string {
	return `"` + stringEscaper.Replace(s) + `"`
}

func expr(e queryir.Expr) (string, error) {
	switch x := e.(type) {
	case *queryir.Literal:
		return literal(x)

	case *queryir.VarRef:
		return x.Var.String(), nil

	case *queryir.Unary:
		s, err := expr(x.X)
		if err != nil {
			return "", err
		}
		if x.Op == queryir.OpPlus {
			return s, nil
		}
		return x.Op.String() + "(" + s + ")", nil

	case *queryir.Binary:
		l, err := expr(x.L)
		if err != nil {
			return "", err
		}
		r, err := expr(x.R)
		if err != nil {
			return "", err
		}
		return "(" + l + " " + x.Op.String() + " " + r + ")", nil

	case *queryir.Bound:
		if x.X == nil {
			return "", fmt.Errorf("missing BOUND operand")
		}
		if x.Not {
			return "!BOUND(" + x.X.Var.String() + ")", nil
		}
		return "BOUND(" + x.X.Var.String() + ")", nil

	case *queryir.In:
		v, err := expr(x.X)
		if err != nil {
			return "", err
		}
		items, err := exprList(x.List)
		if err != nil {
			return "", err
		}
		op := " IN "
		if x.Not {
			op = " NOT IN "
		}
		return "(" + v + op + "(" + items + "))", nil

	case *queryir.Aggregate:
		distinct := ""
		if x.Distinct {
			distinct = "DISTINCT "
		}
		if x.Arg == nil {
			return x.Op.String() + "(" + distinct + "*)", nil
		}
		arg, err := expr(x.Arg)
		if err != nil {
			return "", err
		}
		return x.Op.String() + "(" + distinct + arg + ")", nil

	case *queryir.Call:
		args, err := exprList(x.Args)
		if err != nil {
			return "", err
		}
		return x.Func + "(" + args + ")", nil

	case nil:
		return "", fmt.Errorf("missing expression")
	default:
		panic(fmt.Sprintf("querysparql: unknown expression type %T", e))
	}
}

func exprList(list []queryir.Expr) (string, error) {
	parts := make([]string, len(list))
	for i, e := range list {
		s, err := expr(e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}
