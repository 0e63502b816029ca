package queryir

import "fmt"

// ValidationResult contains the structural problems found in a query.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems lists human-readable descriptions in traversal order.
	Problems []string
}

// Validate checks the structural integrity of a compiled query.
//
// Rules:
//  1. Where is non-nil and every block and expression is non-nil
//  2. Every triple has three terms
//  3. Directly projected variables are bound in the pattern or by an
//     earlier computed projection
//  4. Computed projections and BIND targets introduce fresh variables
//  5. Limit and Offset are NoLimit or non-negative
//  6. Aggregates appear only in projections and ORDER BY
//
// Validate is a pure function with no side effects.
func Validate(q *Query) ValidationResult {
	v := &validator{bound: map[Var]bool{}}
	v.validateQuery(q)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

type validator struct {
	problems []string
	bound    map[Var]bool
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q *Query) {
	if q == nil {
		v.addProblem("nil query")
		return
	}
	if q.Where == nil {
		v.addProblem("nil WHERE group")
	} else {
		v.validateGroup(q.Where)
	}

	projected := map[Var]bool{}
	for i, p := range q.Projection {
		if p.Var == "" {
			v.addProblem("projection %d has no variable", i)
			continue
		}
		if p.Expr == nil {
			if !v.bound[p.Var] && !projected[p.Var] {
				v.addProblem("projection %q references unbound variable %s", p.Name, p.Var)
			}
			projected[p.Var] = true
			continue
		}
		if v.bound[p.Var] || projected[p.Var] {
			v.addProblem("computed projection %q reuses variable %s", p.Name, p.Var)
		}
		projected[p.Var] = true
	}

	for i, k := range q.OrderBy {
		if k.Expr == nil {
			v.addProblem("order key %d is nil", i)
		}
	}
	if q.Limit < NoLimit {
		v.addProblem("invalid limit %d", q.Limit)
	}
	if q.Offset < NoLimit {
		v.addProblem("invalid offset %d", q.Offset)
	}
}

func (v *validator) validateGroup(g *Group) {
	for i, b := range g.Blocks {
		switch x := b.(type) {
		case *BGP:
			for _, t := range x.Triples {
				if t.Subject == nil || t.Predicate == nil || t.Object == nil {
					v.addProblem("incomplete triple %+v", t)
					continue
				}
				for _, tv := range t.Vars() {
					v.bound[tv] = true
				}
			}
		case *Optional:
			if x.Group == nil {
				v.addProblem("OPTIONAL block %d has nil group", i)
				continue
			}
			v.validateGroup(x.Group)
		case *Filter:
			v.validateCondition("FILTER", x.Expr)
		case *Bind:
			v.validateCondition("BIND", x.Expr)
			if v.bound[x.Var] {
				v.addProblem("BIND target %s is already bound", x.Var)
			}
			v.bound[x.Var] = true
		case *Equate:
			if x.Left == "" || x.Right == "" {
				v.addProblem("equate block %d has an empty variable", i)
			}
		case nil:
			v.addProblem("nil block at index %d", i)
		default:
			v.addProblem("unknown block type %T", b)
		}
	}
}

func (v *validator) validateCondition(kind string, e Expr) {
	if e == nil {
		v.addProblem("%s has nil expression", kind)
		return
	}
	if ContainsAggregate(e) {
		v.addProblem("%s contains an aggregate", kind)
	}
}
