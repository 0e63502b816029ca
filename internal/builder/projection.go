package builder

import (
	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// ComputedPrefix starts the label of an unaliased computed projection.
const ComputedPrefix = "expr_"

// AddProjection appends one output column and returns its variable.
//
// A column reference is projected directly under alias, or under the
// column's short name. Any other expression is projected as
// (e AS ?v) where ?v belongs to a fresh virtual column labelled alias, or
// a label derived from the expression when alias is empty. Projecting the
// same unaliased expression twice reuses its variable.
func (b *Builder) AddProjection(e queryir.Expr, alias string) (queryir.Var, error) {
	if err := b.check(); err != nil {
		return "", err
	}
	if e == nil {
		return "", sqlerr.New(sqlerr.CodeSyntaxError, "", "missing projection expression")
	}

	if ref, ok := e.(*queryir.VarRef); ok {
		label := alias
		if label == "" {
			label = ref.Name.Column()
		}
		b.projection = append(b.projection, queryir.Projection{Var: ref.Var, Name: label, Source: ref.Name})
		if alias != "" {
			b.aliases[alias] = ref
		}
		return ref.Var, nil
	}

	key := queryir.Key(e)
	digest := name.Digest(key)
	label := alias
	if label == "" {
		label = ComputedPrefix + digest
	}
	item, fresh, err := b.virtualItem(label, computedType(e))
	if err != nil {
		return "", err
	}
	switch {
	case fresh:
	case alias == "" || b.computed[key] == item.Var:
		// same expression again
		b.projection = append(b.projection, queryir.Projection{Var: item.Var, Name: label})
		return item.Var, nil
	default:
		// alias reused for a different expression
		if item, _, err = b.virtualItem(alias+"_"+digest, computedType(e)); err != nil {
			return "", err
		}
	}

	b.projection = append(b.projection, queryir.Projection{Var: item.Var, Name: label, Expr: e})
	if _, ok := b.computed[key]; !ok {
		b.computed[key] = item.Var
	}
	if alias != "" {
		b.aliases[alias] = &queryir.VarRef{Var: item.Var, Name: item.Name()}
	}
	return item.Var, nil
}

func computedType(e queryir.Expr) catalog.SQLType {
	switch x := e.(type) {
	case *queryir.Aggregate:
		if x.Op == queryir.AggCount {
			return catalog.TypeBigInt
		}
	case *queryir.Literal:
		return catalog.SQLTypeOf(x.Kind)
	}
	return catalog.TypeOther
}

// AddOrderBy appends an ORDER BY key. A key equal to a computed
// projection sorts on the projected variable instead of recomputing it.
func (b *Builder) AddOrderBy(e queryir.Expr, ascending bool) error {
	if err := b.check(); err != nil {
		return err
	}
	if e == nil {
		return sqlerr.New(sqlerr.CodeSyntaxError, "", "missing order key")
	}
	if _, isRef := e.(*queryir.VarRef); !isRef {
		if v, ok := b.computed[queryir.Key(e)]; ok {
			e = &queryir.VarRef{Var: v}
		}
	}
	b.orderBy = append(b.orderBy, queryir.OrderKey{Expr: e, Ascending: ascending})
	return nil
}

// SetDistinct toggles SELECT DISTINCT.
func (b *Builder) SetDistinct(distinct bool) error {
	if err := b.check(); err != nil {
		return err
	}
	b.distinct = distinct
	return nil
}

// SetLimit caps the number of rows. queryir.NoLimit removes the cap.
func (b *Builder) SetLimit(n int64) error {
	if err := b.check(); err != nil {
		return err
	}
	if n < queryir.NoLimit {
		return sqlerr.New(sqlerr.CodeSyntaxError, "LIMIT", "invalid LIMIT %d", n)
	}
	b.limit = n
	return nil
}

// SetOffset skips rows. queryir.NoLimit removes the offset.
func (b *Builder) SetOffset(n int64) error {
	if err := b.check(); err != nil {
		return err
	}
	if n < queryir.NoLimit {
		return sqlerr.New(sqlerr.CodeSyntaxError, "OFFSET", "invalid OFFSET %d", n)
	}
	b.offset = n
	return nil
}

// Projection returns the output columns added so far.
func (b *Builder) Projection() []queryir.Projection {
	out := make([]queryir.Projection, len(b.projection))
	copy(out, b.projection)
	return out
}
