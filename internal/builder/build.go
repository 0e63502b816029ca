package builder

import (
	"slices"

	"github.com/roach88/rdfsql/internal/queryir"
)

// Build returns the compiled query and consumes the builder.
//
// The result shares no memory with the builder. Shared-binding joins are
// realized on the snapshot: every joined column's property triple takes
// the join's node variable as object, followed by a BIND that restores
// the column variable.
func (b *Builder) Build() (*queryir.Query, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	b.consumed = true

	q := queryir.NewQuery()
	q.Where = b.root.group.Clone()
	b.realizeJoins(q.Where)

	q.Projection = slices.Clone(b.projection)
	q.OrderBy = slices.Clone(b.orderBy)
	q.Distinct = b.distinct
	q.Limit = b.limit
	q.Offset = b.offset
	return q, nil
}

// shared maps every column variable in a join class of two or more to the
// node variable of the class representative.
func (b *Builder) shared() map[queryir.Var]queryir.Var {
	out := map[queryir.Var]queryir.Var{}
	for v := range b.joins {
		rep := b.find(v)
		out[v] = b.colItems[rep].GUIDVar
	}
	return out
}

func (b *Builder) realizeJoins(g *queryir.Group) {
	shared := b.shared()
	if len(shared) == 0 {
		return
	}
	rewriteGroup(g, shared)
}

func rewriteGroup(g *queryir.Group, shared map[queryir.Var]queryir.Var) {
	out := make([]queryir.Block, 0, len(g.Blocks))
	for _, blk := range g.Blocks {
		switch x := blk.(type) {
		case *queryir.BGP:
			var bound []queryir.Var
			for i, t := range x.Triples {
				v, ok := t.Object.(queryir.Var)
				if !ok {
					continue
				}
				node, ok := shared[v]
				if !ok {
					continue
				}
				x.Triples[i].Object = node
				if !slices.Contains(bound, v) {
					bound = append(bound, v)
				}
			}
			out = append(out, x)
			for _, v := range bound {
				out = append(out, &queryir.Bind{Expr: &queryir.VarRef{Var: shared[v]}, Var: v})
			}
		case *queryir.Optional:
			rewriteGroup(x.Group, shared)
			out = append(out, x)
		default:
			out = append(out, blk)
		}
	}
	g.Blocks = out
}
