package sqlast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a node back to SQL text. The output is used in error
// messages and is not guaranteed to round-trip through a parser.
func Format(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch x := n.(type) {
	case nil:
	case Statement:
		writeStatement(sb, x)
	case TableExpr:
		writeTable(sb, x)
	case Expr:
		writeExpr(sb, x)
	default:
		fmt.Fprintf(sb, "<%T>", n)
	}
}

func writeStatement(sb *strings.Builder, s Statement) {
	switch x := s.(type) {
	case *Select:
		sb.WriteString("SELECT ")
		if x.Top != nil {
			sb.WriteString("TOP ")
			writeExpr(sb, x.Top)
			sb.WriteByte(' ')
		}
		if x.Distinct {
			sb.WriteString("DISTINCT ")
		}
		for i, f := range x.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(FormatSelectItem(f))
		}
		if len(x.From) > 0 {
			sb.WriteString(" FROM ")
			for i, t := range x.From {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeTable(sb, t)
			}
		}
		if x.Where != nil {
			sb.WriteString(" WHERE ")
			writeExpr(sb, x.Where)
		}
		if len(x.GroupBy) > 0 {
			sb.WriteString(" GROUP BY ")
			writeList(sb, x.GroupBy)
		}
		if x.Having != nil {
			sb.WriteString(" HAVING ")
			writeExpr(sb, x.Having)
		}
		if len(x.OrderBy) > 0 {
			sb.WriteString(" ORDER BY ")
			for i, o := range x.OrderBy {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeExpr(sb, o.Expr)
				if o.Desc {
					sb.WriteString(" DESC")
				}
			}
		}
		if x.Limit != nil {
			sb.WriteString(" LIMIT")
			if x.Limit.Count != nil {
				sb.WriteByte(' ')
				writeExpr(sb, x.Limit.Count)
			}
			if x.Limit.Offset != nil {
				sb.WriteString(" OFFSET ")
				writeExpr(sb, x.Limit.Offset)
			}
		}
	case *SetOp:
		writeStatement(sb, x.Left)
		sb.WriteString(" " + x.Op + " ")
		writeStatement(sb, x.Right)
	case *Other:
		sb.WriteString(x.Keyword + " ...")
	case nil:
	default:
		panic(fmt.Sprintf("sqlast: unknown statement type %T", s))
	}
}

// FormatSelectItem renders one SELECT list entry.
func FormatSelectItem(f SelectItem) string {
	var sb strings.Builder
	if f.Star {
		if f.Schema != "" {
			sb.WriteString(f.Schema + ".")
		}
		if f.Table != "" {
			sb.WriteString(f.Table + ".")
		}
		sb.WriteByte('*')
		return sb.String()
	}
	writeExpr(&sb, f.Expr)
	if f.Alias != "" {
		sb.WriteString(" AS " + f.Alias)
	}
	return sb.String()
}

func writeTable(sb *strings.Builder, t TableExpr) {
	switch x := t.(type) {
	case *TableName:
		if x.Schema != "" {
			sb.WriteString(x.Schema + ".")
		}
		sb.WriteString(x.Name)
		if x.Alias != "" {
			sb.WriteString(" " + x.Alias)
		}
	case *Join:
		writeTable(sb, x.Left)
		sb.WriteByte(' ')
		if x.Natural {
			sb.WriteString("NATURAL ")
		}
		sb.WriteString(x.Kind.String() + " ")
		if _, nested := x.Right.(*Join); nested {
			sb.WriteByte('(')
			writeTable(sb, x.Right)
			sb.WriteByte(')')
		} else {
			writeTable(sb, x.Right)
		}
		if x.On != nil {
			sb.WriteString(" ON ")
			writeExpr(sb, x.On)
		}
		if len(x.Using) > 0 {
			sb.WriteString(" USING (" + strings.Join(x.Using, ", ") + ")")
		}
	case *DerivedTable:
		sb.WriteByte('(')
		writeStatement(sb, x.Select)
		sb.WriteByte(')')
		if x.Alias != "" {
			sb.WriteString(" " + x.Alias)
		}
	case nil:
	default:
		panic(fmt.Sprintf("sqlast: unknown table expression type %T", t))
	}
}

func writeList(sb *strings.Builder, list []Expr) {
	for i, e := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, e)
	}
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch x := e.(type) {
	case *ColumnRef:
		if x.Schema != "" {
			sb.WriteString(x.Schema + ".")
		}
		if x.Table != "" {
			sb.WriteString(x.Table + ".")
		}
		sb.WriteString(x.Column)
	case *Literal:
		writeLiteral(sb, x)
	case *Unary:
		switch x.Op {
		case UnaryNot:
			sb.WriteString("NOT ")
		case UnaryMinus:
			sb.WriteByte('-')
		case UnaryPlus:
			sb.WriteByte('+')
		case UnaryBitNot:
			sb.WriteByte('~')
		}
		writeExpr(sb, x.X)
	case *Binary:
		writeExpr(sb, x.L)
		sb.WriteString(" " + x.Op.String() + " ")
		writeExpr(sb, x.R)
	case *Between:
		writeExpr(sb, x.X)
		if x.Not {
			sb.WriteString(" NOT")
		}
		sb.WriteString(" BETWEEN ")
		writeExpr(sb, x.Low)
		sb.WriteString(" AND ")
		writeExpr(sb, x.High)
	case *IsNull:
		writeExpr(sb, x.X)
		if x.Not {
			sb.WriteString(" IS NOT NULL")
		} else {
			sb.WriteString(" IS NULL")
		}
	case *InList:
		writeExpr(sb, x.X)
		if x.Not {
			sb.WriteString(" NOT")
		}
		sb.WriteString(" IN (")
		writeList(sb, x.List)
		sb.WriteByte(')')
	case *Like:
		writeExpr(sb, x.X)
		if x.Not {
			sb.WriteString(" NOT")
		}
		if x.Regexp {
			sb.WriteString(" REGEXP ")
		} else {
			sb.WriteString(" LIKE ")
		}
		writeExpr(sb, x.Pattern)
	case *FuncCall:
		sb.WriteString(x.Name + "(")
		if x.Distinct {
			sb.WriteString("DISTINCT ")
		}
		if x.Star {
			sb.WriteByte('*')
		}
		writeList(sb, x.Args)
		sb.WriteByte(')')
	case *Paren:
		sb.WriteByte('(')
		writeExpr(sb, x.X)
		sb.WriteByte(')')
	case *Position:
		sb.WriteString(strconv.Itoa(x.N))
	case *Case:
		sb.WriteString("CASE ... END")
	case *Subquery:
		sb.WriteByte('(')
		writeStatement(sb, x.Select)
		sb.WriteByte(')')
	case *Exists:
		if x.Not {
			sb.WriteString("NOT ")
		}
		sb.WriteString("EXISTS (")
		writeStatement(sb, x.Select)
		sb.WriteByte(')')
	case *Quantified:
		writeExpr(sb, x.X)
		sb.WriteString(" " + x.Op.String() + " ")
		if x.All {
			sb.WriteString("ALL (...)")
		} else {
			sb.WriteString("ANY (...)")
		}
	case *Match:
		sb.WriteString("MATCH (...) AGAINST (...)")
	case nil:
	default:
		panic(fmt.Sprintf("sqlast: unknown expression type %T", e))
	}
}

func writeLiteral(sb *strings.Builder, l *Literal) {
	switch l.Kind {
	case LitString:
		sb.WriteString(quote(l.Value))
	case LitNull:
		sb.WriteString("NULL")
	case LitBoolean:
		sb.WriteString(strings.ToUpper(l.Value))
	case LitDate:
		sb.WriteString("DATE " + quote(l.Value))
	case LitTime:
		sb.WriteString("TIME " + quote(l.Value))
	case LitTimestamp:
		sb.WriteString("TIMESTAMP " + quote(l.Value))
	default:
		sb.WriteString(l.Value)
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
