// Package sqlparse reads SQL text into the sqlast tree using the TiDB
// MySQL-dialect parser.
//
// Two constructs outside the MySQL grammar are handled before parsing:
// a SQL Server style SELECT TOP n prefix is stripped and kept as
// Select.Top, and FULL [OUTER] JOIN is rejected up front because MySQL
// would read FULL as a table alias.
package sqlparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/roach88/rdfsql/internal/sqlast"
	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Parser parses single SQL statements. It is safe for concurrent use.
type Parser struct {
	mu sync.Mutex
	p  *parser.Parser
}

// New returns a parser.
func New() *Parser {
	return &Parser{p: parser.New()}
}

var (
	topPrefix = regexp.MustCompile(`(?is)^(\s*SELECT\s+(?:DISTINCT\s+|ALL\s+)?)TOP\s*(?:\(\s*([+-]?\w+)\s*\)|([+-]?\w+))\s+`)
	quoted    = regexp.MustCompile("'(?:[^'\\\\]|\\\\.|'')*'|\"(?:[^\"\\\\]|\\\\.)*\"|`[^`]*`")
	fullJoin  = regexp.MustCompile(`(?i)\bFULL\s+(?:OUTER\s+)?JOIN\b`)
)

// Parse parses one statement. Every error is a *sqlerr.Error.
func (p *Parser) Parse(sql string) (sqlast.Statement, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "empty statement")
	}
	if fullJoin.MatchString(quoted.ReplaceAllString(sql, "''")) {
		return nil, sqlerr.UnsupportedJoin("FULL OUTER JOIN")
	}

	var top sqlast.Expr
	if m := topPrefix.FindStringSubmatchIndex(sql); m != nil {
		tok := submatch(sql, m, 2)
		if tok == "" {
			tok = submatch(sql, m, 3)
		}
		top = countLiteral(tok)
		sql = sql[m[2]:m[3]] + sql[m[1]:]
	}

	p.mu.Lock()
	nodes, _, err := p.p.Parse(sql, "", "")
	p.mu.Unlock()
	if err != nil {
		return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "%v", err)
	}
	switch len(nodes) {
	case 0:
		return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "empty statement")
	case 1:
	default:
		return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "expected one statement, got %d", len(nodes))
	}

	stmt, err := statement(nodes[0], sql)
	if err != nil {
		return nil, err
	}
	if top != nil {
		sel, ok := stmt.(*sqlast.Select)
		if !ok {
			return nil, sqlerr.New(sqlerr.CodeUnsupportedConstruct, "TOP", "TOP applies to a single SELECT")
		}
		sel.Top = top
	}
	return stmt, nil
}

func submatch(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

func countLiteral(tok string) sqlast.Expr {
	if _, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return sqlast.Int(strings.TrimPrefix(tok, "+"))
	}
	return &sqlast.ColumnRef{Column: tok}
}

func statement(n ast.StmtNode, text string) (sqlast.Statement, error) {
	switch x := n.(type) {
	case *ast.SelectStmt:
		return selectStmt(x)
	case *ast.SetOprStmt:
		return setOpr(x)
	default:
		return &sqlast.Other{Keyword: keyword(text)}, nil
	}
}

func keyword(text string) string {
	f := strings.Fields(text)
	if len(f) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimRight(f[0], "(;"))
}

func selectStmt(s *ast.SelectStmt) (sqlast.Statement, error) {
	switch s.Kind {
	case ast.SelectStmtKindTable:
		return &sqlast.Other{Keyword: "TABLE"}, nil
	case ast.SelectStmtKindValues:
		return &sqlast.Other{Keyword: "VALUES"}, nil
	}
	if s.With != nil {
		return nil, sqlerr.Unsupported("WITH")
	}

	out := &sqlast.Select{Distinct: s.Distinct}
	var err error

	if s.Fields != nil {
		for _, f := range s.Fields.Fields {
			item, err := selectField(f)
			if err != nil {
				return nil, err
			}
			out.Fields = append(out.Fields, item)
		}
	}
	if s.From != nil && s.From.TableRefs != nil {
		te, err := join(s.From.TableRefs)
		if err != nil {
			return nil, err
		}
		out.From = []sqlast.TableExpr{te}
	}
	if s.Where != nil {
		if out.Where, err = expr(s.Where); err != nil {
			return nil, err
		}
	}
	if s.GroupBy != nil {
		for _, item := range s.GroupBy.Items {
			e, err := expr(item.Expr)
			if err != nil {
				return nil, err
			}
			out.GroupBy = append(out.GroupBy, e)
		}
	}
	if s.Having != nil {
		if out.Having, err = expr(s.Having.Expr); err != nil {
			return nil, err
		}
	}
	if s.OrderBy != nil {
		for _, item := range s.OrderBy.Items {
			e, err := expr(item.Expr)
			if err != nil {
				return nil, err
			}
			out.OrderBy = append(out.OrderBy, sqlast.OrderItem{Expr: e, Desc: item.Desc})
		}
	}
	if s.Limit != nil {
		out.Limit = &sqlast.Limit{}
		if s.Limit.Count != nil {
			if out.Limit.Count, err = expr(s.Limit.Count); err != nil {
				return nil, err
			}
		}
		if s.Limit.Offset != nil {
			if out.Limit.Offset, err = expr(s.Limit.Offset); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func selectField(f *ast.SelectField) (sqlast.SelectItem, error) {
	if f.WildCard != nil {
		return sqlast.SelectItem{
			Star:   true,
			Schema: f.WildCard.Schema.O,
			Table:  f.WildCard.Table.O,
		}, nil
	}
	e, err := expr(f.Expr)
	if err != nil {
		return sqlast.SelectItem{}, err
	}
	return sqlast.SelectItem{Expr: e, Alias: f.AsName.O}, nil
}

// setOpr folds the select list left to right. Only the first operator
// matters to callers, which reject set operations outright.
func setOpr(s *ast.SetOprStmt) (sqlast.Statement, error) {
	if s.SelectList == nil {
		return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "empty set operation")
	}
	return setOprList(s.SelectList)
}

func setOprList(list *ast.SetOprSelectList) (sqlast.Statement, error) {
	var out sqlast.Statement
	for _, n := range list.Selects {
		var (
			stmt sqlast.Statement
			op   *ast.SetOprType
			err  error
		)
		switch x := n.(type) {
		case *ast.SelectStmt:
			stmt, err = selectStmt(x)
			op = x.AfterSetOperator
		case *ast.SetOprSelectList:
			stmt, err = setOprList(x)
			op = x.AfterSetOperator
		default:
			return nil, sqlerr.New(sqlerr.CodeSyntaxError, "", "unexpected set operand %T", n)
		}
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = stmt
			continue
		}
		out = &sqlast.SetOp{Op: setOprName(op), Left: out, Right: stmt}
	}
	return out, nil
}

func setOprName(op *ast.SetOprType) string {
	if op == nil {
		return "UNION"
	}
	switch *op {
	case ast.UnionAll:
		return "UNION ALL"
	case ast.Except:
		return "EXCEPT"
	case ast.ExceptAll:
		return "EXCEPT ALL"
	case ast.Intersect:
		return "INTERSECT"
	case ast.IntersectAll:
		return "INTERSECT ALL"
	default:
		return "UNION"
	}
}

func join(j *ast.Join) (sqlast.TableExpr, error) {
	left, err := resultSet(j.Left)
	if err != nil {
		return nil, err
	}
	if j.Right == nil {
		return left, nil
	}
	right, err := resultSet(j.Right)
	if err != nil {
		return nil, err
	}

	out := &sqlast.Join{Left: left, Right: right, Natural: j.NaturalJoin}
	switch j.Tp {
	case ast.LeftJoin:
		out.Kind = sqlast.JoinLeft
	case ast.RightJoin:
		out.Kind = sqlast.JoinRight
	default:
		out.Kind = sqlast.JoinSimple
		if j.On != nil || len(j.Using) > 0 {
			out.Kind = sqlast.JoinInner
		}
	}
	if j.On != nil {
		if out.On, err = expr(j.On.Expr); err != nil {
			return nil, err
		}
	}
	for _, c := range j.Using {
		out.Using = append(out.Using, c.Name.O)
	}
	return out, nil
}

func resultSet(n ast.ResultSetNode) (sqlast.TableExpr, error) {
	switch x := n.(type) {
	case *ast.Join:
		return join(x)
	case *ast.TableSource:
		return tableSource(x)
	case *ast.TableName:
		return &sqlast.TableName{Schema: x.Schema.O, Name: x.Name.O}, nil
	default:
		return nil, sqlerr.Unsupported(fmt.Sprintf("table expression %s", restore(n)))
	}
}

func tableSource(ts *ast.TableSource) (sqlast.TableExpr, error) {
	switch src := ts.Source.(type) {
	case *ast.TableName:
		return &sqlast.TableName{Schema: src.Schema.O, Name: src.Name.O, Alias: ts.AsName.O}, nil
	case *ast.Join:
		return join(src)
	case *ast.SelectStmt:
		sel, err := selectStmt(src)
		if err != nil {
			return nil, err
		}
		return &sqlast.DerivedTable{Select: sel, Alias: ts.AsName.O}, nil
	case *ast.SetOprStmt:
		sel, err := setOpr(src)
		if err != nil {
			return nil, err
		}
		return &sqlast.DerivedTable{Select: sel, Alias: ts.AsName.O}, nil
	default:
		return nil, sqlerr.Unsupported(fmt.Sprintf("table expression %s", restore(ts)))
	}
}

var binaryOps = map[opcode.Op]sqlast.BinaryOp{
	opcode.LogicAnd:   sqlast.OpAnd,
	opcode.LogicOr:    sqlast.OpOr,
	opcode.LogicXor:   sqlast.OpXor,
	opcode.EQ:         sqlast.OpEq,
	opcode.NE:         sqlast.OpNe,
	opcode.LT:         sqlast.OpLt,
	opcode.LE:         sqlast.OpLe,
	opcode.GT:         sqlast.OpGt,
	opcode.GE:         sqlast.OpGe,
	opcode.NullEQ:     sqlast.OpNullSafeEq,
	opcode.Plus:       sqlast.OpAdd,
	opcode.Minus:      sqlast.OpSub,
	opcode.Mul:        sqlast.OpMul,
	opcode.Div:        sqlast.OpDiv,
	opcode.IntDiv:     sqlast.OpIntDiv,
	opcode.Mod:        sqlast.OpMod,
	opcode.And:        sqlast.OpBitAnd,
	opcode.Or:         sqlast.OpBitOr,
	opcode.Xor:        sqlast.OpBitXor,
	opcode.LeftShift:  sqlast.OpShiftLeft,
	opcode.RightShift: sqlast.OpShiftRight,
}

var unaryOps = map[opcode.Op]sqlast.UnaryOp{
	opcode.Not:    sqlast.UnaryNot,
	opcode.Not2:   sqlast.UnaryNot,
	opcode.Minus:  sqlast.UnaryMinus,
	opcode.Plus:   sqlast.UnaryPlus,
	opcode.BitNeg: sqlast.UnaryBitNot,
}

func exprs(list []ast.ExprNode) ([]sqlast.Expr, error) {
	out := make([]sqlast.Expr, len(list))
	for i, n := range list {
		e, err := expr(n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func expr(n ast.ExprNode) (sqlast.Expr, error) {
	switch x := n.(type) {
	case *ast.ColumnNameExpr:
		return &sqlast.ColumnRef{Schema: x.Name.Schema.O, Table: x.Name.Table.O, Column: x.Name.Name.O}, nil

	case *ast.ParenthesesExpr:
		inner, err := expr(x.Expr)
		if err != nil {
			return nil, err
		}
		return &sqlast.Paren{X: inner}, nil

	case *ast.PositionExpr:
		if x.P != nil {
			return nil, sqlerr.Unsupported("?")
		}
		return &sqlast.Position{N: x.N}, nil

	case *ast.BinaryOperationExpr:
		op, ok := binaryOps[x.Op]
		if !ok {
			return nil, sqlerr.Unsupported(x.Op.String())
		}
		l, err := expr(x.L)
		if err != nil {
			return nil, err
		}
		r, err := expr(x.R)
		if err != nil {
			return nil, err
		}
		return &sqlast.Binary{Op: op, L: l, R: r}, nil

	case *ast.UnaryOperationExpr:
		op, ok := unaryOps[x.Op]
		if !ok {
			return nil, sqlerr.Unsupported(x.Op.String())
		}
		v, err := expr(x.V)
		if err != nil {
			return nil, err
		}
		return &sqlast.Unary{Op: op, X: v}, nil

	case *ast.BetweenExpr:
		v, err := expr(x.Expr)
		if err != nil {
			return nil, err
		}
		lo, err := expr(x.Left)
		if err != nil {
			return nil, err
		}
		hi, err := expr(x.Right)
		if err != nil {
			return nil, err
		}
		return &sqlast.Between{X: v, Low: lo, High: hi, Not: x.Not}, nil

	case *ast.IsNullExpr:
		v, err := expr(x.Expr)
		if err != nil {
			return nil, err
		}
		return &sqlast.IsNull{X: v, Not: x.Not}, nil

	case *ast.PatternInExpr:
		v, err := expr(x.Expr)
		if err != nil {
			return nil, err
		}
		if x.Sel != nil {
			sub, err := expr(x.Sel)
			if err != nil {
				return nil, err
			}
			return &sqlast.InList{X: v, List: []sqlast.Expr{sub}, Not: x.Not}, nil
		}
		list, err := exprs(x.List)
		if err != nil {
			return nil, err
		}
		return &sqlast.InList{X: v, List: list, Not: x.Not}, nil

	case *ast.PatternLikeOrIlikeExpr:
		if !x.IsLike {
			return nil, sqlerr.Unsupported("ILIKE")
		}
		v, err := expr(x.Expr)
		if err != nil {
			return nil, err
		}
		pat, err := expr(x.Pattern)
		if err != nil {
			return nil, err
		}
		return &sqlast.Like{X: v, Pattern: pat, Not: x.Not}, nil

	case *ast.PatternRegexpExpr:
		v, err := expr(x.Expr)
		if err != nil {
			return nil, err
		}
		pat, err := expr(x.Pattern)
		if err != nil {
			return nil, err
		}
		return &sqlast.Like{X: v, Pattern: pat, Not: x.Not, Regexp: true}, nil

	case *ast.AggregateFuncExpr:
		return aggregate(x)

	case *ast.FuncCallExpr:
		return funcCall(x)

	case *ast.CaseExpr:
		return &sqlast.Case{}, nil

	case *ast.SubqueryExpr:
		sel, err := subquery(x.Query)
		if err != nil {
			return nil, err
		}
		return &sqlast.Subquery{Select: sel}, nil

	case *ast.ExistsSubqueryExpr:
		var sel sqlast.Statement
		if sq, ok := x.Sel.(*ast.SubqueryExpr); ok {
			var err error
			if sel, err = subquery(sq.Query); err != nil {
				return nil, err
			}
		}
		return &sqlast.Exists{Select: sel, Not: x.Not}, nil

	case *ast.CompareSubqueryExpr:
		op, ok := binaryOps[x.Op]
		if !ok {
			return nil, sqlerr.Unsupported(x.Op.String())
		}
		v, err := expr(x.L)
		if err != nil {
			return nil, err
		}
		return &sqlast.Quantified{X: v, Op: op, All: x.All}, nil

	case *ast.MatchAgainst:
		return &sqlast.Match{}, nil

	case *ast.WindowFuncExpr:
		return nil, sqlerr.Unsupported("OVER")

	case *ast.FuncCastExpr:
		return nil, sqlerr.Unsupported("CAST")

	case ast.ParamMarkerExpr:
		return nil, sqlerr.Unsupported("?")

	case ast.ValueExpr:
		return value(x)

	default:
		return nil, sqlerr.Unsupported(restore(n))
	}
}

func subquery(n ast.ResultSetNode) (sqlast.Statement, error) {
	switch q := n.(type) {
	case *ast.SelectStmt:
		return selectStmt(q)
	case *ast.SetOprStmt:
		return setOpr(q)
	default:
		return nil, sqlerr.Unsupported("subquery")
	}
}

func aggregate(x *ast.AggregateFuncExpr) (sqlast.Expr, error) {
	call := &sqlast.FuncCall{Name: strings.ToUpper(x.F), Distinct: x.Distinct}
	// COUNT(*) arrives as COUNT(1)
	if strings.EqualFold(x.F, ast.AggFuncCount) && !x.Distinct && len(x.Args) == 1 {
		if v, ok := x.Args[0].(ast.ValueExpr); ok && v.GetValue() != nil {
			call.Star = true
			return call, nil
		}
	}
	args, err := exprs(x.Args)
	if err != nil {
		return nil, err
	}
	call.Args = args
	return call, nil
}

func funcCall(x *ast.FuncCallExpr) (sqlast.Expr, error) {
	kind := sqlast.LiteralKind(-1)
	switch x.FnName.L {
	case ast.DateLiteral:
		kind = sqlast.LitDate
	case ast.TimeLiteral:
		kind = sqlast.LitTime
	case ast.TimestampLiteral:
		kind = sqlast.LitTimestamp
	}
	if kind >= 0 {
		if len(x.Args) != 1 {
			return nil, sqlerr.New(sqlerr.CodeSyntaxError, x.FnName.O, "malformed %s literal", x.FnName.O)
		}
		v, ok := x.Args[0].(ast.ValueExpr)
		if !ok {
			return nil, sqlerr.New(sqlerr.CodeSyntaxError, x.FnName.O, "malformed %s literal", x.FnName.O)
		}
		return &sqlast.Literal{Kind: kind, Value: fmt.Sprint(v.GetValue())}, nil
	}

	args, err := exprs(x.Args)
	if err != nil {
		return nil, err
	}
	return &sqlast.FuncCall{Name: x.FnName.O, Args: args}, nil
}

// value classifies a parsed constant. TiDB reads TRUE and FALSE as the
// integers 1 and 0.
func value(v ast.ValueExpr) (sqlast.Expr, error) {
	switch x := v.GetValue().(type) {
	case nil:
		return &sqlast.Literal{Kind: sqlast.LitNull}, nil
	case int64:
		return &sqlast.Literal{Kind: sqlast.LitInteger, Value: strconv.FormatInt(x, 10)}, nil
	case uint64:
		return &sqlast.Literal{Kind: sqlast.LitInteger, Value: strconv.FormatUint(x, 10)}, nil
	case float64:
		return &sqlast.Literal{Kind: sqlast.LitFloat, Value: strconv.FormatFloat(x, 'g', -1, 64)}, nil
	case float32:
		return &sqlast.Literal{Kind: sqlast.LitFloat, Value: strconv.FormatFloat(float64(x), 'g', -1, 32)}, nil
	case string:
		return &sqlast.Literal{Kind: sqlast.LitString, Value: x}, nil
	case []byte:
		return &sqlast.Literal{Kind: sqlast.LitString, Value: string(x)}, nil
	case bool:
		return &sqlast.Literal{Kind: sqlast.LitBoolean, Value: strconv.FormatBool(x)}, nil
	case fmt.Stringer:
		s := x.String()
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return &sqlast.Literal{Kind: sqlast.LitDecimal, Value: s}, nil
		}
		return nil, sqlerr.Unsupported("literal " + s)
	default:
		return nil, sqlerr.Unsupported(fmt.Sprintf("literal %v", x))
	}
}

func restore(n ast.Node) string {
	var sb strings.Builder
	if err := n.Restore(format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)); err != nil {
		return fmt.Sprintf("%T", n)
	}
	return sb.String()
}
