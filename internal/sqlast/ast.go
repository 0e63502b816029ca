// Package sqlast defines the SQL syntax tree the compiler consumes.
//
// The tree is deliberately small: it names every construct the compiler
// either translates or must reject, and nothing else. Front ends (see
// package sqlparse) map their parser's output onto it.
//
// Statement, TableExpr and Expr are sealed interfaces. Consumers type
// switch over them exhaustively; a new node kind breaks every switch that
// forgets it.
package sqlast

// Node is any syntax tree node.
type Node interface {
	node()
}

// Statement is a top-level SQL statement.
//
// Statement types: *Select, *SetOp, *Other.
type Statement interface {
	Node
	stmtNode()
}

// Select is a SELECT statement.
type Select struct {
	Distinct bool
	// Top is the SQL Server style row limit, nil when absent.
	Top     Expr
	Fields  []SelectItem
	From    []TableExpr
	Where   Expr
	GroupBy []Expr
	Having  Expr
	OrderBy []OrderItem
	Limit   *Limit
}

// SelectItem is one entry of the SELECT list. Exactly one of Star or Expr
// is set. Table restricts a star to one table (t.*).
type SelectItem struct {
	Star   bool
	Schema string
	Table  string
	Expr   Expr
	Alias  string
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Expr Expr
	Desc bool
}

// Limit holds LIMIT and OFFSET. Count is nil for a LIMIT with no row count.
type Limit struct {
	Count  Expr
	Offset Expr
}

// SetOp is a UNION, INTERSECT or EXCEPT of selects.
type SetOp struct {
	Op    string
	Left  Statement
	Right Statement
}

// Other is any statement that is not a query.
type Other struct {
	// Keyword is the leading SQL keyword, for example INSERT.
	Keyword string
}

func (*Select) node()     {}
func (*SetOp) node()      {}
func (*Other) node()      {}
func (*Select) stmtNode() {}
func (*SetOp) stmtNode()  {}
func (*Other) stmtNode()  {}

// TableExpr is an entry in FROM.
//
// TableExpr types: *TableName, *Join, *DerivedTable.
type TableExpr interface {
	Node
	tableNode()
}

// TableName references a catalog table.
type TableName struct {
	Schema string
	Name   string
	Alias  string
}

// JoinKind is the join operator written in SQL.
type JoinKind int

const (
	// JoinSimple is a join with no ON or USING, including comma joins.
	JoinSimple JoinKind = iota
	JoinInner
	JoinLeft
	JoinRight
	JoinFull
)

func (k JoinKind) String() string {
	switch k {
	case JoinSimple:
		return "CROSS JOIN"
	case JoinInner:
		return "INNER JOIN"
	case JoinLeft:
		return "LEFT OUTER JOIN"
	case JoinRight:
		return "RIGHT OUTER JOIN"
	case JoinFull:
		return "FULL OUTER JOIN"
	default:
		return "JOIN"
	}
}

// Join combines two table expressions.
type Join struct {
	Kind    JoinKind
	Natural bool
	Left    TableExpr
	Right   TableExpr
	On      Expr
	Using   []string
}

// DerivedTable is a subquery in FROM.
type DerivedTable struct {
	Select Statement
	Alias  string
}

func (*TableName) node()         {}
func (*Join) node()              {}
func (*DerivedTable) node()      {}
func (*TableName) tableNode()    {}
func (*Join) tableNode()         {}
func (*DerivedTable) tableNode() {}

// Expr is a SQL expression.
//
// Expr types: *ColumnRef, *Literal, *Unary, *Binary, *Between, *IsNull,
// *InList, *Like, *FuncCall, *Paren, *Position, *Case, *Subquery,
// *Exists, *Quantified, *Match.
type Expr interface {
	Node
	exprNode()
}

// ColumnRef is a possibly qualified column reference.
type ColumnRef struct {
	Schema string
	Table  string
	Column string
}

// LiteralKind is the lexical class of a literal.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitInteger
	LitDecimal
	LitFloat
	LitBoolean
	LitNull
	LitDate
	LitTime
	LitTimestamp
)

// Literal is a constant. Value is the lexical form without quotes.
type Literal struct {
	Kind  LiteralKind
	Value string
}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryMinus
	UnaryPlus
	UnaryBitNot
)

// Unary applies a prefix operator.
type Unary struct {
	Op UnaryOp
	X  Expr
}

// BinaryOp is an infix operator.
type BinaryOp int

const (
	OpAnd BinaryOp = iota
	OpOr
	OpXor
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpNullSafeEq
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIntDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
	OpConcat
)

var binaryOpText = [...]string{
	OpAnd:        "AND",
	OpOr:         "OR",
	OpXor:        "XOR",
	OpEq:         "=",
	OpNe:         "!=",
	OpLt:         "<",
	OpLe:         "<=",
	OpGt:         ">",
	OpGe:         ">=",
	OpNullSafeEq: "<=>",
	OpAdd:        "+",
	OpSub:        "-",
	OpMul:        "*",
	OpDiv:        "/",
	OpIntDiv:     "DIV",
	OpMod:        "%",
	OpBitAnd:     "&",
	OpBitOr:      "|",
	OpBitXor:     "^",
	OpShiftLeft:  "<<",
	OpShiftRight: ">>",
	OpConcat:     "||",
}

// String returns the SQL spelling of the operator.
func (o BinaryOp) String() string {
	if o < 0 || int(o) >= len(binaryOpText) {
		return "?"
	}
	return binaryOpText[o]
}

// Binary applies an infix operator.
type Binary struct {
	Op BinaryOp
	L  Expr
	R  Expr
}

// Between is x [NOT] BETWEEN low AND high.
type Between struct {
	X    Expr
	Low  Expr
	High Expr
	Not  bool
}

// IsNull is x IS [NOT] NULL.
type IsNull struct {
	X   Expr
	Not bool
}

// InList is x [NOT] IN (list).
type InList struct {
	X    Expr
	List []Expr
	Not  bool
}

// Like is x [NOT] LIKE pattern, or REGEXP when Regexp is set.
type Like struct {
	X       Expr
	Pattern Expr
	Not     bool
	Regexp  bool
}

// FuncCall is a scalar or aggregate function call. Star marks COUNT(*).
type FuncCall struct {
	Name     string
	Args     []Expr
	Distinct bool
	Star     bool
}

// Paren is a parenthesized expression.
type Paren struct {
	X Expr
}

// Position is a 1-based select list ordinal, as in ORDER BY 2.
type Position struct {
	N int
}

// Case is a CASE expression. Its branches are not modelled.
type Case struct{}

// Subquery is a scalar subquery.
type Subquery struct {
	Select Statement
}

// Exists is [NOT] EXISTS (subquery).
type Exists struct {
	Select Statement
	Not    bool
}

// Quantified is x op ALL|ANY (subquery).
type Quantified struct {
	X   Expr
	Op  BinaryOp
	All bool
}

// Match is a full-text MATCH ... AGAINST.
type Match struct{}

func (*ColumnRef) node()      {}
func (*Literal) node()        {}
func (*Unary) node()          {}
func (*Binary) node()         {}
func (*Between) node()        {}
func (*IsNull) node()         {}
func (*InList) node()         {}
func (*Like) node()           {}
func (*FuncCall) node()       {}
func (*Paren) node()          {}
func (*Position) node()       {}
func (*Case) node()           {}
func (*Subquery) node()       {}
func (*Exists) node()         {}
func (*Quantified) node()     {}
func (*Match) node()          {}
func (*ColumnRef) exprNode()  {}
func (*Literal) exprNode()    {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Between) exprNode()    {}
func (*IsNull) exprNode()     {}
func (*InList) exprNode()     {}
func (*Like) exprNode()       {}
func (*FuncCall) exprNode()   {}
func (*Paren) exprNode()      {}
func (*Position) exprNode()   {}
func (*Case) exprNode()       {}
func (*Subquery) exprNode()   {}
func (*Exists) exprNode()     {}
func (*Quantified) exprNode() {}
func (*Match) exprNode()      {}

// Col is shorthand for a column reference.
func Col(table, column string) *ColumnRef {
	return &ColumnRef{Table: table, Column: column}
}

// Str is shorthand for a string literal.
func Str(s string) *Literal { return &Literal{Kind: LitString, Value: s} }

// Int is shorthand for an integer literal.
func Int(s string) *Literal { return &Literal{Kind: LitInteger, Value: s} }

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*Paren)
		if !ok {
			return e
		}
		e = p.X
	}
}
