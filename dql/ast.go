package dql

// Expr is a node in the expression AST. Trees are immutable once built:
// the parser constructs them and the evaluator only reads them.
type Expr interface {
	exprNode()
}

// LiteralExpr holds a literal value (number, string, true/false/null).
type LiteralExpr struct {
	Value Value
}

// IdentExpr references a field or the special "file" object.
type IdentExpr struct {
	Name string
}

// PropertyExpr is a static property access: target.name, or a literal
// index folded at parse time.
type PropertyExpr struct {
	Target Expr
	Name   string
}

// IndexExpr is a dynamic index access: target[index]. The index
// expression is evaluated against the current context.
type IndexExpr struct {
	Target Expr
	Index  Expr
}

// UnaryExpr applies NOT, unary minus or unary plus.
type UnaryExpr struct {
	Op      string
	Operand Expr
}

// BinaryExpr applies a comparison (= != < > <= >=) or arithmetic
// (+ - * / %) operator. == is normalized to = by the parser.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// LogicalExpr is a short-circuiting AND/OR. Operands are evaluated at
// evaluation time, never at parse time.
type LogicalExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

// CallExpr invokes a builtin function by name.
type CallExpr struct {
	Name string
	Args []Expr
}

// LambdaExpr is a one-parameter lambda (param => body), valid only in
// function-argument position.
type LambdaExpr struct {
	Param string
	Body  Expr
}

func (*LiteralExpr) exprNode()  {}
func (*IdentExpr) exprNode()    {}
func (*PropertyExpr) exprNode() {}
func (*IndexExpr) exprNode()    {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*LogicalExpr) exprNode()  {}
func (*CallExpr) exprNode()     {}
func (*LambdaExpr) exprNode()   {}
