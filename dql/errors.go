package dql

import "fmt"

// ParseError reports a malformed expression or query. It is fatal: the
// query is rejected before execution.
type ParseError struct {
	Offset   int
	Got      string
	Expected string
}

func (e *ParseError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("parse error at offset %d: expected %s, got end of input", e.Offset, e.Expected)
	}
	return fmt.Sprintf("parse error at offset %d: expected %s, got %q", e.Offset, e.Expected, e.Got)
}

// UnknownFunctionError reports a call to a function the library does not
// provide. The executor treats it as row-local in WHERE clauses.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function: %s", e.Name)
}

// TypeMismatchError reports arithmetic on non-numeric operands. It is
// row-local: the row is excluded from WHERE, the field nulled in
// projection.
type TypeMismatchError struct {
	Op    string
	Left  ValueKind
	Right ValueKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: cannot apply %q to %s and %s", e.Op, e.Left, e.Right)
}

// AggregateWithoutGroupByError reports aggregate syntax used in a query
// with no GROUP BY clause. It is fatal.
type AggregateWithoutGroupByError struct {
	Function string
}

func (e *AggregateWithoutGroupByError) Error() string {
	return fmt.Sprintf("aggregate %s requires a GROUP BY clause", e.Function)
}
