package dql

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// FileMeta is the fixed file metadata attached to a row.
type FileMeta struct {
	Path     string
	Name     string
	Folder   string
	Ext      string
	CTime    time.Time
	MTime    time.Time
	Size     int64
	Outlinks []string
}

// Context is the row view exposed to the evaluator: a free-form field map
// plus the file metadata. It is read-only for the duration of one
// evaluation. Lambda application layers a one-entry scope on top via bind.
type Context struct {
	Fields map[string]Value
	File   FileMeta

	parent     *Context
	boundName  string
	boundValue Value
}

// NewContext creates an evaluation context for one row.
func NewContext(fields map[string]Value, file FileMeta) *Context {
	return &Context{Fields: fields, File: file}
}

// bind creates a child context with one extra binding layered over this
// one. The receiver is not modified.
func (c *Context) bind(name string, v Value) *Context {
	return &Context{parent: c, boundName: name, boundValue: v}
}

// resolve looks a name up through the binding chain, then the field map,
// then the special "file" object. A "file" entry in the field map shadows
// the metadata object, which is how FLATTEN substitutes elements into
// file paths. An unresolved name is null, not an error.
func (c *Context) resolve(name string) Value {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if ctx.parent != nil {
			if ctx.boundName == name {
				return ctx.boundValue
			}
			continue
		}
		if v, ok := ctx.Fields[name]; ok {
			return v
		}
		if name == "file" {
			return fileObject(ctx.File)
		}
	}
	return Null
}

// fileObject builds the object value backing the "file" identifier.
func fileObject(f FileMeta) Value {
	links := make([]Value, len(f.Outlinks))
	for i, l := range f.Outlinks {
		links[i] = Str(l)
	}
	m := map[string]Value{
		"path":     Str(f.Path),
		"name":     Str(f.Name),
		"folder":   Str(f.Folder),
		"ext":      Str(f.Ext),
		"size":     Num(float64(f.Size)),
		"outlinks": ArrayVal(links),
	}
	if !f.CTime.IsZero() {
		m["ctime"] = DateVal(f.CTime)
	} else {
		m["ctime"] = Null
	}
	if !f.MTime.IsZero() {
		m["mtime"] = DateVal(f.MTime)
	} else {
		m["mtime"] = Null
	}
	return ObjectVal(m)
}

// Evaluator walks expression ASTs against per-row contexts. Each
// evaluator owns an immutable function table built at construction;
// nothing is shared between evaluator instances.
type Evaluator struct {
	funcs *FunctionRegistry
	now   func() time.Time
}

// NewEvaluator creates an evaluator with the builtin function library.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		funcs: newFunctionRegistry(),
		now:   time.Now,
	}
}

// Evaluate evaluates an expression against a context. It is pure given
// the context and never mutates it.
func (ev *Evaluator) Evaluate(expr Expr, ctx *Context) (Value, error) {
	switch e := expr.(type) {
	case *LiteralExpr:
		return e.Value, nil
	case *IdentExpr:
		return ctx.resolve(e.Name), nil
	case *PropertyExpr:
		target, err := ev.Evaluate(e.Target, ctx)
		if err != nil {
			return Null, err
		}
		return propertyOf(target, e.Name), nil
	case *IndexExpr:
		target, err := ev.Evaluate(e.Target, ctx)
		if err != nil {
			return Null, err
		}
		index, err := ev.Evaluate(e.Index, ctx)
		if err != nil {
			return Null, err
		}
		return indexOf(target, index), nil
	case *UnaryExpr:
		return ev.evalUnary(e, ctx)
	case *LogicalExpr:
		return ev.evalLogical(e, ctx)
	case *BinaryExpr:
		return ev.evalBinary(e, ctx)
	case *CallExpr:
		return ev.evalCall(e, ctx)
	case *LambdaExpr:
		return Value{Kind: KindLambda, Data: &lambdaValue{Param: e.Param, Body: e.Body, env: ctx}}, nil
	default:
		return Null, nil
	}
}

func (ev *Evaluator) evalUnary(e *UnaryExpr, ctx *Context) (Value, error) {
	operand, err := ev.Evaluate(e.Operand, ctx)
	if err != nil {
		return Null, err
	}
	switch e.Op {
	case "NOT":
		return BoolVal(!operand.Truthy()), nil
	case "-":
		n, ok := operand.number()
		if !ok {
			return Null, &TypeMismatchError{Op: "-", Left: KindNumber, Right: operand.Kind}
		}
		return Num(-n), nil
	case "+":
		n, ok := operand.number()
		if !ok {
			return Null, &TypeMismatchError{Op: "+", Left: KindNumber, Right: operand.Kind}
		}
		return Num(n), nil
	}
	return Null, nil
}

// evalLogical evaluates AND/OR with short-circuiting.
func (ev *Evaluator) evalLogical(e *LogicalExpr, ctx *Context) (Value, error) {
	left, err := ev.Evaluate(e.Left, ctx)
	if err != nil {
		return Null, err
	}
	if e.Op == "AND" {
		if !left.Truthy() {
			return BoolVal(false), nil
		}
	} else {
		if left.Truthy() {
			return BoolVal(true), nil
		}
	}
	right, err := ev.Evaluate(e.Right, ctx)
	if err != nil {
		return Null, err
	}
	return BoolVal(right.Truthy()), nil
}

func (ev *Evaluator) evalBinary(e *BinaryExpr, ctx *Context) (Value, error) {
	left, err := ev.Evaluate(e.Left, ctx)
	if err != nil {
		return Null, err
	}
	right, err := ev.Evaluate(e.Right, ctx)
	if err != nil {
		return Null, err
	}

	switch e.Op {
	case "=", "!=", "<", ">", "<=", ">=":
		return BoolVal(compareValues(e.Op, left, right)), nil
	case "+", "-", "*", "/", "%":
		l, lok := left.number()
		r, rok := right.number()
		if !lok || !rok {
			return Null, &TypeMismatchError{Op: e.Op, Left: left.Kind, Right: right.Kind}
		}
		switch e.Op {
		case "+":
			return Num(l + r), nil
		case "-":
			return Num(l - r), nil
		case "*":
			return Num(l * r), nil
		case "/":
			return Num(l / r), nil
		case "%":
			return Num(math.Mod(l, r)), nil
		}
	}
	return Null, nil
}

// evalCall evaluates arguments eagerly left-to-right and dispatches by
// lower-cased function name.
func (ev *Evaluator) evalCall(e *CallExpr, ctx *Context) (Value, error) {
	fn, ok := ev.funcs.Get(e.Name)
	if !ok {
		return Null, &UnknownFunctionError{Name: e.Name}
	}

	args := make([]Value, len(e.Args))
	for i, arg := range e.Args {
		v, err := ev.Evaluate(arg, ctx)
		if err != nil {
			return Null, err
		}
		args[i] = v
	}

	if min := fn.MinArity(); min >= 0 && len(args) < min {
		return Null, fmt.Errorf("function %s: expected at least %d arguments, got %d", e.Name, min, len(args))
	}
	if max := fn.MaxArity(); max >= 0 && len(args) > max {
		return Null, fmt.Errorf("function %s: expected at most %d arguments, got %d", e.Name, max, len(args))
	}

	return fn.Call(ev, args)
}

// applyLambda applies a lambda value to one argument by binding its
// parameter in a child scope over the context the lambda was created in.
func (ev *Evaluator) applyLambda(fn Value, arg Value) (Value, error) {
	l, ok := fn.Data.(*lambdaValue)
	if !ok {
		return Null, nil
	}
	return ev.Evaluate(l.Body, l.env.bind(l.Param, arg))
}

// propertyOf resolves a static property access. Null propagates, arrays
// support numeric indices and the length pseudo-property, objects return
// null for absent keys.
func propertyOf(v Value, name string) Value {
	switch v.Kind {
	case KindNull:
		return Null
	case KindArray:
		items := v.Data.([]Value)
		if name == "length" {
			return Num(float64(len(items)))
		}
		idx, err := strconv.Atoi(name)
		if err != nil {
			return Null
		}
		if idx < 0 || idx >= len(items) {
			return Null
		}
		return items[idx]
	case KindObject:
		m := v.Data.(map[string]Value)
		if val, ok := m[name]; ok {
			return val
		}
		return Null
	default:
		return Null
	}
}

// indexOf resolves a dynamic index access: a number indexes an array, a
// string keys an object.
func indexOf(v Value, index Value) Value {
	switch index.Kind {
	case KindNumber:
		if items, ok := v.array(); ok {
			idx := int(index.Data.(float64))
			if idx < 0 || idx >= len(items) {
				return Null
			}
			return items[idx]
		}
		return Null
	case KindString:
		return propertyOf(v, index.Data.(string))
	default:
		return Null
	}
}

// compareValues implements the comparison operators.
//
// Equality is date-aware (a non-date side is parsed as a date when the
// other side is one) and structural for arrays and objects. Ordering is
// defined for date pairs, number pairs and string pairs; any other
// combination is "not less than", so <= and >= degrade to the equality
// check alone.
func compareValues(op string, a, b Value) bool {
	eq := valuesEqual(a, b)
	switch op {
	case "=":
		return eq
	case "!=":
		return !eq
	}

	switch op {
	case "<":
		less, ok := lessThan(a, b)
		return ok && less
	case ">":
		greater, ok := lessThan(b, a)
		return ok && greater
	case "<=":
		if less, ok := lessThan(a, b); ok && less {
			return true
		}
		return eq
	case ">=":
		if greater, ok := lessThan(b, a); ok && greater {
			return true
		}
		return eq
	}
	return false
}

// valuesEqual implements = semantics.
func valuesEqual(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == KindNull && b.Kind == KindNull
	}

	if a.Kind == KindDate || b.Kind == KindDate {
		at, aok := coerceDate(a)
		bt, bok := coerceDate(b)
		if !aok || !bok {
			return false
		}
		return at.Equal(bt)
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindBool:
		return a.Data.(bool) == b.Data.(bool)
	case KindNumber:
		return a.Data.(float64) == b.Data.(float64)
	case KindString:
		return a.Data.(string) == b.Data.(string)
	case KindArray:
		as := a.Data.([]Value)
		bs := b.Data.([]Value)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valuesEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	case KindObject:
		am := a.Data.(map[string]Value)
		bm := b.Data.(map[string]Value)
		if len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !valuesEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// lessThan reports a < b and whether the pair is comparable at all.
func lessThan(a, b Value) (bool, bool) {
	if a.Kind == KindDate || b.Kind == KindDate {
		at, aok := coerceDate(a)
		bt, bok := coerceDate(b)
		if !aok || !bok {
			return false, false
		}
		return at.Before(bt), true
	}
	if a.Kind == KindNumber && b.Kind == KindNumber {
		return a.Data.(float64) < b.Data.(float64), true
	}
	if a.Kind == KindString && b.Kind == KindString {
		return a.Data.(string) < b.Data.(string), true
	}
	return false, false
}

// coerceDate extracts an instant from a value: dates pass through,
// strings are parsed, numbers are epoch milliseconds.
func coerceDate(v Value) (time.Time, bool) {
	switch v.Kind {
	case KindDate:
		return v.Data.(time.Time), true
	case KindString:
		return parseDateString(v.Data.(string))
	case KindNumber:
		ms := int64(v.Data.(float64))
		return time.UnixMilli(ms).UTC(), true
	default:
		return time.Time{}, false
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDateString parses a generic date string.
func parseDateString(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
