package dql

import (
	"sort"
	"strings"
)

// ContainsFunc tests array membership by deep equality, or substring
// containment when both sides are strings. Anything else is stringified
// and tested as a substring.
type ContainsFunc struct{}

func (f *ContainsFunc) Name() string  { return "contains" }
func (f *ContainsFunc) MinArity() int { return 2 }
func (f *ContainsFunc) MaxArity() int { return 2 }
func (f *ContainsFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	haystack, needle := args[0], args[1]

	if items, ok := haystack.array(); ok {
		for _, item := range items {
			if valuesEqual(item, needle) {
				return BoolVal(true), nil
			}
		}
		return BoolVal(false), nil
	}

	hs, hok := haystack.str()
	ns, nok := needle.str()
	if hok && nok {
		return BoolVal(strings.Contains(hs, ns)), nil
	}
	return BoolVal(strings.Contains(haystack.String(), needle.String())), nil
}

// LengthFunc returns the length of an array or string, the key count of
// an object, and 0 for anything else.
type LengthFunc struct{}

func (f *LengthFunc) Name() string  { return "length" }
func (f *LengthFunc) MinArity() int { return 1 }
func (f *LengthFunc) MaxArity() int { return 1 }
func (f *LengthFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	switch args[0].Kind {
	case KindArray:
		return Num(float64(len(args[0].Data.([]Value)))), nil
	case KindString:
		return Num(float64(len(args[0].Data.(string)))), nil
	case KindObject:
		return Num(float64(len(args[0].Data.(map[string]Value)))), nil
	default:
		return Num(0), nil
	}
}

// JoinFunc joins array elements with a separator (default ", ").
type JoinFunc struct{}

func (f *JoinFunc) Name() string  { return "join" }
func (f *JoinFunc) MinArity() int { return 1 }
func (f *JoinFunc) MaxArity() int { return 2 }
func (f *JoinFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	items, ok := args[0].array()
	if !ok {
		return Str(args[0].String()), nil
	}

	sep := ", "
	if len(args) == 2 {
		if s, ok := args[1].str(); ok {
			sep = s
		}
	}

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return Str(strings.Join(parts, sep)), nil
}

// ListFunc builds an array from its arguments.
type ListFunc struct{}

func (f *ListFunc) Name() string  { return "list" }
func (f *ListFunc) MinArity() int { return 0 }
func (f *ListFunc) MaxArity() int { return -1 }
func (f *ListFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	items := make([]Value, len(args))
	copy(items, args)
	return ArrayVal(items), nil
}

// SortFunc sorts an array by natural ordering, stable, ascending by
// default ("desc" reverses). Incomparable pairs keep their order.
type SortFunc struct{}

func (f *SortFunc) Name() string  { return "sort" }
func (f *SortFunc) MinArity() int { return 1 }
func (f *SortFunc) MaxArity() int { return 2 }
func (f *SortFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	items, ok := args[0].array()
	if !ok {
		return args[0], nil
	}

	desc := false
	if len(args) == 2 {
		if dir, ok := args[1].str(); ok {
			desc = strings.EqualFold(dir, "desc")
		}
	}

	sorted := make([]Value, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if desc {
			a, b = b, a
		}
		less, ok := lessThan(a, b)
		return ok && less
	})
	return ArrayVal(sorted), nil
}

// ReverseFunc reverses an array.
type ReverseFunc struct{}

func (f *ReverseFunc) Name() string  { return "reverse" }
func (f *ReverseFunc) MinArity() int { return 1 }
func (f *ReverseFunc) MaxArity() int { return 1 }
func (f *ReverseFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	items, ok := args[0].array()
	if !ok {
		return Null, nil
	}

	reversed := make([]Value, len(items))
	for i, item := range items {
		reversed[len(items)-1-i] = item
	}
	return ArrayVal(reversed), nil
}

// FilterFunc keeps the elements for which a one-parameter lambda is
// truthy.
type FilterFunc struct{}

func (f *FilterFunc) Name() string  { return "filter" }
func (f *FilterFunc) MinArity() int { return 2 }
func (f *FilterFunc) MaxArity() int { return 2 }
func (f *FilterFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	items, ok := args[0].array()
	if !ok {
		return Null, nil
	}
	if args[1].Kind != KindLambda {
		return Null, nil
	}

	kept := make([]Value, 0, len(items))
	for _, item := range items {
		v, err := ev.applyLambda(args[1], item)
		if err != nil {
			return Null, err
		}
		if v.Truthy() {
			kept = append(kept, item)
		}
	}
	return ArrayVal(kept), nil
}

// MapFunc transforms each element through a one-parameter lambda.
type MapFunc struct{}

func (f *MapFunc) Name() string  { return "map" }
func (f *MapFunc) MinArity() int { return 2 }
func (f *MapFunc) MaxArity() int { return 2 }
func (f *MapFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	items, ok := args[0].array()
	if !ok {
		return Null, nil
	}
	if args[1].Kind != KindLambda {
		return Null, nil
	}

	mapped := make([]Value, len(items))
	for i, item := range items {
		v, err := ev.applyLambda(args[1], item)
		if err != nil {
			return Null, err
		}
		mapped[i] = v
	}
	return ArrayVal(mapped), nil
}
