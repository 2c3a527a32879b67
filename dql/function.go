package dql

import (
	"strconv"
	"strings"
)

// Function is a builtin callable by the evaluator.
type Function interface {
	// Name returns the function name (matched case-insensitively).
	Name() string
	// MinArity returns the minimum number of arguments (-1 for none).
	MinArity() int
	// MaxArity returns the maximum number of arguments (-1 for unlimited).
	MaxArity() int
	// Call evaluates the function with already-evaluated arguments.
	Call(ev *Evaluator, args []Value) (Value, error)
}

// FunctionRegistry maps lower-cased names to functions. A registry is
// built once per Evaluator and never modified afterwards.
type FunctionRegistry struct {
	functions map[string]Function
}

// Register registers a function under its lower-cased name.
func (r *FunctionRegistry) Register(f Function) {
	r.functions[strings.ToLower(f.Name())] = f
}

// Get retrieves a function by name (case-insensitive).
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	f, ok := r.functions[strings.ToLower(name)]
	return f, ok
}

// newFunctionRegistry builds the builtin library.
func newFunctionRegistry() *FunctionRegistry {
	r := &FunctionRegistry{functions: make(map[string]Function)}

	// Date functions
	r.Register(&DateFunc{})
	r.Register(&DateFormatFunc{})
	r.Register(&DurFunc{})

	// Array functions
	r.Register(&ContainsFunc{})
	r.Register(&LengthFunc{})
	r.Register(&JoinFunc{})
	r.Register(&ListFunc{})
	r.Register(&SortFunc{})
	r.Register(&ReverseFunc{})
	r.Register(&FilterFunc{})
	r.Register(&MapFunc{})

	// String functions
	r.Register(&LowerFunc{})
	r.Register(&UpperFunc{})
	r.Register(&ReplaceFunc{})
	r.Register(&SplitFunc{})
	r.Register(&RegexMatchFunc{})
	r.Register(&RegexReplaceFunc{})
	r.Register(&SubstringFunc{})
	r.Register(&StartsWithFunc{})
	r.Register(&EndsWithFunc{})

	// Utility functions
	r.Register(&DefaultFunc{})
	r.Register(&ChoiceFunc{})
	r.Register(&RoundFunc{})
	r.Register(&MinFunc{})
	r.Register(&MaxFunc{})
	r.Register(&SumFunc{})
	r.Register(&AverageFunc{})

	return r
}

// flattenNumeric flattens nested arrays and collects everything that
// coerces to a number, dropping the rest.
func flattenNumeric(values []Value) []float64 {
	var nums []float64
	for _, v := range values {
		switch v.Kind {
		case KindNumber:
			nums = append(nums, v.Data.(float64))
		case KindString:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v.Data.(string)), 64); err == nil {
				nums = append(nums, f)
			}
		case KindArray:
			nums = append(nums, flattenNumeric(v.Data.([]Value))...)
		}
	}
	return nums
}
