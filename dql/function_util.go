package dql

import "math"

// DefaultFunc substitutes a fallback for null.
type DefaultFunc struct{}

func (f *DefaultFunc) Name() string  { return "default" }
func (f *DefaultFunc) MinArity() int { return 2 }
func (f *DefaultFunc) MaxArity() int { return 2 }
func (f *DefaultFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	if args[0].IsNull() {
		return args[1], nil
	}
	return args[0], nil
}

// ChoiceFunc picks between two values by the truthiness of a condition.
type ChoiceFunc struct{}

func (f *ChoiceFunc) Name() string  { return "choice" }
func (f *ChoiceFunc) MinArity() int { return 3 }
func (f *ChoiceFunc) MaxArity() int { return 3 }
func (f *ChoiceFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	if args[0].Truthy() {
		return args[1], nil
	}
	return args[2], nil
}

// RoundFunc rounds a number to a given number of decimals (default 0).
type RoundFunc struct{}

func (f *RoundFunc) Name() string  { return "round" }
func (f *RoundFunc) MinArity() int { return 1 }
func (f *RoundFunc) MaxArity() int { return 2 }
func (f *RoundFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	n, ok := args[0].number()
	if !ok {
		return Null, nil
	}

	decimals := 0
	if len(args) == 2 {
		if d, ok := args[1].number(); ok {
			decimals = int(d)
		}
	}

	scale := math.Pow(10, float64(decimals))
	return Num(math.Round(n*scale) / scale), nil
}

// MinFunc returns the smallest numeric value among its arguments,
// flattening arrays. Null when nothing is numeric.
type MinFunc struct{}

func (f *MinFunc) Name() string  { return "min" }
func (f *MinFunc) MinArity() int { return 1 }
func (f *MinFunc) MaxArity() int { return -1 }
func (f *MinFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	nums := flattenNumeric(args)
	if len(nums) == 0 {
		return Null, nil
	}
	min := nums[0]
	for _, n := range nums[1:] {
		if n < min {
			min = n
		}
	}
	return Num(min), nil
}

// MaxFunc returns the largest numeric value among its arguments,
// flattening arrays. Null when nothing is numeric.
type MaxFunc struct{}

func (f *MaxFunc) Name() string  { return "max" }
func (f *MaxFunc) MinArity() int { return 1 }
func (f *MaxFunc) MaxArity() int { return -1 }
func (f *MaxFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	nums := flattenNumeric(args)
	if len(nums) == 0 {
		return Null, nil
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return Num(max), nil
}

// SumFunc sums the numeric values among its arguments, flattening
// arrays. An empty input sums to 0.
type SumFunc struct{}

func (f *SumFunc) Name() string  { return "sum" }
func (f *SumFunc) MinArity() int { return 1 }
func (f *SumFunc) MaxArity() int { return -1 }
func (f *SumFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	total := 0.0
	for _, n := range flattenNumeric(args) {
		total += n
	}
	return Num(total), nil
}

// AverageFunc averages the numeric values among its arguments,
// flattening arrays. Null when nothing is numeric.
type AverageFunc struct{}

func (f *AverageFunc) Name() string  { return "average" }
func (f *AverageFunc) MinArity() int { return 1 }
func (f *AverageFunc) MaxArity() int { return -1 }
func (f *AverageFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	nums := flattenNumeric(args)
	if len(nums) == 0 {
		return Null, nil
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return Num(total / float64(len(nums))), nil
}
