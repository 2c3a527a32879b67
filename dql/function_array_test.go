package dql

import "testing"

func TestContainsFunc(t *testing.T) {
	fields := map[string]Value{
		"nums": ArrayVal([]Value{Num(1), Num(2), Num(3)}),
		"rows": ArrayVal([]Value{ArrayVal([]Value{Num(1), Num(2)})}),
	}

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "array membership", input: `contains(nums, 2)`, want: true},
		{name: "array miss", input: `contains(nums, 9)`, want: false},
		{name: "deep equality", input: `contains(rows, list(1, 2))`, want: true},
		{name: "substring", input: `contains("hello", "ell")`, want: true},
		{name: "substring miss", input: `contains("hello", "xyz")`, want: false},
		{name: "stringified fallback", input: `contains(123, "2")`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalString(t, tt.input, fields); v.Truthy() != tt.want {
				t.Errorf("%s = %v, want %v", tt.input, v.Truthy(), tt.want)
			}
		})
	}
}

func TestLengthFunc(t *testing.T) {
	fields := map[string]Value{
		"tags": ArrayVal([]Value{Str("a"), Str("b")}),
		"meta": ObjectVal(map[string]Value{"a": Num(1), "b": Num(2), "c": Num(3)}),
	}

	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "array", input: `length(tags)`, want: 2},
		{name: "string", input: `length("hello")`, want: 5},
		{name: "object key count", input: `length(meta)`, want: 3},
		{name: "number is zero", input: `length(42)`, want: 0},
		{name: "null is zero", input: `length(missing)`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := evalString(t, tt.input, fields).number()
			if n != tt.want {
				t.Errorf("%s = %v, want %v", tt.input, n, tt.want)
			}
		})
	}
}

func TestJoinAndSplitRoundTrip(t *testing.T) {
	fields := map[string]Value{
		"tags": ArrayVal([]Value{Str("a"), Str("b"), Str("c")}),
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "default separator", input: `join(tags)`, want: "a, b, c"},
		{name: "explicit separator", input: `join(tags, "|")`, want: "a|b|c"},
		{name: "split then join", input: `join(split("x;y", ";"), "-")`, want: "x-y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalString(t, tt.input, fields); v.String() != tt.want {
				t.Errorf("%s = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}
}

func TestSortFunc(t *testing.T) {
	fields := map[string]Value{
		"nums":  ArrayVal([]Value{Num(3), Num(1), Num(2)}),
		"words": ArrayVal([]Value{Str("pear"), Str("apple")}),
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "ascending default", input: `join(sort(nums))`, want: "1, 2, 3"},
		{name: "descending", input: `join(sort(nums, "desc"))`, want: "3, 2, 1"},
		{name: "strings", input: `join(sort(words))`, want: "apple, pear"},
		{name: "reverse", input: `join(reverse(nums))`, want: "2, 1, 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalString(t, tt.input, fields); v.String() != tt.want {
				t.Errorf("%s = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}

	t.Run("sort does not mutate input", func(t *testing.T) {
		evalString(t, `sort(nums)`, fields)
		if v := evalString(t, `join(nums)`, fields); v.String() != "3, 1, 2" {
			t.Errorf("nums after sort = %q, want %q", v.String(), "3, 1, 2")
		}
	})
}

func TestFilterAndMapFuncs(t *testing.T) {
	fields := map[string]Value{
		"nums": ArrayVal([]Value{Num(1), Num(2), Num(3)}),
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "filter", input: `join(filter(nums, n => n > 1))`, want: "2, 3"},
		{name: "map", input: `join(map(nums, n => n * 2))`, want: "2, 4, 6"},
		{name: "filter all out", input: `join(filter(nums, n => n > 9))`, want: ""},
		{name: "nested lambdas", input: `join(map(nums, n => length(filter(nums, m => m <= n))))`, want: "1, 2, 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalString(t, tt.input, fields); v.String() != tt.want {
				t.Errorf("%s = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}

	t.Run("non-array is null", func(t *testing.T) {
		if v := evalString(t, `filter("abc", n => n)`, fields); !v.IsNull() {
			t.Errorf("filter on string = %v, want null", v)
		}
	})
}
