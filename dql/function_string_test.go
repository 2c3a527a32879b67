package dql

import "testing"

func TestStringFuncs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lower", input: `lower("MiXeD")`, want: "mixed"},
		{name: "upper", input: `upper("MiXeD")`, want: "MIXED"},
		{name: "replace global", input: `replace("a-b-c", "-", "_")`, want: "a_b_c"},
		{name: "replace pattern", input: `replace("a1b22c", "[0-9]+", "#")`, want: "a#b#c"},
		{name: "replace invalid pattern unchanged", input: `replace("abc", "[", "#")`, want: "abc"},
		{name: "regexreplace", input: `regexreplace("2024-01-02", "-", "/")`, want: "2024/01/02"},
		{name: "regexreplace invalid unchanged", input: `regexreplace("abc", "(", "#")`, want: "abc"},
		{name: "substring", input: `substring("hello", 1, 3)`, want: "el"},
		{name: "substring to end", input: `substring("hello", 2)`, want: "llo"},
		{name: "substring clamps", input: `substring("hi", 0, 99)`, want: "hi"},
		{name: "substring inverted range", input: `substring("hi", 3, 1)`, want: ""},
		{name: "substring runes", input: `substring("héllo", 1, 2)`, want: "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalString(t, tt.input, nil); v.String() != tt.want {
				t.Errorf("%s = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}
}

func TestStringPredicates(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "regexmatch", input: `regexmatch("^20[0-9]{2}", "2024-01-02")`, want: true},
		{name: "regexmatch miss", input: `regexmatch("^19", "2024")`, want: false},
		{name: "regexmatch invalid pattern", input: `regexmatch("(", "anything")`, want: false},
		{name: "startswith", input: `startswith("hello", "he")`, want: true},
		{name: "startswith miss", input: `startswith("hello", "lo")`, want: false},
		{name: "endswith", input: `endswith("hello", "lo")`, want: true},
		{name: "endswith miss", input: `endswith("hello", "he")`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v := evalString(t, tt.input, nil); v.Truthy() != tt.want {
				t.Errorf("%s = %v, want %v", tt.input, v.Truthy(), tt.want)
			}
		})
	}
}
