package dql

import (
	"regexp"
	"strings"
)

// LowerFunc lower-cases a string.
type LowerFunc struct{}

func (f *LowerFunc) Name() string  { return "lower" }
func (f *LowerFunc) MinArity() int { return 1 }
func (f *LowerFunc) MaxArity() int { return 1 }
func (f *LowerFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}
	return Str(strings.ToLower(s)), nil
}

// UpperFunc upper-cases a string.
type UpperFunc struct{}

func (f *UpperFunc) Name() string  { return "upper" }
func (f *UpperFunc) MinArity() int { return 1 }
func (f *UpperFunc) MaxArity() int { return 1 }
func (f *UpperFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}
	return Str(strings.ToUpper(s)), nil
}

// ReplaceFunc replaces every match of a regular expression pattern. An
// invalid pattern leaves the input unchanged.
type ReplaceFunc struct{}

func (f *ReplaceFunc) Name() string  { return "replace" }
func (f *ReplaceFunc) MinArity() int { return 3 }
func (f *ReplaceFunc) MaxArity() int { return 3 }
func (f *ReplaceFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}
	pattern, _ := args[1].str()
	replacement, _ := args[2].str()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Str(s), nil
	}
	return Str(re.ReplaceAllString(s, replacement)), nil
}

// SplitFunc splits a string on a separator (default ",").
type SplitFunc struct{}

func (f *SplitFunc) Name() string  { return "split" }
func (f *SplitFunc) MinArity() int { return 1 }
func (f *SplitFunc) MaxArity() int { return 2 }
func (f *SplitFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}

	sep := ","
	if len(args) == 2 {
		if v, ok := args[1].str(); ok {
			sep = v
		}
	}

	parts := strings.Split(s, sep)
	items := make([]Value, len(parts))
	for i, part := range parts {
		items[i] = Str(part)
	}
	return ArrayVal(items), nil
}

// RegexMatchFunc tests whether a string matches a regular expression. An
// invalid pattern matches nothing.
type RegexMatchFunc struct{}

func (f *RegexMatchFunc) Name() string  { return "regexmatch" }
func (f *RegexMatchFunc) MinArity() int { return 2 }
func (f *RegexMatchFunc) MaxArity() int { return 2 }
func (f *RegexMatchFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	pattern, _ := args[0].str()
	s, ok := args[1].str()
	if !ok {
		s = args[1].String()
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return BoolVal(false), nil
	}
	return BoolVal(re.MatchString(s)), nil
}

// RegexReplaceFunc replaces every match of a regular expression. An
// invalid pattern leaves the input unchanged.
type RegexReplaceFunc struct{}

func (f *RegexReplaceFunc) Name() string  { return "regexreplace" }
func (f *RegexReplaceFunc) MinArity() int { return 3 }
func (f *RegexReplaceFunc) MaxArity() int { return 3 }
func (f *RegexReplaceFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}
	pattern, _ := args[1].str()
	replacement, _ := args[2].str()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Str(s), nil
	}
	return Str(re.ReplaceAllString(s, replacement)), nil
}

// SubstringFunc slices a string by rune offsets, clamped to the string
// bounds. The end offset is optional.
type SubstringFunc struct{}

func (f *SubstringFunc) Name() string  { return "substring" }
func (f *SubstringFunc) MinArity() int { return 2 }
func (f *SubstringFunc) MaxArity() int { return 3 }
func (f *SubstringFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}
	runes := []rune(s)

	start := 0
	if n, ok := args[1].number(); ok {
		start = int(n)
	}
	end := len(runes)
	if len(args) == 3 {
		if n, ok := args[2].number(); ok {
			end = int(n)
		}
	}

	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return Str(""), nil
	}
	return Str(string(runes[start:end])), nil
}

// StartsWithFunc tests a string prefix.
type StartsWithFunc struct{}

func (f *StartsWithFunc) Name() string  { return "startswith" }
func (f *StartsWithFunc) MinArity() int { return 2 }
func (f *StartsWithFunc) MaxArity() int { return 2 }
func (f *StartsWithFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}
	prefix, _ := args[1].str()
	return BoolVal(strings.HasPrefix(s, prefix)), nil
}

// EndsWithFunc tests a string suffix.
type EndsWithFunc struct{}

func (f *EndsWithFunc) Name() string  { return "endswith" }
func (f *EndsWithFunc) MinArity() int { return 2 }
func (f *EndsWithFunc) MaxArity() int { return 2 }
func (f *EndsWithFunc) Call(ev *Evaluator, args []Value) (Value, error) {
	s, ok := args[0].str()
	if !ok {
		s = args[0].String()
	}
	suffix, _ := args[1].str()
	return BoolVal(strings.HasSuffix(s, suffix)), nil
}
