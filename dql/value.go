package dql

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindDate
	KindArray
	KindObject
	KindLambda
)

// String returns a human-readable name for a value kind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// Value is the runtime value of the query language: a tagged union over
// null, bool, number, string, date, array, object and lambda.
// Evaluation never mutates a Value once constructed.
type Value struct {
	Kind ValueKind
	Data interface{}
}

// Null is the null value.
var Null = Value{Kind: KindNull}

// BoolVal returns a boolean value.
func BoolVal(b bool) Value { return Value{Kind: KindBool, Data: b} }

// Num returns a numeric value.
func Num(f float64) Value { return Value{Kind: KindNumber, Data: f} }

// Str returns a string value.
func Str(s string) Value { return Value{Kind: KindString, Data: s} }

// DateVal returns a date value.
func DateVal(t time.Time) Value { return Value{Kind: KindDate, Data: t} }

// ArrayVal returns an array value.
func ArrayVal(items []Value) Value { return Value{Kind: KindArray, Data: items} }

// ObjectVal returns an object value.
func ObjectVal(m map[string]Value) Value { return Value{Kind: KindObject, Data: m} }

// lambdaValue is the payload of a lambda value: a parameter name, a body
// AST and the context the lambda was created in.
type lambdaValue struct {
	Param string
	Body  Expr
	env   *Context
}

func (v Value) boolean() (bool, bool) {
	if v.Kind != KindBool {
		return false, false
	}
	return v.Data.(bool), true
}

func (v Value) number() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Data.(float64), true
}

func (v Value) str() (string, bool) {
	if v.Kind != KindString {
		return "", false
	}
	return v.Data.(string), true
}

func (v Value) date() (time.Time, bool) {
	if v.Kind != KindDate {
		return time.Time{}, false
	}
	return v.Data.(time.Time), true
}

func (v Value) array() ([]Value, bool) {
	if v.Kind != KindArray {
		return nil, false
	}
	return v.Data.([]Value), true
}

func (v Value) object() (map[string]Value, bool) {
	if v.Kind != KindObject {
		return nil, false
	}
	return v.Data.(map[string]Value), true
}

// Truthy reports whether the value is truthy: null, false, zero, the
// empty string and the empty array are falsy, everything else is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNull:
		return false
	case KindBool:
		return v.Data.(bool)
	case KindNumber:
		return v.Data.(float64) != 0
	case KindString:
		return v.Data.(string) != ""
	case KindArray:
		return len(v.Data.([]Value)) > 0
	default:
		return true
	}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders the value for display. Null renders as the empty string,
// a date at midnight as a plain day, arrays as a comma-joined list.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		return strconv.FormatBool(v.Data.(bool))
	case KindNumber:
		return strconv.FormatFloat(v.Data.(float64), 'f', -1, 64)
	case KindString:
		return v.Data.(string)
	case KindDate:
		t := v.Data.(time.Time)
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	case KindArray:
		items := v.Data.([]Value)
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ", ")
	case KindObject:
		m := v.Data.(map[string]Value)
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, m[k].String())
		}
		return strings.Join(parts, ", ")
	case KindLambda:
		return "<lambda>"
	default:
		return ""
	}
}

// MarshalJSON renders the value as plain JSON: dates as RFC 3339 strings,
// lambdas as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull, KindLambda:
		return []byte("null"), nil
	case KindBool, KindNumber, KindString:
		return json.Marshal(v.Data)
	case KindDate:
		return json.Marshal(v.Data.(time.Time).Format(time.RFC3339))
	case KindArray:
		return json.Marshal(v.Data.([]Value))
	case KindObject:
		return json.Marshal(v.Data.(map[string]Value))
	default:
		return []byte("null"), nil
	}
}

// FromInterface converts a value decoded from an external source (yaml
// frontmatter, parquet columns) into a Value. time.Time becomes a date,
// maps and slices convert recursively, unknown types stringify.
func FromInterface(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return Null
	case bool:
		return BoolVal(val)
	case int:
		return Num(float64(val))
	case int8:
		return Num(float64(val))
	case int16:
		return Num(float64(val))
	case int32:
		return Num(float64(val))
	case int64:
		return Num(float64(val))
	case uint:
		return Num(float64(val))
	case uint8:
		return Num(float64(val))
	case uint16:
		return Num(float64(val))
	case uint32:
		return Num(float64(val))
	case uint64:
		return Num(float64(val))
	case float32:
		return Num(float64(val))
	case float64:
		return Num(val)
	case string:
		return Str(val)
	case time.Time:
		return DateVal(val)
	case []byte:
		return Str(string(val))
	case []interface{}:
		items := make([]Value, len(val))
		for i, item := range val {
			items[i] = FromInterface(item)
		}
		return ArrayVal(items)
	case map[string]interface{}:
		m := make(map[string]Value, len(val))
		for k, item := range val {
			m[k] = FromInterface(item)
		}
		return ObjectVal(m)
	case map[interface{}]interface{}:
		m := make(map[string]Value, len(val))
		for k, item := range val {
			m[fmt.Sprintf("%v", k)] = FromInterface(item)
		}
		return ObjectVal(m)
	default:
		return Str(fmt.Sprintf("%v", val))
	}
}
