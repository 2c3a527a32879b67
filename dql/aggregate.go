package dql

import (
	"fmt"
	"strings"
)

// AggregateFunction is one aggregate column of a grouped query.
type AggregateFunction struct {
	Type  string // COUNT, SUM, AVG, MIN, MAX, FIRST, LAST or LIST
	Field string // empty for COUNT and the whole-row forms
	Alias string
}

// GroupedRow is one aggregation bucket.
type GroupedRow struct {
	Key        map[string]Value
	Rows       []Row
	Aggregates map[string]Value
}

// GroupBy buckets rows by the tuple of group-field values and computes
// each aggregate per bucket. Buckets appear in first-seen key order; rows
// keep their original order inside a bucket.
func GroupBy(rows []Row, fields []string, aggs []*AggregateFunction) []GroupedRow {
	buckets := make(map[string]*GroupedRow)
	var order []string

	for _, row := range rows {
		key := computeGroupKey(row, fields)
		b, ok := buckets[key]
		if !ok {
			b = &GroupedRow{Key: make(map[string]Value, len(fields))}
			for _, f := range fields {
				b.Key[f] = rowLookup(row, f)
			}
			buckets[key] = b
			order = append(order, key)
		}
		b.Rows = append(b.Rows, row)
	}

	out := make([]GroupedRow, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		b.Aggregates = make(map[string]Value, len(aggs))
		for _, agg := range aggs {
			b.Aggregates[agg.Alias] = computeAggregate(*agg, b.Rows)
		}
		out = append(out, *b)
	}
	return out
}

// computeGroupKey formats the group-field tuple into a single string key.
// Values are tagged with their kind so null and "" land in different
// buckets, and joined with a separator that cannot appear in the parts.
func computeGroupKey(row Row, fields []string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		v := rowLookup(row, f)
		parts[i] = fmt.Sprintf("%d\x01%s", v.Kind, v.String())
	}
	return strings.Join(parts, "\x00")
}

func computeAggregate(agg AggregateFunction, rows []Row) Value {
	switch agg.Type {
	case "COUNT":
		return Num(float64(len(rows)))

	case "SUM", "AVG":
		var nums []float64
		for _, row := range rows {
			if n, ok := rowLookup(row, agg.Field).number(); ok {
				nums = append(nums, n)
			}
		}
		total := 0.0
		for _, n := range nums {
			total += n
		}
		if agg.Type == "SUM" {
			return Num(total)
		}
		if len(nums) == 0 {
			return Null
		}
		return Num(total / float64(len(nums)))

	case "MIN", "MAX":
		best := Null
		for _, row := range rows {
			v := rowLookup(row, agg.Field)
			if v.IsNull() {
				continue
			}
			if best.IsNull() {
				best = v
				continue
			}
			a, b := v, best
			if agg.Type == "MAX" {
				a, b = best, v
			}
			if less, ok := lessThan(a, b); ok && less {
				best = v
			}
		}
		return best

	case "FIRST", "LAST":
		row := rows[0]
		if agg.Type == "LAST" {
			row = rows[len(rows)-1]
		}
		if agg.Field == "" {
			fields := make(map[string]Value, len(row.Fields))
			for k, v := range row.Fields {
				fields[k] = v
			}
			return ObjectVal(fields)
		}
		return rowLookup(row, agg.Field)

	case "LIST":
		var items []Value
		for _, row := range rows {
			if agg.Field == "" {
				items = append(items, Str(row.File.Name))
				continue
			}
			if v := rowLookup(row, agg.Field); !v.IsNull() {
				items = append(items, v)
			}
		}
		return ArrayVal(items)
	}
	return Null
}
