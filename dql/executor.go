package dql

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Row is one corpus entry: file metadata plus the free-form field map
// extracted by a row provider. Content carries the note body for TASK
// queries.
type Row struct {
	Path    string
	Fields  map[string]Value
	File    FileMeta
	Tags    []string
	Content string
}

// TaskItem is one checklist entry extracted by a TASK query.
type TaskItem struct {
	Path      string
	Line      int
	Text      string
	Completed bool
	Tags      []string
}

// Result is the outcome of executing one query. TABLE and LIST results
// fill Columns and Rows; TASK results fill Tasks. Query echoes the parsed
// statement for diagnostics.
type Result struct {
	Type    QueryType
	Columns []string
	Rows    []map[string]Value
	Tasks   []TaskItem
	Query   *ParsedQuery
}

// Execute runs a parsed query over a row corpus with a fresh evaluator.
func Execute(q *ParsedQuery, rows []Row) (*Result, error) {
	return NewEvaluator().Execute(q, rows)
}

// Execute runs the filter, flatten, group-or-project, sort, limit
// pipeline. Row-level evaluation failures are non-fatal: a failing WHERE
// drops the row, a failing projection nulls the field.
func (ev *Evaluator) Execute(q *ParsedQuery, rows []Row) (*Result, error) {
	var kept []Row
	for _, row := range rows {
		if q.From.Match(row.Path, row.Tags) {
			kept = append(kept, row)
		}
	}

	if q.Type == QueryTask {
		return ev.executeTasks(q, kept)
	}

	if q.Where != nil {
		var filtered []Row
		for _, row := range kept {
			ctx := NewContext(row.Fields, row.File)
			v, err := ev.Evaluate(q.Where, ctx)
			if err != nil {
				continue
			}
			if v.Truthy() {
				filtered = append(filtered, row)
			}
		}
		kept = filtered
	}

	if q.Flatten != "" {
		kept = flattenRows(kept, q.Flatten)
	}

	var columns []string
	var pairs []resultRow

	if len(q.GroupBy) > 0 {
		var aggs []*AggregateFunction
		for i := range q.Fields {
			if q.Fields[i].Aggregate != nil {
				aggs = append(aggs, q.Fields[i].Aggregate)
			}
		}
		groups := GroupBy(kept, q.GroupBy, aggs)

		// A field spec naming a group key may re-label its column with AS.
		keyAlias := make(map[string]string, len(q.GroupBy))
		for _, f := range q.GroupBy {
			keyAlias[f] = f
		}
		for i := range q.Fields {
			spec := &q.Fields[i]
			if spec.Aggregate != nil || spec.Alias == "" {
				continue
			}
			if _, ok := keyAlias[spec.Text]; ok {
				keyAlias[spec.Text] = spec.Alias
			}
		}

		for _, f := range q.GroupBy {
			columns = append(columns, keyAlias[f])
		}
		for _, agg := range aggs {
			columns = append(columns, agg.Alias)
		}

		for _, g := range groups {
			out := make(map[string]Value, len(columns))
			for _, f := range q.GroupBy {
				out[keyAlias[f]] = g.Key[f]
			}
			for _, agg := range aggs {
				out[agg.Alias] = g.Aggregates[agg.Alias]
			}
			pairs = append(pairs, resultRow{out: out})
		}
	} else {
		for i := range q.Fields {
			columns = append(columns, q.Fields[i].Alias)
		}
		for i := range kept {
			row := &kept[i]
			ctx := NewContext(row.Fields, row.File)
			out := make(map[string]Value, len(q.Fields))
			for _, spec := range q.Fields {
				v, err := ev.Evaluate(spec.Expr, ctx)
				if err != nil {
					v = Null
				}
				out[spec.Alias] = v
			}
			pairs = append(pairs, resultRow{out: out, src: row})
		}
	}

	if q.Sort != nil {
		sortResultRows(pairs, q.Sort)
	}
	if q.Limit > 0 && len(pairs) > q.Limit {
		pairs = pairs[:q.Limit]
	}

	res := &Result{Type: q.Type, Columns: columns, Query: q}
	for _, p := range pairs {
		res.Rows = append(res.Rows, p.out)
	}
	return res, nil
}

// resultRow pairs a projected output row with its source row, so SORT can
// fall back to unprojected fields. Grouped rows have no source.
type resultRow struct {
	out map[string]Value
	src *Row
}

// sortResultRows sorts stably on one field. Incomparable values compare
// equal, so they keep their original order; DESC swaps the operands.
func sortResultRows(pairs []resultRow, s *SortClause) {
	sort.SliceStable(pairs, func(i, j int) bool {
		a := sortKey(pairs[i], s.Field)
		b := sortKey(pairs[j], s.Field)
		if s.Desc {
			a, b = b, a
		}
		less, ok := lessThan(a, b)
		return ok && less
	})
}

func sortKey(p resultRow, field string) Value {
	if v, ok := p.out[field]; ok {
		return v
	}
	if p.src != nil {
		return rowLookup(*p.src, field)
	}
	return Null
}

// flattenRows explodes rows whose target field is a non-empty array into
// one row per element, replacing the field with the element value. Rows
// where the field is absent or not an array pass through unchanged. A
// dotted path replaces the leaf inside a rebuilt copy of its containers,
// so projection, SORT and GROUP BY all see the element through the same
// path text; sibling properties of the containers are preserved.
func flattenRows(rows []Row, path string) []Row {
	parts := strings.Split(path, ".")
	var out []Row
	for _, row := range rows {
		items, ok := rowLookup(row, path).array()
		if !ok || len(items) == 0 {
			out = append(out, row)
			continue
		}

		base, has := row.Fields[parts[0]]
		if !has && parts[0] == "file" {
			base = fileObject(row.File)
		}

		for _, item := range items {
			clone := row
			clone.Fields = make(map[string]Value, len(row.Fields)+1)
			for k, v := range row.Fields {
				clone.Fields[k] = v
			}
			clone.Fields[parts[0]] = withProperty(base, parts[1:], item)
			out = append(out, clone)
		}
	}
	return out
}

// withProperty returns v with the value at the property path replaced,
// cloning every container along the way.
func withProperty(v Value, parts []string, elem Value) Value {
	if len(parts) == 0 {
		return elem
	}
	switch v.Kind {
	case KindObject:
		m := v.Data.(map[string]Value)
		clone := make(map[string]Value, len(m))
		for k, val := range m {
			clone[k] = val
		}
		clone[parts[0]] = withProperty(clone[parts[0]], parts[1:], elem)
		return ObjectVal(clone)
	case KindArray:
		idx, err := strconv.Atoi(parts[0])
		items := v.Data.([]Value)
		if err != nil || idx < 0 || idx >= len(items) {
			return v
		}
		clone := make([]Value, len(items))
		copy(clone, items)
		clone[idx] = withProperty(clone[idx], parts[1:], elem)
		return ArrayVal(clone)
	default:
		return elem
	}
}

// rowLookup resolves a dotted field path against a row. The field map is
// consulted before the special "file" object, matching Context.resolve.
func rowLookup(row Row, path string) Value {
	parts := strings.Split(path, ".")

	var v Value
	if fv, ok := row.Fields[parts[0]]; ok {
		v = fv
	} else if parts[0] == "file" {
		v = fileObject(row.File)
	} else {
		return Null
	}

	for _, p := range parts[1:] {
		v = propertyOf(v, p)
	}
	return v
}

var (
	taskPattern      = regexp.MustCompile(`^\s*[-*]\s*\[([ xX])\]\s*(.*)$`)
	inlineTagPattern = regexp.MustCompile(`#[\pL\d_][\pL\d_/-]*`)
)

// executeTasks extracts checklist items from the surviving rows' note
// bodies, then applies WHERE against a synthetic context and LIMIT.
func (ev *Evaluator) executeTasks(q *ParsedQuery, rows []Row) (*Result, error) {
	var tasks []TaskItem
	for _, row := range rows {
		for i, line := range strings.Split(row.Content, "\n") {
			m := taskPattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			text := strings.TrimSpace(m[2])
			var tags []string
			for _, t := range inlineTagPattern.FindAllString(text, -1) {
				tags = append(tags, strings.TrimPrefix(t, "#"))
			}
			item := TaskItem{
				Path:      row.Path,
				Line:      i + 1,
				Text:      text,
				Completed: m[1] != " ",
				Tags:      tags,
			}

			if q.Where != nil {
				tagVals := make([]Value, len(tags))
				for ti, t := range tags {
					tagVals[ti] = Str(t)
				}
				ctx := NewContext(map[string]Value{
					"text":      Str(item.Text),
					"completed": BoolVal(item.Completed),
					"tags":      ArrayVal(tagVals),
				}, row.File)
				v, err := ev.Evaluate(q.Where, ctx)
				if err != nil || !v.Truthy() {
					continue
				}
			}

			tasks = append(tasks, item)
		}
	}

	if q.Limit > 0 && len(tasks) > q.Limit {
		tasks = tasks[:q.Limit]
	}
	return &Result{Type: QueryTask, Tasks: tasks, Query: q}, nil
}
