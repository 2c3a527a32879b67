package dql

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryType is the statement kind of a parsed query.
type QueryType string

const (
	QueryTable QueryType = "TABLE"
	QueryList  QueryType = "LIST"
	QueryTask  QueryType = "TASK"
)

// ParsedQuery is one fully parsed statement. The WHERE predicate and
// every field expression are compiled at parse time; execution only walks
// the cached ASTs.
type ParsedQuery struct {
	Type    QueryType
	Fields  []FieldSpec
	From    *FromClause
	Where   Expr
	Sort    *SortClause
	GroupBy []string
	Flatten string
	Limit   int
}

// FieldSpec is one projected column. Either Expr or Aggregate is set,
// never both.
type FieldSpec struct {
	Text      string
	Alias     string
	Expr      Expr
	Aggregate *AggregateFunction
}

// SortClause orders results by a single field.
type SortClause struct {
	Field string
	Desc  bool
}

// ParseQuery parses a query text. Both surface forms are accepted: every
// clause on its own line, or all clauses appended after the type keyword
// on a single line. Clause keywords are uppercase whole words at nesting
// depth zero; an unquoted uppercase keyword inside an expression will
// mis-slice the clause boundaries.
func ParseQuery(text string) (*ParsedQuery, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty query: expected TABLE, LIST or TASK")
	}

	head := lines[0]
	typeWord := head
	rest := ""
	if i := strings.IndexAny(head, " \t"); i >= 0 {
		typeWord, rest = head[:i], strings.TrimSpace(head[i+1:])
	}

	q := &ParsedQuery{}
	switch typeWord {
	case "TABLE":
		q.Type = QueryTable
	case "LIST":
		q.Type = QueryList
	case "TASK":
		q.Type = QueryTask
	default:
		return nil, fmt.Errorf("query must start with TABLE, LIST or TASK, got %q", typeWord)
	}

	fieldsText, clauses := splitClauses(rest)
	for _, line := range lines[1:] {
		extra, more := splitClauses(line)
		if extra != "" {
			return nil, fmt.Errorf("expected a clause keyword, got %q", extra)
		}
		clauses = append(clauses, more...)
	}

	seen := make(map[string]bool)
	for _, c := range clauses {
		if seen[c.keyword] {
			return nil, fmt.Errorf("duplicate %s clause", c.keyword)
		}
		seen[c.keyword] = true
		if err := q.applyClause(c); err != nil {
			return nil, err
		}
	}

	// TASK queries have no projection stage.
	if q.Type != QueryTask {
		if fieldsText == "" {
			fieldsText = "file.name"
		}
		fields, err := parseFieldSpecs(fieldsText, len(q.GroupBy) > 0)
		if err != nil {
			return nil, err
		}
		q.Fields = fields
	}

	return q, nil
}

// rawClause is one sliced clause before parsing.
type rawClause struct {
	keyword string
	text    string
}

var clauseKeywords = map[string]bool{
	"FROM":    true,
	"WHERE":   true,
	"SORT":    true,
	"FLATTEN": true,
	"LIMIT":   true,
}

// splitClauses slices a line into the text before the first clause
// keyword and one entry per clause, in first-occurrence order. GROUP must
// be immediately followed by BY.
func splitClauses(line string) (string, []rawClause) {
	words := scanWords(line)

	type mark struct {
		keyword    string
		start, end int
	}
	var marks []mark
	for i := 0; i < len(words); i++ {
		w := words[i]
		if w.word == "GROUP" && i+1 < len(words) && words[i+1].word == "BY" &&
			strings.TrimSpace(line[w.end:words[i+1].start]) == "" {
			marks = append(marks, mark{keyword: "GROUP BY", start: w.start, end: words[i+1].end})
			i++
			continue
		}
		if clauseKeywords[w.word] {
			marks = append(marks, mark{keyword: w.word, start: w.start, end: w.end})
		}
	}

	if len(marks) == 0 {
		return strings.TrimSpace(line), nil
	}

	head := strings.TrimSpace(line[:marks[0].start])
	clauses := make([]rawClause, len(marks))
	for i, m := range marks {
		end := len(line)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		clauses[i] = rawClause{keyword: m.keyword, text: strings.TrimSpace(line[m.end:end])}
	}
	return head, clauses
}

func (q *ParsedQuery) applyClause(c rawClause) error {
	switch c.keyword {
	case "FROM":
		from, err := ParseFrom(c.text)
		if err != nil {
			return err
		}
		q.From = from
	case "WHERE":
		expr, err := ParseExpression(c.text)
		if err != nil {
			return fmt.Errorf("WHERE: %w", err)
		}
		q.Where = expr
	case "SORT":
		parts := strings.Fields(c.text)
		switch len(parts) {
		case 1:
			q.Sort = &SortClause{Field: parts[0]}
		case 2:
			s := &SortClause{Field: parts[0]}
			switch strings.ToUpper(parts[1]) {
			case "ASC":
			case "DESC":
				s.Desc = true
			default:
				return fmt.Errorf("SORT: expected ASC or DESC, got %q", parts[1])
			}
			q.Sort = s
		default:
			return fmt.Errorf("SORT: expected a field with an optional direction, got %q", c.text)
		}
	case "GROUP BY":
		for _, f := range strings.Split(c.text, ",") {
			f = strings.TrimSpace(f)
			if f == "" {
				return fmt.Errorf("GROUP BY: empty field")
			}
			q.GroupBy = append(q.GroupBy, f)
		}
	case "FLATTEN":
		f := strings.TrimSpace(c.text)
		if f == "" || strings.ContainsAny(f, " \t") {
			return fmt.Errorf("FLATTEN: expected a single field, got %q", c.text)
		}
		q.Flatten = f
	case "LIMIT":
		n, err := strconv.Atoi(strings.TrimSpace(c.text))
		if err != nil {
			return fmt.Errorf("LIMIT: invalid count %q", c.text)
		}
		q.Limit = n
	}
	return nil
}

var aggregateTypes = map[string]string{
	"count": "COUNT",
	"sum":   "SUM",
	"avg":   "AVG",
	"min":   "MIN",
	"max":   "MAX",
	"first": "FIRST",
	"last":  "LAST",
	"list":  "LIST",
}

// groupOnlyAggregates have no scalar function fallback: using one without
// GROUP BY is a query error rather than a function call.
var groupOnlyAggregates = map[string]bool{
	"count": true,
	"avg":   true,
	"first": true,
	"last":  true,
}

func parseFieldSpecs(text string, grouped bool) ([]FieldSpec, error) {
	var specs []FieldSpec
	for _, part := range splitTopLevel(text, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty field in field list")
		}
		spec, err := parseFieldSpec(part, grouped)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseFieldSpec(text string, grouped bool) (FieldSpec, error) {
	exprText, alias := cutAlias(text)

	expr, err := ParseExpression(exprText)
	if err != nil {
		return FieldSpec{}, fmt.Errorf("field %q: %w", exprText, err)
	}

	spec := FieldSpec{Text: exprText, Alias: alias, Expr: expr}

	if call, ok := expr.(*CallExpr); ok {
		if aggType, ok := aggregateTypes[call.Name]; ok {
			field, simple := aggregateField(call.Args)
			if simple {
				if grouped {
					agg := &AggregateFunction{Type: aggType, Field: field, Alias: alias}
					if agg.Alias == "" {
						agg.Alias = defaultAggregateAlias(aggType, field)
					}
					spec.Alias = agg.Alias
					spec.Expr = nil
					spec.Aggregate = agg
					return spec, nil
				}
				if groupOnlyAggregates[call.Name] {
					return FieldSpec{}, &AggregateWithoutGroupByError{Function: aggType}
				}
			}
		}
	}

	if spec.Alias == "" {
		spec.Alias = exprText
	}
	return spec, nil
}

// aggregateField extracts the single simple-path argument of an aggregate
// call. Zero arguments is the whole-row form. A non-path argument keeps
// the call a scalar function.
func aggregateField(args []Expr) (string, bool) {
	if len(args) == 0 {
		return "", true
	}
	if len(args) != 1 {
		return "", false
	}
	return pathText(args[0])
}

// pathText renders an identifier or dotted property chain back to its
// source path.
func pathText(e Expr) (string, bool) {
	switch n := e.(type) {
	case *IdentExpr:
		return n.Name, true
	case *PropertyExpr:
		base, ok := pathText(n.Target)
		if !ok {
			return "", false
		}
		return base + "." + n.Name, true
	}
	return "", false
}

func defaultAggregateAlias(aggType, field string) string {
	if aggType == "COUNT" {
		if field == "" {
			return "count"
		}
		return "count_" + strings.ToLower(field)
	}
	if field == "" {
		return strings.ToLower(aggType)
	}
	return strings.ToLower(aggType + "_" + field)
}

// cutAlias splits "expr AS alias" on the last top-level AS, stripping
// quotes from the alias.
func cutAlias(text string) (string, string) {
	words := scanWords(text)
	for i := len(words) - 1; i >= 0; i-- {
		if words[i].word != "AS" {
			continue
		}
		expr := strings.TrimSpace(text[:words[i].start])
		alias := strings.TrimSpace(text[words[i].end:])
		alias = strings.Trim(alias, `"'`)
		if expr != "" && alias != "" {
			return expr, alias
		}
	}
	return strings.TrimSpace(text), ""
}

// wordSpan is one bare word with its position in the scanned text.
type wordSpan struct {
	word  string
	start int
	end   int
}

// scanWords collects words that sit at nesting depth zero outside string
// literals.
func scanWords(s string) []wordSpan {
	var spans []wordSpan
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch {
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			if depth > 0 {
				depth--
			}
		case isWordChar(ch):
			start := i
			for i < len(s) && isWordChar(s[i]) {
				i++
			}
			if depth == 0 {
				spans = append(spans, wordSpan{word: s[start:i], start: start, end: i})
			}
			i--
		}
	}
	return spans
}

func isWordChar(ch byte) bool {
	return ch == '_' ||
		ch >= 'a' && ch <= 'z' ||
		ch >= 'A' && ch <= 'Z' ||
		ch >= '0' && ch <= '9'
}

// splitTopLevel splits on a separator outside quotes, parens and
// brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
