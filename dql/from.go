package dql

import (
	"fmt"
	"strings"
)

// FromSource is one tag, folder or file inclusion test.
type FromSource struct {
	Kind    string // "tag", "folder" or "file"
	Value   string
	Negated bool
}

// FromClause combines sources uniformly with a single operator. Negation
// applies per source before the combination.
type FromClause struct {
	Sources []FromSource
	Op      string // "AND" or "OR"
}

// ParseFrom parses a FROM clause: a single source, or sources joined
// uniformly by AND or by OR. Mixing the two operators in one clause is
// not supported.
func ParseFrom(text string) (*FromClause, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("FROM: empty clause")
	}

	var marks []wordSpan
	hasAnd, hasOr := false, false
	for _, w := range scanWords(text) {
		switch w.word {
		case "AND":
			hasAnd = true
			marks = append(marks, w)
		case "OR":
			hasOr = true
			marks = append(marks, w)
		}
	}
	if hasAnd && hasOr {
		return nil, fmt.Errorf("FROM: cannot mix AND and OR in one clause")
	}

	clause := &FromClause{Op: "AND"}
	if hasOr {
		clause.Op = "OR"
	}

	start := 0
	var tokens []string
	for _, m := range marks {
		tokens = append(tokens, text[start:m.start])
		start = m.end
	}
	tokens = append(tokens, text[start:])

	for _, tok := range tokens {
		src, err := parseFromSource(strings.TrimSpace(tok))
		if err != nil {
			return nil, err
		}
		clause.Sources = append(clause.Sources, src)
	}
	return clause, nil
}

func parseFromSource(tok string) (FromSource, error) {
	src := FromSource{}
	if strings.HasPrefix(tok, "-") {
		src.Negated = true
		tok = strings.TrimSpace(tok[1:])
	}

	switch {
	case strings.HasPrefix(tok, "#"):
		src.Kind = "tag"
		src.Value = strings.TrimPrefix(tok, "#")
	case len(tok) >= 2 && (tok[0] == '"' || tok[0] == '\'') && tok[len(tok)-1] == tok[0]:
		src.Kind = "folder"
		src.Value = tok[1 : len(tok)-1]
	case strings.HasSuffix(strings.ToLower(tok), ".md"):
		src.Kind = "file"
		src.Value = tok
	default:
		src.Kind = "folder"
		src.Value = tok
	}

	if src.Value == "" {
		return src, fmt.Errorf("FROM: empty source")
	}
	return src, nil
}

// Match reports whether a row with the given path and tags passes the
// clause. A nil clause keeps every row.
func (c *FromClause) Match(path string, tags []string) bool {
	if c == nil || len(c.Sources) == 0 {
		return true
	}
	for _, src := range c.Sources {
		hit := src.match(path, tags)
		if c.Op == "OR" {
			if hit {
				return true
			}
		} else if !hit {
			return false
		}
	}
	return c.Op != "OR"
}

func (s FromSource) match(path string, tags []string) bool {
	var hit bool
	switch s.Kind {
	case "tag":
		want := strings.ToLower(s.Value)
		for _, t := range tags {
			t = strings.ToLower(strings.TrimPrefix(t, "#"))
			if t == want || strings.HasPrefix(t, want+"/") {
				hit = true
				break
			}
		}
	case "folder":
		hit = strings.HasPrefix(path, s.Value)
	case "file":
		hit = path == s.Value || strings.HasSuffix(path, "/"+s.Value)
	}
	if s.Negated {
		return !hit
	}
	return hit
}
