// Package vault loads query corpora from a directory of markdown notes.
//
// Each .md file becomes one corpus row: the YAML frontmatter block fills
// the field map, tags come from the frontmatter tags list plus inline
// #tag occurrences, outlinks come from [[target]] wiki links, and the
// note body is kept for TASK queries.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mdql/mdql/dql"
)

var (
	wikiLinkPattern  = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]*)?\]\]`)
	inlineTagPattern = regexp.MustCompile(`(^|\s)#([\pL\d_][\pL\d_/-]*)`)
)

// Load walks dir for markdown notes and converts each into a corpus row.
// Row paths are slash-separated and relative to dir. Hidden directories
// are skipped.
func Load(dir string) ([]dql.Row, error) {
	var rows []dql.Row
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}

		row, err := loadNote(dir, p)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func loadNote(dir, notePath string) (dql.Row, error) {
	raw, err := os.ReadFile(notePath)
	if err != nil {
		return dql.Row{}, err
	}

	info, err := os.Stat(notePath)
	if err != nil {
		return dql.Row{}, err
	}

	rel, err := filepath.Rel(dir, notePath)
	if err != nil {
		rel = notePath
	}
	rel = filepath.ToSlash(rel)

	front, body := splitFrontmatter(string(raw))

	fields := make(map[string]dql.Value)
	var meta map[string]interface{}
	if front != "" {
		if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
			return dql.Row{}, fmt.Errorf("invalid frontmatter: %w", err)
		}
		for k, v := range meta {
			fields[k] = dql.FromInterface(v)
		}
	}

	base := path.Base(rel)
	ext := path.Ext(base)
	folder := path.Dir(rel)
	if folder == "." {
		folder = ""
	}

	mtime := info.ModTime()
	file := dql.FileMeta{
		Path:   rel,
		Name:   strings.TrimSuffix(base, ext),
		Folder: folder,
		Ext:    strings.TrimPrefix(ext, "."),
		// Creation time is not portable; the modification time stands in.
		CTime:    mtime,
		MTime:    mtime,
		Size:     info.Size(),
		Outlinks: outlinks(body),
	}

	return dql.Row{
		Path:    rel,
		Fields:  fields,
		File:    file,
		Tags:    collectTags(meta, body),
		Content: body,
	}, nil
}

// splitFrontmatter separates a leading --- block from the note body.
func splitFrontmatter(text string) (front, body string) {
	if !strings.HasPrefix(text, "---") {
		return "", text
	}
	nl := strings.IndexByte(text, '\n')
	if nl < 0 || strings.TrimSpace(text[3:nl]) != "" {
		return "", text
	}

	rest := text[nl+1:]
	i := 0
	for i <= len(rest) {
		lineEnd := len(rest)
		next := len(rest)
		if idx := strings.IndexByte(rest[i:], '\n'); idx >= 0 {
			lineEnd = i + idx
			next = lineEnd + 1
		}
		line := strings.TrimSpace(rest[i:lineEnd])
		if line == "---" || line == "..." {
			return rest[:i], rest[next:]
		}
		if lineEnd == len(rest) {
			break
		}
		i = next
	}
	return "", text
}

// collectTags merges the frontmatter tags entry with inline #tag
// occurrences, deduplicated in first-seen order and without the #.
func collectTags(meta map[string]interface{}, body string) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(t string) {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	switch v := meta["tags"].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			add(s)
		}
	}

	for _, m := range inlineTagPattern.FindAllStringSubmatch(body, -1) {
		add(m[2])
	}
	return tags
}

// outlinks extracts [[target]] wiki link targets, ignoring any |display
// suffix, deduplicated in first-seen order.
func outlinks(body string) []string {
	seen := make(map[string]bool)
	var links []string
	for _, m := range wikiLinkPattern.FindAllStringSubmatch(body, -1) {
		target := strings.TrimSpace(m[1])
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		links = append(links, target)
	}
	return links
}
