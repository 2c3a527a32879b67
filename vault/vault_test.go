package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeNote(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "proj/alpha.md", `---
title: Alpha
status: open
score: 3
tags:
  - proj
  - "#urgent"
---
# Alpha

Depends on [[Beta]] and [[Beta|the beta note]]. See #review/later.

- [ ] write tests
- [x] draft outline
`)
	writeNote(t, dir, "readme.txt", "not a note")

	rows, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]

	if row.Path != "proj/alpha.md" {
		t.Errorf("Path = %q, want %q", row.Path, "proj/alpha.md")
	}
	if got := row.Fields["title"].String(); got != "Alpha" {
		t.Errorf("title = %q, want %q", got, "Alpha")
	}
	if got := row.Fields["status"].String(); got != "open" {
		t.Errorf("status = %q, want %q", got, "open")
	}
	if got := row.Fields["score"].String(); got != "3" {
		t.Errorf("score = %q, want %q", got, "3")
	}

	wantTags := []string{"proj", "urgent", "review/later"}
	if diff := cmp.Diff(wantTags, row.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	wantLinks := []string{"Beta"}
	if diff := cmp.Diff(wantLinks, row.File.Outlinks); diff != "" {
		t.Errorf("outlinks mismatch (-want +got):\n%s", diff)
	}

	if row.File.Name != "alpha" || row.File.Folder != "proj" || row.File.Ext != "md" {
		t.Errorf("file meta = %+v, want name alpha, folder proj, ext md", row.File)
	}
	if row.File.MTime.IsZero() {
		t.Errorf("MTime is zero")
	}

	// The body excludes the frontmatter block but keeps the task lines.
	if got := row.Content; got == "" || !containsLine(got, "- [ ] write tests") {
		t.Errorf("content missing task line:\n%s", got)
	}
	if containsLine(row.Content, "title: Alpha") {
		t.Errorf("content still holds frontmatter:\n%s", row.Content)
	}
}

func containsLine(text, line string) bool {
	for _, l := range splitLines(text) {
		if l == line {
			return true
		}
	}
	return false
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}

func TestLoadSkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "visible.md", "hello")
	writeNote(t, dir, ".trash/gone.md", "bye")

	rows, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "visible.md" {
		t.Errorf("rows = %+v, want only visible.md", rows)
	}
}

func TestLoadRootFolderIsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "top.md", "x")

	rows, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if rows[0].File.Folder != "" {
		t.Errorf("Folder = %q, want empty for root-level note", rows[0].File.Folder)
	}
}

func TestLoadInvalidFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "bad.md", "---\n: [unbalanced\n---\nbody\n")

	if _, err := Load(dir); err == nil {
		t.Errorf("Load() expected error for invalid frontmatter")
	}
}

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFront string
		wantBody  string
	}{
		{
			name:      "basic",
			input:     "---\na: 1\n---\nbody\n",
			wantFront: "a: 1\n",
			wantBody:  "body\n",
		},
		{
			name:      "dots terminator",
			input:     "---\na: 1\n...\nbody\n",
			wantFront: "a: 1\n",
			wantBody:  "body\n",
		},
		{
			name:     "no frontmatter",
			input:    "just text\n---\nnot frontmatter\n",
			wantBody: "just text\n---\nnot frontmatter\n",
		},
		{
			name:     "unterminated block is body",
			input:    "---\na: 1\nno closing fence\n",
			wantBody: "---\na: 1\nno closing fence\n",
		},
		{
			name:     "ruler is not a fence",
			input:    "--- with trailing text\nbody\n",
			wantBody: "--- with trailing text\nbody\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			front, body := splitFrontmatter(tt.input)
			if front != tt.wantFront {
				t.Errorf("front = %q, want %q", front, tt.wantFront)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
