package dql

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParseQuery(t *testing.T, text string) *ParsedQuery {
	t.Helper()
	q, err := ParseQuery(text)
	if err != nil {
		t.Fatalf("ParseQuery(%q) error = %v", text, err)
	}
	return q
}

func mustExecute(t *testing.T, text string, rows []Row) *Result {
	t.Helper()
	result, err := Execute(mustParseQuery(t, text), rows)
	if err != nil {
		t.Fatalf("Execute(%q) error = %v", text, err)
	}
	return result
}

func TestExecuteProjection(t *testing.T) {
	rows := []Row{
		{
			Path:   "proj/a.md",
			File:   FileMeta{Path: "proj/a.md", Name: "a", Folder: "proj", Ext: "md"},
			Fields: map[string]Value{"score": Num(2)},
		},
	}

	result := mustExecute(t, `TABLE file.name, score * 2 AS "double"`, rows)

	wantColumns := []string{"file.name", "double"}
	if diff := cmp.Diff(wantColumns, result.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	wantRows := []map[string]Value{
		{"file.name": Str("a"), "double": Num(4)},
	}
	if diff := cmp.Diff(wantRows, result.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteWhereExcludesFailingRows(t *testing.T) {
	rows := []Row{
		{Path: "a.md", Fields: map[string]Value{"score": Num(1)}},
		{Path: "b.md", Fields: map[string]Value{"score": Str("broken")}},
		{Path: "c.md", Fields: map[string]Value{"score": Num(5)}},
	}

	// score * 2 raises a type mismatch on the string row; the row is
	// dropped, not the query.
	result := mustExecute(t, `TABLE score WHERE score * 2 > 3`, rows)

	if len(result.Rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(result.Rows))
	}
	if got := result.Rows[0]["score"]; got.String() != "5" {
		t.Errorf("surviving score = %q, want %q", got.String(), "5")
	}
}

func TestExecuteProjectionFailureNullsField(t *testing.T) {
	rows := []Row{
		{Path: "a.md", Fields: map[string]Value{"score": Str("broken")}},
	}

	result := mustExecute(t, `TABLE score * 2 AS "double", score`, rows)

	if len(result.Rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(result.Rows))
	}
	if !result.Rows[0]["double"].IsNull() {
		t.Errorf("double = %v, want null", result.Rows[0]["double"])
	}
	if got := result.Rows[0]["score"]; got.String() != "broken" {
		t.Errorf("score = %q, want %q", got.String(), "broken")
	}
}

func TestExecuteFlatten(t *testing.T) {
	rows := []Row{
		{Path: "a.md", Fields: map[string]Value{
			"tags": ArrayVal([]Value{Str("x"), Str("y")}),
		}},
		{Path: "b.md", Fields: map[string]Value{
			"tags": Str("scalar"),
		}},
		{Path: "c.md", Fields: map[string]Value{}},
	}

	result := mustExecute(t, `TABLE tags FLATTEN tags`, rows)

	want := []map[string]Value{
		{"tags": Str("x")},
		{"tags": Str("y")},
		{"tags": Str("scalar")},
		{"tags": Null},
	}
	if diff := cmp.Diff(want, result.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteFlattenDottedPath(t *testing.T) {
	rows := []Row{
		{Path: "a.md", Fields: map[string]Value{
			"meta": ObjectVal(map[string]Value{
				"items": ArrayVal([]Value{Str("x"), Str("y")}),
				"kind":  Str("note"),
			}),
		}},
	}

	result := mustExecute(t, `TABLE meta.items, meta.kind FLATTEN meta.items`, rows)

	// Each row carries one scalar element, with sibling properties of the
	// rebuilt container intact.
	want := []map[string]Value{
		{"meta.items": Str("x"), "meta.kind": Str("note")},
		{"meta.items": Str("y"), "meta.kind": Str("note")},
	}
	if diff := cmp.Diff(want, result.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteFlattenFileOutlinks(t *testing.T) {
	rows := []Row{
		{
			Path: "proj/a.md",
			File: FileMeta{Path: "proj/a.md", Name: "a", Folder: "proj", Ext: "md", Outlinks: []string{"Beta", "Gamma"}},
		},
	}

	result := mustExecute(t, `TABLE file.outlinks, file.name FLATTEN file.outlinks`, rows)

	want := []map[string]Value{
		{"file.outlinks": Str("Beta"), "file.name": Str("a")},
		{"file.outlinks": Str("Gamma"), "file.name": Str("a")},
	}
	if diff := cmp.Diff(want, result.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteFlattenThenGroup(t *testing.T) {
	mk := func(path string, tags ...Value) Row {
		return Row{Path: path, Fields: map[string]Value{
			"meta": ObjectVal(map[string]Value{"tags": ArrayVal(tags)}),
		}}
	}
	rows := []Row{
		mk("a.md", Str("x"), Str("y")),
		mk("b.md", Str("x")),
	}

	result := mustExecute(t, `TABLE meta.tags, COUNT() FLATTEN meta.tags GROUP BY meta.tags`, rows)

	want := []map[string]Value{
		{"meta.tags": Str("x"), "count": Num(2)},
		{"meta.tags": Str("y"), "count": Num(1)},
	}
	if diff := cmp.Diff(want, result.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteSortAndLimit(t *testing.T) {
	rows := []Row{
		{Path: "a.md", Fields: map[string]Value{"score": Num(1), "ord": Num(1)}},
		{Path: "b.md", Fields: map[string]Value{"score": Num(9), "ord": Num(2)}},
		{Path: "c.md", Fields: map[string]Value{"score": Num(5), "ord": Num(3)}},
	}

	t.Run("desc limit picks highest", func(t *testing.T) {
		result := mustExecute(t, `TABLE score SORT score DESC LIMIT 1`, rows)
		if len(result.Rows) != 1 {
			t.Fatalf("len(rows) = %d, want 1", len(result.Rows))
		}
		if got := result.Rows[0]["score"]; got.String() != "9" {
			t.Errorf("top score = %q, want %q", got.String(), "9")
		}
	})

	t.Run("stable tie-break preserves order", func(t *testing.T) {
		tied := []Row{
			{Path: "a.md", Fields: map[string]Value{"score": Num(1), "ord": Num(1)}},
			{Path: "b.md", Fields: map[string]Value{"score": Num(1), "ord": Num(2)}},
			{Path: "c.md", Fields: map[string]Value{"score": Num(1), "ord": Num(3)}},
		}
		result := mustExecute(t, `TABLE ord SORT score ASC`, tied)
		var got []string
		for _, row := range result.Rows {
			got = append(got, row["ord"].String())
		}
		want := []string{"1", "2", "3"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("tie order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("sort falls back to unprojected field", func(t *testing.T) {
		result := mustExecute(t, `TABLE ord SORT score DESC`, rows)
		var got []string
		for _, row := range result.Rows {
			got = append(got, row["ord"].String())
		}
		want := []string{"2", "3", "1"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-positive limit is unlimited", func(t *testing.T) {
		result := mustExecute(t, `TABLE score LIMIT 0`, rows)
		if len(result.Rows) != 3 {
			t.Errorf("len(rows) = %d, want 3", len(result.Rows))
		}
	})
}

func TestExecuteTask(t *testing.T) {
	rows := []Row{
		{
			Path: "proj/todo.md",
			File: FileMeta{Path: "proj/todo.md", Name: "todo", Folder: "proj", Ext: "md"},
			Tags: []string{"proj"},
			Content: `# Todo

- [ ] buy milk #errand
- [x] ship release
- not a task
* [ ] call back
`,
		},
	}

	t.Run("extracts all items", func(t *testing.T) {
		result := mustExecute(t, `TASK`, rows)
		want := []TaskItem{
			{Path: "proj/todo.md", Line: 3, Text: "buy milk #errand", Completed: false, Tags: []string{"errand"}},
			{Path: "proj/todo.md", Line: 4, Text: "ship release", Completed: true},
			{Path: "proj/todo.md", Line: 6, Text: "call back", Completed: false},
		}
		if diff := cmp.Diff(want, result.Tasks); diff != "" {
			t.Errorf("tasks mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("where filters on synthetic fields", func(t *testing.T) {
		result := mustExecute(t, `TASK WHERE NOT completed`, rows)
		if len(result.Tasks) != 2 {
			t.Fatalf("len(tasks) = %d, want 2", len(result.Tasks))
		}
		for _, task := range result.Tasks {
			if task.Completed {
				t.Errorf("completed task %q not filtered", task.Text)
			}
		}
	})

	t.Run("where on tags", func(t *testing.T) {
		result := mustExecute(t, `TASK WHERE contains(tags, "errand")`, rows)
		if len(result.Tasks) != 1 || result.Tasks[0].Text != "buy milk #errand" {
			t.Fatalf("tasks = %+v, want the errand item", result.Tasks)
		}
	})

	t.Run("limit", func(t *testing.T) {
		result := mustExecute(t, `TASK LIMIT 1`, rows)
		if len(result.Tasks) != 1 {
			t.Errorf("len(tasks) = %d, want 1", len(result.Tasks))
		}
	})
}

func TestExecuteGroupedColumnAlias(t *testing.T) {
	rows := []Row{
		{Path: "a.md", Fields: map[string]Value{"status": Str("open")}},
		{Path: "b.md", Fields: map[string]Value{"status": Str("open")}},
		{Path: "c.md", Fields: map[string]Value{"status": Str("done")}},
	}

	result := mustExecute(t, `TABLE status AS State, COUNT() GROUP BY status`, rows)

	wantColumns := []string{"State", "count"}
	if diff := cmp.Diff(wantColumns, result.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	wantRows := []map[string]Value{
		{"State": Str("open"), "count": Num(2)},
		{"State": Str("done"), "count": Num(1)},
	}
	if diff := cmp.Diff(wantRows, result.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteEndToEnd(t *testing.T) {
	mk := func(path, status string) Row {
		return Row{
			Path:   path,
			File:   FileMeta{Path: path},
			Fields: map[string]Value{"status": Str(status)},
		}
	}
	rows := []Row{
		mk("proj/a.md", "open"),
		mk("proj/b.md", "open"),
		mk("proj/c.md", "blocked"),
		mk("proj/d.md", "done"),
		mk("other/e.md", "open"),
	}

	query := `TABLE status, COUNT() FROM "proj" WHERE status != "done" GROUP BY status SORT status ASC LIMIT 5`
	result := mustExecute(t, query, rows)

	wantColumns := []string{"status", "count"}
	if diff := cmp.Diff(wantColumns, result.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	wantRows := []map[string]Value{
		{"status": Str("blocked"), "count": Num(1)},
		{"status": Str("open"), "count": Num(2)},
	}
	if diff := cmp.Diff(wantRows, result.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
