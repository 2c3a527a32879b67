// Package dql implements a declarative query language over note-like
// rows: TABLE, LIST and TASK statements that filter, project, group,
// sort and limit an in-memory corpus.
//
// A query is parsed once, then executed against any row slice:
//
//	q, err := dql.ParseQuery(`TABLE status, COUNT() FROM "proj" WHERE status != "done" GROUP BY status SORT status ASC`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := dql.Execute(q, rows)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Statements
//
// The first keyword selects the statement type:
//   - TABLE fields... renders one column per field spec
//   - LIST renders a single column (file.name by default)
//   - TASK extracts checklist items from note bodies
//
// Clauses may follow on the same line or each on its own line:
//   - FROM #tag | "folder" | file.md, combined with AND or OR, - negates
//   - WHERE expr filters rows
//   - GROUP BY fields buckets rows and enables aggregates
//   - FLATTEN field explodes array fields into one row per element
//   - SORT field [ASC|DESC]
//   - LIMIT n
//
// # Expressions
//
// Field specs and WHERE predicates share one expression language:
// literals, identifiers resolved against the row's field map, the file
// metadata object (file.name, file.folder, file.mtime, ...), property
// and index access, arithmetic, comparisons, AND/OR/NOT, and calls into
// the builtin function library (date, dur, contains, filter, map, ...).
// Unresolved identifiers evaluate to null rather than failing, and
// filter/map accept a lambda written as param => body.
//
// # Aggregates
//
// With GROUP BY, the field list may use COUNT, SUM, AVG, MIN, MAX,
// FIRST, LAST and LIST over a field path; each aggregate becomes one
// column per bucket, aliased with AS or a derived name such as
// count_status.
//
// # Error Handling
//
// Malformed query text fails at parse time with a descriptive error.
// Row-level evaluation failures are deliberately non-fatal: a row whose
// WHERE evaluation errors is dropped, and a failing projected field is
// set to null, so one malformed row never aborts a whole-corpus query.
package dql
