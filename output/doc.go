// Package output provides formatters for rendering query results.
//
// Three formats are supported:
//   - table: aligned text tables (TASK results render as a checklist)
//   - json: a single JSON document with columns and rows, or tasks
//   - csv: comma-separated values with a header row
//
// Example usage:
//
//	formatter := output.NewTableFormatter(os.Stdout)
//	if err := formatter.Format(result); err != nil {
//	    log.Fatal(err)
//	}
//
// All formatters satisfy the Formatter interface and can redirect their
// output with SetOutput, for example into a bytes.Buffer in tests.
package output
