package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mdql/mdql/dql"
)

// CSVFormatter outputs results as CSV with a header row.
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer.
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the result as CSV. TASK results use the fixed columns
// path, line, text, completed, tags.
func (c *CSVFormatter) Format(result *dql.Result) error {
	csvWriter := csv.NewWriter(c.writer)

	if result.Type == dql.QueryTask {
		if err := csvWriter.Write([]string{"path", "line", "text", "completed", "tags"}); err != nil {
			return err
		}
		for _, task := range result.Tasks {
			record := []string{
				task.Path,
				strconv.Itoa(task.Line),
				sanitizeCell(task.Text),
				strconv.FormatBool(task.Completed),
				strings.Join(task.Tags, ", "),
			}
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}
	} else {
		if err := csvWriter.Write(result.Columns); err != nil {
			return err
		}
		for _, row := range result.Rows {
			record := make([]string, len(result.Columns))
			for i, col := range result.Columns {
				record[i] = sanitizeCell(row[col].String())
			}
			if err := csvWriter.Write(record); err != nil {
				return err
			}
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// sanitizeCell prefixes values that spreadsheet applications would
// otherwise interpret as formulas.
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
