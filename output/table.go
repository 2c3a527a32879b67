package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/mdql/mdql/dql"
)

// TableFormatter renders TABLE and LIST results as aligned text tables
// and TASK results as a checklist.
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer.
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format writes the result as a table or checklist.
func (t *TableFormatter) Format(result *dql.Result) error {
	if result.Type == dql.QueryTask {
		return t.formatTasks(result.Tasks)
	}

	table := tablewriter.NewWriter(t.writer)
	table.SetHeader(result.Columns)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)

	for _, row := range result.Rows {
		record := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			record[i] = row[col].String()
		}
		table.Append(record)
	}

	table.Render()
	return nil
}

func (t *TableFormatter) formatTasks(tasks []dql.TaskItem) error {
	for _, task := range tasks {
		box := " "
		if task.Completed {
			box = "x"
		}
		if _, err := fmt.Fprintf(t.writer, "[%s] %s  (%s:%d)\n", box, task.Text, task.Path, task.Line); err != nil {
			return err
		}
	}
	return nil
}
