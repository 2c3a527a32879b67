package output

import (
	"encoding/json"
	"io"

	"github.com/mdql/mdql/dql"
)

// JSONFormatter outputs one JSON document per result.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer.
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes the result as a single JSON document.
func (j *JSONFormatter) Format(result *dql.Result) error {
	doc := map[string]interface{}{
		"type": string(result.Type),
	}

	if result.Type == dql.QueryTask {
		tasks := make([]map[string]interface{}, 0, len(result.Tasks))
		for _, task := range result.Tasks {
			tasks = append(tasks, map[string]interface{}{
				"path":      task.Path,
				"line":      task.Line,
				"text":      task.Text,
				"completed": task.Completed,
				"tags":      task.Tags,
			})
		}
		doc["tasks"] = tasks
	} else {
		doc["columns"] = result.Columns
		rows := result.Rows
		if rows == nil {
			rows = []map[string]dql.Value{}
		}
		doc["rows"] = rows
	}

	encoder := json.NewEncoder(j.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
