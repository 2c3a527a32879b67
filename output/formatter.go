package output

import (
	"io"

	"github.com/mdql/mdql/dql"
)

// Formatter defines the interface for result formatters.
//
// Implementers must provide Format to write a query result in the target
// format and SetOutput to change the output destination.
type Formatter interface {
	// Format writes a query result in the formatter's specific format
	Format(result *dql.Result) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// New returns the formatter registered under the given name, or false
// for an unknown name.
func New(name string, w io.Writer) (Formatter, bool) {
	switch name {
	case "table":
		return NewTableFormatter(w), true
	case "json":
		return NewJSONFormatter(w), true
	case "csv":
		return NewCSVFormatter(w), true
	}
	return nil, false
}
