package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mdql/mdql/dql"
	"github.com/mdql/mdql/output"
	"github.com/mdql/mdql/snapshot"
	"github.com/mdql/mdql/vault"
)

var (
	queryFlag  = flag.String("q", "", "Query (e.g., \"TABLE status FROM #proj WHERE status != 'done'\")")
	formatFlag = flag.String("f", "table", "Output format: table, json, csv")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <vault-dir | corpus.parquet>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "A tool to run TABLE, LIST and TASK queries over a markdown vault\n")
		fmt.Fprintf(os.Stderr, "or a parquet corpus snapshot.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -q \"LIST FROM #project\" ./notes\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -q \"TABLE status, COUNT() GROUP BY status\" corpus.parquet\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f json -q \"TASK WHERE NOT completed\" ./notes\n", os.Args[0])
	}

	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: missing vault directory or parquet file argument\n\n")
		flag.Usage()
		os.Exit(1)
	}
	source := flag.Arg(0)

	if *queryFlag == "" {
		fmt.Fprintf(os.Stderr, "Error: missing query (-q)\n\n")
		flag.Usage()
		os.Exit(1)
	}

	q, err := dql.ParseQuery(*queryFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing query: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "Query format: TABLE|LIST|TASK [fields] [FROM ...] [WHERE ...] [GROUP BY ...] [SORT ...] [LIMIT n]\n")
		fmt.Fprintf(os.Stderr, "Example: TABLE status, COUNT() FROM \"proj\" GROUP BY status\n")
		os.Exit(1)
	}

	rows, err := loadRows(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Error: '%s' not found\n", source)
			fmt.Fprintf(os.Stderr, "Please check the path and try again.\n")
		} else {
			fmt.Fprintf(os.Stderr, "Error loading corpus: %v\n", err)
		}
		os.Exit(1)
	}

	result, err := dql.Execute(q, rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing query: %v\n", err)
		os.Exit(1)
	}

	formatter, ok := output.New(*formatFlag, os.Stdout)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unsupported format '%s'\n", *formatFlag)
		fmt.Fprintf(os.Stderr, "Supported formats: table, json, csv\n")
		os.Exit(1)
	}

	if err := formatter.Format(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
}

// loadRows picks the row provider by source shape: parquet files and
// globs go through snapshot, directories through vault.
func loadRows(source string) ([]dql.Row, error) {
	if strings.HasSuffix(source, ".parquet") || strings.ContainsAny(source, "*?[]{}") {
		return snapshot.Load(source)
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is neither a directory nor a parquet file", source)
	}
	return vault.Load(source)
}
