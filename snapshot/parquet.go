// Package snapshot loads query corpora from parquet snapshot files.
//
// It uses the parquet-go library to read snapshot files and converts each
// record into a corpus row: the path column (falling back to file or
// name) supplies the row identity, every other column becomes a field.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/mdql/mdql/dql"
)

// Reader reads one parquet snapshot file.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup.
type Reader struct {
	file   *os.File
	pqFile *parquet.File
}

// Open opens and validates a parquet snapshot file.
func Open(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	return &Reader{
		file:   file,
		pqFile: pqFile,
	}, nil
}

// ReadAll reads every record into memory and converts it to a corpus row.
//
// The entire file is loaded at once, so this is not suitable for
// snapshots larger than available memory.
func (r *Reader) ReadAll() ([]dql.Row, error) {
	rows := make([]dql.Row, 0)

	reader := parquet.NewReader(r.pqFile)
	defer func() { _ = reader.Close() }()

	for {
		record := make(map[string]interface{})
		err := reader.Read(&record)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		rows = append(rows, rowFromRecord(record))
	}

	return rows, nil
}

// Close closes the reader and releases associated resources. It is safe
// to call Close multiple times.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Load reads all rows from the snapshot files matching a glob pattern. A
// pattern without wildcards reads a single file.
func Load(pattern string) ([]dql.Row, error) {
	if !strings.ContainsAny(pattern, "*?[]{}") {
		r, err := Open(pattern)
		if err != nil {
			return nil, err
		}
		defer func() { _ = r.Close() }()
		return r.ReadAll()
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}

	// Limit number of files to prevent resource exhaustion.
	const maxFiles = 1000
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}

	var allRows []dql.Row
	for _, filePath := range matches {
		r, err := Open(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
		}

		rows, readErr := r.ReadAll()
		closeErr := r.Close()

		if readErr != nil {
			return nil, fmt.Errorf("failed to read rows from %s: %w", filePath, readErr)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("failed to close %s: %w", filePath, closeErr)
		}

		allRows = append(allRows, rows...)
	}

	return allRows, nil
}

// rowFromRecord converts one parquet record into a corpus row. Snapshot
// paths use forward slashes regardless of the host OS.
func rowFromRecord(record map[string]interface{}) dql.Row {
	fields := make(map[string]dql.Value, len(record))
	for k, v := range record {
		fields[k] = dql.FromInterface(v)
	}

	var identity string
	for _, key := range []string{"path", "file", "name"} {
		if s, ok := record[key].(string); ok && s != "" {
			identity = s
			break
		}
	}

	row := dql.Row{
		Path:   identity,
		Fields: fields,
		File:   fileMetaFor(identity),
	}

	if s, ok := record["content"].(string); ok {
		row.Content = s
	}

	switch tags := record["tags"].(type) {
	case []interface{}:
		for _, item := range tags {
			if s, ok := item.(string); ok {
				row.Tags = append(row.Tags, s)
			}
		}
	case string:
		for _, s := range strings.Split(tags, ",") {
			if s = strings.TrimSpace(s); s != "" {
				row.Tags = append(row.Tags, s)
			}
		}
	}

	return row
}

func fileMetaFor(p string) dql.FileMeta {
	if p == "" {
		return dql.FileMeta{}
	}

	base := path.Base(p)
	ext := path.Ext(base)
	folder := path.Dir(p)
	if folder == "." {
		folder = ""
	}

	return dql.FileMeta{
		Path:   p,
		Name:   strings.TrimSuffix(base, ext),
		Folder: folder,
		Ext:    strings.TrimPrefix(ext, "."),
	}
}
