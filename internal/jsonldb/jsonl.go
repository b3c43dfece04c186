package jsonldb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Decode parses JSONL data: one JSON object per line, blank lines skipped,
// insertion order preserved. A malformed line fails with its 1-based line
// number.
func Decode[T any](data []byte) ([]T, error) {
	rows := []T{}
	for i, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Encode renders rows as JSONL: records joined by newlines, with a trailing
// newline iff the sequence is non-empty.
func Encode[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal row: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ReadFile loads and decodes a JSONL file. A missing file is an error; the
// initializer creates empty artifacts so absence means a broken store.
func ReadFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rows, err := Decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// WriteFile encodes rows and rewrites the whole file. Callers always write a
// full replacement; there is no partial append.
func WriteFile[T any](path string, rows []T) error {
	data, err := Encode(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
