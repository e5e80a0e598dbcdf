package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Row is one decoded line of a roster file, keyed by lowercased header name.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of a named field.
func (r Row) Get(name string) string {
	return strings.TrimSpace(r.Fields[name])
}

// Decode reads a tabular roster file into rows of named fields. The first
// record is treated as the header; header names are lowercased and trimmed.
func Decode(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("roster file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	for i, name := range header {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read roster line %d: %w", line, err)
		}
		fields := make(map[string]string, len(header))
		for i, value := range record {
			if i >= len(header) {
				break
			}
			fields[header[i]] = value
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}
	return rows, nil
}
