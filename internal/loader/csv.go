package loader

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ReadCSV reads a CSV file with a required header row. The header
// defines the column names; every data row must have at most as many
// fields as the header.
func ReadCSV(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows validated below

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: missing header row", path)
	}

	header = records[0]
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("%s: empty header row", path)
	}
	rows = records[1:]
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, nil, fmt.Errorf("%s: row %d has %d fields, header has %d", path, i+2, len(row), len(header))
		}
	}
	return header, rows, nil
}
