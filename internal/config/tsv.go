package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// readTSV opens path, parses it as a tab-separated file with a header
// row, and calls fn once per data row with a name->value map built
// from the header. Unknown columns are passed through in the map;
// callers ignore what they don't need, matching spec §4.F's "unknown
// columns are ignored; missing optional columns default explicitly".
func readTSV(path string, fn func(row map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("config: reading header of %s: %w", path, err)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("config: reading row of %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
