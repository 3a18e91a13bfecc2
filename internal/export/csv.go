package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// utf8BOM lets spreadsheet tools detect the encoding of exported files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes a header row and data rows to path, creating parent
// directories as needed. Fields are separated by semicolons, matching
// the spreadsheet conventions of locales that use comma as the decimal
// separator.
func WriteCSV(path string, headers []string, rows [][]string, withBOM bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer file.Close()

	if withBOM {
		if _, err := file.Write(utf8BOM); err != nil {
			return err
		}
	}

	w := csv.NewWriter(file)
	w.Comma = ';'

	if len(headers) > 0 {
		if err := w.Write(headers); err != nil {
			return err
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
