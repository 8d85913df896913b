// Package csvfile reads uploaded performance CSVs into header-keyed raw rows
// and generates the CSV/XLSX templates operators fill in.
package csvfile

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
)

// File is one parsed upload: the header row and the data rows keyed by header
// name. Rows are raw strings; normalization happens in validation.
type File struct {
	Header []string
	Rows   []map[string]string
}

// Read parses a UTF-8 CSV, tolerating an optional byte order mark. Header
// names are case-sensitive identifiers from the fixed vocabulary; they are
// trimmed but not otherwise rewritten. Short records leave trailing columns
// empty rather than failing.
func Read(r io.Reader) (*File, error) {
	reader := csv.NewReader(unicode.UTF8BOM.NewDecoder().Reader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("csvfile: file is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "csvfile: read header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	f := &File{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "csvfile: read row %d", len(f.Rows)+1)
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		f.Rows = append(f.Rows, row)
	}

	return f, nil
}
