package csvfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/fundperf-cli/internal/perf"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSVTemplate writes an empty upload template for the given kind: an
// explicit BOM, quoted headers, and CRLF line endings, so spreadsheet tools
// open it cleanly.
func WriteCSVTemplate(w io.Writer, kind perf.Kind) error {
	if !kind.Importable() {
		return eris.Errorf("csvfile: no template for kind %q", kind)
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return eris.Wrap(err, "csvfile: write BOM")
	}

	header := perf.TemplateHeader(kind)
	quoted := make([]string, len(header))
	for i, h := range header {
		quoted[i] = fmt.Sprintf("%q", h)
	}

	if _, err := io.WriteString(w, strings.Join(quoted, ",")+"\r\n"); err != nil {
		return eris.Wrap(err, "csvfile: write header")
	}
	return nil
}

// WriteXLSXTemplate writes the same template as a single-sheet XLSX workbook.
func WriteXLSXTemplate(w io.Writer, kind perf.Kind) error {
	if !kind.Importable() {
		return eris.Errorf("csvfile: no template for kind %q", kind)
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(fmt.Sprintf("%s_performance", kind))
	if err != nil {
		return eris.Wrap(err, "csvfile: add sheet")
	}

	row := sheet.AddRow()
	for _, h := range perf.TemplateHeader(kind) {
		row.AddCell().Value = h
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "csvfile: write xlsx")
	}
	return nil
}
