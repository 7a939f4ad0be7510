// Package export writes datasets to spreadsheet files for download by the
// client-facing side of the sales flow.
package export

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/dataset"
)

// DefaultSheetName is used when the caller does not name the sheet.
const DefaultSheetName = "Leads"

// WriteXLSX renders the dataset as a single-sheet workbook: a header row
// with the column names, then one row per record. Null cells come out
// empty.
func WriteXLSX(w io.Writer, ds *dataset.Dataset, sheetName string) error {
	if ds == nil {
		return eris.New("export: nil dataset")
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", sheetName)
	}

	header := sheet.AddRow()
	for _, col := range ds.Columns() {
		header.AddCell().SetString(col)
	}

	for i := 0; i < ds.Len(); i++ {
		row := sheet.AddRow()
		for _, c := range ds.Row(i) {
			cell := row.AddCell()
			if c.Valid {
				cell.SetString(c.String)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}

	zap.L().Debug("export: wrote workbook",
		zap.String("sheet", sheetName),
		zap.Int("rows", ds.Len()))
	return nil
}

// SaveXLSX writes the dataset workbook to a file path.
func SaveXLSX(path string, ds *dataset.Dataset, sheetName string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}

	if err := WriteXLSX(f, ds, sheetName); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
