// Package sheet loads spreadsheet workbooks into raw header/row form for the
// cleaning pipeline. No schema is assumed; the first row of each sheet is
// treated as free-text column labels.
package sheet

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Sheet is one worksheet: a name, a header row of free-text labels, and the
// data rows beneath it. Rows may be ragged; short rows are padded during
// normalization.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadWorkbook loads every non-empty sheet of an XLSX workbook. Sheets whose
// first row is blank or that contain no data rows are skipped with a log
// entry rather than failing the load.
func ReadWorkbook(path string) ([]Sheet, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: open workbook %s", path)
	}

	var sheets []Sheet
	for _, ws := range f.Sheets {
		s := fromXLSXSheet(ws)
		if len(s.Header) == 0 {
			zap.L().Warn("sheet: skipping sheet with no header row", zap.String("sheet", ws.Name))
			continue
		}
		sheets = append(sheets, s)
		zap.L().Info("sheet: loaded",
			zap.String("sheet", ws.Name),
			zap.Int("rows", len(s.Rows)),
			zap.Int("columns", len(s.Header)),
		)
	}

	return sheets, nil
}

// ReadCSV loads a delimited-text file as a single sheet named after the file.
func ReadCSV(path string) (Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sheet{}, eris.Wrapf(err, "sheet: open csv %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return Sheet{}, eris.Wrap(err, "sheet: read csv")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(records) == 0 {
		return Sheet{Name: name}, nil
	}

	return Sheet{Name: name, Header: records[0], Rows: records[1:]}, nil
}

// Read dispatches on file extension: .xlsx workbooks may contain several
// sheets, anything else is read as CSV.
func Read(path string) ([]Sheet, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadWorkbook(path)
	}
	s, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	if len(s.Header) == 0 {
		return nil, nil
	}
	return []Sheet{s}, nil
}

func fromXLSXSheet(ws *xlsx.Sheet) Sheet {
	s := Sheet{Name: ws.Name}
	for i, row := range ws.Rows {
		cells := rowToStrings(row)
		if i == 0 {
			if !allBlank(cells) {
				s.Header = cells
			}
			continue
		}
		if allBlank(cells) {
			continue
		}
		s.Rows = append(s.Rows, cells)
	}
	return s
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
