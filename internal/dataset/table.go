package dataset

import (
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"fairsquare/internal/errors"
)

// Table is a raw tabular input: a header row plus data rows, all as strings.
// It is the common shape produced by the CSV and Excel readers and consumed
// by Normalize.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadCSV reads a UTF-8 CSV file with a header row into a Table.
// A leading byte-order mark is stripped; rows may have ragged lengths.
func ReadCSV(r io.Reader) (Table, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Table{}, errors.NewParsingError("failed to read CSV content", err)
	}

	// Remove BOM if present
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, errors.NewParsingError("failed to parse CSV", err)
	}
	if len(records) == 0 {
		return Table{}, errors.NewParsingError("CSV file has no header row", nil)
	}

	return Table{Columns: records[0], Rows: records[1:]}, nil
}

// ReadXLSX reads the first non-empty sheet of an Excel workbook into a Table.
// The first row of the sheet is treated as the header.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, errors.NewParsingError("failed to open Excel file", err)
	}
	defer f.Close()

	var rows [][]string
	for _, name := range f.GetSheetList() {
		sheetRows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if len(sheetRows) > 0 {
			rows = sheetRows
			break
		}
	}

	if len(rows) == 0 {
		return Table{}, errors.NewParsingError("Excel workbook has no data sheet", nil)
	}

	return Table{Columns: rows[0], Rows: rows[1:]}, nil
}

// ReadTable reads a tabular file, picking the reader from the file extension.
// Anything that is not .xlsx is treated as CSV.
func ReadTable(r io.Reader, filename string) (Table, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}
