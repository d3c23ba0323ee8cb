package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fairsquare/internal/errors"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCols []string
		wantRows int
		wantErr  bool
	}{
		{
			name:     "plain csv",
			input:    "date,sales\n2024-01-01,100\n2024-01-02,200\n",
			wantCols: []string{"date", "sales"},
			wantRows: 2,
		},
		{
			name:     "utf-8 BOM stripped",
			input:    "\xEF\xBB\xBFdate,sales\n2024-01-01,100\n",
			wantCols: []string{"date", "sales"},
			wantRows: 1,
		},
		{
			name:     "ragged rows tolerated",
			input:    "date,sales,product\n2024-01-01,100\n2024-01-02,200,Coffee,extra\n",
			wantCols: []string{"date", "sales", "product"},
			wantRows: 2,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, table.Columns)
			assert.Len(t, table.Rows, tt.wantRows)
		})
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"date", "sales"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"2024-01-01", 150}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	table, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "sales"}, table.Columns)
	require.Len(t, table.Rows, 1)
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX(strings.NewReader("not an excel file"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
}

func TestReadTable_DispatchesOnExtension(t *testing.T) {
	table, err := ReadTable(strings.NewReader("date,sales\n2024-01-01,10\n"), "upload.csv")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	// Unknown extensions are treated as CSV.
	table, err = ReadTable(strings.NewReader("date,sales\n2024-01-01,10\n"), "upload.txt")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}
