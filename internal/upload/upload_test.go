package upload

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse_CSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "comma", content: "stockCode,purchasePrice,salesPrice\nA1,10,15\n,,\nB2,20,\n"},
		{name: "semicolon", content: "\ufeffstockCode;purchasePrice;salesPrice\nA1;10;15\nB2;20\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Parse("prices.CSV", strings.NewReader(tt.content))
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, map[string]string{"stockCode": "A1", "purchasePrice": "10", "salesPrice": "15"}, rows[0])
			assert.Equal(t, "B2", rows[1]["stockCode"])
			assert.Equal(t, "20", rows[1]["purchasePrice"])
		})
	}
}

func TestParse_Xlsx(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Stock Code", "Purchase Price", "Sales Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"X9", 12.5, 20}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Y8", "7"}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rows, err := Parse("upload.xlsx", &buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "X9", rows[0]["Stock Code"])
	assert.Equal(t, "12.5", rows[0]["Purchase Price"])
	assert.Equal(t, "20", rows[0]["Sales Price"])
	assert.Equal(t, "Y8", rows[1]["Stock Code"])
	_, hasSales := rows[1]["Sales Price"]
	assert.False(t, hasSales)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("prices.txt", strings.NewReader("a,b"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Parse("prices.csv", strings.NewReader("stockCode,purchasePrice\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = Parse("prices.xlsx", strings.NewReader("not a zip"))
	assert.Error(t, err)
}
