package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"price-reconciler/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileCommand_WithERPDump(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "list.csv")
	dump := filepath.Join(dir, "erp.json")
	report := filepath.Join(dir, "report.json")

	require.NoError(t, os.WriteFile(list, []byte("Stock Code,Purchase Price,Sales Price\nA1,110,150\nB2,5,6\n"), 0o600))
	require.NoError(t, os.WriteFile(dump, []byte(`{"data":[{"StockCode":"A1","StockName":"Widget","CurrentPurchasePrice":100,"CurrentSalesPrice":150}]}`), 0o600))

	rootCmd.SetArgs([]string{"reconcile", "--file", list, "--erp-dump", dump, "--output", report})
	require.NoError(t, rootCmd.Execute())

	raw, err := os.ReadFile(report)
	require.NoError(t, err)

	var resp dto.CompareResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Summary.TotalProducts)
	assert.Equal(t, 1, resp.Summary.FoundProducts)
	assert.Equal(t, 1, resp.Summary.ProductsNeedingUpdate)

	require.Len(t, resp.Products, 2)
	require.NotNil(t, resp.Products[0].Comparison)
	assert.Contains(t, resp.Products[0].Comparison.Recommendation, "cost increased by 10.0%")
	assert.False(t, resp.Products[1].Found)
}
