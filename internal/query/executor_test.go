package query

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairsquare/internal/dataset"
	"fairsquare/internal/errors"
)

func testTable() *dataset.CanonicalTable {
	return &dataset.CanonicalTable{Records: []dataset.TransactionRecord{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Sales: 100, Product: "Coffee", Channel: "In-Store", CustomerType: "New", City: "Downtown"},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Sales: 250, Product: "Pastry", Channel: "Online", CustomerType: "Returning", City: "Suburb"},
	}}
}

func newTestExecutor(t *testing.T) *Executor {
	t.Helper()
	executor, err := NewExecutor(context.Background(), testTable(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { executor.Close() })
	return executor
}

func TestExecutor_Select(t *testing.T) {
	executor := newTestExecutor(t)

	result, err := executor.Query(context.Background(), "SELECT product, sales FROM transactions ORDER BY sales DESC")
	require.NoError(t, err)

	assert.Equal(t, []string{"product", "sales"}, result.Columns)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Pastry", result.Rows[0][0])
	assert.Equal(t, "Coffee", result.Rows[1][0])
}

func TestExecutor_Aggregate(t *testing.T) {
	executor := newTestExecutor(t)

	result, err := executor.Query(context.Background(), "SELECT COUNT(*), SUM(sales) FROM transactions")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "2", result.Rows[0][0])
	assert.Equal(t, "350", result.Rows[0][1])
}

func TestExecutor_ReadOnly(t *testing.T) {
	executor := newTestExecutor(t)

	_, err := executor.Query(context.Background(), "INSERT INTO transactions VALUES ('2024-01-03', 1, 'a', 'b', 'c', 'd')")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeQuery))

	// The table is untouched.
	result, err := executor.Query(context.Background(), "SELECT COUNT(*) FROM transactions")
	require.NoError(t, err)
	assert.Equal(t, "2", result.Rows[0][0])
}

func TestExecutor_InvalidSQLSurfacesMessage(t *testing.T) {
	executor := newTestExecutor(t)

	_, err := executor.Query(context.Background(), "SELEKT nonsense")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeQuery))
	// The database's own message travels with the error instead of being
	// swallowed.
	assert.Contains(t, err.Error(), "syntax error")
}

func TestExecutor_EmptyTable(t *testing.T) {
	executor, err := NewExecutor(context.Background(), &dataset.CanonicalTable{}, nil)
	require.NoError(t, err)
	defer executor.Close()

	result, err := executor.Query(context.Background(), "SELECT * FROM transactions")
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, dataset.CanonicalColumns, result.Columns)
}
