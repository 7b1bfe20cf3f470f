package dashboard_test

import (
	"bytes"
	"context"
	"testing"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/dashboard"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestSummary_RangeAndZeroFill(t *testing.T) {
	db := testutil.DB(t)
	svc := dashboard.NewService(db, zap.NewNop())

	supplier := testutil.SeedSupplier(t, db, "Cement Co")
	testutil.SeedEmployee(t, db, "Ravi")
	testutil.SeedEmployee(t, db, "Asha")
	sales := testutil.SeedTransactionType(t, db, "Sales")

	testutil.SeedTransaction(t, db, sales.ID, supplier.ID, 100, testutil.Day("2024-01-01"))
	testutil.SeedTransaction(t, db, sales.ID, supplier.ID, 40, testutil.Day("2024-01-31"))
	testutil.SeedTransaction(t, db, sales.ID, supplier.ID, 999, testutil.Day("2024-02-01"))

	sum, err := svc.Summary(context.Background(), dashboard.Range{
		Start: testutil.Day("2024-01-01"),
		End:   testutil.Day("2024-01-31"),
	})
	require.NoError(t, err)

	byName := map[string]dashboard.TypeTotal{}
	for _, tt := range sum.TransactionTypes {
		byName[tt.Name] = tt
	}
	require.Len(t, byName, 3, "every transaction type is listed")
	assert.Equal(t, 140.0, byName["Sales"].Total)
	assert.EqualValues(t, 2, byName["Sales"].Count)
	assert.Equal(t, 0.0, byName[models.TransactionTypePayroll].Total)
	assert.EqualValues(t, 0, byName[models.TransactionTypePayroll].Count)
	assert.Equal(t, 140.0, sum.GrandTotal)

	roles := map[string]int64{}
	for _, rc := range sum.RelationshipTypes {
		roles[rc.Name] = rc.Count
	}
	assert.Equal(t, map[string]int64{
		models.RelationshipEmployee: 2,
		models.RelationshipCustomer: 0,
		models.RelationshipSupplier: 1,
	}, roles)
}

func TestSummary_DefaultsToToday(t *testing.T) {
	db := testutil.DB(t)
	svc := dashboard.NewService(db, zap.NewNop())

	rel := testutil.SeedSupplier(t, db, "Cement Co")
	sales := testutil.SeedTransactionType(t, db, "Sales")
	today := models.Today()
	testutil.SeedTransaction(t, db, sales.ID, rel.ID, 25, today)
	testutil.SeedTransaction(t, db, sales.ID, rel.ID, 75, today.AddDate(0, 0, -1))

	sum, err := svc.Summary(context.Background(), dashboard.Range{})
	require.NoError(t, err)
	assert.True(t, today.Equal(sum.Range.Start))
	assert.True(t, today.Equal(sum.Range.End))
	assert.Equal(t, 25.0, sum.GrandTotal)
}

func TestSummary_InvertedRange(t *testing.T) {
	svc := dashboard.NewService(testutil.DB(t), zap.NewNop())
	_, err := svc.Summary(context.Background(), dashboard.Range{
		Start: testutil.Day("2024-02-01"),
		End:   testutil.Day("2024-01-01"),
	})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestExportXLSX(t *testing.T) {
	db := testutil.DB(t)
	svc := dashboard.NewService(db, zap.NewNop())

	rel := testutil.SeedSupplier(t, db, "Cement Co")
	sales := testutil.SeedTransactionType(t, db, "Sales")
	testutil.SeedTransaction(t, db, sales.ID, rel.ID, 12.5, testutil.Day("2024-03-03"))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportXLSX(context.Background(), dashboard.Range{
		Start: testutil.Day("2024-03-01"),
		End:   testutil.Day("2024-03-31"),
	}, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{dashboard.SheetTransactions, dashboard.SheetRelationships}, f.GetSheetList())

	rows, err := f.GetRows(dashboard.SheetTransactions)
	require.NoError(t, err)
	require.Len(t, rows, 6) // range, header, three types, total
	assert.Equal(t, []string{"From", "2024-03-01", "To", "2024-03-31"}, rows[0])
	assert.Equal(t, "Sales", rows[4][0])
	assert.Equal(t, "12.5", rows[4][3])

	roles, err := f.GetRows(dashboard.SheetRelationships)
	require.NoError(t, err)
	assert.Len(t, roles, 4)
}
