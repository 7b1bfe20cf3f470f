package supply_test

import (
	"context"
	"testing"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/supply"
	"bookkeeping-backend/internal/testutil"
	"bookkeeping-backend/internal/transaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *supply.Service) {
	t.Helper()
	db := testutil.DB(t)
	return db, supply.NewService(db, zap.NewNop())
}

func ptr(v uint) *uint { return &v }

func TestCreateSupplyType(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	cement, err := svc.CreateSupplyType(ctx, supply.CreateSupplyTypeRequest{Name: "Cement"})
	require.NoError(t, err)
	assert.Nil(t, cement.ParentID)

	opc, err := svc.CreateSupplyType(ctx, supply.CreateSupplyTypeRequest{Name: "OPC 53", ParentID: ptr(cement.ID)})
	require.NoError(t, err)
	require.NotNil(t, opc.ParentID)
	assert.Equal(t, cement.ID, *opc.ParentID)

	_, err = svc.CreateSupplyType(ctx, supply.CreateSupplyTypeRequest{Name: "Cement"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.CreateSupplyType(ctx, supply.CreateSupplyTypeRequest{Name: "Orphan", ParentID: ptr(999)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.EqualValues(t, 2, testutil.Count(t, db, &models.SupplyType{}, ""))
}

func TestTree(t *testing.T) {
	db, svc := setup(t)

	cement := testutil.SeedSupplyType(t, db, "Cement", nil)
	opc := testutil.SeedSupplyType(t, db, "OPC", &cement.ID)
	grade := testutil.SeedSupplyType(t, db, "Grade 53", &opc.ID)
	steel := testutil.SeedSupplyType(t, db, "Steel", nil)

	tree, err := svc.SupplyTypeTree(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, tree.Len())
	assert.Equal(t, []uint{cement.ID, steel.ID}, tree.Roots())
	assert.Equal(t, []uint{opc.ID, cement.ID}, tree.Ancestors(grade.ID))
	assert.Empty(t, tree.Ancestors(steel.ID))
	assert.Equal(t, "Cement / OPC / Grade 53", tree.Path(grade.ID))

	n, ok := tree.Node(cement.ID)
	require.True(t, ok)
	assert.Equal(t, []uint{opc.ID}, n.Children)
}

func TestTree_CycleTerminates(t *testing.T) {
	a, b := uint(1), uint(2)
	tree := supply.NewTree([]models.SupplyType{
		{ID: a, Name: "A", ParentID: &b},
		{ID: b, Name: "B", ParentID: &a},
		{ID: 3, Name: "C", ParentID: &a},
	})

	assert.Equal(t, []uint{b}, tree.Ancestors(a))
	assert.Equal(t, []uint{a, b}, tree.Ancestors(3))
	assert.Empty(t, tree.Roots())
}

func TestCreateSupplyLog_Unpaid(t *testing.T) {
	db, svc := setup(t)

	supplier := testutil.SeedSupplier(t, db, "Cement Co")
	cement := testutil.SeedSupplyType(t, db, "Cement", nil)

	sl, err := svc.CreateSupplyLog(context.Background(), supply.SupplyLogInput{
		SupplierID: supplier.ID, SupplyTypeID: cement.ID, UnitPrice: 45.5, Units: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 455.0, sl.Amount)
	assert.Nil(t, sl.PaymentID)
	assert.True(t, models.Today().Equal(sl.Date))

	assert.EqualValues(t, 0, testutil.Count(t, db, &models.SupplyPayment{}, ""))
	assert.EqualValues(t, 0, testutil.Count(t, db, &models.Transaction{}, ""))
}

func TestCreateSupplyLog_Paid(t *testing.T) {
	db, svc := setup(t)

	supplier := testutil.SeedSupplier(t, db, "Cement Co")
	cement := testutil.SeedSupplyType(t, db, "Cement", nil)

	sl, err := svc.CreateSupplyLog(context.Background(), supply.SupplyLogInput{
		Date:       testutil.Day("2024-06-10"),
		SupplierID: supplier.ID, SupplyTypeID: cement.ID, UnitPrice: 45.5, Units: 10, Paid: true,
	})
	require.NoError(t, err)
	require.NotNil(t, sl.PaymentID)

	var payment models.SupplyPayment
	require.NoError(t, db.Preload("Transaction.TransactionType").Preload("SupplyLogs").First(&payment, *sl.PaymentID).Error)
	assert.Equal(t, 455.0, payment.Transaction.Amount)
	assert.Equal(t, supplier.ID, payment.Transaction.RelationshipID)
	assert.Equal(t, models.KindSupplyPayment, payment.Transaction.TransactionType.Kind)
	assert.True(t, testutil.Day("2024-06-10").Equal(payment.Transaction.Date))
	assert.Equal(t, "Supply payment for 10 units @ 45.5 (Supplier Cement Co)", payment.Transaction.Description)
	require.Len(t, payment.SupplyLogs, 1)
	assert.Equal(t, sl.ID, payment.SupplyLogs[0].ID)
}

func TestCreateSupplyLog_PaidWithoutSeededTypeWritesNothing(t *testing.T) {
	db, svc := setup(t)

	supplier := testutil.SeedSupplier(t, db, "Cement Co")
	cement := testutil.SeedSupplyType(t, db, "Cement", nil)
	require.NoError(t, db.Where("kind = ?", models.KindSupplyPayment).Delete(&models.TransactionType{}).Error)

	_, err := svc.CreateSupplyLog(context.Background(), supply.SupplyLogInput{
		SupplierID: supplier.ID, SupplyTypeID: cement.ID, UnitPrice: 1, Units: 1, Paid: true,
	})
	assert.ErrorIs(t, err, apperr.ErrPrecondition)
	assert.EqualValues(t, 0, testutil.Count(t, db, &models.SupplyLog{}, ""))
	assert.EqualValues(t, 0, testutil.Count(t, db, &models.SupplyPayment{}, ""))
}

func TestCreateSupplyLog_Rejections(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	supplier := testutil.SeedSupplier(t, db, "Cement Co")
	employee := testutil.SeedEmployee(t, db, "Ravi")
	cement := testutil.SeedSupplyType(t, db, "Cement", nil)

	_, err := svc.CreateSupplyLog(ctx, supply.SupplyLogInput{SupplierID: 999, SupplyTypeID: cement.ID, UnitPrice: 1, Units: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateSupplyLog(ctx, supply.SupplyLogInput{SupplierID: supplier.ID, SupplyTypeID: 999, UnitPrice: 1, Units: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateSupplyLog(ctx, supply.SupplyLogInput{SupplierID: employee.ID, SupplyTypeID: cement.ID, UnitPrice: 1, Units: 1})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.CreateSupplyLog(ctx, supply.SupplyLogInput{SupplierID: supplier.ID, SupplyTypeID: cement.ID, UnitPrice: 1})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestPaySupplyLogs(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	supplier := testutil.SeedSupplier(t, db, "Cement Co")
	cement := testutil.SeedSupplyType(t, db, "Cement", nil)
	a := testutil.SeedSupplyLog(t, db, supplier.ID, cement.ID, 10, 2)
	b := testutil.SeedSupplyLog(t, db, supplier.ID, cement.ID, 5, 3)
	c := testutil.SeedSupplyLog(t, db, supplier.ID, cement.ID, 1, 1)

	var txn *models.Transaction
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = supply.PaySupplyLogs(ctx, tx, supplier.ID, []uint{a.ID, b.ID}, testutil.Day("2024-07-01"), "")
		return err
	}))
	assert.Equal(t, 35.0, txn.Amount)
	assert.Equal(t, "Supply payment for 2 purchases (Supplier Cement Co)", txn.Description)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.SupplyPayment{}, "transaction_id = ?", txn.ID))

	unpaid, err := svc.ListUnpaidSupplyLogs(ctx, supplier.ID)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)
	assert.Equal(t, c.ID, unpaid[0].ID)

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := supply.PaySupplyLogs(ctx, tx, supplier.ID, []uint{a.ID, c.ID}, models.Today(), "")
		return err
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.EqualValues(t, 1, testutil.Count(t, db, &models.Transaction{}, ""), "rejected payment rolled back")
}

func TestPaySupplyLogs_ThroughTransactionKind(t *testing.T) {
	db, svc := setup(t)
	ctx := context.Background()

	txSvc := transaction.NewService(db, zap.NewNop())
	txSvc.Register(models.KindSupplyPayment, supply.TransactionHandler())

	supplier := testutil.SeedSupplier(t, db, "Cement Co")
	other := testutil.SeedSupplier(t, db, "Steel Co")
	cement := testutil.SeedSupplyType(t, db, "Cement", nil)
	mine := testutil.SeedSupplyLog(t, db, supplier.ID, cement.ID, 100, 1)
	theirs := testutil.SeedSupplyLog(t, db, other.ID, cement.ID, 100, 1)
	typ := testutil.TransactionType(t, db, models.TransactionTypeSupplyPayments)

	_, err := txSvc.CreateTransaction(ctx, transaction.Input{
		TransactionTypeID: typ.ID, RelationshipID: supplier.ID, SupplyLogIDs: []uint{mine.ID, theirs.ID},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = txSvc.CreateTransaction(ctx, transaction.Input{TransactionTypeID: typ.ID, RelationshipID: supplier.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalid, "empty selection")

	txn, err := txSvc.CreateTransaction(ctx, transaction.Input{
		TransactionTypeID: typ.ID, RelationshipID: supplier.ID, SupplyLogIDs: []uint{mine.ID}, Description: "cheque 88",
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, txn.Amount)
	assert.Equal(t, "cheque 88", txn.Description)

	logs, err := svc.ListSupplyLogs(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, sl := range logs {
		if sl.ID == mine.ID {
			assert.NotNil(t, sl.PaymentID)
		} else {
			assert.Nil(t, sl.PaymentID)
		}
	}
}
