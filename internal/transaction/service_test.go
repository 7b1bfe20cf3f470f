package transaction_test

import (
	"context"
	"errors"
	"testing"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/testutil"
	"bookkeeping-backend/internal/transaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCreateTransaction_General(t *testing.T) {
	db := testutil.DB(t)
	svc := transaction.NewService(db, zap.NewNop())
	ctx := context.Background()

	rel := testutil.SeedSupplier(t, db, "Cement Co")
	sales := testutil.SeedTransactionType(t, db, "Sales")

	txn, err := svc.CreateTransaction(ctx, transaction.Input{
		TransactionTypeID: sales.ID,
		RelationshipID:    rel.ID,
		Amount:            120.5,
		Date:              testutil.Day("2024-03-05"),
		Description:       "  invoice 7 ",
	})
	require.NoError(t, err)
	assert.Equal(t, 120.5, txn.Amount)
	assert.Equal(t, "Sales", txn.TransactionType.Name)
	assert.Equal(t, "Cement Co", txn.Relationship.Entity.Name)
	assert.Equal(t, "invoice 7", txn.Description)
	assert.True(t, testutil.Day("2024-03-05").Equal(txn.Date))

	undated, err := svc.CreateTransaction(ctx, transaction.Input{
		TransactionTypeID: sales.ID, RelationshipID: rel.ID, Amount: 1,
	})
	require.NoError(t, err)
	assert.True(t, models.Today().Equal(undated.Date), "date defaults to today")

	rows, err := svc.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, undated.ID, rows[0].ID, "newest date first")
}

func TestCreateTransaction_Rejections(t *testing.T) {
	db := testutil.DB(t)
	svc := transaction.NewService(db, zap.NewNop())
	ctx := context.Background()

	rel := testutil.SeedSupplier(t, db, "Cement Co")
	sales := testutil.SeedTransactionType(t, db, "Sales")

	_, err := svc.CreateTransaction(ctx, transaction.Input{TransactionTypeID: 999, RelationshipID: rel.ID, Amount: 5})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateTransaction(ctx, transaction.Input{TransactionTypeID: sales.ID, RelationshipID: 999, Amount: 5})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.CreateTransaction(ctx, transaction.Input{TransactionTypeID: sales.ID, RelationshipID: rel.ID})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = svc.CreateTransaction(ctx, transaction.Input{
		TransactionTypeID: sales.ID, RelationshipID: rel.ID, Amount: 5, WorkLogIDs: []uint{1},
	})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	// no payroll handler is registered on a bare service
	payroll := testutil.TransactionType(t, db, models.TransactionTypePayroll)
	_, err = svc.CreateTransaction(ctx, transaction.Input{TransactionTypeID: payroll.ID, RelationshipID: rel.ID})
	assert.ErrorIs(t, err, apperr.ErrPrecondition)

	assert.EqualValues(t, 0, testutil.Count(t, db, &models.Transaction{}, ""))
}

func TestCreateTransaction_HandlerErrorRollsBack(t *testing.T) {
	db := testutil.DB(t)
	svc := transaction.NewService(db, zap.NewNop())
	rel := testutil.SeedSupplier(t, db, "Cement Co")
	boom := errors.New("side record failed")

	svc.Register(models.KindSupplyPayment, transaction.HandlerFunc(
		func(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, in transaction.Input) (*models.Transaction, error) {
			txn := &models.Transaction{TransactionTypeID: typ.ID, RelationshipID: in.RelationshipID, Amount: 10, Date: in.Date}
			if err := transaction.Insert(ctx, tx, txn); err != nil {
				return nil, err
			}
			return nil, boom
		}))

	typ := testutil.TransactionType(t, db, models.TransactionTypeSupplyPayments)
	_, err := svc.CreateTransaction(context.Background(), transaction.Input{TransactionTypeID: typ.ID, RelationshipID: rel.ID})
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, testutil.Count(t, db, &models.Transaction{}, ""))
}

func TestTypeForKind(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()

	typ, err := transaction.TypeForKind(ctx, db, models.KindPayroll)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionTypePayroll, typ.Name)

	require.NoError(t, db.Where("kind = ?", models.KindSupplyPayment).Delete(&models.TransactionType{}).Error)
	_, err = transaction.TypeForKind(ctx, db, models.KindSupplyPayment)
	assert.ErrorIs(t, err, apperr.ErrPrecondition)
}

func TestTransactionTypes(t *testing.T) {
	db := testutil.DB(t)
	svc := transaction.NewService(db, zap.NewNop())
	ctx := context.Background()

	typ, err := svc.CreateTransactionType(ctx, transaction.CreateTransactionTypeRequest{Name: "Rent"})
	require.NoError(t, err)
	assert.Equal(t, models.KindGeneral, typ.Kind)

	_, err = svc.CreateTransactionType(ctx, transaction.CreateTransactionTypeRequest{Name: models.TransactionTypePayroll})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.CreateTransactionType(ctx, transaction.CreateTransactionTypeRequest{Name: " "})
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	rows, err := svc.ListTransactionTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestGetTransaction_NotFound(t *testing.T) {
	svc := transaction.NewService(testutil.DB(t), zap.NewNop())
	_, err := svc.GetTransaction(context.Background(), 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
