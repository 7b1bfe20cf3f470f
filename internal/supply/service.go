// Package supply keeps the supply category hierarchy and the purchases made
// from suppliers, paid on the spot or later.
package supply

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/metrics"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/transaction"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

type SupplyLogInput struct {
	Date         time.Time
	SupplierID   uint
	SupplyTypeID uint
	UnitPrice    float64
	Units        float64
	Description  string
	Paid         bool
}

// CreateSupplyLog records a purchase. When Paid is set the payment
// transaction and its SupplyPayment are written in the same DB transaction
// and the log is persisted already linked to them.
func (s *Service) CreateSupplyLog(ctx context.Context, in SupplyLogInput) (*models.SupplyLog, error) {
	if in.UnitPrice < 0 {
		return nil, apperr.Invalid("unit price must not be negative")
	}
	if in.Units <= 0 {
		return nil, apperr.Invalid("units must be greater than 0")
	}
	if in.Date.IsZero() {
		in.Date = models.Today()
	}
	in.Date = models.Day(in.Date)
	in.Description = strings.TrimSpace(in.Description)

	var sl models.SupplyLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		supplier, err := findSupplier(tx, in.SupplierID)
		if err != nil {
			return err
		}
		var st models.SupplyType
		if err := tx.First(&st, in.SupplyTypeID).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("supply type %d", in.SupplyTypeID))
		}

		sl = models.SupplyLog{
			Date:         in.Date,
			SupplierID:   supplier.ID,
			SupplyTypeID: st.ID,
			UnitPrice:    in.UnitPrice,
			Units:        in.Units,
			Amount:       in.UnitPrice * in.Units,
			Description:  in.Description,
		}

		if in.Paid {
			typ, err := transaction.TypeForKind(ctx, tx, models.KindSupplyPayment)
			if err != nil {
				return err
			}
			txn := &models.Transaction{
				TransactionTypeID: typ.ID,
				RelationshipID:    supplier.ID,
				Amount:            sl.Amount,
				Date:              sl.Date,
				Description:       paymentDescription(sl.Units, sl.UnitPrice, supplier.Entity.Name),
			}
			if err := transaction.Insert(ctx, tx, txn); err != nil {
				return err
			}
			payment := models.SupplyPayment{TransactionID: txn.ID}
			if err := tx.Create(&payment).Error; err != nil {
				return apperr.FromDB(err, "supply payment")
			}
			sl.PaymentID = &payment.ID
		}

		if err := tx.Create(&sl).Error; err != nil {
			return apperr.FromDB(err, "supply log")
		}
		sl.Supplier = *supplier
		sl.SupplyType = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.SupplyPurchasesTotal.WithLabelValues(strconv.FormatBool(in.Paid)).Inc()
	if in.Paid {
		metrics.TransactionsTotal.WithLabelValues(string(models.KindSupplyPayment)).Inc()
	}
	s.log.Info("supply logged",
		zap.Uint("supply_log_id", sl.ID),
		zap.Uint("supplier_id", sl.SupplierID),
		zap.Float64("amount", sl.Amount),
		zap.Bool("paid", in.Paid))
	return &sl, nil
}

func paymentDescription(units, unitPrice float64, supplier string) string {
	return fmt.Sprintf("Supply payment for %s units @ %s (Supplier %s)",
		strconv.FormatFloat(units, 'f', -1, 64),
		strconv.FormatFloat(unitPrice, 'f', -1, 64),
		supplier)
}

// findSupplier loads a relationship holding the Supplier role.
func findSupplier(tx *gorm.DB, id uint) (*models.Relationship, error) {
	var rel models.Relationship
	if err := tx.Preload("Entity").Preload("RelationshipType").First(&rel, id).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("supplier %d", id))
	}
	if rel.RelationshipType.Name != models.RelationshipSupplier {
		return nil, apperr.Invalid("relationship %d is a %s, not a %s", id, rel.RelationshipType.Name, models.RelationshipSupplier)
	}
	return &rel, nil
}

func (s *Service) ListSupplyLogs(ctx context.Context) ([]models.SupplyLog, error) {
	var rows []models.SupplyLog
	if err := s.db.WithContext(ctx).
		Preload("Supplier.Entity").
		Preload("SupplyType").
		Order("date desc, id desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list supply logs: %w", err)
	}
	return rows, nil
}

func (s *Service) ListUnpaidSupplyLogs(ctx context.Context, supplierID uint) ([]models.SupplyLog, error) {
	var rows []models.SupplyLog
	if err := s.db.WithContext(ctx).
		Preload("SupplyType").
		Where("supplier_id = ? AND payment_id IS NULL", supplierID).
		Order("date, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list unpaid supply logs: %w", err)
	}
	return rows, nil
}

// PaySupplyLogs pays existing unpaid logs of one supplier with a single
// transaction owning one SupplyPayment. tx must be a running DB transaction.
func PaySupplyLogs(ctx context.Context, tx *gorm.DB, supplierID uint, logIDs []uint, date time.Time, description string) (*models.Transaction, error) {
	typ, err := transaction.TypeForKind(ctx, tx, models.KindSupplyPayment)
	if err != nil {
		return nil, err
	}
	return payLogs(ctx, tx, typ, supplierID, logIDs, date, description)
}

func payLogs(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, supplierID uint, logIDs []uint, date time.Time, description string) (*models.Transaction, error) {
	ids := slices.Clone(logIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) > 0 && ids[0] == 0 {
		ids = ids[1:]
	}
	if len(ids) == 0 {
		return nil, apperr.Invalid("select at least one supply log to pay")
	}
	tx = tx.WithContext(ctx)

	supplier, err := findSupplier(tx, supplierID)
	if err != nil {
		return nil, err
	}

	var logs []models.SupplyLog
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("lock supply logs: %w", err)
	}
	if len(logs) != len(ids) {
		return nil, apperr.NotFound("%d of %d supply logs", len(ids)-len(logs), len(ids))
	}

	var total float64
	for _, sl := range logs {
		if sl.PaymentID != nil {
			return nil, apperr.Conflict("supply log %d is already paid", sl.ID)
		}
		if sl.SupplierID != supplier.ID {
			return nil, apperr.Invalid("supply log %d belongs to supplier %d, not %d", sl.ID, sl.SupplierID, supplier.ID)
		}
		total += sl.Amount
	}

	if date.IsZero() {
		date = models.Today()
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = fmt.Sprintf("Supply payment for %d purchases (Supplier %s)", len(logs), supplier.Entity.Name)
	}

	txn := &models.Transaction{
		TransactionTypeID: typ.ID,
		RelationshipID:    supplier.ID,
		Amount:            total,
		Date:              date,
		Description:       description,
	}
	if err := transaction.Insert(ctx, tx, txn); err != nil {
		return nil, err
	}
	payment := models.SupplyPayment{TransactionID: txn.ID}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, apperr.FromDB(err, "supply payment")
	}

	res := tx.Model(&models.SupplyLog{}).
		Where("id IN ? AND payment_id IS NULL", ids).
		Update("payment_id", payment.ID)
	if res.Error != nil {
		return nil, fmt.Errorf("link supply logs: %w", res.Error)
	}
	if res.RowsAffected != int64(len(ids)) {
		return nil, apperr.Conflict("supply logs were paid concurrently")
	}

	txn.TransactionType = *typ
	return txn, nil
}

// TransactionHandler records supply payments created through the generic
// transaction endpoint.
func TransactionHandler() transaction.Handler {
	return transaction.HandlerFunc(func(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, in transaction.Input) (*models.Transaction, error) {
		if len(in.WorkLogIDs) > 0 {
			return nil, apperr.Invalid("supply payments pay supply logs, not work logs")
		}
		return payLogs(ctx, tx, typ, in.RelationshipID, in.SupplyLogIDs, in.Date, in.Description)
	})
}
