package payroll

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/metrics"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/transaction"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settle pays the selected unpaid work logs of one relationship with a
// single payroll transaction. tx must be a running DB transaction: the
// transaction row, the payroll rows and the paid flags commit together.
func Settle(ctx context.Context, tx *gorm.DB, relationshipID uint, workLogIDs []uint, description string) (*models.Transaction, error) {
	typ, err := transaction.TypeForKind(ctx, tx, models.KindPayroll)
	if err != nil {
		return nil, err
	}
	return settle(ctx, tx, typ, relationshipID, workLogIDs, description)
}

func settle(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, relationshipID uint, workLogIDs []uint, description string) (*models.Transaction, error) {
	ids := uniqueIDs(workLogIDs)
	if len(ids) == 0 {
		return nil, apperr.Invalid("select at least one work log to settle")
	}
	tx = tx.WithContext(ctx)

	var logs []models.WorkLog
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("lock work logs: %w", err)
	}
	if len(logs) != len(ids) {
		return nil, apperr.NotFound("work logs %v", missingIDs(ids, logs))
	}

	var total float64
	for _, wl := range logs {
		if wl.IsPaid {
			return nil, apperr.Conflict("work log %d is already paid", wl.ID)
		}
		if wl.RelationshipID != relationshipID {
			return nil, apperr.Invalid("work log %d belongs to relationship %d, not %d", wl.ID, wl.RelationshipID, relationshipID)
		}
		total += wl.DuePayment
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = fmt.Sprintf("Payroll for %d work logs", len(logs))
	}
	txn := &models.Transaction{
		TransactionTypeID: typ.ID,
		RelationshipID:    relationshipID,
		Amount:            total,
		Date:              models.Today(),
		Description:       description,
	}
	if err := transaction.Insert(ctx, tx, txn); err != nil {
		return nil, err
	}

	rows := make([]models.Payroll, 0, len(logs))
	for _, wl := range logs {
		rows = append(rows, models.Payroll{TransactionID: txn.ID, WorkLogID: wl.ID})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return nil, apperr.FromDB(err, "payroll rows")
	}

	res := tx.Model(&models.WorkLog{}).
		Where("id IN ? AND is_paid = ?", ids, false).
		Updates(map[string]any{"is_paid": true, "transaction_id": txn.ID})
	if res.Error != nil {
		return nil, fmt.Errorf("mark work logs paid: %w", res.Error)
	}
	if res.RowsAffected != int64(len(ids)) {
		return nil, apperr.Conflict("work logs were settled concurrently")
	}

	txn.TransactionType = *typ
	metrics.SettlementsTotal.Inc()
	metrics.SettledWorkLogsTotal.Add(float64(len(ids)))
	return txn, nil
}

// SettleWorkLogs runs Settle in its own DB transaction.
func (s *Service) SettleWorkLogs(ctx context.Context, relationshipID uint, workLogIDs []uint, description string) (*models.Transaction, error) {
	var txn *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = Settle(ctx, tx, relationshipID, workLogIDs, description)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(models.KindPayroll)).Inc()
	s.log.Info("payroll settled",
		zap.Uint("transaction_id", txn.ID),
		zap.Uint("relationship_id", relationshipID),
		zap.Int("work_logs", len(workLogIDs)),
		zap.Float64("amount", txn.Amount))
	return txn, nil
}

// TransactionHandler records payroll transactions created through the
// generic transaction endpoint.
func TransactionHandler() transaction.Handler {
	return transaction.HandlerFunc(func(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, in transaction.Input) (*models.Transaction, error) {
		if len(in.SupplyLogIDs) > 0 {
			return nil, apperr.Invalid("payroll transactions settle work logs, not supply logs")
		}
		return settle(ctx, tx, typ, in.RelationshipID, in.WorkLogIDs, in.Description)
	})
}

func uniqueIDs(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) > 0 && out[0] == 0 {
		out = out[1:]
	}
	return out
}

func missingIDs(want []uint, found []models.WorkLog) []uint {
	seen := make(map[uint]bool, len(found))
	for _, wl := range found {
		seen[wl.ID] = true
	}
	var missing []uint
	for _, id := range want {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
