// Package transaction records ledger entries. Each transaction type has a
// kind, and the handler registered for that kind writes the transaction
// together with its side records.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/metrics"
	"bookkeeping-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Input is a request to record one transaction. Amount is used by the
// general kind only; the other kinds derive it from the selected logs.
type Input struct {
	TransactionTypeID uint
	RelationshipID    uint
	Amount            float64
	Date              time.Time
	Description       string
	WorkLogIDs        []uint
	SupplyLogIDs      []uint
}

// Handler writes a transaction of one kind inside the caller's DB transaction.
type Handler interface {
	Record(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, in Input) (*models.Transaction, error)
}

type HandlerFunc func(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, in Input) (*models.Transaction, error)

func (f HandlerFunc) Record(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, in Input) (*models.Transaction, error) {
	return f(ctx, tx, typ, in)
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	mu       sync.RWMutex
	handlers map[models.TransactionKind]Handler
}

// NewService returns a service with the general kind registered.
func NewService(db *gorm.DB, log *zap.Logger) *Service {
	s := &Service{
		db:       db,
		log:      log,
		handlers: make(map[models.TransactionKind]Handler),
	}
	s.Register(models.KindGeneral, HandlerFunc(recordGeneral))
	return s
}

// Register sets the handler for kind, replacing any previous one.
func (s *Service) Register(kind models.TransactionKind, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[kind] = h
}

func (s *Service) handler(kind models.TransactionKind) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[kind]
	return h, ok
}

// CreateTransaction resolves the type, dispatches on its kind and commits
// the transaction with every side record, or nothing.
func (s *Service) CreateTransaction(ctx context.Context, in Input) (*models.Transaction, error) {
	if in.Date.IsZero() {
		in.Date = models.Today()
	}
	in.Date = models.Day(in.Date)
	in.Description = strings.TrimSpace(in.Description)

	var (
		txn  *models.Transaction
		kind models.TransactionKind
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var typ models.TransactionType
		if err := tx.First(&typ, in.TransactionTypeID).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("transaction type %d", in.TransactionTypeID))
		}
		kind = typ.Kind

		h, ok := s.handler(typ.Kind)
		if !ok {
			return apperr.Precondition("no handler registered for transaction kind %q", typ.Kind)
		}

		var err error
		txn, err = h.Record(ctx, tx, &typ, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(kind)).Inc()
	s.log.Info("transaction recorded",
		zap.Uint("transaction_id", txn.ID),
		zap.String("kind", string(kind)),
		zap.Float64("amount", txn.Amount))
	return s.GetTransaction(ctx, txn.ID)
}

func recordGeneral(ctx context.Context, tx *gorm.DB, typ *models.TransactionType, in Input) (*models.Transaction, error) {
	if in.Amount <= 0 {
		return nil, apperr.Invalid("amount must be greater than 0")
	}
	if len(in.WorkLogIDs) > 0 || len(in.SupplyLogIDs) > 0 {
		return nil, apperr.Invalid("transaction type %s does not settle logs", typ.Name)
	}

	txn := &models.Transaction{
		TransactionTypeID: typ.ID,
		RelationshipID:    in.RelationshipID,
		Amount:            in.Amount,
		Date:              in.Date,
		Description:       in.Description,
	}
	if err := Insert(ctx, tx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// Insert writes txn after checking its counterparty exists. tx must be the
// running DB transaction.
func Insert(ctx context.Context, tx *gorm.DB, txn *models.Transaction) error {
	tx = tx.WithContext(ctx)

	var rel models.Relationship
	if err := tx.Select("id").First(&rel, txn.RelationshipID).Error; err != nil {
		return apperr.FromDB(err, fmt.Sprintf("relationship %d", txn.RelationshipID))
	}

	txn.Date = models.Day(txn.Date)
	if err := tx.Create(txn).Error; err != nil {
		return apperr.FromDB(err, "transaction")
	}
	return nil
}

// TypeForKind returns the seeded transaction type owning a system kind.
func TypeForKind(ctx context.Context, tx *gorm.DB, kind models.TransactionKind) (*models.TransactionType, error) {
	var typ models.TransactionType
	err := tx.WithContext(ctx).Where("kind = ?", kind).Order("id").First(&typ).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Precondition("no transaction type of kind %q, seed has not run", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction type of kind %q: %w", kind, err)
	}
	return &typ, nil
}

func (s *Service) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var rows []models.Transaction
	if err := s.db.WithContext(ctx).
		Preload("TransactionType").
		Preload("Relationship.Entity").
		Preload("Relationship.RelationshipType").
		Order("date desc, id desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return rows, nil
}

func (s *Service) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.db.WithContext(ctx).
		Preload("TransactionType").
		Preload("Relationship.Entity").
		Preload("Relationship.RelationshipType").
		First(&txn, id).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("transaction %d", id))
	}
	return &txn, nil
}
