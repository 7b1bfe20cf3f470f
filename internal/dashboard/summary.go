// Package dashboard aggregates the ledger by transaction type and counts
// relationships by role.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// Range is an inclusive range of days. A zero bound means today.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) normalize() (Range, error) {
	today := models.Today()
	if r.Start.IsZero() {
		r.Start = today
	}
	if r.End.IsZero() {
		r.End = today
	}
	r.Start, r.End = models.Day(r.Start), models.Day(r.End)
	if r.Start.After(r.End) {
		return Range{}, apperr.Invalid("start date %s is after end date %s",
			r.Start.Format(models.DateLayout), r.End.Format(models.DateLayout))
	}
	return r, nil
}

// TypeTotal is the sum and count of one transaction type within the range.
type TypeTotal struct {
	ID    uint                   `gorm:"column:id"`
	Name  string                 `gorm:"column:name"`
	Kind  models.TransactionKind `gorm:"column:kind"`
	Total float64                `gorm:"column:total"`
	Count int64                  `gorm:"column:count"`
}

// RoleCount is the number of relationships of one relationship type.
type RoleCount struct {
	ID    uint   `gorm:"column:id"`
	Name  string `gorm:"column:name"`
	Count int64  `gorm:"column:count"`
}

type Summary struct {
	Range             Range
	TransactionTypes  []TypeTotal
	RelationshipTypes []RoleCount
	GrandTotal        float64
}

// Summary lists every transaction type, zero-filled, with its totals between
// the range bounds, and every relationship type with its relationship count
// regardless of date.
func (s *Service) Summary(ctx context.Context, r Range) (*Summary, error) {
	r, err := r.normalize()
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	out := &Summary{Range: r}

	// half-open on the day after End so every time stored on End matches
	if err := db.Raw(`
		SELECT tt.id AS id,
			   tt.name AS name,
			   tt.kind AS kind,
			   COALESCE(SUM(t.amount), 0) AS total,
			   COUNT(t.id) AS count
		FROM transaction_types tt
		LEFT JOIN transactions t
			   ON t.transaction_type_id = tt.id
			  AND t.date >= ? AND t.date < ?
		GROUP BY tt.id, tt.name, tt.kind
		ORDER BY tt.id ASC
	`, r.Start, r.End.AddDate(0, 0, 1)).Scan(&out.TransactionTypes).Error; err != nil {
		return nil, fmt.Errorf("sum transactions by type: %w", err)
	}

	if err := db.Raw(`
		SELECT rt.id AS id,
			   rt.name AS name,
			   COUNT(r.id) AS count
		FROM relationship_types rt
		LEFT JOIN relationships r ON r.relationship_type_id = rt.id
		GROUP BY rt.id, rt.name
		ORDER BY rt.id ASC
	`).Scan(&out.RelationshipTypes).Error; err != nil {
		return nil, fmt.Errorf("count relationships by type: %w", err)
	}

	for _, tt := range out.TransactionTypes {
		out.GrandTotal += tt.Total
	}
	return out, nil
}
