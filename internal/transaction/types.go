package transaction

import (
	"context"
	"fmt"
	"strings"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/models"
)

type CreateTransactionTypeRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"max=250"`
}

// CreateTransactionType adds a general type. System kinds only come from seeding.
func (s *Service) CreateTransactionType(ctx context.Context, in CreateTransactionTypeRequest) (*models.TransactionType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.TransactionType{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("transaction type %s already exists", in.Name)
	}

	typ := models.TransactionType{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Kind:        models.KindGeneral,
	}
	if err := db.Create(&typ).Error; err != nil {
		return nil, apperr.FromDB(err, "transaction type "+in.Name)
	}
	return &typ, nil
}

func (s *Service) ListTransactionTypes(ctx context.Context) ([]models.TransactionType, error) {
	var rows []models.TransactionType
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list transaction types: %w", err)
	}
	return rows, nil
}
