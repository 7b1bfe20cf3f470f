package entity

import (
	"context"
	"fmt"
	"strings"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/metrics"
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

type CreateEntityRequest struct {
	Name    string `json:"name" form:"name" validate:"required,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email,max=120"`
	Phone   string `json:"phone" form:"phone" validate:"required,max=20"`
	Address string `json:"address" form:"address" validate:"max=200"`
}

// DeleteStatus tells a caller whether a guarded delete happened.
type DeleteStatus string

const (
	StatusWarning DeleteStatus = "warning"
	StatusDeleted DeleteStatus = "deleted"
)

// DeleteResult is a warning with the dependent count, or a confirmation.
type DeleteResult struct {
	Status DeleteStatus `json:"status"`
	Count  int64        `json:"count,omitempty"`
}

func (s *Service) CreateEntity(ctx context.Context, in CreateEntityRequest) (*models.Entity, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Entity{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("entity with email %s already exists", in.Email)
	}

	e := models.Entity{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
	}
	if err := db.Create(&e).Error; err != nil {
		return nil, apperr.FromDB(err, "entity "+in.Email)
	}
	return &e, nil
}

func (s *Service) ListEntities(ctx context.Context) ([]models.Entity, error) {
	var rows []models.Entity
	if err := s.db.WithContext(ctx).Order("name, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return rows, nil
}

func (s *Service) GetEntity(ctx context.Context, id uint) (*models.Entity, error) {
	var e models.Entity
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("entity %d", id))
	}
	return &e, nil
}

// RelationshipInfo is one role of an entity with its ledger activity.
type RelationshipInfo struct {
	Relationship models.Relationship
	Transactions []models.Transaction
	TotalAmount  float64
	WorkLogs     []models.WorkLog // only for the Employee role
}

type EntityInfo struct {
	Entity        models.Entity
	Relationships []RelationshipInfo
}

// GetEntityInfo gathers every role of the entity with its transactions,
// their total, and the work logs of an Employee role.
func (s *Service) GetEntityInfo(ctx context.Context, id uint) (*EntityInfo, error) {
	db := s.db.WithContext(ctx)

	e, err := s.GetEntity(ctx, id)
	if err != nil {
		return nil, err
	}

	var rels []models.Relationship
	if err := db.Preload("RelationshipType").Where("entity_id = ?", id).Order("id").Find(&rels).Error; err != nil {
		return nil, fmt.Errorf("load relationships of entity %d: %w", id, err)
	}

	info := &EntityInfo{Entity: *e, Relationships: make([]RelationshipInfo, 0, len(rels))}
	for _, rel := range rels {
		ri := RelationshipInfo{Relationship: rel}

		if err := db.Preload("TransactionType").
			Where("relationship_id = ?", rel.ID).
			Order("date desc, id desc").
			Find(&ri.Transactions).Error; err != nil {
			return nil, fmt.Errorf("load transactions of relationship %d: %w", rel.ID, err)
		}
		for _, t := range ri.Transactions {
			ri.TotalAmount += t.Amount
		}

		if strings.EqualFold(rel.RelationshipType.Name, models.RelationshipEmployee) {
			if err := db.Preload("WorkType").
				Where("relationship_id = ?", rel.ID).
				Order("start_date desc, id desc").
				Find(&ri.WorkLogs).Error; err != nil {
				return nil, fmt.Errorf("load work logs of relationship %d: %w", rel.ID, err)
			}
		}

		info.Relationships = append(info.Relationships, ri)
	}
	return info, nil
}

// DeleteEntity removes an entity without relationships. With relationships
// it only reports their count, unless force is set: then the relationships
// and the entity go in one transaction.
func (s *Service) DeleteEntity(ctx context.Context, id uint, force bool) (DeleteResult, error) {
	var result DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Entity
		if err := tx.First(&e, id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("entity %d", id))
		}

		rels := func() *gorm.DB {
			return tx.Model(&models.Relationship{}).Where("entity_id = ?", id)
		}
		r, err := guardedDelete(tx, rels, force, func() error {
			if err := tx.Where("entity_id = ?", id).Delete(&models.Relationship{}).Error; err != nil {
				return fmt.Errorf("delete relationships of entity %d: %w", id, err)
			}
			if err := tx.Delete(&e).Error; err != nil {
				return apperr.FromDB(err, fmt.Sprintf("entity %d", id))
			}
			return nil
		})
		result = r
		return err
	})
	if err != nil {
		return DeleteResult{}, err
	}

	if force && result.Status == StatusDeleted {
		metrics.ForcedDeletesTotal.WithLabelValues("entity").Inc()
		s.log.Info("entity force deleted", zap.Uint("entity_id", id))
	}
	return result, nil
}

// guardedDelete runs the two-phase delete shared by entities and
// relationship types. rels selects the dependent relationships.
func guardedDelete(tx *gorm.DB, rels func() *gorm.DB, force bool, remove func() error) (DeleteResult, error) {
	var count int64
	if err := rels().Count(&count).Error; err != nil {
		return DeleteResult{}, fmt.Errorf("count relationships: %w", err)
	}

	if count > 0 && !force {
		return DeleteResult{Status: StatusWarning, Count: count}, nil
	}

	if count > 0 {
		ids := rels().Select("id")
		refs, err := ledgerReferences(tx, ids)
		if err != nil {
			return DeleteResult{}, err
		}
		if refs > 0 {
			return DeleteResult{}, apperr.Conflict("%d ledger records reference these relationships", refs)
		}
	}

	if err := remove(); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{Status: StatusDeleted}, nil
}

// ledgerReferences counts transactions, work logs and supply logs pointing
// at the relationships selected by ids.
func ledgerReferences(tx *gorm.DB, ids *gorm.DB) (int64, error) {
	checks := []struct {
		model  any
		column string
	}{
		{&models.Transaction{}, "relationship_id"},
		{&models.WorkLog{}, "relationship_id"},
		{&models.SupplyLog{}, "supplier_id"},
	}

	var total int64
	for _, chk := range checks {
		var n int64
		if err := tx.Model(chk.model).Where(chk.column+" IN (?)", ids).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("count ledger references: %w", err)
		}
		total += n
	}
	return total, nil
}
