package entity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/metrics"
	"bookkeeping-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateRelationshipTypeRequest struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"max=250"`
}

type CreateRelationshipRequest struct {
	EntityID           uint `json:"entity_id" form:"entity_id" validate:"required"`
	RelationshipTypeID uint `json:"relationship_type_id" form:"relationship_type_id" validate:"required"`
}

func (s *Service) CreateRelationshipType(ctx context.Context, in CreateRelationshipTypeRequest) (*models.RelationshipType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.RelationshipType{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("relationship type %s already exists", in.Name)
	}

	rt := models.RelationshipType{Name: in.Name, Description: strings.TrimSpace(in.Description)}
	if err := db.Create(&rt).Error; err != nil {
		return nil, apperr.FromDB(err, "relationship type "+in.Name)
	}
	return &rt, nil
}

func (s *Service) ListRelationshipTypes(ctx context.Context) ([]models.RelationshipType, error) {
	var rows []models.RelationshipType
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list relationship types: %w", err)
	}
	return rows, nil
}

// DeleteRelationshipType follows the same guard as DeleteEntity, counting
// the relationships of the type.
func (s *Service) DeleteRelationshipType(ctx context.Context, id uint, force bool) (DeleteResult, error) {
	var result DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt models.RelationshipType
		if err := tx.First(&rt, id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("relationship type %d", id))
		}

		rels := func() *gorm.DB {
			return tx.Model(&models.Relationship{}).Where("relationship_type_id = ?", id)
		}
		r, err := guardedDelete(tx, rels, force, func() error {
			if err := tx.Where("relationship_type_id = ?", id).Delete(&models.Relationship{}).Error; err != nil {
				return fmt.Errorf("delete relationships of type %d: %w", id, err)
			}
			if err := tx.Delete(&rt).Error; err != nil {
				return apperr.FromDB(err, fmt.Sprintf("relationship type %d", id))
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
		metrics.ForcedDeletesTotal.WithLabelValues("relationship_type").Inc()
		s.log.Info("relationship type force deleted", zap.Uint("relationship_type_id", id))
	}
	return result, nil
}

// CreateRelationship gives an entity one more role. Holding the same role
// twice is a conflict.
func (s *Service) CreateRelationship(ctx context.Context, in CreateRelationshipRequest) (*models.Relationship, error) {
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	var rel models.Relationship
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e models.Entity
		if err := tx.First(&e, in.EntityID).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("entity %d", in.EntityID))
		}
		var rt models.RelationshipType
		if err := tx.First(&rt, in.RelationshipTypeID).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("relationship type %d", in.RelationshipTypeID))
		}

		var count int64
		if err := tx.Model(&models.Relationship{}).
			Where("entity_id = ? AND relationship_type_id = ?", e.ID, rt.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("%s already holds the %s role", e.Name, rt.Name)
		}

		rel = models.Relationship{EntityID: e.ID, RelationshipTypeID: rt.ID}
		if err := tx.Create(&rel).Error; err != nil {
			return apperr.FromDB(err, "relationship")
		}
		rel.Entity = e
		rel.RelationshipType = rt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (s *Service) ListRelationships(ctx context.Context) ([]models.Relationship, error) {
	var rows []models.Relationship
	if err := s.db.WithContext(ctx).
		Preload("Entity").
		Preload("RelationshipType").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	return rows, nil
}

// ListEntitiesByRelationshipType returns the entities holding the role.
func (s *Service) ListEntitiesByRelationshipType(ctx context.Context, typeID uint) (*models.RelationshipType, []models.Entity, error) {
	db := s.db.WithContext(ctx)

	var rt models.RelationshipType
	if err := db.First(&rt, typeID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, fmt.Sprintf("relationship type %d", typeID))
	}

	var rows []models.Entity
	if err := db.Where("id IN (?)",
		db.Model(&models.Relationship{}).Select("entity_id").Where("relationship_type_id = ?", typeID),
	).Order("name, id").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("list entities of relationship type %d: %w", typeID, err)
	}
	return &rt, rows, nil
}

// ListByRole returns the relationships of a seeded role such as Employee
// or Supplier, with their entities loaded.
func (s *Service) ListByRole(ctx context.Context, role string) ([]models.Relationship, error) {
	db := s.db.WithContext(ctx)

	var rt models.RelationshipType
	if err := db.Where("name = ?", role).First(&rt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Precondition("relationship type %s has not been seeded", role)
		}
		return nil, fmt.Errorf("find relationship type %s: %w", role, err)
	}

	var rows []models.Relationship
	if err := db.Preload("Entity").
		Preload("RelationshipType").
		Where("relationship_type_id = ?", rt.ID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s relationships: %w", role, err)
	}
	return rows, nil
}
