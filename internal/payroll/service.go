// Package payroll prices work logs and settles them into payroll transactions.
package payroll

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookkeeping-backend/internal/apperr"
	"bookkeeping-backend/internal/entity"
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

// -------------------------
// Work Types
// -------------------------

type CreateWorkTypeRequest struct {
	Name        string         `json:"name" form:"name" validate:"required,max=100"`
	Description string         `json:"description" form:"description" validate:"max=250"`
	PayType     models.PayType `json:"pay_type" form:"pay_type" validate:"required,oneof=Hourly Daily Weekly Monthly"`
	Rate        float64        `json:"rate" form:"rate" validate:"gte=0"`
}

func (s *Service) CreateWorkType(ctx context.Context, in CreateWorkTypeRequest) (*models.WorkType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := apperr.Validate(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.WorkType{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("work type %s already exists", in.Name)
	}

	wt := models.WorkType{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		PayType:     in.PayType,
		Rate:        in.Rate,
	}
	if err := db.Create(&wt).Error; err != nil {
		return nil, apperr.FromDB(err, "work type "+in.Name)
	}
	return &wt, nil
}

func (s *Service) ListWorkTypes(ctx context.Context) ([]models.WorkType, error) {
	var rows []models.WorkType
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list work types: %w", err)
	}
	return rows, nil
}

// DeleteWorkType warns while work logs reference the type. Forced, it
// removes the unpaid logs with the type; paid logs block the delete.
func (s *Service) DeleteWorkType(ctx context.Context, id uint, force bool) (entity.DeleteResult, error) {
	var result entity.DeleteResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wt models.WorkType
		if err := tx.First(&wt, id).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("work type %d", id))
		}

		var count int64
		if err := tx.Model(&models.WorkLog{}).Where("work_type_id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("count work logs: %w", err)
		}
		if count > 0 && !force {
			result = entity.DeleteResult{Status: entity.StatusWarning, Count: count}
			return nil
		}

		var paid int64
		if err := tx.Model(&models.WorkLog{}).Where("work_type_id = ? AND is_paid = ?", id, true).Count(&paid).Error; err != nil {
			return fmt.Errorf("count paid work logs: %w", err)
		}
		if paid > 0 {
			return apperr.Conflict("%d paid work logs reference work type %s", paid, wt.Name)
		}

		if err := tx.Where("work_type_id = ?", id).Delete(&models.WorkLog{}).Error; err != nil {
			return fmt.Errorf("delete work logs of type %d: %w", id, err)
		}
		if err := tx.Delete(&wt).Error; err != nil {
			return apperr.FromDB(err, fmt.Sprintf("work type %d", id))
		}
		result = entity.DeleteResult{Status: entity.StatusDeleted}
		return nil
	})
	if err != nil {
		return entity.DeleteResult{}, err
	}

	if force && result.Status == entity.StatusDeleted {
		metrics.ForcedDeletesTotal.WithLabelValues("work_type").Inc()
	}
	return result, nil
}

// -------------------------
// Work Logs
// -------------------------

type WorkLogInput struct {
	StartDate      time.Time
	EndDate        time.Time
	WorkTypeID     uint
	RelationshipID uint
	WorkUnits      float64
	Description    string
}

// CreateWorkLog prices the log with the work type's current rate and keeps
// that rate on the row. Later rate changes do not touch it.
func (s *Service) CreateWorkLog(ctx context.Context, in WorkLogInput) (*models.WorkLog, error) {
	if in.WorkUnits <= 0 {
		return nil, apperr.Invalid("work units must be greater than 0")
	}
	if in.StartDate.IsZero() {
		in.StartDate = models.Today()
	}
	if in.EndDate.IsZero() {
		in.EndDate = in.StartDate
	}
	in.StartDate, in.EndDate = models.Day(in.StartDate), models.Day(in.EndDate)
	if in.EndDate.Before(in.StartDate) {
		return nil, apperr.Invalid("end date is before start date")
	}

	db := s.db.WithContext(ctx)

	var wt models.WorkType
	if err := db.First(&wt, in.WorkTypeID).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("work type %d", in.WorkTypeID))
	}
	var rel models.Relationship
	if err := db.Preload("Entity").First(&rel, in.RelationshipID).Error; err != nil {
		return nil, apperr.FromDB(err, fmt.Sprintf("relationship %d", in.RelationshipID))
	}

	wl := models.WorkLog{
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		WorkTypeID:     wt.ID,
		RelationshipID: rel.ID,
		WorkUnits:      in.WorkUnits,
		Rate:           wt.Rate,
		DuePayment:     in.WorkUnits * wt.Rate,
		Description:    strings.TrimSpace(in.Description),
	}
	if err := db.Create(&wl).Error; err != nil {
		return nil, apperr.FromDB(err, "work log")
	}
	wl.WorkType = wt
	wl.Relationship = rel
	return &wl, nil
}

func (s *Service) ListWorkLogs(ctx context.Context) ([]models.WorkLog, error) {
	var rows []models.WorkLog
	if err := s.db.WithContext(ctx).
		Preload("WorkType").
		Preload("Relationship.Entity").
		Order("start_date desc, id desc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list work logs: %w", err)
	}
	return rows, nil
}

func (s *Service) ListUnpaidWorkLogs(ctx context.Context, relationshipID uint) ([]models.WorkLog, error) {
	var rows []models.WorkLog
	if err := s.db.WithContext(ctx).
		Where("relationship_id = ? AND is_paid = ?", relationshipID, false).
		Order("start_date, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list unpaid work logs: %w", err)
	}
	return rows, nil
}
