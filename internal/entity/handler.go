package entity

import (
	"context"
	"fmt"

	"bookkeeping-backend/internal/audit"
	"bookkeeping-backend/internal/httpx"
	"bookkeeping-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type EntityResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

type TransactionSummary struct {
	ID              uint    `json:"id"`
	TransactionType string  `json:"transaction_type"`
	Amount          float64 `json:"amount"`
	Date            string  `json:"date"`
	Description     string  `json:"description"`
}

type WorkLogSummary struct {
	ID         uint    `json:"id"`
	WorkType   string  `json:"work_type"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	WorkUnits  float64 `json:"work_units"`
	DuePayment float64 `json:"due_payment"`
	IsPaid     bool    `json:"is_paid"`
}

type RelationshipInfoResponse struct {
	RelationshipID   uint                 `json:"relationship_id"`
	RelationshipType string               `json:"relationship_type"`
	Transactions     []TransactionSummary `json:"transactions"`
	TotalAmount      float64              `json:"total_amount"`
	WorkLogs         []WorkLogSummary     `json:"work_logs,omitempty"`
}

type EntityInfoResponse struct {
	Entity        EntityResponse             `json:"entity"`
	Relationships []RelationshipInfoResponse `json:"relationships"`
}

func toEntityResponse(e *models.Entity) EntityResponse {
	return EntityResponse{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Phone:     e.Phone,
		Address:   e.Address,
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// -------------------------
// Entity Handlers
// -------------------------

// POST /api/entities
func CreateEntityHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateEntityRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		e, err := svc.CreateEntity(c.UserContext(), body)
		if err != nil {
			return err
		}

		resp := toEntityResponse(e)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "entity",
			EntityID:    e.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Entity created: %s", e.Name),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/entities
func ListEntitiesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListEntities(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]EntityResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toEntityResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/entities/:id
func GetEntityInfoHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		info, err := svc.GetEntityInfo(c.UserContext(), id)
		if err != nil {
			return err
		}

		resp := EntityInfoResponse{
			Entity:        toEntityResponse(&info.Entity),
			Relationships: make([]RelationshipInfoResponse, 0, len(info.Relationships)),
		}
		for _, ri := range info.Relationships {
			r := RelationshipInfoResponse{
				RelationshipID:   ri.Relationship.ID,
				RelationshipType: ri.Relationship.RelationshipType.Name,
				Transactions:     make([]TransactionSummary, 0, len(ri.Transactions)),
				TotalAmount:      ri.TotalAmount,
			}
			for _, t := range ri.Transactions {
				r.Transactions = append(r.Transactions, TransactionSummary{
					ID:              t.ID,
					TransactionType: t.TransactionType.Name,
					Amount:          t.Amount,
					Date:            httpx.FormatDay(t.Date),
					Description:     t.Description,
				})
			}
			for _, wl := range ri.WorkLogs {
				r.WorkLogs = append(r.WorkLogs, WorkLogSummary{
					ID:         wl.ID,
					WorkType:   wl.WorkType.Name,
					StartDate:  httpx.FormatDay(wl.StartDate),
					EndDate:    httpx.FormatDay(wl.EndDate),
					WorkUnits:  wl.WorkUnits,
					DuePayment: wl.DuePayment,
					IsPaid:     wl.IsPaid,
				})
			}
			resp.Relationships = append(resp.Relationships, r)
		}
		return c.JSON(resp)
	}
}

// POST /api/entities/:id/delete
func DeleteEntityHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return deleteHandler("entity", svc.DeleteEntity, auditSvc, false)
}

// POST /api/entities/:id/force-delete
func ForceDeleteEntityHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return deleteHandler("entity", svc.DeleteEntity, auditSvc, true)
}

func deleteHandler(
	record string,
	del func(ctx context.Context, id uint, force bool) (DeleteResult, error),
	auditSvc *audit.Service,
	force bool,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		result, err := del(c.UserContext(), id, force)
		if err != nil {
			return err
		}
		if result.Status == StatusWarning {
			return c.JSON(result)
		}

		action := models.AuditActionDelete
		if force {
			action = models.AuditActionForceDelete
		}
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  record,
			EntityID:    id,
			Action:      action,
			Description: fmt.Sprintf("%s %d deleted", record, id),
		})

		if force {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(result)
	}
}
