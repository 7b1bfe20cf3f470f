package payroll

import (
	"fmt"

	"bookkeeping-backend/internal/audit"
	"bookkeeping-backend/internal/entity"
	"bookkeeping-backend/internal/httpx"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateWorkLogRequest struct {
	StartDate      string  `json:"start_date" form:"start_date"`
	EndDate        string  `json:"end_date" form:"end_date"`
	WorkTypeID     uint    `json:"work_type_id" form:"work_type_id" validate:"required"`
	RelationshipID uint    `json:"relationship_id" form:"relationship_id" validate:"required"`
	WorkUnits      float64 `json:"work_units" form:"work_units" validate:"gt=0"`
	Description    string  `json:"description" form:"description" validate:"max=250"`
}

type SettleRequest struct {
	RelationshipID uint   `json:"relationship_id" form:"relationship_id" validate:"required"`
	WorkLogIDs     []uint `json:"work_log_ids" form:"work_log_ids" validate:"required,min=1"`
	Description    string `json:"description" form:"description" validate:"max=250"`
}

type WorkTypeResponse struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	PayType     models.PayType `json:"pay_type"`
	Rate        float64        `json:"rate"`
}

type WorkLogResponse struct {
	ID             uint    `json:"id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	WorkTypeID     uint    `json:"work_type_id"`
	WorkType       string  `json:"work_type"`
	RelationshipID uint    `json:"relationship_id"`
	Employee       string  `json:"employee"`
	WorkUnits      float64 `json:"work_units"`
	Rate           float64 `json:"rate"`
	DuePayment     float64 `json:"due_payment"`
	IsPaid         bool    `json:"is_paid"`
	TransactionID  *uint   `json:"transaction_id"`
	Description    string  `json:"description"`
}

// UnpaidWorkLogResponse is the row shape of the unpaid picker.
type UnpaidWorkLogResponse struct {
	ID         uint    `json:"id"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	DuePayment float64 `json:"due_payment"`
}

func toWorkTypeResponse(wt *models.WorkType) WorkTypeResponse {
	return WorkTypeResponse{ID: wt.ID, Name: wt.Name, Description: wt.Description, PayType: wt.PayType, Rate: wt.Rate}
}

func toWorkLogResponse(wl *models.WorkLog) WorkLogResponse {
	return WorkLogResponse{
		ID:             wl.ID,
		StartDate:      httpx.FormatDay(wl.StartDate),
		EndDate:        httpx.FormatDay(wl.EndDate),
		WorkTypeID:     wl.WorkTypeID,
		WorkType:       wl.WorkType.Name,
		RelationshipID: wl.RelationshipID,
		Employee:       wl.Relationship.Entity.Name,
		WorkUnits:      wl.WorkUnits,
		Rate:           wl.Rate,
		DuePayment:     wl.DuePayment,
		IsPaid:         wl.IsPaid,
		TransactionID:  wl.TransactionID,
		Description:    wl.Description,
	}
}

// -------------------------
// Work Types
// -------------------------

// POST /api/work-types
func CreateWorkTypeHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWorkTypeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		wt, err := svc.CreateWorkType(c.UserContext(), body)
		if err != nil {
			return err
		}

		resp := toWorkTypeResponse(wt)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "work_type",
			EntityID:    wt.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Work type created: %s", wt.Name),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/work-types
func ListWorkTypesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListWorkTypes(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]WorkTypeResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toWorkTypeResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/work-types/:id/delete, /api/work-types/:id/force-delete
func DeleteWorkTypeHandler(svc *Service, auditSvc *audit.Service, force bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		result, err := svc.DeleteWorkType(c.UserContext(), id, force)
		if err != nil {
			return err
		}
		if result.Status == entity.StatusWarning {
			return c.JSON(result)
		}

		action := models.AuditActionDelete
		if force {
			action = models.AuditActionForceDelete
		}
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "work_type",
			EntityID:    id,
			Action:      action,
			Description: fmt.Sprintf("work type %d deleted", id),
		})

		if force {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(result)
	}
}

// -------------------------
// Work Logs
// -------------------------

// POST /api/work-logs
func CreateWorkLogHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateWorkLogRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		start, err := httpx.OptionalDay("start_date", body.StartDate)
		if err != nil {
			return err
		}
		end, err := httpx.OptionalDay("end_date", body.EndDate)
		if err != nil {
			return err
		}

		wl, err := svc.CreateWorkLog(c.UserContext(), WorkLogInput{
			StartDate:      start,
			EndDate:        end,
			WorkTypeID:     body.WorkTypeID,
			RelationshipID: body.RelationshipID,
			WorkUnits:      body.WorkUnits,
			Description:    body.Description,
		})
		if err != nil {
			return err
		}

		resp := toWorkLogResponse(wl)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "work_log",
			EntityID:    wl.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%.2f %s units logged for %s", wl.WorkUnits, wl.WorkType.Name, wl.Relationship.Entity.Name),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/work-logs
func ListWorkLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListWorkLogs(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]WorkLogResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toWorkLogResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/work-logs/unpaid/:relationship_id
func ListUnpaidWorkLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		relID, err := httpx.ParamID(c, "relationship_id")
		if err != nil {
			return err
		}

		rows, err := svc.ListUnpaidWorkLogs(c.UserContext(), relID)
		if err != nil {
			return err
		}
		resp := make([]UnpaidWorkLogResponse, 0, len(rows))
		for _, wl := range rows {
			resp = append(resp, UnpaidWorkLogResponse{
				ID:         wl.ID,
				StartDate:  httpx.FormatDay(wl.StartDate),
				EndDate:    httpx.FormatDay(wl.EndDate),
				DuePayment: wl.DuePayment,
			})
		}
		return c.JSON(resp)
	}
}

// -------------------------
// Settlement
// -------------------------

// POST /api/payrolls
func SettleHandler(svc *Service, txSvc *transaction.Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SettleRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		settled, err := svc.SettleWorkLogs(c.UserContext(), body.RelationshipID, body.WorkLogIDs, body.Description)
		if err != nil {
			return err
		}

		txn, err := txSvc.GetTransaction(c.UserContext(), settled.ID)
		if err != nil {
			return err
		}

		resp := transaction.ToResponse(txn)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "transaction",
			EntityID:    txn.ID,
			Action:      models.AuditActionSettle,
			Description: fmt.Sprintf("Payroll of %.2f settled for %d work logs", txn.Amount, len(body.WorkLogIDs)),
			After:       map[string]any{"transaction": resp, "work_log_ids": body.WorkLogIDs},
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}
