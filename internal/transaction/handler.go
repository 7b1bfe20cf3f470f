package transaction

import (
	"fmt"

	"bookkeeping-backend/internal/audit"
	"bookkeeping-backend/internal/httpx"
	"bookkeeping-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTransactionRequest struct {
	TransactionTypeID uint    `json:"transaction_type_id" form:"transaction_type_id" validate:"required"`
	RelationshipID    uint    `json:"relationship_id" form:"relationship_id" validate:"required"`
	Amount            float64 `json:"amount" form:"amount" validate:"gte=0"`
	Date              string  `json:"date" form:"date"` // YYYY-MM-DD, today when empty
	Description       string  `json:"description" form:"description" validate:"max=250"`
	WorkLogIDs        []uint  `json:"work_log_ids" form:"work_log_ids"`
	SupplyLogIDs      []uint  `json:"supply_log_ids" form:"supply_log_ids"`
}

type TransactionTypeResponse struct {
	ID          uint                   `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Kind        models.TransactionKind `json:"kind"`
}

type TransactionResponse struct {
	ID                uint                   `json:"id"`
	TransactionTypeID uint                   `json:"transaction_type_id"`
	TransactionType   string                 `json:"transaction_type"`
	Kind              models.TransactionKind `json:"kind"`
	RelationshipID    uint                   `json:"relationship_id"`
	Counterparty      string                 `json:"counterparty"`
	Amount            float64                `json:"amount"`
	Date              string                 `json:"date"`
	Description       string                 `json:"description"`
}

func toTransactionTypeResponse(t *models.TransactionType) TransactionTypeResponse {
	return TransactionTypeResponse{ID: t.ID, Name: t.Name, Description: t.Description, Kind: t.Kind}
}

// ToResponse renders a transaction loaded with its type and counterparty.
func ToResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                t.ID,
		TransactionTypeID: t.TransactionTypeID,
		TransactionType:   t.TransactionType.Name,
		Kind:              t.TransactionType.Kind,
		RelationshipID:    t.RelationshipID,
		Counterparty:      t.Relationship.Entity.Name,
		Amount:            t.Amount,
		Date:              httpx.FormatDay(t.Date),
		Description:       t.Description,
	}
}

// -------------------------
// Transaction Types
// -------------------------

// POST /api/transaction-types
func CreateTransactionTypeHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionTypeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		typ, err := svc.CreateTransactionType(c.UserContext(), body)
		if err != nil {
			return err
		}

		resp := toTransactionTypeResponse(typ)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "transaction_type",
			EntityID:    typ.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Transaction type created: %s", typ.Name),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/transaction-types
func ListTransactionTypesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListTransactionTypes(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]TransactionTypeResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toTransactionTypeResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// -------------------------
// Transactions
// -------------------------

// POST /api/transactions
func CreateTransactionHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		date, err := httpx.OptionalDay("date", body.Date)
		if err != nil {
			return err
		}

		txn, err := svc.CreateTransaction(c.UserContext(), Input{
			TransactionTypeID: body.TransactionTypeID,
			RelationshipID:    body.RelationshipID,
			Amount:            body.Amount,
			Date:              date,
			Description:       body.Description,
			WorkLogIDs:        body.WorkLogIDs,
			SupplyLogIDs:      body.SupplyLogIDs,
		})
		if err != nil {
			return err
		}

		resp := ToResponse(txn)
		action := models.AuditActionCreate
		switch txn.TransactionType.Kind {
		case models.KindPayroll:
			action = models.AuditActionSettle
		case models.KindSupplyPayment:
			action = models.AuditActionPay
		}
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "transaction",
			EntityID:    txn.ID,
			Action:      action,
			Description: fmt.Sprintf("%s transaction of %.2f recorded", txn.TransactionType.Name, txn.Amount),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/transactions
func ListTransactionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListTransactions(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]TransactionResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, ToResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/transactions/:id
func GetTransactionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		txn, err := svc.GetTransaction(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(ToResponse(txn))
	}
}
