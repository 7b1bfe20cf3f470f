package supply

import (
	"fmt"

	"bookkeeping-backend/internal/audit"
	"bookkeeping-backend/internal/httpx"
	"bookkeeping-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// -------------------------
// Request/Response Types
// -------------------------

type CreateSupplyLogRequest struct {
	Date         string  `json:"date" form:"date"` // YYYY-MM-DD, today when empty
	SupplierID   uint    `json:"supplier_id" form:"supplier_id" validate:"required"`
	SupplyTypeID uint    `json:"supply_type_id" form:"supply_type_id" validate:"required"`
	UnitPrice    float64 `json:"unit_price" form:"unit_price" validate:"gte=0"`
	Units        float64 `json:"units" form:"units" validate:"gt=0"`
	Description  string  `json:"description" form:"description"`
	Paid         bool    `json:"paid" form:"paid"`
}

type SupplyTypeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

type SupplyTypeNodeResponse struct {
	ID       uint                     `json:"id"`
	Name     string                   `json:"name"`
	Children []SupplyTypeNodeResponse `json:"children"`
}

type SupplyLogResponse struct {
	ID           uint    `json:"id"`
	Date         string  `json:"date"`
	SupplierID   uint    `json:"supplier_id"`
	Supplier     string  `json:"supplier"`
	SupplyTypeID uint    `json:"supply_type_id"`
	SupplyType   string  `json:"supply_type"`
	UnitPrice    float64 `json:"unit_price"`
	Units        float64 `json:"units"`
	Amount       float64 `json:"amount"`
	Description  string  `json:"description"`
	PaymentID    *uint   `json:"payment_id"`
	Paid         bool    `json:"paid"`
}

func toSupplyTypeResponse(st *models.SupplyType) SupplyTypeResponse {
	return SupplyTypeResponse{ID: st.ID, Name: st.Name, Description: st.Description, ParentID: st.ParentID}
}

func toSupplyLogResponse(sl *models.SupplyLog) SupplyLogResponse {
	return SupplyLogResponse{
		ID:           sl.ID,
		Date:         httpx.FormatDay(sl.Date),
		SupplierID:   sl.SupplierID,
		Supplier:     sl.Supplier.Entity.Name,
		SupplyTypeID: sl.SupplyTypeID,
		SupplyType:   sl.SupplyType.Name,
		UnitPrice:    sl.UnitPrice,
		Units:        sl.Units,
		Amount:       sl.Amount,
		Description:  sl.Description,
		PaymentID:    sl.PaymentID,
		Paid:         sl.PaymentID != nil,
	}
}

// nest renders the subtree under id. seen guards against rows forming a cycle.
func nest(t *Tree, id uint, seen map[uint]bool) SupplyTypeNodeResponse {
	n, _ := t.Node(id)
	seen[id] = true
	out := SupplyTypeNodeResponse{ID: n.ID, Name: n.Name, Children: []SupplyTypeNodeResponse{}}
	for _, child := range n.Children {
		if seen[child] {
			continue
		}
		out.Children = append(out.Children, nest(t, child, seen))
	}
	return out
}

// -------------------------
// Supply Types
// -------------------------

// POST /api/supply-types
func CreateSupplyTypeHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplyTypeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		st, err := svc.CreateSupplyType(c.UserContext(), body)
		if err != nil {
			return err
		}

		resp := toSupplyTypeResponse(st)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "supply_type",
			EntityID:    st.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Supply type created: %s", st.Name),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/supply-types
func ListSupplyTypesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListSupplyTypes(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]SupplyTypeResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toSupplyTypeResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/supply-types/tree
func SupplyTypeTreeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tree, err := svc.SupplyTypeTree(c.UserContext())
		if err != nil {
			return err
		}
		seen := make(map[uint]bool, tree.Len())
		resp := make([]SupplyTypeNodeResponse, 0, len(tree.Roots()))
		for _, id := range tree.Roots() {
			resp = append(resp, nest(tree, id, seen))
		}
		return c.JSON(resp)
	}
}

// -------------------------
// Supply Logs
// -------------------------

// POST /api/supply-logs
func CreateSupplyLogHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSupplyLogRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		date, err := httpx.OptionalDay("date", body.Date)
		if err != nil {
			return err
		}

		sl, err := svc.CreateSupplyLog(c.UserContext(), SupplyLogInput{
			Date:         date,
			SupplierID:   body.SupplierID,
			SupplyTypeID: body.SupplyTypeID,
			UnitPrice:    body.UnitPrice,
			Units:        body.Units,
			Description:  body.Description,
			Paid:         body.Paid,
		})
		if err != nil {
			return err
		}

		resp := toSupplyLogResponse(sl)
		action := models.AuditActionCreate
		if body.Paid {
			action = models.AuditActionPay
		}
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "supply_log",
			EntityID:    sl.ID,
			Action:      action,
			Description: fmt.Sprintf("%s purchased from %s for %.2f", sl.SupplyType.Name, sl.Supplier.Entity.Name, sl.Amount),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/supply-logs
func ListSupplyLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListSupplyLogs(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]SupplyLogResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toSupplyLogResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/supply-logs/unpaid/:supplier_id
func ListUnpaidSupplyLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		supplierID, err := httpx.ParamID(c, "supplier_id")
		if err != nil {
			return err
		}
		rows, err := svc.ListUnpaidSupplyLogs(c.UserContext(), supplierID)
		if err != nil {
			return err
		}
		resp := make([]SupplyLogResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toSupplyLogResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}
