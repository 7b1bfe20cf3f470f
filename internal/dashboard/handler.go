package dashboard

import (
	"bytes"
	"fmt"

	"bookkeeping-backend/internal/httpx"
	"bookkeeping-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RangeRequest struct {
	StartDate string `json:"start_date" form:"start_date" query:"start_date"`
	EndDate   string `json:"end_date" form:"end_date" query:"end_date"`
}

type TypeTotalResponse struct {
	ID    uint                   `json:"id"`
	Name  string                 `json:"name"`
	Kind  models.TransactionKind `json:"kind"`
	Total float64                `json:"total"`
	Count int64                  `json:"count"`
}

type RoleCountResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type SummaryResponse struct {
	StartDate         string              `json:"start_date"`
	EndDate           string              `json:"end_date"`
	TransactionTypes  []TypeTotalResponse `json:"transaction_types"`
	RelationshipTypes []RoleCountResponse `json:"relationship_types"`
	GrandTotal        float64             `json:"grand_total"`
}

func (req RangeRequest) toRange() (Range, error) {
	start, err := httpx.OptionalDay("start_date", req.StartDate)
	if err != nil {
		return Range{}, err
	}
	end, err := httpx.OptionalDay("end_date", req.EndDate)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: start, End: end}, nil
}

func toSummaryResponse(s *Summary) SummaryResponse {
	resp := SummaryResponse{
		StartDate:         httpx.FormatDay(s.Range.Start),
		EndDate:           httpx.FormatDay(s.Range.End),
		TransactionTypes:  make([]TypeTotalResponse, 0, len(s.TransactionTypes)),
		RelationshipTypes: make([]RoleCountResponse, 0, len(s.RelationshipTypes)),
		GrandTotal:        s.GrandTotal,
	}
	for _, tt := range s.TransactionTypes {
		resp.TransactionTypes = append(resp.TransactionTypes, TypeTotalResponse(tt))
	}
	for _, rc := range s.RelationshipTypes {
		resp.RelationshipTypes = append(resp.RelationshipTypes, RoleCountResponse(rc))
	}
	return resp
}

// GET /api/dashboard?start_date=2024-01-01&end_date=2024-01-31
// POST /api/dashboard (JSON or form body with the same fields)
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RangeRequest
		if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
			if err := httpx.Bind(c, &req); err != nil {
				return err
			}
		} else if err := c.QueryParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid query")
		}

		r, err := req.toRange()
		if err != nil {
			return err
		}

		sum, err := svc.Summary(c.UserContext(), r)
		if err != nil {
			return err
		}
		return c.JSON(toSummaryResponse(sum))
	}
}

// GET /api/dashboard/export?start_date=&end_date=
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RangeRequest
		if err := c.QueryParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid query")
		}
		r, err := req.toRange()
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := svc.ExportXLSX(c.UserContext(), r, &buf); err != nil {
			return err
		}

		name := "dashboard.xlsx"
		if !r.Start.IsZero() {
			name = fmt.Sprintf("dashboard-%s.xlsx", r.Start.Format(models.DateLayout))
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
		return c.Send(buf.Bytes())
	}
}
