package entity

import (
	"fmt"

	"bookkeeping-backend/internal/audit"
	"bookkeeping-backend/internal/httpx"
	"bookkeeping-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RelationshipTypeResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RelationshipResponse struct {
	ID                 uint   `json:"id"`
	EntityID           uint   `json:"entity_id"`
	EntityName         string `json:"entity_name"`
	RelationshipTypeID uint   `json:"relationship_type_id"`
	RelationshipType   string `json:"relationship_type"`
}

type RelationshipTypeEntitiesResponse struct {
	RelationshipType RelationshipTypeResponse `json:"relationship_type"`
	Entities         []EntityResponse         `json:"entities"`
}

func toRelationshipTypeResponse(rt *models.RelationshipType) RelationshipTypeResponse {
	return RelationshipTypeResponse{ID: rt.ID, Name: rt.Name, Description: rt.Description}
}

func toRelationshipResponse(rel *models.Relationship) RelationshipResponse {
	return RelationshipResponse{
		ID:                 rel.ID,
		EntityID:           rel.EntityID,
		EntityName:         rel.Entity.Name,
		RelationshipTypeID: rel.RelationshipTypeID,
		RelationshipType:   rel.RelationshipType.Name,
	}
}

func toRelationshipResponses(rows []models.Relationship) []RelationshipResponse {
	resp := make([]RelationshipResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, toRelationshipResponse(&rows[i]))
	}
	return resp
}

// -------------------------
// Relationship Types
// -------------------------

// POST /api/relationship-types
func CreateRelationshipTypeHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRelationshipTypeRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		rt, err := svc.CreateRelationshipType(c.UserContext(), body)
		if err != nil {
			return err
		}

		resp := toRelationshipTypeResponse(rt)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "relationship_type",
			EntityID:    rt.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Relationship type created: %s", rt.Name),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/relationship-types
func ListRelationshipTypesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListRelationshipTypes(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]RelationshipTypeResponse, 0, len(rows))
		for i := range rows {
			resp = append(resp, toRelationshipTypeResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/relationship-types/:id/entities
func ListEntitiesByRelationshipTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}

		rt, rows, err := svc.ListEntitiesByRelationshipType(c.UserContext(), id)
		if err != nil {
			return err
		}

		resp := RelationshipTypeEntitiesResponse{
			RelationshipType: toRelationshipTypeResponse(rt),
			Entities:         make([]EntityResponse, 0, len(rows)),
		}
		for i := range rows {
			resp.Entities = append(resp.Entities, toEntityResponse(&rows[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/relationship-types/:id/delete
func DeleteRelationshipTypeHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return deleteHandler("relationship_type", svc.DeleteRelationshipType, auditSvc, false)
}

// POST /api/relationship-types/:id/force-delete
func ForceDeleteRelationshipTypeHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return deleteHandler("relationship_type", svc.DeleteRelationshipType, auditSvc, true)
}

// -------------------------
// Relationships
// -------------------------

// POST /api/relationships
func CreateRelationshipHandler(svc *Service, auditSvc *audit.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRelationshipRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}

		rel, err := svc.CreateRelationship(c.UserContext(), body)
		if err != nil {
			return err
		}

		resp := toRelationshipResponse(rel)
		auditSvc.Record(c, audit.LogOptions{
			EntityType:  "relationship",
			EntityID:    rel.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("%s is now a %s", rel.Entity.Name, rel.RelationshipType.Name),
			After:       resp,
		})
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/relationships
func ListRelationshipsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListRelationships(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toRelationshipResponses(rows))
	}
}

// GET /api/relationships/employees, /api/relationships/suppliers
func ListByRoleHandler(svc *Service, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ListByRole(c.UserContext(), role)
		if err != nil {
			return err
		}
		return c.JSON(toRelationshipResponses(rows))
	}
}
