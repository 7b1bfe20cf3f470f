package server

import (
	"bookkeeping-backend/internal/audit"
	"bookkeeping-backend/internal/auth"
	"bookkeeping-backend/internal/config"
	"bookkeeping-backend/internal/dashboard"
	"bookkeeping-backend/internal/entity"
	"bookkeeping-backend/internal/logger"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/payroll"
	"bookkeeping-backend/internal/supply"
	"bookkeeping-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, log *zap.Logger) {
	auditSvc := audit.NewService(db, logger.Named(log, "audit"))
	entitySvc := entity.NewService(db, logger.Named(log, "entity"))
	txSvc := transaction.NewService(db, logger.Named(log, "transaction"))
	payrollSvc := payroll.NewService(db, logger.Named(log, "payroll"))
	supplySvc := supply.NewService(db, logger.Named(log, "supply"))
	dashboardSvc := dashboard.NewService(db, logger.Named(log, "dashboard"))

	txSvc.Register(models.KindPayroll, payroll.TransactionHandler())
	txSvc.Register(models.KindSupplyPayment, supply.TransactionHandler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg.JWTSecret))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret))
	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/auth/me", auth.MeHandler(db))

	// Admin
	adminRoutes := protected.Group("/admin", adminOnly)
	adminRoutes.Post("/users", auth.CreateUserHandler(db))
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler(auditSvc))

	// Entities
	protected.Get("/entities", entity.ListEntitiesHandler(entitySvc))
	protected.Post("/entities", entity.CreateEntityHandler(entitySvc, auditSvc))
	protected.Get("/entities/:id", entity.GetEntityInfoHandler(entitySvc))
	protected.Post("/entities/:id/delete", adminOnly, entity.DeleteEntityHandler(entitySvc, auditSvc))
	protected.Post("/entities/:id/force-delete", adminOnly, entity.ForceDeleteEntityHandler(entitySvc, auditSvc))

	// Relationship types
	protected.Get("/relationship-types", entity.ListRelationshipTypesHandler(entitySvc))
	protected.Post("/relationship-types", adminOnly, entity.CreateRelationshipTypeHandler(entitySvc, auditSvc))
	protected.Get("/relationship-types/:id/entities", entity.ListEntitiesByRelationshipTypeHandler(entitySvc))
	protected.Post("/relationship-types/:id/delete", adminOnly, entity.DeleteRelationshipTypeHandler(entitySvc, auditSvc))
	protected.Post("/relationship-types/:id/force-delete", adminOnly, entity.ForceDeleteRelationshipTypeHandler(entitySvc, auditSvc))

	// Relationships
	protected.Get("/relationships", entity.ListRelationshipsHandler(entitySvc))
	protected.Post("/relationships", entity.CreateRelationshipHandler(entitySvc, auditSvc))
	protected.Get("/relationships/employees", entity.ListByRoleHandler(entitySvc, models.RelationshipEmployee))
	protected.Get("/relationships/suppliers", entity.ListByRoleHandler(entitySvc, models.RelationshipSupplier))

	// Ledger
	protected.Get("/transaction-types", transaction.ListTransactionTypesHandler(txSvc))
	protected.Post("/transaction-types", adminOnly, transaction.CreateTransactionTypeHandler(txSvc, auditSvc))
	protected.Get("/transactions", transaction.ListTransactionsHandler(txSvc))
	protected.Post("/transactions", transaction.CreateTransactionHandler(txSvc, auditSvc))
	protected.Get("/transactions/:id", transaction.GetTransactionHandler(txSvc))

	// Payroll
	protected.Get("/work-types", payroll.ListWorkTypesHandler(payrollSvc))
	protected.Post("/work-types", adminOnly, payroll.CreateWorkTypeHandler(payrollSvc, auditSvc))
	protected.Post("/work-types/:id/delete", adminOnly, payroll.DeleteWorkTypeHandler(payrollSvc, auditSvc, false))
	protected.Post("/work-types/:id/force-delete", adminOnly, payroll.DeleteWorkTypeHandler(payrollSvc, auditSvc, true))
	protected.Get("/work-logs", payroll.ListWorkLogsHandler(payrollSvc))
	protected.Post("/work-logs", payroll.CreateWorkLogHandler(payrollSvc, auditSvc))
	protected.Get("/work-logs/unpaid/:relationship_id", payroll.ListUnpaidWorkLogsHandler(payrollSvc))
	protected.Post("/payrolls", payroll.SettleHandler(payrollSvc, txSvc, auditSvc))

	// Supplies
	protected.Get("/supply-types", supply.ListSupplyTypesHandler(supplySvc))
	protected.Post("/supply-types", adminOnly, supply.CreateSupplyTypeHandler(supplySvc, auditSvc))
	protected.Get("/supply-types/tree", supply.SupplyTypeTreeHandler(supplySvc))
	protected.Get("/supply-logs", supply.ListSupplyLogsHandler(supplySvc))
	protected.Post("/supply-logs", supply.CreateSupplyLogHandler(supplySvc, auditSvc))
	protected.Get("/supply-logs/unpaid/:supplier_id", supply.ListUnpaidSupplyLogsHandler(supplySvc))

	// Dashboard
	protected.Get("/dashboard", dashboard.SummaryHandler(dashboardSvc))
	protected.Post("/dashboard", dashboard.SummaryHandler(dashboardSvc))
	protected.Get("/dashboard/export", dashboard.ExportHandler(dashboardSvc))
}
