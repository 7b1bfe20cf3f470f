package models

import "time"

type AuditAction string

const (
	AuditActionCreate      AuditAction = "create"
	AuditActionDelete      AuditAction = "delete"
	AuditActionForceDelete AuditAction = "force_delete"
	AuditActionSettle      AuditAction = "settle"
	AuditActionPay         AuditAction = "pay"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID   uint   `gorm:"index" json:"user_id"`
	UserName string `gorm:"size:100" json:"user_name"` // denormalized

	// "entity", "relationship_type", "transaction", "work_log", "supply_log", ...
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   uint   `gorm:"index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// JSON snapshots; "null" when absent
	BeforeData string `gorm:"type:text" json:"before_data"`
	AfterData  string `gorm:"type:text" json:"after_data"`
}
