package models

import "time"

// Entity - a person or organization known to the business
type Entity struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Email         string         `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Phone         string         `gorm:"size:20;not null" json:"phone"`
	Address       string         `gorm:"size:200" json:"address"`
	Relationships []Relationship `gorm:"foreignKey:EntityID" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// RelationshipType - a role an entity can hold (Employee, Customer, Supplier, ...)
type RelationshipType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:250" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Seeded relationship type names looked up by the payroll and supply flows.
const (
	RelationshipEmployee = "Employee"
	RelationshipCustomer = "Customer"
	RelationshipSupplier = "Supplier"
)

// Relationship - one role held by one entity
type Relationship struct {
	ID                 uint             `gorm:"primaryKey"`
	EntityID           uint             `gorm:"index;not null"`
	Entity             Entity           `gorm:"foreignKey:EntityID"`
	RelationshipTypeID uint             `gorm:"index;not null"`
	RelationshipType   RelationshipType `gorm:"foreignKey:RelationshipTypeID"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
