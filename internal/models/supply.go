package models

import "time"

// SupplyType - node of the supply category hierarchy, parent kept by id
type SupplyType struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Name        string      `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string      `gorm:"size:200" json:"description"`
	ParentID    *uint       `gorm:"index" json:"parent_id"`
	Parent      *SupplyType `gorm:"foreignKey:ParentID" json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SupplyLog - purchase of a supply from a supplier relationship
type SupplyLog struct {
	ID           uint           `gorm:"primaryKey"`
	Date         time.Time      `gorm:"index;not null"`
	SupplierID   uint           `gorm:"index;not null"`
	Supplier     Relationship   `gorm:"foreignKey:SupplierID"`
	SupplyTypeID uint           `gorm:"index;not null"`
	SupplyType   SupplyType     `gorm:"foreignKey:SupplyTypeID"`
	UnitPrice    float64        `gorm:"not null"`
	Units        float64        `gorm:"not null"`
	Amount       float64        `gorm:"not null"` // unit_price * units
	Description  string         `gorm:"type:text"`
	PaymentID    *uint          `gorm:"index"`
	Payment      *SupplyPayment `gorm:"foreignKey:PaymentID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SupplyPayment - ties one transaction to the supply logs it paid
type SupplyPayment struct {
	ID            uint        `gorm:"primaryKey"`
	TransactionID uint        `gorm:"uniqueIndex;not null"`
	Transaction   Transaction `gorm:"foreignKey:TransactionID"`
	SupplyLogs    []SupplyLog `gorm:"foreignKey:PaymentID"`
	CreatedAt     time.Time
}
