package models

import "time"

type PayType string

const (
	PayHourly  PayType = "Hourly"
	PayDaily   PayType = "Daily"
	PayWeekly  PayType = "Weekly"
	PayMonthly PayType = "Monthly"
)

// WorkType - priced kind of work. PayType is informational only.
type WorkType struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:250" json:"description"`
	PayType     PayType   `gorm:"size:20;not null" json:"pay_type"`
	Rate        float64   `gorm:"not null;default:0" json:"rate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkLog - work done by an employee relationship
// Rate is the work type rate the log was priced with; DuePayment = WorkUnits * Rate.
type WorkLog struct {
	ID             uint         `gorm:"primaryKey"`
	StartDate      time.Time    `gorm:"not null"`
	EndDate        time.Time    `gorm:"not null"`
	WorkTypeID     uint         `gorm:"index;not null"`
	WorkType       WorkType     `gorm:"foreignKey:WorkTypeID"`
	RelationshipID uint         `gorm:"index;not null"`
	Relationship   Relationship `gorm:"foreignKey:RelationshipID"`
	WorkUnits      float64      `gorm:"not null"`
	Rate           float64      `gorm:"not null"`
	DuePayment     float64      `gorm:"not null"`
	TransactionID  *uint        `gorm:"index"`
	Transaction    *Transaction `gorm:"foreignKey:TransactionID"`
	IsPaid         bool         `gorm:"index;not null;default:false"`
	Description    string       `gorm:"size:250"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Payroll - one settled work log of a payroll transaction
type Payroll struct {
	ID            uint        `gorm:"primaryKey"`
	TransactionID uint        `gorm:"index;not null"`
	Transaction   Transaction `gorm:"foreignKey:TransactionID"`
	WorkLogID     uint        `gorm:"uniqueIndex;not null"`
	WorkLog       WorkLog     `gorm:"foreignKey:WorkLogID"`
	CreatedAt     time.Time
}
