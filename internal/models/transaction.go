package models

import "time"

// TransactionKind selects the side records written together with a transaction.
type TransactionKind string

const (
	KindGeneral       TransactionKind = "general"
	KindPayroll       TransactionKind = "payroll"
	KindSupplyPayment TransactionKind = "supply_payment"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case KindGeneral, KindPayroll, KindSupplyPayment:
		return true
	}
	return false
}

// System reports whether the kind is owned by a seeded transaction type.
func (k TransactionKind) System() bool {
	return k == KindPayroll || k == KindSupplyPayment
}

// Seeded transaction type names.
const (
	TransactionTypePayroll        = "Payroll"
	TransactionTypeSupplyPayments = "Supply Payments"
)

type TransactionType struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string          `gorm:"size:250" json:"description"`
	Kind        TransactionKind `gorm:"size:20;index;not null;default:general" json:"kind"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Transaction - ledger entry against a counterparty relationship. Never updated.
type Transaction struct {
	ID                uint            `gorm:"primaryKey"`
	TransactionTypeID uint            `gorm:"index;not null"`
	TransactionType   TransactionType `gorm:"foreignKey:TransactionTypeID"`
	RelationshipID    uint            `gorm:"index;not null"`
	Relationship      Relationship    `gorm:"foreignKey:RelationshipID"`
	Amount            float64         `gorm:"not null"`
	Date              time.Time       `gorm:"index;not null"`
	Description       string          `gorm:"size:250"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
