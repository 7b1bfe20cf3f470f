package database

import (
	"context"
	"errors"
	"fmt"

	"bookkeeping-backend/internal/models"

	"gorm.io/gorm"
)

var defaultRelationshipTypes = []models.RelationshipType{
	{Name: models.RelationshipEmployee, Description: "Person working for the business"},
	{Name: models.RelationshipCustomer, Description: "Person or organization buying products/services"},
	{Name: models.RelationshipSupplier, Description: "Entity providing goods/services to the business"},
}

var defaultWorkTypes = []models.WorkType{
	{Name: "Excavator Operator", Description: "Operates excavators", PayType: models.PayHourly, Rate: 500},
	{Name: "Labour", Description: "General plantation labour", PayType: models.PayDaily, Rate: 2000},
	{Name: "Mason", Description: "Handles construction work", PayType: models.PayDaily, Rate: 2500},
}

var defaultTransactionTypes = []models.TransactionType{
	{Name: models.TransactionTypePayroll, Description: "Payments for employee work logs", Kind: models.KindPayroll},
	{Name: models.TransactionTypeSupplyPayments, Description: "Payments for supplier done for supply log entries", Kind: models.KindSupplyPayment},
}

// Seed inserts the default relationship, work and transaction types that
// are missing by name. Running it again changes nothing.
func Seed(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := SeedRelationshipTypes(tx); err != nil {
			return err
		}
		if err := SeedWorkTypes(tx); err != nil {
			return err
		}
		return SeedTransactionTypes(tx)
	})
}

func SeedRelationshipTypes(tx *gorm.DB) error {
	for _, item := range defaultRelationshipTypes {
		row := item
		if err := tx.Where(models.RelationshipType{Name: row.Name}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed relationship type %q: %w", item.Name, err)
		}
	}
	return nil
}

func SeedWorkTypes(tx *gorm.DB) error {
	for _, item := range defaultWorkTypes {
		row := item
		if err := tx.Where(models.WorkType{Name: row.Name}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed work type %q: %w", item.Name, err)
		}
	}
	return nil
}

// SeedTransactionTypes also restores the system kind of a seeded name
// whose row was created before kinds existed.
func SeedTransactionTypes(tx *gorm.DB) error {
	for _, item := range defaultTransactionTypes {
		var existing models.TransactionType
		err := tx.Where("name = ?", item.Name).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := item
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed transaction type %q: %w", item.Name, err)
			}
		case err != nil:
			return fmt.Errorf("seed transaction type %q: %w", item.Name, err)
		case existing.Kind != item.Kind:
			if err := tx.Model(&existing).Update("kind", item.Kind).Error; err != nil {
				return fmt.Errorf("restore kind of %q: %w", item.Name, err)
			}
		}
	}
	return nil
}
