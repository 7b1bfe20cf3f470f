package testutil

import (
	"testing"
	"time"

	"bookkeeping-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SeedEntity(tb testing.TB, db *gorm.DB, name string) *models.Entity {
	tb.Helper()
	e := &models.Entity{
		Name:  name,
		Email: uuid.NewString() + "@example.com",
		Phone: "555-0100",
	}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed entity: %v", err)
	}
	return e
}

func RelationshipType(tb testing.TB, db *gorm.DB, name string) *models.RelationshipType {
	tb.Helper()
	var rt models.RelationshipType
	if err := db.Where("name = ?", name).First(&rt).Error; err != nil {
		tb.Fatalf("relationship type %q: %v", name, err)
	}
	return &rt
}

func SeedRelationshipType(tb testing.TB, db *gorm.DB, name string) *models.RelationshipType {
	tb.Helper()
	rt := &models.RelationshipType{Name: name}
	if err := db.Create(rt).Error; err != nil {
		tb.Fatalf("seed relationship type: %v", err)
	}
	return rt
}

// SeedRelationship gives the entity the role named typeName.
func SeedRelationship(tb testing.TB, db *gorm.DB, entityID uint, typeName string) *models.Relationship {
	tb.Helper()
	rt := RelationshipType(tb, db, typeName)
	rel := &models.Relationship{EntityID: entityID, RelationshipTypeID: rt.ID}
	if err := db.Create(rel).Error; err != nil {
		tb.Fatalf("seed relationship: %v", err)
	}
	return rel
}

// SeedEmployee creates an entity holding the Employee role.
func SeedEmployee(tb testing.TB, db *gorm.DB, name string) *models.Relationship {
	tb.Helper()
	e := SeedEntity(tb, db, name)
	return SeedRelationship(tb, db, e.ID, models.RelationshipEmployee)
}

// SeedSupplier creates an entity holding the Supplier role.
func SeedSupplier(tb testing.TB, db *gorm.DB, name string) *models.Relationship {
	tb.Helper()
	e := SeedEntity(tb, db, name)
	return SeedRelationship(tb, db, e.ID, models.RelationshipSupplier)
}

func WorkType(tb testing.TB, db *gorm.DB, name string) *models.WorkType {
	tb.Helper()
	var wt models.WorkType
	if err := db.Where("name = ?", name).First(&wt).Error; err != nil {
		tb.Fatalf("work type %q: %v", name, err)
	}
	return &wt
}

func TransactionType(tb testing.TB, db *gorm.DB, name string) *models.TransactionType {
	tb.Helper()
	var tt models.TransactionType
	if err := db.Where("name = ?", name).First(&tt).Error; err != nil {
		tb.Fatalf("transaction type %q: %v", name, err)
	}
	return &tt
}

func SeedTransactionType(tb testing.TB, db *gorm.DB, name string) *models.TransactionType {
	tb.Helper()
	tt := &models.TransactionType{Name: name, Kind: models.KindGeneral}
	if err := db.Create(tt).Error; err != nil {
		tb.Fatalf("seed transaction type: %v", err)
	}
	return tt
}

func SeedTransaction(tb testing.TB, db *gorm.DB, typeID, relationshipID uint, amount float64, date time.Time) *models.Transaction {
	tb.Helper()
	txn := &models.Transaction{
		TransactionTypeID: typeID,
		RelationshipID:    relationshipID,
		Amount:            amount,
		Date:              models.Day(date),
	}
	if err := db.Create(txn).Error; err != nil {
		tb.Fatalf("seed transaction: %v", err)
	}
	return txn
}

// SeedWorkLog writes an unpaid log priced at the work type's current rate.
func SeedWorkLog(tb testing.TB, db *gorm.DB, relationshipID uint, wt *models.WorkType, units float64) *models.WorkLog {
	tb.Helper()
	today := models.Today()
	wl := &models.WorkLog{
		StartDate:      today,
		EndDate:        today,
		WorkTypeID:     wt.ID,
		RelationshipID: relationshipID,
		WorkUnits:      units,
		Rate:           wt.Rate,
		DuePayment:     units * wt.Rate,
	}
	if err := db.Create(wl).Error; err != nil {
		tb.Fatalf("seed work log: %v", err)
	}
	return wl
}

func SeedSupplyType(tb testing.TB, db *gorm.DB, name string, parentID *uint) *models.SupplyType {
	tb.Helper()
	st := &models.SupplyType{Name: name, ParentID: parentID}
	if err := db.Create(st).Error; err != nil {
		tb.Fatalf("seed supply type: %v", err)
	}
	return st
}

// SeedSupplyLog writes an unpaid supply purchase.
func SeedSupplyLog(tb testing.TB, db *gorm.DB, supplierID, supplyTypeID uint, unitPrice, units float64) *models.SupplyLog {
	tb.Helper()
	sl := &models.SupplyLog{
		Date:         models.Today(),
		SupplierID:   supplierID,
		SupplyTypeID: supplyTypeID,
		UnitPrice:    unitPrice,
		Units:        units,
		Amount:       unitPrice * units,
	}
	if err := db.Create(sl).Error; err != nil {
		tb.Fatalf("seed supply log: %v", err)
	}
	return sl
}

func Count(tb testing.TB, db *gorm.DB, model any, query string, args ...any) int64 {
	tb.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}
