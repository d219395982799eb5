package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scopedno/energidesk/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Invoice{}, &models.InvoiceItem{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func sampleInvoice(items ...models.InvoiceItem) *models.Invoice {
	return &models.Invoice{
		InvoiceNumber: 7,
		InvoiceName:   "Energikartlegging",
		Currency:      models.CurrencyNOK,
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		FromCompany:   "Scoped Energi AS",
		FromEmail:     "faktura@scoped.no",
		FromName:      "Kari Nordmann",
		ClientName:    "Byggdrift AS",
		ClientEmail:   "post@byggdrift.no",
		Total:         1000,
		Vat:           250,
		TotalInclVat:  1250,
		Status:        models.StatusPending,
		Items:         items,
	}
}

func TestCreateAndReadBackItems(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.no")
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := sampleInvoice(
		models.InvoiceItem{Description: "Consulting", Quantity: 10, Rate: 100},
		models.InvoiceItem{Description: "Befaring", Quantity: 2, Rate: 500},
		models.InvoiceItem{Description: "Rapport", Quantity: 1, Rate: 2500},
	)
	inv.UserID = user.ID
	require.NoError(t, repo.Create(ctx, inv))
	require.NotEmpty(t, inv.ID)

	got, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	byDesc := map[string]models.InvoiceItem{}
	for _, it := range got.Items {
		byDesc[it.Description] = it
	}
	require.Contains(t, byDesc, "Consulting")
	assert.Equal(t, 10, byDesc["Consulting"].Quantity)
	assert.Equal(t, 100.0, byDesc["Consulting"].Rate)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestDeleteRemovesInvoiceAndItems(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.no")
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := sampleInvoice(
		models.InvoiceItem{Description: "A", Quantity: 1, Rate: 1},
		models.InvoiceItem{Description: "B", Quantity: 1, Rate: 1},
		models.InvoiceItem{Description: "C", Quantity: 1, Rate: 1},
	)
	inv.UserID = user.ID
	require.NoError(t, repo.Create(ctx, inv))

	require.NoError(t, repo.Delete(ctx, user.ID, inv.ID))

	_, err := repo.Get(ctx, inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var itemCount int64
	db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&itemCount)
	assert.Zero(t, itemCount, "items must not be orphaned")
}

func TestCrossTenantOperationsReturnNotFound(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.no")
	other := seedUser(t, db, "other@test.no")
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := sampleInvoice(models.InvoiceItem{Description: "A", Quantity: 1, Rate: 1})
	inv.UserID = owner.ID
	require.NoError(t, repo.Create(ctx, inv))

	_, err := repo.GetOwned(ctx, other.ID, inv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	edit := sampleInvoice(models.InvoiceItem{Description: "X", Quantity: 1, Rate: 1})
	edit.ID = inv.ID
	assert.ErrorIs(t, repo.Update(ctx, other.ID, edit), ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, other.ID, inv.ID), ErrNotFound)

	_, err = repo.SetStatus(ctx, other.ID, inv.ID, models.StatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner still sees an untouched invoice.
	got, err := repo.GetOwned(ctx, owner.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, "A", got.Items[0].Description)
}

func TestSetStatusIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.no")
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := sampleInvoice(models.InvoiceItem{Description: "A", Quantity: 1, Rate: 1})
	inv.UserID = user.ID
	require.NoError(t, repo.Create(ctx, inv))

	first, err := repo.SetStatus(ctx, user.ID, inv.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, first.Status)

	second, err := repo.SetStatus(ctx, user.ID, inv.ID, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, second.Status)
}

func TestUpdateReplacesItemSetByDiff(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.no")
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := sampleInvoice(
		models.InvoiceItem{Description: "Keep", Quantity: 1, Rate: 100},
		models.InvoiceItem{Description: "Drop", Quantity: 2, Rate: 200},
	)
	inv.UserID = user.ID
	require.NoError(t, repo.Create(ctx, inv))
	keepID := inv.Items[0].ID

	// Edit: keep one row (updated), drop one, add a new one.
	edit := sampleInvoice(
		models.InvoiceItem{ID: keepID, Description: "Keep v2", Quantity: 3, Rate: 150},
		models.InvoiceItem{Description: "New", Quantity: 5, Rate: 50},
	)
	edit.ID = inv.ID
	require.NoError(t, repo.Update(ctx, user.ID, edit))

	got, err := repo.GetOwned(ctx, user.ID, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)

	byDesc := map[string]models.InvoiceItem{}
	for _, it := range got.Items {
		byDesc[it.Description] = it
	}
	require.Contains(t, byDesc, "Keep v2")
	require.Contains(t, byDesc, "New")
	assert.Equal(t, keepID, byDesc["Keep v2"].ID, "matched row updated in place")
	assert.Equal(t, 3, byDesc["Keep v2"].Quantity)
	assert.NotEmpty(t, byDesc["New"].ID)
}

func TestUpdateShrinksItemSet(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.no")
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	inv := sampleInvoice(
		models.InvoiceItem{Description: "A", Quantity: 1, Rate: 1},
		models.InvoiceItem{Description: "B", Quantity: 1, Rate: 1},
		models.InvoiceItem{Description: "C", Quantity: 1, Rate: 1},
	)
	inv.UserID = user.ID
	require.NoError(t, repo.Create(ctx, inv))

	edit := sampleInvoice(models.InvoiceItem{ID: inv.Items[1].ID, Description: "B only", Quantity: 9, Rate: 2})
	edit.ID = inv.ID
	require.NoError(t, repo.Update(ctx, user.ID, edit))

	got, err := repo.GetOwned(ctx, user.ID, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "B only", got.Items[0].Description)

	var itemCount int64
	db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).Count(&itemCount)
	assert.EqualValues(t, 1, itemCount)
}
