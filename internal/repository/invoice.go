package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scopedno/energidesk/internal/models"
)

// ErrNotFound covers both missing rows and rows owned by another user, so
// callers cannot distinguish "does not exist" from "not yours".
var ErrNotFound = errors.New("invoice_not_found")

// InvoiceRepository is the persistence gateway for invoices and their items.
// Every mutation is scoped by owner at the query level, not only in
// application logic.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Update(ctx context.Context, ownerID uint, inv *models.Invoice) error
	Delete(ctx context.Context, ownerID uint, invoiceID string) error
	SetStatus(ctx context.Context, ownerID uint, invoiceID, status string) (*models.Invoice, error)
	// Get is an unscoped read used by the PDF and reminder paths; callers
	// that act on behalf of a session re-check ownership themselves.
	Get(ctx context.Context, invoiceID string) (*models.Invoice, error)
	GetOwned(ctx context.Context, ownerID uint, invoiceID string) (*models.Invoice, error)
	List(ctx context.Context, ownerID uint) ([]models.Invoice, error)
}

type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Create persists the invoice and its items in one transaction; both succeed
// or neither persists. IDs are assigned here.
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	inv.ID = uuid.NewString()
	for i := range inv.Items {
		inv.Items[i].ID = uuid.NewString()
		inv.Items[i].InvoiceID = inv.ID
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := inv.Items
		inv.Items = nil
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create items: %w", err)
			}
		}
		inv.Items = items
		return nil
	})
}

// Update rewrites the invoice fields and replaces the item set by diff:
// submitted items whose ID matches a stored row are updated in place, stored
// rows absent from the submission are deleted, and items without an ID are
// inserted. The whole replace runs in one transaction so an edit can shrink
// or grow the item set safely.
func (r *GormInvoiceRepository) Update(ctx context.Context, ownerID uint, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Invoice
		err := tx.Where("id = ? AND user_id = ?", inv.ID, ownerID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load invoice: %w", err)
		}

		updates := map[string]any{
			"invoice_number":      inv.InvoiceNumber,
			"invoice_name":        inv.InvoiceName,
			"currency":            inv.Currency,
			"date":                inv.Date,
			"due_date":            inv.DueDate,
			"from_company":        inv.FromCompany,
			"from_account_number": inv.FromAccountNumber,
			"from_address":        inv.FromAddress,
			"from_email":          inv.FromEmail,
			"from_name":           inv.FromName,
			"client_name":         inv.ClientName,
			"client_email":        inv.ClientEmail,
			"client_address":      inv.ClientAddress,
			"total":               inv.Total,
			"vat":                 inv.Vat,
			"total_incl_vat":      inv.TotalInclVat,
			"note":                inv.Note,
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		var stored []models.InvoiceItem
		if err := tx.Where("invoice_id = ?", inv.ID).Find(&stored).Error; err != nil {
			return fmt.Errorf("load items: %w", err)
		}
		storedByID := make(map[string]models.InvoiceItem, len(stored))
		for _, it := range stored {
			storedByID[it.ID] = it
		}

		kept := make(map[string]bool, len(inv.Items))
		for i := range inv.Items {
			it := &inv.Items[i]
			it.InvoiceID = inv.ID
			if _, ok := storedByID[it.ID]; it.ID != "" && ok {
				kept[it.ID] = true
				if err := tx.Model(&models.InvoiceItem{}).Where("id = ?", it.ID).
					Updates(map[string]any{"description": it.Description, "quantity": it.Quantity, "rate": it.Rate}).Error; err != nil {
					return fmt.Errorf("update item: %w", err)
				}
				continue
			}
			it.ID = uuid.NewString()
			if err := tx.Create(it).Error; err != nil {
				return fmt.Errorf("insert item: %w", err)
			}
		}
		for id := range storedByID {
			if !kept[id] {
				if err := tx.Delete(&models.InvoiceItem{}, "id = ?", id).Error; err != nil {
					return fmt.Errorf("delete item: %w", err)
				}
			}
		}
		return nil
	})
}

// Delete removes items first, then the invoice; the store has no cascade.
func (r *GormInvoiceRepository) Delete(ctx context.Context, ownerID uint, invoiceID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		err := tx.Where("id = ? AND user_id = ?", invoiceID, ownerID).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load invoice: %w", err)
		}
		if err := tx.Delete(&models.InvoiceItem{}, "invoice_id = ?", invoiceID).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if err := tx.Delete(&models.Invoice{}, "id = ?", invoiceID).Error; err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
}

// SetStatus transitions the invoice status. Setting an already-held status is
// a no-op, so mark-paid is idempotent.
func (r *GormInvoiceRepository) SetStatus(ctx context.Context, ownerID uint, invoiceID, status string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND user_id = ?", invoiceID, ownerID).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load invoice: %w", err)
		}
		if inv.Status == status {
			return nil
		}
		if err := tx.Model(&inv).Update("status", status).Error; err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) Get(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", invoiceID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) GetOwned(ctx context.Context, ownerID uint, invoiceID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ? AND user_id = ?", invoiceID, ownerID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return &inv, nil
}

func (r *GormInvoiceRepository) List(ctx context.Context, ownerID uint) ([]models.Invoice, error) {
	var invs []models.Invoice
	if err := r.db.WithContext(ctx).Preload("Items").Where("user_id = ?", ownerID).Order("created_at desc").Find(&invs).Error; err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invs, nil
}
