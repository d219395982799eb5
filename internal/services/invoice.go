// Package services holds the invoice lifecycle orchestrator. Every operation
// takes the acting user's id explicitly so the flow is testable without a
// request context, and authorization failures surface as the repository's
// ErrNotFound so another tenant's invoice is indistinguishable from a
// missing one.
package services

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/scopedno/energidesk/internal/mail"
	"github.com/scopedno/energidesk/internal/models"
	"github.com/scopedno/energidesk/internal/repository"
	"github.com/scopedno/energidesk/internal/validation"
)

type InvoiceService struct {
	repo   repository.InvoiceRepository
	mailer mail.Dispatcher
	log    *zap.Logger
}

func NewInvoiceService(repo repository.InvoiceRepository, mailer mail.Dispatcher, log *zap.Logger) *InvoiceService {
	return &InvoiceService{repo: repo, mailer: mailer, log: log}
}

// Result reports the two independent outcomes of create/edit: the committed
// invoice and, separately, whether its notification went out. A failed email
// never rolls back or masks a committed write.
type Result struct {
	Invoice         *models.Invoice
	NotificationErr error
}

// Create validates the raw form, persists invoice and items transactionally,
// then dispatches the creation notice strictly after commit.
func (s *InvoiceService) Create(ctx context.Context, userID uint, form url.Values) (*Result, validation.Violations, error) {
	sub, violations := validation.ParseInvoiceForm(form)
	if !violations.Empty() {
		return nil, violations, nil
	}
	inv := fromSubmission(sub)
	inv.UserID = userID
	inv.Status = models.StatusPending
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, nil, err
	}
	res := &Result{Invoice: inv}
	if err := s.mailer.SendInvoiceNotice(ctx, inv); err != nil {
		s.log.Warn("invoice created but notification failed",
			zap.String("invoice_id", inv.ID), zap.Error(err))
		res.NotificationErr = err
	}
	return res, nil, nil
}

// Edit validates, replaces the invoice fields and full item set owner-scoped
// and transactionally, then re-dispatches the notification.
func (s *InvoiceService) Edit(ctx context.Context, userID uint, invoiceID string, form url.Values) (*Result, validation.Violations, error) {
	sub, violations := validation.ParseInvoiceForm(form)
	if !violations.Empty() {
		return nil, violations, nil
	}
	inv := fromSubmission(sub)
	inv.ID = invoiceID
	inv.UserID = userID
	if err := s.repo.Update(ctx, userID, inv); err != nil {
		return nil, nil, err
	}
	updated, err := s.repo.GetOwned(ctx, userID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	res := &Result{Invoice: updated}
	if err := s.mailer.SendInvoiceNotice(ctx, updated); err != nil {
		s.log.Warn("invoice updated but notification failed",
			zap.String("invoice_id", invoiceID), zap.Error(err))
		res.NotificationErr = err
	}
	return res, nil, nil
}

func (s *InvoiceService) Delete(ctx context.Context, userID uint, invoiceID string) error {
	return s.repo.Delete(ctx, userID, invoiceID)
}

// MarkPaid transitions PENDING -> PAID. Re-invoking on a PAID invoice is a
// no-op; there is no reverse transition.
func (s *InvoiceService) MarkPaid(ctx context.Context, userID uint, invoiceID string) (*models.Invoice, error) {
	return s.repo.SetStatus(ctx, userID, invoiceID, models.StatusPaid)
}

// SendReminder dispatches the reminder template using live invoice data.
// Invoice state is never mutated; the send outcome is the whole result.
func (s *InvoiceService) SendReminder(ctx context.Context, userID uint, invoiceID string) error {
	inv, err := s.repo.GetOwned(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	return s.mailer.SendReminder(ctx, inv)
}

func (s *InvoiceService) List(ctx context.Context, userID uint) ([]models.Invoice, error) {
	return s.repo.List(ctx, userID)
}

// fromSubmission maps a validated submission onto the model. Sender fields
// come from the submission itself, not the user profile, so the snapshot
// stays stable over later profile edits.
func fromSubmission(sub validation.InvoiceSubmission) *models.Invoice {
	inv := &models.Invoice{
		InvoiceNumber:     sub.InvoiceNumber,
		InvoiceName:       sub.InvoiceName,
		Currency:          sub.Currency,
		Date:              sub.Date,
		DueDate:           sub.DueDate,
		FromCompany:       sub.FromCompany,
		FromAccountNumber: sub.FromAccountNumber,
		FromAddress:       sub.FromAddress,
		FromEmail:         sub.FromEmail,
		FromName:          sub.FromName,
		ClientName:        sub.ClientName,
		ClientEmail:       sub.ClientEmail,
		ClientAddress:     sub.ClientAddress,
		Total:             sub.Total,
		Vat:               sub.Vat,
		TotalInclVat:      sub.TotalInclVat,
		Note:              sub.Note,
	}
	for _, it := range sub.Items {
		inv.Items = append(inv.Items, models.InvoiceItem{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
		})
	}
	return inv
}
