package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scopedno/energidesk/internal/auth"
	"github.com/scopedno/energidesk/internal/httpx"
	"github.com/scopedno/energidesk/internal/repository"
	"github.com/scopedno/energidesk/internal/services"
)

// InvoiceHandler exposes the invoice form actions. Successful mutations
// answer with a redirect (Post/Redirect/Get); validation failures answer 400
// with the per-field report for inline re-display.
type InvoiceHandler struct {
	Svc *services.InvoiceService
	Log *zap.Logger
}

func NewInvoiceHandler(svc *services.InvoiceService, log *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc, Log: log}
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.SeeOther(w, r, "/login")
		return
	}
	invs, err := h.Svc.List(r.Context(), uid)
	if err != nil {
		h.Log.Error("list invoices", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": len(invs)})
}

// Create: POST /invoices – form action
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.SeeOther(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	res, violations, err := h.Svc.Create(r.Context(), uid, r.Form)
	if err != nil {
		h.Log.Error("create invoice", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_invoice", nil)
		return
	}
	if violations != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	// The invoice is committed even when the notice failed; the redirect
	// must not pretend otherwise.
	httpx.SeeOther(w, r, "/dashboard/invoices")
	_ = res
}

// Edit: POST /invoices/{invoiceId} – form action
func (h *InvoiceHandler) Edit(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.SeeOther(w, r, "/login")
		return
	}
	invoiceID := chi.URLParam(r, "invoiceId")
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	_, violations, err := h.Svc.Edit(r.Context(), uid, invoiceID, r.Form)
	if errors.Is(err, repository.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		h.Log.Error("edit invoice", zap.String("invoice_id", invoiceID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_invoice", nil)
		return
	}
	if violations != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", violations)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/invoices")
}

// Delete: POST /invoices/{invoiceId}/delete
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.SeeOther(w, r, "/login")
		return
	}
	invoiceID := chi.URLParam(r, "invoiceId")
	err := h.Svc.Delete(r.Context(), uid, invoiceID)
	if errors.Is(err, repository.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		h.Log.Error("delete invoice", zap.String("invoice_id", invoiceID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_invoice", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/invoices")
}

// MarkPaid: POST /invoices/{invoiceId}/paid
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.SeeOther(w, r, "/login")
		return
	}
	invoiceID := chi.URLParam(r, "invoiceId")
	_, err := h.Svc.MarkPaid(r.Context(), uid, invoiceID)
	if errors.Is(err, repository.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		h.Log.Error("mark invoice paid", zap.String("invoice_id", invoiceID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_invoice", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/invoices")
}
