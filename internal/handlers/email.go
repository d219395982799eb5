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

// EmailHandler triggers payment reminders.
type EmailHandler struct {
	Svc *services.InvoiceService
	Log *zap.Logger
}

func NewEmailHandler(svc *services.InvoiceService, log *zap.Logger) *EmailHandler {
	return &EmailHandler{Svc: svc, Log: log}
}

// Reminder: POST /api/email/{invoiceId} – requires a session matching the
// invoice owner. Dispatch failure is reported to the caller; invoice state
// is never mutated here.
func (h *EmailHandler) Reminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.SeeOther(w, r, "/login")
		return
	}
	invoiceID := chi.URLParam(r, "invoiceId")
	err := h.Svc.SendReminder(r.Context(), uid, invoiceID)
	if errors.Is(err, repository.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	if err != nil {
		h.Log.Warn("reminder dispatch failed", zap.String("invoice_id", invoiceID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "Failed to send Email reminder", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
