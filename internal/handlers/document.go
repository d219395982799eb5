package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scopedno/energidesk/internal/httpx"
	"github.com/scopedno/energidesk/internal/pdf"
	"github.com/scopedno/energidesk/internal/repository"
)

// DocumentHandler serves rendered invoice PDFs.
type DocumentHandler struct {
	Repo repository.InvoiceRepository
	Log  *zap.Logger
}

func NewDocumentHandler(repo repository.InvoiceRepository, log *zap.Logger) *DocumentHandler {
	return &DocumentHandler{Repo: repo, Log: log}
}

// PDF: GET /api/invoice/{invoiceId}
//
// The lookup is deliberately unscoped: the uuid in the URL is the
// capability, so the emailed link works for the client without a session.
// Only existence is checked before rendering.
func (h *DocumentHandler) PDF(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "invoiceId")
	inv, err := h.Repo.Get(r.Context(), invoiceID)
	if errors.Is(err, repository.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Faktura ble ikke funnet", nil)
		return
	}
	if err != nil {
		h.Log.Error("load invoice for pdf", zap.String("invoice_id", invoiceID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	data, err := pdf.RenderInvoice(inv)
	if err != nil {
		h.Log.Error("render invoice pdf", zap.String("invoice_id", invoiceID), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=invoice.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
