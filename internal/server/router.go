package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/scopedno/energidesk/internal/auth"
	"github.com/scopedno/energidesk/internal/config"
	"github.com/scopedno/energidesk/internal/handlers"
	"github.com/scopedno/energidesk/internal/httpx"
	"github.com/scopedno/energidesk/internal/mail"
	"github.com/scopedno/energidesk/internal/models"
	"github.com/scopedno/energidesk/internal/repository"
	"github.com/scopedno/energidesk/internal/services"
	"github.com/scopedno/energidesk/internal/storage"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config, log *zap.Logger) http.Handler {
	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	repo := repository.NewInvoiceRepository(db)
	mailer := mail.NewClient(cfg, log)
	invoiceSvc := services.NewInvoiceService(repo, mailer, log)

	authH := handlers.NewAuthHandler(db)
	invoiceH := handlers.NewInvoiceHandler(invoiceSvc, log)
	documentH := handlers.NewDocumentHandler(repo, log)
	emailH := handlers.NewEmailHandler(invoiceSvc, log)
	buildingH := handlers.NewBuildingHandler(db)
	projectH := handlers.NewProjectHandler(db, storage.NewS3Store(cfg), log)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(recoverer)
	r.Use(auth.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check (SELECT 1) – no detail in the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/signup", authH.Signup)
	r.Post("/login", authH.Login)
	r.Post("/logout", authH.Logout)

	// Invoice PDFs are fetched by emailed capability link, no session.
	r.Get("/api/invoice/{invoiceId}", documentH.PDF)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/onboarding", authH.Onboarding)

		r.Get("/invoices", invoiceH.List)
		r.Post("/invoices", invoiceH.Create)
		r.Post("/invoices/{invoiceId}", invoiceH.Edit)
		r.Post("/invoices/{invoiceId}/delete", invoiceH.Delete)
		r.Post("/invoices/{invoiceId}/paid", invoiceH.MarkPaid)

		r.Post("/api/email/{invoiceId}", emailH.Reminder)

		r.Get("/buildings", buildingH.List)
		r.Post("/buildings", buildingH.Create)
		r.Post("/buildings/{buildingId}", buildingH.Update)
		r.Post("/buildings/{buildingId}/delete", buildingH.Delete)

		r.Get("/projects", projectH.List)
		r.Post("/projects", projectH.Create)
		r.Post("/projects/{projectId}/status", projectH.UpdateStatus)
		r.Post("/projects/{projectId}/delete", projectH.Delete)
		r.Post("/projects/{projectId}/attachment", projectH.Attach)
	})

	return r
}

// requireAuth adapts auth.RequireAuth to chi's middleware signature.
func requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
