package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/scopedno/energidesk/internal/auth"
	"github.com/scopedno/energidesk/internal/httpx"
	"github.com/scopedno/energidesk/internal/models"
	"github.com/scopedno/energidesk/internal/storage"
	"github.com/scopedno/energidesk/internal/validation"
)

const maxAttachmentSize = 5 * 1024 * 1024 // 5MB

// ProjectHandler covers energy-audit project CRUD and report uploads.
type ProjectHandler struct {
	DB    *gorm.DB
	Store storage.Uploader
	Log   *zap.Logger
}

func NewProjectHandler(db *gorm.DB, store storage.Uploader, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{DB: db, Store: store, Log: log}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var projects []models.Project
	if err := h.DB.Where("user_id = ?", uid).Order("created_at desc").Find(&projects).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_projects", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": projects, "total": len(projects)})
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	v := validation.Violations{}
	p := models.Project{
		Name:        r.Form.Get("name"),
		Description: r.Form.Get("description"),
		BuildingID:  r.Form.Get("buildingId"),
		Status:      models.ProjectPlanned,
	}
	validation.Required("name", p.Name, v)
	if raw := r.Form.Get("startDate"); raw != "" {
		p.StartDate = validation.Date("startDate", raw, v)
	}
	if p.BuildingID != "" {
		var count int64
		h.DB.Model(&models.Building{}).Where("id = ? AND user_id = ?", p.BuildingID, uid).Count(&count)
		if count == 0 {
			v["buildingId"] = "not_found"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p.ID = uuid.NewString()
	p.UserID = uid
	if err := h.DB.Create(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_project", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/projects")
}

func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "projectId")
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	status := r.Form.Get("status")
	switch status {
	case models.ProjectPlanned, models.ProjectInProgress, models.ProjectCompleted:
	default:
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"status": "invalid_status"})
		return
	}
	res := h.DB.Model(&models.Project{}).Where("id = ? AND user_id = ?", id, uid).Update("status", status)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_project", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/projects")
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "projectId")
	res := h.DB.Where("id = ? AND user_id = ?", id, uid).Delete(&models.Project{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_project", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/projects")
}

// Attach: POST /projects/{projectId}/attachment – multipart audit-report
// upload stored in the object bucket, key recorded on the project row.
func (h *ProjectHandler) Attach(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "projectId")

	var project models.Project
	err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_project", nil)
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "missing_file", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := storage.ObjectKey()
	if err := h.Store.Upload(r.Context(), key, file, contentType); err != nil {
		h.Log.Error("attachment upload failed", zap.String("project_id", id), zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
		return
	}
	if err := h.DB.Model(&project).Update("attachment_key", key).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_project", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "key": key})
}
