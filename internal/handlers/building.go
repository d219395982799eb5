package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scopedno/energidesk/internal/auth"
	"github.com/scopedno/energidesk/internal/httpx"
	"github.com/scopedno/energidesk/internal/models"
	"github.com/scopedno/energidesk/internal/validation"
)

// BuildingHandler is plain owner-scoped CRUD; no compound pipeline here.
type BuildingHandler struct{ DB *gorm.DB }

func NewBuildingHandler(db *gorm.DB) *BuildingHandler { return &BuildingHandler{DB: db} }

func (h *BuildingHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var buildings []models.Building
	if err := h.DB.Where("user_id = ?", uid).Order("created_at desc").Find(&buildings).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_buildings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": buildings, "total": len(buildings)})
}

func (h *BuildingHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	b, v := h.parseForm(r)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	b.ID = uuid.NewString()
	b.UserID = uid
	if err := h.DB.Create(&b).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_building", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/buildings")
}

func (h *BuildingHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "buildingId")
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	var existing models.Building
	err := h.DB.Where("id = ? AND user_id = ?", id, uid).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_building", nil)
		return
	}
	b, v := h.parseForm(r)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	updates := map[string]any{
		"name": b.Name, "address": b.Address, "building_type": b.BuildingType,
		"construction_year": b.ConstructionYear, "area": b.Area, "energy_rating": b.EnergyRating,
	}
	if err := h.DB.Model(&existing).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_building", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/buildings")
}

func (h *BuildingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "buildingId")
	res := h.DB.Where("id = ? AND user_id = ?", id, uid).Delete(&models.Building{})
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_building", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard/buildings")
}

func (h *BuildingHandler) parseForm(r *http.Request) (models.Building, validation.Violations) {
	v := validation.Violations{}
	b := models.Building{
		Name:         r.Form.Get("name"),
		Address:      r.Form.Get("address"),
		BuildingType: r.Form.Get("buildingType"),
		EnergyRating: r.Form.Get("energyRating"),
	}
	validation.Required("name", b.Name, v)
	if raw := r.Form.Get("constructionYear"); raw != "" {
		b.ConstructionYear = validation.Int("constructionYear", raw, v)
	}
	if raw := r.Form.Get("area"); raw != "" {
		b.Area = validation.Float("area", raw, v)
		validation.NonNegative("area", b.Area, v)
	}
	return b, v
}
