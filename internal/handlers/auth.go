package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/scopedno/energidesk/internal/auth"
	"github.com/scopedno/energidesk/internal/httpx"
	"github.com/scopedno/energidesk/internal/models"
	"github.com/scopedno/energidesk/internal/validation"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(strings.ToLower(r.Form.Get("email")))
	password := r.Form.Get("password")
	v := validation.Violations{}
	validation.Email("email", email, v)
	if len(password) < 8 || len(password) > 32 {
		v["password"] = "length_8_32"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	var count int64
	h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		httpx.JSONError(w, http.StatusBadRequest, "email_taken", nil)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	user := models.User{Email: email, Password: string(hash)}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_user", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.SeeOther(w, r, "/onboarding")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	email := strings.TrimSpace(strings.ToLower(r.Form.Get("email")))
	password := r.Form.Get("password")
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	if !user.Onboarded {
		httpx.SeeOther(w, r, "/onboarding")
		return
	}
	httpx.SeeOther(w, r, "/dashboard")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.SeeOther(w, r, "/login")
}

// Onboarding completes the profile a fresh signup is missing. These fields
// feed the invoice form defaults, not the invoice itself; invoices snapshot
// their own sender block.
func (h *AuthHandler) Onboarding(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.SeeOther(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	v := validation.Violations{}
	firstName := r.Form.Get("firstName")
	lastName := r.Form.Get("lastName")
	company := r.Form.Get("company")
	accountNumber := r.Form.Get("accountNumber")
	address := r.Form.Get("address")
	validation.Required("firstName", firstName, v)
	validation.Required("lastName", lastName, v)
	validation.Required("company", company, v)
	validation.Required("accountNumber", accountNumber, v)
	validation.Required("address", address, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	updates := map[string]any{
		"first_name":     firstName,
		"last_name":      lastName,
		"company":        company,
		"account_number": accountNumber,
		"address":        address,
		"onboarded":      true,
	}
	if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_profile", nil)
		return
	}
	httpx.SeeOther(w, r, "/dashboard")
}
