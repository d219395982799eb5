package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/scopedno/energidesk/internal/auth"
	"github.com/scopedno/energidesk/internal/models"
)

func setupAuthEnv(t *testing.T) (*gorm.DB, chi.Router) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	h := NewAuthHandler(db)
	r := chi.NewRouter()
	r.Use(auth.Middleware)
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/onboarding", h.Onboarding)
	return db, r
}

func postAuthForm(r chi.Router, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSignupCreatesUserAndSession(t *testing.T) {
	db, r := setupAuthEnv(t)

	rec := postAuthForm(r, "/signup", url.Values{
		"email":    {"  Kari@Scoped.NO "},
		"password": {"hunter2hunter2"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/onboarding", rec.Header().Get("Location"))
	require.NotEmpty(t, rec.Result().Cookies(), "signup must establish a session")

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "kari@scoped.no").Error)
	assert.NotEqual(t, "hunter2hunter2", user.Password, "password must be hashed")
	assert.False(t, user.Onboarded)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	db, r := setupAuthEnv(t)
	require.NoError(t, db.Create(&models.User{Email: "kari@scoped.no", Password: "x"}).Error)

	rec := postAuthForm(r, "/signup", url.Values{
		"email":    {"kari@scoped.no"},
		"password": {"hunter2hunter2"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email_taken")
}

func TestSignupRejectsShortPassword(t *testing.T) {
	_, r := setupAuthEnv(t)
	rec := postAuthForm(r, "/signup", url.Values{
		"email":    {"kari@scoped.no"},
		"password": {"short"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "length_8_32")
}

func TestLoginFlow(t *testing.T) {
	db, r := setupAuthEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Email: "kari@scoped.no", Password: string(hash), Onboarded: true}).Error)

	rec := postAuthForm(r, "/login", url.Values{
		"email":    {"kari@scoped.no"},
		"password": {"hunter2hunter2"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = postAuthForm(r, "/login", url.Values{
		"email":    {"kari@scoped.no"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_credentials")

	rec = postAuthForm(r, "/login", url.Values{
		"email":    {"nobody@scoped.no"},
		"password": {"hunter2hunter2"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown user reads like a bad password")
}

func TestLoginRedirectsToOnboardingWhenIncomplete(t *testing.T) {
	db, r := setupAuthEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{Email: "ny@scoped.no", Password: string(hash)}).Error)

	rec := postAuthForm(r, "/login", url.Values{
		"email":    {"ny@scoped.no"},
		"password": {"hunter2hunter2"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/onboarding", rec.Header().Get("Location"))
}

func TestOnboardingCompletesProfile(t *testing.T) {
	db, r := setupAuthEnv(t)
	user := models.User{Email: "kari@scoped.no", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	rec := postAuthForm(r, "/onboarding", url.Values{
		"firstName":     {"Kari"},
		"lastName":      {"Nordmann"},
		"company":       {"Scoped Energi AS"},
		"accountNumber": {"1234.56.78900"},
		"address":       {"Storgata 1, 0155 Oslo"},
	}, sessionCookie(user.ID))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	require.NoError(t, db.First(&user, user.ID).Error)
	assert.True(t, user.Onboarded)
	assert.Equal(t, "Scoped Energi AS", user.Company)
}

func TestOnboardingRequiresAllFields(t *testing.T) {
	db, r := setupAuthEnv(t)
	user := models.User{Email: "kari@scoped.no", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	rec := postAuthForm(r, "/onboarding", url.Values{
		"firstName": {"Kari"},
	}, sessionCookie(user.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "required")

	require.NoError(t, db.First(&user, user.ID).Error)
	assert.False(t, user.Onboarded)
}
