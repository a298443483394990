package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/config"
	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/routes"
	"doctor-appointment-server/internal/utils"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		Environment:               "development",
		AppName:                   "Doctor Appointment Platform",
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}

	router := gin.New()
	routes.SetupRoutes(router, db, cfg, zap.NewNop())

	return &testEnv{router: router, db: db, cfg: cfg}
}

// createPatient inserts a user and returns it with a valid access token.
func (e *testEnv) createPatient(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := &models.User{Name: "Pat Patient", Email: email, IsActive: true}
	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	token, _, err := utils.GenerateTokens(user, e.cfg)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

// createApprovedDoctor inserts a doctor user plus an approved profile.
func (e *testEnv) createApprovedDoctor(t *testing.T) *models.Doctor {
	t.Helper()
	user := &models.User{Name: "Dana Doctor", Email: "dana@example.com", IsDoctor: true, IsActive: true}
	if err := user.SetPassword("secret123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create doctor user: %v", err)
	}
	doctor := &models.Doctor{
		UserID:         user.ID,
		FirstName:      "Dana",
		LastName:       "Doctor",
		Phone:          "555-0100",
		Email:          user.Email,
		Specialization: "Cardiology",
		Experience:     8,
		Fees:           150,
		Status:         models.DoctorApproved,
		Timings:        models.Timings{Start: "09:00", End: "17:00"},
		IsActive:       true,
	}
	if err := e.db.Create(doctor).Error; err != nil {
		t.Fatalf("failed to create doctor profile: %v", err)
	}
	return doctor
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestBookAppointment(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, token := env.createPatient(t, "pat@example.com")

	w := env.request(t, http.MethodPost, "/api/v1/appointments/book", token, gin.H{
		"doctorId": doctor.ID,
		"date":     "2024-06-01",
		"time":     "10:00",
		"symptoms": "headache",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	data := body["data"].(map[string]interface{})
	if data["status"] != "pending" {
		t.Errorf("appointment status = %v, want pending", data["status"])
	}
	if data["fees"] != float64(150) {
		t.Errorf("fees = %v, want 150", data["fees"])
	}
}

func TestBookAppointment_SlotTaken(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, token1 := env.createPatient(t, "pat1@example.com")
	_, token2 := env.createPatient(t, "pat2@example.com")

	slot := gin.H{"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00"}

	if w := env.request(t, http.MethodPost, "/api/v1/appointments/book", token1, slot); w.Code != http.StatusCreated {
		t.Fatalf("first booking: status = %d; body: %s", w.Code, w.Body.String())
	}

	w := env.request(t, http.MethodPost, "/api/v1/appointments/book", token2, slot)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second booking: status = %d, want 400; body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["message"] != "Appointment slot not available" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestBookAppointment_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)

	w := env.request(t, http.MethodPost, "/api/v1/appointments/book", "", gin.H{
		"doctorId": doctor.ID,
		"date":     "2024-06-01",
		"time":     "10:00",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestCheckAvailability(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, token := env.createPatient(t, "pat@example.com")

	slot := gin.H{"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00"}

	w := env.request(t, http.MethodPost, "/api/v1/appointments/check-availability", token, slot)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["data"].(map[string]interface{})["isAvailable"] != true {
		t.Errorf("expected slot to be available: %s", w.Body.String())
	}

	env.request(t, http.MethodPost, "/api/v1/appointments/book", token, slot)

	w = env.request(t, http.MethodPost, "/api/v1/appointments/check-availability", token, slot)
	body = decodeBody(t, w)
	if body["data"].(map[string]interface{})["isAvailable"] != false {
		t.Errorf("expected slot to be taken: %s", w.Body.String())
	}
	if body["message"] != "Slot not available" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestCancelAppointment_EmptyBody(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, token := env.createPatient(t, "pat@example.com")

	w := env.request(t, http.MethodPost, "/api/v1/appointments/book", token, gin.H{
		"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00",
	})
	data := decodeBody(t, w)["data"].(map[string]interface{})
	id := data["id"].(string)

	// Cancel with no request body at all
	w = env.request(t, http.MethodPatch, "/api/v1/appointments/"+id+"/cancel", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	cancelled := decodeBody(t, w)["data"].(map[string]interface{})
	if cancelled["status"] != "cancelled" {
		t.Errorf("status = %v, want cancelled", cancelled["status"])
	}
}

func TestCancelAppointment_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, token := env.createPatient(t, "pat@example.com")

	w := env.request(t, http.MethodPost, "/api/v1/appointments/book", token, gin.H{
		"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00",
	})
	id := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	// Garbage JSON is still rejected; only a fully empty body is tolerated
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/cancel",
		strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
	}
}

func TestGetUserAppointments(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, token := env.createPatient(t, "pat@example.com")
	_, otherToken := env.createPatient(t, "other@example.com")

	env.request(t, http.MethodPost, "/api/v1/appointments/book", token, gin.H{
		"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00",
	})
	env.request(t, http.MethodPost, "/api/v1/appointments/book", otherToken, gin.H{
		"doctorId": doctor.ID, "date": "2024-06-01", "time": "11:00",
	})

	w := env.request(t, http.MethodGet, "/api/v1/appointments/user", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	appointments := data["appointments"].([]interface{})
	if len(appointments) != 1 {
		t.Fatalf("appointments = %d, want 1 (own only)", len(appointments))
	}
	if data["total"] != float64(1) {
		t.Errorf("total = %v, want 1", data["total"])
	}
}

func TestRescheduleAppointment(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, token := env.createPatient(t, "pat@example.com")

	w := env.request(t, http.MethodPost, "/api/v1/appointments/book", token, gin.H{
		"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00",
	})
	id := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = env.request(t, http.MethodPatch, "/api/v1/appointments/"+id+"/reschedule", token, gin.H{
		"date": "2024-06-02", "time": "11:30",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["date"] != "2024-06-02" || data["time"] != "11:30" {
		t.Errorf("rescheduled to %v %v", data["date"], data["time"])
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/v1/user/register", "", gin.H{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: status = %d; body: %s", w.Code, w.Body.String())
	}

	// Duplicate registration is rejected
	w = env.request(t, http.MethodPost, "/api/v1/user/register", "", gin.H{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: status = %d, want 400", w.Code)
	}

	w = env.request(t, http.MethodPost, "/api/v1/user/login", "", gin.H{
		"email":    "new@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d; body: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["accessToken"] == "" || data["refreshToken"] == "" {
		t.Error("expected token pair in login response")
	}

	w = env.request(t, http.MethodPost, "/api/v1/user/login", "", gin.H{
		"email":    "new@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: status = %d, want 401", w.Code)
	}
}

func TestDoctorRoutes_RequireDoctorRole(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createPatient(t, "pat@example.com")

	w := env.request(t, http.MethodGet, "/api/v1/doctor/profile", token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403; body: %s", w.Code, w.Body.String())
	}
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createPatient(t, "pat@example.com")

	w := env.request(t, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403; body: %s", w.Code, w.Body.String())
	}
}
