package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/utils"
)

func (e *testEnv) tokenForUser(t *testing.T, userID string) string {
	t.Helper()
	var user models.User
	if err := e.db.First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	token, _, err := utils.GenerateTokens(&user, e.cfg)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func TestDoctorDashboard(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, patientToken := env.createPatient(t, "pat@example.com")
	doctorToken := env.tokenForUser(t, doctor.UserID)

	env.request(t, http.MethodPost, "/api/v1/appointments/book", patientToken, gin.H{
		"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00",
	})

	w := env.request(t, http.MethodGet, "/api/v1/doctor/dashboard", doctorToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	stats := data["stats"].([]interface{})
	if len(stats) != 1 {
		t.Fatalf("stats rows = %d, want 1", len(stats))
	}
	row := stats[0].(map[string]interface{})
	if row["status"] != "pending" || row["count"] != float64(1) {
		t.Errorf("unexpected stats row: %v", row)
	}
	if recent := data["recentAppointments"].([]interface{}); len(recent) != 1 {
		t.Errorf("recentAppointments = %d, want 1", len(recent))
	}
}

func TestAdminDashboard(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createApprovedDoctor(t)
	_, patientToken := env.createPatient(t, "pat@example.com")

	admin := &models.User{Name: "Ada Admin", Email: "ada@example.com", IsAdmin: true, IsActive: true}
	if err := admin.SetPassword("secret123"); err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := env.db.Create(admin).Error; err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}
	adminToken := env.tokenForUser(t, admin.ID)

	env.request(t, http.MethodPost, "/api/v1/appointments/book", patientToken, gin.H{
		"doctorId": doctor.ID, "date": "2024-06-01", "time": "10:00",
	})

	w := env.request(t, http.MethodGet, "/api/v1/admin/dashboard", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", w.Code, w.Body.String())
	}
	data := decodeBody(t, w)["data"].(map[string]interface{})
	if data["totalUsers"] != float64(3) {
		t.Errorf("totalUsers = %v, want 3", data["totalUsers"])
	}
	if data["totalDoctors"] != float64(1) {
		t.Errorf("totalDoctors = %v, want 1", data["totalDoctors"])
	}
	if data["totalAppointments"] != float64(1) {
		t.Errorf("totalAppointments = %v, want 1", data["totalAppointments"])
	}
	if data["pendingDoctors"] != float64(0) {
		t.Errorf("pendingDoctors = %v, want 0", data["pendingDoctors"])
	}
}
