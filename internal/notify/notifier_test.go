package notify

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/models"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestNotify_CreatesRow(t *testing.T) {
	db := newTestDB(t)
	n := New(db, &recordingMailer{}, zap.NewNop())

	n.Notify("user-1", "appointment_request", "New Appointment Request", "hello",
		map[string]interface{}{"appointmentId": "a-1"}, "/doctor/appointments")
	n.Flush()

	var row models.Notification
	if err := db.First(&row, "user_id = ?", "user-1").Error; err != nil {
		t.Fatalf("notification row not created: %v", err)
	}
	if row.Type != "appointment_request" || row.IsRead {
		t.Errorf("unexpected row: %+v", row)
	}
	if len(row.Data) == 0 {
		t.Error("data payload not stored")
	}
}

func TestNotifyMany_CreatesOneRowPerUser(t *testing.T) {
	db := newTestDB(t)
	n := New(db, &recordingMailer{}, zap.NewNop())

	n.NotifyMany([]string{"a", "b", "c"}, "doctor_application", "New Doctor Application", "msg", nil, "/admin/doctors")
	n.Flush()

	var count int64
	db.Model(&models.Notification{}).Where("type = ?", "doctor_application").Count(&count)
	if count != 3 {
		t.Errorf("rows = %d, want 3", count)
	}
}

func TestNotifyMany_EmptyRecipientsIsNoop(t *testing.T) {
	db := newTestDB(t)
	n := New(db, &recordingMailer{}, zap.NewNop())

	n.NotifyMany(nil, "t", "title", "msg", nil, "")
	n.Flush()

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Errorf("rows = %d, want 0", count)
	}
}

func TestEmail_FailureIsSwallowed(t *testing.T) {
	db := newTestDB(t)
	mailer := &recordingMailer{fail: true}
	n := New(db, mailer, zap.NewNop())

	// Must not panic or surface anywhere
	n.SendWelcomeEmail("someone@example.com", "Someone")
	n.Flush()
}

func TestSendAppointmentConfirmation(t *testing.T) {
	db := newTestDB(t)
	mailer := &recordingMailer{}
	n := New(db, mailer, zap.NewNop())

	n.SendAppointmentConfirmation("pat@example.com", "01-06-2024", "10:00", "Dana Doctor")
	n.Flush()

	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if len(mailer.sent) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(mailer.sent))
	}
	if mailer.sent[0] != "pat@example.com|Appointment Confirmation" {
		t.Errorf("unexpected email: %q", mailer.sent[0])
	}
}
