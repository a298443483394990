package notify

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/models"
)

// Notifier dispatches in-app notifications and emails as fire-and-forget
// background tasks. Failures are logged and never propagate to the
// transition that triggered them.
type Notifier struct {
	db     *gorm.DB
	mailer Mailer
	log    *zap.Logger
	wg     sync.WaitGroup
}

// New creates a Notifier.
func New(db *gorm.DB, mailer Mailer, log *zap.Logger) *Notifier {
	return &Notifier{db: db, mailer: mailer, log: log}
}

// Notify creates an in-app notification for one user.
func (n *Notifier) Notify(userID, ntype, title, message string, data map[string]interface{}, onClickPath string) {
	n.dispatch("notification", func() error {
		return n.db.Create(notificationRow(userID, ntype, title, message, data, onClickPath)).Error
	})
}

// NotifyMany creates the same notification for a set of users, e.g. all
// admins when a doctor application arrives.
func (n *Notifier) NotifyMany(userIDs []string, ntype, title, message string, data map[string]interface{}, onClickPath string) {
	if len(userIDs) == 0 {
		return
	}
	n.dispatch("notification", func() error {
		rows := make([]*models.Notification, 0, len(userIDs))
		for _, id := range userIDs {
			rows = append(rows, notificationRow(id, ntype, title, message, data, onClickPath))
		}
		return n.db.Create(rows).Error
	})
}

// Email delivers one email through the configured mailer.
func (n *Notifier) Email(to, subject, body string) {
	n.dispatch("email", func() error {
		return n.mailer.Send(to, subject, body)
	})
}

// SendWelcomeEmail greets a freshly registered user.
func (n *Notifier) SendWelcomeEmail(to, name string) {
	body := fmt.Sprintf(
		"<h1>Welcome %s!</h1>"+
			"<p>Thank you for registering with us.</p>"+
			"<p>Please verify your email to complete your registration.</p>", name)
	n.Email(to, "Welcome to Our Platform", body)
}

// SendAppointmentConfirmation confirms a booked slot to the patient.
func (n *Notifier) SendAppointmentConfirmation(to, date, timeOfDay, doctorName string) {
	body := fmt.Sprintf(
		"<h1>Appointment Confirmed</h1>"+
			"<p>Your appointment has been confirmed for %s at %s.</p>"+
			"<p>Doctor: %s</p>"+
			"<p>Please arrive 15 minutes early.</p>", date, timeOfDay, doctorName)
	n.Email(to, "Appointment Confirmation", body)
}

// Flush blocks until all in-flight dispatches have finished. Used by
// tests and graceful shutdown.
func (n *Notifier) Flush() {
	n.wg.Wait()
}

func (n *Notifier) dispatch(effect string, fn func() error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := fn(); err != nil {
			n.log.Warn("best-effort side effect failed",
				zap.String("effect", effect),
				zap.Error(err))
		}
	}()
}

func notificationRow(userID, ntype, title, message string, data map[string]interface{}, onClickPath string) *models.Notification {
	row := &models.Notification{
		UserID:      userID,
		Type:        ntype,
		Title:       title,
		Message:     message,
		OnClickPath: onClickPath,
	}
	if data != nil {
		if payload, err := json.Marshal(data); err == nil {
			row.Data = datatypes.JSON(payload)
		}
	}
	return row
}
