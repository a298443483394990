package booking

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"doctor-appointment-server/internal/models"
	"doctor-appointment-server/internal/notify"
)

// Service implements the appointment slot-booking core: availability
// checks, booking, cancellation, rescheduling and doctor-side status
// transitions. The single consistency guarantee it upholds is that at
// most one appointment per (doctor, date, time) is in an active status
// at any time, enforced by the unique SlotKey column rather than a
// read-then-write check.
type Service struct {
	db       *gorm.DB
	notifier *notify.Notifier
	log      *zap.Logger
}

// NewService creates a booking Service.
func NewService(db *gorm.DB, notifier *notify.Notifier, log *zap.Logger) *Service {
	return &Service{db: db, notifier: notifier, log: log}
}

// BookInput carries a booking request with raw (unnormalized) slot values.
type BookInput struct {
	DoctorID string
	Date     string
	Time     string
	Symptoms string
	Duration int
}

// IsSlotAvailable reports whether no active appointment occupies the
// given slot. excludeID, when non-empty, removes one appointment from
// consideration so a reschedule does not conflict with itself.
// Read-only; the insert-time unique constraint remains authoritative.
func (s *Service) IsSlotAvailable(doctorID, dateKey, timeKey, excludeID string) (bool, error) {
	query := s.db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ?", doctorID, dateKey, timeKey).
		Where("status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusApproved})
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// CheckAvailability normalizes a raw slot request and runs the
// availability query.
func (s *Service) CheckAvailability(doctorID, rawDate, rawTime string) (bool, error) {
	dateKey, timeKey, err := NormalizeSlot(rawDate, rawTime)
	if err != nil {
		return false, err
	}
	return s.IsSlotAvailable(doctorID, dateKey, timeKey, "")
}

// Book creates a pending appointment for the patient with the doctor's
// current fee snapshotted onto the record. The doctor must be approved
// and the slot free. Notification to the doctor and confirmation email
// to the patient are fired best-effort after the insert commits.
func (s *Service) Book(patientID string, in BookInput) (*models.Appointment, error) {
	dateKey, timeKey, err := NormalizeSlot(in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	var doctor models.Doctor
	if err := s.db.First(&doctor, "id = ?", in.DoctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundErr("Doctor not found or not approved")
		}
		return nil, err
	}
	if doctor.Status != models.DoctorApproved {
		return nil, NotFoundErr("Doctor not found or not approved")
	}

	// Friendly pre-check; the unique index below is the real guard.
	available, err := s.IsSlotAvailable(doctor.ID, dateKey, timeKey, "")
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, Conflict("Appointment slot not available")
	}

	duration := in.Duration
	if duration <= 0 {
		duration = 30
	}

	slotKey := SlotKey(doctor.ID, dateKey, timeKey)
	appointment := models.Appointment{
		UserID:   patientID,
		DoctorID: doctor.ID,
		Date:     dateKey,
		Time:     timeKey,
		Duration: duration,
		Status:   models.StatusPending,
		Symptoms: in.Symptoms,
		Fees:     doctor.Fees,
		SlotKey:  &slotKey,
	}

	if err := s.db.Create(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race for the slot between check and insert.
			return nil, Conflict("Appointment slot not available")
		}
		return nil, err
	}

	var patient models.User
	patientName := ""
	if err := s.db.First(&patient, "id = ?", patientID).Error; err == nil {
		patientName = patient.Name
	} else {
		s.log.Warn("failed to load patient for booking side effects",
			zap.String("patientId", patientID), zap.Error(err))
	}

	s.notifier.Notify(doctor.UserID, "appointment_request",
		"New Appointment Request",
		fmt.Sprintf("You have a new appointment request for %s at %s", DisplayDate(dateKey), timeKey),
		map[string]interface{}{
			"appointmentId": appointment.ID,
			"patientName":   patientName,
		},
		"/doctor/appointments")

	if patient.Email != "" {
		s.notifier.SendAppointmentConfirmation(patient.Email, DisplayDate(dateKey), timeKey, doctor.FullName())
	}

	return &appointment, nil
}

// Cancel moves an appointment to its cancelled terminal state. Only the
// booking patient may cancel; completed and cancelled appointments may
// not be cancelled again.
func (s *Service) Cancel(appointmentID, actingUserID, reason string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := s.db.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundErr("Appointment not found")
		}
		return nil, err
	}

	if appointment.UserID != actingUserID {
		return nil, Forbidden("Not authorized to cancel this appointment")
	}

	if appointment.Status.IsTerminal() {
		return nil, Conflict("Cannot cancel completed or already cancelled appointment")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":        models.StatusCancelled,
		"cancel_reason": reason,
		"cancelled_by":  actingUserID,
		"cancelled_at":  now,
		"slot_key":      nil, // release the slot
	}
	if err := s.db.Model(&appointment).Updates(updates).Error; err != nil {
		return nil, err
	}
	appointment.Status = models.StatusCancelled
	appointment.CancelReason = reason
	appointment.CancelledBy = actingUserID
	appointment.CancelledAt = &now
	appointment.SlotKey = nil

	s.notifyDoctor(appointment.DoctorID, "appointment_cancelled",
		"Appointment Cancelled",
		fmt.Sprintf("Appointment for %s at %s has been cancelled", DisplayDate(appointment.Date), appointment.Time),
		map[string]interface{}{
			"appointmentId": appointment.ID,
			"reason":        reason,
		})

	return &appointment, nil
}

// Reschedule moves a pending appointment to a new slot in place: the
// appointment id and history are preserved. Only the booking patient may
// reschedule, and only from the pending state.
func (s *Service) Reschedule(appointmentID, actingUserID, rawDate, rawTime string) (*models.Appointment, error) {
	dateKey, timeKey, err := NormalizeSlot(rawDate, rawTime)
	if err != nil {
		return nil, err
	}

	var appointment models.Appointment
	if err := s.db.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundErr("Appointment not found")
		}
		return nil, err
	}

	if appointment.UserID != actingUserID {
		return nil, Forbidden("Not authorized to reschedule this appointment")
	}

	if appointment.Status != models.StatusPending {
		return nil, Conflict("Only pending appointments can be rescheduled")
	}

	// Exclude the appointment itself so moving to its own slot succeeds.
	available, err := s.IsSlotAvailable(appointment.DoctorID, dateKey, timeKey, appointment.ID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, Conflict("New slot not available")
	}

	slotKey := SlotKey(appointment.DoctorID, dateKey, timeKey)
	updates := map[string]interface{}{
		"date":     dateKey,
		"time":     timeKey,
		"slot_key": slotKey,
	}
	if err := s.db.Model(&appointment).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("New slot not available")
		}
		return nil, err
	}
	appointment.Date = dateKey
	appointment.Time = timeKey
	appointment.SlotKey = &slotKey

	s.notifyDoctor(appointment.DoctorID, "appointment_rescheduled",
		"Appointment Rescheduled",
		fmt.Sprintf("Appointment has been rescheduled to %s at %s", DisplayDate(dateKey), timeKey),
		map[string]interface{}{
			"appointmentId": appointment.ID,
		})

	return &appointment, nil
}

var statusUpdateMessages = map[models.AppointmentStatus]string{
	models.StatusApproved:  "Your appointment has been approved",
	models.StatusRejected:  "Your appointment has been rejected",
	models.StatusCompleted: "Your appointment has been completed",
}

// UpdateStatus is the doctor-side transition to approved, rejected or
// completed. The appointment must belong to the acting doctor's profile;
// beyond ownership no state machine is enforced among the three targets.
// Optional notes and prescription are merged in when present.
func (s *Service) UpdateStatus(appointmentID, doctorUserID string, status models.AppointmentStatus, notes, prescription string) (*models.Appointment, error) {
	message, ok := statusUpdateMessages[status]
	if !ok {
		return nil, Invalid("Invalid status")
	}

	var doctor models.Doctor
	if err := s.db.First(&doctor, "user_id = ?", doctorUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundErr("Doctor profile not found")
		}
		return nil, err
	}

	var appointment models.Appointment
	if err := s.db.First(&appointment, "id = ? AND doctor_id = ?", appointmentID, doctor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundErr("Appointment not found")
		}
		return nil, err
	}

	updates := map[string]interface{}{"status": status}
	if status == models.StatusApproved {
		// Re-approving claims the slot again; the unique index rejects
		// the move if another appointment has taken it since.
		updates["slot_key"] = SlotKey(appointment.DoctorID, appointment.Date, appointment.Time)
	} else {
		updates["slot_key"] = nil
	}
	if notes != "" {
		updates["notes"] = notes
	}
	if prescription != "" {
		updates["prescription"] = prescription
	}

	if err := s.db.Model(&appointment).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, Conflict("Appointment slot not available")
		}
		return nil, err
	}
	appointment.Status = status
	if notes != "" {
		appointment.Notes = notes
	}
	if prescription != "" {
		appointment.Prescription = prescription
	}
	if key, ok := updates["slot_key"].(string); ok {
		appointment.SlotKey = &key
	} else {
		appointment.SlotKey = nil
	}

	s.notifier.Notify(appointment.UserID, "appointment_"+string(status),
		"Appointment Status Update",
		message,
		map[string]interface{}{
			"appointmentId": appointment.ID,
			"doctorName":    doctor.FullName(),
		},
		"/user/appointments")

	return &appointment, nil
}

// notifyDoctor resolves the doctor's owning user and pushes an in-app
// notification. Resolution failure is logged, not surfaced.
func (s *Service) notifyDoctor(doctorID, ntype, title, message string, data map[string]interface{}) {
	var doctor models.Doctor
	if err := s.db.First(&doctor, "id = ?", doctorID).Error; err != nil {
		s.log.Warn("failed to load doctor for notification",
			zap.String("doctorId", doctorID), zap.Error(err))
		return
	}
	s.notifier.Notify(doctor.UserID, ntype, title, message, data, "/doctor/appointments")
}
