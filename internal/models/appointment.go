package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsActive reports whether the status counts toward the slot uniqueness
// invariant: at most one pending or approved appointment per
// (doctor, date, time).
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// IsTerminal reports whether no further patient-side transition is
// permitted from this status.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// PaymentStatus tracks payment state. Stored but never acted upon here.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Appointment represents one scheduled (or historical) consultation.
//
// SlotKey is "doctorID@date@time" while the appointment is in an active
// status and NULL otherwise. The unique index on it is the authoritative
// guard against double booking: concurrent creates for the same slot
// race to the constraint instead of a read-then-write check.
type Appointment struct {
	BaseModel
	UserID        string            `gorm:"size:36;index;not null" json:"userId"`
	DoctorID      string            `gorm:"size:36;index;not null" json:"doctorId"`
	Date          string            `gorm:"size:10;index;not null" json:"date"` // YYYY-MM-DD
	Time          string            `gorm:"size:5;not null" json:"time"`        // HH:mm
	Duration      int               `gorm:"default:30" json:"duration"`
	Status        AppointmentStatus `gorm:"size:20;default:'pending';index" json:"status"`
	Symptoms      string            `gorm:"size:500" json:"symptoms,omitempty"`
	Notes         string            `gorm:"size:1000" json:"notes,omitempty"`
	Prescription  string            `gorm:"size:2000" json:"prescription,omitempty"`
	Fees          float64           `gorm:"not null" json:"fees"`
	PaymentStatus PaymentStatus     `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	PaymentID     string            `gorm:"size:255" json:"paymentId,omitempty"`
	CancelReason  string            `gorm:"size:500" json:"cancelReason,omitempty"`
	CancelledBy   string            `gorm:"size:36" json:"cancelledBy,omitempty"`
	CancelledAt   *time.Time        `json:"cancelledAt,omitempty"`
	IsDeleted     bool              `gorm:"default:false" json:"isDeleted"`
	SlotKey       *string           `gorm:"size:90;uniqueIndex" json:"-"`

	// Relations
	Patient User   `gorm:"foreignKey:UserID" json:"-"`
	Doctor  Doctor `gorm:"foreignKey:DoctorID" json:"-"`
}
