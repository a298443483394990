package models

import (
	"gorm.io/datatypes"
)

// DoctorStatus represents the review state of a doctor application.
// Only approved doctors are bookable.
type DoctorStatus string

const (
	DoctorPending  DoctorStatus = "pending"
	DoctorApproved DoctorStatus = "approved"
	DoctorRejected DoctorStatus = "rejected"
)

// Address is a postal address embedded in the doctor profile.
type Address struct {
	Street  string `gorm:"size:255" json:"street,omitempty"`
	City    string `gorm:"size:100" json:"city,omitempty"`
	State   string `gorm:"size:100" json:"state,omitempty"`
	ZipCode string `gorm:"size:20" json:"zipCode,omitempty"`
	Country string `gorm:"size:100" json:"country,omitempty"`
}

// Timings is the doctor's nominal daily availability window.
// It is informational only; booking enforces exact-slot uniqueness,
// not window membership.
type Timings struct {
	Start string `gorm:"size:5" json:"start"`
	End   string `gorm:"size:5" json:"end"`
}

// Doctor represents a care provider profile, created when a user
// applies for a doctor account and gated by admin approval.
type Doctor struct {
	BaseModel
	UserID         string         `gorm:"size:36;index;not null" json:"userId"`
	FirstName      string         `gorm:"size:100;not null" json:"firstName"`
	LastName       string         `gorm:"size:100;not null" json:"lastName"`
	Phone          string         `gorm:"size:20;not null" json:"phone"`
	Email          string         `gorm:"size:255;not null" json:"email"`
	Website        string         `gorm:"size:255" json:"website,omitempty"`
	Address        Address        `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Specialization string         `gorm:"size:100;index;not null" json:"specialization"`
	Experience     int            `json:"experience"`
	Fees           float64        `gorm:"not null" json:"fees"`
	Status         DoctorStatus   `gorm:"size:20;default:'pending';index" json:"status"`
	Timings        Timings        `gorm:"embedded;embeddedPrefix:timing_" json:"timings"`
	WorkingDays    datatypes.JSON `json:"workingDays,omitempty"`
	RatingAverage  float64        `gorm:"default:0" json:"ratingAverage"`
	RatingCount    int            `gorm:"default:0" json:"ratingCount"`
	Bio            string         `gorm:"size:500" json:"bio,omitempty"`
	Education      datatypes.JSON `json:"education,omitempty"`
	IsActive       bool           `gorm:"default:true" json:"isActive"`

	// Relations
	User         User          `gorm:"foreignKey:UserID" json:"-"`
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"-"`
}

// FullName returns the doctor's display name.
func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}
