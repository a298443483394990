package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account in the system. Roles are flags rather than
// an enum: a user may be an admin and also own a doctor profile.
type User struct {
	BaseModel
	Name            string     `gorm:"size:50;not null" json:"name"`
	Email           string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password        string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Phone           string     `gorm:"size:20" json:"phone,omitempty"`
	IsAdmin         bool       `gorm:"default:false;index" json:"isAdmin"`
	IsDoctor        bool       `gorm:"default:false;index" json:"isDoctor"`
	IsEmailVerified bool       `gorm:"default:false" json:"isEmailVerified"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	IsActive        bool       `gorm:"default:true" json:"isActive"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	Appointments  []Appointment  `gorm:"foreignKey:UserID" json:"-"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	IsAdmin         bool       `json:"isAdmin"`
	IsDoctor        bool       `json:"isDoctor"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Phone:           u.Phone,
		IsAdmin:         u.IsAdmin,
		IsDoctor:        u.IsDoctor,
		IsEmailVerified: u.IsEmailVerified,
		LastLogin:       u.LastLogin,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
