package models

import (
	"gorm.io/datatypes"
)

// Notification is an in-app message addressed to one user. Rows are
// created as best-effort side effects of state transitions elsewhere and
// are never required for the parent transition to succeed.
type Notification struct {
	BaseModel
	UserID      string         `gorm:"size:36;index;not null" json:"userId"`
	Type        string         `gorm:"size:64;not null" json:"type"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Message     string         `gorm:"size:1000" json:"message"`
	Data        datatypes.JSON `json:"data,omitempty"`
	OnClickPath string         `gorm:"size:255" json:"onClickPath,omitempty"`
	IsRead      bool           `gorm:"default:false;index" json:"isRead"`
}
