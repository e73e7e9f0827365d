package models

import "time"

// Device is one registered push target. A device the provider reports as gone
// is deactivated, not deleted, so the registration history survives.
type Device struct {
	ID         int        `json:"id" gorm:"primaryKey" example:"1"`
	UserID     int        `json:"userId" gorm:"index" example:"1"`
	Type       string     `json:"type" example:"web"` // web, android, ios
	Name       string     `json:"name" example:"Chrome 90.0.4430.212 (Linux x86_64)"`
	Token      string     `json:"token" gorm:"uniqueIndex;size:191" example:"c26BG3n3VJbI0i2H8aXZmG:APA91bGoG3iqJxidumkVRKCniXoA"`
	Active     bool       `json:"active" gorm:"default:true"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}

type DeviceRepository interface {
	FindActiveByUserID(userID int) ([]*Device, error)
	Deactivate(token string) error
	TouchLastUsed(token string) error
}
