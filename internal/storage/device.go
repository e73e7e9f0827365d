package storage

import (
	"time"

	"gorm.io/gorm"

	"messenger/internal/models"
)

// DeviceRepo encapsulates the logic for accessing push devices from the data source.
type DeviceRepo struct {
	db *gorm.DB
}

// NewDeviceRepo creates a new instance of DeviceRepo.
func NewDeviceRepo(db *gorm.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

// FindActiveByUserID retrieves the user's devices that still hold a live token.
func (r *DeviceRepo) FindActiveByUserID(userID int) ([]*models.Device, error) {
	var devices []*models.Device
	err := r.db.Where("user_id = ? AND active = ?", userID, true).Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// Deactivate marks a token the provider reported as permanently dead.
func (r *DeviceRepo) Deactivate(token string) error {
	return r.db.Model(&models.Device{}).
		Where("token = ?", token).
		Update("active", false).Error
}

// TouchLastUsed stamps a successful delivery through the token.
func (r *DeviceRepo) TouchLastUsed(token string) error {
	return r.db.Model(&models.Device{}).
		Where("token = ?", token).
		Update("last_used_at", time.Now()).Error
}
