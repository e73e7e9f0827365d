package storage

import (
	"gorm.io/gorm"

	"messenger/internal/models"
)

// ReceiptRepo encapsulates the logic for accessing delivery receipts from the data source.
type ReceiptRepo struct {
	db *gorm.DB
}

// NewReceiptRepo creates a new instance of ReceiptRepo.
func NewReceiptRepo(db *gorm.DB) *ReceiptRepo {
	return &ReceiptRepo{db: db}
}

// GetOrCreate returns the receipt for (messageID, userID), creating an empty
// one on first use.
func (r *ReceiptRepo) GetOrCreate(messageID, userID int) (*models.DeliveryReceipt, error) {
	receipt := &models.DeliveryReceipt{MessageID: messageID, UserID: userID}
	err := r.db.FirstOrCreate(receipt, models.DeliveryReceipt{MessageID: messageID, UserID: userID}).Error
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Update modifies an existing receipt in the database.
func (r *ReceiptRepo) Update(receipt *models.DeliveryReceipt) error {
	return r.db.Save(receipt).Error
}

// CountRead counts receipts for the message with a non-null readAt. Callers
// re-count at decision time instead of caching the value.
func (r *ReceiptRepo) CountRead(messageID int) (int64, error) {
	var count int64
	err := r.db.Model(&models.DeliveryReceipt{}).
		Where("message_id = ? AND read_at IS NOT NULL", messageID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FindByMessageID retrieves every receipt recorded for the message.
func (r *ReceiptRepo) FindByMessageID(messageID int) ([]*models.DeliveryReceipt, error) {
	var receipts []*models.DeliveryReceipt
	err := r.db.Where("message_id = ?", messageID).Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}
