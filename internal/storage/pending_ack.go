package storage

import (
	"gorm.io/gorm"

	"messenger/internal/models"
)

// PendingAckRepo encapsulates the logic for accessing pending acks from the data source.
type PendingAckRepo struct {
	db *gorm.DB
}

// NewPendingAckRepo creates a new instance of PendingAckRepo.
func NewPendingAckRepo(db *gorm.DB) *PendingAckRepo {
	return &PendingAckRepo{db: db}
}

// Enqueue records one outstanding notification work item.
func (r *PendingAckRepo) Enqueue(ack *models.PendingAck) error {
	return r.db.Create(ack).Error
}

// FindByRecipient returns up to limit pending acks addressed to the recipient,
// oldest first. Consumed by the external retry worker.
func (r *PendingAckRepo) FindByRecipient(recipientID, limit int) ([]*models.PendingAck, error) {
	var acks []*models.PendingAck
	err := r.db.Where("recipient_id = ?", recipientID).
		Order("id asc").
		Limit(limit).
		Find(&acks).Error
	if err != nil {
		return nil, err
	}
	return acks, nil
}

// IncrementRetry bumps the retry counter after a failed delivery attempt.
func (r *PendingAckRepo) IncrementRetry(id int) error {
	return r.db.Model(&models.PendingAck{}).
		Where("id = ?", id).
		UpdateColumn("retry_count", gorm.Expr("retry_count + 1")).Error
}

// Delete removes one acknowledged work item.
func (r *PendingAckRepo) Delete(id int) error {
	return r.db.Delete(&models.PendingAck{}, id).Error
}
