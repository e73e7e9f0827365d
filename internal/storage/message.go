package storage

import (
	"database/sql"

	"gorm.io/gorm"

	"messenger/internal/models"
)

// MessageRepo encapsulates the logic for accessing messages from the data source.
type MessageRepo struct {
	db *gorm.DB
}

// NewMessageRepo creates a new instance of MessageRepo.
func NewMessageRepo(db *gorm.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// FindByID retrieves the message with the provided ID from the database.
func (r *MessageRepo) FindByID(id int) (*models.Message, error) {
	message := new(models.Message)
	err := r.db.Preload("Sender").First(message, id).Error
	if err != nil {
		return nil, err
	}
	return message, nil
}

// FindByClientMessageID retrieves the message carrying the given
// client-supplied identifier, returning gorm.ErrRecordNotFound when absent.
func (r *MessageRepo) FindByClientMessageID(clientMessageID string) (*models.Message, error) {
	message := new(models.Message)
	err := r.db.Preload("Sender").Where("client_message_id = ?", clientMessageID).First(message).Error
	if err != nil {
		return nil, err
	}
	return message, nil
}

// CreateWithAcks inserts the message together with one pending ack per
// recipient in a single serializable transaction. The unique index on
// client_message_id is the final arbiter when two submissions race past the
// existence check: the loser gets gorm.ErrDuplicatedKey and nothing of it is
// persisted.
func (r *MessageRepo) CreateWithAcks(message *models.Message, recipientIDs []int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		for _, recipientID := range recipientIDs {
			ack := &models.PendingAck{
				MessageID:   message.ID,
				RecipientID: recipientID,
				Type:        models.AckMessage,
			}
			if err := tx.Create(ack).Error; err != nil {
				return err
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// UpdateStatus persists a summary status transition. The guarded WHERE clause
// makes the write monotonic: a slower delivered update can't overwrite a read
// transition a concurrent recipient already committed. The returned bool says
// whether the row actually moved; callers must not report or broadcast a
// change the guard rejected.
func (r *MessageRepo) UpdateStatus(message *models.Message) (bool, error) {
	var below []models.MessageStatus
	switch message.Status {
	case models.StatusDelivered:
		below = []models.MessageStatus{models.StatusSent}
	case models.StatusRead:
		below = []models.MessageStatus{models.StatusSent, models.StatusDelivered}
	case models.StatusPlayed:
		below = []models.MessageStatus{models.StatusSent, models.StatusDelivered, models.StatusRead}
	default:
		return false, nil
	}

	updates := map[string]interface{}{"status": message.Status}
	if message.DeliveredAt != nil {
		updates["delivered_at"] = message.DeliveredAt
	}
	if message.ReadAt != nil {
		updates["read_at"] = message.ReadAt
	}
	if message.PlayedAt != nil {
		updates["played_at"] = message.PlayedAt
	}

	result := r.db.Model(&models.Message{}).
		Where("id = ? AND status IN ?", message.ID, below).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a message and everything hanging off it. Receipts, pending
// acks and the message row go in one transaction so a failure can't leave a
// message without its receipts.
func (r *MessageRepo) Delete(message *models.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", message.ID).Delete(&models.DeliveryReceipt{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", message.ID).Delete(&models.PendingAck{}).Error; err != nil {
			return err
		}
		return tx.Delete(message).Error
	})
}

// GetMessages retrieves a list of messages associated with the chatID.
// The 'from' parameter determines the starting ID from which messages are retrieved, and 'limit' specifies the number of messages.
func (r *MessageRepo) GetMessages(chatID, from, limit int) ([]*models.Message, error) {
	var messages []*models.Message
	db := r.db.Preload("Sender").
		Where("chat_id = ?", chatID).
		Limit(limit).
		Order("id desc")

	if from != 0 {
		db = db.Where("id < ?", from)
	}

	err := db.Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}
