package models

import "time"

// AckType says what a pending ack is about.
type AckType string

const (
	AckMessage      AckType = "message"
	AckStatusUpdate AckType = "status_update"
)

// PendingAck is one outstanding "notify recipient about message" work item.
// It is a reliability ledger for the retry worker, never a source of truth for
// message state.
type PendingAck struct {
	ID          int       `json:"id" gorm:"primaryKey" example:"1"`
	MessageID   int       `json:"messageId" gorm:"index:idx_pending_acks_message" example:"1"`
	RecipientID int       `json:"recipientId" gorm:"index:idx_pending_acks_recipient" example:"2"`
	Type        AckType   `json:"type" example:"message"`
	RetryCount  int       `json:"retryCount" gorm:"default:0" example:"0"`
	CreatedAt   time.Time `json:"createdAt"`
}

type PendingAckRepository interface {
	Enqueue(ack *PendingAck) error
	FindByRecipient(recipientID, limit int) ([]*PendingAck, error)
	IncrementRetry(id int) error
	Delete(id int) error
}
