package models

import "time"

// DeliveryReceipt records when one recipient received and read one message.
// Both timestamps are set once; readAt is never set before deliveredAt.
type DeliveryReceipt struct {
	MessageID   int        `json:"messageId" gorm:"primaryKey;autoIncrement:false"`
	UserID      int        `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
}

type ReceiptRepository interface {
	GetOrCreate(messageID, userID int) (*DeliveryReceipt, error)
	Update(receipt *DeliveryReceipt) error
	CountRead(messageID int) (int64, error)
	FindByMessageID(messageID int) ([]*DeliveryReceipt, error)
}
