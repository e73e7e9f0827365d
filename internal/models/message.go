package models

import "time"

// MessageType is the closed set of supported message kinds.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeAudio MessageType = "audio"
	TypeImage MessageType = "image"
	TypePoll  MessageType = "poll"
)

// Valid reports whether t is one of the known message types.
func (t MessageType) Valid() bool {
	switch t {
	case TypeText, TypeAudio, TypeImage, TypePoll:
		return true
	}
	return false
}

// MessageStatus is the summary delivery status of a message. It only moves
// forward: sent < delivered < read. Played sits beside read and is reachable
// only for audio messages.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusPlayed    MessageStatus = "played"
)

// Rank orders statuses for monotonicity checks. Played ranks with read.
func (s MessageStatus) Rank() int {
	switch s {
	case StatusSent:
		return 0
	case StatusDelivered:
		return 1
	case StatusRead, StatusPlayed:
		return 2
	}
	return -1
}

type Message struct {
	ID              int           `json:"id" gorm:"primaryKey" example:"1"`
	ChatID          int           `json:"chatId" gorm:"index" example:"1"`
	SenderID        int           `json:"senderId,omitempty" example:"2"`
	Sender          User          `json:"sender,omitempty"`
	Type            MessageType   `json:"type" example:"text"`
	Content         string        `json:"content,omitempty" example:"twit-twit"`
	FilePath        string        `json:"filePath,omitempty" example:"uploads/audio/2f6b.ogg"`
	Status          MessageStatus `json:"status" example:"sent"`
	ClientMessageID *string       `json:"clientMessageId,omitempty" gorm:"uniqueIndex:ux_messages_client_message_id;size:191"`
	CreatedAt       int64         `json:"createdAt,omitempty" example:"1230000000"`
	DeliveredAt     *time.Time    `json:"deliveredAt,omitempty"`
	ReadAt          *time.Time    `json:"readAt,omitempty"`
	PlayedAt        *time.Time    `json:"playedAt,omitempty"`
}

type MessageRepository interface {
	FindByID(id int) (*Message, error)
	FindByClientMessageID(clientMessageID string) (*Message, error)
	CreateWithAcks(message *Message, recipientIDs []int) error
	// UpdateStatus persists a summary status transition, refusing to move the
	// stored status backward when a concurrent transition got further first.
	// It reports whether the write applied; a rejected write is not a change.
	UpdateStatus(message *Message) (bool, error)
	// Delete removes the message together with its receipts and pending acks
	// in one transaction.
	Delete(message *Message) error
	GetMessages(chatID, from, limit int) ([]*Message, error)
}
