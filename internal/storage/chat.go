package storage

import (
	"gorm.io/gorm"

	"messenger/internal/models"
)

// ChatRepo encapsulates the logic for accessing chats from the data source.
// The delivery core only reads topology; chat lifecycle is owned elsewhere.
type ChatRepo struct {
	db *gorm.DB
}

// NewChatRepo creates a new instance of ChatRepo.
func NewChatRepo(db *gorm.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// FindByID retrieves the chat with the provided ID and its participants.
func (r *ChatRepo) FindByID(id int) (*models.Chat, error) {
	chat := new(models.Chat)
	err := r.db.Preload("Users").First(chat, id).Error
	if err != nil {
		return nil, err
	}
	return chat, nil
}
