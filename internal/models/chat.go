package models

// ChatType distinguishes a two-person chat from a group.
type ChatType string

const (
	ChatPrivate ChatType = "private"
	ChatGroup   ChatType = "group"
)

// Chat is read-only topology for the delivery core: an external service owns
// chat creation and membership, this code only fans out over it.
type Chat struct {
	ID    int      `json:"id" gorm:"primaryKey" example:"1"`
	Type  ChatType `json:"type" example:"private"`
	Users []*User  `json:"users,omitempty" gorm:"many2many:chat_users"`
}

// HasParticipant reports whether userID is a member of the chat.
func (c *Chat) HasParticipant(userID int) bool {
	for _, u := range c.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// RecipientIDs returns every participant id except senderID.
func (c *Chat) RecipientIDs(senderID int) []int {
	ids := make([]int, 0, len(c.Users))
	for _, u := range c.Users {
		if u.ID != senderID {
			ids = append(ids, u.ID)
		}
	}
	return ids
}

type ChatRepository interface {
	FindByID(id int) (*Chat, error)
}
