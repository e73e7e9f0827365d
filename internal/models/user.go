package models

import "time"

type User struct {
	ID         int       `json:"id" gorm:"primaryKey" example:"1"`
	Username   string    `json:"username" gorm:"unique" example:"username"`
	Image      string    `json:"image,omitempty" example:"image.png"`
	Chats      []*Chat   `json:"chats,omitempty" gorm:"many2many:chat_users"`
	Devices    []*Device `json:"devices,omitempty"`
	IsOnline   bool      `json:"isOnline,omitempty" gorm:"default:false" example:"true"`
	LastActive int64     `json:"lastActive,omitempty" example:"1230000000"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

type UserRepository interface {
	FindByID(id int) (*User, error)
	Update(user *User) error
	UpdateWithAssociations(user *User) error
}
