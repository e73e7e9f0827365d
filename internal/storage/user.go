package storage

import (
	"gorm.io/gorm"

	"messenger/internal/models"
)

// UserRepo represents a repository for accessing and manipulating User data.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new UserRepo instance.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindByID retrieves a user by ID from the database.
func (r *UserRepo) FindByID(id int) (*models.User, error) {
	user := new(models.User)
	err := r.db.Preload("Chats.Users").Preload("Devices").First(user, id).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update updates an existing user in the database.
func (r *UserRepo) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateWithAssociations updates a user along with its associations in the database.
func (r *UserRepo) UpdateWithAssociations(user *models.User) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(user).Error
}
