package configs

import (
	"messenger/internal/handlers"
	"messenger/internal/models"
	"messenger/internal/services/token_service"
)

type Config struct {
	BaseHandler  *handlers.BaseHandler
	UserRepo     models.UserRepository
	TokenService *token_service.Service
}
