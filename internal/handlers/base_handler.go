package handlers

import (
	"os"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"messenger/internal/models"
	"messenger/internal/services"
	"messenger/internal/services/token_service"
)

type BaseHandler struct {
	userRepo       models.UserRepository
	messageRepo    models.MessageRepository
	chatRepo       models.ChatRepository
	tokenService   *token_service.Service
	messageService *services.MessageService
	statusService  *services.StatusService
	presence       *services.Presence
	rdb            *redis.Client
}

// Response is the type used for sending JSON around
type Response struct {
	Error   bool        `json:"error" example:"false"`
	Message string      `json:"message" example:"success operation"`
	Data    interface{} `json:"data,omitempty"`
}

// NewBaseHandler is a constructor for BaseHandler
func NewBaseHandler(
	userRepo models.UserRepository,
	messageRepo models.MessageRepository,
	chatRepo models.ChatRepository,
	tokenService *token_service.Service,
	messageService *services.MessageService,
	statusService *services.StatusService,
	presence *services.Presence,
	rdb *redis.Client,
) *BaseHandler {
	return &BaseHandler{
		userRepo:       userRepo,
		messageRepo:    messageRepo,
		chatRepo:       chatRepo,
		tokenService:   tokenService,
		messageService: messageService,
		statusService:  statusService,
		presence:       presence,
		rdb:            rdb,
	}
}

// SuccessResponse creates a JSON response with success status.
func SuccessResponse(c echo.Context, statusCode int, message string, data any) error {
	payload := Response{
		Error:   false,
		Message: message,
		Data:    data,
	}
	return c.JSON(statusCode, payload)
}

// ErrorResponse creates a JSON response with error status.
func ErrorResponse(c echo.Context, statusCode int, message string, err error) error {
	payload := Response{
		Error:   true,
		Message: message,
	}

	// Including error details if running in 'dev' mode.
	if os.Getenv("APP_ENV") == "dev" && err != nil {
		payload.Data = err.Error()
	}

	return c.JSON(statusCode, payload)
}
