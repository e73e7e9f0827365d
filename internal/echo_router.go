package internal

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"messenger/configs"
)

type AppConfig struct {
	Config *configs.Config
}

func (app *AppConfig) NewRouter() *echo.Echo {
	e := echo.New()

	e.GET("/docs/*", echoSwagger.WrapHandler)

	h := app.Config.BaseHandler

	// Messages
	e.POST("/v1/chats/:chat_id/messages", h.SubmitMessage, app.AuthUserMiddleware())
	e.GET("/v1/chats/:chat_id/messages", h.GetMessages, app.AuthUserMiddleware())
	e.DELETE("/v1/messages/:message_id", h.DeleteMessage, app.AuthUserMiddleware())

	// Delivery status
	e.PUT("/v1/messages/read", h.BatchMarkRead, app.AuthUserMiddleware())
	e.PUT("/v1/messages/:message_id/delivered", h.MarkDelivered, app.AuthUserMiddleware())
	e.PUT("/v1/messages/:message_id/read", h.MarkRead, app.AuthUserMiddleware())
	e.PUT("/v1/messages/:message_id/played", h.MarkPlayed, app.AuthUserMiddleware())

	// Device
	e.POST("/v1/device", h.AddDevice, app.AuthUserMiddleware())

	// Live subscription
	e.GET("/ws/chat", h.Subscribe)

	return e
}
