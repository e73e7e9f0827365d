package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"messenger/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     CheckOrigin,
}

// Subscribe godoc
// @Summary Live chat events [WebSocket]
// @Description Streams ReceiveMessage, MessageStatusUpdated and MessageDeleted events for the user's chats
// @Tags chat
// @Param token query string true "Access JWT Token"
// @Failure 401 {object} Response
// @Router /ws/chat [get]
func (h *BaseHandler) Subscribe(c echo.Context) error {
	token := c.QueryParam("token")
	accessTokenClaims, err := h.tokenService.DecodeAccessToken(token)
	if err != nil {
		return ErrorResponse(c, http.StatusUnauthorized, "invalid token", err)
	}

	ctx := c.Request().Context()
	_, err = h.tokenService.GetCacheValue(ctx, accessTokenClaims.AccessUUID)
	if err != nil {
		return ErrorResponse(c, http.StatusUnauthorized, "invalid token", err)
	}

	user, err := h.userRepo.FindByID(accessTokenClaims.UserID)
	if err != nil {
		return ErrorResponse(c, http.StatusUnauthorized, "user was not found", err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, "failed to upgrade to websocket", err)
	}
	defer func(ws *websocket.Conn) {
		if err := ws.Close(); err != nil {
			c.Logger().Errorf("error closing websocket: %s", err)
		}
	}(ws)

	client, err := services.Connect(h.rdb, user)
	if err != nil {
		c.Logger().Errorf("error connecting client %d: %s", user.ID, err)
		return err
	}

	h.presence.Add(user.ID, client)
	c.Logger().Infof("client %d connected", user.ID)

	user.IsOnline = true
	if err = h.userRepo.Update(user); err != nil {
		c.Logger().Error(err.Error())
	}

	// Forward every envelope published to the user's chat channels.
	go func() {
		for m := range client.MessageChan {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(m.Payload)); err != nil {
				c.Logger().Errorf("error writing message to connection: %s", err)
			}
		}
	}()

	// Block until the peer closes; the read pump only drains control frames.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	h.presence.Remove(user.ID, client.ID)
	if err := client.Disconnect(); err != nil {
		c.Logger().Errorf("error disconnecting client %d: %s", user.ID, err)
	}
	c.Logger().Infof("connection closed for client %d", user.ID)

	if !h.presence.IsConnected(user.ID) {
		user.IsOnline = false
		if err := h.userRepo.Update(user); err != nil {
			c.Logger().Error(err.Error())
		}
	}

	return nil
}
