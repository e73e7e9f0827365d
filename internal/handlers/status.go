package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"messenger/internal/models"
	"messenger/internal/services"
)

// StatusResponseBody reports the outcome of a status event.
type StatusResponseBody struct {
	MessageID int                  `json:"messageId" example:"1"`
	Status    models.MessageStatus `json:"status" example:"delivered"`
	Changed   bool                 `json:"changed" example:"true"`
}

// BatchMarkReadRequestBody lists the messages a user has read.
type BatchMarkReadRequestBody struct {
	MessageIDs []int `json:"messageIds" example:"1,2,3"`
}

// MarkDelivered godoc
// @Summary Mark a message as delivered to the calling user
// @Tags status
// @Accept  json
// @Produce application/json
// @Param	message_id	path	int	true	"Message ID"
// @Security BearerAuth
// @Success 200 {object} Response{data=StatusResponseBody}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/messages/{message_id}/delivered [put]
func (h *BaseHandler) MarkDelivered(c echo.Context) error {
	return h.advanceStatus(c, services.StatusEventDelivered)
}

// MarkRead godoc
// @Summary Mark a message as read by the calling user
// @Tags status
// @Accept  json
// @Produce application/json
// @Param	message_id	path	int	true	"Message ID"
// @Security BearerAuth
// @Success 200 {object} Response{data=StatusResponseBody}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/messages/{message_id}/read [put]
func (h *BaseHandler) MarkRead(c echo.Context) error {
	return h.advanceStatus(c, services.StatusEventRead)
}

// MarkPlayed godoc
// @Summary Mark an audio message as played
// @Tags status
// @Accept  json
// @Produce application/json
// @Param	message_id	path	int	true	"Message ID"
// @Security BearerAuth
// @Success 200 {object} Response{data=StatusResponseBody}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/messages/{message_id}/played [put]
func (h *BaseHandler) MarkPlayed(c echo.Context) error {
	return h.advanceStatus(c, services.StatusEventPlayed)
}

func (h *BaseHandler) advanceStatus(c echo.Context, event services.StatusEvent) error {
	user := c.Get("user").(*models.User)
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", err)
	}

	changed, status, err := h.statusService.Advance(c.Request().Context(), messageID, user.ID, event)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrMessageNotFound), errors.Is(err, services.ErrChatNotFound):
		return ErrorResponse(c, http.StatusNotFound, "message or chat not found", err)
	case errors.Is(err, services.ErrNotParticipant):
		return ErrorResponse(c, http.StatusForbidden, "user is not a chat participant", err)
	case errors.Is(err, services.ErrSelfEvent), errors.Is(err, services.ErrNotAudio):
		return ErrorResponse(c, http.StatusBadRequest, "illegal status event", err)
	default:
		return ErrorResponse(c, http.StatusInternalServerError, "failed to update message status", err)
	}

	return SuccessResponse(c, http.StatusOK, "status processed successfully", StatusResponseBody{
		MessageID: messageID,
		Status:    status,
		Changed:   changed,
	})
}

// BatchMarkRead godoc
// @Summary Mark many messages as read by the calling user
// @Description Messages sent by the caller and repeated ids are skipped
// @Tags status
// @Accept  json
// @Produce application/json
// @Param messages body BatchMarkReadRequestBody true "raw request body"
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/messages/read [put]
func (h *BaseHandler) BatchMarkRead(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var body BatchMarkReadRequestBody
	if err := c.Bind(&body); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
	}
	if len(body.MessageIDs) == 0 {
		return ErrorResponse(c, http.StatusBadRequest, "empty message id list", errors.New("empty message id list"))
	}

	err := h.statusService.BatchMarkRead(c.Request().Context(), body.MessageIDs, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrChatNotFound):
		return ErrorResponse(c, http.StatusNotFound, "chat not found", err)
	case errors.Is(err, services.ErrNotParticipant):
		return ErrorResponse(c, http.StatusForbidden, "user is not a chat participant", err)
	default:
		return ErrorResponse(c, http.StatusInternalServerError, "failed to mark messages as read", err)
	}

	return SuccessResponse(c, http.StatusOK, "messages marked as read", nil)
}
