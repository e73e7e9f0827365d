package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"messenger/internal/models"
	"messenger/internal/services"
	"messenger/pkg/validators"
)

type SubmitMessageRequestBody struct {
	Type            models.MessageType `json:"type" example:"text"`
	Content         string             `json:"content" example:"twit-twit"`
	FilePath        string             `json:"filePath,omitempty" example:"uploads/audio/2f6b.ogg"`
	ClientMessageID string             `json:"clientMessageId,omitempty" example:"9bb1ed19-6731-4a2c-9e0a-bb1d0969f912"`
}

// SubmitMessage godoc
// @Summary Submit a new message to a chat
// @Description Idempotent: resubmitting the same clientMessageId returns the stored message
// @Tags message
// @Accept  json
// @Produce application/json
// @Param	chat_id	path	int	true	"Chat ID"
// @Param message body SubmitMessageRequestBody true "raw request body"
// @Security BearerAuth
// @Success 201 {object} Response{data=models.Message}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/chats/{chat_id}/messages [post]
func (h *BaseHandler) SubmitMessage(c echo.Context) error {
	user := c.Get("user").(*models.User)
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid chat ID", err)
	}

	var body SubmitMessageRequestBody
	if err := c.Bind(&body); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
	}

	if err := validators.ValidateMessagePayload(body.Type, body.Content, body.FilePath); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid message payload", err)
	}

	message, err := h.messageService.Submit(c.Request().Context(), services.SubmitRequest{
		ChatID:          chatID,
		SenderID:        user.ID,
		Type:            body.Type,
		Content:         body.Content,
		FilePath:        body.FilePath,
		ClientMessageID: body.ClientMessageID,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrChatNotFound), errors.Is(err, services.ErrSenderNotFound):
		return ErrorResponse(c, http.StatusNotFound, "chat or sender not found", err)
	case errors.Is(err, services.ErrNotParticipant):
		return ErrorResponse(c, http.StatusForbidden, "user is not a chat participant", err)
	default:
		return ErrorResponse(c, http.StatusInternalServerError, "failed to submit message", err)
	}

	return SuccessResponse(c, http.StatusCreated, "message submitted successfully", message)
}

// DeleteMessage godoc
// @Summary Delete a message by ID
// @Tags message
// @Accept  json
// @Produce application/json
// @Param	message_id	path	int	true	"Message ID"
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/messages/{message_id} [delete]
func (h *BaseHandler) DeleteMessage(c echo.Context) error {
	user := c.Get("user").(*models.User)
	messageID, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid message ID", err)
	}

	err = h.messageService.Delete(c.Request().Context(), messageID, user.ID)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrMessageNotFound):
		return ErrorResponse(c, http.StatusNotFound, "message not found", err)
	case errors.Is(err, services.ErrNotOwner):
		return ErrorResponse(c, http.StatusForbidden, "can't delete this message: have not access", err)
	default:
		return ErrorResponse(c, http.StatusInternalServerError, "failed to delete message", err)
	}

	return SuccessResponse(c, http.StatusOK, "successfully deleted message", nil)
}

// GetMessages godoc
// @Summary Get messages from chat by ChatId
// @Tags message
// @Accept  json
// @Produce application/json
// @Param	chat_id	path	int	true	"Chat ID"
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Message}
// @Failure 400 {object} Response
// @Failure 403 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /v1/chats/{chat_id}/messages [get]
func (h *BaseHandler) GetMessages(c echo.Context) error {
	user := c.Get("user").(*models.User)
	chatID, err := strconv.Atoi(c.Param("chat_id"))
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid chat ID", err)
	}

	chat, err := h.chatRepo.FindByID(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrorResponse(c, http.StatusNotFound, "Chat not found", err)
		}
		return ErrorResponse(c, http.StatusInternalServerError, "Failed to get chat", err)
	}

	if !chat.HasParticipant(user.ID) {
		err = errors.Errorf("user with id %d not found in chat with id %d", user.ID, chatID)
		return ErrorResponse(c, http.StatusForbidden, "User not found in chat", err)
	}

	limit, err := getLimit(c)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid limit, must be an integer between 1 and 1000", err)
	}

	from, err := getFrom(c)
	if err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "Invalid 'from' parameter, must be an integer", err)
	}

	messages, err := h.messageRepo.GetMessages(chatID, from, limit)
	if err != nil {
		return ErrorResponse(c, http.StatusInternalServerError, "Failed to get messages", err)
	}

	return SuccessResponse(c, http.StatusOK, "Messages found successfully", messages)
}

// getLimit retrieves and validates the 'limit' query parameter.
func getLimit(c echo.Context) (int, error) {
	limit := 10
	limitStr := c.QueryParam("limit")
	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 1000 {
			return 0, err
		}
		return limit, nil
	}
	return limit, nil
}

// getFrom retrieves the 'from' query parameter.
func getFrom(c echo.Context) (int, error) {
	from := 0
	fromStr := c.QueryParam("from")
	if fromStr != "" {
		from, err := strconv.Atoi(fromStr)
		if err != nil {
			return 0, err
		}
		return from, err
	}
	return from, nil
}
