package validators

import (
	"github.com/pkg/errors"

	"messenger/internal/models"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrEmptyContent       = errors.New("message content is empty")
	ErrMissingFile        = errors.New("message file path is empty")
)

// ValidateMessagePayload checks that content and file path match the message
// type. Text and poll messages carry content; audio and image messages carry
// a file.
func ValidateMessagePayload(messageType models.MessageType, content, filePath string) error {
	switch messageType {
	case models.TypeText, models.TypePoll:
		if content == "" {
			return ErrEmptyContent
		}
	case models.TypeAudio, models.TypeImage:
		if filePath == "" {
			return ErrMissingFile
		}
	default:
		return ErrInvalidMessageType
	}
	return nil
}
