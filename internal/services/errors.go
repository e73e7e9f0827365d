package services

import "github.com/pkg/errors"

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrSenderNotFound  = errors.New("sender not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("user is not a participant of the chat")
	ErrNotOwner        = errors.New("only the sender can delete a message")

	ErrSelfEvent          = errors.New("sender can't acknowledge own message")
	ErrNotAudio           = errors.New("played applies to audio messages only")
	ErrUnknownStatusEvent = errors.New("unknown status event")
)
