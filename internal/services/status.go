package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"messenger/internal/models"
)

// StatusEvent is a recipient-reported delivery lifecycle event.
type StatusEvent string

const (
	StatusEventDelivered StatusEvent = "delivered"
	StatusEventRead      StatusEvent = "read"
	StatusEventPlayed    StatusEvent = "played"
)

// StatusService is the single authority over Message.Status transitions.
// Handlers never touch the status field directly.
type StatusService struct {
	messageRepo models.MessageRepository
	receiptRepo models.ReceiptRepository
	chatRepo    models.ChatRepository
	broadcaster Broadcaster
}

// NewStatusService returns a new instance of StatusService.
func NewStatusService(
	messageRepo models.MessageRepository,
	receiptRepo models.ReceiptRepository,
	chatRepo models.ChatRepository,
	broadcaster Broadcaster,
) *StatusService {
	return &StatusService{
		messageRepo: messageRepo,
		receiptRepo: receiptRepo,
		chatRepo:    chatRepo,
		broadcaster: broadcaster,
	}
}

// Advance applies one status event from a recipient. It is idempotent:
// replaying an event the recipient has already reached changes nothing.
// The returned bool says whether the summary status moved; every move is
// broadcast as a MessageStatusUpdated event.
func (s *StatusService) Advance(ctx context.Context, messageID, userID int, event StatusEvent) (bool, models.MessageStatus, error) {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, "", ErrMessageNotFound
		}
		return false, "", errors.Wrap(err, "loading message")
	}

	changed, err := s.advance(message, userID, event)
	if err != nil {
		return false, message.Status, err
	}

	if changed {
		publish(ctx, s.broadcaster, message.ChatID, EventMessageStatusUpdated, StatusUpdatePayload{
			MessageID: message.ID,
			Status:    message.Status,
		})
	}

	return changed, message.Status, nil
}

// BatchMarkRead applies a read event for every listed message. Repeated ids
// and messages the user sent are skipped, and a single MessageStatusUpdated
// event fires per message that actually changed.
func (s *StatusService) BatchMarkRead(ctx context.Context, messageIDs []int, userID int) error {
	seen := make(map[int]bool, len(messageIDs))
	for _, id := range messageIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		message, err := s.messageRepo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return errors.Wrap(err, "loading message")
		}
		if message.SenderID == userID {
			continue
		}

		changed, err := s.advance(message, userID, StatusEventRead)
		if err != nil {
			return err
		}
		if changed {
			publish(ctx, s.broadcaster, message.ChatID, EventMessageStatusUpdated, StatusUpdatePayload{
				MessageID: message.ID,
				Status:    message.Status,
			})
		}
	}
	return nil
}

func (s *StatusService) advance(message *models.Message, userID int, event StatusEvent) (bool, error) {
	if message.SenderID == userID {
		return false, ErrSelfEvent
	}

	// Only participants may acknowledge; a stranger's receipt would count
	// toward the read threshold.
	chat, err := s.loadChat(message.ChatID)
	if err != nil {
		return false, err
	}
	if !chat.HasParticipant(userID) {
		return false, ErrNotParticipant
	}

	switch event {
	case StatusEventDelivered:
		return s.applyDelivered(message, userID)
	case StatusEventRead:
		return s.applyRead(message, chat, userID)
	case StatusEventPlayed:
		return s.applyPlayed(message)
	}
	return false, ErrUnknownStatusEvent
}

func (s *StatusService) applyDelivered(message *models.Message, userID int) (bool, error) {
	if _, err := s.markDelivered(message.ID, userID); err != nil {
		return false, err
	}

	if message.Status != models.StatusSent {
		return false, nil
	}

	now := time.Now()
	message.Status = models.StatusDelivered
	message.DeliveredAt = &now
	applied, err := s.messageRepo.UpdateStatus(message)
	if err != nil {
		return false, errors.Wrap(err, "updating message status")
	}
	return applied, nil
}

func (s *StatusService) applyRead(message *models.Message, chat *models.Chat, userID int) (bool, error) {
	// A read event implies delivery; back-fill the receipt when the delivered
	// event never arrived.
	receipt, err := s.markDelivered(message.ID, userID)
	if err != nil {
		return false, err
	}

	if receipt.ReadAt == nil {
		now := time.Now()
		receipt.ReadAt = &now
		if err := s.receiptRepo.Update(receipt); err != nil {
			return false, errors.Wrap(err, "updating receipt")
		}
	}

	if message.Status.Rank() >= models.StatusRead.Rank() {
		return false, nil
	}

	read, err := s.readThresholdMet(message, chat)
	if err != nil {
		return false, err
	}

	now := time.Now()
	switch {
	case read:
		message.Status = models.StatusRead
		message.ReadAt = &now
		if message.DeliveredAt == nil {
			message.DeliveredAt = &now
		}
	case message.Status == models.StatusSent:
		message.Status = models.StatusDelivered
		message.DeliveredAt = &now
	default:
		return false, nil
	}

	applied, err := s.messageRepo.UpdateStatus(message)
	if err != nil {
		return false, errors.Wrap(err, "updating message status")
	}
	return applied, nil
}

func (s *StatusService) applyPlayed(message *models.Message) (bool, error) {
	if message.Type != models.TypeAudio {
		return false, ErrNotAudio
	}
	if message.PlayedAt != nil || message.Status == models.StatusPlayed {
		return false, nil
	}

	now := time.Now()
	message.Status = models.StatusPlayed
	message.PlayedAt = &now
	applied, err := s.messageRepo.UpdateStatus(message)
	if err != nil {
		return false, errors.Wrap(err, "updating message status")
	}
	return applied, nil
}

// markDelivered stamps the recipient's receipt once and returns it.
func (s *StatusService) markDelivered(messageID, userID int) (*models.DeliveryReceipt, error) {
	receipt, err := s.receiptRepo.GetOrCreate(messageID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "loading receipt")
	}
	if receipt.DeliveredAt == nil {
		now := time.Now()
		receipt.DeliveredAt = &now
		if err := s.receiptRepo.Update(receipt); err != nil {
			return nil, errors.Wrap(err, "updating receipt")
		}
	}
	return receipt, nil
}

func (s *StatusService) loadChat(chatID int) (*models.Chat, error) {
	chat, err := s.chatRepo.FindByID(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, errors.Wrap(err, "loading chat")
	}
	return chat, nil
}

// readThresholdMet re-counts read receipts at decision time. In a group chat
// every participant except the sender must have read; in a private chat the
// single recipient suffices.
func (s *StatusService) readThresholdMet(message *models.Message, chat *models.Chat) (bool, error) {
	count, err := s.receiptRepo.CountRead(message.ID)
	if err != nil {
		return false, errors.Wrap(err, "counting read receipts")
	}

	if chat.Type == models.ChatGroup {
		return count >= int64(len(chat.Users)-1), nil
	}
	return count >= 1, nil
}
