package services

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"messenger/internal/models"
)

const pushQueueSize = 256

// MessageService owns the message write path: idempotent ingestion, deletion,
// and the post-commit notification fan-out.
type MessageService struct {
	messageRepo models.MessageRepository
	chatRepo    models.ChatRepository
	userRepo    models.UserRepository
	deviceRepo  models.DeviceRepository
	broadcaster Broadcaster
	dispatcher  *PushDispatcher
	presence    *Presence

	pushQueue chan pushJob
}

type pushJob struct {
	senderName   string
	message      *models.Message
	tokensByUser map[int][]*models.Device
}

// NewMessageService wires the service and starts its push worker.
func NewMessageService(
	messageRepo models.MessageRepository,
	chatRepo models.ChatRepository,
	userRepo models.UserRepository,
	deviceRepo models.DeviceRepository,
	broadcaster Broadcaster,
	dispatcher *PushDispatcher,
	presence *Presence,
) *MessageService {
	s := &MessageService{
		messageRepo: messageRepo,
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		deviceRepo:  deviceRepo,
		broadcaster: broadcaster,
		dispatcher:  dispatcher,
		presence:    presence,
		pushQueue:   make(chan pushJob, pushQueueSize),
	}
	go s.pushWorker()
	return s
}

func (s *MessageService) pushWorker() {
	for job := range s.pushQueue {
		s.dispatcher.NotifyOffline(context.Background(), job.senderName, job.message, job.tokensByUser)
	}
}

// SubmitRequest carries one inbound message submission.
type SubmitRequest struct {
	ChatID          int
	SenderID        int
	Type            models.MessageType
	Content         string
	FilePath        string
	ClientMessageID string
}

// Submit admits a message exactly once. When the request carries a client
// message id that already exists, the stored message is returned unchanged
// with no new side effects; otherwise the message and its pending acks are
// committed in one serializable transaction, and only then the best-effort
// fan-out runs.
func (s *MessageService) Submit(ctx context.Context, req SubmitRequest) (*models.Message, error) {
	if req.ClientMessageID != "" {
		existing, err := s.messageRepo.FindByClientMessageID(req.ClientMessageID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "checking client message id")
		}
	}

	sender, err := s.userRepo.FindByID(req.SenderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSenderNotFound
		}
		return nil, errors.Wrap(err, "loading sender")
	}

	chat, err := s.chatRepo.FindByID(req.ChatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, errors.Wrap(err, "loading chat")
	}
	if !chat.HasParticipant(req.SenderID) {
		return nil, ErrNotParticipant
	}

	message := &models.Message{
		ChatID:    req.ChatID,
		SenderID:  req.SenderID,
		Sender:    *sender,
		Type:      req.Type,
		Content:   req.Content,
		FilePath:  req.FilePath,
		Status:    models.StatusSent,
		CreatedAt: time.Now().Unix(),
	}
	if req.ClientMessageID != "" {
		clientID := req.ClientMessageID
		message.ClientMessageID = &clientID
	}

	recipients := chat.RecipientIDs(req.SenderID)

	if err := s.messageRepo.CreateWithAcks(message, recipients); err != nil {
		if req.ClientMessageID != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent submission carrying the same client message id won
			// the insert. The winner's row is the definitive result for every
			// caller.
			return s.messageRepo.FindByClientMessageID(req.ClientMessageID)
		}
		return nil, errors.Wrap(err, "creating message")
	}

	s.fanOut(ctx, sender, chat, message, recipients)

	return message, nil
}

// fanOut runs the best-effort notification layer after commit: live
// subscribers get the message over the broadcast channel, recipients without
// a connection go through the push queue. Nothing here fails the write path.
func (s *MessageService) fanOut(ctx context.Context, sender *models.User, chat *models.Chat, message *models.Message, recipients []int) {
	publish(ctx, s.broadcaster, chat.ID, EventReceiveMessage, message)

	if !s.dispatcher.Enabled() {
		return
	}

	tokensByUser := make(map[int][]*models.Device)
	for _, recipientID := range recipients {
		if s.presence != nil && s.presence.IsConnected(recipientID) {
			continue
		}
		devices, err := s.deviceRepo.FindActiveByUserID(recipientID)
		if err != nil {
			log.Printf("error loading devices for user %d: %s", recipientID, err)
			continue
		}
		if len(devices) > 0 {
			tokensByUser[recipientID] = devices
		}
	}
	if len(tokensByUser) == 0 {
		return
	}

	job := pushJob{senderName: sender.Username, message: message, tokensByUser: tokensByUser}
	select {
	case s.pushQueue <- job:
	default:
		log.Printf("push queue full, dropping notification for message %d", message.ID)
	}
}

// Delete removes a sender's message together with its receipts, pending acks
// and any stored file content, then notifies live subscribers.
func (s *MessageService) Delete(ctx context.Context, messageID, userID int) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return errors.Wrap(err, "loading message")
	}
	if message.SenderID != userID {
		return ErrNotOwner
	}

	if err := s.messageRepo.Delete(message); err != nil {
		return errors.Wrap(err, "deleting message")
	}

	if message.FilePath != "" {
		if err := os.Remove(message.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("error removing file %s: %s", message.FilePath, err)
		}
	}

	publish(ctx, s.broadcaster, message.ChatID, EventMessageDeleted, MessageDeletedPayload{MessageID: messageID})

	return nil
}
