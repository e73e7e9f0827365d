package services

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"messenger/internal/models"
)

// In-memory repositories implementing the models interfaces. The message repo
// enforces the client message id uniqueness the way the database does, so the
// idempotency race can be exercised without a store.

type fakeMessageRepo struct {
	mu       sync.Mutex
	nextID   int
	messages map[int]*models.Message
	// ackRepo and receiptRepo double as the pending_acks and receipts tables,
	// shared with the repos other services hold, so the cascading delete can
	// touch them the way the real transaction does.
	ackRepo     *fakeAckRepo
	receiptRepo *fakeReceiptRepo
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages:    make(map[int]*models.Message),
		ackRepo:     &fakeAckRepo{},
		receiptRepo: newFakeReceiptRepo(),
	}
}

func (r *fakeMessageRepo) FindByID(id int) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *message
	return &cp, nil
}

func (r *fakeMessageRepo) FindByClientMessageID(clientMessageID string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages {
		if message.ClientMessageID != nil && *message.ClientMessageID == clientMessageID {
			cp := *message
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) CreateWithAcks(message *models.Message, recipientIDs []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ClientMessageID != nil {
		for _, existing := range r.messages {
			if existing.ClientMessageID != nil && *existing.ClientMessageID == *message.ClientMessageID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.nextID++
	message.ID = r.nextID
	cp := *message
	r.messages[message.ID] = &cp
	for _, recipientID := range recipientIDs {
		_ = r.ackRepo.Enqueue(&models.PendingAck{
			MessageID:   message.ID,
			RecipientID: recipientID,
			Type:        models.AckMessage,
		})
	}
	return nil
}

func (r *fakeMessageRepo) UpdateStatus(message *models.Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.messages[message.ID]
	if ok && stored.Status.Rank() >= message.Status.Rank() {
		return false, nil
	}
	cp := *message
	r.messages[message.ID] = &cp
	return true, nil
}

func (r *fakeMessageRepo) Delete(message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receiptRepo.deleteByMessageID(message.ID)
	r.ackRepo.deleteByMessageID(message.ID)
	delete(r.messages, message.ID)
	return nil
}

func (r *fakeMessageRepo) GetMessages(chatID, from, limit int) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var messages []*models.Message
	for _, message := range r.messages {
		if message.ChatID == chatID {
			cp := *message
			messages = append(messages, &cp)
		}
	}
	return messages, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *fakeMessageRepo) acksFor(messageID int) []*models.PendingAck {
	r.ackRepo.mu.Lock()
	defer r.ackRepo.mu.Unlock()
	var out []*models.PendingAck
	for _, ack := range r.ackRepo.acks {
		if ack.MessageID == messageID {
			out = append(out, ack)
		}
	}
	return out
}

type receiptKey struct {
	messageID int
	userID    int
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[receiptKey]*models.DeliveryReceipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[receiptKey]*models.DeliveryReceipt)}
}

func (r *fakeReceiptRepo) GetOrCreate(messageID, userID int) (*models.DeliveryReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := receiptKey{messageID, userID}
	if receipt, ok := r.receipts[key]; ok {
		cp := *receipt
		return &cp, nil
	}
	receipt := &models.DeliveryReceipt{MessageID: messageID, UserID: userID}
	r.receipts[key] = receipt
	cp := *receipt
	return &cp, nil
}

func (r *fakeReceiptRepo) Update(receipt *models.DeliveryReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *receipt
	r.receipts[receiptKey{receipt.MessageID, receipt.UserID}] = &cp
	return nil
}

func (r *fakeReceiptRepo) CountRead(messageID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, receipt := range r.receipts {
		if receipt.MessageID == messageID && receipt.ReadAt != nil {
			count++
		}
	}
	return count, nil
}

func (r *fakeReceiptRepo) FindByMessageID(messageID int) ([]*models.DeliveryReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var receipts []*models.DeliveryReceipt
	for _, receipt := range r.receipts {
		if receipt.MessageID == messageID {
			cp := *receipt
			receipts = append(receipts, &cp)
		}
	}
	return receipts, nil
}

func (r *fakeReceiptRepo) deleteByMessageID(messageID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.receipts {
		if key.messageID == messageID {
			delete(r.receipts, key)
		}
	}
}

func (r *fakeReceiptRepo) get(messageID, userID int) *models.DeliveryReceipt {
	r.mu.Lock()
	defer r.mu.Unlock()
	receipt, ok := r.receipts[receiptKey{messageID, userID}]
	if !ok {
		return nil
	}
	cp := *receipt
	return &cp
}

type fakeAckRepo struct {
	mu   sync.Mutex
	acks []*models.PendingAck
}

func (r *fakeAckRepo) Enqueue(ack *models.PendingAck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks = append(r.acks, ack)
	return nil
}

func (r *fakeAckRepo) FindByRecipient(recipientID, limit int) ([]*models.PendingAck, error) {
	return nil, nil
}

func (r *fakeAckRepo) IncrementRetry(id int) error { return nil }

func (r *fakeAckRepo) Delete(id int) error { return nil }

func (r *fakeAckRepo) deleteByMessageID(messageID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.acks[:0]
	for _, ack := range r.acks {
		if ack.MessageID != messageID {
			kept = append(kept, ack)
		}
	}
	r.acks = kept
}

type fakeChatRepo struct {
	chats map[int]*models.Chat
}

func (r *fakeChatRepo) FindByID(id int) (*models.Chat, error) {
	chat, ok := r.chats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return chat, nil
}

type fakeUserRepo struct {
	users map[int]*models.User
}

func (r *fakeUserRepo) FindByID(id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) Update(user *models.User) error { return nil }

func (r *fakeUserRepo) UpdateWithAssociations(user *models.User) error { return nil }

type fakeDeviceRepo struct {
	mu          sync.Mutex
	devices     map[int][]*models.Device
	deactivated []string
	touched     []string
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[int][]*models.Device)}
}

func (r *fakeDeviceRepo) FindActiveByUserID(userID int) ([]*models.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.devices[userID], nil
}

func (r *fakeDeviceRepo) Deactivate(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deactivated = append(r.deactivated, token)
	return nil
}

func (r *fakeDeviceRepo) TouchLastUsed(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = append(r.touched, token)
	return nil
}

type publishedEvent struct {
	chatID  int
	event   string
	payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (b *fakeBroadcaster) Publish(ctx context.Context, chatID int, event string, payload interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, publishedEvent{chatID: chatID, event: event, payload: payload})
	return nil
}

func (b *fakeBroadcaster) byEvent(event string) []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []publishedEvent
	for _, e := range b.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

type sentPush struct {
	token string
	title string
	body  string
}

type fakePushSender struct {
	mu         sync.Mutex
	sent       []sentPush
	deadTokens map[string]bool
	err        error
}

func (s *fakePushSender) Send(ctx context.Context, token, title, body string, data map[string]string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentPush{token: token, title: title, body: body})
	if s.deadTokens[token] {
		return true, errors.New("registration-token-not-registered")
	}
	return false, s.err
}
