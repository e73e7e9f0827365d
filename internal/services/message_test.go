package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/internal/models"
)

func newTestMessageService(messageRepo *fakeMessageRepo, chatRepo *fakeChatRepo, userRepo *fakeUserRepo, deviceRepo *fakeDeviceRepo, broadcaster *fakeBroadcaster, sender PushSender) *MessageService {
	return NewMessageService(
		messageRepo,
		chatRepo,
		userRepo,
		deviceRepo,
		broadcaster,
		NewPushDispatcher(sender, deviceRepo),
		NewPresence(),
	)
}

func privateChatFixture() (*fakeChatRepo, *fakeUserRepo) {
	sender := &models.User{ID: 1, Username: "alice"}
	recipient := &models.User{ID: 2, Username: "bob"}
	chatRepo := &fakeChatRepo{chats: map[int]*models.Chat{
		10: {ID: 10, Type: models.ChatPrivate, Users: []*models.User{sender, recipient}},
	}}
	userRepo := &fakeUserRepo{users: map[int]*models.User{1: sender, 2: recipient}}
	return chatRepo, userRepo
}

func TestSubmitCreatesMessageWithAcks(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	broadcaster := &fakeBroadcaster{}
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), broadcaster, nil)

	message, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID:   10,
		SenderID: 1,
		Type:     models.TypeText,
		Content:  "hello",
	})
	require.NoError(t, err)
	require.NotZero(t, message.ID)
	assert.Equal(t, models.StatusSent, message.Status)

	acks := messageRepo.acksFor(message.ID)
	require.Len(t, acks, 1)
	assert.Equal(t, 2, acks[0].RecipientID, "ack must target the non-sender participant")
	assert.Equal(t, models.AckMessage, acks[0].Type)

	received := broadcaster.byEvent(EventReceiveMessage)
	require.Len(t, received, 1)
	assert.Equal(t, 10, received[0].chatID)
}

func TestSubmitConcurrentSameClientMessageID(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), &fakeBroadcaster{}, nil)

	const submitters = 8
	results := make([]*models.Message, submitters)
	errs := make([]error, submitters)

	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Submit(context.Background(), SubmitRequest{
				ChatID:          10,
				SenderID:        1,
				Type:            models.TypeText,
				Content:         "hello",
				ClientMessageID: "abc",
			})
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, messageRepo.count(), "exactly one message row must exist")
	for i := 0; i < submitters; i++ {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		assert.Equal(t, results[0].ID, results[i].ID, "every caller must see the same row")
	}
	assert.Len(t, messageRepo.acksFor(results[0].ID), 1)
}

func TestSubmitDuplicateReturnsExistingWithoutSideEffects(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	broadcaster := &fakeBroadcaster{}
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), broadcaster, nil)

	first, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID: 10, SenderID: 1, Type: models.TypeText, Content: "hello", ClientMessageID: "abc",
	})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID: 10, SenderID: 1, Type: models.TypeText, Content: "hello", ClientMessageID: "abc",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, messageRepo.count())
	assert.Len(t, broadcaster.byEvent(EventReceiveMessage), 1, "duplicate must not broadcast again")
}

func TestSubmitUnknownChat(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), &fakeBroadcaster{}, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID: 99, SenderID: 1, Type: models.TypeText, Content: "hello",
	})
	require.ErrorIs(t, err, ErrChatNotFound)
	assert.Zero(t, messageRepo.count(), "no partial state on NotFound")
}

func TestSubmitSenderNotParticipant(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	userRepo.users[7] = &models.User{ID: 7, Username: "mallory"}
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), &fakeBroadcaster{}, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID: 10, SenderID: 7, Type: models.TypeText, Content: "hello",
	})
	require.ErrorIs(t, err, ErrNotParticipant)
	assert.Zero(t, messageRepo.count())
}

func TestSubmitBroadcastFailureDoesNotFailWrite(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	broadcaster := &fakeBroadcaster{err: assert.AnError}
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), broadcaster, nil)

	message, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID: 10, SenderID: 1, Type: models.TypeText, Content: "hello",
	})
	require.NoError(t, err, "broadcast failure must not surface to the caller")
	assert.NotZero(t, message.ID)
}

func TestSubmitPushesToOfflineRecipients(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	deviceRepo := newFakeDeviceRepo()
	deviceRepo.devices[2] = []*models.Device{{UserID: 2, Token: "tok-bob", Active: true}}
	sender := &fakePushSender{}
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, deviceRepo, &fakeBroadcaster{}, sender)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID: 10, SenderID: 1, Type: models.TypeText, Content: "hello",
	})
	require.NoError(t, err)

	// Push dispatch is handed off to the worker, so give it a moment.
	require.Eventually(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		return len(sender.sent) == 1
	}, time.Second, 10*time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, "tok-bob", sender.sent[0].token)
	assert.Equal(t, "Message from alice", sender.sent[0].title)
	assert.Equal(t, "hello", sender.sent[0].body)
}

func TestDeleteMessageOwnerOnly(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	broadcaster := &fakeBroadcaster{}
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), broadcaster, nil)

	message, err := svc.Submit(context.Background(), SubmitRequest{
		ChatID: 10, SenderID: 1, Type: models.TypeText, Content: "hello",
	})
	require.NoError(t, err)

	// a recorded receipt must go down with the message
	receipt, err := messageRepo.receiptRepo.GetOrCreate(message.ID, 2)
	require.NoError(t, err)
	require.NoError(t, messageRepo.receiptRepo.Update(receipt))

	err = svc.Delete(context.Background(), message.ID, 2)
	require.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, 1, messageRepo.count())

	err = svc.Delete(context.Background(), message.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, messageRepo.count())
	assert.Empty(t, messageRepo.acksFor(message.ID))
	assert.Nil(t, messageRepo.receiptRepo.get(message.ID, 2))

	deleted := broadcaster.byEvent(EventMessageDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, MessageDeletedPayload{MessageID: message.ID}, deleted[0].payload)
}

func TestDeleteUnknownMessage(t *testing.T) {
	messageRepo := newFakeMessageRepo()
	chatRepo, userRepo := privateChatFixture()
	svc := newTestMessageService(messageRepo, chatRepo, userRepo, newFakeDeviceRepo(), &fakeBroadcaster{}, nil)

	err := svc.Delete(context.Background(), 404, 1)
	require.ErrorIs(t, err, ErrMessageNotFound)
}
