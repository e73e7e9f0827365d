package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"firebase.google.com/go/messaging"

	"messenger/internal/models"
)

// A single unreachable token must not stall the rest of the pass.
const tokenSendTimeout = 5 * time.Second

// PushSender delivers one notification to one device token. shouldDeactivate
// is true when the provider reports the token permanently dead.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) (shouldDeactivate bool, err error)
}

// FCMSender implements PushSender over Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender returns a PushSender backed by the given messaging client.
func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) (bool, error) {
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		return messaging.IsRegistrationTokenNotRegistered(err), err
	}
	return false, nil
}

// PushDispatcher notifies recipients without a live connection through their
// registered device tokens.
type PushDispatcher struct {
	sender     PushSender
	deviceRepo models.DeviceRepository
}

// NewPushDispatcher wires the dispatcher; a nil sender puts it in degraded
// mode where NotifyOffline is a no-op.
func NewPushDispatcher(sender PushSender, deviceRepo models.DeviceRepository) *PushDispatcher {
	return &PushDispatcher{sender: sender, deviceRepo: deviceRepo}
}

// Enabled reports whether a push provider is configured.
func (d *PushDispatcher) Enabled() bool {
	return d != nil && d.sender != nil
}

// NotifyOffline attempts delivery to every token of every recipient. Each
// token attempt is independent: failures are logged and recorded per token,
// never aborting the remaining tokens or users.
func (d *PushDispatcher) NotifyOffline(ctx context.Context, senderName string, message *models.Message, tokensByUser map[int][]*models.Device) {
	if !d.Enabled() {
		return
	}

	title := fmt.Sprintf("Message from %s", senderName)
	body := NotificationBody(message)
	data := map[string]string{
		"chatId":    strconv.Itoa(message.ChatID),
		"messageId": strconv.Itoa(message.ID),
	}

	for userID, devices := range tokensByUser {
		if userID == message.SenderID {
			continue
		}
		for _, device := range devices {
			d.sendToken(ctx, device.Token, title, body, data)
		}
	}
}

func (d *PushDispatcher) sendToken(ctx context.Context, token, title, body string, data map[string]string) {
	sendCtx, cancel := context.WithTimeout(ctx, tokenSendTimeout)
	defer cancel()

	shouldDeactivate, err := d.sender.Send(sendCtx, token, title, body, data)
	if err != nil {
		log.Printf("error sending push to token %s: %s", token, err)
		if shouldDeactivate {
			if err := d.deviceRepo.Deactivate(token); err != nil {
				log.Printf("error deactivating token %s: %s", token, err)
			}
		}
		return
	}

	if err := d.deviceRepo.TouchLastUsed(token); err != nil {
		log.Printf("error updating last used for token %s: %s", token, err)
	}
}

// NotificationBody derives the push body from the message type; non-textual
// content gets a placeholder instead of raw content.
func NotificationBody(message *models.Message) string {
	switch message.Type {
	case models.TypeText:
		return message.Content
	case models.TypeAudio:
		return "Voice message"
	case models.TypeImage:
		return "Photo"
	case models.TypePoll:
		return "Poll"
	}
	return message.Content
}
