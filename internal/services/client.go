package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"messenger/internal/models"
)

const clientsKey = "clients"

// Client is one live connection subscribed to the broadcast channels of every
// chat its user participates in.
type Client struct {
	ID   uuid.UUID
	User *models.User

	rdb              *redis.Client
	channelsHandler  *redis.PubSub
	stopListenerChan chan struct{}
	listening        bool

	MessageChan chan redis.Message
}

// Connect registers the user as live and subscribes to the user's chat channels.
func Connect(rdb *redis.Client, user *models.User) (*Client, error) {
	if _, err := rdb.SAdd(context.Background(), clientsKey, user.ID).Result(); err != nil {
		return nil, err
	}

	c := &Client{
		ID:               uuid.New(),
		User:             user,
		rdb:              rdb,
		stopListenerChan: make(chan struct{}),
		MessageChan:      make(chan redis.Message),
	}

	channels := make([]string, 0, len(user.Chats))
	for _, chat := range user.Chats {
		channels = append(channels, fmt.Sprintf("%d", chat.ID))
	}

	if len(channels) == 0 {
		log.Printf("no chat channels to connect for client %d", user.ID)
		return c, nil
	}

	return c, c.doConnect(channels...)
}

func (c *Client) doConnect(channels ...string) error {
	// subscribe all channels in one request
	pubSub := c.rdb.Subscribe(context.Background(), channels...)
	// keep channel handler to be used in unsubscribe
	c.channelsHandler = pubSub

	// the Listener
	go func() {
		c.listening = true
		log.Printf("starting the listener for client %d on channels: %s", c.User.ID, channels)
		for {
			select {
			case msg, ok := <-pubSub.Channel():
				if !ok {
					return
				}
				c.MessageChan <- *msg
			case <-c.stopListenerChan:
				log.Printf("stopping the listener for client: %d", c.User.ID)
				return
			}
		}
	}()
	return nil
}

// Disconnect unsubscribes the client and removes its live registration.
func (c *Client) Disconnect() error {
	if _, err := c.rdb.SRem(context.Background(), clientsKey, c.User.ID).Result(); err != nil {
		return err
	}

	if c.channelsHandler != nil {
		if err := c.channelsHandler.Unsubscribe(context.Background()); err != nil {
			return err
		}
		if err := c.channelsHandler.Close(); err != nil {
			return err
		}
	}
	if c.listening {
		c.stopListenerChan <- struct{}{}
	}

	close(c.MessageChan)

	return nil
}
