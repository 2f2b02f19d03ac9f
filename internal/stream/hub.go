package stream

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "bookings:"
	channelSuffix = ":events"
)

// Hub fans booking events out to the websocket clients of each user. With
// Redis configured, every event goes through the user's channel so all
// instances deliver it; without Redis delivery is local only.
type Hub struct {
	redis   *redis.Client
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	cancel  context.CancelFunc
	ready   chan struct{}
}

type Client struct {
	UserID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		clients: map[string]map[*Client]struct{}{},
		ready:   make(chan struct{}),
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go h.subscribeRedis(ctx)
	} else {
		close(h.ready)
	}
	return h
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.UserID]; ok {
		if _, ok := userClients[client]; !ok {
			return
		}
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.UserID)
		}
		close(client.Send)
	}
}

// Publish sends payload to every connection of userID. A failed Redis publish
// falls back to local delivery.
func (h *Hub) Publish(ctx context.Context, userID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(ctx, redisChannel(userID), payload).Err()
		if err == nil {
			return
		}
		log.Printf("redis publish error: %v", err)
	}
	h.deliver(userID, payload)
}

// Ready is closed once the Redis subscription is live.
func (h *Hub) Ready() <-chan struct{} {
	return h.ready
}

func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Hub) deliver(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.redis.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("redis subscribe error: %v", err)
	}
	close(h.ready)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if userID := userIDFromChannel(msg.Channel); userID != "" {
				h.deliver(userID, []byte(msg.Payload))
			}
		}
	}
}

func redisChannel(userID string) string {
	return channelPrefix + userID + channelSuffix
}

func userIDFromChannel(ch string) string {
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(ch, channelPrefix), channelSuffix)
}
