package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"source-intel-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ClusterChannel is the Redis pub/sub channel shared by every API instance.
const ClusterChannel = "synthesis_cluster_events"

type clusterMessage struct {
	TargetSessionID string          `json:"target_session_id"`
	Origin          string          `json:"origin"`
	Message         json.RawMessage `json:"message"`
}

// Hub fans decisions out to the stream clients watching a session.
type Hub struct {
	// session id -> connected clients (several tabs may watch one session)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	// Optional; nil keeps delivery local to this instance.
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run owns client registration until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("STREAM", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[client.SessionID]
	found := false
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			found = true
			break
		}
	}
	if found && len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("STREAM", "Last client left session", map[string]interface{}{"session_id": client.SessionID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// SendToSession delivers payload to local watchers of sessionID and
// publishes it for the other instances.
func (h *Hub) SendToSession(sessionID string, payload []byte) {
	h.deliverLocal(sessionID, payload)

	if h.rdb == nil {
		return
	}
	msg, err := json.Marshal(clusterMessage{
		TargetSessionID: sessionID,
		Origin:          h.instanceID,
		Message:         payload,
	})
	if err != nil {
		h.logger.Error("STREAM", "Failed to encode cluster message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := h.rdb.Publish(context.Background(), ClusterChannel, msg).Err(); err != nil {
		h.logger.Warn("STREAM", "Failed to publish cluster message", map[string]interface{}{"error": err.Error()})
	}
}

// ClientCount reports how many local clients watch sessionID.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// SessionCount reports how many sessions have at least one local client.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliverLocal(sessionID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[sessionID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("STREAM", "Client send buffer full, disconnecting", map[string]interface{}{"session_id": sessionID})
			h.drop(client)
		}
	}
}

// drop unregisters a slow client without blocking the caller, who may hold h.mu.
func (h *Hub) drop(c *Client) {
	go func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var payload clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				h.logger.Warn("STREAM", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
				continue
			}
			// Our own publications were already delivered locally.
			if payload.Origin == h.instanceID {
				continue
			}
			h.deliverLocal(payload.TargetSessionID, payload.Message)
		}
	}
}
