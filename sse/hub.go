package sse

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/streamkit/logger"
)

// clientBuffer is the per-client event queue depth. A client that falls
// this far behind starts losing events rather than stalling the hub.
const clientBuffer = 256

// Client is one SSE connection, pinned to a named stream for its whole
// lifetime. Events reach it through a bounded channel drained by Handler.
type Client struct {
	id     string
	stream string
	meta   map[string]string
	events chan []byte
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMetadata attaches a key-value pair to the client.
func WithMetadata(key, value string) ClientOption {
	return func(c *Client) {
		c.meta[key] = value
	}
}

// WithUserID sets the user ID metadata.
func WithUserID(userID string) ClientOption {
	return WithMetadata("user_id", userID)
}

// NewClient creates a client for the named stream with a fresh unique ID.
func NewClient(stream string, opts ...ClientOption) *Client {
	c := &Client{
		id:     uuid.NewString(),
		stream: stream,
		meta:   make(map[string]string),
		events: make(chan []byte, clientBuffer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() string { return c.id }

// Stream returns the stream the client is subscribed to.
func (c *Client) Stream() string { return c.stream }

// Metadata returns the client's metadata.
func (c *Client) Metadata() map[string]string { return c.meta }

// UserID returns the user ID metadata, if set.
func (c *Client) UserID() string { return c.meta["user_id"] }

// Events returns the channel Handler drains to write the response.
func (c *Client) Events() <-chan []byte { return c.events }

// Send queues data for the client. A full queue means the client is too
// slow; the event is dropped and Send reports false.
func (c *Client) Send(data []byte) bool {
	select {
	case c.events <- data:
		return true
	default:
		logger.Warn("sse client lagging, event dropped", logger.Fields(
			logger.FieldClientID, c.id,
			logger.FieldStream, c.stream,
		))
		return false
	}
}

// Close closes the client's event channel. Only the hub calls this.
func (c *Client) Close() {
	close(c.events)
}

// envelope is one broadcast in flight to the hub goroutine.
type envelope struct {
	stream string
	data   []byte
}

// Hub fans stream events out to connected SSE clients. Clients are grouped
// by stream name so a broadcast touches only its own stream's clients.
// Registration, removal, and delivery all funnel through the Run loop; the
// mutex exists only so count and listing queries can read the buckets
// without a round-trip to that goroutine.
type Hub struct {
	mu       sync.RWMutex
	byStream map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
	stop       sync.Once
}

// NewHub creates an idle hub; call Run (or wrap it in a Component) to
// start delivery.
func NewHub() *Hub {
	return &Hub{
		byStream:   make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It blocks until Stop is called, closing
// every client on the way out.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.dropAll()
			return
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case env := <-h.broadcast:
			h.deliver(env.stream, env.data)
		}
	}
}

// Stop shuts the hub down and disconnects every client. Idempotent.
func (h *Hub) Stop() {
	h.stop.Do(func() { close(h.done) })
}

// Register adds a client to its stream's bucket.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client and closes its event channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues data for every client on the named stream.
func (h *Hub) Broadcast(stream string, data []byte) {
	select {
	case h.broadcast <- envelope{stream: stream, data: data}:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	bucket := h.byStream[c.stream]
	if bucket == nil {
		bucket = make(map[string]*Client)
		h.byStream[c.stream] = bucket
	}
	bucket[c.id] = c
	n := len(bucket)
	h.mu.Unlock()

	logger.Debug("sse client registered", logger.Fields(
		logger.FieldClientID, c.id,
		logger.FieldStream, c.stream,
		"stream_clients", n,
	))
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	bucket := h.byStream[c.stream]
	if _, ok := bucket[c.id]; ok {
		delete(bucket, c.id)
		if len(bucket) == 0 {
			delete(h.byStream, c.stream)
		}
		c.Close()
	}
	h.mu.Unlock()

	logger.Debug("sse client unregistered", logger.Fields(
		logger.FieldClientID, c.id,
		logger.FieldStream, c.stream,
	))
}

func (h *Hub) dropAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for stream, bucket := range h.byStream {
		for _, c := range bucket {
			c.Close()
		}
		delete(h.byStream, stream)
	}
}

func (h *Hub) deliver(stream string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, c := range h.byStream[stream] {
		if c.Send(data) {
			sent++
		}
	}
	logger.Debug("sse broadcast", logger.Fields(
		logger.FieldStream, stream,
		"sent", sent,
		"bytes", len(data),
	))
}

// ClientCount returns the number of connected clients across all streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, bucket := range h.byStream {
		n += len(bucket)
	}
	return n
}

// StreamClientCount returns the number of clients on one stream.
func (h *Hub) StreamClientCount(stream string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byStream[stream])
}

// ClientIDs lists every connected client ID.
func (h *Hub) ClientIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var ids []string
	for _, bucket := range h.byStream {
		for id := range bucket {
			ids = append(ids, id)
		}
	}
	return ids
}
