package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/metrics"
)

// WebSocketServer streams dataset refreshes to connected clients. The
// scheduler publishes one update per dataset after each successful cache
// write.
type WebSocketServer struct {
	addr     string
	logger   *logging.Logger
	upgrader websocket.Upgrader

	// Client management
	mu      sync.RWMutex
	clients map[*WebSocketClient]bool

	// Dataset update channel
	updates chan datasetUpdate

	// Server control
	ctx    context.Context
	cancel context.CancelFunc
}

// WebSocketClient represents a connected WebSocket client.
type WebSocketClient struct {
	conn          *websocket.Conn
	send          chan []byte
	server        *WebSocketServer
	subscribedAll bool
	subscribed    map[string]bool
	mu            sync.RWMutex
}

// WebSocketMessage represents a client message.
type WebSocketMessage struct {
	Type     string   `json:"type"`     // "subscribe", "unsubscribe", "ping"
	Datasets []string `json:"datasets"` // Dataset keys to subscribe to
}

// SnapshotUpdateMessage is sent to clients when a dataset refreshes.
type SnapshotUpdateMessage struct {
	Type      string       `json:"type"`      // "snapshot_update"
	Dataset   string       `json:"dataset"`   // Refreshed dataset key
	Timestamp string       `json:"timestamp"` // ISO 8601 timestamp
	Record    cache.Record `json:"record"`    // Fresh record
}

type datasetUpdate struct {
	dataset string
	record  cache.Record
}

// NewWebSocketServer creates a new WebSocket server.
func NewWebSocketServer(addr string, logger *logging.Logger) *WebSocketServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &WebSocketServer{
		addr:   addr,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// Allow all origins (configure CORS as needed)
				return true
			},
		},
		clients: make(map[*WebSocketClient]bool),
		updates: make(chan datasetUpdate, 100),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start starts the WebSocket server.
func (s *WebSocketServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	server := &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start broadcast goroutine
	go s.broadcastUpdates()

	s.logger.Info("Starting WebSocket server", "addr", s.addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("WebSocket server error", "error", err)
		}
	}()

	// Wait for context cancellation
	<-s.ctx.Done()

	// Graceful shutdown with timeout based on parent context
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Stop stops the WebSocket server.
func (s *WebSocketServer) Stop() {
	s.cancel()
}

// SendUpdate queues a refreshed dataset record for broadcast. Safe to call
// from the scheduler goroutines; drops the update if the queue stays full.
func (s *WebSocketServer) SendUpdate(dataset string, record cache.Record) {
	select {
	case s.updates <- datasetUpdate{dataset: dataset, record: record}:
	case <-time.After(100 * time.Millisecond):
		s.logger.Warn("Update channel full, dropping snapshot update", "dataset", dataset)
	}
}

// handleWebSocket handles new WebSocket connections.
func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := &WebSocketClient{
		conn:          conn,
		send:          make(chan []byte, 256),
		server:        s,
		subscribedAll: true, // Subscribe to all datasets by default
		subscribed:    make(map[string]bool),
	}

	s.registerClient(client)

	// Start client goroutines
	go client.writePump()
	go client.readPump()

	s.logger.Info("New WebSocket client connected", "remote", conn.RemoteAddr())
}

// registerClient adds a client to the server.
func (s *WebSocketServer) registerClient(client *WebSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
	metrics.WebSocketClients.Inc()
}

// unregisterClient removes a client from the server.
func (s *WebSocketServer) unregisterClient(client *WebSocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		metrics.WebSocketClients.Dec()
	}
}

// broadcastUpdates drains the update queue to all clients.
func (s *WebSocketServer) broadcastUpdates() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case update := <-s.updates:
			s.broadcast(update)
		}
	}
}

// broadcast sends one dataset update to all subscribed clients.
func (s *WebSocketServer) broadcast(update datasetUpdate) {
	message := SnapshotUpdateMessage{
		Type:      "snapshot_update",
		Dataset:   update.dataset,
		Timestamp: time.Now().Format(time.RFC3339),
		Record:    update.record,
	}

	data, err := json.Marshal(message)
	if err != nil {
		s.logger.Error("Failed to marshal snapshot update", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients {
		if client.shouldReceive(update.dataset) {
			select {
			case client.send <- data:
			default:
				s.logger.Warn("Client send buffer full, skipping update")
			}
		}
	}
}

// writePump sends messages to the WebSocket connection.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads messages from the WebSocket connection.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage processes client messages.
func (c *WebSocketClient) handleMessage(data []byte) {
	var msg WebSocketMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.server.logger.Warn("Invalid client message", "error", err)
		return
	}

	switch msg.Type {
	case "subscribe":
		c.subscribe(msg.Datasets)
	case "unsubscribe":
		c.unsubscribe(msg.Datasets)
	case "ping":
		c.sendPong()
	default:
		c.server.logger.Warn("Unknown message type", "type", msg.Type)
	}
}

// subscribe subscribes to specific datasets.
func (c *WebSocketClient) subscribe(datasets []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(datasets) == 0 || (len(datasets) == 1 && datasets[0] == "*") {
		c.subscribedAll = true
		c.subscribed = make(map[string]bool)
	} else {
		c.subscribedAll = false
		for _, dataset := range datasets {
			c.subscribed[dataset] = true
		}
	}

	c.server.logger.Debug("Client subscribed", "datasets", datasets)
}

// unsubscribe unsubscribes from specific datasets.
func (c *WebSocketClient) unsubscribe(datasets []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(datasets) == 0 || (len(datasets) == 1 && datasets[0] == "*") {
		c.subscribedAll = false
		c.subscribed = make(map[string]bool)
	} else {
		for _, dataset := range datasets {
			delete(c.subscribed, dataset)
		}
	}

	c.server.logger.Debug("Client unsubscribed", "datasets", datasets)
}

// shouldReceive checks if the client is subscribed to this dataset.
func (c *WebSocketClient) shouldReceive(dataset string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.subscribedAll || c.subscribed[dataset]
}

// sendPong sends a pong response.
func (c *WebSocketClient) sendPong() {
	pong := map[string]string{"type": "pong"}
	data, _ := json.Marshal(pong)
	select {
	case c.send <- data:
	default:
	}
}
