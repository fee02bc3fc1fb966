// Package ws implements the WebSocket transition-event feed. Participants
// connect with their user ID and receive the transition events of every
// visit they take part in.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fvnks/konecte.cl-sub001/internal/metrics"
	"github.com/fvnks/konecte.cl-sub001/internal/models"
)

// Hub channel buffer sizes.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
)

// Connection caps.
const (
	maxConnections        = 1000
	maxConnectionsPerUser = 10
)

// userBroadcast is sent through the broadcast channel to the Run goroutine.
type userBroadcast struct {
	userID string
	msg    []byte
}

// replayRequest asks the Run goroutine to resend buffered events to a client.
type replayRequest struct {
	client      *Client
	lastEventID uint64
}

// Hub manages active WebSocket clients and routes transition events to the
// visit participants. All client map mutations happen exclusively in the Run
// goroutine.
type Hub struct {
	clients    map[*Client]bool
	userCount  map[string]int
	register   chan *Client
	unregister chan *Client
	broadcast  chan userBroadcast
	replay     chan replayRequest
	shutdown   chan struct{} // signals Run to begin graceful drain
	done       chan struct{} // closed when Run has finished draining
	count      atomic.Int64
	seq        *EventSequence
	buffer     *EventBuffer
	log        *logrus.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		userCount:  make(map[string]int),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan userBroadcast, broadcastBuffer),
		replay:     make(chan replayRequest, registerBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		seq:        NewEventSequence(),
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
		log:        log,
	}
}

// Run starts the hub event loop. It should be run as a goroutine.
// It exits when Shutdown is called or the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()

			return
		case <-h.shutdown:
			h.drainClients()

			return

		case client := <-h.register:
			if len(h.clients) >= maxConnections {
				h.log.Warn("global connection limit reached, dropping client")
				client.closeSend()
				continue
			}

			if h.userCount[client.UserID] >= maxConnectionsPerUser {
				h.log.WithField("user_id", client.UserID).Warn("per-user connection limit reached, dropping client")
				client.closeSend()
				continue
			}

			h.clients[client] = true
			h.userCount[client.UserID]++
			h.count.Store(int64(len(h.clients)))
			metrics.WSConnections.Set(float64(len(h.clients)))
			h.log.WithField("total", len(h.clients)).Info("client registered")

		case client := <-h.unregister:
			h.removeClient(client)
			h.count.Store(int64(len(h.clients)))
			metrics.WSConnections.Set(float64(len(h.clients)))
			h.log.WithField("total", len(h.clients)).Info("client unregistered")

		case b := <-h.broadcast:
			for client := range h.clients {
				if client.UserID != b.userID {
					continue
				}

				select {
				case client.send <- b.msg:
				default:
					h.removeClient(client)
				}
			}

			h.count.Store(int64(len(h.clients)))

		case req := <-h.replay:
			// Skip clients already removed; their send channel is closed.
			if h.clients[req.client] {
				h.replayEvents(req.client, req.lastEventID)
			}
		}
	}
}

// removeClient deletes a client and its per-user count. Run goroutine only.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	client.closeSend()
	h.userCount[client.UserID]--

	if h.userCount[client.UserID] <= 0 {
		delete(h.userCount, client.UserID)
	}
}

// BroadcastToUser sends a message to every connection of the given user.
// The actual send is performed by the Run goroutine via a channel.
func (h *Hub) BroadcastToUser(userID string, msg []byte) {
	select {
	case h.broadcast <- userBroadcast{userID: userID, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run loop already exited; client cleanup happened in Run shutdown.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// NotifyTransition implements domain.Notifier: the event is delivered to the
// visit's visitor and owner connections, each under that user's own sequence,
// and buffered for replay on reconnect.
func (h *Hub) NotifyTransition(_ context.Context, evt models.TransitionEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	for _, userID := range []string{evt.VisitorID, evt.OwnerID} {
		event := Event{
			Type:   EventTypeTransition,
			ID:     h.seq.Next(userID),
			UserID: userID,
			Data:   data,
			Time:   time.Now(),
		}

		msg, err := json.Marshal(event)
		if err != nil {
			return err
		}

		h.buffer.Append(userID, &event)
		h.BroadcastToUser(userID, msg)
	}

	return nil
}

// ReplayTo asks the hub to resend every buffered event newer than lastEventID.
// The replay itself runs on the Run goroutine, the only sender on client
// channels; sending from here would race with Run closing the channel.
func (h *Hub) ReplayTo(c *Client, lastEventID uint64) {
	select {
	case h.replay <- replayRequest{client: c, lastEventID: lastEventID}:
	default:
		h.log.WithField("user_id", c.UserID).Warn("replay channel full, dropping request")
	}
}

// replayEvents sends the client every buffered event newer than lastEventID.
// When the requested horizon has already been evicted, a reset message is sent
// instead and the client must refetch its visits over HTTP. Run goroutine only.
func (h *Hub) replayEvents(c *Client, lastEventID uint64) {
	if lastEventID > 0 && h.buffer.OldestID(c.UserID) > lastEventID+1 {
		msg, err := json.Marshal(ResetMsg{Type: "reset", Reason: "requested events no longer buffered"})
		if err != nil {
			return
		}

		c.trySend(msg)

		return
	}

	for _, event := range h.buffer.Since(c.UserID, lastEventID) {
		msg, err := json.Marshal(event)
		if err != nil {
			continue
		}

		if !c.trySend(msg) {
			return
		}
	}
}

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// Shutdown initiates a graceful drain: notifies every connected client,
// waits for write pumps to flush, then closes all connections. It blocks
// until drain is complete or the timeout expires.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
	h.buffer.Stop()
}

// drainClients sends a shutdown notice to every client and waits briefly for
// buffers to flush.
func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		select {
		case client.send <- shutdownMsg:
		default:
		}
	}

	time.Sleep(drainTimeout)

	for client := range h.clients {
		h.removeClient(client)
	}

	metrics.WSConnections.Set(0)
}
