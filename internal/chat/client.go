package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

// sendBuffer bounds how far a slow consumer may fall behind before frames
// are dropped.
const sendBuffer = 64

// Client is one live connection with its identity snapshot. Its lifecycle is
// a small state machine: unauthenticated (room == nil), joined, closed. The
// transport layer drains Outbox; tests drive the same surface directly.
type Client struct {
	ID   string
	User models.UserView

	hub  *Hub
	send chan Frame
	done chan struct{}

	mu     sync.Mutex
	room   *room
	closed bool

	closeOnce sync.Once
}

func newClient(hub *Hub, user models.UserView) *Client {
	return &Client{
		ID:   uuid.NewString(),
		User: user,
		hub:  hub,
		send: make(chan Frame, sendBuffer),
		done: make(chan struct{}),
	}
}

// Outbox yields the frames queued for this connection.
func (c *Client) Outbox() <-chan Frame { return c.send }

// Done is closed once the connection is closed.
func (c *Client) Done() <-chan struct{} { return c.done }

// HandleEvent dispatches one inbound event. Failures never propagate to the
// room: they come back to this connection as an error frame.
func (c *Client) HandleEvent(ctx context.Context, event string, data json.RawMessage) {
	var err error

	switch event {
	case EventJoinChat:
		var p JoinPayload
		if err = json.Unmarshal(data, &p); err != nil {
			err = httperr.Validation("malformed join payload")
		} else {
			err = c.hub.Join(ctx, c, p.AppointmentID)
		}
	case EventSendMessage:
		var p SendPayload
		if err = json.Unmarshal(data, &p); err != nil {
			err = httperr.Validation("malformed message payload")
		} else {
			err = c.hub.Send(ctx, c, p.Body)
		}
	case EventTyping:
		var p TypingPayload
		if err = json.Unmarshal(data, &p); err != nil {
			err = httperr.Validation("malformed typing payload")
		} else {
			c.hub.Typing(c, p.Typing)
		}
	default:
		err = httperr.Validation("unknown event %q", event)
	}

	if err != nil {
		c.hub.log.Warn().
			Str("client", c.ID).
			Str("event", event).
			Err(err).
			Msg("chat event failed")
		c.enqueue(Frame{Event: EventError, Data: ErrorPayload{Message: httperr.UserMessage(err)}})
	}
}

// Close transitions the connection to its terminal state, releasing room
// membership and announcing the departure. Safe to call repeatedly and
// concurrently with an in-flight join.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		r := c.room
		c.room = nil
		c.mu.Unlock()

		if r != nil {
			c.hub.detach(r, c, true)
		}
		close(c.done)
		c.hub.connectionClosed()
	})
}

func (c *Client) enqueue(f Frame) {
	select {
	case <-c.done:
	case c.send <- f:
	default:
		c.hub.log.Warn().
			Str("client", c.ID).
			Str("event", f.Event).
			Msg("slow chat consumer, dropping frame")
	}
}

// setRoom swaps the current room, refusing if the connection already closed.
func (c *Client) setRoom(r *room) (prev *room, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false
	}
	prev = c.room
	c.room = r
	return prev, true
}

func (c *Client) currentRoom() *room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
