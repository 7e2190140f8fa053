package chat

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/metrics"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

// AppointmentDirectory resolves an appointment with its pet, client and vet
// loaded. Implemented by the gorm appointment repository.
type AppointmentDirectory interface {
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
}

// Messages is the persistence contract the hub needs.
type Messages interface {
	Create(ctx context.Context, appointmentID, senderID uint, body string) (*models.MessageView, error)
	ListByAppointment(ctx context.Context, appointmentID uint) ([]models.MessageView, error)
	MarkRead(ctx context.Context, appointmentID, viewerID uint) (int64, error)
}

// Hub owns the live room state: which connections are members of which
// appointment room. Each room carries its own lock so unrelated rooms never
// serialize each other; the hub lock only guards the room table itself.
type Hub struct {
	appointments AppointmentDirectory
	messages     Messages
	log          zerolog.Logger

	mu    sync.Mutex
	rooms map[uint]*room
}

func NewHub(appointments AppointmentDirectory, messages Messages, log zerolog.Logger) *Hub {
	return &Hub{
		appointments: appointments,
		messages:     messages,
		log:          log,
		rooms:        make(map[uint]*room),
	}
}

// Register creates a connection handle for an authenticated user.
func (h *Hub) Register(user models.UserView) *Client {
	metrics.ChatConnections.Inc()
	return newClient(h, user)
}

func (h *Hub) connectionClosed() {
	metrics.ChatConnections.Dec()
}

// Join admits the connection into the appointment's room. The appointment
// must exist and the access policy must grant entry; a denied connection is
// never registered as a member. On success the full history plus an
// appointment summary goes to the joiner, messages from others are marked
// read, and the rest of the room hears participant-joined. Joining again
// from the same connection re-registers without erroring; joining a
// different room leaves the previous one first.
func (h *Hub) Join(ctx context.Context, c *Client, appointmentID uint) error {
	ap, err := h.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if !CanAccess(ap, c.User.ID, c.User.Role) {
		return httperr.Forbidden("you do not have access to this appointment's chat")
	}

	r := h.room(appointmentID)

	prev, ok := c.setRoom(r)
	if !ok {
		// Connection closed while the access check was in flight.
		h.detach(r, c, false)
		return nil
	}
	if prev != nil && prev != r {
		h.detach(prev, c, true)
	}

	r.mu.Lock()
	_, rejoining := r.members[c]
	r.members[c] = struct{}{}
	r.mu.Unlock()

	if c.isClosed() {
		// Close raced the membership write; undo it quietly.
		h.detach(r, c, false)
		return nil
	}

	history, err := h.messages.ListByAppointment(ctx, appointmentID)
	if err != nil {
		h.detach(r, c, false)
		c.setRoom(nil)
		return err
	}
	if _, err := h.messages.MarkRead(ctx, appointmentID, c.User.ID); err != nil {
		h.log.Error().Err(err).Uint("appointment", appointmentID).Msg("mark read failed")
	}

	c.enqueue(Frame{Event: EventPreviousMessages, Data: HistoryPayload{
		Messages:    history,
		Appointment: summarize(ap),
	}})

	if !rejoining {
		r.broadcast(Frame{Event: EventParticipantJoined, Data: PresencePayload{
			UserName: c.User.Name,
			UserRole: c.User.Role,
		}}, c)
	}

	metrics.RoomJoins.Inc()
	h.log.Info().
		Uint("appointment", appointmentID).
		Uint("user", c.User.ID).
		Msg("joined chat room")
	return nil
}

// Send persists the message and fans it out to every room member, sender
// included. Permission was anchored at join time, so no policy re-check
// happens here; the room lock is the single serialization point that makes
// delivery order equal store-acceptance order.
func (h *Hub) Send(ctx context.Context, c *Client, body string) error {
	r := c.currentRoom()
	if r == nil {
		return httperr.Unauthorized("join a chat room before sending messages")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	view, err := h.messages.Create(ctx, r.id, c.User.ID, body)
	if err != nil {
		return err
	}
	view.SenderName = c.User.Name
	view.SenderRole = c.User.Role

	frame := Frame{Event: EventNewMessage, Data: *view}
	for m := range r.members {
		m.enqueue(frame)
	}

	metrics.MessagesSent.Inc()
	return nil
}

// Typing relays a fire-and-forget presence signal to the other members.
// Dropped silently when the connection has not joined a room.
func (h *Hub) Typing(c *Client, typing bool) {
	r := c.currentRoom()
	if r == nil {
		return
	}
	r.broadcast(Frame{Event: EventTypingIndicator, Data: TypingIndicatorPayload{
		UserName: c.User.Name,
		Typing:   typing,
	}}, c)
}

// RoomSize reports the current member count of an appointment's room.
func (h *Hub) RoomSize(appointmentID uint) int {
	h.mu.Lock()
	r, ok := h.rooms[appointmentID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

func (h *Hub) room(id uint) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[id]
	if !ok {
		r = &room{id: id, members: make(map[*Client]struct{})}
		h.rooms[id] = r
	}
	return r
}

// detach removes the member, drops the room once empty, and optionally
// announces the departure to whoever stayed behind.
func (h *Hub) detach(r *room, c *Client, announce bool) {
	h.mu.Lock()
	r.mu.Lock()
	_, wasMember := r.members[c]
	delete(r.members, c)
	if len(r.members) == 0 {
		delete(h.rooms, r.id)
	}
	rest := make([]*Client, 0, len(r.members))
	for m := range r.members {
		rest = append(rest, m)
	}
	r.mu.Unlock()
	h.mu.Unlock()

	if wasMember && announce {
		frame := Frame{Event: EventParticipantLeft, Data: PresencePayload{
			UserName: c.User.Name,
			UserRole: c.User.Role,
		}}
		for _, m := range rest {
			m.enqueue(frame)
		}
	}
}

type room struct {
	id uint

	mu      sync.Mutex
	members map[*Client]struct{}
}

// broadcast fans a frame out to every member except the given one.
func (r *room) broadcast(f Frame, except *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for m := range r.members {
		if m == except {
			continue
		}
		m.enqueue(f)
	}
}
