package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/clinicavet/vet-scheduler/internal/chat"
	domain "github.com/clinicavet/vet-scheduler/internal/domain/appointment"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/httpresp"
	"github.com/clinicavet/vet-scheduler/internal/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// maxFrameSize bounds an inbound chat frame; message bodies cap at 1000
	// runes, so anything larger is garbage.
	maxFrameSize = 8 << 10
)

type ChatHandler struct {
	hub          *chat.Hub
	messages     *chat.MessageStore
	appointments domain.Repository
	upgrader     websocket.Upgrader
	log          zerolog.Logger
}

func NewChatHandler(hub *chat.Hub, messages *chat.MessageStore, appointments domain.Repository, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		hub:          hub,
		messages:     messages,
		appointments: appointments,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin is already handled by the CORS middleware; the
			// cookie-based auth middleware gates who gets this far.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeWS upgrades the request and runs the connection until it drops.
func (h *ChatHandler) ServeWS(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		httperr.WriteError(c, httperr.Unauthorized("not authenticated"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := h.hub.Register(user)
	go h.writeLoop(conn, client)
	h.readLoop(c, conn, client)
}

func (h *ChatHandler) readLoop(c *gin.Context, conn *websocket.Conn, client *chat.Client) {
	defer func() {
		client.Close()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		client.HandleEvent(c.Request.Context(), frame.Event, frame.Data)
	}
}

func (h *ChatHandler) writeLoop(conn *websocket.Conn, client *chat.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case <-client.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case frame := <-client.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// --------- REST mirror ---------

// History returns the message history plus appointment summary, marking the
// viewer's unread messages as read — same semantics as a room join.
func (h *ChatHandler) History(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.WriteError(c, httperr.Validation("invalid appointment id"))
		return
	}

	user, _ := middleware.UserFromContext(c)
	ctx := c.Request.Context()

	ap, err := h.appointments.GetByID(ctx, uint(id))
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	if !chat.CanAccess(ap, user.ID, user.Role) {
		httperr.WriteError(c, httperr.Forbidden("you do not have access to this appointment's chat"))
		return
	}

	messages, err := h.messages.ListByAppointment(ctx, ap.ID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	if _, err := h.messages.MarkRead(ctx, ap.ID, user.ID); err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"messages": messages,
		"appointment": gin.H{
			"id":     ap.ID,
			"reason": ap.Reason,
			"status": ap.Status,
		},
	})
}

func (h *ChatHandler) Unread(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	summary, err := h.messages.UnreadSummary(c.Request.Context(), user.ID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"unread": summary})
}

func (h *ChatHandler) Recent(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	messages, err := h.messages.RecentForUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"messages": messages})
}
