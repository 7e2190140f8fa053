package chat

import "github.com/clinicavet/vet-scheduler/internal/models"

// Inbound event names.
const (
	EventJoinChat    = "join-chat"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
)

// Outbound event names.
const (
	EventPreviousMessages  = "previous-messages"
	EventNewMessage        = "new-message"
	EventParticipantJoined = "participant-joined"
	EventParticipantLeft   = "participant-left"
	EventTypingIndicator   = "typing-indicator"
	EventError             = "error"
)

// Frame is one named event on the wire.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type JoinPayload struct {
	AppointmentID uint `json:"appointment_id"`
}

type SendPayload struct {
	Body string `json:"body"`
}

type TypingPayload struct {
	Typing bool `json:"typing"`
}

// AppointmentSummary is the denormalized header pushed with the history.
type AppointmentSummary struct {
	ID         uint   `json:"id"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	PetName    string `json:"pet_name"`
	ClientName string `json:"client_name"`
	VetName    string `json:"vet_name"`
}

type HistoryPayload struct {
	Messages    []models.MessageView `json:"messages"`
	Appointment AppointmentSummary   `json:"appointment"`
}

type PresencePayload struct {
	UserName string      `json:"user_name"`
	UserRole models.Role `json:"user_role"`
}

type TypingIndicatorPayload struct {
	UserName string `json:"user_name"`
	Typing   bool   `json:"typing"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func summarize(ap *models.Appointment) AppointmentSummary {
	s := AppointmentSummary{
		ID:         ap.ID,
		Reason:     ap.Reason,
		Status:     ap.Status,
		PetName:    ap.Pet.Name,
		ClientName: ap.Client.Name,
	}
	if ap.Vet != nil {
		s.VetName = ap.Vet.Name
	}
	return s
}
