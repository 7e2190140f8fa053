package models

import "time"

// Message is append-only: once created, only the Read flag ever changes,
// flipped in bulk when the counterpart views the conversation.
type Message struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint        `gorm:"index;not null" json:"appointment_id"`
	Appointment   Appointment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	SenderID uint `gorm:"not null" json:"sender_id"`
	Sender   User `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Body string `gorm:"size:1000;not null" json:"body"`
	Read bool   `gorm:"default:false" json:"read"`

	SentAt time.Time `gorm:"autoCreateTime;index" json:"sent_at"`
}

// MessageView is a message joined with its sender for delivery to clients.
type MessageView struct {
	ID            uint      `json:"id"`
	AppointmentID uint      `json:"appointment_id"`
	SenderID      uint      `json:"sender_id"`
	SenderName    string    `json:"sender_name"`
	SenderRole    Role      `json:"sender_role"`
	Body          string    `json:"body"`
	Read          bool      `json:"read"`
	SentAt        time.Time `json:"sent_at"`
}

// UnreadSummary aggregates unread counts per appointment for one viewer.
type UnreadSummary struct {
	AppointmentID uint   `json:"appointment_id"`
	UnreadCount   int64  `json:"unread_count"`
	Reason        string `json:"reason"`
	PetName       string `json:"pet_name"`
}
