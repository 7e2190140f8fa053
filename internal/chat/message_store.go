package chat

import (
	"context"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

const defaultRecentLimit = 10

// MessageStore persists chat messages and the per-appointment read state.
type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Create sanitizes and validates the body, then persists the message.
// A body that is empty once the markup is stripped is rejected.
func (s *MessageStore) Create(ctx context.Context, appointmentID, senderID uint, body string) (*models.MessageView, error) {
	clean := SanitizeBody(body)
	if clean == "" {
		return nil, httperr.Validation("message cannot be empty")
	}
	if utf8.RuneCountInString(clean) > MaxMessageLen {
		return nil, httperr.Validation("message is too long (max %d characters)", MaxMessageLen)
	}

	msg := models.Message{
		AppointmentID: appointmentID,
		SenderID:      senderID,
		Body:          clean,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, httperr.Internal(err)
	}

	return &models.MessageView{
		ID:            msg.ID,
		AppointmentID: msg.AppointmentID,
		SenderID:      msg.SenderID,
		Body:          msg.Body,
		SentAt:        msg.SentAt,
	}, nil
}

// ListByAppointment returns the full history ascending by send time, joined
// with the sender's name and role.
func (s *MessageStore) ListByAppointment(ctx context.Context, appointmentID uint) ([]models.MessageView, error) {
	var views []models.MessageView
	err := s.db.WithContext(ctx).
		Table("messages").
		Select("messages.id, messages.appointment_id, messages.sender_id, " +
			"users.name AS sender_name, users.role AS sender_role, " +
			"messages.body, messages.read, messages.sent_at").
		Joins("JOIN users ON users.id = messages.sender_id").
		Where("messages.appointment_id = ?", appointmentID).
		Order("messages.sent_at ASC, messages.id ASC").
		Scan(&views).Error
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return views, nil
}

// MarkRead flips read=true on every message in the appointment authored by
// someone other than the viewer. Idempotent: a second call affects zero rows.
func (s *MessageStore) MarkRead(ctx context.Context, appointmentID, viewerID uint) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("appointment_id = ? AND sender_id <> ? AND read = ?", appointmentID, viewerID, false).
		Update("read", true)
	if res.Error != nil {
		return 0, httperr.Internal(res.Error)
	}
	return res.RowsAffected, nil
}

// UnreadSummary aggregates unread counts per appointment across every
// appointment where the viewer participates as client or assigned vet.
func (s *MessageStore) UnreadSummary(ctx context.Context, viewerID uint) ([]models.UnreadSummary, error) {
	var summaries []models.UnreadSummary
	err := s.db.WithContext(ctx).
		Table("messages").
		Select("messages.appointment_id, COUNT(*) AS unread_count, " +
			"appointments.reason, pets.name AS pet_name").
		Joins("JOIN appointments ON appointments.id = messages.appointment_id").
		Joins("JOIN pets ON pets.id = appointments.pet_id").
		Where("messages.read = ? AND messages.sender_id <> ?", false, viewerID).
		Where("appointments.client_id = ? OR appointments.vet_id = ?", viewerID, viewerID).
		Group("messages.appointment_id, appointments.reason, pets.name").
		Scan(&summaries).Error
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return summaries, nil
}

// RecentForUser returns the viewer's latest messages across all their
// appointments, newest first, capped at limit (default 10).
func (s *MessageStore) RecentForUser(ctx context.Context, viewerID uint, limit int) ([]models.MessageView, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var views []models.MessageView
	err := s.db.WithContext(ctx).
		Table("messages").
		Select("messages.id, messages.appointment_id, messages.sender_id, "+
			"users.name AS sender_name, users.role AS sender_role, "+
			"messages.body, messages.read, messages.sent_at").
		Joins("JOIN users ON users.id = messages.sender_id").
		Joins("JOIN appointments ON appointments.id = messages.appointment_id").
		Where("appointments.client_id = ? OR appointments.vet_id = ?", viewerID, viewerID).
		Order("messages.sent_at DESC, messages.id DESC").
		Limit(limit).
		Scan(&views).Error
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return views, nil
}
