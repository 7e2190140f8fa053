package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/clinicavet/vet-scheduler/internal/audit"
	domain "github.com/clinicavet/vet-scheduler/internal/domain/appointment"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/metrics"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

type BookInput struct {
	PetID       uint
	ScheduledAt time.Time
	Reason      string
	Notes       string
}

type BookAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewBookAppointment(repo domain.Repository, audit *audit.Dispatcher) *BookAppointment {
	return &BookAppointment{repo: repo, audit: audit}
}

// Execute books a pending appointment for the acting client. The pet must
// belong to them; the client on the appointment is fixed forever at this
// point.
func (uc *BookAppointment) Execute(ctx context.Context, clientID uint, in BookInput) (*models.Appointment, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, httperr.Validation("a reason for the visit is required")
	}
	if in.ScheduledAt.IsZero() {
		return nil, httperr.Validation("a scheduled time is required")
	}

	pet, err := uc.repo.GetPet(ctx, in.PetID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != clientID {
		return nil, httperr.Forbidden("you can only book appointments for your own pets")
	}

	ap := models.Appointment{
		ClientID:    clientID,
		PetID:       pet.ID,
		ScheduledAt: in.ScheduledAt,
		Reason:      reason,
		Notes:       strings.TrimSpace(in.Notes),
		Status:      string(domain.InitialStatus()),
	}

	if err := uc.repo.Create(ctx, &ap); err != nil {
		return nil, err
	}

	metrics.AppointmentsCreated.Inc()
	uc.audit.Dispatch(audit.Event{
		UserID:   &clientID,
		Action:   "appointment_booked",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return uc.repo.GetByID(ctx, ap.ID)
}
