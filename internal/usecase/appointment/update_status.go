package appointment

import (
	"context"
	"strings"

	"github.com/clinicavet/vet-scheduler/internal/audit"
	"github.com/clinicavet/vet-scheduler/internal/chat"
	domain "github.com/clinicavet/vet-scheduler/internal/domain/appointment"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

type UpdateStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateStatus(repo domain.Repository, audit *audit.Dispatcher) *UpdateStatus {
	return &UpdateStatus{repo: repo, audit: audit}
}

// Execute applies a status transition. Vets and admins may move an
// appointment they participate in through the whole lifecycle; a client may
// only cancel their own booking.
func (uc *UpdateStatus) Execute(ctx context.Context, actor models.UserView, appointmentID uint, to domain.Status, notes string) (*models.Appointment, error) {
	ap, err := uc.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !chat.CanAccess(ap, actor.ID, actor.Role) {
		return nil, httperr.Forbidden("you are not a participant of this appointment")
	}
	if actor.Role == models.RoleClient && to != domain.StatusCancelled {
		return nil, httperr.Forbidden("clients can only cancel their appointments")
	}

	if err := domain.UpdateStatus(ap, to); err != nil {
		return nil, err
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		ap.Notes = notes
	}

	if err := uc.repo.Update(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &actor.ID,
		Action:   "appointment_status_" + string(to),
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
