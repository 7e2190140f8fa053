package appointment

import (
	"context"

	"github.com/clinicavet/vet-scheduler/internal/chat"
	domain "github.com/clinicavet/vet-scheduler/internal/domain/appointment"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// ForUser lists what the actor is allowed to see: their own bookings for
// clients, their assigned schedule for vets, everything for admins.
func (uc *ListAppointments) ForUser(ctx context.Context, actor models.UserView) ([]models.Appointment, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return uc.repo.ListAll(ctx)
	case models.RoleVet:
		return uc.repo.ListByVet(ctx, actor.ID)
	default:
		return uc.repo.ListByClient(ctx, actor.ID)
	}
}

// Get returns one appointment, participants only.
func (uc *ListAppointments) Get(ctx context.Context, actor models.UserView, appointmentID uint) (*models.Appointment, error) {
	ap, err := uc.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !chat.CanAccess(ap, actor.ID, actor.Role) {
		return nil, httperr.Forbidden("you are not a participant of this appointment")
	}
	return ap, nil
}
