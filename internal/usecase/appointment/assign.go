package appointment

import (
	"context"

	"github.com/clinicavet/vet-scheduler/internal/audit"
	domain "github.com/clinicavet/vet-scheduler/internal/domain/appointment"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

type AssignVet struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewAssignVet(repo domain.Repository, audit *audit.Dispatcher) *AssignVet {
	return &AssignVet{repo: repo, audit: audit}
}

// Execute pairs a veterinarian with a pending appointment, confirming it.
func (uc *AssignVet) Execute(ctx context.Context, adminID, appointmentID, vetID uint) (*models.Appointment, error) {
	ap, err := uc.repo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	vet, err := uc.repo.GetUser(ctx, vetID)
	if err != nil {
		return nil, err
	}
	if vet.Role != models.RoleVet || !vet.Active {
		return nil, httperr.Validation("user %d is not an active veterinarian", vetID)
	}

	if err := domain.AssignVet(ap, vet.ID); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &adminID,
		Action:   "appointment_vet_assigned",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]uint{"vet_id": vet.ID},
	})

	return uc.repo.GetByID(ctx, ap.ID)
}
