package appointment

import (
	"context"
	"time"

	"github.com/clinicavet/vet-scheduler/internal/models"
)

type Repository interface {
	// -------- Appointment --------
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	Create(ctx context.Context, ap *models.Appointment) error
	Update(ctx context.Context, ap *models.Appointment) error

	ListByClient(ctx context.Context, clientID uint) ([]models.Appointment, error)
	ListByVet(ctx context.Context, vetID uint) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
	ListForRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error)

	// -------- Stats --------
	CountByStatus(ctx context.Context, since time.Time) (map[string]int64, error)
	CountForRange(ctx context.Context, start, end time.Time) (int64, error)

	// -------- Referenced entities --------
	GetPet(ctx context.Context, petID uint) (*models.Pet, error)
	GetUser(ctx context.Context, userID uint) (*models.User, error)
}
