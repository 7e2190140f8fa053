package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Pet").
		Preload("Client").
		Preload("Vet").
		First(&ap, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("appointment not found")
		}
		return nil, httperr.Internal(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) Create(ctx context.Context, ap *models.Appointment) error {
	if err := r.db.WithContext(ctx).Create(ap).Error; err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (r *AppointmentGormRepository) Update(ctx context.Context, ap *models.Appointment) error {
	if err := r.db.WithContext(ctx).Save(ap).Error; err != nil {
		return httperr.Internal(err)
	}
	return nil
}

func (r *AppointmentGormRepository) ListByClient(ctx context.Context, clientID uint) ([]models.Appointment, error) {
	return r.list(ctx, r.db.Where("client_id = ?", clientID))
}

func (r *AppointmentGormRepository) ListByVet(ctx context.Context, vetID uint) ([]models.Appointment, error) {
	return r.list(ctx, r.db.Where("vet_id = ?", vetID))
}

func (r *AppointmentGormRepository) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return r.list(ctx, r.db)
}

func (r *AppointmentGormRepository) ListForRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	return r.list(ctx, r.db.Where("scheduled_at >= ? AND scheduled_at < ?", start, end))
}

func (r *AppointmentGormRepository) list(ctx context.Context, q *gorm.DB) ([]models.Appointment, error) {
	var aps []models.Appointment
	err := q.WithContext(ctx).
		Preload("Pet").
		Preload("Client").
		Preload("Vet").
		Order("scheduled_at DESC").
		Find(&aps).Error
	if err != nil {
		return nil, httperr.Internal(err)
	}
	return aps, nil
}

// --------------------------------------------------
// Stats
// --------------------------------------------------

func (r *AppointmentGormRepository) CountByStatus(ctx context.Context, since time.Time) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("status, COUNT(*) AS total").
		Where("scheduled_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, httperr.Internal(err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *AppointmentGormRepository) CountForRange(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("scheduled_at >= ? AND scheduled_at < ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, httperr.Internal(err)
	}
	return count, nil
}

// --------------------------------------------------
// Referenced entities
// --------------------------------------------------

func (r *AppointmentGormRepository) GetPet(ctx context.Context, petID uint) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).First(&pet, petID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("pet not found")
		}
		return nil, httperr.Internal(err)
	}
	return &pet, nil
}

func (r *AppointmentGormRepository) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("user not found")
		}
		return nil, httperr.Internal(err)
	}
	return &user, nil
}
