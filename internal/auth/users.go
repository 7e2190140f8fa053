package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

// GetProfile loads the user record minus the hash.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*models.UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("user not found")
		}
		return nil, httperr.Internal(err)
	}
	view := user.View()
	return &view, nil
}

// UpdateProfile changes name and phone. Email and role are immutable here.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, name, phone string) (*models.UserView, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" || phone == "" {
		return nil, httperr.Validation("name and phone are required")
	}

	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"name": name, "phone": phone}).Error; err != nil {
		return nil, httperr.Internal(err)
	}

	return s.GetProfile(ctx, userID)
}

// ListVets returns active veterinarians, the set a client may be paired with.
func (s *Service) ListVets(ctx context.Context) ([]models.UserView, error) {
	return s.listByRole(ctx, models.RoleVet)
}

// ListClients returns active client accounts. Admin only at the route level.
func (s *Service) ListClients(ctx context.Context) ([]models.UserView, error) {
	return s.listByRole(ctx, models.RoleClient)
}

func (s *Service) listByRole(ctx context.Context, role models.Role) ([]models.UserView, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND active = ?", role, true).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, httperr.Internal(err)
	}

	views := make([]models.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views, nil
}

// Deactivate disables a user account. Rows referencing the user stay intact;
// the account simply cannot log in anymore.
func (s *Service) Deactivate(ctx context.Context, userID uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("active", false)
	if res.Error != nil {
		return httperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return httperr.NotFound("user not found")
	}
	return nil
}
