package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/config"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
	"github.com/clinicavet/vet-scheduler/internal/validators"
)

// bcrypt cost for new password hashes.
const hashCost = 10

const minPasswordLen = 6

type Service struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// Authenticate verifies credentials against active users. Both "unknown
// email" and "wrong password" collapse into the same generic error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.UserView, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND active = ?", email, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.Unauthorized("invalid email or password")
		}
		return nil, httperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, httperr.Unauthorized("invalid email or password")
	}

	view := user.View()
	return &view, nil
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Register creates a client account. The role is always client: elevation to
// vet or admin happens out of band.
func (s *Service) Register(ctx context.Context, in RegisterInput) (uint, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if name == "" || email == "" || in.Password == "" {
		return 0, httperr.Validation("name, email and password are required")
	}
	if !validators.IsEmailValid(email) {
		return 0, httperr.Validation("invalid email format")
	}
	if len(in.Password) < minPasswordLen {
		return 0, httperr.Validation("password must be at least %d characters", minPasswordLen)
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return 0, httperr.Internal(err)
	}
	if count > 0 {
		return 0, httperr.Validation("email is already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return 0, httperr.Internal(err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         models.RoleClient,
		Active:       true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return 0, httperr.Internal(err)
	}
	return user.ID, nil
}

// ChangePassword re-verifies the current password before rehashing.
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.NotFound("user not found")
		}
		return httperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return httperr.Unauthorized("current password is incorrect")
	}
	if len(newPassword) < minPasswordLen {
		return httperr.Validation("password must be at least %d characters", minPasswordLen)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), hashCost)
	if err != nil {
		return httperr.Internal(err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", string(hashed)).Error; err != nil {
		return httperr.Internal(err)
	}
	return nil
}

// HasRole reports whether the user holds one of the allowed roles.
func HasRole(user models.UserView, allowed ...models.Role) bool {
	for _, role := range allowed {
		if user.Role == role {
			return true
		}
	}
	return false
}

// GenerateToken issues a bearer JWT for non-browser clients. Browser clients
// use the session cookie instead; both resolve to the same identity snapshot.
func (s *Service) GenerateToken(user models.UserView) (string, error) {
	claims := jwt.MapClaims{
		"sub":   float64(user.ID),
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   time.Now().Add(s.cfg.SessionTTL).Unix(),
		"iat":   time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

// ParseToken validates a bearer JWT and rebuilds the identity snapshot.
func (s *Service) ParseToken(tokenString string) (*models.UserView, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, httperr.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, httperr.Unauthorized("invalid token claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, httperr.Unauthorized("invalid token payload")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &models.UserView{
		ID:    uint(sub),
		Name:  name,
		Email: email,
		Role:  models.Role(role),
	}, nil
}
