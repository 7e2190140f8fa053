package session

import (
	"context"

	"github.com/clinicavet/vet-scheduler/internal/models"
)

// CookieName carries the opaque session token between browser and API.
const CookieName = "session_token"

// Store maps opaque tokens to identity snapshots. Get returns (nil, nil)
// for an unknown or expired token so callers can distinguish "no session"
// from a store failure.
type Store interface {
	Create(ctx context.Context, user models.UserView) (string, error)
	Get(ctx context.Context, token string) (*models.UserView, error)
	Update(ctx context.Context, token string, user models.UserView) error
	Delete(ctx context.Context, token string) error
}
