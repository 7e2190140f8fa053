package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicavet/vet-scheduler/internal/models"
	"github.com/clinicavet/vet-scheduler/internal/session"
)

func setupStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return session.NewRedisStore(rdb, time.Hour), mr
}

func TestSessionLifecycle(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	user := models.UserView{ID: 3, Name: "Carla", Email: "carla@example.com", Role: models.RoleClient}

	token, err := store.Create(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user, *got)

	require.NoError(t, store.Delete(ctx, token))

	got, err = store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got, "deleted session reads as no session, not an error")
}

func TestGetUnknownToken(t *testing.T) {
	store, _ := setupStore(t)

	got, err := store.Get(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTokensAreUnique(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	user := models.UserView{ID: 3, Name: "Carla"}
	a, err := store.Create(ctx, user)
	require.NoError(t, err)
	b, err := store.Create(ctx, user)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSessionExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, models.UserView{ID: 3, Name: "Carla"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateKeepsTTL(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, models.UserView{ID: 3, Name: "Carla"})
	require.NoError(t, err)

	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Update(ctx, token, models.UserView{ID: 3, Name: "Carla Renamed"}))

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Carla Renamed", got.Name)

	// The rewrite must not have reset the clock: the original hour expires.
	mr.FastForward(45 * time.Minute)
	got, err = store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
}
