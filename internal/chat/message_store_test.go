package chat_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/chat"
	dbpkg "github.com/clinicavet/vet-scheduler/internal/db"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One in-memory sqlite database per test; extra pooled connections
	// would each see their own empty database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, dbpkg.Migrate(db))
	return db
}

type fixture struct {
	client  models.User
	vet     models.User
	admin   models.User
	outside models.User
	pet     models.Pet
	ap      models.Appointment
}

func seedAppointment(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		client:  models.User{Name: "Carla", Email: "carla@example.com", PasswordHash: "x", Role: models.RoleClient, Active: true},
		vet:     models.User{Name: "Victor", Email: "victor@example.com", PasswordHash: "x", Role: models.RoleVet, Active: true},
		admin:   models.User{Name: "Ana", Email: "ana@example.com", PasswordHash: "x", Role: models.RoleAdmin, Active: true},
		outside: models.User{Name: "Oscar", Email: "oscar@example.com", PasswordHash: "x", Role: models.RoleClient, Active: true},
	}
	require.NoError(t, db.Create(&f.client).Error)
	require.NoError(t, db.Create(&f.vet).Error)
	require.NoError(t, db.Create(&f.admin).Error)
	require.NoError(t, db.Create(&f.outside).Error)

	f.pet = models.Pet{OwnerID: f.client.ID, Name: "Firulais", Species: "dog"}
	require.NoError(t, db.Create(&f.pet).Error)

	f.ap = models.Appointment{
		ClientID:    f.client.ID,
		VetID:       &f.vet.ID,
		PetID:       f.pet.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Reason:      "vaccination",
		Status:      "confirmed",
	}
	require.NoError(t, db.Create(&f.ap).Error)
	return f
}

func TestMessageRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	store := chat.NewMessageStore(db)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	created, err := store.Create(ctx, f.ap.ID, f.client.ID, "hola doctor")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.SentAt.Before(before))

	msgs, err := store.ListByAppointment(ctx, f.ap.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hola doctor", msgs[0].Body)
	assert.Equal(t, f.client.ID, msgs[0].SenderID)
	assert.Equal(t, "Carla", msgs[0].SenderName)
	assert.Equal(t, models.RoleClient, msgs[0].SenderRole)
	assert.False(t, msgs[0].Read)
}

func TestMessageOrdering(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	store := chat.NewMessageStore(db)
	ctx := context.Background()

	for _, body := range []string{"first", "second", "third"} {
		_, err := store.Create(ctx, f.ap.ID, f.client.ID, body)
		require.NoError(t, err)
	}

	msgs, err := store.ListByAppointment(ctx, f.ap.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)
	assert.Equal(t, "third", msgs[2].Body)
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	store := chat.NewMessageStore(db)
	ctx := context.Background()

	t.Run("script stripped before storing", func(t *testing.T) {
		created, err := store.Create(ctx, f.ap.ID, f.client.ID, "<script>alert(1)</script>hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", created.Body)
	})

	t.Run("empty after sanitization rejected", func(t *testing.T) {
		_, err := store.Create(ctx, f.ap.ID, f.client.ID, "<script>alert(1)</script>")
		require.Error(t, err)
		assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
	})

	t.Run("blank rejected", func(t *testing.T) {
		_, err := store.Create(ctx, f.ap.ID, f.client.ID, "   ")
		require.Error(t, err)
		assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
	})

	t.Run("over 1000 characters rejected", func(t *testing.T) {
		_, err := store.Create(ctx, f.ap.ID, f.client.ID, strings.Repeat("a", 1500))
		require.Error(t, err)
		assert.Equal(t, httperr.KindValidation, httperr.KindOf(err))
	})

	t.Run("exactly 1000 characters accepted", func(t *testing.T) {
		created, err := store.Create(ctx, f.ap.ID, f.client.ID, strings.Repeat("a", 1000))
		require.NoError(t, err)
		assert.Len(t, created.Body, 1000)
	})
}

func TestMarkReadIdempotent(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	store := chat.NewMessageStore(db)
	ctx := context.Background()

	_, err := store.Create(ctx, f.ap.ID, f.vet.ID, "your pet is fine")
	require.NoError(t, err)
	_, err = store.Create(ctx, f.ap.ID, f.vet.ID, "see you next week")
	require.NoError(t, err)
	_, err = store.Create(ctx, f.ap.ID, f.client.ID, "thanks!")
	require.NoError(t, err)

	// Only the vet's two messages count as unread for the client.
	affected, err := store.MarkRead(ctx, f.ap.ID, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = store.MarkRead(ctx, f.ap.ID, f.client.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	msgs, err := store.ListByAppointment(ctx, f.ap.ID)
	require.NoError(t, err)
	assert.True(t, msgs[0].Read)
	assert.True(t, msgs[1].Read)
	assert.False(t, msgs[2].Read, "own message stays untouched")
}

func TestUnreadSummary(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	store := chat.NewMessageStore(db)
	ctx := context.Background()

	// A second appointment for the same client, no vet assigned yet.
	ap2 := models.Appointment{
		ClientID:    f.client.ID,
		PetID:       f.pet.ID,
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Reason:      "checkup",
		Status:      "pending",
	}
	require.NoError(t, db.Create(&ap2).Error)

	_, err := store.Create(ctx, f.ap.ID, f.vet.ID, "results are in")
	require.NoError(t, err)
	_, err = store.Create(ctx, f.ap.ID, f.vet.ID, "call me")
	require.NoError(t, err)
	_, err = store.Create(ctx, ap2.ID, f.admin.ID, "we moved your slot")
	require.NoError(t, err)

	summary, err := store.UnreadSummary(ctx, f.client.ID)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	byAppointment := map[uint]models.UnreadSummary{}
	for _, s := range summary {
		byAppointment[s.AppointmentID] = s
	}
	assert.Equal(t, int64(2), byAppointment[f.ap.ID].UnreadCount)
	assert.Equal(t, "vaccination", byAppointment[f.ap.ID].Reason)
	assert.Equal(t, "Firulais", byAppointment[f.ap.ID].PetName)
	assert.Equal(t, int64(1), byAppointment[ap2.ID].UnreadCount)

	// The outside client participates in nothing.
	summary, err = store.UnreadSummary(ctx, f.outside.ID)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestRecentForUser(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	store := chat.NewMessageStore(db)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		msg := models.Message{
			AppointmentID: f.ap.ID,
			SenderID:      f.vet.ID,
			Body:          "note",
			SentAt:        time.Now().Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	msgs, err := store.RecentForUser(ctx, f.client.ID, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 10, "default limit")

	msgs, err = store.RecentForUser(ctx, f.client.ID, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].SentAt.After(msgs[i-1].SentAt), "descending by send time")
	}

	msgs, err = store.RecentForUser(ctx, f.outside.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
