package chat_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clinicavet/vet-scheduler/internal/chat"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	infraRepo "github.com/clinicavet/vet-scheduler/internal/infra/repository"
	"github.com/clinicavet/vet-scheduler/internal/models"
)

func newTestHub(t *testing.T, db *gorm.DB) *chat.Hub {
	t.Helper()
	log := zerolog.New(os.Stderr).Level(zerolog.Disabled)
	repo := infraRepo.NewAppointmentGormRepository(db)
	return chat.NewHub(repo, chat.NewMessageStore(db), log)
}

// recvFrame pulls the next frame off a client's outbox, failing the test if
// nothing arrives quickly.
func recvFrame(t *testing.T, c *chat.Client) chat.Frame {
	t.Helper()
	select {
	case f := <-c.Outbox():
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return chat.Frame{}
	}
}

func assertNoFrame(t *testing.T, c *chat.Client) {
	t.Helper()
	select {
	case f := <-c.Outbox():
		t.Fatalf("unexpected frame %q", f.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestJoinDeniedNeverRegistered(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)
	ctx := context.Background()

	stranger := hub.Register(f.outside.View())
	defer stranger.Close()

	err := hub.Join(ctx, stranger, f.ap.ID)
	require.Error(t, err)
	assert.Equal(t, httperr.KindForbidden, httperr.KindOf(err))
	assert.Equal(t, 0, hub.RoomSize(f.ap.ID))
	assertNoFrame(t, stranger)
}

func TestJoinUnknownAppointment(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)

	c := hub.Register(f.client.View())
	defer c.Close()

	err := hub.Join(context.Background(), c, 9999)
	require.Error(t, err)
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
	assert.Equal(t, 0, hub.RoomSize(9999))
}

func TestSendRequiresJoin(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)

	c := hub.Register(f.client.View())
	defer c.Close()

	err := hub.Send(context.Background(), c, "hola")
	require.Error(t, err)
	assert.Equal(t, httperr.KindUnauthorized, httperr.KindOf(err))
}

func TestChatSession(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)
	ctx := context.Background()

	client := hub.Register(f.client.View())
	vet := hub.Register(f.vet.View())
	defer vet.Close()

	// Client joins an empty room and receives an empty history.
	require.NoError(t, hub.Join(ctx, client, f.ap.ID))
	frame := recvFrame(t, client)
	assert.Equal(t, chat.EventPreviousMessages, frame.Event)
	history := frame.Data.(chat.HistoryPayload)
	assert.Empty(t, history.Messages)
	assert.Equal(t, "vaccination", history.Appointment.Reason)
	assert.Equal(t, "Firulais", history.Appointment.PetName)
	assert.Equal(t, 1, hub.RoomSize(f.ap.ID))

	// Vet joins; the client hears about it, the vet does not hear itself.
	require.NoError(t, hub.Join(ctx, vet, f.ap.ID))
	frame = recvFrame(t, vet)
	assert.Equal(t, chat.EventPreviousMessages, frame.Event)

	frame = recvFrame(t, client)
	assert.Equal(t, chat.EventParticipantJoined, frame.Event)
	assert.Equal(t, "Victor", frame.Data.(chat.PresencePayload).UserName)
	assertNoFrame(t, vet)
	assert.Equal(t, 2, hub.RoomSize(f.ap.ID))

	// Vet sends; both members receive the same persisted message.
	require.NoError(t, hub.Send(ctx, vet, "hola"))
	for _, c := range []*chat.Client{client, vet} {
		frame = recvFrame(t, c)
		assert.Equal(t, chat.EventNewMessage, frame.Event)
		msg := frame.Data.(models.MessageView)
		assert.Equal(t, "hola", msg.Body)
		assert.Equal(t, "Victor", msg.SenderName)
		assert.Equal(t, models.RoleVet, msg.SenderRole)
	}

	// Typing goes to the other member only.
	hub.Typing(vet, true)
	frame = recvFrame(t, client)
	assert.Equal(t, chat.EventTypingIndicator, frame.Event)
	assert.True(t, frame.Data.(chat.TypingIndicatorPayload).Typing)
	assertNoFrame(t, vet)

	// Client disconnects; the vet hears the departure.
	client.Close()
	frame = recvFrame(t, vet)
	assert.Equal(t, chat.EventParticipantLeft, frame.Event)
	assert.Equal(t, "Carla", frame.Data.(chat.PresencePayload).UserName)
	assert.Equal(t, 1, hub.RoomSize(f.ap.ID))
}

func TestRejoinSameRoom(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)
	ctx := context.Background()

	client := hub.Register(f.client.View())
	defer client.Close()
	vet := hub.Register(f.vet.View())
	defer vet.Close()

	require.NoError(t, hub.Join(ctx, client, f.ap.ID))
	recvFrame(t, client)
	require.NoError(t, hub.Join(ctx, vet, f.ap.ID))
	recvFrame(t, vet)
	recvFrame(t, client)

	// Rejoining replays the history but announces nothing.
	require.NoError(t, hub.Join(ctx, client, f.ap.ID))
	frame := recvFrame(t, client)
	assert.Equal(t, chat.EventPreviousMessages, frame.Event)
	assertNoFrame(t, vet)
	assert.Equal(t, 2, hub.RoomSize(f.ap.ID))
}

func TestJoinSwitchesRooms(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)
	ctx := context.Background()

	ap2 := models.Appointment{
		ClientID:    f.client.ID,
		PetID:       f.pet.ID,
		ScheduledAt: time.Now().Add(48 * time.Hour),
		Reason:      "checkup",
		Status:      "pending",
	}
	require.NoError(t, db.Create(&ap2).Error)

	client := hub.Register(f.client.View())
	defer client.Close()
	vet := hub.Register(f.vet.View())
	defer vet.Close()

	require.NoError(t, hub.Join(ctx, client, f.ap.ID))
	recvFrame(t, client)
	require.NoError(t, hub.Join(ctx, vet, f.ap.ID))
	recvFrame(t, vet)
	recvFrame(t, client)

	require.NoError(t, hub.Join(ctx, client, ap2.ID))
	frame := recvFrame(t, vet)
	assert.Equal(t, chat.EventParticipantLeft, frame.Event)
	assert.Equal(t, 1, hub.RoomSize(f.ap.ID))
	assert.Equal(t, 1, hub.RoomSize(ap2.ID))
}

func TestJoinMarksUnreadRead(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)
	ctx := context.Background()
	store := chat.NewMessageStore(db)

	_, err := store.Create(ctx, f.ap.ID, f.vet.ID, "before you arrived")
	require.NoError(t, err)

	client := hub.Register(f.client.View())
	defer client.Close()
	require.NoError(t, hub.Join(ctx, client, f.ap.ID))

	frame := recvFrame(t, client)
	history := frame.Data.(chat.HistoryPayload)
	require.Len(t, history.Messages, 1)

	summary, err := store.UnreadSummary(ctx, f.client.ID)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestHandleEventErrors(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)
	ctx := context.Background()

	c := hub.Register(f.client.View())
	defer c.Close()

	t.Run("unknown event", func(t *testing.T) {
		c.HandleEvent(ctx, "dance", nil)
		frame := recvFrame(t, c)
		assert.Equal(t, chat.EventError, frame.Event)
	})

	t.Run("malformed payload", func(t *testing.T) {
		c.HandleEvent(ctx, chat.EventJoinChat, json.RawMessage(`{"appointment_id":"nope"}`))
		frame := recvFrame(t, c)
		assert.Equal(t, chat.EventError, frame.Event)
	})

	t.Run("send before join surfaces as error frame", func(t *testing.T) {
		c.HandleEvent(ctx, chat.EventSendMessage, json.RawMessage(`{"body":"hola"}`))
		frame := recvFrame(t, c)
		require.Equal(t, chat.EventError, frame.Event)
		assert.Equal(t, "join a chat room before sending messages",
			frame.Data.(chat.ErrorPayload).Message)
	})

	t.Run("valid join dispatches", func(t *testing.T) {
		payload, _ := json.Marshal(chat.JoinPayload{AppointmentID: f.ap.ID})
		c.HandleEvent(ctx, chat.EventJoinChat, payload)
		frame := recvFrame(t, c)
		assert.Equal(t, chat.EventPreviousMessages, frame.Event)
	})
}

func TestCloseIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	f := seedAppointment(t, db)
	hub := newTestHub(t, db)

	c := hub.Register(f.client.View())
	require.NoError(t, hub.Join(context.Background(), c, f.ap.ID))
	recvFrame(t, c)

	c.Close()
	c.Close()
	assert.Equal(t, 0, hub.RoomSize(f.ap.ID))

	select {
	case <-c.Done():
	default:
		t.Fatal("done channel not closed")
	}

	// A closed connection cannot rejoin.
	err := hub.Join(context.Background(), c, f.ap.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, hub.RoomSize(f.ap.ID))
}
