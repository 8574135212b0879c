package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hourlytracker/tracker-bot/internal/models"
	"github.com/hourlytracker/tracker-bot/internal/reminder"
	"github.com/hourlytracker/tracker-bot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testRoom = "100"

type fakeSender struct {
	sent []string // "room|text"
}

func (f *fakeSender) Send(roomID, text string) error {
	f.sent = append(f.sent, roomID+"|"+text)
	return nil
}

func (f *fakeSender) lastReply() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

// stepClock hands out strictly increasing timestamps.
func stepClock() func() time.Time {
	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *fakeSender, *storage.MemoryStorage) {
	t.Helper()
	sender := &fakeSender{}
	store := storage.NewMemoryStorage().WithClock(stepClock())
	scheduler := reminder.NewScheduler(sender, []string{testRoom}, zap.NewNop())
	d := NewDispatcher(store, sender, scheduler, nil, []string{testRoom}, zap.NewNop())
	return d, sender, store
}

func event(text string) InboundEvent {
	return InboundEvent{
		RoomID:      testRoom,
		SenderID:    "31612345678@s.whatsapp.net",
		Text:        text,
		DisplayName: "Sam",
	}
}

func TestUnauthorizedRoomHasNoSideEffects(t *testing.T) {
	d, sender, store := newTestDispatcher(t)

	ev := event("/energy 4")
	ev.RoomID = "999"
	d.Handle(context.Background(), ev)

	assert.Empty(t, sender.sent)
	user, err := store.FindUser(context.Background(), "31612345678")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestEmptyAllowListIgnoresEverything(t *testing.T) {
	sender := &fakeSender{}
	store := storage.NewMemoryStorage()
	scheduler := reminder.NewScheduler(sender, nil, zap.NewNop())
	d := NewDispatcher(store, sender, scheduler, nil, nil, zap.NewNop())

	d.Handle(context.Background(), event("/energy 4"))

	assert.Empty(t, sender.sent)
}

func TestSelfMessagesAreDropped(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	ev := event("/energy 4")
	ev.FromSelf = true
	d.Handle(context.Background(), ev)

	assert.Empty(t, sender.sent)
}

func TestEnergyLogged(t *testing.T) {
	d, sender, store := newTestDispatcher(t)

	d.Handle(context.Background(), event("/energy 4"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "Energy logged")
	assert.Contains(t, sender.lastReply(), "Level: 4/5")
	assert.Contains(t, sender.lastReply(), "User: Sam")

	user, err := store.FindUser(context.Background(), "31612345678")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Sam", user.Name)
}

func TestSleepReplyFormat(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	d.Handle(context.Background(), event("/sleep 23:00 07:00 4 2"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "23:00 → 07:00")
	assert.Contains(t, sender.lastReply(), "Quality: 4/5, Tiredness: 2/5")
}

func TestHourlyLogged(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	d.Handle(context.Background(), event("/checkin 3 deep work block"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "Rating: 3/3")
	assert.Contains(t, sender.lastReply(), "Activity: deep work block")
}

func TestThoughtLogged(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	d.Handle(context.Background(), event("/idea batch the errands"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "Idea logged")
	assert.Contains(t, sender.lastReply(), "batch the errands")
}

func TestUsageErrorWritesNothing(t *testing.T) {
	d, sender, store := newTestDispatcher(t)

	d.Handle(context.Background(), event("/energy 9"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "1-5")

	// Validation happens before user resolution, so not even a user row exists.
	user, err := store.FindUser(context.Background(), "31612345678")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUnknownTextIsSilent(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	d.Handle(context.Background(), event("good morning everyone"))

	assert.Empty(t, sender.sent)
}

func TestHelp(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	d.Handle(context.Background(), event("/help"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "/energy [1-5]")
	assert.Contains(t, sender.lastReply(), "/undo")
	// Plain-text transport: no markdown markers in the reply.
	assert.NotContains(t, sender.lastReply(), "*")
}

func TestTestReminderFansOut(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	d.Handle(context.Background(), event("test reminder"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "Test hourly reminder")
}

func TestUndoIsLastWriteWinsAcrossKinds(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)
	ctx := context.Background()

	d.Handle(ctx, event("/energy 4"))
	d.Handle(ctx, event("/sleep 23:00 07:00 4 2"))
	d.Handle(ctx, event("/hour 2 emails"))

	d.Handle(ctx, event("/undo"))
	assert.Contains(t, sender.lastReply(), "Undone last entry")
	assert.Contains(t, sender.lastReply(), "hourly")

	d.Handle(ctx, event("/undo"))
	assert.Contains(t, sender.lastReply(), "sleep")

	d.Handle(ctx, event("/undo"))
	assert.Contains(t, sender.lastReply(), "energy")

	d.Handle(ctx, event("/undo"))
	assert.Contains(t, sender.lastReply(), "No recent entries found to undo")
}

func TestUndoTieBreakUsesKindScanOrder(t *testing.T) {
	sender := &fakeSender{}
	frozen := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStorage().WithClock(func() time.Time { return frozen })
	scheduler := reminder.NewScheduler(sender, []string{testRoom}, zap.NewNop())
	d := NewDispatcher(store, sender, scheduler, nil, []string{testRoom}, zap.NewNop())
	ctx := context.Background()

	// Both rows carry the same timestamp; sleep is scanned before energy,
	// so it must win the tie regardless of write order.
	d.Handle(ctx, event("/energy 4"))
	d.Handle(ctx, event("/sleep 23:00 07:00 4 2"))

	d.Handle(ctx, event("/undo"))
	assert.Contains(t, sender.lastReply(), "Undone last entry")
	assert.Contains(t, sender.lastReply(), "sleep")

	d.Handle(ctx, event("/undo"))
	assert.Contains(t, sender.lastReply(), "energy")
}

func TestUndoWithNoEntries(t *testing.T) {
	d, sender, _ := newTestDispatcher(t)

	d.Handle(context.Background(), event("/undo"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "No recent entries found to undo")
	assert.Contains(t, sender.lastReply(), "User: Sam")
}

type failingStorage struct {
	storage.Storage
}

func (f *failingStorage) SaveEnergyLog(ctx context.Context, log *models.EnergyLog) error {
	return fmt.Errorf("connection reset")
}

func TestPersistenceErrorGetsGenericAck(t *testing.T) {
	sender := &fakeSender{}
	store := &failingStorage{Storage: storage.NewMemoryStorage()}
	scheduler := reminder.NewScheduler(sender, []string{testRoom}, zap.NewNop())
	d := NewDispatcher(store, sender, scheduler, nil, []string{testRoom}, zap.NewNop())

	d.Handle(context.Background(), event("/energy 4"))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.lastReply(), "error saving your log")
	assert.NotContains(t, sender.lastReply(), "connection reset")
}
