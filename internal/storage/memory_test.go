package storage

import (
	"context"
	"testing"
	"time"

	"github.com/hourlytracker/tracker-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepClock() func() time.Time {
	base := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestGetOrCreateUser(t *testing.T) {
	s := NewMemoryStorage()
	ctx := context.Background()

	user, err := s.GetOrCreateUser(ctx, "31612345678", "Sam")
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.Name)
	assert.NotZero(t, user.ID)

	again, err := s.GetOrCreateUser(ctx, "31612345678", "Somebody Else")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Sam", again.Name)
}

func TestFindUserMissingIsNil(t *testing.T) {
	s := NewMemoryStorage()

	user, err := s.FindUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSaveAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemoryStorage().WithClock(stepClock())
	ctx := context.Background()

	log := &models.SleepLog{UserID: 1, Bedtime: "23:00", WakeTime: "07:00", Quality: 4, Tiredness: 2}
	require.NoError(t, s.SaveSleepLog(ctx, log))

	assert.NotZero(t, log.ID)
	assert.False(t, log.LoggedAt.IsZero())
	assert.Equal(t, "2024-03-10", log.SleepDate)
}

func TestLastEntryAndDelete(t *testing.T) {
	s := NewMemoryStorage().WithClock(stepClock())
	ctx := context.Background()

	require.NoError(t, s.SaveEnergyLog(ctx, &models.EnergyLog{UserID: 1, Level: 3}))
	second := &models.EnergyLog{UserID: 1, Level: 5}
	require.NoError(t, s.SaveEnergyLog(ctx, second))

	entry, err := s.LastEntry(ctx, 1, models.KindEnergy)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, second.ID, entry.ID)
	assert.Equal(t, "level 5/5", entry.Summary)

	require.NoError(t, s.DeleteEntry(ctx, entry.ID, models.KindEnergy))

	entry, err = s.LastEntry(ctx, 1, models.KindEnergy)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "level 3/5", entry.Summary)
}

func TestLastEntryEmptyTableIsNil(t *testing.T) {
	s := NewMemoryStorage()

	entry, err := s.LastEntry(context.Background(), 1, models.KindThought)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestLastEntryScopedToUser(t *testing.T) {
	s := NewMemoryStorage().WithClock(stepClock())
	ctx := context.Background()

	require.NoError(t, s.SaveHourlyLog(ctx, &models.HourlyLog{UserID: 1, Rating: 2, Activity: "mine"}))
	require.NoError(t, s.SaveHourlyLog(ctx, &models.HourlyLog{UserID: 2, Rating: 3, Activity: "theirs"}))

	entry, err := s.LastEntry(ctx, 1, models.KindHourly)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Contains(t, entry.Summary, "mine")
}

func TestDeleteMissingEntryErrors(t *testing.T) {
	s := NewMemoryStorage()

	err := s.DeleteEntry(context.Background(), 42, models.KindSleep)
	assert.Error(t, err)
}
