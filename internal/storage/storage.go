package storage

import (
	"context"

	"github.com/hourlytracker/tracker-bot/internal/models"
)

// Storage persists users and the four log kinds. Every Save fills in the
// row's server-assigned id and timestamp before returning.
type Storage interface {
	// FindUser looks up a user by normalized contact id. A missing user is
	// (nil, nil), not an error.
	FindUser(ctx context.Context, contactID string) (*models.User, error)

	// GetOrCreateUser returns the existing user for contactID or creates
	// one named after the display-name hint. Concurrent first contacts can
	// race and create duplicate rows; there is no uniqueness constraint
	// backing this lookup.
	GetOrCreateUser(ctx context.Context, contactID, name string) (*models.User, error)

	SaveSleepLog(ctx context.Context, log *models.SleepLog) error
	SaveEnergyLog(ctx context.Context, log *models.EnergyLog) error
	SaveHourlyLog(ctx context.Context, log *models.HourlyLog) error
	SaveThoughtLog(ctx context.Context, log *models.ThoughtLog) error

	// LastEntry returns the user's most recent row of one kind, or
	// (nil, nil) when the table holds nothing for them.
	LastEntry(ctx context.Context, userID int64, kind models.LogKind) (*models.LastEntry, error)

	// DeleteEntry removes a single log row by id within its kind's table.
	DeleteEntry(ctx context.Context, id int64, kind models.LogKind) error

	Ping(ctx context.Context) error
	Close() error
}
