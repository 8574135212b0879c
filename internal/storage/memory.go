package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hourlytracker/tracker-bot/internal/models"
)

// MemoryStorage keeps everything in process memory. Used for local runs
// without a database and as the storage double in tests.
type MemoryStorage struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   int64
	users    []*models.User
	sleep    map[int64]*models.SleepLog
	energy   map[int64]*models.EnergyLog
	hourly   map[int64]*models.HourlyLog
	thoughts map[int64]*models.ThoughtLog
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		now:      time.Now,
		sleep:    make(map[int64]*models.SleepLog),
		energy:   make(map[int64]*models.EnergyLog),
		hourly:   make(map[int64]*models.HourlyLog),
		thoughts: make(map[int64]*models.ThoughtLog),
	}
}

// WithClock replaces the timestamp source; tests use it to get
// deterministic ordering.
func (s *MemoryStorage) WithClock(now func() time.Time) *MemoryStorage {
	s.now = now
	return s
}

func (s *MemoryStorage) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemoryStorage) FindUser(ctx context.Context, contactID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ContactID == contactID {
			return user, nil
		}
	}
	return nil, nil
}

func (s *MemoryStorage) GetOrCreateUser(ctx context.Context, contactID, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ContactID == contactID {
			return user, nil
		}
	}

	user := &models.User{
		ID:        s.nextIDLocked(),
		ContactID: contactID,
		Name:      name,
		CreatedAt: s.now(),
	}
	s.users = append(s.users, user)
	return user, nil
}

func (s *MemoryStorage) SaveSleepLog(ctx context.Context, log *models.SleepLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextIDLocked()
	log.LoggedAt = s.now()
	if log.SleepDate == "" {
		log.SleepDate = log.LoggedAt.Format("2006-01-02")
	}
	stored := *log
	s.sleep[log.ID] = &stored
	return nil
}

func (s *MemoryStorage) SaveEnergyLog(ctx context.Context, log *models.EnergyLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextIDLocked()
	log.LoggedAt = s.now()
	stored := *log
	s.energy[log.ID] = &stored
	return nil
}

func (s *MemoryStorage) SaveHourlyLog(ctx context.Context, log *models.HourlyLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextIDLocked()
	log.LoggedAt = s.now()
	stored := *log
	s.hourly[log.ID] = &stored
	return nil
}

func (s *MemoryStorage) SaveThoughtLog(ctx context.Context, log *models.ThoughtLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.ID = s.nextIDLocked()
	log.LoggedAt = s.now()
	stored := *log
	s.thoughts[log.ID] = &stored
	return nil
}

func (s *MemoryStorage) LastEntry(ctx context.Context, userID int64, kind models.LogKind) (*models.LastEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *models.LastEntry
	consider := func(candidate *models.LastEntry) {
		if best == nil ||
			candidate.LoggedAt.After(best.LoggedAt) ||
			(candidate.LoggedAt.Equal(best.LoggedAt) && candidate.ID > best.ID) {
			best = candidate
		}
	}

	switch kind {
	case models.KindSleep:
		for _, log := range s.sleep {
			if log.UserID == userID {
				consider(&models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt})
			}
		}
	case models.KindEnergy:
		for _, log := range s.energy {
			if log.UserID == userID {
				consider(&models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt})
			}
		}
	case models.KindHourly:
		for _, log := range s.hourly {
			if log.UserID == userID {
				consider(&models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt})
			}
		}
	case models.KindThought:
		for _, log := range s.thoughts {
			if log.UserID == userID {
				consider(&models.LastEntry{ID: log.ID, Kind: kind, Summary: log.Summary(), LoggedAt: log.LoggedAt})
			}
		}
	default:
		return nil, fmt.Errorf("unknown log kind: %s", kind)
	}

	return best, nil
}

func (s *MemoryStorage) DeleteEntry(ctx context.Context, id int64, kind models.LogKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case models.KindSleep:
		if _, ok := s.sleep[id]; ok {
			delete(s.sleep, id)
			return nil
		}
	case models.KindEnergy:
		if _, ok := s.energy[id]; ok {
			delete(s.energy, id)
			return nil
		}
	case models.KindHourly:
		if _, ok := s.hourly[id]; ok {
			delete(s.hourly, id)
			return nil
		}
	case models.KindThought:
		if _, ok := s.thoughts[id]; ok {
			delete(s.thoughts, id)
			return nil
		}
	default:
		return fmt.Errorf("unknown log kind: %s", kind)
	}
	return fmt.Errorf("no %s entry with id %d", kind, id)
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
