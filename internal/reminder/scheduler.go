package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a plain-text message to a single room.
type Sender interface {
	Send(roomID, text string) error
}

// Scheduler fires each reminder slot once per calendar day, fanning the
// slot's message out to every allowed room. Delivery is fire-and-forget:
// a failed room is logged and skipped, never retried.
type Scheduler struct {
	sender Sender
	rooms  []string
	slots  []Slot
	now    func() time.Time
	logger *zap.Logger
}

func NewScheduler(sender Sender, rooms []string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sender: sender,
		rooms:  rooms,
		slots:  Slots(),
		now:    time.Now,
		logger: logger,
	}
}

// Start arms one trigger per slot and returns. With no allowed rooms
// nothing is armed at all; rooms added to configuration later are only
// picked up after a restart.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.rooms) == 0 {
		s.logger.Warn("No allowed rooms configured, reminders disabled")
		return nil
	}

	s.logger.Info("Arming reminder slots",
		zap.Int("slots", len(s.slots)),
		zap.Int("rooms", len(s.rooms)))

	for _, slot := range s.slots {
		go s.runSlot(ctx, slot)
	}

	return nil
}

func (s *Scheduler) runSlot(ctx context.Context, slot Slot) {
	for {
		wait := nextRun(s.now(), slot.Hour, slot.Minute).Sub(s.now())
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			s.fire(slot)
		}
	}
}

func (s *Scheduler) fire(slot Slot) {
	for _, room := range s.rooms {
		if err := s.sender.Send(room, slot.Message); err != nil {
			s.logger.Error("Failed to send reminder",
				zap.Error(err),
				zap.String("room", room),
				zap.Int("hour", slot.Hour))
			continue
		}
		s.logger.Info("Reminder sent",
			zap.String("room", room),
			zap.Int("hour", slot.Hour))
	}
}

// SendTest delivers the test reminder to every allowed room once.
func (s *Scheduler) SendTest() {
	for _, room := range s.rooms {
		if err := s.sender.Send(room, testMessage); err != nil {
			s.logger.Error("Failed to send test reminder",
				zap.Error(err),
				zap.String("room", room))
		}
	}
}

// nextRun is the next wall-clock occurrence of hour:minute strictly after
// now, so a slot that just fired waits until tomorrow.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
