package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hourlytracker/tracker-bot/internal/classifier"
	"github.com/hourlytracker/tracker-bot/internal/command"
	"github.com/hourlytracker/tracker-bot/internal/models"
	"github.com/hourlytracker/tracker-bot/internal/reminder"
	"github.com/hourlytracker/tracker-bot/internal/storage"
	"go.uber.org/zap"
)

// InboundEvent is the transport-agnostic shape of a received chat message.
type InboundEvent struct {
	RoomID      string
	SenderID    string
	FromSelf    bool
	Text        string
	DisplayName string
}

// Sender delivers a plain-text reply to a room.
type Sender interface {
	Send(roomID, text string) error
}

// Dispatcher routes inbound events: allow-list filter, command parsing,
// user resolution, log writes, undo. Each event is handled in isolation;
// a failure is logged and acknowledged to the room, never propagated.
type Dispatcher struct {
	storage    storage.Storage
	sender     Sender
	scheduler  *reminder.Scheduler
	classifier classifier.Classifier
	allowed    map[string]struct{}
	logger     *zap.Logger
}

func NewDispatcher(
	store storage.Storage,
	sender Sender,
	scheduler *reminder.Scheduler,
	clf classifier.Classifier,
	allowedRooms []string,
	logger *zap.Logger,
) *Dispatcher {
	allowed := make(map[string]struct{}, len(allowedRooms))
	for _, room := range allowedRooms {
		allowed[room] = struct{}{}
	}

	return &Dispatcher{
		storage:    store,
		sender:     sender,
		scheduler:  scheduler,
		classifier: clf,
		allowed:    allowed,
		logger:     logger,
	}
}

// Handle processes one inbound event: validate, resolve user, write, reply.
func (d *Dispatcher) Handle(ctx context.Context, ev InboundEvent) {
	if ev.FromSelf || strings.TrimSpace(ev.Text) == "" {
		return
	}

	log := d.logger.With(
		zap.String("event_id", uuid.New().String()),
		zap.String("room", ev.RoomID))

	if len(d.allowed) == 0 {
		log.Warn("No allowed rooms configured, ignoring all messages")
		return
	}
	if _, ok := d.allowed[ev.RoomID]; !ok {
		log.Info("Ignoring message from unauthorized room")
		return
	}

	cmd, err := command.Parse(ev.Text)
	if err != nil {
		var usage *command.UsageError
		if errors.As(err, &usage) {
			d.reply(log, ev.RoomID, usage.Reply)
		}
		return
	}

	switch cmd.Kind {
	case command.None:
		// Non-command chatter gets no feedback.
	case command.Help:
		d.reply(log, ev.RoomID, helpMessage)
	case command.TestReminder:
		log.Info("Sending test reminder")
		d.scheduler.SendTest()
	case command.Undo:
		d.handleUndo(ctx, log, ev)
	default:
		d.handleLog(ctx, log, ev, cmd)
	}
}

func (d *Dispatcher) handleLog(ctx context.Context, log *zap.Logger, ev InboundEvent, cmd command.Command) {
	user, err := d.resolveUser(ctx, ev)
	if err != nil {
		log.Error("Failed to resolve user",
			zap.Error(err),
			zap.String("contact", models.NormalizeContactID(ev.SenderID)))
		d.reply(log, ev.RoomID, genericErrorMessage)
		return
	}

	var ack string
	switch cmd.Kind {
	case command.Energy:
		entry := &models.EnergyLog{UserID: user.ID, Level: cmd.Energy.Level}
		err = d.storage.SaveEnergyLog(ctx, entry)
		ack = fmt.Sprintf("✅ Energy logged!\n⚡ Level: %d/5", entry.Level)

	case command.Sleep:
		entry := &models.SleepLog{
			UserID:    user.ID,
			Bedtime:   cmd.Sleep.Bedtime,
			WakeTime:  cmd.Sleep.WakeTime,
			Quality:   cmd.Sleep.Quality,
			Tiredness: cmd.Sleep.Tiredness,
		}
		err = d.storage.SaveSleepLog(ctx, entry)
		ack = fmt.Sprintf("✅ Sleep logged!\n😴 %s → %s\n⭐ Quality: %d/5, Tiredness: %d/5",
			entry.Bedtime, entry.WakeTime, entry.Quality, entry.Tiredness)

	case command.Hourly:
		entry := &models.HourlyLog{UserID: user.ID, Rating: cmd.Hourly.Rating, Activity: cmd.Hourly.Note}
		err = d.storage.SaveHourlyLog(ctx, entry)
		ack = fmt.Sprintf("✅ Hour logged!\n🕐 Rating: %d/3\n📝 Activity: %s", entry.Rating, entry.Activity)

	case command.Thought:
		entry := &models.ThoughtLog{
			UserID:  user.ID,
			Content: cmd.Thought.Content,
			Type:    cmd.Thought.Type,
			Tags:    d.classify(ctx, cmd.Thought.Content),
		}
		err = d.storage.SaveThoughtLog(ctx, entry)
		ack = thoughtAck(entry)

	default:
		log.Error("Unhandled command kind", zap.Int("kind", int(cmd.Kind)))
		return
	}

	if err != nil {
		log.Error("Failed to save log entry",
			zap.Error(err),
			zap.Int64("user_id", user.ID))
		d.reply(log, ev.RoomID, genericErrorMessage)
		return
	}

	d.reply(log, ev.RoomID, ack+"\n👤 User: "+displayName(ev, user))
}

func (d *Dispatcher) handleUndo(ctx context.Context, log *zap.Logger, ev InboundEvent) {
	contactID := models.NormalizeContactID(ev.SenderID)
	name := ev.DisplayName
	if name == "" {
		name = contactID
	}

	last, err := d.lastEntry(ctx, contactID)
	if err != nil {
		log.Error("Undo failed",
			zap.Error(err),
			zap.String("contact", contactID))
		d.reply(log, ev.RoomID, "❌ Sorry, there was an error with undo. Please try again later.")
		return
	}

	if last == nil {
		d.reply(log, ev.RoomID, fmt.Sprintf(
			"❌ No recent entries found to undo.\n👤 User: %s\n\nMake sure you have logged some data first using tracking commands.",
			name))
		return
	}

	if err := d.storage.DeleteEntry(ctx, last.ID, last.Kind); err != nil {
		log.Error("Undo delete failed",
			zap.Error(err),
			zap.Int64("entry_id", last.ID),
			zap.String("kind", string(last.Kind)))
		d.reply(log, ev.RoomID, "❌ Sorry, there was an error with undo. Please try again later.")
		return
	}

	log.Info("Deleted last entry",
		zap.Int64("entry_id", last.ID),
		zap.String("kind", string(last.Kind)))

	d.reply(log, ev.RoomID, fmt.Sprintf(
		"✅ Undone last entry.\n📊 %s: %s\n📅 Logged: %s\n👤 User: %s",
		last.Kind, last.Summary, last.LoggedAt.Format("2006-01-02 15:04"), name))
}

// lastEntry scans the four log kinds in their fixed order and keeps the
// strictly most recent candidate, so the first-scanned kind wins an exact
// timestamp tie. A missing user resolves to (nil, nil).
func (d *Dispatcher) lastEntry(ctx context.Context, contactID string) (*models.LastEntry, error) {
	user, err := d.storage.FindUser(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	var best *models.LastEntry
	for _, kind := range models.AllKinds {
		entry, err := d.storage.LastEntry(ctx, user.ID, kind)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		if best == nil || entry.LoggedAt.After(best.LoggedAt) {
			best = entry
		}
	}

	return best, nil
}

func (d *Dispatcher) resolveUser(ctx context.Context, ev InboundEvent) (*models.User, error) {
	contactID := models.NormalizeContactID(ev.SenderID)
	name := ev.DisplayName
	if name == "" {
		name = contactID
	}
	return d.storage.GetOrCreateUser(ctx, contactID, name)
}

func (d *Dispatcher) classify(ctx context.Context, content string) []string {
	if d.classifier == nil {
		return nil
	}
	return d.classifier.ClassifyContent(ctx, content)
}

func (d *Dispatcher) reply(log *zap.Logger, roomID, text string) {
	if err := d.sender.Send(roomID, text); err != nil {
		log.Error("Failed to send reply", zap.Error(err))
	}
}

func displayName(ev InboundEvent, user *models.User) string {
	if ev.DisplayName != "" {
		return ev.DisplayName
	}
	return user.Name
}
