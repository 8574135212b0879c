package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Telegram adapts the chat transport to the dispatcher's event shape.
// Room ids are decimal chat ids, sender ids decimal user ids.
type Telegram struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

func NewTelegram(token string, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Telegram{api: api, logger: logger}, nil
}

// Send implements Sender for both replies and scheduled reminders.
func (t *Telegram) Send(roomID, text string) error {
	chatID, err := strconv.ParseInt(roomID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room id %q: %w", roomID, err)
	}

	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Run pulls updates until ctx is cancelled, handing each message to the
// dispatcher in its own goroutine.
func (t *Telegram) Run(ctx context.Context, dispatcher *Dispatcher) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.api.GetUpdatesChan(u)
	t.logger.Info("Bot started", zap.String("username", t.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go dispatcher.Handle(ctx, t.eventFromMessage(update.Message))
		}
	}
}

func (t *Telegram) eventFromMessage(msg *tgbotapi.Message) InboundEvent {
	text := msg.Text
	if msg.Caption != "" {
		text = msg.Caption
	}

	ev := InboundEvent{
		RoomID: strconv.FormatInt(msg.Chat.ID, 10),
		Text:   text,
	}

	if msg.From != nil {
		ev.SenderID = strconv.FormatInt(msg.From.ID, 10)
		ev.FromSelf = msg.From.ID == t.api.Self.ID
		ev.DisplayName = strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName)
	}

	return ev
}
