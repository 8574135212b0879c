package bot

import (
	"fmt"
	"strings"

	"github.com/hourlytracker/tracker-bot/internal/models"
)

// Replies go out as plain text (no parse mode), so no markup here.
const helpMessage = `🕐 HourlyTracker Bot Commands

📊 Tracking Commands:
- /energy [1-5] - Log energy level
- /sleep [bedtime] [waketime] [quality 1-5] [tiredness 1-5] - Log sleep
- /checkin [1-3] [note] - Hourly check-in (alias: /hour)
- /thought [text] - Capture a thought
- /feeling [text] - Capture a feeling
- /idea [text] - Capture an idea

⚙️ Utility Commands:
- /help - Show this menu
- /undo - Delete your last entry

Track every hour! 📈`

const genericErrorMessage = "❌ Sorry, there was an error saving your log. Please try again later."

func thoughtAck(entry *models.ThoughtLog) string {
	emoji := "💭"
	switch entry.Type {
	case models.ThoughtFeeling:
		emoji = "😊"
	case models.ThoughtIdea:
		emoji = "💡"
	}

	title := string(entry.Type)
	title = strings.ToUpper(title[:1]) + title[1:]

	ack := fmt.Sprintf("✅ %s logged!\n%s %s", title, emoji, entry.Content)
	if len(entry.Tags) > 0 {
		formatted := make([]string, len(entry.Tags))
		for i, tag := range entry.Tags {
			formatted[i] = "#" + strings.ReplaceAll(tag, " ", "_")
		}
		ack += "\n🏷 " + strings.Join(formatted, " ")
	}
	return ack
}
