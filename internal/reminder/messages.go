package reminder

// MessageFor is the fixed hour → reminder-text policy. 06:00 and 11:00
// carry specific prompts; every other slot gets the flat nudge.
func MessageFor(hour int) string {
	switch hour {
	case 6:
		return "🌅 Good morning! Time to log your sleep! Use /sleep [bedtime] [waketime] [quality 1-5] [tiredness 1-5]"
	case 11:
		return "⚡ Mid-morning energy check! How's your energy level right now? Use /energy [1-5]"
	}
	return "🕐 Make sure to log your hour and energy"
}

const testMessage = "🧪 Test hourly reminder! This is what you'll receive every hour from 6am-12am!"

// Slot binds a daily wall-clock time to its reminder text.
type Slot struct {
	Hour    int
	Minute  int
	Message string
}

// Slots builds the static table: every hour from 06:00 through 23:00 plus
// midnight, 19 slots in total. Immutable for the process lifetime.
func Slots() []Slot {
	slots := make([]Slot, 0, 19)
	for hour := 6; hour <= 23; hour++ {
		slots = append(slots, Slot{Hour: hour, Message: MessageFor(hour)})
	}
	slots = append(slots, Slot{Hour: 0, Message: MessageFor(0)})
	return slots
}
