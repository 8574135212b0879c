// Package command classifies raw message text into the bot's command
// surface and validates arguments before anything touches storage.
package command

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/hourlytracker/tracker-bot/internal/models"
)

type Kind int

const (
	None Kind = iota
	Energy
	Sleep
	Hourly
	Thought
	Help
	Undo
	TestReminder
)

type EnergyArgs struct {
	Level int `validate:"min=1,max=5"`
}

type SleepArgs struct {
	Bedtime   string `validate:"time24"`
	WakeTime  string `validate:"time24"`
	Quality   int    `validate:"min=1,max=5"`
	Tiredness int    `validate:"min=1,max=5"`
}

type HourlyArgs struct {
	Rating int `validate:"min=1,max=3"`
	Note   string
}

type ThoughtArgs struct {
	Content string
	Type    models.ThoughtType
}

// Command is a parsed, validated message. Exactly the argument struct for
// its Kind is non-nil; utility kinds carry no arguments.
type Command struct {
	Kind    Kind
	Energy  *EnergyArgs
	Sleep   *SleepArgs
	Hourly  *HourlyArgs
	Thought *ThoughtArgs
}

// UsageError carries the reply text for a malformed command.
type UsageError struct {
	Reply string
}

func (e *UsageError) Error() string {
	return e.Reply
}

var time24Re = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("time24", func(fl validator.FieldLevel) bool {
		return time24Re.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Parse classifies trimmed message text. Text matching no command returns
// Kind None with no error; the dispatcher stays silent for it.
func Parse(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToLower(trimmed), "test reminder") {
		return Command{Kind: TestReminder}, nil
	}

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return Command{}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "/energy":
		return parseEnergy(fields)
	case "/sleep":
		return parseSleep(fields)
	case "/hour", "/checkin":
		return parseHourly(trimmed, fields)
	case "/thought":
		return parseThought(trimmed, fields[0], models.ThoughtNote,
			"❌ Please add your thought\nExample: /thought need to simplify this plan")
	case "/feeling":
		return parseThought(trimmed, fields[0], models.ThoughtFeeling,
			"❌ Please add your feeling\nExample: /feeling calm and focused")
	case "/idea":
		return parseThought(trimmed, fields[0], models.ThoughtIdea,
			"❌ Please add your idea\nExample: /idea walk while taking calls")
	case "/help":
		return Command{Kind: Help}, nil
	case "/undo":
		return Command{Kind: Undo}, nil
	}

	return Command{}, nil
}

func parseEnergy(fields []string) (Command, error) {
	if len(fields) != 2 {
		return Command{}, &UsageError{Reply: "❌ Invalid format!\nUse: /energy [1-5]\nExample: /energy 4"}
	}

	level, _ := strconv.Atoi(fields[1])
	args := &EnergyArgs{Level: level}
	if err := validate.Struct(args); err != nil {
		return Command{}, &UsageError{Reply: "❌ Energy level must be 1-5\nExample: /energy 4"}
	}

	return Command{Kind: Energy, Energy: args}, nil
}

func parseSleep(fields []string) (Command, error) {
	if len(fields) != 5 {
		return Command{}, &UsageError{
			Reply: "❌ Invalid format!\nUse: /sleep [bedtime] [waketime] [quality 1-5] [tiredness 1-5]\nExample: /sleep 23:00 07:00 4 2",
		}
	}

	quality, _ := strconv.Atoi(fields[3])
	tiredness, _ := strconv.Atoi(fields[4])
	args := &SleepArgs{
		Bedtime:   fields[1],
		WakeTime:  fields[2],
		Quality:   quality,
		Tiredness: tiredness,
	}

	if err := validate.Struct(args); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].StructField() {
			case "Bedtime":
				return Command{}, &UsageError{Reply: "❌ Invalid bedtime format! Use HH:MM (24-hour)\nExample: /sleep 23:00 07:00 4 2"}
			case "WakeTime":
				return Command{}, &UsageError{Reply: "❌ Invalid wake time format! Use HH:MM (24-hour)\nExample: /sleep 23:00 07:00 4 2"}
			}
		}
		return Command{}, &UsageError{Reply: "❌ Quality and tiredness must be 1-5\nExample: /sleep 23:00 07:00 4 2"}
	}

	return Command{Kind: Sleep, Sleep: args}, nil
}

func parseHourly(text string, fields []string) (Command, error) {
	if len(fields) < 2 {
		return Command{}, &UsageError{
			Reply: "❌ Invalid format!\nUse: /checkin [1-3] [note]\nExample: /checkin 3 was coding all hour",
		}
	}

	rating, _ := strconv.Atoi(fields[1])
	args := &HourlyArgs{Rating: rating, Note: restAfter(text, 2)}
	if err := validate.Struct(args); err != nil {
		return Command{}, &UsageError{Reply: "❌ Rating must be 1-3\nExample: /checkin 3 worked on project and had lunch"}
	}

	return Command{Kind: Hourly, Hourly: args}, nil
}

func parseThought(text, prefix string, typ models.ThoughtType, usage string) (Command, error) {
	content := strings.TrimSpace(text[len(prefix):])
	if content == "" {
		return Command{}, &UsageError{Reply: usage}
	}

	return Command{Kind: Thought, Thought: &ThoughtArgs{Content: content, Type: typ}}, nil
}

// restAfter returns the text remaining after the first n whitespace-separated
// tokens, trimmed. Working on the raw text keeps the note's internal spacing
// and stays correct when the note repeats digits from earlier tokens. Token
// boundaries follow the same whitespace class as strings.Fields.
func restAfter(text string, n int) string {
	rest := text
	for i := 0; i < n; i++ {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		j := strings.IndexFunc(rest, unicode.IsSpace)
		if j < 0 {
			return ""
		}
		rest = rest[j:]
	}
	return strings.TrimSpace(rest)
}
