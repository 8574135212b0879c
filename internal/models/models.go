package models

import (
	"fmt"
	"strings"
	"time"
)

// LogKind identifies one of the four append-only log tables.
type LogKind string

const (
	KindSleep   LogKind = "sleep"
	KindEnergy  LogKind = "energy"
	KindHourly  LogKind = "hourly"
	KindThought LogKind = "thought"
)

// AllKinds is the fixed order in which the log tables are scanned when
// looking for a user's most recent entry. On an exact timestamp tie the
// kind listed first wins.
var AllKinds = []LogKind{KindSleep, KindEnergy, KindHourly, KindThought}

// ThoughtType is the sub-kind tag on a thought entry.
type ThoughtType string

const (
	ThoughtNote    ThoughtType = "thought"
	ThoughtFeeling ThoughtType = "feeling"
	ThoughtIdea    ThoughtType = "idea"
)

// User is a bot user keyed by their normalized contact identifier.
type User struct {
	ID        int64     `json:"id"`
	ContactID string    `json:"contact_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type SleepLog struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Bedtime   string    `json:"bedtime"`
	WakeTime  string    `json:"wake_time"`
	Quality   int       `json:"sleep_quality"`
	Tiredness int       `json:"tiredness_level"`
	SleepDate string    `json:"sleep_date"`
	LoggedAt  time.Time `json:"logged_at"`
}

type EnergyLog struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Level    int       `json:"energy_level"`
	LoggedAt time.Time `json:"logged_at"`
}

type HourlyLog struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	Rating   int       `json:"hour_rating"`
	Activity string    `json:"activity"`
	LoggedAt time.Time `json:"logged_at"`
}

type ThoughtLog struct {
	ID       int64       `json:"id"`
	UserID   int64       `json:"user_id"`
	Content  string      `json:"content"`
	Type     ThoughtType `json:"log_type"`
	Tags     []string    `json:"tags,omitempty"`
	LoggedAt time.Time   `json:"logged_at"`
}

// LastEntry is a kind-tagged view of a user's most recent log row, enough
// to delete it and describe it in an acknowledgment.
type LastEntry struct {
	ID       int64
	Kind     LogKind
	Summary  string
	LoggedAt time.Time
}

func (l *SleepLog) Summary() string {
	return fmt.Sprintf("%s → %s (quality %d/5, tiredness %d/5)", l.Bedtime, l.WakeTime, l.Quality, l.Tiredness)
}

func (l *EnergyLog) Summary() string {
	return fmt.Sprintf("level %d/5", l.Level)
}

func (l *HourlyLog) Summary() string {
	if l.Activity == "" {
		return fmt.Sprintf("rating %d/3", l.Rating)
	}
	return fmt.Sprintf("rating %d/3: %s", l.Rating, l.Activity)
}

func (l *ThoughtLog) Summary() string {
	return fmt.Sprintf("%s: %s", l.Type, l.Content)
}

var contactSuffixes = []string{"@s.whatsapp.net", "@lid"}

// NormalizeContactID strips known transport suffixes from a sender
// identifier so the same person maps to one stable contact id.
func NormalizeContactID(id string) string {
	id = strings.TrimSpace(id)
	for _, suffix := range contactSuffixes {
		id = strings.TrimSuffix(id, suffix)
	}
	return id
}
