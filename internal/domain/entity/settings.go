package entity

import (
	"time"

	"github.com/morny/slack-morning-bot/internal/domain"
)

// DefaultMorningTime is used when the user enables notifications without
// giving an explicit time.
const DefaultMorningTime = "07:30"

// UserSettings is one user's row in the settings table. The scheduler reads
// it as a snapshot each tick; all writes go through the settings repository.
type UserSettings struct {
	SlackUserID     string    `db:"slack_user_id"`
	CalendarIDs     string    `db:"calendar_ids"` // serialized "a, b" list
	LocationName    string    `db:"location_name"`
	Latitude        *float64  `db:"latitude"`
	Longitude       *float64  `db:"longitude"`
	Timezone        string    `db:"timezone"`
	MorningEnabled  bool      `db:"morning_enabled"`
	MorningTime     string    `db:"morning_time"` // HH:MM format
	NotifyChannelID string    `db:"notify_channel_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// CalendarIDList parses the stored calendar id column into individual ids.
func (s *UserSettings) CalendarIDList() []string {
	return domain.ParseStoredCalendarIDs(s.CalendarIDs)
}

// HasLocation reports whether a weather location is configured.
func (s *UserSettings) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// EmptySettings returns the defaults shown to a user who has no row yet.
func EmptySettings(slackUserID, timezone string) *UserSettings {
	now := time.Now().UTC()
	return &UserSettings{
		SlackUserID: slackUserID,
		Timezone:    timezone,
		MorningTime: DefaultMorningTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
