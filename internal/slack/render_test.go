package slack

import (
	"strings"
	"testing"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestFormatStatus(t *testing.T) {
	t.Run("Should render fully configured settings", func(t *testing.T) {
		settings := &entity.UserSettings{
			SlackUserID:     "U123",
			CalendarIDs:     "primary, team@group.calendar.google.com",
			LocationName:    "Tsukuba",
			Latitude:        floatPtr(36.08),
			Longitude:       floatPtr(140.11),
			Timezone:        "Asia/Tokyo",
			MorningEnabled:  true,
			MorningTime:     "07:30",
			NotifyChannelID: "C123",
		}

		out := FormatStatus(settings)

		assert.Contains(t, out, "`primary` / `team@group.calendar.google.com`")
		assert.Contains(t, out, "Tsukuba (36.0800, 140.1100)")
		assert.Contains(t, out, "Notifications: ON (07:30)")
		assert.Contains(t, out, "<#C123>")
		assert.Contains(t, out, "`Asia/Tokyo`")
	})

	t.Run("Should render empty settings with fallbacks", func(t *testing.T) {
		out := FormatStatus(entity.EmptySettings("U123", "Asia/Tokyo"))

		assert.Contains(t, out, "Calendar: not set")
		assert.Contains(t, out, "Location: not set")
		assert.Contains(t, out, "Notifications: OFF (07:30)")
		assert.Contains(t, out, "Channel: not set")
	})
}

func TestFormatDailyReport(t *testing.T) {
	settings := &entity.UserSettings{
		SlackUserID:  "U123",
		LocationName: "Tsukuba",
		Latitude:     floatPtr(36.08),
		Longitude:    floatPtr(140.11),
		Timezone:     "Asia/Tokyo",
	}

	t.Run("Should render morning mode with mention and greeting first", func(t *testing.T) {
		summary := &entity.DailySummary{
			CalendarStatus: entity.StatusOK,
			WeatherStatus:  entity.StatusOK,
			Events: []entity.Event{
				{Summary: "Holiday", AllDay: true},
				{Summary: "Standup", Start: "10:00", End: "11:00"},
			},
			Weather: &entity.Weather{
				CurrentTemp:   floatPtr(18.4),
				MaxTemp:       floatPtr(24),
				MinTemp:       floatPtr(12.3),
				PrecipProbMax: floatPtr(40),
				Text:          "Rain",
			},
		}

		out := FormatDailyReport(settings, summary, true, true)
		lines := strings.Split(out, "\n")

		assert.Equal(t, "<@U123>", lines[0])
		assert.Contains(t, lines[1], "Good morning")
		assert.Contains(t, out, "📍 Today's weather (Tsukuba)")
		assert.Contains(t, out, "Rain / 18.4℃ (high 24℃ · low 12.3℃)")
		assert.Contains(t, out, "Chance of rain: 40%")
		assert.Contains(t, out, "all-day Holiday")
		assert.Contains(t, out, "10:00-11:00 Standup")
	})

	t.Run("Should omit mention and greeting outside morning mode", func(t *testing.T) {
		summary := &entity.DailySummary{CalendarStatus: entity.StatusOK, WeatherStatus: entity.StatusMissing}

		out := FormatDailyReport(settings, summary, false, false)

		assert.NotContains(t, out, "<@U123>")
		assert.NotContains(t, out, "Good morning")
	})

	t.Run("Should prompt configuration for missing sources", func(t *testing.T) {
		summary := &entity.DailySummary{
			CalendarStatus: entity.StatusMissing,
			WeatherStatus:  entity.StatusMissing,
		}

		out := FormatDailyReport(entity.EmptySettings("U123", "Asia/Tokyo"), summary, false, false)

		assert.Contains(t, out, "/morny setcalendar")
		assert.Contains(t, out, "/morny setlocation")
	})

	t.Run("Should render failure lines without hiding the other source", func(t *testing.T) {
		summary := &entity.DailySummary{
			CalendarStatus: entity.StatusError,
			CalendarErr:    "primary: boom",
			WeatherStatus:  entity.StatusOK,
			Weather:        &entity.Weather{Text: "Clear", CurrentTemp: floatPtr(20)},
		}

		out := FormatDailyReport(settings, summary, false, false)

		assert.Contains(t, out, "❌ Failed to fetch events.")
		assert.Contains(t, out, "Clear / 20℃")
	})

	t.Run("Should render no events line", func(t *testing.T) {
		summary := &entity.DailySummary{CalendarStatus: entity.StatusOK, WeatherStatus: entity.StatusMissing}

		out := FormatDailyReport(settings, summary, false, false)

		assert.Contains(t, out, "No events today")
	})
}

func TestFormatEventLine(t *testing.T) {
	assert.Equal(t, "all-day Holiday", formatEventLine(entity.Event{Summary: "Holiday", AllDay: true}))
	assert.Equal(t, "10:00-11:00 Standup", formatEventLine(entity.Event{Summary: "Standup", Start: "10:00", End: "11:00"}))
	assert.Equal(t, "10:00 Standup", formatEventLine(entity.Event{Summary: "Standup", Start: "10:00"}))
	assert.Equal(t, "Standup", formatEventLine(entity.Event{Summary: "Standup"}))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "-", formatNumber(nil, "℃"))
	assert.Equal(t, "24℃", formatNumber(floatPtr(24), "℃"))
	assert.Equal(t, "18.4℃", formatNumber(floatPtr(18.4), "℃"))
	assert.Equal(t, "40%", formatNumber(floatPtr(40), "%"))
}
