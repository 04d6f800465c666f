package slack

import (
	"fmt"
	"strings"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

const notSet = "not set"

// FormatStatus renders the current settings block shown by the status command.
func FormatStatus(settings *entity.UserSettings) string {
	location := notSet
	if settings.LocationName != "" && settings.HasLocation() {
		location = fmt.Sprintf("%s (%.4f, %.4f)", settings.LocationName, *settings.Latitude, *settings.Longitude)
	}

	notify := "OFF"
	if settings.MorningEnabled {
		notify = "ON"
	}

	channel := notSet
	if settings.NotifyChannelID != "" {
		channel = fmt.Sprintf("<#%s>", settings.NotifyChannelID)
	}

	return strings.Join([]string{
		"*Current settings*",
		"Calendar: " + formatCalendarIDs(settings),
		"Location: " + location,
		fmt.Sprintf("Notifications: %s (%s)", notify, settings.MorningTime),
		"Channel: " + channel,
		fmt.Sprintf("Timezone: `%s`", settings.Timezone),
	}, "\n")
}

// FormatDailyReport renders the combined agenda/weather message. In morning
// mode it prepends a greeting, and mentionUser adds the user mention line.
func FormatDailyReport(settings *entity.UserSettings, summary *entity.DailySummary, morningMode, mentionUser bool) string {
	var lines []string

	if mentionUser {
		lines = append(lines, fmt.Sprintf("<@%s>", settings.SlackUserID))
	}
	if morningMode {
		lines = append(lines, "☀️ Good morning! Here are today's events and weather.")
	}

	lines = append(lines, weatherSection(settings, summary)...)
	lines = append(lines, "")
	lines = append(lines, calendarSection(summary)...)

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func weatherSection(settings *entity.UserSettings, summary *entity.DailySummary) []string {
	switch summary.WeatherStatus {
	case entity.StatusMissing:
		return []string{
			"📍 Today's weather",
			"Not configured. Register a location with `/morny setlocation <place or lat,lon>`.",
		}
	case entity.StatusError:
		return []string{
			"📍 Today's weather",
			"❌ Failed to fetch the weather.",
		}
	}

	weather := summary.Weather
	if weather == nil {
		weather = &entity.Weather{}
	}

	label := settings.LocationName
	if label == "" {
		label = fallbackLatLon(settings)
	}

	text := weather.Text
	if text == "" {
		text = "Unknown"
	}

	lines := []string{
		fmt.Sprintf("📍 Today's weather (%s)", label),
		fmt.Sprintf("%s / %s (high %s · low %s)",
			text,
			formatNumber(weather.CurrentTemp, "℃"),
			formatNumber(weather.MaxTemp, "℃"),
			formatNumber(weather.MinTemp, "℃"),
		),
	}
	if pop := formatNumber(weather.PrecipProbMax, "%"); pop != "-" {
		lines = append(lines, "Chance of rain: "+pop)
	}
	return lines
}

func calendarSection(summary *entity.DailySummary) []string {
	switch summary.CalendarStatus {
	case entity.StatusMissing:
		return []string{
			"📅 Today's events",
			"Not configured. Register a calendar with `/morny setcalendar <calendar_id>`.",
		}
	case entity.StatusError:
		return []string{
			"📅 Today's events",
			"❌ Failed to fetch events.",
		}
	}

	lines := []string{"📅 Today's events"}
	if len(summary.Events) == 0 {
		return append(lines, "No events today")
	}

	for _, event := range summary.Events {
		lines = append(lines, formatEventLine(event))
	}
	return lines
}

func formatEventLine(event entity.Event) string {
	if event.AllDay {
		return "all-day " + event.Summary
	}
	if event.Start != "" && event.End != "" {
		return fmt.Sprintf("%s-%s %s", event.Start, event.End, event.Summary)
	}
	if event.Start != "" {
		return event.Start + " " + event.Summary
	}
	return event.Summary
}

func formatCalendarIDs(settings *entity.UserSettings) string {
	ids := settings.CalendarIDList()
	if len(ids) == 0 {
		return notSet
	}
	if len(ids) == 1 {
		return "`" + ids[0] + "`"
	}
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, "`"+id+"`")
	}
	return strings.Join(quoted, " / ")
}

func fallbackLatLon(settings *entity.UserSettings) string {
	if !settings.HasLocation() {
		return notSet
	}
	return fmt.Sprintf("%.4f, %.4f", *settings.Latitude, *settings.Longitude)
}

// formatNumber renders whole values without decimals and everything else
// with one, matching the report's compact style.
func formatNumber(value *float64, suffix string) string {
	if value == nil {
		return "-"
	}
	if *value == float64(int64(*value)) {
		return fmt.Sprintf("%d%s", int64(*value), suffix)
	}
	return fmt.Sprintf("%.1f%s", *value, suffix)
}
