package contract

import (
	"context"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

// SummaryService builds the combined agenda/weather summary for one user.
// Safe for concurrent use across users; no side effects beyond upstream reads.
type SummaryService interface {
	BuildSummary(ctx context.Context, settings *entity.UserSettings) *entity.DailySummary
}

// SettingsObserver is notified after a settings write. The poll-based
// scheduler implements it as a no-op; the next tick reads fresh data anyway.
type SettingsObserver interface {
	NotifySettingsChanged(slackUserID string)
}

// CalendarAPI fetches today's events for one calendar id.
type CalendarAPI interface {
	TodayEvents(ctx context.Context, calendarID, timezone string) ([]entity.Event, error)
}

// WeatherAPI fetches today's forecast for a coordinate.
type WeatherAPI interface {
	Forecast(ctx context.Context, latitude, longitude float64, timezone string) (*entity.Weather, error)
}

// GeocodeAPI resolves a free-text place name. A nil result with nil error
// means no match was found.
type GeocodeAPI interface {
	Geocode(ctx context.Context, query string) (*entity.GeoResult, error)
}
