package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/morny/slack-morning-bot/internal/domain/contract"
	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

type summaryService struct {
	calendar  contract.CalendarAPI
	weather   contract.WeatherAPI
	defaultTZ string
}

func newSummaryService(calendar contract.CalendarAPI, weather contract.WeatherAPI, defaultTZ string) *summaryService {
	return &summaryService{
		calendar:  calendar,
		weather:   weather,
		defaultTZ: defaultTZ,
	}
}

// BuildSummary fetches the calendar and weather sources in parallel and
// classifies each independently. An error in one source never suppresses
// the other; upstream failures land in the per-source status, not in an
// error return.
func (s *summaryService) BuildSummary(ctx context.Context, settings *entity.UserSettings) *entity.DailySummary {
	result := &entity.DailySummary{
		CalendarStatus: entity.StatusMissing,
		WeatherStatus:  entity.StatusMissing,
	}

	tz := settings.Timezone
	if tz == "" {
		tz = s.defaultTZ
	}

	// The two legs write disjoint fields of result, so no locking is needed.
	g, ctx := errgroup.WithContext(ctx)

	if ids := settings.CalendarIDList(); len(ids) > 0 {
		g.Go(func() error {
			s.fillCalendar(ctx, result, ids, tz)
			return nil
		})
	}

	if settings.HasLocation() {
		g.Go(func() error {
			weather, err := s.weather.Forecast(ctx, *settings.Latitude, *settings.Longitude, tz)
			if err != nil {
				result.WeatherStatus = entity.StatusError
				result.WeatherErr = err.Error()
				return nil
			}
			result.Weather = weather
			result.WeatherStatus = entity.StatusOK
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// fillCalendar merges events across calendar ids. Ids are fetched in order
// so the merge is deterministic; an error on one id does not discard events
// already fetched from another.
func (s *summaryService) fillCalendar(ctx context.Context, result *entity.DailySummary, ids []string, tz string) {
	var events []entity.Event
	var errs []string

	for _, id := range ids {
		fetched, err := s.calendar.TodayEvents(ctx, id, tz)
		if err != nil {
			errs = append(errs, id+": "+err.Error())
			continue
		}
		events = append(events, fetched...)
	}

	switch {
	case len(events) > 0:
		sortEvents(events)
		result.Events = events
		result.CalendarStatus = entity.StatusOK
		if len(errs) > 0 {
			result.CalendarErr = strings.Join(errs, " / ")
		}
	case len(errs) == 0:
		// Fetch succeeded with zero events: that is "no events", not
		// "not configured".
		result.CalendarStatus = entity.StatusOK
	default:
		result.CalendarStatus = entity.StatusError
		result.CalendarErr = strings.Join(errs, " / ")
	}
}

// sortEvents orders all-day events first, then timed events by start,
// breaking ties by title.
func sortEvents(events []entity.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.AllDay != b.AllDay {
			return a.AllDay
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Summary < b.Summary
	})
}
