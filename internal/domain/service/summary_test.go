package service

import (
	"context"
	"errors"
	"testing"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func floatPtr(v float64) *float64 { return &v }

func baseSettings() *entity.UserSettings {
	return &entity.UserSettings{
		SlackUserID: "U123",
		Timezone:    "Asia/Tokyo",
	}
}

func TestSummaryService_BuildSummary(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report both sources missing when nothing configured", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, baseSettings())

		assert.Equal(t, entity.StatusMissing, result.CalendarStatus)
		assert.Equal(t, entity.StatusMissing, result.WeatherStatus)
		assert.Empty(t, result.Events)
		assert.Nil(t, result.Weather)
	})

	t.Run("Should order all-day events before timed events", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.CalendarIDs = "primary"

		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "primary", "Asia/Tokyo").
			Return([]entity.Event{
				{Summary: "Standup", Start: "10:00", End: "11:00"},
				{Summary: "Holiday", AllDay: true},
			}, nil).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		require.Equal(t, entity.StatusOK, result.CalendarStatus)
		require.Len(t, result.Events, 2)
		assert.Equal(t, "Holiday", result.Events[0].Summary)
		assert.Equal(t, "Standup", result.Events[1].Summary)
	})

	t.Run("Should sort timed events by start then title", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.CalendarIDs = "primary"

		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "primary", "Asia/Tokyo").
			Return([]entity.Event{
				{Summary: "Retro", Start: "14:00"},
				{Summary: "Beta review", Start: "09:00"},
				{Summary: "Alpha review", Start: "09:00"},
			}, nil).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		require.Len(t, result.Events, 3)
		assert.Equal(t, "Alpha review", result.Events[0].Summary)
		assert.Equal(t, "Beta review", result.Events[1].Summary)
		assert.Equal(t, "Retro", result.Events[2].Summary)
	})

	t.Run("Should keep events from healthy calendars when another fails", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.CalendarIDs = "broken, primary"

		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "broken", "Asia/Tokyo").
			Return(nil, errors.New("boom")).Times(1)
		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "primary", "Asia/Tokyo").
			Return([]entity.Event{{Summary: "Standup", Start: "10:00"}}, nil).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		assert.Equal(t, entity.StatusOK, result.CalendarStatus)
		require.Len(t, result.Events, 1)
		assert.Equal(t, "Standup", result.Events[0].Summary)
		assert.Contains(t, result.CalendarErr, "broken: boom")
	})

	t.Run("Should report calendar error when every calendar fails", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.CalendarIDs = "a, b"

		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "a", "Asia/Tokyo").
			Return(nil, errors.New("first")).Times(1)
		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "b", "Asia/Tokyo").
			Return(nil, errors.New("second")).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		assert.Equal(t, entity.StatusError, result.CalendarStatus)
		assert.Equal(t, "a: first / b: second", result.CalendarErr)
		assert.Empty(t, result.Events)
	})

	t.Run("Should treat zero events without errors as ok", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.CalendarIDs = "primary"

		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "primary", "Asia/Tokyo").
			Return([]entity.Event{}, nil).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		assert.Equal(t, entity.StatusOK, result.CalendarStatus)
		assert.Empty(t, result.Events)
	})

	t.Run("Should fetch weather when a location is configured", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.Latitude = floatPtr(36.08)
		settings.Longitude = floatPtr(140.11)

		m.mockWeather.EXPECT().
			Forecast(gomock.Any(), 36.08, 140.11, "Asia/Tokyo").
			Return(&entity.Weather{Text: "Clear", CurrentTemp: floatPtr(20)}, nil).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		assert.Equal(t, entity.StatusOK, result.WeatherStatus)
		require.NotNil(t, result.Weather)
		assert.Equal(t, "Clear", result.Weather.Text)
		assert.Equal(t, entity.StatusMissing, result.CalendarStatus)
	})

	t.Run("Should report weather error without hiding calendar result", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.CalendarIDs = "primary"
		settings.Latitude = floatPtr(36.08)
		settings.Longitude = floatPtr(140.11)

		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "primary", "Asia/Tokyo").
			Return([]entity.Event{{Summary: "Standup", Start: "10:00"}}, nil).Times(1)
		m.mockWeather.EXPECT().
			Forecast(gomock.Any(), 36.08, 140.11, "Asia/Tokyo").
			Return(nil, errors.New("upstream down")).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		assert.Equal(t, entity.StatusOK, result.CalendarStatus)
		assert.Equal(t, entity.StatusError, result.WeatherStatus)
		assert.Equal(t, "upstream down", result.WeatherErr)
	})

	t.Run("Should fall back to the default timezone", func(t *testing.T) {
		m, ctrl := newServiceTestMock(t)
		defer ctrl.Finish()

		settings := baseSettings()
		settings.Timezone = ""
		settings.CalendarIDs = "primary"

		m.mockCalendar.EXPECT().
			TodayEvents(gomock.Any(), "primary", "Asia/Tokyo").
			Return(nil, nil).Times(1)

		s := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
		result := s.BuildSummary(ctx, settings)

		assert.Equal(t, entity.StatusOK, result.CalendarStatus)
	})
}
