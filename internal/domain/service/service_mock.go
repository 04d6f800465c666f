package service

import (
	"testing"

	"github.com/morny/slack-morning-bot/mocks"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type allMocks struct {
	mockDataManager  *mocks.MockDataManager
	mockSettingsRepo *mocks.MockSettingsRepo
	mockSummary      *mocks.MockSummaryService
	mockCalendar     *mocks.MockCalendarAPI
	mockWeather      *mocks.MockWeatherAPI
	mockSlackAPI     *mocks.MockSlackAPI
}

func newServiceTestMock(t *testing.T) (m allMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	dm := mocks.NewMockDataManager(ctrl)

	settingsRepo := mocks.NewMockSettingsRepo(ctrl)
	dm.EXPECT().Settings().Return(settingsRepo).AnyTimes()

	m = allMocks{
		mockDataManager:  dm,
		mockSettingsRepo: settingsRepo,
		mockSummary:      mocks.NewMockSummaryService(ctrl),
		mockCalendar:     mocks.NewMockCalendarAPI(ctrl),
		mockWeather:      mocks.NewMockWeatherAPI(ctrl),
		mockSlackAPI:     mocks.NewMockSlackAPI(ctrl),
	}

	// validate service creation
	summaryService := newSummaryService(m.mockCalendar, m.mockWeather, "Asia/Tokyo")
	require.NotNil(t, summaryService)

	return
}

func newTestScheduler(t *testing.T, m allMocks) *scheduler {
	t.Helper()

	s := newScheduler(m.mockDataManager, m.mockSummary, m.mockSlackAPI, zap.NewNop(), "Asia/Tokyo", DefaultPollInterval)
	s.SetReady()
	return s
}
