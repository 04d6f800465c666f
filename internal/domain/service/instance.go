package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/morny/slack-morning-bot/internal/domain/contract"
)

type Instance struct {
	Summary   contract.SummaryService
	Scheduler *scheduler
}

func NewInstance(dm contract.DataManager, slackAPI contract.SlackAPI, calendar contract.CalendarAPI, weather contract.WeatherAPI, log *zap.Logger, defaultTZ string, poll time.Duration) *Instance {
	summaryService := newSummaryService(calendar, weather, defaultTZ)

	return &Instance{
		Summary:   summaryService,
		Scheduler: newScheduler(dm, summaryService, slackAPI, log, defaultTZ, poll),
	}
}
