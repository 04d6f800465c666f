package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/morny/slack-morning-bot/internal/domain"
	"github.com/morny/slack-morning-bot/internal/domain/contract"
	"github.com/morny/slack-morning-bot/internal/domain/entity"
	slackfmt "github.com/morny/slack-morning-bot/internal/slack"
)

const (
	// DefaultPollInterval bounds the delivery latency of a morning
	// notification: the tick has to land inside the target minute.
	DefaultPollInterval = 30 * time.Second

	channelCacheSize = 256

	summaryTimeout = 60 * time.Second
)

// scheduler polls the settings store and dispatches at most one morning
// notification per user per local calendar day. Sent markers live only in
// memory: a restart forgets them, so a send repeated within the same minute
// window is possible and accepted.
type scheduler struct {
	dm        contract.DataManager
	summaries contract.SummaryService
	slackAPI  contract.SlackAPI
	log       *zap.Logger
	defaultTZ string
	poll      time.Duration

	channels *lru.Cache[string, *slack.Channel]

	ready    atomic.Bool
	running  bool
	stopChan chan struct{}

	// sent is keyed "userID:YYYY-MM-DD" (date in the user's own zone).
	// Only the tick goroutine touches it.
	sent map[string]struct{}
}

func newScheduler(dm contract.DataManager, summaries contract.SummaryService, slackAPI contract.SlackAPI, log *zap.Logger, defaultTZ string, poll time.Duration) *scheduler {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	// Size is a positive constant, so the cache cannot fail to build.
	channels, _ := lru.New[string, *slack.Channel](channelCacheSize)

	return &scheduler{
		dm:        dm,
		summaries: summaries,
		slackAPI:  slackAPI,
		log:       log,
		defaultTZ: defaultTZ,
		poll:      poll,
		channels:  channels,
		stopChan:  make(chan struct{}),
		sent:      make(map[string]struct{}),
	}
}

// Start launches the poll loop. Calling it again is a no-op.
func (s *scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.log.Info("scheduler starting", zap.Duration("poll", s.poll))
	go s.loop()
}

// Stop cancels future ticks without waiting for an in-flight one. Safe to
// call repeatedly and before Start.
func (s *scheduler) Stop() {
	if !s.running {
		return
	}
	s.log.Info("scheduler stopping")
	close(s.stopChan)
	s.running = false
}

// SetReady unblocks ticking. Until the owner signals readiness (after the
// Slack client authenticated), every tick is skipped.
func (s *scheduler) SetReady() {
	s.ready.Store(true)
}

// NotifySettingsChanged is an advisory hook invoked after settings writes.
// The loop is poll-based, so the next tick reads fresh rows on its own.
// It must not clear the user's sent marker: that would allow a second send
// on the same day when settings are toggled after delivery.
func (s *scheduler) NotifySettingsChanged(slackUserID string) {
	_ = slackUserID
}

// loop runs ticks sequentially off a single ticker. A tick that overruns the
// interval simply delays the next one; two ticks never run concurrently.
func (s *scheduler) loop() {
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

func (s *scheduler) tick(now time.Time) {
	if !s.ready.Load() {
		return
	}

	users, err := s.dm.Settings().ListMorningEnabled()
	if err != nil {
		// Abort this tick only; the next firing retries naturally.
		s.log.Error("failed to list morning enabled users", zap.Error(err))
		return
	}

	for _, settings := range users {
		if err := s.sendForUserSafe(settings, now); err != nil {
			s.log.Error("morning notification failed",
				zap.String("user", settings.SlackUserID),
				zap.Error(err),
			)
		}
	}

	s.pruneMarkers(users, now)
}

// sendForUserSafe isolates one user's processing so a panic or error cannot
// abort the rest of the tick.
func (s *scheduler) sendForUserSafe(settings *entity.UserSettings, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.maybeSendForUser(settings, now)
}

func (s *scheduler) maybeSendForUser(settings *entity.UserSettings, now time.Time) error {
	if settings.NotifyChannelID == "" {
		return nil
	}
	if !domain.IsValidHHMM(settings.MorningTime) {
		s.log.Warn("skipping invalid morning time",
			zap.String("user", settings.SlackUserID),
			zap.String("time", settings.MorningTime),
		)
		return nil
	}

	loc := domain.LoadLocation(settings.Timezone, s.defaultTZ)
	nowLocal := now.In(loc)

	// Exact-minute match: the tick has to land within the target minute.
	// A process stalled through the whole minute misses that day.
	if nowLocal.Format("15:04") != settings.MorningTime {
		return nil
	}

	marker := settings.SlackUserID + ":" + nowLocal.Format("2006-01-02")
	if _, sent := s.sent[marker]; sent {
		return nil
	}

	channel := s.resolveChannel(settings.NotifyChannelID)
	if channel == nil {
		s.log.Warn("notify channel not found",
			zap.String("user", settings.SlackUserID),
			zap.String("channel", settings.NotifyChannelID),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
	defer cancel()

	summary := s.summaries.BuildSummary(ctx, settings)
	text := slackfmt.FormatDailyReport(settings, summary, true, true)

	if _, _, err := s.slackAPI.PostMessage(
		channel.ID,
		slack.MsgOptionText(text, false),
	); err != nil {
		// No marker on failure: a retry stays possible while the minute
		// still matches.
		return fmt.Errorf("failed to send Slack message: %w", err)
	}

	s.sent[marker] = struct{}{}
	s.log.Info("morning notification sent",
		zap.String("user", settings.SlackUserID),
		zap.String("channel", settings.NotifyChannelID),
		zap.String("date", nowLocal.Format("2006-01-02")),
	)
	return nil
}

// resolveChannel looks the channel up in the local cache and falls back to
// the Slack API. Any failure resolves to nil rather than propagating.
func (s *scheduler) resolveChannel(channelID string) *slack.Channel {
	if channel, ok := s.channels.Get(channelID); ok {
		return channel
	}

	channel, err := s.slackAPI.GetConversationInfo(&slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		s.log.Warn("failed to fetch channel info",
			zap.String("channel", channelID),
			zap.Error(err),
		)
		return nil
	}

	s.channels.Add(channelID, channel)
	return channel
}

// pruneMarkers drops markers older than two days behind the earliest local
// date among enabled users. The minimum across zones keeps a marker alive
// for users whose local day lags the rest.
func (s *scheduler) pruneMarkers(users []*entity.UserSettings, now time.Time) {
	if len(s.sent) == 0 {
		return
	}

	cutoff := ""
	for _, settings := range users {
		loc := domain.LoadLocation(settings.Timezone, s.defaultTZ)
		date := now.In(loc).AddDate(0, 0, -2).Format("2006-01-02")
		if cutoff == "" || date < cutoff {
			cutoff = date
		}
	}
	if cutoff == "" {
		loc := domain.LoadLocation(s.defaultTZ, s.defaultTZ)
		cutoff = now.In(loc).AddDate(0, 0, -2).Format("2006-01-02")
	}

	for marker := range s.sent {
		if markerDate(marker) < cutoff {
			delete(s.sent, marker)
		}
	}
}

func markerDate(marker string) string {
	for i := 0; i < len(marker); i++ {
		if marker[i] == ':' {
			return marker[i+1:]
		}
	}
	return ""
}
