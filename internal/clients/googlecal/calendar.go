// Package googlecal fetches today's events from the Google Calendar API
// using installed-app OAuth credentials stored on disk.
package googlecal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/morny/slack-morning-bot/internal/domain"
	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

const defaultTimeout = 10 * time.Second

const untitledEvent = "(untitled)"

type Client struct {
	clientSecretFile string
	tokenFile        string
	defaultTZ        string
	timeout          time.Duration
}

func New(clientSecretFile, tokenFile, defaultTZ string) *Client {
	return &Client{
		clientSecretFile: clientSecretFile,
		tokenFile:        tokenFile,
		defaultTZ:        defaultTZ,
		timeout:          defaultTimeout,
	}
}

// TodayEvents lists events between local midnight and midnight tomorrow in
// the given zone, normalized to entity.Event.
func (c *Client) TodayEvents(ctx context.Context, calendarID, timezone string) ([]entity.Event, error) {
	tz := timezone
	if tz == "" {
		tz = c.defaultTZ
	}
	loc := domain.LoadLocation(tz, c.defaultTZ)

	now := time.Now().In(loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	result, err := svc.Events.List(calendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		TimeZone(tz).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	events := make([]entity.Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, normalizeEvent(item, loc))
	}
	return events, nil
}

func (c *Client) service(ctx context.Context) (*calendar.Service, error) {
	secret, err := os.ReadFile(c.clientSecretFile)
	if err != nil {
		return nil, fmt.Errorf("google client secret not available: %w", err)
	}

	config, err := google.ConfigFromJSON(secret, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse google client secret: %w", err)
	}

	raw, err := os.ReadFile(c.tokenFile)
	if err != nil {
		return nil, fmt.Errorf("google token not available: %w", err)
	}

	token := &oauth2.Token{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, fmt.Errorf("failed to parse google token: %w", err)
	}

	// The token source refreshes expired tokens transparently.
	svc, err := calendar.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar service: %w", err)
	}
	return svc, nil
}

func normalizeEvent(item *calendar.Event, loc *time.Location) entity.Event {
	summary := item.Summary
	if summary == "" {
		summary = untitledEvent
	}

	// Date-only start means an all-day event.
	if item.Start != nil && item.Start.Date != "" {
		return entity.Event{Summary: summary, AllDay: true}
	}

	event := entity.Event{Summary: summary}
	if item.Start != nil {
		event.Start = localHHMM(item.Start.DateTime, loc)
	}
	if item.End != nil {
		event.End = localHHMM(item.End.DateTime, loc)
	}
	return event
}

func localHHMM(value string, loc *time.Location) string {
	if value == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}
