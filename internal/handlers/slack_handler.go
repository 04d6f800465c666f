package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/morny/slack-morning-bot/internal/domain"
	"github.com/morny/slack-morning-bot/internal/domain/contract"
	"github.com/morny/slack-morning-bot/internal/domain/entity"
	slackcmd "github.com/morny/slack-morning-bot/internal/slack"
)

type SlackHandler struct {
	dm            contract.DataManager
	summaries     contract.SummaryService
	geocoder      contract.GeocodeAPI
	observer      contract.SettingsObserver
	log           *zap.Logger
	signingSecret string
	defaultTZ     string
}

func New(dm contract.DataManager, summaries contract.SummaryService, geocoder contract.GeocodeAPI, observer contract.SettingsObserver, log *zap.Logger, signingSecret, defaultTZ string) *SlackHandler {
	return &SlackHandler{
		dm:            dm,
		summaries:     summaries,
		geocoder:      geocoder,
		observer:      observer,
		log:           log,
		signingSecret: signingSecret,
		defaultTZ:     defaultTZ,
	}
}

func (h *SlackHandler) HandleSlashCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.Body = io.NopCloser(bytes.NewBuffer(body))

	// Verify Slack signature
	verifier, err := slack.NewSecretsVerifier(r.Header, h.signingSecret)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := verifier.Write(body); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := verifier.Ensure(); err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	s, err := slack.SlashCommandParse(r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	cmd, err := slackcmd.ParseCommand(s.Text)
	if err != nil {
		h.respondWithError(w, err.Error())
		return
	}

	response := h.handleCommand(r.Context(), cmd, &s)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *SlackHandler) handleCommand(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	switch cmd.Type {
	case slackcmd.CmdSetCalendar:
		return h.handleSetCalendar(cmd, slashCmd)
	case slackcmd.CmdSetLocation:
		return h.handleSetLocation(ctx, cmd, slashCmd)
	case slackcmd.CmdToday:
		return h.handleToday(ctx, slashCmd)
	case slackcmd.CmdMorningOn:
		return h.handleMorningOn(cmd, slashCmd)
	case slackcmd.CmdMorningOff:
		return h.handleMorningOff(slashCmd)
	case slackcmd.CmdStatus:
		return h.handleStatus(slashCmd)
	case slackcmd.CmdHelp:
		return h.handleHelp()
	default:
		return h.createErrorResponse("Unknown command. Try `/morny help`.")
	}
}

func (h *SlackHandler) handleSetCalendar(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse("Please give a calendar id: `/morny setcalendar your@gmail.com`")
	}

	ids := domain.ParseCalendarIDs(strings.Join(cmd.Args, " "))
	if ids == nil {
		return h.createErrorResponse("Invalid calendar ids. Separate several ids with commas; each must be 255 characters or fewer.")
	}

	if err := h.dm.Settings().Upsert(slashCmd.UserID, map[string]any{
		"calendar_ids": domain.SerializeCalendarIDs(ids),
	}); err != nil {
		h.log.Error("failed to save calendar ids", zap.Error(err))
		return h.createErrorResponse("Failed to save the calendar settings.")
	}
	h.observer.NotifySettingsChanged(slashCmd.UserID)

	if len(ids) == 1 {
		return &slack.Msg{
			ResponseType: slack.ResponseTypeEphemeral,
			Text:         fmt.Sprintf("✅ Calendar registered: `%s`", ids[0]),
		}
	}
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ %d calendars registered:\n• `%s`", len(ids), strings.Join(ids, "`\n• `")),
	}
}

func (h *SlackHandler) handleSetLocation(ctx context.Context, cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	if len(cmd.Args) == 0 {
		return h.createErrorResponse("Please give a place or coordinates: `/morny setlocation Tokyo` or `/morny setlocation 35.68,139.76`")
	}

	query := strings.Join(cmd.Args, " ")

	if domain.LooksLikeCoordinates(query) {
		lat, lon, ok, err := domain.ParseLatLon(query)
		if err != nil {
			return h.createErrorResponse(fmt.Sprintf("Invalid coordinates: %v", err))
		}
		if !ok {
			return h.createErrorResponse("Invalid coordinates. Use decimal `lat,lon`, e.g. `35.68,139.76`.")
		}
		return h.saveLocation(slashCmd.UserID, query, lat, lon)
	}

	result, err := h.geocoder.Geocode(ctx, query)
	if err != nil {
		h.log.Error("geocoding failed", zap.String("query", query), zap.Error(err))
		return h.createErrorResponse("Failed to look up the location. Please try again later.")
	}
	if result == nil {
		return h.createErrorResponse(fmt.Sprintf("Couldn't find a place named `%s`. Try another spelling or give `lat,lon` directly.", query))
	}

	return h.saveLocation(slashCmd.UserID, result.Name, result.Latitude, result.Longitude)
}

func (h *SlackHandler) saveLocation(userID, name string, lat, lon float64) *slack.Msg {
	if err := h.dm.Settings().Upsert(userID, map[string]any{
		"location_name": name,
		"latitude":      lat,
		"longitude":     lon,
	}); err != nil {
		h.log.Error("failed to save location", zap.Error(err))
		return h.createErrorResponse("Failed to save the location settings.")
	}
	h.observer.NotifySettingsChanged(userID)

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Weather location set to *%s* (%.4f, %.4f).", name, lat, lon),
	}
}

func (h *SlackHandler) handleToday(ctx context.Context, slashCmd *slack.SlashCommand) *slack.Msg {
	settings, err := h.settingsFor(slashCmd.UserID)
	if err != nil {
		return h.createErrorResponse("Failed to read your settings.")
	}

	summary := h.summaries.BuildSummary(ctx, settings)

	return &slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Text:         slackcmd.FormatDailyReport(settings, summary, false, false),
	}
}

func (h *SlackHandler) handleMorningOn(cmd *slackcmd.Command, slashCmd *slack.SlashCommand) *slack.Msg {
	notifyTime := entity.DefaultMorningTime
	if len(cmd.Args) > 0 {
		notifyTime = strings.TrimSpace(cmd.Args[0])
		if !domain.IsValidHHMM(notifyTime) {
			return h.createErrorResponse("Invalid time. Use 24-hour `HH:MM`, e.g. `/morny on 07:30`.")
		}
	}

	if err := h.dm.Settings().Upsert(slashCmd.UserID, map[string]any{
		"morning_enabled":   true,
		"morning_time":      notifyTime,
		"notify_channel_id": slashCmd.ChannelID,
	}); err != nil {
		h.log.Error("failed to enable morning notification", zap.Error(err))
		return h.createErrorResponse("Failed to save the notification settings.")
	}
	h.observer.NotifySettingsChanged(slashCmd.UserID)

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("✅ Morning notification enabled: every day at %s in <#%s>.", notifyTime, slashCmd.ChannelID),
	}
}

func (h *SlackHandler) handleMorningOff(slashCmd *slack.SlashCommand) *slack.Msg {
	if err := h.dm.Settings().Upsert(slashCmd.UserID, map[string]any{
		"morning_enabled": false,
	}); err != nil {
		h.log.Error("failed to disable morning notification", zap.Error(err))
		return h.createErrorResponse("Failed to save the notification settings.")
	}
	h.observer.NotifySettingsChanged(slashCmd.UserID)

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "✅ Morning notification disabled.",
	}
}

func (h *SlackHandler) handleStatus(slashCmd *slack.SlashCommand) *slack.Msg {
	settings, err := h.settingsFor(slashCmd.UserID)
	if err != nil {
		return h.createErrorResponse("Failed to read your settings.")
	}

	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.FormatStatus(settings),
	}
}

func (h *SlackHandler) handleHelp() *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         slackcmd.GetHelpText(),
	}
}

// settingsFor returns the stored settings row, or the defaults when the user
// has never written one.
func (h *SlackHandler) settingsFor(userID string) (*entity.UserSettings, error) {
	settings, err := h.dm.Settings().Get(userID)
	if err != nil {
		h.log.Error("failed to load settings", zap.String("user", userID), zap.Error(err))
		return nil, err
	}
	if settings == nil {
		settings = entity.EmptySettings(userID, h.defaultTZ)
	}
	return settings, nil
}

func (h *SlackHandler) createErrorResponse(message string) *slack.Msg {
	return &slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("❌ %s", message),
	}
}

func (h *SlackHandler) respondWithError(w http.ResponseWriter, message string) {
	response := h.createErrorResponse(message)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
