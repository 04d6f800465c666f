package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
	"github.com/morny/slack-morning-bot/internal/handlers/test"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func decodeMsg(t *testing.T, resp *httptest.ResponseRecorder) slack.Msg {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.Code)

	var response slack.Msg
	err := json.Unmarshal(resp.Body.Bytes(), &response)
	require.NoError(t, err)
	return response
}

func TestSlackHandler_HandleSlashCommand_Morning(t *testing.T) {
	type args struct {
		text      string
		channelID string
		userID    string
	}

	tests := []struct {
		name          string
		args          args
		buildMocks    func(m test.ServiceMocks, args args)
		checkResponse func(t *testing.T, resp *httptest.ResponseRecorder)
	}{
		{
			name: "Should enable notifications with an explicit time",
			args: args{text: "on 08:15", channelID: "C123456789", userID: "U987654321"},
			buildMocks: func(m test.ServiceMocks, args args) {
				m.SettingsRepoMock.EXPECT().
					Upsert(args.userID, map[string]any{
						"morning_enabled":   true,
						"morning_time":      "08:15",
						"notify_channel_id": args.channelID,
					}).
					Return(nil).Times(1)
				m.ObserverMock.EXPECT().NotifySettingsChanged(args.userID).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "✅ Morning notification enabled: every day at 08:15 in <#C123456789>.")
			},
		},
		{
			name: "Should enable notifications with the default time",
			args: args{text: "on", channelID: "C123456789", userID: "U987654321"},
			buildMocks: func(m test.ServiceMocks, args args) {
				m.SettingsRepoMock.EXPECT().
					Upsert(args.userID, map[string]any{
						"morning_enabled":   true,
						"morning_time":      "07:30",
						"notify_channel_id": args.channelID,
					}).
					Return(nil).Times(1)
				m.ObserverMock.EXPECT().NotifySettingsChanged(args.userID).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "every day at 07:30")
			},
		},
		{
			name: "Should reject an invalid time without writing",
			args: args{text: "on 25:99", channelID: "C123456789", userID: "U987654321"},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "❌ Invalid time")
			},
		},
		{
			name: "Should disable notifications",
			args: args{text: "off", channelID: "C123456789", userID: "U987654321"},
			buildMocks: func(m test.ServiceMocks, args args) {
				m.SettingsRepoMock.EXPECT().
					Upsert(args.userID, map[string]any{"morning_enabled": false}).
					Return(nil).Times(1)
				m.ObserverMock.EXPECT().NotifySettingsChanged(args.userID).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "✅ Morning notification disabled.")
			},
		},
		{
			name: "Should surface a storage failure",
			args: args{text: "off", channelID: "C123456789", userID: "U987654321"},
			buildMocks: func(m test.ServiceMocks, args args) {
				m.SettingsRepoMock.EXPECT().
					Upsert(args.userID, gomock.Any()).
					Return(errors.New("db locked")).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "❌ Failed to save the notification settings.")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, handler, ctrl := test.GetHandlerTest(t)
			defer ctrl.Finish()

			if tt.buildMocks != nil {
				tt.buildMocks(m, tt.args)
			}

			req := test.CreateSlackRequest(t, "/morny", tt.args.text, tt.args.channelID, tt.args.userID, test.SigningSecret)
			resp := test.CreateTestRecorder()

			handler.HandleSlashCommand(resp, req)
			tt.checkResponse(t, resp)
		})
	}
}

func TestSlackHandler_HandleSlashCommand_SetCalendar(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		buildMocks    func(m test.ServiceMocks)
		checkResponse func(t *testing.T, resp *httptest.ResponseRecorder)
	}{
		{
			name: "Should register a single calendar",
			text: "setcalendar work@gmail.com",
			buildMocks: func(m test.ServiceMocks) {
				m.SettingsRepoMock.EXPECT().
					Upsert("U987654321", map[string]any{"calendar_ids": "work@gmail.com"}).
					Return(nil).Times(1)
				m.ObserverMock.EXPECT().NotifySettingsChanged("U987654321").Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "✅ Calendar registered: `work@gmail.com`")
			},
		},
		{
			name: "Should register several comma separated calendars",
			text: "setcalendar work@gmail.com,family@group.calendar.google.com",
			buildMocks: func(m test.ServiceMocks) {
				m.SettingsRepoMock.EXPECT().
					Upsert("U987654321", map[string]any{
						"calendar_ids": "work@gmail.com, family@group.calendar.google.com",
					}).
					Return(nil).Times(1)
				m.ObserverMock.EXPECT().NotifySettingsChanged("U987654321").Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "✅ 2 calendars registered")
			},
		},
		{
			name: "Should ask for an id when none is given",
			text: "setcalendar",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "❌ Please give a calendar id")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, handler, ctrl := test.GetHandlerTest(t)
			defer ctrl.Finish()

			if tt.buildMocks != nil {
				tt.buildMocks(m)
			}

			req := test.CreateSlackRequest(t, "/morny", tt.text, "C123456789", "U987654321", test.SigningSecret)
			resp := test.CreateTestRecorder()

			handler.HandleSlashCommand(resp, req)
			tt.checkResponse(t, resp)
		})
	}
}

func TestSlackHandler_HandleSlashCommand_SetLocation(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		buildMocks    func(m test.ServiceMocks)
		checkResponse func(t *testing.T, resp *httptest.ResponseRecorder)
	}{
		{
			name: "Should store raw coordinates without geocoding",
			text: "setlocation 35.68,139.76",
			buildMocks: func(m test.ServiceMocks) {
				m.SettingsRepoMock.EXPECT().
					Upsert("U987654321", map[string]any{
						"location_name": "35.68,139.76",
						"latitude":      35.68,
						"longitude":     139.76,
					}).
					Return(nil).Times(1)
				m.ObserverMock.EXPECT().NotifySettingsChanged("U987654321").Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "✅ Weather location set to *35.68,139.76*")
			},
		},
		{
			name: "Should reject coordinates out of range",
			text: "setlocation 95.0,139.76",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "❌ Invalid coordinates")
			},
		},
		{
			name: "Should geocode a place name",
			text: "setlocation Tsukuba",
			buildMocks: func(m test.ServiceMocks) {
				m.GeocodeMock.EXPECT().
					Geocode(gomock.Any(), "Tsukuba").
					Return(&entity.GeoResult{
						Name:      "Tsukuba, Ibaraki, Japan",
						Latitude:  36.0835,
						Longitude: 140.0764,
					}, nil).Times(1)
				m.SettingsRepoMock.EXPECT().
					Upsert("U987654321", map[string]any{
						"location_name": "Tsukuba, Ibaraki, Japan",
						"latitude":      36.0835,
						"longitude":     140.0764,
					}).
					Return(nil).Times(1)
				m.ObserverMock.EXPECT().NotifySettingsChanged("U987654321").Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "✅ Weather location set to *Tsukuba, Ibaraki, Japan*")
			},
		},
		{
			name: "Should report when no place matches",
			text: "setlocation Nowhereville",
			buildMocks: func(m test.ServiceMocks) {
				m.GeocodeMock.EXPECT().
					Geocode(gomock.Any(), "Nowhereville").
					Return(nil, nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "❌ Couldn't find a place named `Nowhereville`")
			},
		},
		{
			name: "Should report a geocoding outage",
			text: "setlocation Tsukuba",
			buildMocks: func(m test.ServiceMocks) {
				m.GeocodeMock.EXPECT().
					Geocode(gomock.Any(), "Tsukuba").
					Return(nil, errors.New("upstream 502")).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "❌ Failed to look up the location")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, handler, ctrl := test.GetHandlerTest(t)
			defer ctrl.Finish()

			if tt.buildMocks != nil {
				tt.buildMocks(m)
			}

			req := test.CreateSlackRequest(t, "/morny", tt.text, "C123456789", "U987654321", test.SigningSecret)
			resp := test.CreateTestRecorder()

			handler.HandleSlashCommand(resp, req)
			tt.checkResponse(t, resp)
		})
	}
}

func TestSlackHandler_HandleSlashCommand_TodayAndStatus(t *testing.T) {
	lat, lon := 35.68, 139.76

	tests := []struct {
		name          string
		text          string
		buildMocks    func(m test.ServiceMocks)
		checkResponse func(t *testing.T, resp *httptest.ResponseRecorder)
	}{
		{
			name: "Should post the daily report in the channel",
			text: "today",
			buildMocks: func(m test.ServiceMocks) {
				settings := &entity.UserSettings{
					SlackUserID:  "U987654321",
					LocationName: "Tokyo",
					Latitude:     &lat,
					Longitude:    &lon,
					Timezone:     "Asia/Tokyo",
				}
				m.SettingsRepoMock.EXPECT().Get("U987654321").Return(settings, nil).Times(1)
				m.SummaryMock.EXPECT().
					BuildSummary(gomock.Any(), settings).
					Return(&entity.DailySummary{
						CalendarStatus: entity.StatusOK,
						WeatherStatus:  entity.StatusMissing,
					}).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Equal(t, slack.ResponseTypeInChannel, response.ResponseType)
				assert.Contains(t, response.Text, "No events today")
			},
		},
		{
			name: "Should show default settings for a new user",
			text: "status",
			buildMocks: func(m test.ServiceMocks) {
				m.SettingsRepoMock.EXPECT().Get("U987654321").Return(nil, nil).Times(1)
			},
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Equal(t, slack.ResponseTypeEphemeral, response.ResponseType)
				assert.Contains(t, response.Text, "*Current settings*")
				assert.Contains(t, response.Text, "Notifications: OFF (07:30)")
				assert.Contains(t, response.Text, "Timezone: `Asia/Tokyo`")
			},
		},
		{
			name: "Should show the help text for an empty command",
			text: "",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "*Available commands:*")
			},
		},
		{
			name: "Should reject an unknown subcommand",
			text: "yesterday",
			checkResponse: func(t *testing.T, resp *httptest.ResponseRecorder) {
				response := decodeMsg(t, resp)
				assert.Contains(t, response.Text, "❌ unknown command: yesterday")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, handler, ctrl := test.GetHandlerTest(t)
			defer ctrl.Finish()

			if tt.buildMocks != nil {
				tt.buildMocks(m)
			}

			req := test.CreateSlackRequest(t, "/morny", tt.text, "C123456789", "U987654321", test.SigningSecret)
			resp := test.CreateTestRecorder()

			handler.HandleSlashCommand(resp, req)
			tt.checkResponse(t, resp)
		})
	}
}

func TestSlackHandler_HandleSlashCommand_RejectsBadSignature(t *testing.T) {
	_, handler, ctrl := test.GetHandlerTest(t)
	defer ctrl.Finish()

	req := test.CreateSlackRequest(t, "/morny", "status", "C123456789", "U987654321", "wrong-secret")
	resp := test.CreateTestRecorder()

	handler.HandleSlashCommand(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
