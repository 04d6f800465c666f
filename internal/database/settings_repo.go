package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/morny/slack-morning-bot/internal/domain/contract"
	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

// allowedSettingsColumns is the upsert allow-list. Writing any other column
// is a programmer error and fails fast.
var allowedSettingsColumns = map[string]bool{
	"calendar_ids":      true,
	"location_name":     true,
	"latitude":          true,
	"longitude":         true,
	"timezone":          true,
	"morning_enabled":   true,
	"morning_time":      true,
	"notify_channel_id": true,
}

const settingsColumns = `slack_user_id, calendar_ids, location_name, latitude, longitude,
		timezone, morning_enabled, morning_time, notify_channel_id, created_at, updated_at`

type settingsRepository struct {
	db dbConn
}

func newSettingsRepository(db dbConn) contract.SettingsRepo {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(slackUserID string) (*entity.UserSettings, error) {
	query := `
		SELECT ` + settingsColumns + `
		FROM user_settings
		WHERE slack_user_id = ?
	`

	settings, err := scanSettings(r.db.QueryRow(query, slackUserID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user settings: %w", err)
	}

	return settings, nil
}

func (r *settingsRepository) ListMorningEnabled() ([]*entity.UserSettings, error) {
	query := `
		SELECT ` + settingsColumns + `
		FROM user_settings
		WHERE morning_enabled = 1
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list morning enabled users: %w", err)
	}
	defer rows.Close()

	var users []*entity.UserSettings
	for rows.Next() {
		settings, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user settings: %w", err)
		}
		users = append(users, settings)
	}

	return users, rows.Err()
}

func (r *settingsRepository) Upsert(slackUserID string, fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("upsert requires at least one column")
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !allowedSettingsColumns[col] {
			return fmt.Errorf("unsupported column in upsert: %s", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	now := time.Now().UTC()
	columns := append([]string{"slack_user_id", "created_at", "updated_at"}, cols...)
	values := []any{slackUserID, now, now}
	for _, col := range cols {
		values = append(values, fields[col])
	}

	updates := make([]string, 0, len(cols)+1)
	for _, col := range cols {
		updates = append(updates, col+" = excluded."+col)
	}
	// created_at keeps its insert-time value; only updated_at is restamped.
	updates = append(updates, "updated_at = excluded.updated_at")

	query := fmt.Sprintf(`
		INSERT INTO user_settings (%s)
		VALUES (%s)
		ON CONFLICT(slack_user_id) DO UPDATE SET %s
	`,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
		strings.Join(updates, ", "),
	)

	if _, err := r.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to upsert user settings: %w", err)
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (*entity.UserSettings, error) {
	settings := &entity.UserSettings{}
	var (
		calendarIDs     sql.NullString
		locationName    sql.NullString
		latitude        sql.NullFloat64
		longitude       sql.NullFloat64
		notifyChannelID sql.NullString
	)

	err := row.Scan(
		&settings.SlackUserID,
		&calendarIDs,
		&locationName,
		&latitude,
		&longitude,
		&settings.Timezone,
		&settings.MorningEnabled,
		&settings.MorningTime,
		&notifyChannelID,
		&settings.CreatedAt,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	settings.CalendarIDs = calendarIDs.String
	settings.LocationName = locationName.String
	settings.NotifyChannelID = notifyChannelID.String
	if latitude.Valid {
		settings.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		settings.Longitude = &longitude.Float64
	}

	return settings, nil
}
