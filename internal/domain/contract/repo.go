package contract

import (
	"context"

	"github.com/morny/slack-morning-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Settings() SettingsRepo
}

// SettingsRepo defines the contract for the user settings repository
type SettingsRepo interface {
	// Get returns the settings row for a user, or nil when none exists.
	Get(slackUserID string) (*entity.UserSettings, error)

	// ListMorningEnabled returns every user with morning notifications on.
	ListMorningEnabled() ([]*entity.UserSettings, error)

	// Upsert writes the given columns for a user, inserting the row on first
	// write. Column names outside the repository's allow-list are rejected.
	Upsert(slackUserID string, fields map[string]any) error
}
