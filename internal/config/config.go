package config

import "github.com/kelseyhightower/envconfig"

// Config holds application configuration loaded from environment variables.
type Config struct {
	SlackBotToken      string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackSigningSecret string `envconfig:"SLACK_SIGNING_SECRET" required:"true"`
	DatabasePath       string `envconfig:"DATABASE_PATH" default:"./data/bot.db"`

	GoogleClientSecretFile string `envconfig:"GOOGLE_CLIENT_SECRET_FILE" default:"./credentials.json"`
	GoogleTokenFile        string `envconfig:"GOOGLE_TOKEN_FILE" default:"./token.json"`

	// Inline alternatives for the Google credential files; when the file is
	// missing its content is materialized from these at startup.
	GoogleClientSecretJSON string `envconfig:"GOOGLE_CLIENT_SECRET_JSON"`
	GoogleClientSecretB64  string `envconfig:"GOOGLE_CLIENT_SECRET_B64"`
	GoogleTokenJSON        string `envconfig:"GOOGLE_TOKEN_JSON"`
	GoogleTokenB64         string `envconfig:"GOOGLE_TOKEN_B64"`

	DefaultTimezone string `envconfig:"DEFAULT_TIMEZONE" default:"Asia/Tokyo"`
	PollSeconds     int    `envconfig:"POLL_SECONDS" default:"30"`
	Port            string `envconfig:"PORT" default:"3000"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
