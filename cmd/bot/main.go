package main

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/morny/slack-morning-bot/internal/clients/googlecal"
	"github.com/morny/slack-morning-bot/internal/clients/openmeteo"
	"github.com/morny/slack-morning-bot/internal/config"
	"github.com/morny/slack-morning-bot/internal/database"
	"github.com/morny/slack-morning-bot/internal/domain/service"
	"github.com/morny/slack-morning-bot/internal/handlers"
	"github.com/morny/slack-morning-bot/internal/logger"
	"github.com/morny/slack-morning-bot/migrator/sqlite"
)

func main() {
	if err := godotenv.Load(); err != nil {
		_, _ = os.Stderr.WriteString("warning: .env file not found\n")
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger init error: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := bootstrapGoogleFiles(cfg); err != nil {
		log.Fatal("failed to materialize Google credential files", zap.Error(err))
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	log.Info("running migrations")
	if err := sqlite.Migrate(db.DB()); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	slackClient := slack.New(cfg.SlackBotToken)

	dm := database.NewInstance(db)
	calendarClient := googlecal.New(cfg.GoogleClientSecretFile, cfg.GoogleTokenFile, cfg.DefaultTimezone)
	weatherClient := openmeteo.NewForecastClient()
	geocodeClient := openmeteo.NewGeocodeClient()

	services := service.NewInstance(
		dm,
		slackClient,
		calendarClient,
		weatherClient,
		log,
		cfg.DefaultTimezone,
		time.Duration(cfg.PollSeconds)*time.Second,
	)

	services.Scheduler.Start()
	defer services.Scheduler.Stop()

	// The scheduler stays idle until the Slack token is proven valid.
	if resp, err := slackClient.AuthTest(); err != nil {
		log.Fatal("Slack auth test failed", zap.Error(err))
	} else {
		log.Info("Slack authenticated", zap.String("bot_user", resp.UserID), zap.String("team", resp.Team))
	}
	services.Scheduler.SetReady()

	handler := handlers.New(
		dm,
		services.Summary,
		geocodeClient,
		services.Scheduler,
		log,
		cfg.SlackSigningSecret,
		cfg.DefaultTimezone,
	)

	http.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}

// bootstrapGoogleFiles writes the Google credential files from their inline
// environment variants when the files are absent. Existing files win.
func bootstrapGoogleFiles(cfg config.Config) error {
	files := []struct {
		path    string
		inline  string
		encoded string
	}{
		{cfg.GoogleClientSecretFile, cfg.GoogleClientSecretJSON, cfg.GoogleClientSecretB64},
		{cfg.GoogleTokenFile, cfg.GoogleTokenJSON, cfg.GoogleTokenB64},
	}

	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			continue
		}

		content := []byte(f.inline)
		if len(content) == 0 && f.encoded != "" {
			decoded, err := base64.StdEncoding.DecodeString(f.encoded)
			if err != nil {
				return fmt.Errorf("failed to decode %s content: %w", f.path, err)
			}
			content = decoded
		}
		if len(content) == 0 {
			continue
		}

		if err := os.WriteFile(f.path, content, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	return nil
}
