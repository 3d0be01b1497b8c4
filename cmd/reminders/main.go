// Command reminders sends every practitioner a summary of tomorrow's
// schedule. Intended to run once a day from cron or a scheduler.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dmborges/clinicagenda/cmd/mainconfig"
	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/appointments"
	appconfig "github.com/dmborges/clinicagenda/internal/config"
	"github.com/dmborges/clinicagenda/internal/notify"
	"github.com/dmborges/clinicagenda/internal/patients"
	"github.com/dmborges/clinicagenda/internal/schedule"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel).Background("reminders")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	accountRepo := accounts.NewRepository(pool)
	patientRepo := patients.NewRepository(pool)
	appointmentRepo := appointments.NewRepository(pool)
	reconciler := schedule.NewReconciler(appointmentRepo, patientRepo, nil, nil, logger)
	scheduleService := schedule.NewService(appointmentRepo, patientRepo, reconciler, nil, logger)

	sender := buildEmailSender(cfg, awsCfg, logger)
	reminders := notify.NewReminderService(sender, scheduleService, accountRepo, logger)

	userIDs, err := accountRepo.ListUserIDs(ctx)
	if err != nil {
		logger.Error("failed to list accounts", "error", err)
		os.Exit(1)
	}

	sent, failed := 0, 0
	for _, userID := range userIDs {
		total, err := reminders.SendDailySummary(ctx, userID)
		if err != nil {
			failed++
			continue
		}
		if total > 0 {
			sent++
		}
	}
	logger.Info("daily summaries done", "accounts", len(userIDs), "sent", sent, "failed", failed)
}

// buildEmailSender picks the configured provider: sendgrid, ses, or a
// logging stub when neither is configured.
func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.EmailProvider == "sendgrid" || (cfg.EmailProvider == "auto" && cfg.SendGridAPIKey != "") {
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender
		}
	}
	if cfg.EmailProvider == "ses" || (cfg.EmailProvider == "auto" && cfg.SESFromEmail != "") {
		if sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			return sender
		}
	}
	logger.Warn("email sending disabled, using stub sender")
	return notify.NewStubEmailSender(logger)
}
