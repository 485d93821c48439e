package main

import (
	"log"
	"os"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"mealrelay.org/app/internal/config"
	apphttp "mealrelay.org/app/internal/http"
	"mealrelay.org/app/internal/mailer"
	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/claims"
	"mealrelay.org/app/internal/modules/notify"
)

func main() {
	// Load .env file (ignore error if not found - prod uses real env vars)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	dispatcher := notify.NewDispatcher(
		mailer.NewSMTPMailer(cfg.SMTP), cfg.SMTP.From, cfg.SMTP.FromName, logger)

	r := apphttp.NewRouter(apphttp.RouterDeps{
		Logger:   logger,
		Claims:   claims.NewService(db, cfg.PickupCodeLen),
		Accounts: accounts.NewRepo(db),
		Notify:   dispatcher,
	})
	_ = r.Run(cfg.Addr)
}
