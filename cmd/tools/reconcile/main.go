// One-shot reconciliation runner, meant to be invoked from cron (or an
// equivalent scheduler). Each subcommand runs one job and exits:
//
//	reconcile forfeit  - expire claims a day past their pickup deadline
//	reconcile archive  - print week-old settled claims for downstream archival
//	reconcile refresh  - reset every recipient's allowance to their limit
//	reconcile all      - run the three in order
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"mealrelay.org/app/internal/config"
	"mealrelay.org/app/internal/modules/claims"
	"mealrelay.org/app/internal/modules/reconcile"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		log.Fatal("usage: reconcile <forfeit|archive|refresh|all>")
	}
	cmd := os.Args[1]

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

	jobs := reconcile.NewJobs(db, claims.NewService(db, cfg.PickupCodeLen), logger)
	ctx := context.Background()
	now := time.Now().UTC()

	run := func(name string) {
		switch name {
		case "forfeit":
			n, err := jobs.ForfeitDayOld(ctx, now)
			if err != nil {
				log.Fatalf("forfeit: %v", err)
			}
			fmt.Printf("forfeited %d claims\n", n)
		case "archive":
			list, err := jobs.WeekOldClaims(ctx, now)
			if err != nil {
				log.Fatalf("archive: %v", err)
			}
			enc := json.NewEncoder(os.Stdout)
			for _, c := range list {
				if err := enc.Encode(c); err != nil {
					log.Fatalf("archive: %v", err)
				}
			}
		case "refresh":
			resets, err := jobs.RefreshAllowances(ctx)
			if err != nil {
				log.Fatalf("refresh: %v", err)
			}
			fmt.Printf("refreshed %d recipients\n", len(resets))
		default:
			log.Fatalf("unknown job %q", name)
		}
	}

	if cmd == "all" {
		run("forfeit")
		run("archive")
		run("refresh")
		return
	}
	run(cmd)
}
