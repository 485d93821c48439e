// Local-dev helper: migrates the schema and inserts a couple of accounts to
// click around with. Never point it at production.
package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"mealrelay.org/app/internal/config"
	"mealrelay.org/app/internal/modules/accounts"
	"mealrelay.org/app/internal/modules/audit"
	"mealrelay.org/app/internal/modules/claims"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&accounts.RecipientAccount{},
		&accounts.RestaurantAccount{},
		&claims.DonationClaim{},
		&audit.Entry{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rec := accounts.RecipientAccount{
		Email:            "recipient@example.com",
		AvailableCredits: 20,
		CreditLimit:      20,
		Approved:         true,
	}
	rest := accounts.RestaurantAccount{
		ID:              "rest-1",
		Email:           "restaurant@example.com",
		Name:            "Corner Kitchen",
		Address:         "12 Main St",
		AcceptingOrders: true,
		OperatingHours:  "11:00-21:00",
	}

	if err := db.FirstOrCreate(&rec, "email = ?", rec.Email).Error; err != nil {
		log.Fatalf("seed recipient: %v", err)
	}
	if err := db.FirstOrCreate(&rest, "id = ?", rest.ID).Error; err != nil {
		log.Fatalf("seed restaurant: %v", err)
	}

	fmt.Println("schema migrated, sample accounts in place")
}
