package accounts

import "time"

// RecipientAccount holds the credit state the ledger operates on. Rows are
// never deleted; they live for the lifetime of the account.
type RecipientAccount struct {
	Email            string `gorm:"column:email;primaryKey"`
	AvailableCredits int64  `gorm:"column:available_credits;not null;default:0"`
	ExtraCredits     int64  `gorm:"column:extra_credits;not null;default:0"`
	CreditLimit      int64  `gorm:"column:credit_limit;not null;default:0"`
	Approved         bool   `gorm:"column:approved;not null;default:false"`
	ImageURL         *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (RecipientAccount) TableName() string { return "recipient_accounts" }

// SpendableCredits is the total a reservation may draw from.
func (r RecipientAccount) SpendableCredits() int64 {
	return r.AvailableCredits + r.ExtraCredits
}

type RestaurantAccount struct {
	ID               string `gorm:"column:id;primaryKey"`
	Email            string `gorm:"column:email;uniqueIndex;not null"`
	Name             string `gorm:"column:name;not null"`
	Address          string
	AvailableCredits int64  `gorm:"column:available_credits;not null;default:0"`
	AcceptingOrders  bool   `gorm:"column:accepting_orders;not null;default:false"`
	OperatingHours   string `gorm:"column:operating_hours"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (RestaurantAccount) TableName() string { return "restaurant_accounts" }
