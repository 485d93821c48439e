package claims

import (
	"encoding/json"
	"time"
)

// Actor identifies who drove a claim into a terminal state.
const (
	ActorRecipient  = "recipient"
	ActorRestaurant = "restaurant"
	ActorSystem     = "system"
)

// DonationClaim is a reservation of recipient credits against a feed item,
// settled by physical pickup at the restaurant. Amount is fixed at creation
// and never changes. Active doubles as the mutual-exclusion token for the
// terminal transition: every path out of Active is a compare-and-set on it.
type DonationClaim struct {
	ID             string `gorm:"column:id;primaryKey"`
	RestaurantID   string `gorm:"column:restaurant_id;index;not null"`
	FeedItemID     string `gorm:"column:feed_item_id;index;not null"`
	RecipientEmail string `gorm:"column:recipient_email;index;not null"`
	MealItemsJSON  []byte `gorm:"column:meal_items"`
	PickupCode     string `gorm:"column:pickup_code;not null"`
	Amount         int64  `gorm:"column:amount;not null"`
	PickupTime     time.Time
	CreatedAt      time.Time
	Timezone       string
	Active         bool    `gorm:"column:active;not null;index"`
	Verified       bool    `gorm:"column:verified;not null"`
	CanceledBy     *string `gorm:"column:canceled_by"`
}

func (DonationClaim) TableName() string { return "donation_claims" }

func (c *DonationClaim) MealItems() []string {
	if len(c.MealItemsJSON) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(c.MealItemsJSON, &items); err != nil {
		return nil
	}
	return items
}

func (c *DonationClaim) SetMealItems(items []string) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	c.MealItemsJSON = b
	return nil
}
