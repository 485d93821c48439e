package accounts

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// DB returns the underlying database connection for direct queries.
func (r *Repo) DB() *gorm.DB { return r.db }

func (r *Repo) GetRecipient(ctx context.Context, email string) (RecipientAccount, error) {
	var rec RecipientAccount
	err := r.db.WithContext(ctx).First(&rec, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RecipientAccount{}, ErrRecipientNotFound
	}
	return rec, err
}

func (r *Repo) GetRestaurant(ctx context.Context, id string) (RestaurantAccount, error) {
	var res RestaurantAccount
	err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RestaurantAccount{}, ErrRestaurantNotFound
	}
	return res, err
}

func (r *Repo) GetRestaurantByEmail(ctx context.Context, email string) (RestaurantAccount, error) {
	var res RestaurantAccount
	err := r.db.WithContext(ctx).First(&res, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RestaurantAccount{}, ErrRestaurantNotFound
	}
	return res, err
}

// SetApproval gates claim creation for a recipient.
func (r *Repo) SetApproval(ctx context.Context, email string, approved bool) error {
	res := r.db.WithContext(ctx).Model(&RecipientAccount{}).
		Where("email = ?", email).
		Update("approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

type UpdateRecipientParams struct {
	AvailableCredits int64
	ExtraCredits     int64
	CreditLimit      int64
	Approved         bool
}

// UpdateRecipient is the admin path for adjusting a recipient's credit
// configuration wholesale. Ledger invariants (available <= limit) are the
// caller's responsibility here, matching the original admin tooling.
func (r *Repo) UpdateRecipient(ctx context.Context, email string, in UpdateRecipientParams) error {
	res := r.db.WithContext(ctx).Model(&RecipientAccount{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"available_credits": in.AvailableCredits,
			"extra_credits":     in.ExtraCredits,
			"credit_limit":      in.CreditLimit,
			"approved":          in.Approved,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecipientNotFound
	}
	return nil
}

func (r *Repo) SetAcceptingOrders(ctx context.Context, restaurantID string, accepting bool) error {
	res := r.db.WithContext(ctx).Model(&RestaurantAccount{}).
		Where("id = ?", restaurantID).
		Update("accepting_orders", accepting)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

func (r *Repo) SetOperatingHours(ctx context.Context, restaurantID string, hours string) error {
	res := r.db.WithContext(ctx).Model(&RestaurantAccount{}).
		Where("id = ?", restaurantID).
		Update("operating_hours", hours)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}
