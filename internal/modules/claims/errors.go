package claims

import "errors"

var (
	ErrClaimNotFound         = errors.New("claim not found")
	ErrClaimAlreadyTerminal  = errors.New("claim is no longer active")
	ErrCodeMismatch          = errors.New("pickup code does not match")
	ErrRestaurantUnavailable = errors.New("restaurant is not accepting orders")
)
