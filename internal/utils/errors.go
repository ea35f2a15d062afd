package utils

import "errors"

// Common application errors used across repositories and services.
var (
	ErrNotFound             = errors.New("NOT_FOUND")
	ErrDuplicateUniqueField = errors.New("DUPLICATE_UNIQUE_FIELD")
	ErrInvalidCredentials   = errors.New("INVALID_CREDENTIALS")
	ErrAccountInactive      = errors.New("ACCOUNT_INACTIVE")
	ErrInvalidToken         = errors.New("INVALID_TOKEN")
	ErrCouponUnavailable    = errors.New("COUPON_UNAVAILABLE")
)
