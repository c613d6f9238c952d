package payment

import "errors"

// ErrInvalidTiers indicates the payment schedule is empty or contains a malformed tier.
var ErrInvalidTiers = errors.New("payment tiers must be non-empty ranges with non-negative bounds and amounts")
