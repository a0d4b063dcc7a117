package marketplace

import "errors"

// Transition guard failures. Custody and transfer failures surface as the
// ledger, escrow and authority sentinels (ledger.ErrInsufficientFunds,
// ledger.ErrOwnershipMismatch, ledger.ErrInsufficientBalance,
// escrow.ErrEmptyCustody, authority.ErrInvalidAuthority) and propagate
// through transitions unwrapped.
var (
	ErrInvalidPrice       = errors.New("invalid price - must be greater than 0")
	ErrDuplicateListing   = errors.New("listing already active for asset")
	ErrListingNotActive   = errors.New("listing is not active")
	ErrUnauthorizedSeller = errors.New("unauthorized seller")
)
