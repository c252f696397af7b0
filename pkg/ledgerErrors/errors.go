// Package ledgerErrors defines the error taxonomy returned by the rewards ledger.
//
// Every error is a precondition or state violation rather than a transient
// fault. Callers should not retry with identical inputs.
package ledgerErrors

import (
	"errors"
	"fmt"
)

// LedgerError is a typed ledger failure with a stable numeric code.
type LedgerError struct {
	// Code is the stable numeric identifier surfaced to clients
	Code uint32
	// Kind is the short name of the failure, e.g. "NothingToClaim"
	Kind string
	// Message is the human readable description
	Message string
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

func newLedgerError(code uint32, kind string, message string) *LedgerError {
	e := &LedgerError{Code: code, Kind: kind, Message: message}
	registry[code] = e
	return e
}

var registry = map[uint32]*LedgerError{}

var (
	ErrClaimWindowNotActive          = newLedgerError(0, "ClaimWindowNotActive", "claim window is not currently active")
	ErrAlreadyClaimed                = newLedgerError(1, "AlreadyClaimed", "recipient has already claimed this distribution")
	ErrInvalidAmount                 = newLedgerError(2, "InvalidAmount", "invalid amount specified")
	ErrInvalidTimeWindow             = newLedgerError(3, "InvalidTimeWindow", "invalid time window configuration")
	ErrInvalidScheduleType           = newLedgerError(4, "InvalidScheduleType", "invalid schedule type")
	ErrUnauthorizedAuthority         = newLedgerError(5, "UnauthorizedAuthority", "unauthorized authority")
	ErrUnauthorizedRecipient         = newLedgerError(6, "UnauthorizedRecipient", "unauthorized recipient")
	ErrInsufficientFunds             = newLedgerError(7, "InsufficientFunds", "insufficient funds in distribution")
	ErrNothingToClaim                = newLedgerError(8, "NothingToClaim", "nothing available to claim")
	ErrMathOverflow                  = newLedgerError(9, "MathOverflow", "math overflow occurred")
	ErrInvalidAccountData            = newLedgerError(10, "InvalidAccountData", "invalid account data")
	ErrInvalidCliffTimestamp         = newLedgerError(16, "InvalidCliffTimestamp", "invalid cliff timestamp")
	ErrExceedsClaimableAmount        = newLedgerError(17, "ExceedsClaimableAmount", "requested amount exceeds claimable amount")
	ErrInvalidMerkleProof            = newLedgerError(18, "InvalidMerkleProof", "invalid merkle proof")
	ErrClaimNotFullyVested           = newLedgerError(19, "ClaimNotFullyVested", "claim is not fully vested")
	ErrClaimedAmountDecreased        = newLedgerError(20, "ClaimedAmountDecreased", "claimed amount cannot decrease")
	ErrClaimantAlreadyRevoked        = newLedgerError(21, "ClaimantAlreadyRevoked", "claimant has already been revoked")
	ErrInvalidRevokeMode             = newLedgerError(22, "InvalidRevokeMode", "invalid revoke mode")
	ErrDistributionNotRevocable      = newLedgerError(23, "DistributionNotRevocable", "distribution is not revocable")
	ErrClawbackNotReached            = newLedgerError(24, "ClawbackNotReached", "clawback timestamp not reached")
	ErrInsufficientOptedInSupply     = newLedgerError(25, "InsufficientOptedInSupply", "opted-in supply is zero")
	ErrDistributionAmountTooSmall    = newLedgerError(26, "DistributionAmountTooSmall", "distribution amount too small for opted-in supply")
	ErrBalanceSourceMismatch         = newLedgerError(27, "BalanceSourceMismatch", "operation not supported for pool balance source")
	ErrInvalidBalanceSource          = newLedgerError(28, "InvalidBalanceSource", "invalid balance source")
	ErrUserRevoked                   = newLedgerError(29, "UserRevoked", "user has been revoked from this pool")
	ErrDistributionNotClosed         = newLedgerError(30, "DistributionNotClosed", "parent distribution is not closed")
	ErrDistributionClosed            = newLedgerError(31, "DistributionClosed", "distribution is closed")
	ErrDistributionHasOpenRecipients = newLedgerError(32, "DistributionHasOpenRecipients", "distribution still has open recipients")
	ErrAccountNotFound               = newLedgerError(33, "AccountNotFound", "account not found")
	ErrAccountAlreadyExists          = newLedgerError(34, "AccountAlreadyExists", "account already exists")
	ErrUserOptedOut                  = newLedgerError(35, "UserOptedOut", "user has opted out of this pool")
)

// FromCode returns the registered error for a numeric code.
func FromCode(code uint32) (*LedgerError, bool) {
	e, ok := registry[code]
	return e, ok
}

// CodeOf extracts the ledger error code from an error chain.
func CodeOf(err error) (uint32, bool) {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Code, true
	}
	return 0, false
}

// IsLedgerError reports whether err wraps any ledger error.
func IsLedgerError(err error) bool {
	_, ok := CodeOf(err)
	return ok
}

// KindOf returns the Kind of the ledger error wrapped by err, or "" when there is none.
func KindOf(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
