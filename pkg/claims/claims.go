// Package claims holds the claim capability shared by every distribution kind
// and the vested allocation math used by direct recipients and merkle claims.
package claims

import (
	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
)

// Claimable is implemented by anything a recipient can claim against.
type Claimable interface {
	// Claimable returns the amount that could be claimed at now.
	Claimable(now int64) (uint64, error)
	// MarkClaimed records a successful claim of amount.
	MarkClaimed(amount uint64) error
	// Revoke applies mode at now and reports where the remaining value goes.
	Revoke(mode revocation.RevokeMode, now int64) (*RevokeResult, error)
}

// RevokeResult describes how value was split by a revocation.
type RevokeResult struct {
	Mode revocation.RevokeMode
	// VestedUnclaimed was unlocked but unclaimed at revocation time.
	// NonVested revocation leaves it claimable, Full revocation forfeits it.
	VestedUnclaimed uint64
	// Forfeited is released back to the authority.
	Forfeited uint64
}

// ResolveClaimAmount turns a requested amount into the amount to pay out.
// A request of 0 claims everything available.
func ResolveClaimAmount(requested uint64, claimable uint64) (uint64, error) {
	if claimable == 0 {
		return 0, ledgerErrors.ErrNothingToClaim
	}
	if requested == 0 {
		return claimable, nil
	}
	if requested > claimable {
		return 0, ledgerErrors.ErrExceedsClaimableAmount
	}
	return requested, nil
}

// Claim resolves requested against c and marks it claimed.
func Claim(c Claimable, requested uint64, now int64) (uint64, error) {
	claimable, err := c.Claimable(now)
	if err != nil {
		return 0, err
	}
	amount, err := ResolveClaimAmount(requested, claimable)
	if err != nil {
		return 0, err
	}
	if err := c.MarkClaimed(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// ClaimTracker tracks the running claimed total of an allocation.
type ClaimTracker struct {
	ClaimedAmount uint64
}

// ClaimableFrom returns unlocked minus what has already been claimed.
func (t ClaimTracker) ClaimableFrom(unlocked uint64) (uint64, error) {
	return numbers.CheckedSub(unlocked, t.ClaimedAmount)
}

// AddClaimed increments the claimed total.
func (t *ClaimTracker) AddClaimed(amount uint64) error {
	next, err := numbers.CheckedAdd(t.ClaimedAmount, amount)
	if err != nil {
		return err
	}
	return t.SetClaimed(next)
}

// SetClaimed overwrites the claimed total. The claimed total never goes down.
func (t *ClaimTracker) SetClaimed(amount uint64) error {
	if amount < t.ClaimedAmount {
		return ledgerErrors.ErrClaimedAmountDecreased
	}
	t.ClaimedAmount = amount
	return nil
}
