package claims

import (
	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
)

// VestedAllocation is an allocation that unlocks on a schedule and can be revoked.
//
// After any revocation TotalAmount is the frozen cap, which was fully unlocked
// at revocation time, so the whole cap counts as vested from then on.
type VestedAllocation struct {
	TotalAmount uint64
	ClaimTracker
	Schedule vesting.Schedule
	Status   revocation.Status
}

var _ Claimable = (*VestedAllocation)(nil)

// Vested returns the unlocked portion of the allocation at now.
func (a *VestedAllocation) Vested(now int64) uint64 {
	if a.Status.IsRevoked() {
		return a.TotalAmount
	}
	return a.Schedule.Unlocked(a.TotalAmount, now)
}

func (a *VestedAllocation) Claimable(now int64) (uint64, error) {
	if err := a.Status.CanClaim(); err != nil {
		return 0, err
	}
	return a.ClaimableFrom(a.Vested(now))
}

func (a *VestedAllocation) MarkClaimed(amount uint64) error {
	next, err := numbers.CheckedAdd(a.ClaimedAmount, amount)
	if err != nil {
		return err
	}
	if next > a.TotalAmount {
		return ledgerErrors.ErrExceedsClaimableAmount
	}
	return a.SetClaimed(next)
}

// Revoke freezes the allocation.
//
// NonVested caps TotalAmount at what has unlocked so far. Full caps it at what
// has already been claimed, leaving nothing further to claim.
func (a *VestedAllocation) Revoke(mode revocation.RevokeMode, now int64) (*RevokeResult, error) {
	next, err := a.Status.Revoke(mode)
	if err != nil {
		return nil, err
	}
	vested := a.Schedule.Unlocked(a.TotalAmount, now)
	vestedUnclaimed, err := numbers.CheckedSub(vested, a.ClaimedAmount)
	if err != nil {
		return nil, err
	}
	unvested, err := numbers.CheckedSub(a.TotalAmount, vested)
	if err != nil {
		return nil, err
	}

	res := &RevokeResult{Mode: mode, VestedUnclaimed: vestedUnclaimed}
	switch mode {
	case revocation.RevokeMode_NonVested:
		a.TotalAmount = vested
		res.Forfeited = unvested
	case revocation.RevokeMode_Full:
		a.TotalAmount = a.ClaimedAmount
		if res.Forfeited, err = numbers.CheckedAdd(unvested, vestedUnclaimed); err != nil {
			return nil, err
		}
	}
	a.Status = next
	return res, nil
}

// IsFullyClaimed reports whether every unit of the (possibly frozen) total has been claimed.
func (a *VestedAllocation) IsFullyClaimed() bool {
	return a.ClaimedAmount == a.TotalAmount
}

// CheckClosable fails unless the allocation has been fully claimed.
func (a *VestedAllocation) CheckClosable() error {
	if !a.IsFullyClaimed() {
		return ledgerErrors.ErrClaimNotFullyVested
	}
	return nil
}
