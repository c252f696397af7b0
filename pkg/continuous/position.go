package continuous

import (
	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/claims"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/holiman/uint256"
)

// Position is a user's claimable stake in a pool.
type Position struct {
	Pool *state.RewardPool
	User *state.UserRewardAccount
}

var _ claims.Claimable = (*Position)(nil)

func NewPosition(pool *state.RewardPool, user *state.UserRewardAccount) *Position {
	return &Position{Pool: pool, User: user}
}

// Claimable settles the user and returns their accrued rewards. Pool rewards
// do not vest, so now is unused.
func (p *Position) Claimable(now int64) (uint64, error) {
	if p.Pool.Closed {
		return 0, ledgerErrors.ErrDistributionClosed
	}
	if err := checkActive(p.User); err != nil {
		return 0, err
	}
	if _, err := Settle(p.Pool, p.User); err != nil {
		return 0, err
	}
	return p.User.AccruedRewards, nil
}

func (p *Position) MarkClaimed(amount uint64) error {
	if amount > p.User.AccruedRewards {
		return ledgerErrors.ErrExceedsClaimableAmount
	}
	totalClaimed, err := numbers.CheckedAdd(p.Pool.TotalClaimed, amount)
	if err != nil {
		return err
	}
	p.User.AccruedRewards -= amount
	p.Pool.TotalClaimed = totalClaimed
	return nil
}

// Revoke removes the user from the pool.
//
// NonVested leaves the accrued rewards owed to the user, who is paid out as
// part of the revocation. Full forfeits them to the pool authority.
func (p *Position) Revoke(mode revocation.RevokeMode, now int64) (*claims.RevokeResult, error) {
	if !p.Pool.Revocable {
		return nil, ledgerErrors.ErrDistributionNotRevocable
	}
	if p.Pool.Closed {
		return nil, ledgerErrors.ErrDistributionClosed
	}
	if mode != revocation.RevokeMode_NonVested && mode != revocation.RevokeMode_Full {
		return nil, ledgerErrors.ErrInvalidRevokeMode
	}
	if err := leave(p.Pool, p.User); err != nil {
		return nil, err
	}

	accrued := p.User.AccruedRewards
	res := &claims.RevokeResult{Mode: mode, VestedUnclaimed: accrued}
	if mode == revocation.RevokeMode_NonVested {
		totalClaimed, err := numbers.CheckedAdd(p.Pool.TotalClaimed, accrued)
		if err != nil {
			return nil, err
		}
		p.Pool.TotalClaimed = totalClaimed
	} else {
		res.Forfeited = accrued
	}
	p.User.AccruedRewards = 0
	p.User.Revoked = true
	return res, nil
}

// Claim settles the user and pays out requested, or everything owed when requested is 0.
func Claim(pool *state.RewardPool, user *state.UserRewardAccount, requested uint64) (uint64, error) {
	return claims.Claim(NewPosition(pool, user), requested, 0)
}

// RevokeUser removes a user from a revocable pool. The caller pays
// VestedUnclaimed to the user when mode is NonVested and records a revocation
// marker so the user cannot opt in again.
func RevokeUser(pool *state.RewardPool, user *state.UserRewardAccount, mode revocation.RevokeMode, now int64) (*claims.RevokeResult, error) {
	return NewPosition(pool, user).Revoke(mode, now)
}

func checkPoolClose(pool *state.RewardPool, now int64) error {
	return revocation.CheckDistributionClose(pool.UserCount, pool.ClawbackTs, now)
}

// Preview computes the accumulator delta for a distribution of amount over
// supply and what a user holding balance would be owed from it.
func Preview(supply, amount, balance uint64) (*PreviewResult, error) {
	delta, err := AccumulatorDelta(amount, supply)
	if err != nil {
		return nil, err
	}
	owed, err := numbers.ScaleDown(delta, balance, RewardPrecision)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{Delta: delta, Owed: owed}, nil
}

type PreviewResult struct {
	Delta *uint256.Int
	Owed  uint64
}
