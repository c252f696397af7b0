// Package continuous implements the reward-per-token accumulator behind reward pools.
//
// Every distribution raises the pool accumulator by amount * RewardPrecision / supply.
// A user is owed (accumulator - checkpoint) * balance / RewardPrecision since their
// last settlement, which is credited to AccruedRewards before the checkpoint moves.
package continuous

import (
	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// RewardPrecision is the fixed-point scale of the accumulator.
const RewardPrecision uint64 = 1_000_000_000_000

type PoolParams struct {
	Bump          uint8
	BalanceSource state.BalanceSource
	Revocable     bool
	Authority     solana.PublicKey
	TrackedMint   solana.PublicKey
	RewardMint    solana.PublicKey
	Seed          solana.PublicKey
	ClawbackTs    int64
}

// NewPool returns an empty pool with a zero accumulator.
func NewPool(p *PoolParams) (*state.RewardPool, error) {
	if _, err := state.ParseBalanceSource(byte(p.BalanceSource)); err != nil {
		return nil, err
	}
	if p.ClawbackTs < 0 {
		return nil, ledgerErrors.ErrInvalidTimeWindow
	}
	return &state.RewardPool{
		Bump:          p.Bump,
		BalanceSource: p.BalanceSource,
		Revocable:     p.Revocable,
		Authority:     p.Authority,
		TrackedMint:   p.TrackedMint,
		RewardMint:    p.RewardMint,
		Seed:          p.Seed,
		ClawbackTs:    p.ClawbackTs,
	}, nil
}

// CheckAuthority fails unless signer is the pool authority.
func CheckAuthority(pool *state.RewardPool, signer solana.PublicKey) error {
	if !pool.Authority.Equals(signer) {
		return ledgerErrors.ErrUnauthorizedAuthority
	}
	return nil
}

// AccumulatorDelta returns amount * RewardPrecision / supply.
func AccumulatorDelta(amount uint64, supply uint64) (*uint256.Int, error) {
	if amount == 0 {
		return nil, ledgerErrors.ErrInvalidAmount
	}
	if supply == 0 {
		return nil, ledgerErrors.ErrInsufficientOptedInSupply
	}
	delta, err := numbers.ScaledQuotient(amount, RewardPrecision, supply)
	if err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, ledgerErrors.ErrDistributionAmountTooSmall
	}
	return delta, nil
}

// Owed returns what a balance earned while the accumulator moved from paid to current.
func Owed(current, paid *uint256.Int, balance uint64) (uint64, error) {
	if paid.Gt(current) {
		return 0, ledgerErrors.ErrMathOverflow
	}
	diff, err := numbers.SubU128(current, paid)
	if err != nil {
		return 0, err
	}
	return numbers.ScaleDown(diff, balance, RewardPrecision)
}

// Distribute adds amount to the pool accumulator and returns the accumulator delta.
// The pool is unchanged on error.
func Distribute(pool *state.RewardPool, amount uint64) (*uint256.Int, error) {
	if pool.Closed {
		return nil, ledgerErrors.ErrDistributionClosed
	}
	delta, err := AccumulatorDelta(amount, pool.OptedInSupply)
	if err != nil {
		return nil, err
	}
	next, err := numbers.AddU128(&pool.RewardPerToken, delta)
	if err != nil {
		return nil, err
	}
	totalDistributed, err := numbers.CheckedAdd(pool.TotalDistributed, amount)
	if err != nil {
		return nil, err
	}
	pool.RewardPerToken = *next
	pool.TotalDistributed = totalDistributed
	return delta, nil
}

// Settle credits the user with everything earned since their checkpoint and
// moves the checkpoint to the current accumulator. It returns the newly credited amount.
func Settle(pool *state.RewardPool, user *state.UserRewardAccount) (uint64, error) {
	owed, err := Owed(&pool.RewardPerToken, &user.RewardPerTokenPaid, user.LastKnownBalance)
	if err != nil {
		return 0, err
	}
	accrued, err := numbers.CheckedAdd(user.AccruedRewards, owed)
	if err != nil {
		return 0, err
	}
	user.AccruedRewards = accrued
	user.RewardPerTokenPaid = pool.RewardPerToken
	return owed, nil
}

// checkActive fails for users that have left the pool.
func checkActive(user *state.UserRewardAccount) error {
	if user.Revoked {
		return ledgerErrors.ErrUserRevoked
	}
	if user.OptedOut {
		return ledgerErrors.ErrUserOptedOut
	}
	return nil
}

// OptIn creates the user's position with its checkpoint at the current accumulator,
// so nothing distributed before opting in is owed.
//
// AuthoritySet pools always start users at a zero balance; the authority sets it later.
func OptIn(pool *state.RewardPool, user solana.PublicKey, bump uint8, poolAddress solana.PublicKey, initialBalance uint64) (*state.UserRewardAccount, error) {
	if pool.Closed {
		return nil, ledgerErrors.ErrDistributionClosed
	}
	if pool.BalanceSource == state.BalanceSource_AuthoritySet {
		initialBalance = 0
	}
	supply, err := numbers.CheckedAdd(pool.OptedInSupply, initialBalance)
	if err != nil {
		return nil, err
	}
	userCount, err := numbers.CheckedAdd(pool.UserCount, 1)
	if err != nil {
		return nil, err
	}

	pool.OptedInSupply = supply
	pool.UserCount = userCount
	return &state.UserRewardAccount{
		Bump:               bump,
		Pool:               poolAddress,
		User:               user,
		RewardPerTokenPaid: pool.RewardPerToken,
		LastKnownBalance:   initialBalance,
	}, nil
}

// SyncBalance settles the user and replaces their tracked balance, adjusting
// the opted-in supply by the difference. It returns the previous balance.
func SyncBalance(pool *state.RewardPool, user *state.UserRewardAccount, newBalance uint64) (uint64, error) {
	if pool.Closed {
		return 0, ledgerErrors.ErrDistributionClosed
	}
	if err := checkActive(user); err != nil {
		return 0, err
	}
	if _, err := Settle(pool, user); err != nil {
		return 0, err
	}
	old := user.LastKnownBalance
	supply, err := numbers.CheckedSub(pool.OptedInSupply, old)
	if err != nil {
		return 0, err
	}
	if supply, err = numbers.CheckedAdd(supply, newBalance); err != nil {
		return 0, err
	}
	pool.OptedInSupply = supply
	user.LastKnownBalance = newBalance
	return old, nil
}

// leave settles the user and removes them from the pool supply and user count.
func leave(pool *state.RewardPool, user *state.UserRewardAccount) error {
	if err := checkActive(user); err != nil {
		return err
	}
	if _, err := Settle(pool, user); err != nil {
		return err
	}
	return detach(pool, user)
}

func detach(pool *state.RewardPool, user *state.UserRewardAccount) error {
	supply, err := numbers.CheckedSub(pool.OptedInSupply, user.LastKnownBalance)
	if err != nil {
		return err
	}
	userCount, err := numbers.CheckedSub(pool.UserCount, 1)
	if err != nil {
		return err
	}
	pool.OptedInSupply = supply
	pool.UserCount = userCount
	user.LastKnownBalance = 0
	return nil
}

// OptOut removes the user from the pool and returns the accrued rewards the
// caller must pay out.
//
// A closed pool's vault has already been swept, so the position is dropped
// and nothing is paid.
func OptOut(pool *state.RewardPool, user *state.UserRewardAccount) (uint64, error) {
	if pool.Closed {
		if err := checkActive(user); err != nil {
			return 0, err
		}
		if err := detach(pool, user); err != nil {
			return 0, err
		}
		user.AccruedRewards = 0
		user.OptedOut = true
		return 0, nil
	}
	if err := leave(pool, user); err != nil {
		return 0, err
	}
	payout := user.AccruedRewards
	totalClaimed, err := numbers.CheckedAdd(pool.TotalClaimed, payout)
	if err != nil {
		return 0, err
	}
	pool.TotalClaimed = totalClaimed
	user.AccruedRewards = 0
	user.OptedOut = true
	return payout, nil
}

// ClosePool marks the pool closed once no users remain, or once the clawback
// timestamp has been reached.
func ClosePool(pool *state.RewardPool, now int64) error {
	if pool.Closed {
		return ledgerErrors.ErrDistributionClosed
	}
	if err := checkPoolClose(pool, now); err != nil {
		return err
	}
	pool.Closed = true
	return nil
}
