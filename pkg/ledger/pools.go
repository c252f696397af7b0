package ledger

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/rewards-ledger/pkg/addresses"
	"github.com/Layr-Labs/rewards-ledger/pkg/continuous"
	"github.com/Layr-Labs/rewards-ledger/pkg/events"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/gagliardetto/solana-go"
)

const kind_Pool = "pool"

type CreatePoolParams struct {
	Authority     solana.PublicKey
	TrackedMint   solana.PublicKey
	RewardMint    solana.PublicKey
	Seed          solana.PublicKey
	BalanceSource state.BalanceSource
	Revocable     bool
	ClawbackTs    int64
}

// CreatePool creates a reward pool and its empty reward vault.
func (l *Ledger) CreatePool(ctx context.Context, p *CreatePoolParams) (*Receipt, error) {
	return l.invoke(ctx, "createPool", func(inv *invocation) error {
		derived, err := addresses.RewardPool(p.RewardMint, p.Authority, p.Seed)
		if err != nil {
			return err
		}
		if err := inv.requireAbsent(derived.Address); err != nil {
			return err
		}
		pool, err := continuous.NewPool(&continuous.PoolParams{
			Bump:          derived.Bump,
			BalanceSource: p.BalanceSource,
			Revocable:     p.Revocable,
			Authority:     p.Authority,
			TrackedMint:   p.TrackedMint,
			RewardMint:    p.RewardMint,
			Seed:          p.Seed,
			ClawbackTs:    p.ClawbackTs,
		})
		if err != nil {
			return err
		}
		if _, err := inv.openVault(derived.Address, p.Authority, p.RewardMint); err != nil {
			return err
		}
		if err := inv.put(derived.Address, pool); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.emit(&events.DistributionCreated{
			Authority:  p.Authority,
			Mint:       p.RewardMint,
			Seed:       p.Seed,
			Variant:    events.CreatedVariant_Pool,
			ClawbackTs: p.ClawbackTs,
		})
		return nil
	})
}

type poolContext struct {
	address solana.PublicKey
	pool    *state.RewardPool
	vault   solana.PublicKey
}

func loadPool(inv *invocation, address solana.PublicKey) (*poolContext, error) {
	pool, err := load(inv.tx, address, state.ParseRewardPool)
	if err != nil {
		return nil, err
	}
	vault, err := addresses.Vault(address)
	if err != nil {
		return nil, err
	}
	return &poolContext{address: address, pool: pool, vault: vault.Address}, nil
}

func loadPoolUser(inv *invocation, pool, user solana.PublicKey) (solana.PublicKey, *state.UserRewardAccount, error) {
	derived, err := addresses.UserReward(pool, user)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	account, err := load(inv.tx, derived.Address, state.ParseUserRewardAccount)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return derived.Address, account, nil
}

// trackedBalance reads user's balance of the pool's tracked mint. A user
// without a token account holds nothing.
func trackedBalance(inv *invocation, pool *state.RewardPool, user solana.PublicKey) (uint64, error) {
	derived, err := addresses.TokenAccount(user, pool.TrackedMint)
	if err != nil {
		return 0, err
	}
	account, found, err := loadOptional(inv.tx, derived.Address, state.ParseTokenAccount)
	if err != nil || !found {
		return 0, err
	}
	return account.Amount, nil
}

// refreshBalance settles an OnChain pool user and moves their tracked balance
// to what they hold now. Closed pools keep their final supply.
func refreshBalance(inv *invocation, pc *poolContext, user solana.PublicKey, account *state.UserRewardAccount) error {
	if pc.pool.BalanceSource != state.BalanceSource_OnChain || pc.pool.Closed {
		return nil
	}
	balance, err := trackedBalance(inv, pc.pool, user)
	if err != nil {
		return err
	}
	_, err = continuous.SyncBalance(pc.pool, account, balance)
	return err
}

// DistributeRewards moves amount from the authority into the pool vault and
// credits it pro-rata to every opted-in user.
func (l *Ledger) DistributeRewards(ctx context.Context, authority, poolAddress solana.PublicKey, amount uint64) (*Receipt, error) {
	return l.invoke(ctx, "distributeRewards", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		if err := continuous.CheckAuthority(pc.pool, authority); err != nil {
			return err
		}
		if _, err := continuous.Distribute(pc.pool, amount); err != nil {
			return err
		}
		if err := l.fund(inv, authority, pc.pool.RewardMint, pc.vault, amount); err != nil {
			return err
		}
		if err := inv.put(poolAddress, pc.pool); err != nil {
			return err
		}
		inv.receipt.Address = poolAddress
		inv.receipt.Amount = amount
		inv.count(metricsTypes.Metric_Incr_TokensDeposited, amount, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Pool})
		inv.emit(&events.RewardDistributed{
			Pool:          poolAddress,
			Amount:        amount,
			RewardPerUnit: pc.pool.RewardPerToken.Clone(),
		})
		return nil
	})
}

// OptIn creates user's position in the pool. OnChain pools start the user at
// their current tracked balance, AuthoritySet pools at zero.
func (l *Ledger) OptIn(ctx context.Context, user, poolAddress solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "optIn", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		marker, err := addresses.Revocation(poolAddress, user)
		if err != nil {
			return err
		}
		if _, revoked, err := loadOptional(inv.tx, marker.Address, state.ParseRevocation); err != nil {
			return err
		} else if revoked {
			return ledgerErrors.ErrUserRevoked
		}

		derived, err := addresses.UserReward(poolAddress, user)
		if err != nil {
			return err
		}
		if err := inv.requireAbsent(derived.Address); err != nil {
			return err
		}

		var balance uint64
		if pc.pool.BalanceSource == state.BalanceSource_OnChain {
			if balance, err = trackedBalance(inv, pc.pool, user); err != nil {
				return err
			}
		}
		account, err := continuous.OptIn(pc.pool, user, derived.Bump, poolAddress, balance)
		if err != nil {
			return err
		}
		if err := inv.put(derived.Address, account); err != nil {
			return err
		}
		if err := inv.put(poolAddress, pc.pool); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.gauge(metricsTypes.Metric_Gauge_PoolOptedInSupply, pc.pool.OptedInSupply)
		inv.emit(&events.OptIn{Pool: poolAddress, User: user, Balance: account.LastKnownBalance})
		return nil
	})
}

// OptOut pays out the user's accrued rewards and closes their position.
func (l *Ledger) OptOut(ctx context.Context, user, poolAddress solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "optOut", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		userAddress, account, err := loadPoolUser(inv, poolAddress, user)
		if err != nil {
			return err
		}
		if err := refreshBalance(inv, pc, user, account); err != nil {
			return err
		}
		payout, err := continuous.OptOut(pc.pool, account)
		if err != nil {
			return err
		}
		if err := l.payOut(inv, pc.vault, user, pc.pool.RewardMint, payout); err != nil {
			return err
		}
		if err := inv.remove(userAddress); err != nil {
			return err
		}
		if err := inv.put(poolAddress, pc.pool); err != nil {
			return err
		}
		inv.receipt.Address = userAddress
		inv.receipt.Amount = payout
		inv.count(metricsTypes.Metric_Incr_TokensClaimed, payout, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Pool})
		inv.gauge(metricsTypes.Metric_Gauge_PoolOptedInSupply, pc.pool.OptedInSupply)
		inv.emit(&events.OptOut{Pool: poolAddress, User: user, RewardsClaimed: payout})
		return nil
	})
}

// SyncBalance refreshes an OnChain pool user's tracked balance from their token account.
func (l *Ledger) SyncBalance(ctx context.Context, user, poolAddress solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "syncBalance", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		if pc.pool.BalanceSource != state.BalanceSource_OnChain {
			return ledgerErrors.ErrBalanceSourceMismatch
		}
		balance, err := trackedBalance(inv, pc.pool, user)
		if err != nil {
			return err
		}
		return l.updateBalance(inv, pc, user, balance)
	})
}

// SetBalance sets an AuthoritySet pool user's tracked balance.
func (l *Ledger) SetBalance(ctx context.Context, authority, user, poolAddress solana.PublicKey, balance uint64) (*Receipt, error) {
	return l.invoke(ctx, "setBalance", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		if err := continuous.CheckAuthority(pc.pool, authority); err != nil {
			return err
		}
		if pc.pool.BalanceSource != state.BalanceSource_AuthoritySet {
			return ledgerErrors.ErrBalanceSourceMismatch
		}
		return l.updateBalance(inv, pc, user, balance)
	})
}

func (l *Ledger) updateBalance(inv *invocation, pc *poolContext, user solana.PublicKey, balance uint64) error {
	userAddress, account, err := loadPoolUser(inv, pc.address, user)
	if err != nil {
		return err
	}
	old, err := continuous.SyncBalance(pc.pool, account, balance)
	if err != nil {
		return err
	}
	if err := inv.put(userAddress, account); err != nil {
		return err
	}
	if err := inv.put(pc.address, pc.pool); err != nil {
		return err
	}
	inv.receipt.Address = userAddress
	inv.gauge(metricsTypes.Metric_Gauge_PoolOptedInSupply, pc.pool.OptedInSupply)
	inv.emit(&events.BalanceSynced{Pool: pc.address, User: user, OldBalance: old, NewBalance: balance})
	return nil
}

// ClaimPoolRewards pays requested of the user's accrued rewards, or all of
// them when requested is 0. OnChain users are resynced to their tracked balance first.
func (l *Ledger) ClaimPoolRewards(ctx context.Context, user, poolAddress solana.PublicKey, requested uint64) (*Receipt, error) {
	return l.invoke(ctx, "claimPoolRewards", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		userAddress, account, err := loadPoolUser(inv, poolAddress, user)
		if err != nil {
			return err
		}
		if err := refreshBalance(inv, pc, user, account); err != nil {
			return err
		}
		amount, err := continuous.Claim(pc.pool, account, requested)
		if err != nil {
			return err
		}
		if err := l.payOut(inv, pc.vault, user, pc.pool.RewardMint, amount); err != nil {
			return err
		}
		if err := inv.put(userAddress, account); err != nil {
			return err
		}
		if err := inv.put(poolAddress, pc.pool); err != nil {
			return err
		}
		inv.receipt.Address = userAddress
		inv.receipt.Amount = amount
		inv.count(metricsTypes.Metric_Incr_TokensClaimed, amount, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Pool})
		inv.gauge(metricsTypes.Metric_Gauge_PoolOptedInSupply, pc.pool.OptedInSupply)
		inv.emit(&events.Claimed{Distribution: poolAddress, Claimant: user, Amount: amount})
		return nil
	})
}

// RevokePoolUser removes a user from a revocable pool and leaves a marker so
// they cannot opt in again. NonVested pays the accrued rewards to the user;
// Full leaves them in the vault for the authority's sweep.
func (l *Ledger) RevokePoolUser(ctx context.Context, authority, user, poolAddress solana.PublicKey, mode revocation.RevokeMode) (*Receipt, error) {
	return l.invoke(ctx, "revokePoolUser", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		if err := continuous.CheckAuthority(pc.pool, authority); err != nil {
			return err
		}
		marker, err := addresses.Revocation(poolAddress, user)
		if err != nil {
			return err
		}
		if err := inv.requireAbsent(marker.Address); err != nil {
			return err
		}
		userAddress, account, err := loadPoolUser(inv, poolAddress, user)
		if err != nil {
			return err
		}
		if err := refreshBalance(inv, pc, user, account); err != nil {
			return err
		}
		res, err := continuous.RevokeUser(pc.pool, account, mode, inv.now)
		if err != nil {
			return err
		}

		var paid uint64
		if mode == revocation.RevokeMode_NonVested {
			paid = res.VestedUnclaimed
			if err := l.payOut(inv, pc.vault, user, pc.pool.RewardMint, paid); err != nil {
				return err
			}
		}
		if err := inv.remove(userAddress); err != nil {
			return err
		}
		if err := inv.put(marker.Address, &state.Revocation{
			Bump:   marker.Bump,
			Mode:   uint8(mode),
			Parent: poolAddress,
			User:   user,
		}); err != nil {
			return err
		}
		if err := inv.put(poolAddress, pc.pool); err != nil {
			return err
		}
		inv.receipt.Address = userAddress
		inv.receipt.Amount = paid
		inv.count(metricsTypes.Metric_Incr_TokensClaimed, paid, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Pool})
		inv.count(metricsTypes.Metric_Incr_TokensForfeited, res.Forfeited,
			metricsTypes.MetricsLabel{Name: "kind", Value: kind_Pool},
			metricsTypes.MetricsLabel{Name: "mode", Value: mode.String()},
		)
		inv.gauge(metricsTypes.Metric_Gauge_PoolOptedInSupply, pc.pool.OptedInSupply)
		inv.emit(&events.RecipientRevoked{
			Distribution:      poolAddress,
			Recipient:         user,
			Mode:              mode,
			VestedTransferred: paid,
			UnvestedReturned:  res.Forfeited,
		})
		return nil
	})
}

// ClosePool closes the pool and sweeps whatever is left in its vault to the authority.
func (l *Ledger) ClosePool(ctx context.Context, authority, poolAddress solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "closePool", func(inv *invocation) error {
		pc, err := loadPool(inv, poolAddress)
		if err != nil {
			return err
		}
		if err := continuous.CheckAuthority(pc.pool, authority); err != nil {
			return err
		}
		if err := continuous.ClosePool(pc.pool, inv.now); err != nil {
			return err
		}
		swept, err := l.sweep(inv, pc.vault, authority, pc.pool.RewardMint, kind_Pool)
		if err != nil {
			return err
		}
		if err := inv.put(poolAddress, pc.pool); err != nil {
			return err
		}
		inv.receipt.Address = poolAddress
		inv.receipt.Amount = swept
		inv.emit(&events.DistributionClosed{Distribution: poolAddress})
		return nil
	})
}

// PoolVault returns the address of a pool's reward vault.
func PoolVault(poolAddress solana.PublicKey) (solana.PublicKey, error) {
	vault, err := addresses.Vault(poolAddress)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive vault for pool %s: %w", poolAddress, err)
	}
	return vault.Address, nil
}

