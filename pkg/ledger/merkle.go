package ledger

import (
	"context"

	"github.com/Layr-Labs/rewards-ledger/pkg/addresses"
	"github.com/Layr-Labs/rewards-ledger/pkg/events"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/merkle"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

const kind_Merkle = "merkle"

type CreateMerkleDistributionParams struct {
	Authority      solana.PublicKey
	Mint           solana.PublicKey
	Seed           solana.PublicKey
	MerkleRoot     gethcommon.Hash
	TotalAmount    uint64
	Revocable      bool
	ClawbackTs     int64
	VestingStartTs int64
	VestingEndTs   int64
}

// CreateMerkleDistribution commits to a merkle root and funds the vault with
// TotalAmount from the authority.
func (l *Ledger) CreateMerkleDistribution(ctx context.Context, p *CreateMerkleDistributionParams) (*Receipt, error) {
	return l.invoke(ctx, "createMerkleDistribution", func(inv *invocation) error {
		derived, err := addresses.MerkleDistribution(p.Mint, p.Authority, p.Seed)
		if err != nil {
			return err
		}
		if err := inv.requireAbsent(derived.Address); err != nil {
			return err
		}
		vault, err := inv.openVault(derived.Address, p.Authority, p.Mint)
		if err != nil {
			return err
		}
		dist, err := merkle.NewDistribution(&merkle.DistributionParams{
			Bump:           derived.Bump,
			Authority:      p.Authority,
			Mint:           p.Mint,
			Seed:           p.Seed,
			Vault:          vault,
			MerkleRoot:     p.MerkleRoot,
			TotalAmount:    p.TotalAmount,
			Revocable:      p.Revocable,
			ClawbackTs:     p.ClawbackTs,
			VestingStartTs: p.VestingStartTs,
			VestingEndTs:   p.VestingEndTs,
		})
		if err != nil {
			return err
		}
		if err := l.fund(inv, p.Authority, p.Mint, vault, p.TotalAmount); err != nil {
			return err
		}
		if err := inv.put(derived.Address, dist); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.receipt.Amount = p.TotalAmount
		inv.count(metricsTypes.Metric_Incr_TokensDeposited, p.TotalAmount, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Merkle})
		inv.emit(&events.DistributionCreated{
			Authority:   p.Authority,
			Mint:        p.Mint,
			Seed:        p.Seed,
			Variant:     events.CreatedVariant_Merkle,
			MerkleRoot:  p.MerkleRoot,
			TotalAmount: p.TotalAmount,
			ClawbackTs:  p.ClawbackTs,
		})
		return nil
	})
}

func loadMerkleClaim(inv *invocation, distAddress, claimant solana.PublicKey) (*state.MerkleDistribution, addresses.Derived, *state.MerkleClaim, error) {
	dist, err := load(inv.tx, distAddress, state.ParseMerkleDistribution)
	if err != nil {
		return nil, addresses.Derived{}, nil, err
	}
	derived, err := addresses.MerkleClaim(distAddress, claimant)
	if err != nil {
		return nil, addresses.Derived{}, nil, err
	}
	existing, _, err := loadOptional(inv.tx, derived.Address, state.ParseMerkleClaim)
	if err != nil {
		return nil, addresses.Derived{}, nil, err
	}
	return dist, derived, existing, nil
}

// ClaimMerkle proves the claimant's leaf and pays requested of what has
// vested, or all of it when requested is 0. The claim record is created on
// the first successful claim.
func (l *Ledger) ClaimMerkle(ctx context.Context, claimant, distAddress solana.PublicKey, req *merkle.ClaimRequest, requested uint64) (*Receipt, error) {
	return l.invoke(ctx, "claimMerkle", func(inv *invocation) error {
		if req == nil || !req.Leaf.Claimant.Equals(claimant) {
			return ledgerErrors.ErrUnauthorizedRecipient
		}
		dist, derived, existing, err := loadMerkleClaim(inv, distAddress, claimant)
		if err != nil {
			return err
		}
		req.Bump = derived.Bump
		record, amount, err := merkle.Claim(dist, distAddress, existing, req, l.verifier, requested, inv.now)
		if err != nil {
			return err
		}
		if err := l.payOut(inv, dist.Vault, claimant, dist.Mint, amount); err != nil {
			return err
		}
		if err := inv.put(derived.Address, record); err != nil {
			return err
		}
		if err := inv.put(distAddress, dist); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.receipt.Amount = amount
		inv.count(metricsTypes.Metric_Incr_TokensClaimed, amount, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Merkle})
		inv.emit(&events.Claimed{Distribution: distAddress, Claimant: claimant, Amount: amount})
		return nil
	})
}

// RevokeMerkleClaim freezes a claimant's allocation and returns the forfeited
// amount to the authority. req is only needed when the claimant never claimed.
func (l *Ledger) RevokeMerkleClaim(ctx context.Context, authority, distAddress, claimant solana.PublicKey, req *merkle.ClaimRequest, mode revocation.RevokeMode) (*Receipt, error) {
	return l.invoke(ctx, "revokeMerkleClaim", func(inv *invocation) error {
		dist, derived, existing, err := loadMerkleClaim(inv, distAddress, claimant)
		if err != nil {
			return err
		}
		if err := merkle.CheckAuthority(dist, authority); err != nil {
			return err
		}
		if existing == nil {
			if req == nil || !req.Leaf.Claimant.Equals(claimant) {
				return ledgerErrors.ErrInvalidMerkleProof
			}
			req.Bump = derived.Bump
		}
		record, res, err := merkle.Revoke(dist, distAddress, existing, req, l.verifier, mode, inv.now)
		if err != nil {
			return err
		}
		if err := l.payOut(inv, dist.Vault, authority, dist.Mint, res.Forfeited); err != nil {
			return err
		}
		if err := inv.put(derived.Address, record); err != nil {
			return err
		}
		if err := inv.put(distAddress, dist); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.receipt.Amount = res.Forfeited
		inv.count(metricsTypes.Metric_Incr_TokensForfeited, res.Forfeited,
			metricsTypes.MetricsLabel{Name: "kind", Value: kind_Merkle},
			metricsTypes.MetricsLabel{Name: "mode", Value: mode.String()},
		)
		inv.emit(&events.RecipientRevoked{
			Distribution:      distAddress,
			Recipient:         claimant,
			Mode:              mode,
			VestedTransferred: res.VestedUnclaimed,
			UnvestedReturned:  res.Forfeited,
		})
		return nil
	})
}

// CloseMerkleClaim deletes a claimant's record once the distribution has closed.
func (l *Ledger) CloseMerkleClaim(ctx context.Context, claimant, distAddress solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "closeMerkleClaim", func(inv *invocation) error {
		dist, derived, existing, err := loadMerkleClaim(inv, distAddress, claimant)
		if err != nil {
			return err
		}
		if existing == nil {
			return ledgerErrors.ErrAccountNotFound
		}
		if !existing.Claimant.Equals(claimant) {
			return ledgerErrors.ErrUnauthorizedRecipient
		}
		if err := merkle.CloseClaim(dist, existing); err != nil {
			return err
		}
		if err := inv.remove(derived.Address); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.emit(&events.ClaimClosed{Distribution: distAddress, Claimant: claimant})
		return nil
	})
}

// CloseMerkleDistribution closes the distribution once its clawback time has
// passed and sweeps the vault to the authority.
func (l *Ledger) CloseMerkleDistribution(ctx context.Context, authority, distAddress solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "closeMerkleDistribution", func(inv *invocation) error {
		dist, err := load(inv.tx, distAddress, state.ParseMerkleDistribution)
		if err != nil {
			return err
		}
		if err := merkle.CheckAuthority(dist, authority); err != nil {
			return err
		}
		if err := merkle.CloseDistribution(dist, inv.now); err != nil {
			return err
		}
		swept, err := l.sweep(inv, dist.Vault, authority, dist.Mint, kind_Merkle)
		if err != nil {
			return err
		}
		if err := inv.put(distAddress, dist); err != nil {
			return err
		}
		inv.receipt.Address = distAddress
		inv.receipt.Amount = swept
		inv.emit(&events.DistributionClosed{Distribution: distAddress})
		return nil
	})
}
