package ledger

import (
	"context"

	"github.com/Layr-Labs/rewards-ledger/pkg/addresses"
	"github.com/Layr-Labs/rewards-ledger/pkg/direct"
	"github.com/Layr-Labs/rewards-ledger/pkg/events"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/gagliardetto/solana-go"
)

const kind_Direct = "direct"

type CreateDirectDistributionParams struct {
	Authority  solana.PublicKey
	Mint       solana.PublicKey
	Seed       solana.PublicKey
	Revocable  bool
	ClawbackTs int64
}

func (l *Ledger) CreateDirectDistribution(ctx context.Context, p *CreateDirectDistributionParams) (*Receipt, error) {
	return l.invoke(ctx, "createDirectDistribution", func(inv *invocation) error {
		derived, err := addresses.DirectDistribution(p.Mint, p.Authority, p.Seed)
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
		dist, err := direct.NewDistribution(&direct.DistributionParams{
			Bump:       derived.Bump,
			Authority:  p.Authority,
			Mint:       p.Mint,
			Seed:       p.Seed,
			Vault:      vault,
			Revocable:  p.Revocable,
			ClawbackTs: p.ClawbackTs,
		})
		if err != nil {
			return err
		}
		if err := inv.put(derived.Address, dist); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.emit(&events.DistributionCreated{
			Authority: p.Authority,
			Mint:      p.Mint,
			Seed:      p.Seed,
			Variant:   events.CreatedVariant_Direct,
		})
		return nil
	})
}

type AddDirectRecipientParams struct {
	Recipient solana.PublicKey
	Amount    uint64
	Schedule  vesting.Schedule
}

// AddDirectRecipient allocates Amount to a recipient and funds the vault with
// it from the authority, who also pays for the record.
func (l *Ledger) AddDirectRecipient(ctx context.Context, authority, distAddress solana.PublicKey, p *AddDirectRecipientParams) (*Receipt, error) {
	return l.invoke(ctx, "addDirectRecipient", func(inv *invocation) error {
		dist, err := load(inv.tx, distAddress, state.ParseDirectDistribution)
		if err != nil {
			return err
		}
		if err := direct.CheckAuthority(dist, authority); err != nil {
			return err
		}
		derived, err := addresses.DirectRecipient(distAddress, p.Recipient)
		if err != nil {
			return err
		}
		if err := inv.requireAbsent(derived.Address); err != nil {
			return err
		}
		recipient, err := direct.AddRecipient(dist, distAddress, &direct.RecipientParams{
			Bump:      derived.Bump,
			Recipient: p.Recipient,
			Payer:     authority,
			Amount:    p.Amount,
			Schedule:  p.Schedule,
		})
		if err != nil {
			return err
		}
		if err := l.fund(inv, authority, dist.Mint, dist.Vault, p.Amount); err != nil {
			return err
		}
		if err := inv.put(derived.Address, recipient); err != nil {
			return err
		}
		if err := inv.put(distAddress, dist); err != nil {
			return err
		}
		inv.receipt.Address = derived.Address
		inv.receipt.Amount = p.Amount
		inv.count(metricsTypes.Metric_Incr_TokensDeposited, p.Amount, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Direct})
		inv.emit(&events.RecipientAdded{
			Distribution: distAddress,
			Recipient:    p.Recipient,
			Amount:       p.Amount,
			Schedule:     p.Schedule,
		})
		return nil
	})
}

func loadDirectRecipient(inv *invocation, distAddress, recipient solana.PublicKey) (solana.PublicKey, *state.DirectDistribution, *state.DirectRecipient, error) {
	dist, err := load(inv.tx, distAddress, state.ParseDirectDistribution)
	if err != nil {
		return solana.PublicKey{}, nil, nil, err
	}
	derived, err := addresses.DirectRecipient(distAddress, recipient)
	if err != nil {
		return solana.PublicKey{}, nil, nil, err
	}
	r, err := load(inv.tx, derived.Address, state.ParseDirectRecipient)
	if err != nil {
		return solana.PublicKey{}, nil, nil, err
	}
	return derived.Address, dist, r, nil
}

// ClaimDirect pays the recipient requested of what has vested, or all of it when requested is 0.
func (l *Ledger) ClaimDirect(ctx context.Context, recipient, distAddress solana.PublicKey, requested uint64) (*Receipt, error) {
	return l.invoke(ctx, "claimDirect", func(inv *invocation) error {
		address, dist, r, err := loadDirectRecipient(inv, distAddress, recipient)
		if err != nil {
			return err
		}
		if err := direct.CheckRecipient(r, recipient); err != nil {
			return err
		}
		amount, err := direct.Claim(dist, r, requested, inv.now)
		if err != nil {
			return err
		}
		if err := l.payOut(inv, dist.Vault, recipient, dist.Mint, amount); err != nil {
			return err
		}
		if err := inv.put(address, r); err != nil {
			return err
		}
		if err := inv.put(distAddress, dist); err != nil {
			return err
		}
		inv.receipt.Address = address
		inv.receipt.Amount = amount
		inv.count(metricsTypes.Metric_Incr_TokensClaimed, amount, metricsTypes.MetricsLabel{Name: "kind", Value: kind_Direct})
		inv.emit(&events.Claimed{Distribution: distAddress, Claimant: recipient, Amount: amount})
		return nil
	})
}

// RevokeDirectRecipient freezes a recipient's allocation and returns the
// forfeited amount to the authority.
func (l *Ledger) RevokeDirectRecipient(ctx context.Context, authority, distAddress, recipient solana.PublicKey, mode revocation.RevokeMode) (*Receipt, error) {
	return l.invoke(ctx, "revokeDirectRecipient", func(inv *invocation) error {
		address, dist, r, err := loadDirectRecipient(inv, distAddress, recipient)
		if err != nil {
			return err
		}
		if err := direct.CheckAuthority(dist, authority); err != nil {
			return err
		}
		res, err := direct.Revoke(dist, r, mode, inv.now)
		if err != nil {
			return err
		}
		if err := l.payOut(inv, dist.Vault, authority, dist.Mint, res.Forfeited); err != nil {
			return err
		}
		if err := inv.put(address, r); err != nil {
			return err
		}
		if err := inv.put(distAddress, dist); err != nil {
			return err
		}
		inv.receipt.Address = address
		inv.receipt.Amount = res.Forfeited
		inv.count(metricsTypes.Metric_Incr_TokensForfeited, res.Forfeited,
			metricsTypes.MetricsLabel{Name: "kind", Value: kind_Direct},
			metricsTypes.MetricsLabel{Name: "mode", Value: mode.String()},
		)
		inv.emit(&events.RecipientRevoked{
			Distribution:      distAddress,
			Recipient:         recipient,
			Mode:              mode,
			VestedTransferred: res.VestedUnclaimed,
			UnvestedReturned:  res.Forfeited,
		})
		return nil
	})
}

// CloseDirectRecipient deletes a fully claimed recipient record. Either the
// recipient or the authority may close it.
func (l *Ledger) CloseDirectRecipient(ctx context.Context, signer, distAddress, recipient solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "closeDirectRecipient", func(inv *invocation) error {
		address, dist, r, err := loadDirectRecipient(inv, distAddress, recipient)
		if err != nil {
			return err
		}
		if direct.CheckAuthority(dist, signer) != nil && direct.CheckRecipient(r, signer) != nil {
			return ledgerErrors.ErrUnauthorizedRecipient
		}
		if err := direct.CloseRecipient(dist, r); err != nil {
			return err
		}
		if err := inv.remove(address); err != nil {
			return err
		}
		if err := inv.put(distAddress, dist); err != nil {
			return err
		}
		inv.receipt.Address = address
		inv.emit(&events.ClaimClosed{Distribution: distAddress, Claimant: recipient})
		return nil
	})
}

// CloseDirectDistribution closes the distribution and sweeps its vault to the authority.
func (l *Ledger) CloseDirectDistribution(ctx context.Context, authority, distAddress solana.PublicKey) (*Receipt, error) {
	return l.invoke(ctx, "closeDirectDistribution", func(inv *invocation) error {
		dist, err := load(inv.tx, distAddress, state.ParseDirectDistribution)
		if err != nil {
			return err
		}
		if err := direct.CheckAuthority(dist, authority); err != nil {
			return err
		}
		if err := direct.CloseDistribution(dist, inv.now); err != nil {
			return err
		}
		swept, err := l.sweep(inv, dist.Vault, authority, dist.Mint, kind_Direct)
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
