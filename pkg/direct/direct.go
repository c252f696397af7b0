// Package direct implements distributions whose recipients are added one by one
// by the authority, each with their own amount and vesting schedule.
package direct

import (
	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/claims"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/gagliardetto/solana-go"
)

type DistributionParams struct {
	Bump       uint8
	Authority  solana.PublicKey
	Mint       solana.PublicKey
	Seed       solana.PublicKey
	Vault      solana.PublicKey
	Revocable  bool
	ClawbackTs int64
}

// NewDistribution returns an empty distribution. Funding happens as recipients are added.
func NewDistribution(p *DistributionParams) (*state.DirectDistribution, error) {
	if p.ClawbackTs < 0 {
		return nil, ledgerErrors.ErrInvalidTimeWindow
	}
	return &state.DirectDistribution{
		Bump:       p.Bump,
		Revocable:  p.Revocable,
		Authority:  p.Authority,
		Mint:       p.Mint,
		Seed:       p.Seed,
		Vault:      p.Vault,
		ClawbackTs: p.ClawbackTs,
	}, nil
}

// CheckAuthority fails unless signer is the distribution authority.
func CheckAuthority(dist *state.DirectDistribution, signer solana.PublicKey) error {
	if !dist.Authority.Equals(signer) {
		return ledgerErrors.ErrUnauthorizedAuthority
	}
	return nil
}

// CheckRecipient fails unless signer owns the recipient record.
func CheckRecipient(r *state.DirectRecipient, signer solana.PublicKey) error {
	if !r.Recipient.Equals(signer) {
		return ledgerErrors.ErrUnauthorizedRecipient
	}
	return nil
}

type RecipientParams struct {
	Bump      uint8
	Recipient solana.PublicKey
	Payer     solana.PublicKey
	Amount    uint64
	Schedule  vesting.Schedule
}

// AddRecipient allocates Amount to a new recipient of dist. The caller funds
// the vault with the same amount.
func AddRecipient(dist *state.DirectDistribution, distAddress solana.PublicKey, p *RecipientParams) (*state.DirectRecipient, error) {
	if dist.Closed {
		return nil, ledgerErrors.ErrDistributionClosed
	}
	if p.Amount == 0 {
		return nil, ledgerErrors.ErrInvalidAmount
	}
	if err := p.Schedule.Validate(); err != nil {
		return nil, err
	}
	allocated, err := numbers.CheckedAdd(dist.TotalAllocated, p.Amount)
	if err != nil {
		return nil, err
	}
	open, err := numbers.CheckedAdd(dist.OpenRecipients, 1)
	if err != nil {
		return nil, err
	}

	dist.TotalAllocated = allocated
	dist.OpenRecipients = open
	return &state.DirectRecipient{
		Bump:         p.Bump,
		Distribution: distAddress,
		Recipient:    p.Recipient,
		Payer:        p.Payer,
		VestedAllocation: claims.VestedAllocation{
			TotalAmount: p.Amount,
			Schedule:    p.Schedule,
			Status:      revocation.Status_Active,
		},
	}, nil
}

// Claim pays out requested from what has vested, or everything claimable when
// requested is 0. dist and r are unchanged on error.
func Claim(dist *state.DirectDistribution, r *state.DirectRecipient, requested uint64, now int64) (uint64, error) {
	if dist.Closed {
		return 0, ledgerErrors.ErrDistributionClosed
	}
	working := *r
	amount, err := claims.Claim(&working.VestedAllocation, requested, now)
	if err != nil {
		return 0, err
	}
	totalClaimed, err := numbers.CheckedAdd(dist.TotalClaimed, amount)
	if err != nil {
		return 0, err
	}
	*r = working
	dist.TotalClaimed = totalClaimed
	return amount, nil
}

// Revoke freezes a recipient. Forfeited is no longer allocated and goes back
// to the authority.
func Revoke(dist *state.DirectDistribution, r *state.DirectRecipient, mode revocation.RevokeMode, now int64) (*claims.RevokeResult, error) {
	if !dist.Revocable {
		return nil, ledgerErrors.ErrDistributionNotRevocable
	}
	if dist.Closed {
		return nil, ledgerErrors.ErrDistributionClosed
	}
	working := *r
	res, err := working.Revoke(mode, now)
	if err != nil {
		return nil, err
	}
	allocated, err := numbers.CheckedSub(dist.TotalAllocated, res.Forfeited)
	if err != nil {
		return nil, err
	}
	*r = working
	dist.TotalAllocated = allocated
	return res, nil
}

// CloseRecipient retires a fully claimed recipient. The record's rent goes back to its payer.
func CloseRecipient(dist *state.DirectDistribution, r *state.DirectRecipient) error {
	if err := r.CheckClosable(); err != nil {
		return err
	}
	status, err := r.Status.Close()
	if err != nil {
		return err
	}
	open, err := numbers.CheckedSub(dist.OpenRecipients, 1)
	if err != nil {
		return err
	}
	r.Status = status
	dist.OpenRecipients = open
	return nil
}

// CloseDistribution marks dist closed so its vault can be swept to the authority.
func CloseDistribution(dist *state.DirectDistribution, now int64) error {
	if dist.Closed {
		return ledgerErrors.ErrDistributionClosed
	}
	if err := revocation.CheckDistributionClose(dist.OpenRecipients, dist.ClawbackTs, now); err != nil {
		return err
	}
	dist.Closed = true
	return nil
}
