// Package merkle implements distributions that commit to every allocation
// through a single merkle root. Claim records only exist for claimants that
// have claimed or been revoked.
package merkle

import (
	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/claims"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

type DistributionParams struct {
	Bump        uint8
	Authority   solana.PublicKey
	Mint        solana.PublicKey
	Seed        solana.PublicKey
	Vault       solana.PublicKey
	MerkleRoot  gethcommon.Hash
	TotalAmount uint64
	Revocable   bool
	ClawbackTs  int64
	// VestingStartTs and VestingEndTs are both zero unless every leaf shares one linear window.
	VestingStartTs int64
	VestingEndTs   int64
}

// NewDistribution validates p and returns the distribution. The caller funds
// the vault with TotalAmount.
func NewDistribution(p *DistributionParams) (*state.MerkleDistribution, error) {
	if p.TotalAmount == 0 {
		return nil, ledgerErrors.ErrInvalidAmount
	}
	if p.ClawbackTs < 0 {
		return nil, ledgerErrors.ErrInvalidTimeWindow
	}
	md := &state.MerkleDistribution{
		Bump:           p.Bump,
		Revocable:      p.Revocable,
		Authority:      p.Authority,
		Mint:           p.Mint,
		Seed:           p.Seed,
		Vault:          p.Vault,
		MerkleRoot:     p.MerkleRoot,
		TotalAmount:    p.TotalAmount,
		ClawbackTs:     p.ClawbackTs,
		VestingStartTs: p.VestingStartTs,
		VestingEndTs:   p.VestingEndTs,
	}
	if md.HasUniformWindow() {
		if err := vesting.Linear(p.VestingStartTs, p.VestingEndTs).Validate(); err != nil {
			return nil, err
		}
	}
	return md, nil
}

func CheckAuthority(dist *state.MerkleDistribution, signer solana.PublicKey) error {
	if !dist.Authority.Equals(signer) {
		return ledgerErrors.ErrUnauthorizedAuthority
	}
	return nil
}

// ClaimRequest carries the leaf a claimant proves membership of.
type ClaimRequest struct {
	Leaf  proofs.Leaf
	Proof []gethcommon.Hash
	// Bump of the claim record, used when the record is created.
	Bump uint8
}

// resolveClaim returns the existing record for the claimant or, after
// verifying the proof, a new one. The proof is always checked first so a bad
// proof never produces a record.
func resolveClaim(dist *state.MerkleDistribution, distAddress solana.PublicKey, existing *state.MerkleClaim, req *ClaimRequest, verifier proofs.Verifier) (*state.MerkleClaim, error) {
	if err := proofs.VerifyOrError(verifier, dist.MerkleRoot, req.Leaf, req.Proof); err != nil {
		return nil, err
	}
	if existing != nil {
		if !existing.Claimant.Equals(req.Leaf.Claimant) || existing.LeafAmount != req.Leaf.Amount {
			return nil, ledgerErrors.ErrInvalidAccountData
		}
		return existing, nil
	}
	if req.Leaf.Amount == 0 {
		return nil, ledgerErrors.ErrInvalidAmount
	}
	schedule := dist.ScheduleFor(req.Leaf.Schedule)
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &state.MerkleClaim{
		Bump:         req.Bump,
		Distribution: distAddress,
		Claimant:     req.Leaf.Claimant,
		LeafAmount:   req.Leaf.Amount,
		VestedAllocation: claims.VestedAllocation{
			TotalAmount: req.Leaf.Amount,
			Schedule:    schedule,
			Status:      revocation.Status_Active,
		},
	}, nil
}

// Claim proves the claimant's leaf and pays out requested, or everything
// vested when requested is 0. existing is nil on a claimant's first claim.
// On error no record is returned and nothing is mutated.
func Claim(dist *state.MerkleDistribution, distAddress solana.PublicKey, existing *state.MerkleClaim, req *ClaimRequest, verifier proofs.Verifier, requested uint64, now int64) (*state.MerkleClaim, uint64, error) {
	if dist.Closed {
		return nil, 0, ledgerErrors.ErrDistributionClosed
	}
	record, err := resolveClaim(dist, distAddress, existing, req, verifier)
	if err != nil {
		return nil, 0, err
	}

	working := *record
	amount, err := claims.Claim(&working.VestedAllocation, requested, now)
	if err != nil {
		return nil, 0, err
	}
	totalClaimed, err := numbers.CheckedAdd(dist.TotalClaimed, amount)
	if err != nil {
		return nil, 0, err
	}
	if totalClaimed > dist.TotalAmount {
		return nil, 0, ledgerErrors.ErrInsufficientFunds
	}
	*record = working
	dist.TotalClaimed = totalClaimed
	return record, amount, nil
}

// Revoke freezes a claimant's allocation. When the claimant never claimed, the
// authority supplies their leaf and proof so the record is created already revoked.
func Revoke(dist *state.MerkleDistribution, distAddress solana.PublicKey, existing *state.MerkleClaim, req *ClaimRequest, verifier proofs.Verifier, mode revocation.RevokeMode, now int64) (*state.MerkleClaim, *claims.RevokeResult, error) {
	if !dist.Revocable {
		return nil, nil, ledgerErrors.ErrDistributionNotRevocable
	}
	if dist.Closed {
		return nil, nil, ledgerErrors.ErrDistributionClosed
	}

	record := existing
	if record == nil {
		var err error
		if record, err = resolveClaim(dist, distAddress, nil, req, verifier); err != nil {
			return nil, nil, err
		}
	}

	working := *record
	res, err := working.Revoke(mode, now)
	if err != nil {
		return nil, nil, err
	}
	total, err := numbers.CheckedSub(dist.TotalAmount, res.Forfeited)
	if err != nil {
		return nil, nil, err
	}
	*record = working
	dist.TotalAmount = total
	return record, res, nil
}

// CloseClaim retires a claim record once its distribution has closed and the
// allocation was fully claimed. The record's rent goes back to the claimant.
func CloseClaim(dist *state.MerkleDistribution, c *state.MerkleClaim) error {
	if !dist.Closed {
		return ledgerErrors.ErrDistributionNotClosed
	}
	if err := c.CheckClosable(); err != nil {
		return err
	}
	status, err := c.Status.Close()
	if err != nil {
		return err
	}
	c.Status = status
	return nil
}

// CloseDistribution marks dist closed once the clawback timestamp has been
// reached, so the vault can be swept to the authority.
func CloseDistribution(dist *state.MerkleDistribution, now int64) error {
	if dist.Closed {
		return ledgerErrors.ErrDistributionClosed
	}
	if err := revocation.CheckClawback(dist.ClawbackTs, now); err != nil {
		return err
	}
	dist.Closed = true
	return nil
}
