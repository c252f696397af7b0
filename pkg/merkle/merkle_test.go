package merkle

import (
	"testing"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

type fixture struct {
	dist     *state.MerkleDistribution
	tree     *proofs.ClaimTree
	verifier proofs.Verifier
	alice    solana.PublicKey
	bob      solana.PublicKey
}

func newFixture(t *testing.T, revocable bool) *fixture {
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	tree, err := proofs.NewClaimTree([]proofs.Leaf{
		{Claimant: alice, Amount: 1000, Schedule: vesting.Linear(0, 100)},
		{Claimant: bob, Amount: 500, Schedule: vesting.Immediate()},
	})
	assert.Nil(t, err)

	dist, err := NewDistribution(&DistributionParams{
		Authority:   solana.NewWallet().PublicKey(),
		MerkleRoot:  tree.Root(),
		TotalAmount: 1500,
		Revocable:   revocable,
		ClawbackTs:  1_000,
	})
	assert.Nil(t, err)
	return &fixture{dist: dist, tree: tree, verifier: proofs.NewKeccakVerifier(), alice: alice, bob: bob}
}

func (f *fixture) request(t *testing.T, claimant solana.PublicKey) *ClaimRequest {
	leaf, proof, err := f.tree.ProofFor(claimant)
	assert.Nil(t, err)
	return &ClaimRequest{Leaf: leaf, Proof: proof}
}

func Test_NewDistribution(t *testing.T) {
	t.Run("Should reject a zero total", func(t *testing.T) {
		_, err := NewDistribution(&DistributionParams{})
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAmount)
	})
	t.Run("Should reject an inverted uniform window", func(t *testing.T) {
		_, err := NewDistribution(&DistributionParams{TotalAmount: 1, VestingStartTs: 10, VestingEndTs: 5})
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidTimeWindow)
	})
}

func Test_Claim(t *testing.T) {
	t.Run("Should create the record on the first claim", func(t *testing.T) {
		f := newFixture(t, false)
		record, amount, err := Claim(f.dist, solana.PublicKey{}, nil, f.request(t, f.alice), f.verifier, 0, 25)
		assert.Nil(t, err)
		assert.Equal(t, uint64(250), amount)
		assert.Equal(t, uint64(1000), record.LeafAmount)
		assert.Equal(t, uint64(250), record.ClaimedAmount)
		assert.Equal(t, uint64(250), f.dist.TotalClaimed)

		record, amount, err = Claim(f.dist, solana.PublicKey{}, record, f.request(t, f.alice), f.verifier, 0, 100)
		assert.Nil(t, err)
		assert.Equal(t, uint64(750), amount)
		assert.True(t, record.IsFullyClaimed())
	})
	t.Run("Should create no record for a tampered proof", func(t *testing.T) {
		f := newFixture(t, false)
		req := f.request(t, f.bob)
		req.Leaf.Amount = 5000

		record, amount, err := Claim(f.dist, solana.PublicKey{}, nil, req, f.verifier, 0, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidMerkleProof)
		assert.Nil(t, record)
		assert.Equal(t, uint64(0), amount)
		assert.Equal(t, uint64(0), f.dist.TotalClaimed)
	})
	t.Run("Should leave the record untouched when a claim fails", func(t *testing.T) {
		f := newFixture(t, false)
		record, _, err := Claim(f.dist, solana.PublicKey{}, nil, f.request(t, f.alice), f.verifier, 100, 50)
		assert.Nil(t, err)

		_, _, err = Claim(f.dist, solana.PublicKey{}, record, f.request(t, f.alice), f.verifier, 500, 50)
		assert.ErrorIs(t, err, ledgerErrors.ErrExceedsClaimableAmount)
		assert.Equal(t, uint64(100), record.ClaimedAmount)
	})
	t.Run("Should use the uniform window over the leaf schedule", func(t *testing.T) {
		f := newFixture(t, false)
		f.dist.VestingStartTs = 0
		f.dist.VestingEndTs = 10

		_, amount, err := Claim(f.dist, solana.PublicKey{}, nil, f.request(t, f.bob), f.verifier, 0, 5)
		assert.Nil(t, err)
		assert.Equal(t, uint64(250), amount)
	})
	t.Run("Should refuse a record that does not match the leaf", func(t *testing.T) {
		f := newFixture(t, false)
		record, _, err := Claim(f.dist, solana.PublicKey{}, nil, f.request(t, f.alice), f.verifier, 1, 50)
		assert.Nil(t, err)

		_, _, err = Claim(f.dist, solana.PublicKey{}, record, f.request(t, f.bob), f.verifier, 0, 50)
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccountData)
	})
}

func Test_Revoke(t *testing.T) {
	t.Run("Should create a revoked record for a claimant who never claimed", func(t *testing.T) {
		f := newFixture(t, true)
		record, res, err := Revoke(f.dist, solana.PublicKey{}, nil, f.request(t, f.alice), f.verifier, revocation.RevokeMode_NonVested, 40)
		assert.Nil(t, err)
		assert.Equal(t, revocation.Status_PartiallyRevoked, record.Status)
		assert.Equal(t, uint64(400), record.TotalAmount)
		assert.Equal(t, uint64(400), res.VestedUnclaimed)
		assert.Equal(t, uint64(600), res.Forfeited)
		assert.Equal(t, uint64(900), f.dist.TotalAmount)

		_, amount, err := Claim(f.dist, solana.PublicKey{}, record, f.request(t, f.alice), f.verifier, 0, 100)
		assert.Nil(t, err)
		assert.Equal(t, uint64(400), amount)
	})
	t.Run("Should use the existing record without a proof", func(t *testing.T) {
		f := newFixture(t, true)
		record, _, err := Claim(f.dist, solana.PublicKey{}, nil, f.request(t, f.alice), f.verifier, 0, 10)
		assert.Nil(t, err)

		_, res, err := Revoke(f.dist, solana.PublicKey{}, record, nil, f.verifier, revocation.RevokeMode_Full, 50)
		assert.Nil(t, err)
		assert.Equal(t, uint64(900), res.Forfeited)
		assert.Equal(t, uint64(100), record.TotalAmount)

		_, _, err = Revoke(f.dist, solana.PublicKey{}, record, nil, f.verifier, revocation.RevokeMode_Full, 50)
		assert.ErrorIs(t, err, ledgerErrors.ErrClaimantAlreadyRevoked)
	})
	t.Run("Should refuse a non revocable distribution", func(t *testing.T) {
		f := newFixture(t, false)
		_, _, err := Revoke(f.dist, solana.PublicKey{}, nil, f.request(t, f.alice), f.verifier, revocation.RevokeMode_Full, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrDistributionNotRevocable)
	})
}

func Test_Close(t *testing.T) {
	t.Run("Should require the distribution to be closed first", func(t *testing.T) {
		f := newFixture(t, false)
		record, _, err := Claim(f.dist, solana.PublicKey{}, nil, f.request(t, f.bob), f.verifier, 0, 0)
		assert.Nil(t, err)

		assert.ErrorIs(t, CloseClaim(f.dist, record), ledgerErrors.ErrDistributionNotClosed)
		assert.ErrorIs(t, CloseDistribution(f.dist, 999), ledgerErrors.ErrClawbackNotReached)
		assert.Nil(t, CloseDistribution(f.dist, 1_000))
		assert.Nil(t, CloseClaim(f.dist, record))
		assert.Equal(t, revocation.Status_Closed, record.Status)
	})
	t.Run("Should refuse closing a partially claimed record", func(t *testing.T) {
		f := newFixture(t, false)
		record, _, err := Claim(f.dist, solana.PublicKey{}, nil, f.request(t, f.alice), f.verifier, 0, 50)
		assert.Nil(t, err)
		assert.Nil(t, CloseDistribution(f.dist, 2_000))
		assert.ErrorIs(t, CloseClaim(f.dist, record), ledgerErrors.ErrClaimNotFullyVested)
	})
}
