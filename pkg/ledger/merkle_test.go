package ledger

import (
	"testing"
	"time"

	"github.com/Layr-Labs/rewards-ledger/pkg/addresses"
	"github.com/Layr-Labs/rewards-ledger/pkg/events"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/merkle"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

type merkleFixture struct {
	*harness
	dist  solana.PublicKey
	tree  *proofs.ClaimTree
	alice solana.PublicKey
	bob   solana.PublicKey
	carol solana.PublicKey
}

func newMerkleFixture(t *testing.T, revocable bool, clawbackTs int64) *merkleFixture {
	h := setup(t)
	f := &merkleFixture{
		harness: h,
		alice:   solana.NewWallet().PublicKey(),
		bob:     solana.NewWallet().PublicKey(),
		carol:   solana.NewWallet().PublicKey(),
	}
	tree, err := proofs.NewClaimTree([]proofs.Leaf{
		{Claimant: f.alice, Amount: 600, Schedule: vesting.Linear(startTs, startTs+100)},
		{Claimant: f.bob, Amount: 300, Schedule: vesting.Immediate()},
		{Claimant: f.carol, Amount: 100, Schedule: vesting.Immediate()},
	})
	assert.Nil(t, err)
	f.tree = tree

	receipt, err := h.ledger.CreateMerkleDistribution(h.ctx, &CreateMerkleDistributionParams{
		Authority:   h.authority,
		Mint:        h.mint,
		Seed:        solana.NewWallet().PublicKey(),
		MerkleRoot:  tree.Root(),
		TotalAmount: 1_000,
		Revocable:   revocable,
		ClawbackTs:  clawbackTs,
	})
	assert.Nil(t, err)
	f.dist = receipt.Address

	for _, claimant := range []solana.PublicKey{f.alice, f.bob, f.carol} {
		h.wallet(t, claimant, h.mint, 0)
	}
	h.drain()
	return f
}

func (f *merkleFixture) request(t *testing.T, claimant solana.PublicKey) *merkle.ClaimRequest {
	leaf, proof, err := f.tree.ProofFor(claimant)
	assert.Nil(t, err)
	return &merkle.ClaimRequest{Leaf: leaf, Proof: proof}
}

func (f *merkleFixture) claimAddress(t *testing.T, claimant solana.PublicKey) solana.PublicKey {
	derived, err := addresses.MerkleClaim(f.dist, claimant)
	assert.Nil(t, err)
	return derived.Address
}

func Test_MerkleClaims(t *testing.T) {
	t.Run("Should pay a proven claim and create its record", func(t *testing.T) {
		f := newMerkleFixture(t, false, 0)
		assert.Equal(t, uint64(0), f.balance(t, f.authority, f.mint))

		receipt, err := f.ledger.ClaimMerkle(f.ctx, f.bob, f.dist, f.request(t, f.bob), 0)
		assert.Nil(t, err)
		assert.Equal(t, uint64(300), receipt.Amount)
		assert.Equal(t, f.claimAddress(t, f.bob), receipt.Address)
		assert.Equal(t, uint64(300), f.balance(t, f.bob, f.mint))

		record, err := f.ledger.GetMerkleClaim(f.ctx, receipt.Address)
		assert.Nil(t, err)
		assert.True(t, record.IsFullyClaimed())

		_, err = f.ledger.ClaimMerkle(f.ctx, f.bob, f.dist, f.request(t, f.bob), 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
		assert.Equal(t, []events.Kind{events.Kind_Claimed}, f.drain())
	})
	t.Run("Should claim a linear leaf as it vests", func(t *testing.T) {
		f := newMerkleFixture(t, false, 0)
		f.clock.Advance(25 * time.Second)
		receipt, err := f.ledger.ClaimMerkle(f.ctx, f.alice, f.dist, f.request(t, f.alice), 0)
		assert.Nil(t, err)
		assert.Equal(t, uint64(150), receipt.Amount)

		f.clock.Advance(75 * time.Second)
		receipt, err = f.ledger.ClaimMerkle(f.ctx, f.alice, f.dist, f.request(t, f.alice), 0)
		assert.Nil(t, err)
		assert.Equal(t, uint64(450), receipt.Amount)

		dist, err := f.ledger.GetMerkleDistribution(f.ctx, f.dist)
		assert.Nil(t, err)
		assert.Equal(t, uint64(600), dist.TotalClaimed)
	})
	t.Run("Should leave no trace for a tampered proof", func(t *testing.T) {
		f := newMerkleFixture(t, false, 0)
		req := f.request(t, f.bob)
		req.Leaf.Amount = 900

		_, err := f.ledger.ClaimMerkle(f.ctx, f.bob, f.dist, req, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidMerkleProof)

		_, err = f.ledger.GetMerkleClaim(f.ctx, f.claimAddress(t, f.bob))
		assert.ErrorIs(t, err, ledgerErrors.ErrAccountNotFound)
		assert.Equal(t, uint64(0), f.balance(t, f.bob, f.mint))
		assert.Empty(t, f.drain())
	})
	t.Run("Should refuse claiming someone else's leaf", func(t *testing.T) {
		f := newMerkleFixture(t, false, 0)
		_, err := f.ledger.ClaimMerkle(f.ctx, f.alice, f.dist, f.request(t, f.bob), 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrUnauthorizedRecipient)
		assert.Equal(t, uint64(0), f.balance(t, f.alice, f.mint))
	})
}

func Test_MerkleRevoke(t *testing.T) {
	t.Run("Should revoke a claimant who never claimed", func(t *testing.T) {
		f := newMerkleFixture(t, true, 0)
		f.clock.Advance(40 * time.Second)

		receipt, err := f.ledger.RevokeMerkleClaim(f.ctx, f.authority, f.dist, f.alice, f.request(t, f.alice), revocation.RevokeMode_NonVested)
		assert.Nil(t, err)
		assert.Equal(t, uint64(360), receipt.Amount)
		assert.Equal(t, uint64(360), f.balance(t, f.authority, f.mint))

		record, err := f.ledger.GetMerkleClaim(f.ctx, receipt.Address)
		assert.Nil(t, err)
		assert.Equal(t, revocation.Status_PartiallyRevoked, record.Status)
		assert.Equal(t, uint64(240), record.TotalAmount)

		f.clock.Advance(60 * time.Second)
		receipt, err = f.ledger.ClaimMerkle(f.ctx, f.alice, f.dist, f.request(t, f.alice), 0)
		assert.Nil(t, err)
		assert.Equal(t, uint64(240), receipt.Amount)

		dist, err := f.ledger.GetMerkleDistribution(f.ctx, f.dist)
		assert.Nil(t, err)
		assert.Equal(t, uint64(640), dist.TotalAmount)
	})
	t.Run("Should require a proof when no record exists", func(t *testing.T) {
		f := newMerkleFixture(t, true, 0)
		_, err := f.ledger.RevokeMerkleClaim(f.ctx, f.authority, f.dist, f.carol, nil, revocation.RevokeMode_Full)
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidMerkleProof)
	})
	t.Run("Should revoke an existing record without a proof", func(t *testing.T) {
		f := newMerkleFixture(t, true, 0)
		f.clock.Advance(50 * time.Second)
		_, err := f.ledger.ClaimMerkle(f.ctx, f.alice, f.dist, f.request(t, f.alice), 100)
		assert.Nil(t, err)

		receipt, err := f.ledger.RevokeMerkleClaim(f.ctx, f.authority, f.dist, f.alice, nil, revocation.RevokeMode_Full)
		assert.Nil(t, err)
		assert.Equal(t, uint64(500), receipt.Amount)

		_, err = f.ledger.ClaimMerkle(f.ctx, f.alice, f.dist, f.request(t, f.alice), 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
	})
	t.Run("Should refuse a stranger revoking", func(t *testing.T) {
		f := newMerkleFixture(t, true, 0)
		_, err := f.ledger.RevokeMerkleClaim(f.ctx, f.bob, f.dist, f.alice, f.request(t, f.alice), revocation.RevokeMode_Full)
		assert.ErrorIs(t, err, ledgerErrors.ErrUnauthorizedAuthority)
	})
}

func Test_MerkleClose(t *testing.T) {
	t.Run("Should close claims only after the distribution closes", func(t *testing.T) {
		f := newMerkleFixture(t, false, startTs+100)
		_, err := f.ledger.ClaimMerkle(f.ctx, f.bob, f.dist, f.request(t, f.bob), 0)
		assert.Nil(t, err)

		_, err = f.ledger.CloseMerkleClaim(f.ctx, f.bob, f.dist)
		assert.ErrorIs(t, err, ledgerErrors.ErrDistributionNotClosed)
		_, err = f.ledger.CloseMerkleDistribution(f.ctx, f.authority, f.dist)
		assert.ErrorIs(t, err, ledgerErrors.ErrClawbackNotReached)

		f.clock.Advance(100 * time.Second)
		receipt, err := f.ledger.CloseMerkleDistribution(f.ctx, f.authority, f.dist)
		assert.Nil(t, err)
		assert.Equal(t, uint64(700), receipt.Amount)
		assert.Equal(t, uint64(700), f.balance(t, f.authority, f.mint))

		_, err = f.ledger.ClaimMerkle(f.ctx, f.carol, f.dist, f.request(t, f.carol), 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrDistributionClosed)

		_, err = f.ledger.CloseMerkleClaim(f.ctx, f.bob, f.dist)
		assert.Nil(t, err)
		_, err = f.ledger.GetMerkleClaim(f.ctx, f.claimAddress(t, f.bob))
		assert.ErrorIs(t, err, ledgerErrors.ErrAccountNotFound)

		dist, err := f.ledger.GetMerkleDistribution(f.ctx, f.dist)
		assert.Nil(t, err)
		assert.True(t, dist.Closed)
		assert.Equal(t, []events.Kind{
			events.Kind_Claimed,
			events.Kind_DistributionClosed,
			events.Kind_ClaimClosed,
		}, f.drain())
	})
	t.Run("Should report a missing claim record", func(t *testing.T) {
		f := newMerkleFixture(t, false, 0)
		_, err := f.ledger.CloseMerkleDistribution(f.ctx, f.authority, f.dist)
		assert.Nil(t, err)
		_, err = f.ledger.CloseMerkleClaim(f.ctx, f.carol, f.dist)
		assert.ErrorIs(t, err, ledgerErrors.ErrAccountNotFound)
	})
}
