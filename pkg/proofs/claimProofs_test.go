package proofs

import (
	"fmt"
	"testing"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/logger"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func claimantFromByte(b byte) solana.PublicKey {
	var pk solana.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func makeLeaves(n int) []Leaf {
	leaves := make([]Leaf, 0, n)
	for i := 0; i < n; i++ {
		leaves = append(leaves, Leaf{
			Claimant: claimantFromByte(byte(i + 1)),
			Amount:   uint64(1000 * (i + 1)),
			Schedule: vesting.Linear(100, 200),
		})
	}
	return leaves
}

func Test_LeafHash(t *testing.T) {
	t.Run("Should follow the double hashed leaf format", func(t *testing.T) {
		leaf := Leaf{Claimant: claimantFromByte(1), Amount: 1000, Schedule: vesting.Immediate()}

		inner := append(claimantFromByte(1).Bytes(), 0xe8, 0x03, 0, 0, 0, 0, 0, 0, 0x00)
		expected := crypto.Keccak256Hash([]byte{0x00}, crypto.Keccak256(inner))
		assert.Equal(t, expected, leaf.Hash())
	})
	t.Run("Should differ for different amounts and schedules", func(t *testing.T) {
		a := Leaf{Claimant: claimantFromByte(1), Amount: 1000, Schedule: vesting.Immediate()}
		b := Leaf{Claimant: claimantFromByte(1), Amount: 1001, Schedule: vesting.Immediate()}
		c := Leaf{Claimant: claimantFromByte(1), Amount: 1000, Schedule: vesting.Cliff(5)}
		assert.NotEqual(t, a.Hash(), b.Hash())
		assert.NotEqual(t, a.Hash(), c.Hash())
	})
	t.Run("Should hash pairs independent of order", func(t *testing.T) {
		a := gethcommon.HexToHash("0x01")
		b := gethcommon.HexToHash("0x02")
		assert.Equal(t, HashPair(a, b), HashPair(b, a))
	})
}

func Test_ClaimTree(t *testing.T) {
	v := NewKeccakVerifier()

	for _, n := range []int{1, 2, 3, 4, 5, 8, 13} {
		t.Run(fmt.Sprintf("Should verify every proof in a tree of %d leaves", n), func(t *testing.T) {
			leaves := makeLeaves(n)
			tree, err := NewClaimTree(leaves)
			assert.Nil(t, err)

			for _, leaf := range leaves {
				l, proof, err := tree.ProofFor(leaf.Claimant)
				assert.Nil(t, err)
				assert.True(t, v.Verify(tree.Root(), l, proof))
			}
		})
	}
	t.Run("Should use the leaf hash as root for a single leaf", func(t *testing.T) {
		leaves := makeLeaves(1)
		tree, err := NewClaimTree(leaves)
		assert.Nil(t, err)
		assert.Equal(t, leaves[0].Hash(), tree.Root())
	})
	t.Run("Should promote an odd node without padding", func(t *testing.T) {
		leaves := makeLeaves(3)
		tree, err := NewClaimTree(leaves)
		assert.Nil(t, err)

		expected := HashPair(HashPair(leaves[0].Hash(), leaves[1].Hash()), leaves[2].Hash())
		assert.Equal(t, expected, tree.Root())

		proof, err := tree.ProofAt(2)
		assert.Nil(t, err)
		assert.Equal(t, []gethcommon.Hash{HashPair(leaves[0].Hash(), leaves[1].Hash())}, proof)
	})
	t.Run("Should reject a tampered proof", func(t *testing.T) {
		tree, err := NewClaimTree(makeLeaves(4))
		assert.Nil(t, err)
		leaf, proof, err := tree.ProofFor(claimantFromByte(2))
		assert.Nil(t, err)

		proof[0][0] ^= 0xff
		assert.ErrorIs(t, VerifyOrError(v, tree.Root(), leaf, proof), ledgerErrors.ErrInvalidMerkleProof)
	})
	t.Run("Should reject an inflated amount", func(t *testing.T) {
		tree, err := NewClaimTree(makeLeaves(4))
		assert.Nil(t, err)
		leaf, proof, err := tree.ProofFor(claimantFromByte(3))
		assert.Nil(t, err)

		leaf.Amount++
		assert.False(t, v.Verify(tree.Root(), leaf, proof))
	})
	t.Run("Should reject duplicate claimants", func(t *testing.T) {
		leaves := append(makeLeaves(2), makeLeaves(1)...)
		_, err := NewClaimTree(leaves)
		assert.NotNil(t, err)
	})
	t.Run("Should reject an empty tree", func(t *testing.T) {
		_, err := NewClaimTree(nil)
		assert.NotNil(t, err)
	})
	t.Run("Should sum leaf amounts", func(t *testing.T) {
		tree, err := NewClaimTree(makeLeaves(3))
		assert.Nil(t, err)
		total, err := tree.Total()
		assert.Nil(t, err)
		assert.Equal(t, uint64(6000), total)
	})
}

func Test_ClaimProofsStore(t *testing.T) {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	store := NewClaimProofsStore(l)

	t.Run("Should serve proofs for cached roots", func(t *testing.T) {
		tree, err := store.AddLeaves(makeLeaves(5))
		assert.Nil(t, err)

		leaf, proof, err := store.GenerateClaimProof(tree.Root(), claimantFromByte(4))
		assert.Nil(t, err)
		assert.Equal(t, uint64(4000), leaf.Amount)
		assert.True(t, NewKeccakVerifier().Verify(tree.Root(), leaf, proof))
	})
	t.Run("Should fail for unknown roots", func(t *testing.T) {
		_, _, err := store.GenerateClaimProof(gethcommon.HexToHash("0xdead"), claimantFromByte(1))
		assert.NotNil(t, err)
	})
}
