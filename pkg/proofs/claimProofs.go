// Package proofs builds and verifies the merkle proofs that back merkle distributions.
//
// Leaves are keccak256(0x00 || keccak256(claimant || amount_le || schedule_bytes)).
// Interior nodes hash their two children in ascending byte order, so a proof
// is just the list of sibling hashes from leaf to root.
package proofs

import (
	"bytes"
	"encoding/binary"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
)

// LeafPrefix domain-separates leaves from interior nodes.
var LeafPrefix = []byte{0x00}

// Leaf is a single allocation committed to by a merkle root.
type Leaf struct {
	Claimant solana.PublicKey
	Amount   uint64
	Schedule vesting.Schedule
}

// Hash computes the leaf hash.
func (l Leaf) Hash() gethcommon.Hash {
	inner := make([]byte, 0, solana.PublicKeyLength+8+l.Schedule.EncodedLen())
	inner = append(inner, l.Claimant[:]...)
	inner = binary.LittleEndian.AppendUint64(inner, l.Amount)
	inner = append(inner, l.Schedule.Bytes()...)

	return crypto.Keccak256Hash(LeafPrefix, crypto.Keccak256(inner))
}

// HashPair hashes two nodes with the smaller one first.
func HashPair(a, b gethcommon.Hash) gethcommon.Hash {
	if bytes.Compare(a[:], b[:]) < 0 {
		return crypto.Keccak256Hash(a[:], b[:])
	}
	return crypto.Keccak256Hash(b[:], a[:])
}

// ComputeRoot folds a proof over a leaf hash.
func ComputeRoot(leaf gethcommon.Hash, proof []gethcommon.Hash) gethcommon.Hash {
	computed := leaf
	for _, sibling := range proof {
		computed = HashPair(computed, sibling)
	}
	return computed
}

// Verifier checks that a leaf is committed to by root.
type Verifier interface {
	Verify(root gethcommon.Hash, leaf Leaf, proof []gethcommon.Hash) bool
}

// KeccakVerifier is the default sorted-pair keccak256 verifier.
type KeccakVerifier struct{}

func NewKeccakVerifier() *KeccakVerifier {
	return &KeccakVerifier{}
}

func (v *KeccakVerifier) Verify(root gethcommon.Hash, leaf Leaf, proof []gethcommon.Hash) bool {
	return ComputeRoot(leaf.Hash(), proof) == root
}

// VerifyOrError returns ErrInvalidMerkleProof when the proof does not reconstruct root.
func VerifyOrError(v Verifier, root gethcommon.Hash, leaf Leaf, proof []gethcommon.Hash) error {
	if !v.Verify(root, leaf, proof) {
		return ledgerErrors.ErrInvalidMerkleProof
	}
	return nil
}
