package proofs

import (
	"fmt"
	"sync"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// ClaimTree is a sorted-pair merkle tree over claim leaves.
//
// Levels with an odd number of nodes promote the last node unchanged, so the
// proof for that node has no sibling at that level.
type ClaimTree struct {
	Leaves []Leaf
	// levels[0] holds the leaf hashes, the last level holds the root
	levels  [][]gethcommon.Hash
	indexOf map[solana.PublicKey]int
}

// NewClaimTree builds a tree from leaves. Each claimant may appear only once.
func NewClaimTree(leaves []Leaf) (*ClaimTree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("cannot build a claim tree without leaves")
	}
	t := &ClaimTree{
		Leaves:  leaves,
		indexOf: make(map[solana.PublicKey]int, len(leaves)),
	}

	level := make([]gethcommon.Hash, len(leaves))
	for i, leaf := range leaves {
		if _, ok := t.indexOf[leaf.Claimant]; ok {
			return nil, fmt.Errorf("duplicate claimant %s", leaf.Claimant)
		}
		t.indexOf[leaf.Claimant] = i
		level[i] = leaf.Hash()
	}
	t.levels = append(t.levels, level)

	for len(level) > 1 {
		next := make([]gethcommon.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, HashPair(level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t, nil
}

// Root returns the merkle root.
func (t *ClaimTree) Root() gethcommon.Hash {
	return t.levels[len(t.levels)-1][0]
}

// ProofAt returns the sibling path for the leaf at index.
func (t *ClaimTree) ProofAt(index int) ([]gethcommon.Hash, error) {
	if index < 0 || index >= len(t.Leaves) {
		return nil, fmt.Errorf("leaf index %d out of range", index)
	}
	proof := make([]gethcommon.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		index /= 2
	}
	return proof, nil
}

// ProofFor returns the leaf and proof for a claimant.
func (t *ClaimTree) ProofFor(claimant solana.PublicKey) (Leaf, []gethcommon.Hash, error) {
	index, ok := t.indexOf[claimant]
	if !ok {
		return Leaf{}, nil, fmt.Errorf("claimant %s not found in tree", claimant)
	}
	proof, err := t.ProofAt(index)
	if err != nil {
		return Leaf{}, nil, err
	}
	return t.Leaves[index], proof, nil
}

// Total sums every leaf amount.
func (t *ClaimTree) Total() (uint64, error) {
	var total uint64
	for _, l := range t.Leaves {
		next := total + l.Amount
		if next < total {
			return 0, fmt.Errorf("leaf amounts overflow uint64")
		}
		total = next
	}
	return total, nil
}

// ClaimProofsStore caches claim trees by root so proofs can be served repeatedly
// without rebuilding the tree.
type ClaimProofsStore struct {
	logger *zap.Logger

	mu    sync.RWMutex
	trees map[gethcommon.Hash]*ClaimTree
}

func NewClaimProofsStore(l *zap.Logger) *ClaimProofsStore {
	return &ClaimProofsStore{
		logger: l,
		trees:  make(map[gethcommon.Hash]*ClaimTree),
	}
}

// AddLeaves builds a tree from leaves, caches it and returns it.
func (s *ClaimProofsStore) AddLeaves(leaves []Leaf) (*ClaimTree, error) {
	tree, err := NewClaimTree(leaves)
	if err != nil {
		s.logger.Sugar().Errorw("Failed to build claim tree", zap.Error(err))
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trees[tree.Root()] = tree
	s.logger.Sugar().Debugw("Cached claim tree",
		zap.String("root", tree.Root().Hex()),
		zap.Int("leaves", len(leaves)),
	)
	return tree, nil
}

// GenerateClaimProof returns the leaf and proof for claimant under root.
func (s *ClaimProofsStore) GenerateClaimProof(root gethcommon.Hash, claimant solana.PublicKey) (Leaf, []gethcommon.Hash, error) {
	s.mu.RLock()
	tree, ok := s.trees[root]
	s.mu.RUnlock()
	if !ok {
		return Leaf{}, nil, fmt.Errorf("no claim tree cached for root %s", root.Hex())
	}
	return tree.ProofFor(claimant)
}
