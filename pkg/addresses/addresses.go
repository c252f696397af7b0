// Package addresses derives the stable record addresses used by the ledger store.
//
// Records are program derived addresses: the same seeds always map to the same
// 32 byte key, so the store never needs in-memory references between records.
package addresses

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ProgramID owns every derived address.
var ProgramID = solana.MustPublicKeyFromBase58("7kw4iaikc9qTaFGcWx4wDiCXkkLddTb65HV8xH7KbHyc")

var (
	SeedRewardPool         = []byte("reward_pool")
	SeedUserReward         = []byte("user_reward")
	SeedDirectDistribution = []byte("direct_distribution")
	SeedDirectRecipient    = []byte("direct_recipient")
	SeedMerkleDistribution = []byte("merkle_distribution")
	SeedMerkleClaim        = []byte("merkle_claim")
	SeedRevocation         = []byte("revocation")
	SeedVault              = []byte("vault")
	SeedTokenAccount       = []byte("token_account")
)

// Derived is an address together with its bump seed.
type Derived struct {
	Address solana.PublicKey
	Bump    uint8
}

func derive(seeds ...[]byte) (Derived, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, ProgramID)
	if err != nil {
		return Derived{}, fmt.Errorf("failed to derive program address: %w", err)
	}
	return Derived{Address: addr, Bump: bump}, nil
}

func RewardPool(rewardMint, authority, seed solana.PublicKey) (Derived, error) {
	return derive(SeedRewardPool, rewardMint.Bytes(), authority.Bytes(), seed.Bytes())
}

func UserReward(pool, user solana.PublicKey) (Derived, error) {
	return derive(SeedUserReward, pool.Bytes(), user.Bytes())
}

func DirectDistribution(mint, authority, seed solana.PublicKey) (Derived, error) {
	return derive(SeedDirectDistribution, mint.Bytes(), authority.Bytes(), seed.Bytes())
}

func DirectRecipient(distribution, recipient solana.PublicKey) (Derived, error) {
	return derive(SeedDirectRecipient, distribution.Bytes(), recipient.Bytes())
}

func MerkleDistribution(mint, authority, seed solana.PublicKey) (Derived, error) {
	return derive(SeedMerkleDistribution, mint.Bytes(), authority.Bytes(), seed.Bytes())
}

func MerkleClaim(distribution, claimant solana.PublicKey) (Derived, error) {
	return derive(SeedMerkleClaim, distribution.Bytes(), claimant.Bytes())
}

// Revocation is shared by merkle distributions and reward pools; parent is either.
func Revocation(parent, user solana.PublicKey) (Derived, error) {
	return derive(SeedRevocation, parent.Bytes(), user.Bytes())
}

// Vault is the token account holding a distribution's funds.
func Vault(distribution solana.PublicKey) (Derived, error) {
	return derive(SeedVault, distribution.Bytes())
}

// TokenAccount is the wallet-owned token account for a mint.
func TokenAccount(owner, mint solana.PublicKey) (Derived, error) {
	return derive(SeedTokenAccount, owner.Bytes(), mint.Bytes())
}

// Parse decodes a base58 address.
func Parse(s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid address '%s': %w", s, err)
	}
	return pk, nil
}
