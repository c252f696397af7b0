// Package state defines the persisted record layouts of the rewards ledger.
//
// Every record starts with a two byte header (discriminator, layout version)
// followed by little-endian fixed-width fields. Addresses are 32 bytes and the
// reward accumulator is 16 bytes.
package state

import (
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
)

type Discriminator uint8

const (
	Discriminator_RewardPool         Discriminator = 1
	Discriminator_UserRewardAccount  Discriminator = 2
	Discriminator_DirectDistribution Discriminator = 3
	Discriminator_DirectRecipient    Discriminator = 4
	Discriminator_MerkleDistribution Discriminator = 5
	Discriminator_MerkleClaim        Discriminator = 6
	Discriminator_Revocation         Discriminator = 7
	Discriminator_TokenAccount       Discriminator = 8
)

func (d Discriminator) String() string {
	switch d {
	case Discriminator_RewardPool:
		return "reward_pool"
	case Discriminator_UserRewardAccount:
		return "user_reward_account"
	case Discriminator_DirectDistribution:
		return "direct_distribution"
	case Discriminator_DirectRecipient:
		return "direct_recipient"
	case Discriminator_MerkleDistribution:
		return "merkle_distribution"
	case Discriminator_MerkleClaim:
		return "merkle_claim"
	case Discriminator_Revocation:
		return "revocation"
	case Discriminator_TokenAccount:
		return "token_account"
	default:
		return "unknown"
	}
}

const (
	HeaderLen      = 2
	CurrentVersion = uint8(1)

	// scheduleSlotLen is the fixed space reserved for the largest schedule encoding.
	scheduleSlotLen = 25
)

// Account is any persisted record.
type Account interface {
	Discriminator() Discriminator
	Bytes() []byte
}

// PeekDiscriminator reads the discriminator of raw record bytes without decoding them.
func PeekDiscriminator(data []byte) (Discriminator, error) {
	if len(data) < HeaderLen {
		return 0, ledgerErrors.ErrInvalidAccountData
	}
	return Discriminator(data[0]), nil
}

// BalanceSource decides who reports a continuous pool user's tracked balance.
type BalanceSource uint8

const (
	// BalanceSource_OnChain reads balances from the user's tracked token account.
	BalanceSource_OnChain BalanceSource = 0
	// BalanceSource_AuthoritySet lets the pool authority set balances directly.
	BalanceSource_AuthoritySet BalanceSource = 1
)

func (b BalanceSource) String() string {
	if b == BalanceSource_AuthoritySet {
		return "authority_set"
	}
	return "on_chain"
}

// ParseBalanceSource decodes a balance source byte.
func ParseBalanceSource(b byte) (BalanceSource, error) {
	switch BalanceSource(b) {
	case BalanceSource_OnChain, BalanceSource_AuthoritySet:
		return BalanceSource(b), nil
	default:
		return 0, ledgerErrors.ErrInvalidBalanceSource
	}
}
