package state

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// RewardPool is a continuous distribution that streams rewards pro-rata
// against each opted-in user's tracked balance.
type RewardPool struct {
	Bump          uint8
	BalanceSource BalanceSource
	Revocable     bool
	Closed        bool

	Authority   solana.PublicKey
	TrackedMint solana.PublicKey
	RewardMint  solana.PublicKey
	Seed        solana.PublicKey

	// RewardPerToken is scaled by the reward precision and never decreases.
	RewardPerToken uint256.Int
	// OptedInSupply equals the sum of LastKnownBalance over opted-in users.
	OptedInSupply    uint64
	TotalDistributed uint64
	TotalClaimed     uint64
	UserCount        uint64
	ClawbackTs       int64
}

const rewardPoolDataLen = 8 + 4*32 + 16 + 5*8

func (p *RewardPool) Discriminator() Discriminator {
	return Discriminator_RewardPool
}

func (p *RewardPool) Bytes() []byte {
	return newEncoder(Discriminator_RewardPool, rewardPoolDataLen).
		u8(p.Bump).
		u8(uint8(p.BalanceSource)).
		boolean(p.Revocable).
		boolean(p.Closed).
		pad(4).
		key(p.Authority).
		key(p.TrackedMint).
		key(p.RewardMint).
		key(p.Seed).
		u128(&p.RewardPerToken).
		u64(p.OptedInSupply).
		u64(p.TotalDistributed).
		u64(p.TotalClaimed).
		u64(p.UserCount).
		i64(p.ClawbackTs).
		bytes()
}

func ParseRewardPool(data []byte) (*RewardPool, error) {
	d, err := newDecoder(data, Discriminator_RewardPool, rewardPoolDataLen)
	if err != nil {
		return nil, err
	}
	p := &RewardPool{}
	p.Bump = d.u8()
	if p.BalanceSource, err = ParseBalanceSource(d.u8()); err != nil {
		return nil, err
	}
	p.Revocable = d.boolean()
	p.Closed = d.boolean()
	d.skip(4)
	p.Authority = d.key()
	p.TrackedMint = d.key()
	p.RewardMint = d.key()
	p.Seed = d.key()
	p.RewardPerToken = d.u128()
	p.OptedInSupply = d.u64()
	p.TotalDistributed = d.u64()
	p.TotalClaimed = d.u64()
	p.UserCount = d.u64()
	p.ClawbackTs = d.i64()
	if d.err != nil {
		return nil, d.err
	}
	return p, nil
}

// UserRewardAccount is one user's position in a RewardPool.
type UserRewardAccount struct {
	Bump     uint8
	Revoked  bool
	OptedOut bool

	Pool solana.PublicKey
	User solana.PublicKey

	// RewardPerTokenPaid is the pool accumulator at the last settlement.
	RewardPerTokenPaid uint256.Int
	AccruedRewards     uint64
	LastKnownBalance   uint64
}

const userRewardAccountDataLen = 8 + 2*32 + 16 + 2*8

func (u *UserRewardAccount) Discriminator() Discriminator {
	return Discriminator_UserRewardAccount
}

func (u *UserRewardAccount) Bytes() []byte {
	return newEncoder(Discriminator_UserRewardAccount, userRewardAccountDataLen).
		u8(u.Bump).
		boolean(u.Revoked).
		boolean(u.OptedOut).
		pad(5).
		key(u.Pool).
		key(u.User).
		u128(&u.RewardPerTokenPaid).
		u64(u.AccruedRewards).
		u64(u.LastKnownBalance).
		bytes()
}

func ParseUserRewardAccount(data []byte) (*UserRewardAccount, error) {
	d, err := newDecoder(data, Discriminator_UserRewardAccount, userRewardAccountDataLen)
	if err != nil {
		return nil, err
	}
	u := &UserRewardAccount{}
	u.Bump = d.u8()
	u.Revoked = d.boolean()
	u.OptedOut = d.boolean()
	d.skip(5)
	u.Pool = d.key()
	u.User = d.key()
	u.RewardPerTokenPaid = d.u128()
	u.AccruedRewards = d.u64()
	u.LastKnownBalance = d.u64()
	if d.err != nil {
		return nil, d.err
	}
	return u, nil
}
