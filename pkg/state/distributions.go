package state

import (
	"github.com/Layr-Labs/rewards-ledger/pkg/claims"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/gagliardetto/solana-go"
)

// DirectDistribution owns explicitly allocated DirectRecipient records.
type DirectDistribution struct {
	Bump      uint8
	Revocable bool
	Closed    bool

	Authority solana.PublicKey
	Mint      solana.PublicKey
	Seed      solana.PublicKey
	Vault     solana.PublicKey

	TotalAllocated uint64
	TotalClaimed   uint64
	ClawbackTs     int64
	// OpenRecipients counts recipient records that have not been closed.
	OpenRecipients uint64
}

const directDistributionDataLen = 8 + 4*32 + 4*8

func (dd *DirectDistribution) Discriminator() Discriminator {
	return Discriminator_DirectDistribution
}

func (dd *DirectDistribution) Bytes() []byte {
	return newEncoder(Discriminator_DirectDistribution, directDistributionDataLen).
		u8(dd.Bump).
		boolean(dd.Revocable).
		boolean(dd.Closed).
		pad(5).
		key(dd.Authority).
		key(dd.Mint).
		key(dd.Seed).
		key(dd.Vault).
		u64(dd.TotalAllocated).
		u64(dd.TotalClaimed).
		i64(dd.ClawbackTs).
		u64(dd.OpenRecipients).
		bytes()
}

func ParseDirectDistribution(data []byte) (*DirectDistribution, error) {
	d, err := newDecoder(data, Discriminator_DirectDistribution, directDistributionDataLen)
	if err != nil {
		return nil, err
	}
	dd := &DirectDistribution{}
	dd.Bump = d.u8()
	dd.Revocable = d.boolean()
	dd.Closed = d.boolean()
	d.skip(5)
	dd.Authority = d.key()
	dd.Mint = d.key()
	dd.Seed = d.key()
	dd.Vault = d.key()
	dd.TotalAllocated = d.u64()
	dd.TotalClaimed = d.u64()
	dd.ClawbackTs = d.i64()
	dd.OpenRecipients = d.u64()
	if d.err != nil {
		return nil, d.err
	}
	return dd, nil
}

// DirectRecipient is one explicit allocation within a DirectDistribution.
type DirectRecipient struct {
	Bump         uint8
	Distribution solana.PublicKey
	Recipient    solana.PublicKey
	// Payer funded the record and receives its rent back on close.
	Payer solana.PublicKey

	claims.VestedAllocation
}

const directRecipientDataLen = 8 + 3*32 + 2*8 + scheduleSlotLen

func (r *DirectRecipient) Discriminator() Discriminator {
	return Discriminator_DirectRecipient
}

func (r *DirectRecipient) Bytes() []byte {
	sb := r.Schedule.Bytes()
	return newEncoder(Discriminator_DirectRecipient, directRecipientDataLen).
		u8(r.Bump).
		u8(uint8(r.Status)).
		pad(6).
		key(r.Distribution).
		key(r.Recipient).
		key(r.Payer).
		u64(r.TotalAmount).
		u64(r.ClaimedAmount).
		raw(sb).
		pad(scheduleSlotLen - len(sb)).
		bytes()
}

func ParseDirectRecipient(data []byte) (*DirectRecipient, error) {
	d, err := newDecoder(data, Discriminator_DirectRecipient, directRecipientDataLen)
	if err != nil {
		return nil, err
	}
	r := &DirectRecipient{}
	r.Bump = d.u8()
	if r.Status, err = revocation.ParseStatus(d.u8()); err != nil {
		return nil, err
	}
	d.skip(6)
	r.Distribution = d.key()
	r.Recipient = d.key()
	r.Payer = d.key()
	r.TotalAmount = d.u64()
	r.ClaimedAmount = d.u64()
	if d.err != nil {
		return nil, d.err
	}
	if r.Schedule, _, err = vesting.DecodeSchedule(d.rest()); err != nil {
		return nil, err
	}
	return r, nil
}

// MerkleDistribution commits to its recipients through a merkle root.
// Claim records are created lazily on a claimant's first valid proof.
type MerkleDistribution struct {
	Bump      uint8
	Revocable bool
	Closed    bool

	Authority  solana.PublicKey
	Mint       solana.PublicKey
	Seed       solana.PublicKey
	Vault      solana.PublicKey
	MerkleRoot [32]byte

	TotalAmount  uint64
	TotalClaimed uint64
	ClawbackTs   int64
	// VestingStartTs and VestingEndTs apply one linear window to every leaf.
	// When both are zero each leaf's own schedule is used.
	VestingStartTs int64
	VestingEndTs   int64
}

const merkleDistributionDataLen = 8 + 4*32 + 32 + 5*8

func (md *MerkleDistribution) Discriminator() Discriminator {
	return Discriminator_MerkleDistribution
}

// HasUniformWindow reports whether a distribution-wide vesting window is configured.
func (md *MerkleDistribution) HasUniformWindow() bool {
	return md.VestingStartTs != 0 || md.VestingEndTs != 0
}

// ScheduleFor returns the schedule that governs a leaf.
func (md *MerkleDistribution) ScheduleFor(leaf vesting.Schedule) vesting.Schedule {
	if md.HasUniformWindow() {
		return vesting.Linear(md.VestingStartTs, md.VestingEndTs)
	}
	return leaf
}

func (md *MerkleDistribution) Bytes() []byte {
	return newEncoder(Discriminator_MerkleDistribution, merkleDistributionDataLen).
		u8(md.Bump).
		boolean(md.Revocable).
		boolean(md.Closed).
		pad(5).
		key(md.Authority).
		key(md.Mint).
		key(md.Seed).
		key(md.Vault).
		raw(md.MerkleRoot[:]).
		u64(md.TotalAmount).
		u64(md.TotalClaimed).
		i64(md.ClawbackTs).
		i64(md.VestingStartTs).
		i64(md.VestingEndTs).
		bytes()
}

func ParseMerkleDistribution(data []byte) (*MerkleDistribution, error) {
	d, err := newDecoder(data, Discriminator_MerkleDistribution, merkleDistributionDataLen)
	if err != nil {
		return nil, err
	}
	md := &MerkleDistribution{}
	md.Bump = d.u8()
	md.Revocable = d.boolean()
	md.Closed = d.boolean()
	d.skip(5)
	md.Authority = d.key()
	md.Mint = d.key()
	md.Seed = d.key()
	md.Vault = d.key()
	md.MerkleRoot = d.hash()
	md.TotalAmount = d.u64()
	md.TotalClaimed = d.u64()
	md.ClawbackTs = d.i64()
	md.VestingStartTs = d.i64()
	md.VestingEndTs = d.i64()
	if d.err != nil {
		return nil, d.err
	}
	return md, nil
}

// MerkleClaim is the per-claimant record of a MerkleDistribution.
//
// LeafAmount is the allocation proven by the claimant. TotalAmount starts equal
// to it and only changes when the claim is revoked.
type MerkleClaim struct {
	Bump         uint8
	Distribution solana.PublicKey
	Claimant     solana.PublicKey
	LeafAmount   uint64

	claims.VestedAllocation
}

const merkleClaimDataLen = 8 + 2*32 + 3*8 + scheduleSlotLen

func (c *MerkleClaim) Discriminator() Discriminator {
	return Discriminator_MerkleClaim
}

func (c *MerkleClaim) Bytes() []byte {
	sb := c.Schedule.Bytes()
	return newEncoder(Discriminator_MerkleClaim, merkleClaimDataLen).
		u8(c.Bump).
		u8(uint8(c.Status)).
		pad(6).
		key(c.Distribution).
		key(c.Claimant).
		u64(c.LeafAmount).
		u64(c.TotalAmount).
		u64(c.ClaimedAmount).
		raw(sb).
		pad(scheduleSlotLen - len(sb)).
		bytes()
}

func ParseMerkleClaim(data []byte) (*MerkleClaim, error) {
	d, err := newDecoder(data, Discriminator_MerkleClaim, merkleClaimDataLen)
	if err != nil {
		return nil, err
	}
	c := &MerkleClaim{}
	c.Bump = d.u8()
	if c.Status, err = revocation.ParseStatus(d.u8()); err != nil {
		return nil, err
	}
	d.skip(6)
	c.Distribution = d.key()
	c.Claimant = d.key()
	c.LeafAmount = d.u64()
	c.TotalAmount = d.u64()
	c.ClaimedAmount = d.u64()
	if d.err != nil {
		return nil, d.err
	}
	if c.Schedule, _, err = vesting.DecodeSchedule(d.rest()); err != nil {
		return nil, err
	}
	return c, nil
}
