// Package events encodes the result logs emitted after a successful ledger
// mutation. Every payload starts with the 8-byte event tag followed by the
// event kind, then the event's fixed little-endian fields.
package events

import (
	"encoding/binary"
	"fmt"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// EventTag prefixes every encoded event.
const EventTag uint64 = 0x1d9acb512ea545e4

// HeaderLen is the tag plus the kind byte.
const HeaderLen = 8 + 1

type Kind uint8

const (
	Kind_Claimed             Kind = 0
	Kind_DistributionClosed  Kind = 1
	Kind_DistributionCreated Kind = 2
	Kind_RecipientAdded      Kind = 3
	Kind_ClaimClosed         Kind = 4
	Kind_RecipientRevoked    Kind = 5
	Kind_OptIn               Kind = 6
	Kind_OptOut              Kind = 7
	Kind_BalanceSynced       Kind = 8
	Kind_RewardDistributed   Kind = 9
)

var kindNames = map[Kind]string{
	Kind_Claimed:             "claimed",
	Kind_DistributionClosed:  "distributionClosed",
	Kind_DistributionCreated: "distributionCreated",
	Kind_RecipientAdded:      "recipientAdded",
	Kind_ClaimClosed:         "claimClosed",
	Kind_RecipientRevoked:    "recipientRevoked",
	Kind_OptIn:               "optIn",
	Kind_OptOut:              "optOut",
	Kind_BalanceSynced:       "balanceSynced",
	Kind_RewardDistributed:   "rewardDistributed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// Event is anything that can be emitted by the ledger.
type Event interface {
	Kind() Kind
	// Data returns the event's fields without the header.
	Data() []byte
}

// Encode returns the full payload for e, header included.
func Encode(e Event) []byte {
	data := e.Data()
	out := make([]byte, 0, HeaderLen+len(data))
	out = binary.LittleEndian.AppendUint64(out, EventTag)
	out = append(out, byte(e.Kind()))
	return append(out, data...)
}

// Decode splits an encoded payload into its kind and field bytes.
func Decode(payload []byte) (Kind, []byte, error) {
	if len(payload) < HeaderLen {
		return 0, nil, ledgerErrors.ErrInvalidAccountData
	}
	if binary.LittleEndian.Uint64(payload[:8]) != EventTag {
		return 0, nil, ledgerErrors.ErrInvalidAccountData
	}
	kind := Kind(payload[8])
	if _, ok := kindNames[kind]; !ok {
		return 0, nil, ledgerErrors.ErrInvalidAccountData
	}
	return kind, payload[HeaderLen:], nil
}

type fields []byte

func (f fields) key(k solana.PublicKey) fields {
	return append(f, k[:]...)
}

func (f fields) u8(v uint8) fields {
	return append(f, v)
}

func (f fields) u64(v uint64) fields {
	return binary.LittleEndian.AppendUint64(f, v)
}

func (f fields) i64(v int64) fields {
	return binary.LittleEndian.AppendUint64(f, uint64(v))
}

// u128 appends the low 128 bits of v.
func (f fields) u128(v *uint256.Int) fields {
	return binary.LittleEndian.AppendUint64(binary.LittleEndian.AppendUint64(f, v[0]), v[1])
}

type Claimed struct {
	Distribution solana.PublicKey
	Claimant     solana.PublicKey
	Amount       uint64
}

func (e *Claimed) Kind() Kind { return Kind_Claimed }

func (e *Claimed) Data() []byte {
	return fields(make([]byte, 0, 72)).key(e.Distribution).key(e.Claimant).u64(e.Amount)
}

type DistributionClosed struct {
	Distribution solana.PublicKey
}

func (e *DistributionClosed) Kind() Kind { return Kind_DistributionClosed }

func (e *DistributionClosed) Data() []byte {
	return fields(make([]byte, 0, 32)).key(e.Distribution)
}

// CreatedVariant selects which fields follow a DistributionCreated header.
type CreatedVariant uint8

const (
	CreatedVariant_Direct CreatedVariant = 0
	CreatedVariant_Merkle CreatedVariant = 1
	CreatedVariant_Pool   CreatedVariant = 2
)

// DistributionCreated is emitted for all three distribution kinds.
//
// Direct carries InitialFunding; Merkle carries MerkleRoot, TotalAmount and
// ClawbackTs; Pool carries the pool's ClawbackTs.
type DistributionCreated struct {
	Authority      solana.PublicKey
	Mint           solana.PublicKey
	Seed           solana.PublicKey
	Variant        CreatedVariant
	InitialFunding uint64
	MerkleRoot     gethcommon.Hash
	TotalAmount    uint64
	ClawbackTs     int64
}

func (e *DistributionCreated) Kind() Kind { return Kind_DistributionCreated }

func (e *DistributionCreated) Data() []byte {
	f := fields(make([]byte, 0, 96+1+48)).key(e.Authority).key(e.Mint).key(e.Seed).u8(uint8(e.Variant))
	switch e.Variant {
	case CreatedVariant_Direct:
		f = f.u64(e.InitialFunding)
	case CreatedVariant_Merkle:
		f = append(f, e.MerkleRoot[:]...)
		f = f.u64(e.TotalAmount).i64(e.ClawbackTs)
	case CreatedVariant_Pool:
		f = f.i64(e.ClawbackTs)
	}
	return f
}

type RecipientAdded struct {
	Distribution solana.PublicKey
	Recipient    solana.PublicKey
	Amount       uint64
	Schedule     vesting.Schedule
}

func (e *RecipientAdded) Kind() Kind { return Kind_RecipientAdded }

func (e *RecipientAdded) Data() []byte {
	return fields(make([]byte, 0, 89)).
		key(e.Distribution).
		key(e.Recipient).
		u64(e.Amount).
		u8(uint8(e.Schedule.Type)).
		i64(e.Schedule.StartTs).
		i64(e.Schedule.EndTs)
}

type ClaimClosed struct {
	Distribution solana.PublicKey
	Claimant     solana.PublicKey
}

func (e *ClaimClosed) Kind() Kind { return Kind_ClaimClosed }

func (e *ClaimClosed) Data() []byte {
	return fields(make([]byte, 0, 64)).key(e.Distribution).key(e.Claimant)
}

// RecipientRevoked is emitted for direct recipients, merkle claimants and pool users.
type RecipientRevoked struct {
	Distribution      solana.PublicKey
	Recipient         solana.PublicKey
	Mode              revocation.RevokeMode
	VestedTransferred uint64
	UnvestedReturned  uint64
}

func (e *RecipientRevoked) Kind() Kind { return Kind_RecipientRevoked }

func (e *RecipientRevoked) Data() []byte {
	return fields(make([]byte, 0, 81)).
		key(e.Distribution).
		key(e.Recipient).
		u8(uint8(e.Mode)).
		u64(e.VestedTransferred).
		u64(e.UnvestedReturned)
}

type OptIn struct {
	Pool    solana.PublicKey
	User    solana.PublicKey
	Balance uint64
}

func (e *OptIn) Kind() Kind { return Kind_OptIn }

func (e *OptIn) Data() []byte {
	return fields(make([]byte, 0, 72)).key(e.Pool).key(e.User).u64(e.Balance)
}

type OptOut struct {
	Pool           solana.PublicKey
	User           solana.PublicKey
	RewardsClaimed uint64
}

func (e *OptOut) Kind() Kind { return Kind_OptOut }

func (e *OptOut) Data() []byte {
	return fields(make([]byte, 0, 72)).key(e.Pool).key(e.User).u64(e.RewardsClaimed)
}

type BalanceSynced struct {
	Pool       solana.PublicKey
	User       solana.PublicKey
	OldBalance uint64
	NewBalance uint64
}

func (e *BalanceSynced) Kind() Kind { return Kind_BalanceSynced }

func (e *BalanceSynced) Data() []byte {
	return fields(make([]byte, 0, 80)).key(e.Pool).key(e.User).u64(e.OldBalance).u64(e.NewBalance)
}

type RewardDistributed struct {
	Pool          solana.PublicKey
	Amount        uint64
	RewardPerUnit *uint256.Int
}

func (e *RewardDistributed) Kind() Kind { return Kind_RewardDistributed }

func (e *RewardDistributed) Data() []byte {
	acc := e.RewardPerUnit
	if acc == nil {
		acc = uint256.NewInt(0)
	}
	return fields(make([]byte, 0, 56)).key(e.Pool).u64(e.Amount).u128(acc)
}
