// Package scenario drives a ledger through a scripted list of operations read
// from YAML. Accounts are referred to by name; a name that is not a base58
// address is mapped to a stable address derived from it.
package scenario

import (
	"fmt"
	"io"
	"strings"

	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

type Scenario struct {
	// StartTs is the unix timestamp the ledger clock starts at.
	StartTs int64 `yaml:"startTs"`
	// Decimals of every token account opened by the scenario.
	Decimals uint8   `yaml:"decimals"`
	Steps    []*Step `yaml:"steps"`
}

// ScheduleSpec describes a vesting schedule with timestamps given as seconds after StartTs.
type ScheduleSpec struct {
	Type  string `yaml:"type"`
	Start int64  `yaml:"start,omitempty"`
	Cliff int64  `yaml:"cliff,omitempty"`
	End   int64  `yaml:"end,omitempty"`
}

type LeafSpec struct {
	Claimant string        `yaml:"claimant"`
	Amount   uint64        `yaml:"amount"`
	Schedule *ScheduleSpec `yaml:"schedule,omitempty"`
}

// Step is one ledger operation. ClawbackAfter is the clawback delay in seconds
// after StartTs; zero disables clawback.
type Step struct {
	Op            string        `yaml:"op"`
	Name          string        `yaml:"name,omitempty"`
	Signer        string        `yaml:"signer,omitempty"`
	Target        string        `yaml:"target,omitempty"`
	User          string        `yaml:"user,omitempty"`
	Owner         string        `yaml:"owner,omitempty"`
	Mint          string        `yaml:"mint,omitempty"`
	TrackedMint   string        `yaml:"trackedMint,omitempty"`
	Amount        uint64        `yaml:"amount,omitempty"`
	Seconds       int64         `yaml:"seconds,omitempty"`
	Mode          string        `yaml:"mode,omitempty"`
	BalanceSource string        `yaml:"balanceSource,omitempty"`
	Revocable     bool          `yaml:"revocable,omitempty"`
	ClawbackAfter int64         `yaml:"clawbackAfter,omitempty"`
	Schedule      *ScheduleSpec `yaml:"schedule,omitempty"`
	Leaves        []*LeafSpec   `yaml:"leaves,omitempty"`
	ExpectError   string        `yaml:"expectError,omitempty"`
	ExpectAmount  *uint64       `yaml:"expectAmount,omitempty"`
}

// Load decodes a scenario, rejecting unknown fields.
func Load(r io.Reader) (*Scenario, error) {
	s := &Scenario{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("scenario has no steps")
	}
	return s, nil
}

// AddressFor resolves a scenario name to an address.
func AddressFor(name string) solana.PublicKey {
	if pk, err := solana.PublicKeyFromBase58(name); err == nil {
		return pk
	}
	return solana.PublicKeyFromBytes(crypto.Keccak256([]byte("scenario:" + name)))
}

func (s *ScheduleSpec) resolve(startTs int64) (vesting.Schedule, error) {
	if s == nil {
		return vesting.Immediate(), nil
	}
	scheduleType, err := vesting.ParseScheduleType(s.Type)
	if err != nil {
		return vesting.Schedule{}, err
	}
	switch scheduleType {
	case vesting.ScheduleType_Linear:
		return vesting.Linear(startTs+s.Start, startTs+s.End), nil
	case vesting.ScheduleType_Cliff:
		return vesting.Cliff(startTs + s.Cliff), nil
	case vesting.ScheduleType_CliffLinear:
		return vesting.CliffLinear(startTs+s.Start, startTs+s.Cliff, startTs+s.End), nil
	default:
		return vesting.Immediate(), nil
	}
}

func parseMode(mode string) (revocation.RevokeMode, error) {
	if mode == "" {
		return revocation.RevokeMode_NonVested, nil
	}
	return revocation.ParseRevokeModeName(strings.ToLower(mode))
}

func parseBalanceSource(name string) (state.BalanceSource, error) {
	switch strings.ToLower(name) {
	case "", "on_chain", "onchain":
		return state.BalanceSource_OnChain, nil
	case "authority_set", "authorityset":
		return state.BalanceSource_AuthoritySet, nil
	default:
		return 0, fmt.Errorf("unknown balance source '%s'", name)
	}
}
