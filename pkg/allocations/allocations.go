// Package allocations reads merkle distribution allocations from CSV and
// renders the resulting tree with a proof per claimant.
package allocations

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/addresses"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/gocarina/gocsv"
)

// Row is a single line of an allocations file.
type Row struct {
	Claimant     string `csv:"claimant"`
	Amount       string `csv:"amount"`
	ScheduleType string `csv:"schedule_type"`
	StartTs      string `csv:"start_ts"`
	CliffTs      string `csv:"cliff_ts"`
	EndTs        string `csv:"end_ts"`
}

func ReadRows(r io.Reader) ([]*Row, error) {
	rows := make([]*Row, 0)
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to read allocations: %w", err)
	}
	return rows, nil
}

func parseTimestamp(field string, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", field, value, err)
	}
	return ts, nil
}

// Schedule builds the row's vesting schedule and validates it.
func (r *Row) Schedule() (vesting.Schedule, error) {
	scheduleType, err := vesting.ParseScheduleType(r.ScheduleType)
	if err != nil {
		return vesting.Schedule{}, err
	}
	startTs, err := parseTimestamp("start_ts", r.StartTs)
	if err != nil {
		return vesting.Schedule{}, err
	}
	cliffTs, err := parseTimestamp("cliff_ts", r.CliffTs)
	if err != nil {
		return vesting.Schedule{}, err
	}
	endTs, err := parseTimestamp("end_ts", r.EndTs)
	if err != nil {
		return vesting.Schedule{}, err
	}

	var s vesting.Schedule
	switch scheduleType {
	case vesting.ScheduleType_Linear:
		s = vesting.Linear(startTs, endTs)
	case vesting.ScheduleType_Cliff:
		s = vesting.Cliff(cliffTs)
	case vesting.ScheduleType_CliffLinear:
		s = vesting.CliffLinear(startTs, cliffTs, endTs)
	default:
		s = vesting.Immediate()
	}
	if err := s.Validate(); err != nil {
		return vesting.Schedule{}, err
	}
	return s, nil
}

// Leaf converts the row into a claim leaf. Amounts are human readable and
// scaled by decimals.
func (r *Row) Leaf(decimals uint8) (proofs.Leaf, error) {
	claimant, err := addresses.Parse(strings.TrimSpace(r.Claimant))
	if err != nil {
		return proofs.Leaf{}, err
	}
	amount, err := numbers.ParseTokenAmount(strings.TrimSpace(r.Amount), decimals)
	if err != nil {
		return proofs.Leaf{}, fmt.Errorf("claimant %s: %w", r.Claimant, err)
	}
	if amount == 0 {
		return proofs.Leaf{}, fmt.Errorf("claimant %s has a zero allocation", r.Claimant)
	}
	schedule, err := r.Schedule()
	if err != nil {
		return proofs.Leaf{}, fmt.Errorf("claimant %s: %w", r.Claimant, err)
	}
	return proofs.Leaf{Claimant: claimant, Amount: amount, Schedule: schedule}, nil
}

// Leaves converts every row, calling progress after each one when set.
func Leaves(rows []*Row, decimals uint8, progress func()) ([]proofs.Leaf, error) {
	leaves := make([]proofs.Leaf, 0, len(rows))
	for i, row := range rows {
		leaf, err := row.Leaf(decimals)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		leaves = append(leaves, leaf)
		if progress != nil {
			progress()
		}
	}
	return leaves, nil
}

type ClaimOutput struct {
	Claimant string   `json:"claimant" yaml:"claimant"`
	Amount   string   `json:"amount" yaml:"amount"`
	Schedule string   `json:"schedule" yaml:"schedule"`
	StartTs  int64    `json:"startTs,omitempty" yaml:"startTs,omitempty"`
	CliffTs  int64    `json:"cliffTs,omitempty" yaml:"cliffTs,omitempty"`
	EndTs    int64    `json:"endTs,omitempty" yaml:"endTs,omitempty"`
	Leaf     string   `json:"leaf" yaml:"leaf"`
	Proof    []string `json:"proof" yaml:"proof"`
}

type TreeOutput struct {
	Root   string         `json:"root" yaml:"root"`
	Total  string         `json:"total" yaml:"total"`
	Claims []*ClaimOutput `json:"claims" yaml:"claims"`
}

// Render builds the printable form of tree with amounts formatted using decimals.
func Render(tree *proofs.ClaimTree, decimals uint8) (*TreeOutput, error) {
	total, err := tree.Total()
	if err != nil {
		return nil, err
	}
	out := &TreeOutput{
		Root:   tree.Root().Hex(),
		Total:  numbers.FormatTokenAmount(total, decimals),
		Claims: make([]*ClaimOutput, 0, len(tree.Leaves)),
	}
	for i, leaf := range tree.Leaves {
		proof, err := tree.ProofAt(i)
		if err != nil {
			return nil, err
		}
		hexProof := make([]string, 0, len(proof))
		for _, p := range proof {
			hexProof = append(hexProof, p.Hex())
		}
		out.Claims = append(out.Claims, &ClaimOutput{
			Claimant: leaf.Claimant.String(),
			Amount:   numbers.FormatTokenAmount(leaf.Amount, decimals),
			Schedule: leaf.Schedule.Type.String(),
			StartTs:  leaf.Schedule.StartTs,
			CliffTs:  leaf.Schedule.CliffTs,
			EndTs:    leaf.Schedule.EndTs,
			Leaf:     leaf.Hash().Hex(),
			Proof:    hexProof,
		})
	}
	return out, nil
}
