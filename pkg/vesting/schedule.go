package vesting

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
)

type ScheduleType uint8

const (
	ScheduleType_Immediate   ScheduleType = 0
	ScheduleType_Linear      ScheduleType = 1
	ScheduleType_Cliff       ScheduleType = 2
	ScheduleType_CliffLinear ScheduleType = 3
)

func (s ScheduleType) String() string {
	switch s {
	case ScheduleType_Immediate:
		return "immediate"
	case ScheduleType_Linear:
		return "linear"
	case ScheduleType_Cliff:
		return "cliff"
	case ScheduleType_CliffLinear:
		return "cliff_linear"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseScheduleType maps a schedule name to its type.
func ParseScheduleType(name string) (ScheduleType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "immediate":
		return ScheduleType_Immediate, nil
	case "linear":
		return ScheduleType_Linear, nil
	case "cliff":
		return ScheduleType_Cliff, nil
	case "cliff_linear", "cliff-linear", "clifflinear":
		return ScheduleType_CliffLinear, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ledgerErrors.ErrInvalidScheduleType, name)
	}
}

// Schedule describes when an allocation unlocks. Fields that do not apply to
// the schedule type are zero.
type Schedule struct {
	Type    ScheduleType
	StartTs int64
	CliffTs int64
	EndTs   int64
}

func Immediate() Schedule {
	return Schedule{Type: ScheduleType_Immediate}
}

func Linear(startTs, endTs int64) Schedule {
	return Schedule{Type: ScheduleType_Linear, StartTs: startTs, EndTs: endTs}
}

func Cliff(cliffTs int64) Schedule {
	return Schedule{Type: ScheduleType_Cliff, CliffTs: cliffTs}
}

func CliffLinear(startTs, cliffTs, endTs int64) Schedule {
	return Schedule{Type: ScheduleType_CliffLinear, StartTs: startTs, CliffTs: cliffTs, EndTs: endTs}
}

// Validate checks the schedule's time bounds.
func (s Schedule) Validate() error {
	switch s.Type {
	case ScheduleType_Immediate:
		return nil
	case ScheduleType_Linear:
		if s.EndTs <= s.StartTs {
			return ledgerErrors.ErrInvalidTimeWindow
		}
		return nil
	case ScheduleType_Cliff:
		if s.CliffTs <= 0 {
			return ledgerErrors.ErrInvalidCliffTimestamp
		}
		return nil
	case ScheduleType_CliffLinear:
		if s.EndTs <= s.StartTs {
			return ledgerErrors.ErrInvalidTimeWindow
		}
		if s.CliffTs < s.StartTs || s.CliffTs > s.EndTs {
			return ledgerErrors.ErrInvalidCliffTimestamp
		}
		return nil
	default:
		return ledgerErrors.ErrInvalidScheduleType
	}
}

// Unlocked returns how much of total has unlocked at now under this schedule.
func (s Schedule) Unlocked(total uint64, now int64) uint64 {
	switch s.Type {
	case ScheduleType_Linear:
		return Unlocked(total, s.StartTs, s.EndTs, now)
	case ScheduleType_Cliff:
		if now >= s.CliffTs {
			return total
		}
		return 0
	case ScheduleType_CliffLinear:
		if now < s.CliffTs {
			return 0
		}
		return Unlocked(total, s.StartTs, s.EndTs, now)
	default:
		return total
	}
}

// FullyVestedAt returns the first timestamp at which the whole allocation is unlocked.
func (s Schedule) FullyVestedAt() int64 {
	switch s.Type {
	case ScheduleType_Linear, ScheduleType_CliffLinear:
		return s.EndTs
	case ScheduleType_Cliff:
		return s.CliffTs
	default:
		return math.MinInt64
	}
}

// EncodedLen is the number of bytes Bytes will produce.
func (s Schedule) EncodedLen() int {
	switch s.Type {
	case ScheduleType_Linear:
		return 17
	case ScheduleType_Cliff:
		return 9
	case ScheduleType_CliffLinear:
		return 25
	default:
		return 1
	}
}

// Bytes encodes the schedule as a type tag followed by its little-endian i64 fields.
// The encoding is part of the merkle leaf preimage and the persisted recipient layout.
func (s Schedule) Bytes() []byte {
	out := make([]byte, 0, s.EncodedLen())
	out = append(out, byte(s.Type))
	switch s.Type {
	case ScheduleType_Linear:
		out = binary.LittleEndian.AppendUint64(out, uint64(s.StartTs))
		out = binary.LittleEndian.AppendUint64(out, uint64(s.EndTs))
	case ScheduleType_Cliff:
		out = binary.LittleEndian.AppendUint64(out, uint64(s.CliffTs))
	case ScheduleType_CliffLinear:
		out = binary.LittleEndian.AppendUint64(out, uint64(s.StartTs))
		out = binary.LittleEndian.AppendUint64(out, uint64(s.CliffTs))
		out = binary.LittleEndian.AppendUint64(out, uint64(s.EndTs))
	}
	return out
}

// DecodeSchedule reads a schedule from the front of data and returns the number of bytes consumed.
func DecodeSchedule(data []byte) (Schedule, int, error) {
	if len(data) < 1 {
		return Schedule{}, 0, ledgerErrors.ErrInvalidAccountData
	}
	s := Schedule{Type: ScheduleType(data[0])}
	if s.Type > ScheduleType_CliffLinear {
		return Schedule{}, 0, ledgerErrors.ErrInvalidScheduleType
	}
	n := s.EncodedLen()
	if len(data) < n {
		return Schedule{}, 0, ledgerErrors.ErrInvalidAccountData
	}
	readI64 := func(offset int) int64 {
		return int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
	}
	switch s.Type {
	case ScheduleType_Linear:
		s.StartTs = readI64(1)
		s.EndTs = readI64(9)
	case ScheduleType_Cliff:
		s.CliffTs = readI64(1)
	case ScheduleType_CliffLinear:
		s.StartTs = readI64(1)
		s.CliffTs = readI64(9)
		s.EndTs = readI64(17)
	}
	return s, n, nil
}
