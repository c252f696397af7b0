package vesting

import (
	"math"
	"testing"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/stretchr/testify/assert"
)

func Test_Unlocked(t *testing.T) {
	t.Run("Should unlock a quarter at 25 percent of the window", func(t *testing.T) {
		assert.Equal(t, uint64(250), Unlocked(1000, 0, 100, 25))
	})
	t.Run("Should unlock everything after the window", func(t *testing.T) {
		assert.Equal(t, uint64(1000), Unlocked(1000, 0, 100, 150))
	})
	t.Run("Should unlock nothing at start and everything at end", func(t *testing.T) {
		assert.Equal(t, uint64(0), Unlocked(1000, 100, 200, 100))
		assert.Equal(t, uint64(0), Unlocked(1000, 100, 200, 50))
		assert.Equal(t, uint64(1000), Unlocked(1000, 100, 200, 200))
	})
	t.Run("Should not overflow for totals near uint64 max", func(t *testing.T) {
		v := Unlocked(math.MaxUint64, 0, 4, 2)
		assert.Equal(t, uint64(math.MaxUint64/2), v)
	})
	t.Run("Should treat a degenerate window as fully unlocked once reached", func(t *testing.T) {
		assert.Equal(t, uint64(1000), Unlocked(1000, 100, 100, 100))
		assert.Equal(t, uint64(0), Unlocked(1000, 100, 100, 99))
	})
	t.Run("Should handle extreme timestamps", func(t *testing.T) {
		v := Unlocked(1000, math.MinInt64, math.MaxInt64, 0)
		assert.True(t, v <= 1000)
		assert.Equal(t, uint64(500), v)
	})
	t.Run("Should be non-decreasing in now and never exceed total", func(t *testing.T) {
		windows := [][2]int64{{0, 100}, {10, 11}, {-50, 50}, {1_700_000_000, 1_800_000_000}}
		totals := []uint64{0, 1, 7, 1000, math.MaxUint64}
		for _, w := range windows {
			for _, total := range totals {
				prev := uint64(0)
				step := (w[1] - w[0]) / 37
				if step == 0 {
					step = 1
				}
				for now := w[0] - 2*step; now <= w[1]+2*step; now += step {
					v := Unlocked(total, w[0], w[1], now)
					assert.True(t, v >= prev)
					assert.True(t, v <= total)
					prev = v
				}
			}
		}
	})
}

func Test_Schedules(t *testing.T) {
	t.Run("Should always unlock immediate schedules", func(t *testing.T) {
		assert.Equal(t, uint64(1000), Immediate().Unlocked(1000, 0))
		assert.Equal(t, uint64(1000), Immediate().Unlocked(1000, -10))
	})
	t.Run("Should unlock linear schedules at the midpoint", func(t *testing.T) {
		assert.Equal(t, uint64(500), Linear(100, 200).Unlocked(1000, 150))
	})
	t.Run("Should unlock cliff schedules at the cliff", func(t *testing.T) {
		s := Cliff(100)
		assert.Equal(t, uint64(0), s.Unlocked(1000, 50))
		assert.Equal(t, uint64(1000), s.Unlocked(1000, 100))
	})
	t.Run("Should unlock cliff linear schedules from the cliff", func(t *testing.T) {
		s := CliffLinear(0, 100, 400)
		assert.Equal(t, uint64(0), s.Unlocked(1000, 50))
		assert.Equal(t, uint64(250), s.Unlocked(1000, 100))
		assert.Equal(t, uint64(1000), s.Unlocked(1000, 400))
	})
	t.Run("Should report when a schedule is fully vested", func(t *testing.T) {
		assert.Equal(t, int64(200), Linear(100, 200).FullyVestedAt())
		assert.Equal(t, int64(5), Cliff(5).FullyVestedAt())
		assert.Equal(t, int64(math.MinInt64), Immediate().FullyVestedAt())
	})
}

func Test_ScheduleValidation(t *testing.T) {
	t.Run("Should reject an inverted linear window", func(t *testing.T) {
		assert.ErrorIs(t, Linear(200, 100).Validate(), ledgerErrors.ErrInvalidTimeWindow)
		assert.ErrorIs(t, Linear(100, 100).Validate(), ledgerErrors.ErrInvalidTimeWindow)
	})
	t.Run("Should reject a non-positive cliff", func(t *testing.T) {
		assert.ErrorIs(t, Cliff(0).Validate(), ledgerErrors.ErrInvalidCliffTimestamp)
	})
	t.Run("Should reject a cliff outside the window", func(t *testing.T) {
		assert.ErrorIs(t, CliffLinear(100, 50, 200).Validate(), ledgerErrors.ErrInvalidCliffTimestamp)
		assert.ErrorIs(t, CliffLinear(100, 250, 200).Validate(), ledgerErrors.ErrInvalidCliffTimestamp)
	})
	t.Run("Should reject an unknown type", func(t *testing.T) {
		assert.ErrorIs(t, Schedule{Type: 9}.Validate(), ledgerErrors.ErrInvalidScheduleType)
	})
	t.Run("Should accept valid schedules", func(t *testing.T) {
		assert.Nil(t, Immediate().Validate())
		assert.Nil(t, Linear(0, 1).Validate())
		assert.Nil(t, Cliff(1).Validate())
		assert.Nil(t, CliffLinear(0, 0, 10).Validate())
	})
}

func Test_ScheduleEncoding(t *testing.T) {
	t.Run("Should encode each type with its expected length", func(t *testing.T) {
		assert.Equal(t, []byte{0}, Immediate().Bytes())
		assert.Len(t, Linear(1, 2).Bytes(), 17)
		assert.Len(t, Cliff(1).Bytes(), 9)
		assert.Len(t, CliffLinear(1, 2, 3).Bytes(), 25)
	})
	t.Run("Should write little-endian fields after the tag", func(t *testing.T) {
		b := Linear(1, 258).Bytes()
		assert.Equal(t, byte(1), b[0])
		assert.Equal(t, byte(1), b[1])
		assert.Equal(t, []byte{2, 1}, b[9:11])
	})
	t.Run("Should decode what it encodes", func(t *testing.T) {
		for _, s := range []Schedule{Immediate(), Linear(-5, 10), Cliff(99), CliffLinear(1, 2, 3)} {
			decoded, n, err := DecodeSchedule(append(s.Bytes(), 0xff))
			assert.Nil(t, err)
			assert.Equal(t, s, decoded)
			assert.Equal(t, s.EncodedLen(), n)
		}
	})
	t.Run("Should fail on truncated or unknown data", func(t *testing.T) {
		_, _, err := DecodeSchedule([]byte{1, 0, 0})
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccountData)
		_, _, err = DecodeSchedule([]byte{7})
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidScheduleType)
		_, _, err = DecodeSchedule(nil)
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAccountData)
	})
	t.Run("Should parse schedule names", func(t *testing.T) {
		st, err := ParseScheduleType("Cliff_Linear")
		assert.Nil(t, err)
		assert.Equal(t, ScheduleType_CliffLinear, st)
		_, err = ParseScheduleType("exponential")
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidScheduleType)
	})
}
