// Package vesting computes how much of an allocation has unlocked at a point in time.
//
// Every function here is pure: the caller supplies "now" once per invocation,
// which keeps results deterministic and replayable.
package vesting

import (
	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
)

// Unlocked returns the linearly unlocked portion of total over [start, end).
//
// Parameters:
//   - total: the full allocation
//   - start: unix timestamp at which unlocking begins
//   - end: unix timestamp at which the allocation is fully unlocked
//   - now: evaluation time
//
// Returns:
//   - uint64: 0 at or before start, total at or after end, pro-rata in between
//
// A window with end <= start is treated as fully unlocked once reached.
func Unlocked(total uint64, start, end, now int64) uint64 {
	if now >= end {
		return total
	}
	if now <= start {
		return 0
	}
	// uint64 subtraction keeps the span exact even when the int64 difference would overflow.
	elapsed := uint64(now) - uint64(start)
	span := uint64(end) - uint64(start)

	// elapsed < span so the quotient always fits
	v, err := numbers.MulDiv(total, elapsed, span)
	if err != nil {
		return total
	}
	return v
}
