package ledgerErrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_LedgerErrors(t *testing.T) {
	t.Run("Should match wrapped errors with errors.Is", func(t *testing.T) {
		err := fmt.Errorf("claim direct recipient: %w", ErrNothingToClaim)
		assert.True(t, errors.Is(err, ErrNothingToClaim))
		assert.False(t, errors.Is(err, ErrMathOverflow))
	})
	t.Run("Should extract the code from a wrapped error", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrInvalidMerkleProof))
		code, ok := CodeOf(err)
		assert.True(t, ok)
		assert.Equal(t, uint32(18), code)
	})
	t.Run("Should not find a code for plain errors", func(t *testing.T) {
		_, ok := CodeOf(errors.New("boom"))
		assert.False(t, ok)
		assert.False(t, IsLedgerError(errors.New("boom")))
	})
	t.Run("Should look up errors by code", func(t *testing.T) {
		e, ok := FromCode(9)
		assert.True(t, ok)
		assert.Equal(t, ErrMathOverflow, e)

		_, ok = FromCode(9999)
		assert.False(t, ok)
	})
	t.Run("Should report the kind of a wrapped error", func(t *testing.T) {
		assert.Equal(t, "UserRevoked", KindOf(fmt.Errorf("pool: %w", ErrUserRevoked)))
		assert.Equal(t, "", KindOf(errors.New("boom")))
	})
	t.Run("Should keep codes unique", func(t *testing.T) {
		all := []*LedgerError{
			ErrInvalidAmount, ErrInvalidTimeWindow, ErrMathOverflow, ErrNothingToClaim,
			ErrExceedsClaimableAmount, ErrInvalidMerkleProof, ErrClaimNotFullyVested,
			ErrClaimedAmountDecreased, ErrClaimantAlreadyRevoked, ErrInvalidRevokeMode,
			ErrClawbackNotReached, ErrInsufficientOptedInSupply, ErrDistributionAmountTooSmall,
			ErrBalanceSourceMismatch,
		}
		seen := map[uint32]bool{}
		for _, e := range all {
			assert.False(t, seen[e.Code], e.Kind)
			seen[e.Code] = true
		}
	})
}
