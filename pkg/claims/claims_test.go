package claims

import (
	"testing"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/stretchr/testify/assert"
)

func newLinearAllocation(total uint64) *VestedAllocation {
	return &VestedAllocation{
		TotalAmount: total,
		Schedule:    vesting.Linear(0, 100),
		Status:      revocation.Status_Active,
	}
}

func Test_ResolveClaimAmount(t *testing.T) {
	t.Run("Should claim everything for a zero request", func(t *testing.T) {
		v, err := ResolveClaimAmount(0, 40)
		assert.Nil(t, err)
		assert.Equal(t, uint64(40), v)
	})
	t.Run("Should claim a partial amount", func(t *testing.T) {
		v, err := ResolveClaimAmount(10, 40)
		assert.Nil(t, err)
		assert.Equal(t, uint64(10), v)
	})
	t.Run("Should fail when nothing is claimable", func(t *testing.T) {
		_, err := ResolveClaimAmount(0, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
	})
	t.Run("Should fail when the request exceeds what is claimable", func(t *testing.T) {
		_, err := ResolveClaimAmount(41, 40)
		assert.ErrorIs(t, err, ledgerErrors.ErrExceedsClaimableAmount)
	})
}

func Test_ClaimTracker(t *testing.T) {
	t.Run("Should refuse to decrease the claimed amount", func(t *testing.T) {
		tr := &ClaimTracker{ClaimedAmount: 10}
		assert.ErrorIs(t, tr.SetClaimed(9), ledgerErrors.ErrClaimedAmountDecreased)
		assert.Equal(t, uint64(10), tr.ClaimedAmount)
	})
	t.Run("Should underflow-check claimable amounts", func(t *testing.T) {
		tr := ClaimTracker{ClaimedAmount: 10}
		_, err := tr.ClaimableFrom(5)
		assert.ErrorIs(t, err, ledgerErrors.ErrMathOverflow)
	})
}

func Test_VestedAllocation(t *testing.T) {
	t.Run("Should claim the vested amount and then nothing", func(t *testing.T) {
		a := newLinearAllocation(1000)
		amount, err := Claim(a, 0, 25)
		assert.Nil(t, err)
		assert.Equal(t, uint64(250), amount)
		assert.Equal(t, uint64(250), a.ClaimedAmount)

		_, err = Claim(a, 0, 25)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
	})
	t.Run("Should keep claimed non-decreasing across a claim sequence", func(t *testing.T) {
		a := newLinearAllocation(1000)
		prev := uint64(0)
		for now := int64(0); now <= 120; now += 7 {
			_, _ = Claim(a, 0, now)
			assert.True(t, a.ClaimedAmount >= prev)
			assert.True(t, a.ClaimedAmount <= a.TotalAmount)
			prev = a.ClaimedAmount
		}
		assert.Equal(t, uint64(1000), a.ClaimedAmount)
		assert.Nil(t, a.CheckClosable())
	})
	t.Run("Should allow claims up to the cap after a non-vested revoke", func(t *testing.T) {
		a := newLinearAllocation(1000)
		_, err := Claim(a, 100, 40)
		assert.Nil(t, err)

		res, err := a.Revoke(revocation.RevokeMode_NonVested, 40)
		assert.Nil(t, err)
		assert.Equal(t, uint64(300), res.VestedUnclaimed)
		assert.Equal(t, uint64(600), res.Forfeited)
		assert.Equal(t, uint64(400), a.TotalAmount)
		assert.Equal(t, revocation.Status_PartiallyRevoked, a.Status)

		amount, err := Claim(a, 0, 90)
		assert.Nil(t, err)
		assert.Equal(t, uint64(300), amount)
		assert.Equal(t, uint64(400), a.ClaimedAmount)

		_, err = Claim(a, 0, 1000)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
		assert.Nil(t, a.CheckClosable())
	})
	t.Run("Should forbid any claim after a full revoke", func(t *testing.T) {
		a := newLinearAllocation(1000)
		_, err := Claim(a, 0, 10)
		assert.Nil(t, err)

		res, err := a.Revoke(revocation.RevokeMode_Full, 50)
		assert.Nil(t, err)
		assert.Equal(t, uint64(400), res.VestedUnclaimed)
		assert.Equal(t, uint64(900), res.Forfeited)
		assert.Equal(t, uint64(100), a.TotalAmount)

		_, err = Claim(a, 0, 100)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
		assert.Nil(t, a.CheckClosable())
	})
	t.Run("Should refuse to revoke twice", func(t *testing.T) {
		a := newLinearAllocation(1000)
		_, err := a.Revoke(revocation.RevokeMode_NonVested, 10)
		assert.Nil(t, err)
		_, err = a.Revoke(revocation.RevokeMode_Full, 20)
		assert.ErrorIs(t, err, ledgerErrors.ErrClaimantAlreadyRevoked)
	})
	t.Run("Should not be closable until fully claimed", func(t *testing.T) {
		a := newLinearAllocation(1000)
		a.ClaimedAmount = 999
		assert.ErrorIs(t, a.CheckClosable(), ledgerErrors.ErrClaimNotFullyVested)
		a.ClaimedAmount = 1000
		assert.Nil(t, a.CheckClosable())
	})
	t.Run("Should not mark more than the total as claimed", func(t *testing.T) {
		a := newLinearAllocation(10)
		assert.ErrorIs(t, a.MarkClaimed(11), ledgerErrors.ErrExceedsClaimableAmount)
	})
}
