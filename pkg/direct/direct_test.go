package direct

import (
	"math"
	"testing"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/revocation"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T, revocable bool, amount uint64, schedule vesting.Schedule) (*state.DirectDistribution, *state.DirectRecipient) {
	dist, err := NewDistribution(&DistributionParams{
		Authority: solana.NewWallet().PublicKey(),
		Mint:      solana.NewWallet().PublicKey(),
		Revocable: revocable,
	})
	assert.Nil(t, err)

	r, err := AddRecipient(dist, solana.NewWallet().PublicKey(), &RecipientParams{
		Recipient: solana.NewWallet().PublicKey(),
		Payer:     solana.NewWallet().PublicKey(),
		Amount:    amount,
		Schedule:  schedule,
	})
	assert.Nil(t, err)
	return dist, r
}

func Test_AddRecipient(t *testing.T) {
	t.Run("Should track allocation and open recipients", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Linear(0, 100))
		assert.Equal(t, uint64(1000), dist.TotalAllocated)
		assert.Equal(t, uint64(1), dist.OpenRecipients)
		assert.Equal(t, revocation.Status_Active, r.Status)
	})
	t.Run("Should reject a zero amount", func(t *testing.T) {
		dist, _ := setup(t, false, 1, vesting.Immediate())
		_, err := AddRecipient(dist, solana.PublicKey{}, &RecipientParams{Amount: 0, Schedule: vesting.Immediate()})
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidAmount)
	})
	t.Run("Should reject an invalid schedule", func(t *testing.T) {
		dist, _ := setup(t, false, 1, vesting.Immediate())
		_, err := AddRecipient(dist, solana.PublicKey{}, &RecipientParams{Amount: 1, Schedule: vesting.Linear(100, 100)})
		assert.ErrorIs(t, err, ledgerErrors.ErrInvalidTimeWindow)
		assert.Equal(t, uint64(1), dist.TotalAllocated)
	})
	t.Run("Should fail when the allocation overflows", func(t *testing.T) {
		dist, _ := setup(t, false, math.MaxUint64, vesting.Immediate())
		_, err := AddRecipient(dist, solana.PublicKey{}, &RecipientParams{Amount: 1, Schedule: vesting.Immediate()})
		assert.ErrorIs(t, err, ledgerErrors.ErrMathOverflow)
	})
	t.Run("Should check the authority and recipient", func(t *testing.T) {
		dist, r := setup(t, false, 1, vesting.Immediate())
		assert.Nil(t, CheckAuthority(dist, dist.Authority))
		assert.ErrorIs(t, CheckAuthority(dist, r.Recipient), ledgerErrors.ErrUnauthorizedAuthority)
		assert.Nil(t, CheckRecipient(r, r.Recipient))
		assert.ErrorIs(t, CheckRecipient(r, dist.Authority), ledgerErrors.ErrUnauthorizedRecipient)
	})
}

func Test_Claim(t *testing.T) {
	t.Run("Should claim what has vested", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Linear(0, 100))

		amount, err := Claim(dist, r, 0, 50)
		assert.Nil(t, err)
		assert.Equal(t, uint64(500), amount)
		assert.Equal(t, uint64(500), r.ClaimedAmount)
		assert.Equal(t, uint64(500), dist.TotalClaimed)

		_, err = Claim(dist, r, 0, 50)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)

		_, err = Claim(dist, r, 101, 60)
		assert.ErrorIs(t, err, ledgerErrors.ErrExceedsClaimableAmount)

		amount, err = Claim(dist, r, 100, 60)
		assert.Nil(t, err)
		assert.Equal(t, uint64(100), amount)
	})
	t.Run("Should claim nothing before the window starts", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Linear(10, 100))
		_, err := Claim(dist, r, 0, 10)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
	})
	t.Run("Should leave the recipient untouched when the totals overflow", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Immediate())
		dist.TotalClaimed = math.MaxUint64

		_, err := Claim(dist, r, 0, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrMathOverflow)
		assert.Equal(t, uint64(0), r.ClaimedAmount)
		assert.Equal(t, uint64(math.MaxUint64), dist.TotalClaimed)
	})
	t.Run("Should refuse claims on a closed distribution", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Immediate())
		dist.Closed = true
		_, err := Claim(dist, r, 0, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrDistributionClosed)
	})
}

func Test_Revoke(t *testing.T) {
	t.Run("Should cap the total at vested on a non-vested revoke", func(t *testing.T) {
		dist, r := setup(t, true, 1000, vesting.Linear(0, 100))
		_, err := Claim(dist, r, 100, 30)
		assert.Nil(t, err)

		res, err := Revoke(dist, r, revocation.RevokeMode_NonVested, 40)
		assert.Nil(t, err)
		assert.Equal(t, uint64(300), res.VestedUnclaimed)
		assert.Equal(t, uint64(600), res.Forfeited)
		assert.Equal(t, uint64(400), r.TotalAmount)
		assert.Equal(t, uint64(400), dist.TotalAllocated)
		assert.Equal(t, revocation.Status_PartiallyRevoked, r.Status)

		amount, err := Claim(dist, r, 0, 90)
		assert.Nil(t, err)
		assert.Equal(t, uint64(300), amount)

		assert.Nil(t, CloseRecipient(dist, r))
	})
	t.Run("Should stop all claims on a full revoke", func(t *testing.T) {
		dist, r := setup(t, true, 1000, vesting.Linear(0, 100))
		_, err := Claim(dist, r, 100, 30)
		assert.Nil(t, err)

		res, err := Revoke(dist, r, revocation.RevokeMode_Full, 40)
		assert.Nil(t, err)
		assert.Equal(t, uint64(900), res.Forfeited)
		assert.Equal(t, uint64(100), r.TotalAmount)

		_, err = Claim(dist, r, 0, 100)
		assert.ErrorIs(t, err, ledgerErrors.ErrNothingToClaim)
		assert.Nil(t, CloseRecipient(dist, r))
	})
	t.Run("Should reject a second revoke", func(t *testing.T) {
		dist, r := setup(t, true, 1000, vesting.Immediate())
		_, err := Revoke(dist, r, revocation.RevokeMode_NonVested, 0)
		assert.Nil(t, err)
		_, err = Revoke(dist, r, revocation.RevokeMode_Full, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrClaimantAlreadyRevoked)
	})
	t.Run("Should leave the recipient active when the allocation underflows", func(t *testing.T) {
		dist, r := setup(t, true, 1000, vesting.Linear(0, 100))
		dist.TotalAllocated = 10

		_, err := Revoke(dist, r, revocation.RevokeMode_Full, 50)
		assert.ErrorIs(t, err, ledgerErrors.ErrMathOverflow)
		assert.Equal(t, revocation.Status_Active, r.Status)
		assert.Equal(t, uint64(1000), r.TotalAmount)
		assert.Equal(t, uint64(10), dist.TotalAllocated)
	})
	t.Run("Should reject revoking a non revocable distribution", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Immediate())
		_, err := Revoke(dist, r, revocation.RevokeMode_Full, 0)
		assert.ErrorIs(t, err, ledgerErrors.ErrDistributionNotRevocable)
	})
}

func Test_Close(t *testing.T) {
	t.Run("Should close a fully claimed recipient", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Immediate())
		_, err := Claim(dist, r, 0, 0)
		assert.Nil(t, err)
		assert.Nil(t, CloseRecipient(dist, r))
		assert.Equal(t, uint64(0), dist.OpenRecipients)
		assert.Nil(t, CloseDistribution(dist, 0))
	})
	t.Run("Should refuse to close a recipient one unit short", func(t *testing.T) {
		dist, r := setup(t, false, 1000, vesting.Immediate())
		_, err := Claim(dist, r, 999, 0)
		assert.Nil(t, err)
		assert.ErrorIs(t, CloseRecipient(dist, r), ledgerErrors.ErrClaimNotFullyVested)
		assert.Equal(t, uint64(1), dist.OpenRecipients)
	})
	t.Run("Should require clawback while recipients remain", func(t *testing.T) {
		dist, _ := setup(t, false, 1000, vesting.Immediate())
		assert.ErrorIs(t, CloseDistribution(dist, 0), ledgerErrors.ErrDistributionHasOpenRecipients)

		dist.ClawbackTs = 500
		assert.ErrorIs(t, CloseDistribution(dist, 499), ledgerErrors.ErrClawbackNotReached)
		assert.Nil(t, CloseDistribution(dist, 500))
		assert.ErrorIs(t, CloseDistribution(dist, 500), ledgerErrors.ErrDistributionClosed)
	})
}
