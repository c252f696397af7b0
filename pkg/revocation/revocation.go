// Package revocation implements the one-way revocation state machine shared by
// direct recipients, merkle claims and continuous pool users.
//
//	Active -> PartiallyRevoked (NonVested) -> Closed
//	Active -> Revoked (Full)               -> Closed
package revocation

import (
	"fmt"

	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
)

// RevokeMode selects what a recipient keeps when revoked.
type RevokeMode uint8

const (
	// RevokeMode_NonVested keeps everything unlocked so far and forfeits the rest.
	RevokeMode_NonVested RevokeMode = 0
	// RevokeMode_Full forfeits everything not yet claimed.
	RevokeMode_Full RevokeMode = 1
)

func (m RevokeMode) String() string {
	switch m {
	case RevokeMode_NonVested:
		return "non_vested"
	case RevokeMode_Full:
		return "full"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// ParseRevokeMode decodes a revoke mode byte.
func ParseRevokeMode(b byte) (RevokeMode, error) {
	switch RevokeMode(b) {
	case RevokeMode_NonVested, RevokeMode_Full:
		return RevokeMode(b), nil
	default:
		return 0, ledgerErrors.ErrInvalidRevokeMode
	}
}

// ParseRevokeModeName decodes a revoke mode from its string form.
func ParseRevokeModeName(name string) (RevokeMode, error) {
	switch name {
	case "non_vested", "non-vested", "nonvested":
		return RevokeMode_NonVested, nil
	case "full":
		return RevokeMode_Full, nil
	default:
		return 0, fmt.Errorf("%w: '%s'", ledgerErrors.ErrInvalidRevokeMode, name)
	}
}

// Status is the lifecycle position of a claimable record.
type Status uint8

const (
	Status_Active           Status = 0
	Status_PartiallyRevoked Status = 1
	Status_Revoked          Status = 2
	Status_Closed           Status = 3
)

func (s Status) String() string {
	switch s {
	case Status_Active:
		return "active"
	case Status_PartiallyRevoked:
		return "partially_revoked"
	case Status_Revoked:
		return "revoked"
	case Status_Closed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseStatus decodes a persisted status byte.
func ParseStatus(b byte) (Status, error) {
	if Status(b) > Status_Closed {
		return 0, ledgerErrors.ErrInvalidAccountData
	}
	return Status(b), nil
}

// IsRevoked reports whether either revoke mode has been applied.
func (s Status) IsRevoked() bool {
	return s == Status_PartiallyRevoked || s == Status_Revoked
}

// Revoke moves an active record into the state selected by mode.
func (s Status) Revoke(mode RevokeMode) (Status, error) {
	switch s {
	case Status_Active:
	case Status_Closed:
		return s, ledgerErrors.ErrAccountNotFound
	default:
		return s, ledgerErrors.ErrClaimantAlreadyRevoked
	}
	switch mode {
	case RevokeMode_NonVested:
		return Status_PartiallyRevoked, nil
	case RevokeMode_Full:
		return Status_Revoked, nil
	default:
		return s, ledgerErrors.ErrInvalidRevokeMode
	}
}

// CanClaim returns nil when a claim may be attempted from this state.
func (s Status) CanClaim() error {
	switch s {
	case Status_Active, Status_PartiallyRevoked:
		return nil
	case Status_Revoked:
		return ledgerErrors.ErrNothingToClaim
	default:
		return ledgerErrors.ErrAccountNotFound
	}
}

// Close moves the record to its terminal state.
func (s Status) Close() (Status, error) {
	if s == Status_Closed {
		return s, ledgerErrors.ErrAccountNotFound
	}
	return Status_Closed, nil
}

// CheckClawback fails while a configured clawback timestamp is still in the future.
// A zero timestamp disables the gate.
func CheckClawback(clawbackTs int64, now int64) error {
	if clawbackTs != 0 && now < clawbackTs {
		return ledgerErrors.ErrClawbackNotReached
	}
	return nil
}

// CheckDistributionClose enforces the close rule for a parent distribution.
//
// A distribution with no open dependent records may always close. With open
// records the authority may only sweep once clawbackTs has been reached, and
// not at all when clawback is disabled.
func CheckDistributionClose(openRecords uint64, clawbackTs int64, now int64) error {
	if openRecords == 0 {
		return nil
	}
	if clawbackTs == 0 {
		return ledgerErrors.ErrDistributionHasOpenRecipients
	}
	return CheckClawback(clawbackTs, now)
}
