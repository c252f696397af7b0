// Package storage defines the transactional record store the ledger persists
// its accounts in. Records are opaque byte slices keyed by account address.
package storage

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Tx.Get when no record exists at an address.
var ErrNotFound = errors.New("record not found")

// Tx is a single atomic unit of work. Reads observe the transaction's own writes.
// Nothing is visible to other transactions until Commit succeeds.
type Tx interface {
	Get(address solana.PublicKey) ([]byte, error)
	Put(address solana.PublicKey, data []byte) error
	Delete(address solana.PublicKey) error
	Commit() error
	// Discard abandons every write. It is safe to call after Commit.
	Discard()
}

type Store interface {
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
