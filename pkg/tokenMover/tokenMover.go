// Package tokenMover moves token balances between accounts held in the record
// store, inside the caller's store transaction.
package tokenMover

import (
	"context"
	"fmt"

	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

type TokenMover interface {
	// Transfer moves amount from one token account to another. decimals must
	// match both accounts.
	Transfer(ctx context.Context, tx storage.Tx, from, to solana.PublicKey, amount uint64, decimals uint8) error
}

type StoreTokenMover struct {
	logger *zap.Logger
}

var _ TokenMover = (*StoreTokenMover)(nil)

func NewStoreTokenMover(l *zap.Logger) *StoreTokenMover {
	return &StoreTokenMover{logger: l}
}

// LoadAccount reads the token account at address.
func LoadAccount(tx storage.Tx, address solana.PublicKey) (*state.TokenAccount, error) {
	data, err := tx.Get(address)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, fmt.Errorf("token account %s: %w", address, ledgerErrors.ErrAccountNotFound)
		}
		return nil, err
	}
	return state.ParseTokenAccount(data)
}

// OpenAccount creates an empty token account at address.
func OpenAccount(tx storage.Tx, address, owner, mint solana.PublicKey, decimals uint8) (*state.TokenAccount, error) {
	if _, err := tx.Get(address); err == nil {
		return nil, fmt.Errorf("token account %s: %w", address, ledgerErrors.ErrAccountAlreadyExists)
	} else if !storage.IsNotFound(err) {
		return nil, err
	}
	account := &state.TokenAccount{
		Decimals: decimals,
		Owner:    owner,
		Mint:     mint,
	}
	if err := tx.Put(address, account.Bytes()); err != nil {
		return nil, err
	}
	return account, nil
}

// MintTo credits amount to an existing account.
func MintTo(tx storage.Tx, address solana.PublicKey, amount uint64) error {
	account, err := LoadAccount(tx, address)
	if err != nil {
		return err
	}
	if account.Amount, err = numbers.CheckedAdd(account.Amount, amount); err != nil {
		return err
	}
	return tx.Put(address, account.Bytes())
}

func (m *StoreTokenMover) Transfer(ctx context.Context, tx storage.Tx, from, to solana.PublicKey, amount uint64, decimals uint8) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	source, err := LoadAccount(tx, from)
	if err != nil {
		return err
	}
	if from.Equals(to) {
		if source.Amount < amount {
			return ledgerErrors.ErrInsufficientFunds
		}
		return nil
	}
	dest, err := LoadAccount(tx, to)
	if err != nil {
		return err
	}
	if !source.Mint.Equals(dest.Mint) || source.Decimals != decimals || dest.Decimals != decimals {
		return fmt.Errorf("transfer %s -> %s: %w", from, to, ledgerErrors.ErrInvalidAccountData)
	}
	if source.Amount < amount {
		return fmt.Errorf("transfer %d from %s: %w", amount, from, ledgerErrors.ErrInsufficientFunds)
	}
	source.Amount -= amount
	if dest.Amount, err = numbers.CheckedAdd(dest.Amount, amount); err != nil {
		return err
	}

	if err := tx.Put(from, source.Bytes()); err != nil {
		return err
	}
	if err := tx.Put(to, dest.Bytes()); err != nil {
		return err
	}
	m.logger.Sugar().Debugw("Transferred tokens",
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Uint64("amount", amount),
	)
	return nil
}
