package ledger

import (
	"fmt"

	"github.com/Layr-Labs/rewards-ledger/pkg/addresses"
	"github.com/Layr-Labs/rewards-ledger/pkg/ledgerErrors"
	"github.com/Layr-Labs/rewards-ledger/pkg/metrics/metricsTypes"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/Layr-Labs/rewards-ledger/pkg/tokenMover"
	"github.com/gagliardetto/solana-go"
)

func load[T any](tx storage.Tx, address solana.PublicKey, parse func([]byte) (T, error)) (T, error) {
	record, found, err := loadOptional(tx, address, parse)
	if err != nil {
		return record, err
	}
	if !found {
		return record, fmt.Errorf("account %s: %w", address, ledgerErrors.ErrAccountNotFound)
	}
	return record, nil
}

func loadOptional[T any](tx storage.Tx, address solana.PublicKey, parse func([]byte) (T, error)) (T, bool, error) {
	var zero T
	data, err := tx.Get(address)
	if err != nil {
		if storage.IsNotFound(err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	record, err := parse(data)
	if err != nil {
		return zero, false, fmt.Errorf("account %s: %w", address, err)
	}
	return record, true, nil
}

func (inv *invocation) put(address solana.PublicKey, record state.Account) error {
	return inv.tx.Put(address, record.Bytes())
}

func (inv *invocation) remove(address solana.PublicKey) error {
	return inv.tx.Delete(address)
}

// requireAbsent fails when a record already exists at address.
func (inv *invocation) requireAbsent(address solana.PublicKey) error {
	_, err := inv.tx.Get(address)
	if err == nil {
		return fmt.Errorf("account %s: %w", address, ledgerErrors.ErrAccountAlreadyExists)
	}
	if storage.IsNotFound(err) {
		return nil
	}
	return err
}

// openVault creates the token account owned by a distribution. The vault
// takes its decimals from the authority's token account for the same mint.
func (inv *invocation) openVault(owner, authority, mint solana.PublicKey) (solana.PublicKey, error) {
	authorityAccount, err := addresses.TokenAccount(authority, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	funding, err := tokenMover.LoadAccount(inv.tx, authorityAccount.Address)
	if err != nil {
		return solana.PublicKey{}, err
	}
	vault, err := addresses.Vault(owner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if _, err := tokenMover.OpenAccount(inv.tx, vault.Address, owner, mint, funding.Decimals); err != nil {
		return solana.PublicKey{}, err
	}
	return vault.Address, nil
}

// transfer moves amount between token accounts using the source's decimals.
func (l *Ledger) transfer(inv *invocation, from, to solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return nil
	}
	source, err := tokenMover.LoadAccount(inv.tx, from)
	if err != nil {
		return err
	}
	return l.mover.Transfer(inv.ctx, inv.tx, from, to, amount, source.Decimals)
}

// payOut transfers amount from a vault to owner's token account for mint.
func (l *Ledger) payOut(inv *invocation, vault, owner, mint solana.PublicKey, amount uint64) error {
	account, err := addresses.TokenAccount(owner, mint)
	if err != nil {
		return err
	}
	return l.transfer(inv, vault, account.Address, amount)
}

// fund transfers amount from owner's token account for mint into a vault.
func (l *Ledger) fund(inv *invocation, owner, mint, vault solana.PublicKey, amount uint64) error {
	account, err := addresses.TokenAccount(owner, mint)
	if err != nil {
		return err
	}
	return l.transfer(inv, account.Address, vault, amount)
}

// sweep empties a vault into the authority's token account and returns the amount moved.
func (l *Ledger) sweep(inv *invocation, vault, authority, mint solana.PublicKey, kind string) (uint64, error) {
	account, err := tokenMover.LoadAccount(inv.tx, vault)
	if err != nil {
		return 0, err
	}
	if err := l.payOut(inv, vault, authority, mint, account.Amount); err != nil {
		return 0, err
	}
	inv.count(metricsTypes.Metric_Incr_TokensSwept, account.Amount, metricsTypes.MetricsLabel{Name: "kind", Value: kind})
	return account.Amount, nil
}
