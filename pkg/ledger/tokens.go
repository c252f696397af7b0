package ledger

import (
	"context"

	"github.com/Layr-Labs/rewards-ledger/pkg/addresses"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/Layr-Labs/rewards-ledger/pkg/tokenMover"
	"github.com/gagliardetto/solana-go"
)

// OpenTokenAccount creates owner's token account for mint.
func (l *Ledger) OpenTokenAccount(ctx context.Context, owner, mint solana.PublicKey, decimals uint8) (*Receipt, error) {
	return l.invoke(ctx, "openTokenAccount", func(inv *invocation) error {
		account, err := addresses.TokenAccount(owner, mint)
		if err != nil {
			return err
		}
		if _, err := tokenMover.OpenAccount(inv.tx, account.Address, owner, mint, decimals); err != nil {
			return err
		}
		inv.receipt.Address = account.Address
		return nil
	})
}

// MintTokens credits amount to owner's token account for mint.
func (l *Ledger) MintTokens(ctx context.Context, owner, mint solana.PublicKey, amount uint64) (*Receipt, error) {
	return l.invoke(ctx, "mintTokens", func(inv *invocation) error {
		account, err := addresses.TokenAccount(owner, mint)
		if err != nil {
			return err
		}
		if err := tokenMover.MintTo(inv.tx, account.Address, amount); err != nil {
			return err
		}
		inv.receipt.Address = account.Address
		inv.receipt.Amount = amount
		return nil
	})
}

// TokenBalance returns the balance of owner's token account for mint.
func (l *Ledger) TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	account, err := addresses.TokenAccount(owner, mint)
	if err != nil {
		return 0, err
	}
	return l.AccountBalance(ctx, account.Address)
}

// AccountBalance returns the balance held by the token account at address.
func (l *Ledger) AccountBalance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	var balance uint64
	err := l.view(ctx, func(tx storage.Tx) error {
		account, err := tokenMover.LoadAccount(tx, address)
		if err != nil {
			return err
		}
		balance = account.Amount
		return nil
	})
	return balance, err
}

// getRecord reads and decodes the record at address.
func getRecord[T any](l *Ledger, ctx context.Context, address solana.PublicKey, parse func([]byte) (T, error)) (T, error) {
	var record T
	err := l.view(ctx, func(tx storage.Tx) error {
		var err error
		record, err = load(tx, address, parse)
		return err
	})
	return record, err
}

func (l *Ledger) GetRewardPool(ctx context.Context, address solana.PublicKey) (*state.RewardPool, error) {
	return getRecord(l, ctx, address, state.ParseRewardPool)
}

func (l *Ledger) GetUserRewardAccount(ctx context.Context, address solana.PublicKey) (*state.UserRewardAccount, error) {
	return getRecord(l, ctx, address, state.ParseUserRewardAccount)
}

func (l *Ledger) GetDirectDistribution(ctx context.Context, address solana.PublicKey) (*state.DirectDistribution, error) {
	return getRecord(l, ctx, address, state.ParseDirectDistribution)
}

func (l *Ledger) GetDirectRecipient(ctx context.Context, address solana.PublicKey) (*state.DirectRecipient, error) {
	return getRecord(l, ctx, address, state.ParseDirectRecipient)
}

func (l *Ledger) GetMerkleDistribution(ctx context.Context, address solana.PublicKey) (*state.MerkleDistribution, error) {
	return getRecord(l, ctx, address, state.ParseMerkleDistribution)
}

func (l *Ledger) GetMerkleClaim(ctx context.Context, address solana.PublicKey) (*state.MerkleClaim, error) {
	return getRecord(l, ctx, address, state.ParseMerkleClaim)
}

func (l *Ledger) GetRevocation(ctx context.Context, address solana.PublicKey) (*state.Revocation, error) {
	return getRecord(l, ctx, address, state.ParseRevocation)
}
