package state

import (
	"github.com/gagliardetto/solana-go"
)

// Revocation marks a user as revoked from a merkle distribution or reward pool.
// Its presence blocks any further claim or opt in for that user.
type Revocation struct {
	Bump   uint8
	Mode   uint8
	Parent solana.PublicKey
	User   solana.PublicKey
}

const revocationDataLen = 8 + 2*32

func (r *Revocation) Discriminator() Discriminator {
	return Discriminator_Revocation
}

func (r *Revocation) Bytes() []byte {
	return newEncoder(Discriminator_Revocation, revocationDataLen).
		u8(r.Bump).
		u8(r.Mode).
		pad(6).
		key(r.Parent).
		key(r.User).
		bytes()
}

func ParseRevocation(data []byte) (*Revocation, error) {
	d, err := newDecoder(data, Discriminator_Revocation, revocationDataLen)
	if err != nil {
		return nil, err
	}
	r := &Revocation{}
	r.Bump = d.u8()
	r.Mode = d.u8()
	d.skip(6)
	r.Parent = d.key()
	r.User = d.key()
	if d.err != nil {
		return nil, d.err
	}
	return r, nil
}

// TokenAccount is a token balance held by an owner for a mint. Distribution
// vaults are token accounts owned by the distribution address.
type TokenAccount struct {
	Decimals uint8
	Owner    solana.PublicKey
	Mint     solana.PublicKey
	Amount   uint64
}

const tokenAccountDataLen = 8 + 2*32 + 8

func (t *TokenAccount) Discriminator() Discriminator {
	return Discriminator_TokenAccount
}

func (t *TokenAccount) Bytes() []byte {
	return newEncoder(Discriminator_TokenAccount, tokenAccountDataLen).
		u8(t.Decimals).
		pad(7).
		key(t.Owner).
		key(t.Mint).
		u64(t.Amount).
		bytes()
}

func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	d, err := newDecoder(data, Discriminator_TokenAccount, tokenAccountDataLen)
	if err != nil {
		return nil, err
	}
	t := &TokenAccount{}
	t.Decimals = d.u8()
	d.skip(7)
	t.Owner = d.key()
	t.Mint = d.key()
	t.Amount = d.u64()
	if d.err != nil {
		return nil, d.err
	}
	return t, nil
}
