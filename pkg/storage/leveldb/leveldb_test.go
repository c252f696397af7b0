package leveldb

import (
	"context"
	"testing"

	"github.com/Layr-Labs/rewards-ledger/pkg/logger"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func setup(t *testing.T) *LevelDBStore {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	assert.Nil(t, err)

	s, err := NewLevelDBStore("", l)
	assert.Nil(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_LevelDBStore(t *testing.T) {
	ctx := context.Background()
	address := solana.NewWallet().PublicKey()

	t.Run("Should report missing records", func(t *testing.T) {
		s := setup(t)
		tx, err := s.Begin(ctx)
		assert.Nil(t, err)
		defer tx.Discard()

		_, err = tx.Get(address)
		assert.True(t, storage.IsNotFound(err))
	})
	t.Run("Should persist committed writes", func(t *testing.T) {
		s := setup(t)
		tx, err := s.Begin(ctx)
		assert.Nil(t, err)
		assert.Nil(t, tx.Put(address, []byte{1, 2, 3}))

		data, err := tx.Get(address)
		assert.Nil(t, err)
		assert.Equal(t, []byte{1, 2, 3}, data)
		assert.Nil(t, tx.Commit())
		tx.Discard()

		tx, err = s.Begin(ctx)
		assert.Nil(t, err)
		defer tx.Discard()
		data, err = tx.Get(address)
		assert.Nil(t, err)
		assert.Equal(t, []byte{1, 2, 3}, data)
	})
	t.Run("Should drop discarded writes", func(t *testing.T) {
		s := setup(t)
		tx, err := s.Begin(ctx)
		assert.Nil(t, err)
		assert.Nil(t, tx.Put(address, []byte{9}))
		tx.Discard()

		tx, err = s.Begin(ctx)
		assert.Nil(t, err)
		defer tx.Discard()
		_, err = tx.Get(address)
		assert.True(t, storage.IsNotFound(err))
	})
	t.Run("Should delete records", func(t *testing.T) {
		s := setup(t)
		tx, err := s.Begin(ctx)
		assert.Nil(t, err)
		assert.Nil(t, tx.Put(address, []byte{1}))
		assert.Nil(t, tx.Delete(address))
		assert.Nil(t, tx.Commit())

		tx, err = s.Begin(ctx)
		assert.Nil(t, err)
		defer tx.Discard()
		_, err = tx.Get(address)
		assert.True(t, storage.IsNotFound(err))
	})
	t.Run("Should refuse a cancelled context", func(t *testing.T) {
		s := setup(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Begin(cctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
