// Package leveldb is a goleveldb backed record store.
package leveldb

import (
	"context"

	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	"go.uber.org/zap"
)

// accountPrefix namespaces account records within the database.
var accountPrefix = []byte("acct/")

type LevelDBStore struct {
	db     *leveldb.DB
	logger *zap.Logger
}

var _ storage.Store = (*LevelDBStore)(nil)

// NewLevelDBStore opens the database at path, or an in-memory database when path is empty.
func NewLevelDBStore(path string, l *zap.Logger) (*LevelDBStore, error) {
	var db *leveldb.DB
	var err error
	if path == "" {
		db, err = leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open leveldb")
	}
	l.Sugar().Debugw("Opened leveldb store", zap.String("path", path))
	return &LevelDBStore{db: db, logger: l}, nil
}

func accountKey(address solana.PublicKey) []byte {
	key := make([]byte, 0, len(accountPrefix)+solana.PublicKeyLength)
	key = append(key, accountPrefix...)
	return append(key, address[:]...)
}

// Begin opens a leveldb transaction. Only one transaction may be open at a
// time; Begin blocks until the previous one commits or is discarded.
func (s *LevelDBStore) Begin(ctx context.Context) (storage.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tr, err := s.db.OpenTransaction()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open leveldb transaction")
	}
	return &levelDBTx{tr: tr}, nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}

type levelDBTx struct {
	tr   *leveldb.Transaction
	done bool
}

func (t *levelDBTx) Get(address solana.PublicKey) ([]byte, error) {
	data, err := t.tr.Get(accountKey(address), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Wrapf(storage.ErrNotFound, "account %s", address)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read account %s", address)
	}
	return data, nil
}

func (t *levelDBTx) Put(address solana.PublicKey, data []byte) error {
	return errors.Wrapf(t.tr.Put(accountKey(address), data, nil), "failed to write account %s", address)
}

func (t *levelDBTx) Delete(address solana.PublicKey) error {
	return errors.Wrapf(t.tr.Delete(accountKey(address), nil), "failed to delete account %s", address)
}

func (t *levelDBTx) Commit() error {
	if err := t.tr.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit leveldb transaction")
	}
	t.done = true
	return nil
}

func (t *levelDBTx) Discard() {
	if t.done {
		return
	}
	t.tr.Discard()
	t.done = true
}
