// Package postgres stores ledger records in a PostgreSQL accounts table.
package postgres

import (
	"context"
	"time"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/Layr-Labs/rewards-ledger/pkg/state"
	"github.com/Layr-Labs/rewards-ledger/pkg/storage"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Account is a single record row, keyed by its base58 address.
type Account struct {
	Address       string `gorm:"primaryKey"`
	Discriminator uint8
	Data          []byte
	UpdatedAt     time.Time
}

func (Account) TableName() string {
	return "accounts"
}

type PostgresStore struct {
	Db           *gorm.DB
	Logger       *zap.Logger
	GlobalConfig *config.Config
}

var _ storage.Store = (*PostgresStore)(nil)

func NewPostgresStore(db *gorm.DB, l *zap.Logger, cfg *config.Config) *PostgresStore {
	return &PostgresStore{
		Db:           db,
		Logger:       l,
		GlobalConfig: cfg,
	}
}

func (s *PostgresStore) Begin(ctx context.Context) (storage.Tx, error) {
	tx := s.Db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, errors.Wrap(tx.Error, "failed to begin postgres transaction")
	}
	return &postgresTx{db: tx, logger: s.Logger}, nil
}

func (s *PostgresStore) Close() error {
	db, err := s.Db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

type postgresTx struct {
	db     *gorm.DB
	logger *zap.Logger
	done   bool
}

func (t *postgresTx) Get(address solana.PublicKey) ([]byte, error) {
	var account Account
	res := t.db.Model(&Account{}).Where("address = ?", address.String()).First(&account)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(storage.ErrNotFound, "account %s", address)
		}
		return nil, errors.Wrapf(res.Error, "failed to read account %s", address)
	}
	return account.Data, nil
}

func (t *postgresTx) Put(address solana.PublicKey, data []byte) error {
	disc, err := state.PeekDiscriminator(data)
	if err != nil {
		return err
	}
	account := &Account{
		Address:       address.String(),
		Discriminator: uint8(disc),
		Data:          data,
		UpdatedAt:     time.Now().UTC(),
	}
	res := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"discriminator", "data", "updated_at"}),
	}).Create(account)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to write account %s", address)
	}
	return nil
}

func (t *postgresTx) Delete(address solana.PublicKey) error {
	res := t.db.Where("address = ?", address.String()).Delete(&Account{})
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to delete account %s", address)
	}
	return nil
}

func (t *postgresTx) Commit() error {
	if err := t.db.Commit().Error; err != nil {
		return errors.Wrap(err, "failed to commit postgres transaction")
	}
	t.done = true
	return nil
}

func (t *postgresTx) Discard() {
	if t.done {
		return
	}
	if err := t.db.Rollback().Error; err != nil {
		t.logger.Sugar().Errorw("Failed to roll back postgres transaction", zap.Error(err))
	}
	t.done = true
}
