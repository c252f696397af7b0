package _202610180000_accounts

import (
	"database/sql"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB, cfg *config.Config) error {
	queries := []string{
		`create table if not exists accounts (
			address       varchar primary key,
			discriminator smallint not null,
			data          bytea not null,
			updated_at    timestamp(6) not null default now()
		)`,
		`create index if not exists idx_accounts_discriminator on accounts (discriminator)`,
	}
	for _, query := range queries {
		if res := grm.Exec(query); res.Error != nil {
			return errors.Wrap(res.Error, "failed to create accounts table")
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202610180000_accounts"
}
