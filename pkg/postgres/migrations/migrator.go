package migrations

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	_202610180000_accounts "github.com/Layr-Labs/rewards-ledger/pkg/postgres/migrations/202610180000_accounts"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Migration interface {
	Up(db *sql.DB, grm *gorm.DB, cfg *config.Config) error
	GetName() string
}

// AppliedMigration records a migration that has already run.
type AppliedMigration struct {
	Name      string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (AppliedMigration) TableName() string {
	return "migrations"
}

type Migrator struct {
	Db           *sql.DB
	GDb          *gorm.DB
	Logger       *zap.Logger
	globalConfig *config.Config
}

func NewMigrator(db *sql.DB, gDb *gorm.DB, l *zap.Logger, cfg *config.Config) *Migrator {
	return &Migrator{
		Db:           db,
		GDb:          gDb,
		Logger:       l,
		globalConfig: cfg,
	}
}

// Migrations lists every migration in the order it must be applied.
func Migrations() []Migration {
	return []Migration{
		&_202610180000_accounts.Migration{},
	}
}

func (m *Migrator) MigrateAll() error {
	if err := m.GDb.AutoMigrate(&AppliedMigration{}); err != nil {
		return errors.Wrap(err, "failed to create migrations table")
	}
	for _, migration := range Migrations() {
		if err := m.Migrate(migration); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) Migrate(migration Migration) error {
	name := migration.GetName()

	var existing AppliedMigration
	res := m.GDb.Where("name = ?", name).Limit(1).Find(&existing)
	if res.Error != nil {
		return errors.Wrapf(res.Error, "failed to look up migration %s", name)
	}
	if res.RowsAffected > 0 {
		m.Logger.Sugar().Debugw("Migration already applied", zap.String("name", name))
		return nil
	}

	if err := migration.Up(m.Db, m.GDb, m.globalConfig); err != nil {
		m.Logger.Sugar().Errorw("Failed to run migration", zap.String("name", name), zap.Error(err))
		return fmt.Errorf("failed to run migration %s: %w", name, err)
	}
	if err := m.GDb.Create(&AppliedMigration{Name: name, CreatedAt: time.Now()}).Error; err != nil {
		return errors.Wrapf(err, "failed to record migration %s", name)
	}
	m.Logger.Sugar().Infow("Applied migration", zap.String("name", name))
	return nil
}
