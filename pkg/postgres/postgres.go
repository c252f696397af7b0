// Package postgres opens PostgreSQL connections for the postgres record store.
package postgres

import (
	"database/sql"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/Layr-Labs/rewards-ledger/internal/tests"
	"github.com/Layr-Labs/rewards-ledger/pkg/postgres/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultSSLMode = "disable"

var validSSLModes = []string{
	"disable",
	"require",
	"verify-ca",
	"verify-full",
}

type PostgresConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	DbName   string
	// CreateDbIfNotExists creates DbName through the root "postgres" database before connecting.
	CreateDbIfNotExists bool
	SchemaName          string
	SSLMode             string
}

type Postgres struct {
	Db *sql.DB
}

func PostgresConfigFromDbConfig(dbCfg *config.DatabaseConfig) *PostgresConfig {
	return &PostgresConfig{
		Host:       dbCfg.Host,
		Port:       dbCfg.Port,
		Username:   dbCfg.User,
		Password:   dbCfg.Password,
		DbName:     dbCfg.DbName,
		SchemaName: dbCfg.SchemaName,
		SSLMode:    dbCfg.SSLMode,
	}
}

// getPostgresConnectionString builds a libpq key/value connection string.
//
// Parameters:
//   - cfg: PostgreSQL configuration
//
// Returns:
//   - string: Connection string
//   - error: an invalid ssl mode
func getPostgresConnectionString(cfg *PostgresConfig) (string, error) {
	sslMode := defaultSSLMode
	if cfg.SSLMode != "" {
		if !slices.Contains(validSSLModes, cfg.SSLMode) {
			return "", fmt.Errorf("invalid ssl mode: %s. Must be one of: %s", cfg.SSLMode, strings.Join(validSSLModes, ", "))
		}
		sslMode = cfg.SSLMode
	}

	parts := []string{fmt.Sprintf("host=%s", cfg.Host)}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}
	parts = append(parts,
		fmt.Sprintf("dbname=%s", cfg.DbName),
		fmt.Sprintf("port=%d", cfg.Port),
		fmt.Sprintf("sslmode=%s", sslMode),
		"TimeZone=UTC",
	)
	if cfg.SchemaName != "" {
		parts = append(parts, fmt.Sprintf("search_path=%s", cfg.SchemaName))
	}
	return strings.Join(parts, " "), nil
}

func getPostgresRootConnection(cfg *PostgresConfig) (*sql.DB, error) {
	root := *cfg
	root.DbName = "postgres"
	root.SchemaName = ""
	connStr, err := getPostgresConnectionString(&root)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection string: %w", err)
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error connecting to postgres database: %w", err)
	}
	return db, nil
}

func CreateDatabaseIfNotExists(cfg *PostgresConfig) error {
	db, err := getPostgresRootConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var exists bool
	if err := db.QueryRow(`SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1)`, cfg.DbName).Scan(&exists); err != nil {
		return fmt.Errorf("error checking if database exists: %w", err)
	}
	if !exists {
		if _, err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.DbName)); err != nil {
			return fmt.Errorf("error creating database: %w", err)
		}
	}
	return nil
}

func DeleteTestDatabase(cfg *PostgresConfig, dbName string) error {
	db, err := getPostgresRootConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE %s", dbName)); err != nil {
		return fmt.Errorf("error dropping database: %w", err)
	}
	return nil
}

func NewPostgres(cfg *PostgresConfig) (*Postgres, error) {
	if cfg.CreateDbIfNotExists {
		if err := CreateDatabaseIfNotExists(cfg); err != nil {
			return nil, fmt.Errorf("failed to create database if not exists: %w", err)
		}
	}
	connectString, err := getPostgresConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection string: %w", err)
	}
	db, err := sql.Open("postgres", connectString)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return &Postgres{Db: db}, nil
}

func NewGormFromPostgresConnection(pgDb *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: pgDb,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup gorm: %w", err)
	}
	return db, nil
}

// GetTestPostgresDatabase creates a uniquely named, migrated database for a test run.
func GetTestPostgresDatabase(cfg config.DatabaseConfig, gCfg *config.Config, l *zap.Logger) (string, *sql.DB, *gorm.DB, error) {
	testDbName, err := tests.GenerateTestDbName()
	if err != nil {
		return testDbName, nil, nil, err
	}
	cfg.DbName = testDbName

	pgConfig := PostgresConfigFromDbConfig(&cfg)
	pgConfig.CreateDbIfNotExists = true

	pg, err := NewPostgres(pgConfig)
	if err != nil {
		return testDbName, nil, nil, err
	}
	grm, err := NewGormFromPostgresConnection(pg.Db)
	if err != nil {
		return testDbName, nil, nil, err
	}

	migrator := migrations.NewMigrator(pg.Db, grm, l, gCfg)
	if err := migrator.MigrateAll(); err != nil {
		return testDbName, nil, nil, err
	}
	return testDbName, pg.Db, grm, nil
}

func TeardownTestDatabase(dbname string, cfg *config.Config, db *gorm.DB, l *zap.Logger) {
	rawDb, _ := db.DB()
	_ = rawDb.Close()

	pgConfig := PostgresConfigFromDbConfig(&cfg.DatabaseConfig)
	if err := DeleteTestDatabase(pgConfig, dbname); err != nil {
		l.Sugar().Errorw("Failed to delete test database", zap.Error(err))
	}
}

var duplicateKeyPattern = regexp.MustCompile(`duplicate key value violates unique constraint`)

func IsDuplicateKeyError(err error) bool {
	return duplicateKeyPattern.MatchString(err.Error())
}
