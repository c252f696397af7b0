package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "REWARDS_LEDGER"

type StorageBackend string

const (
	StorageBackend_LevelDB  StorageBackend = "leveldb"
	StorageBackend_Postgres StorageBackend = "postgres"
)

func ParseStorageBackend(name string) (StorageBackend, error) {
	switch StorageBackend(strings.ToLower(name)) {
	case StorageBackend_LevelDB:
		return StorageBackend_LevelDB, nil
	case StorageBackend_Postgres:
		return StorageBackend_Postgres, nil
	}
	return "", fmt.Errorf("unsupported storage backend '%s'", name)
}

type Config struct {
	Debug            bool
	StorageConfig    StorageConfig
	DatabaseConfig   DatabaseConfig
	PrometheusConfig PrometheusConfig
	DataDogConfig    DataDogConfig
	LedgerConfig     LedgerConfig
}

type StorageConfig struct {
	Backend     StorageBackend
	LevelDBPath string
	InMemory    bool
}

type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	DbName     string
	SchemaName string
	SSLMode    string
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type DataDogConfig struct {
	StatsdConfig  StatsdConfig
	TracingConfig TracingConfig
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

type TracingConfig struct {
	Enabled bool
}

type LedgerConfig struct {
	// EventBufferSize is the channel size of event bus consumers created by the CLI.
	EventBufferSize int
}

var (
	Debug = "debug"

	StorageBackendKey  = "storage.backend"
	StorageLevelDBPath = "storage.leveldb-path"
	StorageInMemory    = "storage.in-memory"

	DatabaseHost       = "database.host"
	DatabasePort       = "database.port"
	DatabaseUser       = "database.user"
	DatabasePassword   = "database.password"
	DatabaseDbName     = "database.db_name"
	DatabaseSchemaName = "database.schema_name"
	DatabaseSSLMode    = "database.ssl_mode"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample_rate"
	DataDogTracingEnabled   = "datadog.tracing.enabled"

	LedgerEventBufferSize = "ledger.event-buffer-size"
)

func NewConfig() *Config {
	backend, err := ParseStorageBackend(viper.GetString(normalizeFlagName(StorageBackendKey)))
	if err != nil {
		backend = StorageBackend_LevelDB
	}

	return &Config{
		Debug: viper.GetBool(normalizeFlagName(Debug)),

		StorageConfig: StorageConfig{
			Backend:     backend,
			LevelDBPath: viper.GetString(normalizeFlagName(StorageLevelDBPath)),
			InMemory:    viper.GetBool(normalizeFlagName(StorageInMemory)),
		},

		DatabaseConfig: DatabaseConfig{
			Host:       viper.GetString(normalizeFlagName(DatabaseHost)),
			Port:       viper.GetInt(normalizeFlagName(DatabasePort)),
			User:       viper.GetString(normalizeFlagName(DatabaseUser)),
			Password:   viper.GetString(normalizeFlagName(DatabasePassword)),
			DbName:     viper.GetString(normalizeFlagName(DatabaseDbName)),
			SchemaName: viper.GetString(normalizeFlagName(DatabaseSchemaName)),
			SSLMode:    viper.GetString(normalizeFlagName(DatabaseSSLMode)),
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: viper.GetFloat64(normalizeFlagName(DataDogStatsdSampleRate)),
			},
			TracingConfig: TracingConfig{
				Enabled: viper.GetBool(normalizeFlagName(DataDogTracingEnabled)),
			},
		},

		LedgerConfig: LedgerConfig{
			EventBufferSize: viper.GetInt(normalizeFlagName(LedgerEventBufferSize)),
		},
	}
}

// GetLevelDBPath returns an empty path when the store should live in memory.
func (c *Config) GetLevelDBPath() string {
	if c.StorageConfig.InMemory {
		return ""
	}
	return c.StorageConfig.LevelDBPath
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}

func normalizeFlagName(name string) string {
	return KebabToSnakeCase(name)
}
