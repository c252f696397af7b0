package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestParseStorageBackend(t *testing.T) {
	tests := []struct {
		input    string
		expected StorageBackend
		hasError bool
	}{
		{"leveldb", StorageBackend_LevelDB, false},
		{"LevelDB", StorageBackend_LevelDB, false},
		{"postgres", StorageBackend_Postgres, false},
		{"", "", true},
		{"sqlite", "", true},
	}

	for _, test := range tests {
		result, err := ParseStorageBackend(test.input)
		if (err != nil) != test.hasError {
			t.Errorf("ParseStorageBackend(%s) error = %v, wantErr %v", test.input, err, test.hasError)
		}
		if result != test.expected {
			t.Errorf("ParseStorageBackend(%s) = %v, want %v", test.input, result, test.expected)
		}
	}
}

func TestKebabToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"storage.leveldb-path", "storage.leveldb_path"},
		{"ledger.event-buffer-size", "ledger.event_buffer_size"},
		{"debug", "debug"},
	}

	for _, test := range tests {
		if result := KebabToSnakeCase(test.input); result != test.expected {
			t.Errorf("KebabToSnakeCase(%s) = %v, want %v", test.input, result, test.expected)
		}
	}
}

func Test_NewConfig(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("Should read values set through viper", func(t *testing.T) {
		viper.Set(KebabToSnakeCase(StorageBackendKey), "postgres")
		viper.Set(KebabToSnakeCase(StorageLevelDBPath), "/tmp/ledger")
		viper.Set(KebabToSnakeCase(DatabasePort), 5433)
		viper.Set(KebabToSnakeCase(DataDogStatsdEnabled), true)
		viper.Set(KebabToSnakeCase(LedgerEventBufferSize), 64)

		cfg := NewConfig()
		assert.Equal(t, StorageBackend_Postgres, cfg.StorageConfig.Backend)
		assert.Equal(t, "/tmp/ledger", cfg.GetLevelDBPath())
		assert.Equal(t, 5433, cfg.DatabaseConfig.Port)
		assert.True(t, cfg.DataDogConfig.StatsdConfig.Enabled)
		assert.Equal(t, 64, cfg.LedgerConfig.EventBufferSize)
	})
	t.Run("Should fall back to leveldb for unknown backends", func(t *testing.T) {
		viper.Set(KebabToSnakeCase(StorageBackendKey), "nope")
		assert.Equal(t, StorageBackend_LevelDB, NewConfig().StorageConfig.Backend)
	})
	t.Run("Should use no path for in memory storage", func(t *testing.T) {
		viper.Set(KebabToSnakeCase(StorageInMemory), true)
		assert.Equal(t, "", NewConfig().GetLevelDBPath())
	})
}
