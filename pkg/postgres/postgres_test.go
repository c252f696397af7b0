package postgres

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ConnectionString(t *testing.T) {
	t.Run("Should build a connection string with defaults", func(t *testing.T) {
		s, err := getPostgresConnectionString(&PostgresConfig{Host: "localhost", Port: 5432, DbName: "ledger"})
		assert.Nil(t, err)
		assert.Equal(t, "host=localhost dbname=ledger port=5432 sslmode=disable TimeZone=UTC", s)
	})
	t.Run("Should include credentials and schema", func(t *testing.T) {
		s, err := getPostgresConnectionString(&PostgresConfig{
			Host:       "db",
			Port:       5433,
			Username:   "ledger",
			Password:   "secret",
			DbName:     "ledger",
			SchemaName: "rewards",
			SSLMode:    "require",
		})
		assert.Nil(t, err)
		assert.Equal(t, "host=db user=ledger password=secret dbname=ledger port=5433 sslmode=require TimeZone=UTC search_path=rewards", s)
	})
	t.Run("Should reject an unknown ssl mode", func(t *testing.T) {
		_, err := getPostgresConnectionString(&PostgresConfig{SSLMode: "sometimes"})
		assert.NotNil(t, err)
	})
	t.Run("Should detect duplicate key errors", func(t *testing.T) {
		assert.True(t, IsDuplicateKeyError(fmt.Errorf(`pq: duplicate key value violates unique constraint "accounts_pkey"`)))
		assert.False(t, IsDuplicateKeyError(fmt.Errorf("connection refused")))
	})
}
