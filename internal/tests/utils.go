package tests

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/google/uuid"
)

func GetConfig() *config.Config {
	return config.NewConfig()
}

// GenerateTestDbName returns a database name that is unique per test run.
func GenerateTestDbName() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("test_%s", strings.ReplaceAll(id.String(), "-", "")), nil
}

// GetDbConfigFromEnv reads the database settings tests connect with from
// the TEST_DB_* variables.
func GetDbConfigFromEnv() *config.DatabaseConfig {
	port, err := strconv.Atoi(os.Getenv("TEST_DB_PORT"))
	if err != nil || port == 0 {
		port = 5432
	}
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		host = "localhost"
	}
	return &config.DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DbName:   os.Getenv("TEST_DB_NAME"),
	}
}

// PostgresAvailable reports whether the postgres integration tests should run.
func PostgresAvailable() bool {
	return os.Getenv("TEST_POSTGRES") == "true"
}

func ReplaceEnv(newValues map[string]string, previousValues *map[string]string) {
	for k, v := range newValues {
		(*previousValues)[k] = os.Getenv(k)
		os.Setenv(k, v)
	}
}

func RestoreEnv(previousValues map[string]string) {
	for k, v := range previousValues {
		os.Setenv(k, v)
	}
}
