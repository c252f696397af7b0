package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "rewards-ledger",
	Short: "Inspect and simulate token reward distributions",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)

	rootCmd.PersistentFlags().String(config.StorageBackendKey, string(config.StorageBackend_LevelDB), `Record store backend ("leveldb" or "postgres")`)
	rootCmd.PersistentFlags().String(config.StorageLevelDBPath, "./ledger-data", `Directory of the leveldb record store`)
	rootCmd.PersistentFlags().Bool(config.StorageInMemory, true, `Keep the leveldb record store in memory`)

	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "rewards_ledger", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "rewards_ledger", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchemaName, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseSSLMode, "disable", `PostgreSQL ssl mode`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `Sample rate for statsd metrics`)
	rootCmd.PersistentFlags().Bool(config.DataDogTracingEnabled, false, `Send invocation traces to the datadog agent`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	rootCmd.PersistentFlags().Int(config.LedgerEventBufferSize, 1024, `Channel size of event consumers`)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(vestingCmd)
	rootCmd.AddCommand(merkleCmd)
	rootCmd.AddCommand(poolCmd)
	rootCmd.AddCommand(simulateCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

// bindCommandFlags makes a subcommand's own flags visible to viper.
func bindCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
