package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Layr-Labs/rewards-ledger/internal/config"
	"github.com/Layr-Labs/rewards-ledger/pkg/allocations"
	"github.com/Layr-Labs/rewards-ledger/pkg/logger"
	"github.com/Layr-Labs/rewards-ledger/pkg/proofs"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var merkleCmd = &cobra.Command{
	Use:   "merkle",
	Short: "Merkle distribution helpers",
}

var merkleBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a claim tree and proofs from an allocations CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		initMerkleBuildCmd(cmd)
		cfg := config.NewConfig()

		l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug})
		if err != nil {
			return err
		}
		defer l.Sync() //nolint:errcheck

		input := viper.GetString("input")
		if input == "" {
			return fmt.Errorf("--input is required")
		}
		decimals := uint8(viper.GetUint("decimals"))

		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("failed to open allocations file: %w", err)
		}
		defer f.Close()

		rows, err := allocations.ReadRows(f)
		if err != nil {
			return err
		}
		l.Sugar().Debugw("Read allocations", zap.String("input", input), zap.Int("rows", len(rows)))

		bar := progressbar.Default(int64(len(rows)), "building leaves")
		leaves, err := allocations.Leaves(rows, decimals, func() {
			_ = bar.Add(1)
		})
		_ = bar.Finish()
		if err != nil {
			return err
		}

		tree, err := proofs.NewClaimProofsStore(l).AddLeaves(leaves)
		if err != nil {
			return err
		}
		out, err := allocations.Render(tree, decimals)
		if err != nil {
			return err
		}
		l.Sugar().Infow("Built claim tree",
			zap.String("root", out.Root),
			zap.String("total", out.Total),
			zap.Int("claims", len(out.Claims)),
		)

		w := io.Writer(os.Stdout)
		if path := viper.GetString("output_file"); path != "" {
			of, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer of.Close()
			w = of
		}
		return writeOutput(w, viper.GetString("output"), out)
	},
}

// writeOutput encodes v as yaml or json.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported output format '%s'", format)
}

func initMerkleBuildCmd(cmd *cobra.Command) {
	bindCommandFlags(cmd)
}

func init() {
	merkleBuildCmd.Flags().String("input", "", "Path to the allocations CSV")
	merkleBuildCmd.Flags().Uint("decimals", 6, "Decimals of the mint")
	merkleBuildCmd.Flags().String("output", "yaml", `Output format ("yaml" or "json")`)
	merkleBuildCmd.Flags().String("output-file", "", "Write the tree to this file instead of stdout")

	merkleCmd.AddCommand(merkleBuildCmd)
}
