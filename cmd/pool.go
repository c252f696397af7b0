package cmd

import (
	"fmt"

	"github.com/Layr-Labs/rewards-ledger/pkg/continuous"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Reward pool helpers",
}

var poolPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the accumulator change of a distribution and a user's share of it",
	RunE: func(cmd *cobra.Command, args []string) error {
		initPoolPreviewCmd(cmd)

		res, err := continuous.Preview(
			viper.GetUint64("supply"),
			viper.GetUint64("amount"),
			viper.GetUint64("balance"),
		)
		if err != nil {
			return err
		}
		fmt.Printf("Reward per token delta: %s\nOwed: %d\n", res.Delta.Dec(), res.Owed)
		return nil
	},
}

func initPoolPreviewCmd(cmd *cobra.Command) {
	bindCommandFlags(cmd)
}

func init() {
	poolPreviewCmd.Flags().Uint64("supply", 0, "Opted-in supply of the pool, in base units")
	poolPreviewCmd.Flags().Uint64("amount", 0, "Amount to distribute, in base units")
	poolPreviewCmd.Flags().Uint64("balance", 0, "Tracked balance of the user, in base units")

	poolCmd.AddCommand(poolPreviewCmd)
}
