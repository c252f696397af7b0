package cmd

import (
	"fmt"

	"github.com/Layr-Labs/rewards-ledger/internal/types/numbers"
	"github.com/Layr-Labs/rewards-ledger/pkg/vesting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var vestingCmd = &cobra.Command{
	Use:   "vesting",
	Short: "Vesting schedule helpers",
}

var vestingUnlockedCmd = &cobra.Command{
	Use:   "unlocked",
	Short: "Print how much of an allocation has unlocked at a given time",
	RunE: func(cmd *cobra.Command, args []string) error {
		initVestingUnlockedCmd(cmd)

		decimals := uint8(viper.GetUint("decimals"))
		total, err := numbers.ParseTokenAmount(viper.GetString("total"), decimals)
		if err != nil {
			return err
		}

		start := viper.GetInt64("start")
		end := viper.GetInt64("end")
		schedule := vesting.Linear(start, end)
		if cliff := viper.GetInt64("cliff"); cliff != 0 {
			schedule = vesting.CliffLinear(start, cliff, end)
		}
		if err := schedule.Validate(); err != nil {
			return err
		}

		unlocked := schedule.Unlocked(total, viper.GetInt64("now"))
		fmt.Printf("Unlocked: %s\nLocked: %s\nFully vested at: %d\n",
			numbers.FormatTokenAmount(unlocked, decimals),
			numbers.FormatTokenAmount(total-unlocked, decimals),
			schedule.FullyVestedAt(),
		)
		return nil
	},
}

func initVestingUnlockedCmd(cmd *cobra.Command) {
	bindCommandFlags(cmd)
}

func init() {
	vestingUnlockedCmd.Flags().String("total", "", "Total allocation, in whole tokens")
	vestingUnlockedCmd.Flags().Uint("decimals", 6, "Decimals of the mint")
	vestingUnlockedCmd.Flags().Int64("start", 0, "Unix timestamp vesting starts at")
	vestingUnlockedCmd.Flags().Int64("cliff", 0, "Unix timestamp of the cliff (optional)")
	vestingUnlockedCmd.Flags().Int64("end", 0, "Unix timestamp vesting ends at")
	vestingUnlockedCmd.Flags().Int64("now", 0, "Unix timestamp to evaluate at")

	vestingCmd.AddCommand(vestingUnlockedCmd)
}
