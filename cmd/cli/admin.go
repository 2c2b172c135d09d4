package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	core "stableswap-network/core"
)

var adminCmd = &cobra.Command{Use: "admin", Short: "Owner-only exchange administration", PersistentPreRunE: ensureExchangeInit}

var adminPauseCmd = &cobra.Command{
	Use:   "pause <owner>",
	Short: "Pause trading and liquidity operations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Exchange().Pause(core.AccountID(args[0]))
	},
}

var adminResumeCmd = &cobra.Command{
	Use:   "resume <owner>",
	Short: "Resume trading and liquidity operations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Exchange().Resume(core.AccountID(args[0]))
	},
}

var adminSetFeesCmd = &cobra.Command{
	Use:   "set-fees <owner> <poolID> <tradeFeeNum> <tradeFeeDen> <adminTradeFeeNum> <adminTradeFeeDen> <withdrawFeeNum> <withdrawFeeDen> <adminWithdrawFeeNum> <adminWithdrawFeeDen>",
	Short: "Schedule a new fee setting for a pool, effective after the cooldown",
	Args:  cobra.ExactArgs(10),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePoolID(args[1])
		if err != nil {
			return err
		}
		nums := make([]uint64, 8)
		for i, a := range args[2:10] {
			n, err := strconv.ParseUint(a, 10, 64)
			if err != nil {
				return err
			}
			nums[i] = n
		}
		fees := core.Fees{
			TradeFeeNum: nums[0], TradeFeeDen: nums[1],
			AdminTradeFeeNum: nums[2], AdminTradeFeeDen: nums[3],
			WithdrawFeeNum: nums[4], WithdrawFeeDen: nums[5],
			AdminWithdrawFeeNum: nums[6], AdminWithdrawFeeDen: nums[7],
		}
		return Exchange().ChangeFeesSetting(core.AccountID(args[0]), pid, fees, time.Now())
	},
}

var adminSetAmpCmd = &cobra.Command{
	Use:   "set-amp <owner> <poolID> <targetA> <rampDurationSeconds>",
	Short: "Schedule an amplification ramp for a pool",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePoolID(args[1])
		if err != nil {
			return err
		}
		targetA, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return err
		}
		durationSeconds, err := strconv.ParseInt(args[3], 10, 64)
		if err != nil {
			return err
		}
		now := time.Now()
		stop := now.Add(time.Duration(durationSeconds) * time.Second)
		return Exchange().SetAmpRamp(core.AccountID(args[0]), pid, targetA, now, stop)
	},
}

var adminStopAmpCmd = &cobra.Command{
	Use:   "stop-amp <owner> <poolID>",
	Short: "Freeze a pool's amplification ramp at its current value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePoolID(args[1])
		if err != nil {
			return err
		}
		return Exchange().StopAmpRamp(core.AccountID(args[0]), pid, time.Now())
	},
}

var adminClaimFeesCmd = &cobra.Command{
	Use:   "claim-fees <owner> <poolID>",
	Short: "Claim a pool's accrued admin fees",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePoolID(args[1])
		if err != nil {
			return err
		}
		if err := Exchange().ClaimAdminFees(core.AccountID(args[0]), pid); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

func init() {
	adminCmd.AddCommand(adminPauseCmd, adminResumeCmd, adminSetFeesCmd, adminSetAmpCmd, adminStopAmpCmd, adminClaimFeesCmd)
}

// AdminCmd is the root "admin" subcommand tree.
var AdminCmd = adminCmd
