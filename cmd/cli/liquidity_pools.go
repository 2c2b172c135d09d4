package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/holiman/uint256"

	core "stableswap-network/core"
	"stableswap-network/pkg/fixedmath"
)

type lpController struct{}

func (lpController) Add(pid core.PoolID, provider core.AccountID, amounts []*uint256.Int, minMinted *uint256.Int) (*uint256.Int, error) {
	return Exchange().AddLiquidity(provider, pid, amounts, minMinted, time.Now())
}

func (lpController) Remove(pid core.PoolID, provider core.AccountID, burn *uint256.Int, minAmounts []*uint256.Int) ([]*uint256.Int, error) {
	return Exchange().RemoveLiquidity(provider, pid, burn, minAmounts, time.Now())
}

func (lpController) RemoveOne(pid core.PoolID, provider core.AccountID, burn *uint256.Int, tokenOut core.TokenID, minOut *uint256.Int) (*uint256.Int, error) {
	return Exchange().RemoveLiquidityOneCoin(provider, pid, burn, tokenOut, minOut, time.Now())
}

func (lpController) RemoveImbalanced(pid core.PoolID, provider core.AccountID, requested []*uint256.Int, maxBurn *uint256.Int) (*uint256.Int, error) {
	return Exchange().RemoveLiquidityImbalance(provider, pid, requested, maxBurn, time.Now())
}

func (lpController) Swap(pid core.PoolID, trader core.AccountID, tokenIn, tokenOut core.TokenID, amtIn, minOut *uint256.Int) (*uint256.Int, error) {
	return Exchange().Swap(trader, pid, tokenIn, tokenOut, amtIn, minOut, time.Now())
}

func (lpController) Deposit(account core.AccountID, token core.TokenID, amount *uint256.Int) error {
	return Exchange().OnTokenTransfer(account, token, amount, nil, time.Now())
}

func (lpController) Pool(pid core.PoolID) (core.PoolView, error) {
	p, err := Exchange().Pool(pid)
	if err != nil {
		return core.PoolView{}, err
	}
	return p.View(time.Now())
}

func (lpController) Pools() ([]core.PoolView, error) {
	pools := Exchange().Pools()
	out := make([]core.PoolView, 0, len(pools))
	for _, p := range pools {
		v, err := p.View(time.Now())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func mustUint256(s string) (*uint256.Int, error) {
	return fixedmath.FromDecimalString(s)
}

func parseUint256Vector(args []string) ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(args))
	for i, a := range args {
		v, err := mustUint256(a)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func parsePoolID(s string) (core.PoolID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return core.PoolID(n), nil
}

var poolsCmd = &cobra.Command{Use: "pools", Short: "Trade and manage liquidity pools", PersistentPreRunE: ensureExchangeInit}

var depositCmd = &cobra.Command{
	Use:   "deposit <account> <token> <amount>",
	Short: "Stage a token deposit for a later add-liquidity or swap call",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		amt, err := mustUint256(args[2])
		if err != nil {
			return err
		}
		return ctl.Deposit(core.AccountID(args[0]), core.TokenID(args[1]), amt)
	},
}

var poolAddCmd = &cobra.Command{
	Use:   "add <poolID> <provider> <minMinted> <amount>...",
	Short: "Add liquidity to a pool from previously staged deposits",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		pid, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		minMinted, err := mustUint256(args[2])
		if err != nil {
			return err
		}
		amounts, err := parseUint256Vector(args[3:])
		if err != nil {
			return err
		}
		minted, err := ctl.Add(pid, core.AccountID(args[1]), amounts, minMinted)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), minted.String())
		return nil
	},
}

var poolSwapCmd = &cobra.Command{
	Use:   "swap <poolID> <trader> <tokenIn> <tokenOut> <amtIn> <minOut>",
	Short: "Swap tokens within a pool from a previously staged deposit",
	Args:  cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		pid, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		amtIn, err := mustUint256(args[4])
		if err != nil {
			return err
		}
		minOut, err := mustUint256(args[5])
		if err != nil {
			return err
		}
		out, err := ctl.Swap(pid, core.AccountID(args[1]), core.TokenID(args[2]), core.TokenID(args[3]), amtIn, minOut)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}

var poolRemoveCmd = &cobra.Command{
	Use:   "remove <poolID> <provider> <lpShares> <minAmount>...",
	Short: "Remove liquidity from a pool proportionally",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		pid, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		lpAmt, err := mustUint256(args[2])
		if err != nil {
			return err
		}
		minAmounts, err := parseUint256Vector(args[3:])
		if err != nil {
			return err
		}
		amounts, err := ctl.Remove(pid, core.AccountID(args[1]), lpAmt, minAmounts)
		if err != nil {
			return err
		}
		strs := make([]string, len(amounts))
		for i, a := range amounts {
			strs[i] = a.String()
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(strs, " "))
		return nil
	},
}

var poolRemoveOneCmd = &cobra.Command{
	Use:   "remove-one <poolID> <provider> <lpShares> <tokenOut> <minOut>",
	Short: "Remove liquidity from a pool into a single coin",
	Args:  cobra.ExactArgs(5),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		pid, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		lpAmt, err := mustUint256(args[2])
		if err != nil {
			return err
		}
		minOut, err := mustUint256(args[4])
		if err != nil {
			return err
		}
		out, err := ctl.RemoveOne(pid, core.AccountID(args[1]), lpAmt, core.TokenID(args[3]), minOut)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}

var poolRemoveImbalancedCmd = &cobra.Command{
	Use:   "remove-imbalanced <poolID> <provider> <maxBurn> <amount>...",
	Short: "Remove an exact per-coin amount vector from a pool",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		pid, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		maxBurn, err := mustUint256(args[2])
		if err != nil {
			return err
		}
		requested, err := parseUint256Vector(args[3:])
		if err != nil {
			return err
		}
		burned, err := ctl.RemoveImbalanced(pid, core.AccountID(args[1]), requested, maxBurn)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), burned.String())
		return nil
	},
}

var poolInfoCmd = &cobra.Command{
	Use:   "info <poolID>",
	Short: "Show pool state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		pid, err := parsePoolID(args[0])
		if err != nil {
			return err
		}
		v, err := ctl.Pool(pid)
		if err != nil {
			return err
		}
		enc, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(enc))
		return nil
	},
}

var poolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all pools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctl := lpController{}
		pools, err := ctl.Pools()
		if err != nil {
			return err
		}
		enc, _ := json.MarshalIndent(pools, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(enc))
		return nil
	},
}

func init() {
	poolsCmd.AddCommand(depositCmd, poolAddCmd, poolSwapCmd, poolRemoveCmd, poolRemoveOneCmd,
		poolRemoveImbalancedCmd, poolInfoCmd, poolListCmd)
}

// PoolsCmd is the root "pools" subcommand tree.
var PoolsCmd = poolsCmd
