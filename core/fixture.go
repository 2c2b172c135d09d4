package core

// fixture.go loads a pool roster from a YAML file at startup, the way the
// teacher's own AMM_POOLS_FIXTURE bootstraps its constant-product pools
// (cmd/cli/liquidity_pools.go's lpEnsureInit), generalized to N-coin
// stableswap pools.

import (
	"os"

	"gopkg.in/yaml.v3"
)

type poolFixture struct {
	Tokens                 []string `yaml:"tokens"`
	Decimals               []uint8  `yaml:"decimals"`
	InitialA               uint64   `yaml:"initial_a"`
	TradeFeeNum            uint64   `yaml:"trade_fee_num"`
	TradeFeeDen            uint64   `yaml:"trade_fee_den"`
	AdminTradeFeeNum       uint64   `yaml:"admin_trade_fee_num"`
	AdminTradeFeeDen       uint64   `yaml:"admin_trade_fee_den"`
	WithdrawFeeNum         uint64   `yaml:"withdraw_fee_num"`
	WithdrawFeeDen         uint64   `yaml:"withdraw_fee_den"`
	AdminWithdrawFeeNum    uint64   `yaml:"admin_withdraw_fee_num"`
	AdminWithdrawFeeDen    uint64   `yaml:"admin_withdraw_fee_den"`
}

type fixtureFile struct {
	Pools []poolFixture `yaml:"pools"`
}

// LoadPoolsFromFile registers every pool described in the YAML file at
// path into e, as the owner. Intended for process startup only.
func (e *Exchange) LoadPoolsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var parsed fixtureFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return err
	}

	for _, pf := range parsed.Pools {
		tokenIDs := make([]TokenID, len(pf.Tokens))
		for i, t := range pf.Tokens {
			tokenIDs[i] = TokenID(t)
		}
		// A fixture entry that omits its fee schedule (TradeFeeDen == 0)
		// falls back to the exchange's configured default fees, rather
		// than the zero Fees that would fail Validate.
		fees := e.defaultFees
		if pf.TradeFeeDen != 0 {
			fees = Fees{
				TradeFeeNum: pf.TradeFeeNum, TradeFeeDen: pf.TradeFeeDen,
				AdminTradeFeeNum: pf.AdminTradeFeeNum, AdminTradeFeeDen: pf.AdminTradeFeeDen,
				WithdrawFeeNum: pf.WithdrawFeeNum, WithdrawFeeDen: pf.WithdrawFeeDen,
				AdminWithdrawFeeNum: pf.AdminWithdrawFeeNum, AdminWithdrawFeeDen: pf.AdminWithdrawFeeDen,
			}
		}
		if _, err := e.AddPool(e.owner, tokenIDs, pf.Decimals, pf.InitialA, fees); err != nil {
			return err
		}
	}
	return nil
}
