package cli

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/holiman/uint256"

	cliconfig "stableswap-network/cmd/config"
	core "stableswap-network/core"
)

// loggingTransferer stands in for a real token contract integration, which
// is out of scope for this exchange core: it logs every payout instead of
// moving funds on a chain.
type loggingTransferer struct{ logger *log.Logger }

func (t loggingTransferer) Transfer(token core.TokenID, from, to core.AccountID, amount *uint256.Int) error {
	t.logger.WithFields(log.Fields{
		"token": token, "from": from, "to": to, "amount": amount.String(),
	}).Info("payout")
	return nil
}

var (
	exchangeOnce sync.Once
	exchange     *core.Exchange
)

// ensureExchangeInit builds the package-level Exchange from the loaded
// configuration and its pools fixture, mirroring the teacher's
// lpEnsureInit/AMM_POOLS_FIXTURE bootstrap.
func ensureExchangeInit(cmd *cobra.Command, _ []string) error {
	var initErr error
	exchangeOnce.Do(func() {
		cliconfig.LoadConfig(viper.GetString("EXCHANGE_ENV"))
		cfg := cliconfig.AppConfig.Exchange
		if cfg.PoolsFixture == "" {
			initErr = fmt.Errorf("no pools fixture configured")
			return
		}
		logger := log.New()
		owner := core.AccountID(cfg.OwnerAddress)
		self := core.AccountID(cfg.SelfAddress)
		defaultFees := core.Fees{
			TradeFeeNum: cfg.DefaultTradeFeeNum, TradeFeeDen: cfg.DefaultTradeFeeDen,
			AdminTradeFeeNum: cfg.DefaultAdminTradeFeeNum, AdminTradeFeeDen: cfg.DefaultAdminTradeFeeDen,
			WithdrawFeeNum: cfg.DefaultWithdrawFeeNum, WithdrawFeeDen: cfg.DefaultWithdrawFeeDen,
			AdminWithdrawFeeNum: cfg.DefaultAdminWithdrawFeeNum, AdminWithdrawFeeDen: cfg.DefaultAdminWithdrawFeeDen,
		}
		cooldown := time.Duration(cfg.FeeChangeCooldownHours) * time.Hour
		exchange = core.NewExchange(owner, self, loggingTransferer{logger: logger}, logger, defaultFees, cooldown)
		if err := exchange.LoadPoolsFromFile(cfg.PoolsFixture); err != nil {
			initErr = fmt.Errorf("load pools fixture: %w", err)
		}
	})
	return initErr
}

// Exchange returns the process-wide Exchange, which must already have been
// initialised via ensureExchangeInit.
func Exchange() *core.Exchange { return exchange }
