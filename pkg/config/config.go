package config

// Package config provides a reusable loader for exchange configuration
// files and environment variables. It is versioned so that applications
// can depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"stableswap-network/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for an exchange node. It mirrors the
// structure of the YAML files under cmd/config.
type Config struct {
	Exchange struct {
		ListenAddr   string `mapstructure:"listen_addr" json:"listen_addr"`
		OwnerAddress string `mapstructure:"owner_address" json:"owner_address"`
		SelfAddress  string `mapstructure:"self_address" json:"self_address"`
		PoolsFixture string `mapstructure:"pools_fixture" json:"pools_fixture"`

		// Default fee schedule applied to any pool fixture entry that
		// doesn't specify its own (see core.Exchange.defaultFees).
		DefaultTradeFeeNum         uint64 `mapstructure:"default_trade_fee_num" json:"default_trade_fee_num"`
		DefaultTradeFeeDen         uint64 `mapstructure:"default_trade_fee_den" json:"default_trade_fee_den"`
		DefaultAdminTradeFeeNum    uint64 `mapstructure:"default_admin_trade_fee_num" json:"default_admin_trade_fee_num"`
		DefaultAdminTradeFeeDen    uint64 `mapstructure:"default_admin_trade_fee_den" json:"default_admin_trade_fee_den"`
		DefaultWithdrawFeeNum      uint64 `mapstructure:"default_withdraw_fee_num" json:"default_withdraw_fee_num"`
		DefaultWithdrawFeeDen      uint64 `mapstructure:"default_withdraw_fee_den" json:"default_withdraw_fee_den"`
		DefaultAdminWithdrawFeeNum uint64 `mapstructure:"default_admin_withdraw_fee_num" json:"default_admin_withdraw_fee_num"`
		DefaultAdminWithdrawFeeDen uint64 `mapstructure:"default_admin_withdraw_fee_den" json:"default_admin_withdraw_fee_den"`

		// FeeChangeCooldownHours overrides core.DefaultFeeChangeCooldown
		// when nonzero.
		FeeChangeCooldownHours uint64 `mapstructure:"fee_change_cooldown_hours" json:"fee_change_cooldown_hours"`
	} `mapstructure:"exchange" json:"exchange"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and
// returned.
//
// The function uses the provided environment name to merge additional
// config files. If env is empty, only the default configuration is
// loaded. A .env file in the working directory, if present, is loaded
// first so its values are visible to viper's AutomaticEnv.
func Load(env string) (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv()

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the EXCHANGE_ENV environment
// variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("EXCHANGE_ENV", ""))
}
