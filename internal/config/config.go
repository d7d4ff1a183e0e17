// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/viper"
)

type Config struct {
	// Identities checked at guarded entry points.
	Owner         string `mapstructure:"owner"`
	Admin         string `mapstructure:"admin"`
	BusinessAdmin string `mapstructure:"business_admin"`

	// Sale parameters. Amounts are decimal strings in funding-currency units.
	MinInvestment string `mapstructure:"min_investment"`
	MaxInvestment string `mapstructure:"max_investment"`

	// Time gates, in seconds.
	ClaimDelaySec      int `mapstructure:"claim_delay_sec"`
	RefundPeriodSec    int `mapstructure:"refund_period_sec"`
	WithdrawalDelaySec int `mapstructure:"withdrawal_delay_sec"`
	ReleaseDelaySec    int `mapstructure:"release_delay_sec"`

	// Circuit breaker.
	BreakerEnabled        bool `mapstructure:"breaker_enabled"`
	StalenessThresholdSec int  `mapstructure:"staleness_threshold_sec"`
	MaxDeviationBps       int  `mapstructure:"max_deviation_bps"`

	// Optional absolute price bounds; empty disables the check.
	MinTokenPrice string `mapstructure:"min_token_price"`
	MaxTokenPrice string `mapstructure:"max_token_price"`

	// Oracle endpoint and asset identifier.
	OracleURL     string `mapstructure:"oracle_url"`
	OracleAsset   string `mapstructure:"oracle_asset"`
	OracleRetries int    `mapstructure:"oracle_retries"`

	// Storage and logging.
	DBPath       string `mapstructure:"db_path"`
	LogFile      string `mapstructure:"log_file"`
	DebugLogging bool   `mapstructure:"debug_logging"`
	MetricsAddr  string `mapstructure:"metrics_addr"`
}

const (
	DefaultClaimDelaySec      = 14 * 24 * 60 * 60 // 14 days
	DefaultRefundPeriodSec    = 7 * 24 * 60 * 60  // 7 days
	DefaultWithdrawalDelaySec = 14 * 24 * 60 * 60
	DefaultReleaseDelaySec    = 30 * 24 * 60 * 60
	DefaultStalenessSec       = 300
	DefaultMaxDeviationBps    = 1000 // 10%
	DefaultOracleRetries      = 3
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"claim_delay_sec":         DefaultClaimDelaySec,
		"refund_period_sec":       DefaultRefundPeriodSec,
		"withdrawal_delay_sec":    DefaultWithdrawalDelaySec,
		"release_delay_sec":       DefaultReleaseDelaySec,
		"staleness_threshold_sec": DefaultStalenessSec,
		"max_deviation_bps":       DefaultMaxDeviationBps,
		"oracle_retries":          DefaultOracleRetries,
		"db_path":                 "data/launchpool.db",
		"log_file":                "launchpool.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.Owner == "" {
		return errors.New("missing owner in configuration")
	}
	if cfg.Admin == "" {
		cfg.Admin = cfg.Owner
	}
	if cfg.BusinessAdmin == "" {
		cfg.BusinessAdmin = cfg.Owner
	}
	if cfg.OracleURL != "" {
		if err := validateURLWithCache(cfg.OracleURL, "http"); err != nil {
			return errors.New("invalid oracle URL protocol")
		}
	}
	if _, err := ParseAmount(cfg.MinInvestment); err != nil {
		return errors.New("invalid min_investment")
	}
	if _, err := ParseAmount(cfg.MaxInvestment); err != nil {
		return errors.New("invalid max_investment")
	}
	if cfg.MinTokenPrice != "" {
		if _, err := ParseAmount(cfg.MinTokenPrice); err != nil {
			return errors.New("invalid min_token_price")
		}
	}
	if cfg.MaxTokenPrice != "" {
		if _, err := ParseAmount(cfg.MaxTokenPrice); err != nil {
			return errors.New("invalid max_token_price")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.ClaimDelaySec <= 0 {
		return errors.New("invalid claim_delay_sec")
	}
	if cfg.RefundPeriodSec <= 0 {
		return errors.New("invalid refund_period_sec")
	}
	if cfg.WithdrawalDelaySec <= 0 {
		return errors.New("invalid withdrawal_delay_sec")
	}
	if cfg.ReleaseDelaySec <= 0 {
		return errors.New("invalid release_delay_sec")
	}
	if cfg.StalenessThresholdSec <= 0 {
		return errors.New("invalid staleness_threshold_sec")
	}
	if cfg.MaxDeviationBps <= 0 || cfg.MaxDeviationBps > 10000 {
		return errors.New("invalid max_deviation_bps")
	}
	if cfg.OracleRetries < 0 {
		return errors.New("invalid oracle_retries")
	}
	return nil
}

// ParseAmount parses a decimal amount string into a uint256 value.
func ParseAmount(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, errors.New("empty amount")
	}
	return uint256.FromDecimal(s)
}

// ClaimDelay returns the claim delay as a duration.
func (c *Config) ClaimDelay() time.Duration {
	return time.Duration(c.ClaimDelaySec) * time.Second
}

// RefundPeriod returns the refund window as a duration.
func (c *Config) RefundPeriod() time.Duration {
	return time.Duration(c.RefundPeriodSec) * time.Second
}

// WithdrawalDelay returns the funding withdrawal delay as a duration.
func (c *Config) WithdrawalDelay() time.Duration {
	return time.Duration(c.WithdrawalDelaySec) * time.Second
}

// ReleaseDelay returns the post-sale release delay as a duration.
func (c *Config) ReleaseDelay() time.Duration {
	return time.Duration(c.ReleaseDelaySec) * time.Second
}

// StalenessThreshold returns the oracle staleness threshold as a duration.
func (c *Config) StalenessThreshold() time.Duration {
	return time.Duration(c.StalenessThresholdSec) * time.Second
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("LAUNCHPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envOwner := v.GetString("OWNER")
	if envOwner != "" {
		cfg.Owner = envOwner
	}

	envDB := v.GetString("DB_PATH")
	if envDB != "" {
		cfg.DBPath = envDB
	}

	envOracle := v.GetString("ORACLE_URL")
	if envOracle != "" {
		cfg.OracleURL = envOracle
	}
	return nil
}
