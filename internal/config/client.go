package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const EnvPrefix = "STOREFRONT"

// ClientConfig configures the storefront client and CLI. Values come from
// flags, STOREFRONT_* environment variables and an optional config file,
// in that order of precedence.
type ClientConfig struct {
	BackendURL            string
	StoreDSN              string
	RefreshMode           string
	FreeShippingThreshold decimal.Decimal
	ShippingCharge        decimal.Decimal
	HTTPTimeout           time.Duration
}

func SetClientDefaults(v *viper.Viper) {
	v.SetDefault("backend_url", "http://localhost:8080")
	v.SetDefault("store_dsn", "")
	v.SetDefault("refresh_mode", "auto")
	v.SetDefault("free_shipping_threshold", "279")
	v.SetDefault("shipping_charge", "40")
	v.SetDefault("http_timeout", "15s")
}

// NewClientViper returns a viper instance wired for the client. file may
// be empty.
func NewClientViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetClientDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
	}
	return v, nil
}

func LoadClientConfig(v *viper.Viper) (*ClientConfig, error) {
	cfg := &ClientConfig{
		BackendURL:  strings.TrimSpace(v.GetString("backend_url")),
		StoreDSN:    strings.TrimSpace(v.GetString("store_dsn")),
		RefreshMode: strings.ToLower(strings.TrimSpace(v.GetString("refresh_mode"))),
		HTTPTimeout: v.GetDuration("http_timeout"),
	}

	var err error
	if cfg.FreeShippingThreshold, err = decimalKey(v, "free_shipping_threshold"); err != nil {
		return nil, err
	}
	if cfg.ShippingCharge, err = decimalKey(v, "shipping_charge"); err != nil {
		return nil, err
	}

	if err := validateClient(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateClient(cfg *ClientConfig) error {
	if cfg.BackendURL == "" {
		return errors.New("backend_url must not be empty")
	}
	switch cfg.RefreshMode {
	case "", "auto", "cookie", "recovery":
	default:
		return fmt.Errorf("refresh_mode must be one of: auto, cookie, recovery")
	}
	if cfg.HTTPTimeout < 0 {
		return errors.New("http_timeout must be >= 0")
	}
	if cfg.FreeShippingThreshold.IsNegative() || cfg.ShippingCharge.IsNegative() {
		return errors.New("shipping amounts must be >= 0")
	}
	return nil
}

func decimalKey(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return d, nil
}
