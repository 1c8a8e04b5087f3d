package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/kvstore"
	"storefront/internal/pricing"
	"storefront/internal/session"
	"storefront/internal/storefront"
)

var (
	cfgFile string
	debug   bool

	logger *zap.Logger
	app    *appEnv
)

// appEnv is everything a command needs, built once per invocation.
type appEnv struct {
	cfg       *config.ClientConfig
	store     kvstore.Store
	session   *session.Manager
	client    *client.Client
	auth      *storefront.AuthStore
	cart      *storefront.CartStore
	dashboard *storefront.Dashboard
}

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront client: sign in, browse, and manage your cart",
	Long: `storefront talks to the storefront backend the way the web client does.

Sessions survive restarts through a local store; expired access tokens are
refreshed transparently, once, no matter how many requests hit the expiry.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if debug {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		v, err := config.NewClientViper(cfgFile)
		if err != nil {
			return err
		}
		if err := bindFlags(cmd, v); err != nil {
			return err
		}
		cfg, err := config.LoadClientConfig(v)
		if err != nil {
			return err
		}
		app, err = newAppEnv(cmd.Context(), cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("backend-url", "", "Backend base URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().String("store-dsn", "", "Session store path (default in the user config dir)")
	rootCmd.PersistentFlags().String("refresh-mode", "", "Token refresh: auto, cookie or recovery")

	rootCmd.AddCommand(loginCmd, otpCmd, logoutCmd, whoamiCmd, refreshCmd)
	rootCmd.AddCommand(productsCmd, productCmd, bannersCmd)
	rootCmd.AddCommand(cartCmd, couponCmd, referralCmd, offerCmd)
	rootCmd.AddCommand(adminCmd)
}

// bindFlags lets explicitly set flags override env and file values.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for flag, key := range map[string]string{
		"backend-url":  "backend_url",
		"store-dsn":    "store_dsn",
		"refresh-mode": "refresh_mode",
	} {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

func newAppEnv(ctx context.Context, cfg *config.ClientConfig) (*appEnv, error) {
	dsn := cfg.StoreDSN
	if dsn == "" {
		dsn = defaultStorePath()
	}
	store := kvstore.Open(ctx, dsn, logger.Named("store"))

	sess := session.NewManager(store, logger.Named("session"))
	sess.Load(ctx)

	mode, err := client.ParseRefreshMode(cfg.RefreshMode)
	if err != nil {
		return nil, err
	}
	cli, err := client.New(client.Config{
		BaseURL:     cfg.BackendURL,
		RefreshMode: mode,
		Timeout:     cfg.HTTPTimeout,
		Session:     sess,
		Logger:      logger.Named("client"),
	})
	if err != nil {
		return nil, err
	}

	return &appEnv{
		cfg:     cfg,
		store:   store,
		session: sess,
		client:  cli,
		auth:    storefront.NewAuthStore(cli, sess, logger.Named("auth")),
		cart: storefront.NewCartStore(cli, storefront.CartOptions{
			Shipping: pricing.ShippingPolicy{
				FreeThreshold: cfg.FreeShippingThreshold,
				Charge:        cfg.ShippingCharge,
			},
			Logger: logger.Named("cart"),
		}),
		dashboard: storefront.NewDashboard(ctx, store, logger.Named("dashboard")),
	}, nil
}

// defaultStorePath is empty, meaning an in-memory store, when no user
// config dir exists.
func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "storefront")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, "session.db")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		stop()
		os.Exit(1)
	}
}
