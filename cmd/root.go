package cmd

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	baskets "github.com/baskets-dev/baskets-go"
	"github.com/baskets-dev/baskets-go/internal/config"
)

var (
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
	client  *baskets.Client
)

var RootCmd = &cobra.Command{
	Use:           "baskets",
	Short:         "Browse deliveries and manage orders against a baskets backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		zapCfg := zap.NewProductionConfig()
		zapCfg.Level = level
		logger, err = zapCfg.Build()
		if err != nil {
			return err
		}

		clientCfg := &baskets.Config{
			BaseURL:        cfg.BaseURL,
			CSRFCookieName: cfg.CSRFCookieName,
			CSRFToken:      cfg.CSRFToken,
			Timeout:        cfg.Timeout,
			Logger:         logger,
		}
		if cfg.SessionCookie != "" {
			clientCfg.Cookies = []*http.Cookie{
				{Name: cfg.SessionCookieName, Value: cfg.SessionCookie},
			}
		}
		client, err = baskets.NewClient(clientCfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./baskets.yaml, $HOME/.baskets/baskets.yaml)")
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
