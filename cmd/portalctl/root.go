package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/logger"
)

// cli 命令共享状态
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Logicore operations CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "./config/config.yaml", "配置文件路径")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "日志级别")

	root.AddCommand(
		newQuoteCmd(c),
		newZoneCmd(c),
		newStoreCmd(c),
		newRateCardsCmd(c),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.NewZapLogger(c.logLevel)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = log
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
