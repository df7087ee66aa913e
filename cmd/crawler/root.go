package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/observability"
)

type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "crawler",
		Short:         "Crawl Japanese freelance marketplaces",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = observability.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")

	root.AddCommand(newCrawlCommand(a))
	root.AddCommand(newScheduleCommand(a))
	return root
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
