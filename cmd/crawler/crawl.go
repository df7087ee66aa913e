package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/baxromumarov/gig-crawler/internal/config"
)

func newCrawlCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crawl <platform> <listing-url>...",
		Short: "Crawl listing pages once and save the batch",
		Example: "  crawler crawl lancers 'https://www.lancers.jp/work/search/system?open=1'\n" +
			"  crawler crawl coconala https://coconala.com/requests?categoryId=230",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return &config.ConfigurationError{Reason: "usage: crawl <platform> <listing-url>..."}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := config.ParseTarget(args[0], args[1:])
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			d, err := wire(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer d.Close()

			svc, err := d.service(target.Platform)
			if err != nil {
				return err
			}
			summary, err := svc.Run(ctx, target.URLs)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}
}
