package main

import (
	"github.com/spf13/cobra"

	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/core"
	"github.com/baxromumarov/gig-crawler/internal/project"
)

func newScheduleCommand(a *app) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Re-crawl the configured targets on the configured schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.cfg.Targets) == 0 {
				return &config.ConfigurationError{Input: "targets", Reason: "no crawl targets configured"}
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			d, err := wire(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer d.Close()

			runners := make(map[project.Platform]core.Runner)
			for _, t := range a.cfg.Targets {
				if _, ok := runners[t.Platform]; ok {
					continue
				}
				svc, err := d.service(t.Platform)
				if err != nil {
					return err
				}
				runners[t.Platform] = svc
			}

			opts := []core.SchedulerOption{core.WithSchedulerLogger(a.logger)}
			if d.store != nil {
				opts = append(opts, core.WithRetention(d.store, a.cfg.Retention))
			}
			sched := core.NewScheduler(a.cfg.Schedule, a.cfg.Targets, runners, opts...)

			if once {
				sched.RunOnce(ctx)
				return nil
			}
			if err := sched.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			<-sched.Stop().Done()
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")
	return cmd
}
