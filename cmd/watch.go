package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tristendillon/minireact/core/generator"
	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/metrics"
	"github.com/tristendillon/minireact/core/server"
)

var serveMetrics bool

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Transpiles the source tree and keeps it in sync",
	Long: `Runs a full build, then re-transforms or re-copies each file as it changes
until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("watch called")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		recorder := metrics.NewRecorder()
		t, err := generator.New(cfg, generator.WithMetrics(recorder))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		if serveMetrics || cfg.Server.Enabled {
			srv := server.NewServer(cfg, recorder.Handler())
			g.Go(func() error { return srv.Start(ctx) })
		}
		g.Go(func() error {
			defer stop()
			return t.Watch(ctx)
		})

		err = g.Wait()
		if err == nil || errors.Is(err, context.Canceled) {
			logger.Info("Stopped watching")
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Serve Prometheus metrics while watching")
}
