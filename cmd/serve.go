package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coverscan/coverscan/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server with recurring ingestion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// The store is guaranteed non-empty before the first request.
		if err := env.Runner.EnsureSeeded(ctx); err != nil {
			return eris.Wrap(err, "seed store")
		}

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}
		api := server.New(serverCfg, env.Store, env.Engine, env.Runner)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return api.ListenAndServe(gctx)
		})
		g.Go(func() error {
			return env.Runner.Schedule(gctx, cfg.Ingest.Interval(), cfg.Ingest.RunOnStart)
		})

		if err := g.Wait(); err != nil && !eris.Is(err, context.Canceled) {
			return eris.Wrap(err, "serve")
		}
		zap.L().Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
