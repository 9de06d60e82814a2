package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/xhad/medscan/pkg/metrics"
	"github.com/xhad/medscan/pkg/store"
	"github.com/xhad/medscan/server"
)

func serveCmd(global *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the extraction API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithMetrics(metrics.New("medscan", reg), reg),
	}

	if a.cfg.Server.StoreResults {
		if a.cfg.Database.URL == "" {
			return errors.New("server.store_results is set but database.url is empty")
		}
		rs, err := store.NewWithConfig(store.StoreConfig{
			ConnString: a.cfg.Database.URL,
			TableName:  a.cfg.Database.TableName,
			BatchSize:  a.cfg.Database.BatchSize,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize result store: %w", err)
		}
		defer rs.Close()
		opts = append(opts, server.WithStore(rs))
	}

	srv := server.New(server.Config{
		Port:         a.cfg.Server.Port,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		RateLimit:    a.cfg.Server.RateLimit,
		Burst:        a.cfg.Server.Burst,
	}, a.pipeline, opts...)

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
