package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tradie-match-server/database"
	"tradie-match-server/jobs"
	"tradie-match-server/routes"
)

const (
	paymentStartInterval = time.Second
	tokenCleanupInterval = 24 * time.Hour
	limiterSweepInterval = 10 * time.Minute
	shutdownTimeout      = 15 * time.Second
)

func (c *cli) serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations before serving")
	return cmd
}

func (c *cli) serve(ctx context.Context, migrate bool) error {
	log := c.log
	gin.SetMode(c.cfg.Server.GinMode)

	a, err := newApp(ctx, c.cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	if migrate {
		if err := database.Migrate(ctx, a.db, log); err != nil {
			return err
		}
	}

	router, limiters := routes.NewRouter(a.routerDeps())
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	srv := &http.Server{
		Addr:              ":" + c.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepers := make([]jobs.Sweeper, 0, len(limiters))
	for _, l := range limiters {
		sweepers = append(sweepers, l)
	}
	background := []interface {
		Start()
		Stop()
	}{
		jobs.NewPaymentStartJob(a.jobs, paymentStartInterval, log),
		jobs.NewTokenCleanupJob(a.tokens, tokenCleanupInterval, log),
		jobs.NewLimiterCleanupJob(limiterSweepInterval, log, sweepers...),
	}
	for _, job := range background {
		job.Start()
	}
	defer func() {
		for _, job := range background {
			job.Stop()
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Info("🚀 Server starting", zap.String("port", c.cfg.Server.Port), zap.String("mode", gin.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("🛑 Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("❌ Server stopped with error", err)
		return err
	}
	log.Info("✅ Server stopped")
	return nil
}
