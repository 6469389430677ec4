package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	httpapi "willgate/internal/http"
	jwttoken "willgate/internal/jwt_token"
	"willgate/internal/platform/httpserver"
	"willgate/internal/platform/metrics"
	"willgate/internal/workflow/adapters"
	workflowhandler "willgate/internal/workflow/handler"
	workflowmetrics "willgate/internal/workflow/metrics"
	"willgate/internal/workflow/service"
	"willgate/internal/workflow/worker"
	"willgate/pkg/platform/ratelimit"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), ctx)
		},
	}
}

func serve(ctx context.Context, cc *commandContext) error {
	cfg, log := cc.cfg, cc.logger

	deps, err := buildDependencies(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer deps.close()

	reg := metrics.NewRegistry()
	svc := service.New(
		deps.ledger,
		adapters.NewIdentityAdapter(deps.ledger),
		deps.decoder,
		service.WithLogger(log),
		service.WithMetrics(workflowmetrics.New(reg)),
		service.WithAuditPublisher(deps.audit),
		service.WithStore(deps.store),
		service.WithTracer(otel.Tracer("willgate/workflow")),
		service.WithLivenessWindow(cfg.Workflow.LivenessWindow),
		service.WithDistributionTimeout(cfg.Workflow.DistributionTimeout),
		service.WithAutoDistribute(cfg.Workflow.AutoDistribute),
	)
	restored, err := svc.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore sessions: %w", err)
	}
	log.InfoContext(ctx, "sessions restored", "count", restored)

	validator := jwttoken.NewJWTServiceAdapter(
		jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience),
	)
	var limiter *ratelimit.Limiter
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit, cfg.RateWindow)
	}
	router := httpapi.NewRouter(log, reg, deps.health, limiter,
		workflowhandler.New(svc, deps.audit, validator, cfg.AdminToken, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	runner := worker.New(svc, worker.Config{
		TickInterval:       cfg.Workflow.TickInterval,
		CheckpointInterval: cfg.Workflow.CheckpointInterval,
		SweepInterval:      cfg.Workflow.DistributionSweep,
	}, worker.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.ShutdownGrace, log)
	})
	g.Go(func() error {
		return runner.Run(gctx)
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("willgate stopped")
	return nil
}
