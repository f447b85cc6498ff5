// Package main serves the idle game over Telnet. The simulation keeps
// running between connections; one player may be connected at a time.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/app"
	"github.com/cory-johannsen/idlegather/internal/frontend/handlers"
	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
	"github.com/cory-johannsen/idlegather/internal/observability"
	"github.com/cory-johannsen/idlegather/internal/server"
)

const healthInterval = 30 * time.Second

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting idle server",
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("storage", cfg.Storage.Backend),
	)

	ctx := context.Background()
	game, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building game", zap.Error(err))
	}
	defer game.Close()

	acceptor := telnet.NewAcceptor(cfg.Telnet, handlers.NewLineSession(game.Engine, logger), logger)

	lifecycle := server.NewLifecycle(logger)

	if pool := game.Pool(); pool != nil {
		lifecycle.Add("postgres", server.NewContextService(func(ctx context.Context) error {
			ticker := time.NewTicker(healthInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		}))
	}

	lifecycle.Add("engine", server.NewContextService(game.Engine.Run))

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: func() error {
			return acceptor.ListenAndServe()
		},
		StopFn: func() {
			acceptor.Stop()
		},
	})

	logger.Info("idle server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
