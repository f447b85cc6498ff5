// Package main runs the idle game in the current terminal.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/app"
	"github.com/cory-johannsen/idlegather/internal/frontend/handlers"
	"github.com/cory-johannsen/idlegather/internal/observability"
	"github.com/cory-johannsen/idlegather/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty runs on defaults")
	noColor := flag.Bool("no-color", false, "disable ANSI colors")
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

	ctx := context.Background()
	game, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("building game", zap.Error(err))
	}
	defer game.Close()

	color := !*noColor && os.Getenv("NO_COLOR") == ""
	conn := handlers.NewConsoleConn(os.Stdin, os.Stdout, color)
	session := handlers.NewLineSession(game.Engine, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("engine", server.NewContextService(game.Engine.Run))
	lifecycle.Add("console", server.NewContextService(func(ctx context.Context) error {
		return session.Serve(ctx, conn)
	}))

	logger.Info("console game initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("game error", zap.Error(err))
		game.Close()
		os.Exit(1)
	}
}
