package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/shatter/internal/config"
	"github.com/zeusync/shatter/internal/core/observability/log"
	"github.com/zeusync/shatter/internal/core/session"
	"github.com/zeusync/shatter/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	level := flag.String("level", "", "level to start with, overrides the config")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}
	if *level != "" {
		cfg.Session.Level = *level
	}

	var logger log.Log = log.Nop()
	if *logPath != "" {
		cfg.Log.Output = *logPath
		l, cleanup, err := injector.ProvideLogger(cfg)
		if err != nil {
			fmt.Println("Error creating logger:", err)
			os.Exit(1)
		}
		defer cleanup()
		logger = l
	}

	levels, err := injector.ProvideCatalog(cfg)
	if err != nil {
		fmt.Println("Error loading levels:", err)
		os.Exit(1)
	}

	sess, err := session.New("local", cfg.Session, cfg.World, levels, session.WithLogger(logger))
	if err != nil {
		fmt.Println("Error creating session:", err)
		os.Exit(1)
	}
	defer sess.Close()

	game, err := NewGame(sess)
	if err != nil {
		fmt.Println("Error opening terminal:", err)
		os.Exit(1)
	}
	defer game.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sess.Run(ctx); err != nil {
			logger.Error("Simulation stopped", log.Error(err))
		}
	}()
	game.Run(ctx)
}
