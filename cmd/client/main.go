package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/notekeeper/internal/client/cli"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Printf("config error: %v", err)
		os.Exit(2)
	}

	// The terminal belongs to the REPL; logs go to a rotated file.
	logFile := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	defer logFile.Close()
	logger := logging.NewJSONLogger(logFile, slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
