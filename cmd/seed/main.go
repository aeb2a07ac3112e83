package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"dots-marketplace/internal/config"
	"dots-marketplace/internal/db"
	"dots-marketplace/internal/logger"
	productrepo "dots-marketplace/internal/repository/product"
	"dots-marketplace/internal/seed"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Error("connect db", zap.Error(err))
		return 1
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, productrepo.NewPostgres(pool, log))
	if err != nil {
		log.Error("seed apply", zap.Error(err))
		return 1
	}

	log.Info("seed applied", zap.Int("products", n))
	return 0
}
