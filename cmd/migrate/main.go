package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"dots-marketplace/internal/config"
	"dots-marketplace/internal/db"
	"dots-marketplace/internal/logger"
	"dots-marketplace/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()
	os.Exit(run(*down))
}

func run(down int) int {
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

	if down > 0 {
		if err := migrate.Rollback(ctx, pool, down); err != nil {
			log.Error("rollback migrations", zap.Error(err))
			return 1
		}
	} else if err := migrate.Apply(ctx, pool); err != nil {
		log.Error("apply migrations", zap.Error(err))
		return 1
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		log.Error("read schema version", zap.Error(err))
		return 1
	}
	log.Info("migrations done", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return 0
}
