package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"dots-marketplace/internal/config"
	"dots-marketplace/internal/db"
	"dots-marketplace/internal/importer"
	"dots-marketplace/internal/logger"
	"dots-marketplace/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to artisan catalog CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(filePath))
}

func run(filePath string) int {
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

	f, err := os.Open(filePath)
	if err != nil {
		log.Error("open file", zap.Error(err))
		return 1
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, log), log)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Error("import failed", zap.Int("imported", count), zap.Error(err))
		return 1
	}

	log.Info("import finished",
		zap.String("file", filePath),
		zap.Int("products", count),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
	return 0
}
