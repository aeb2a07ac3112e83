package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dots-marketplace/internal/config"
	"dots-marketplace/internal/db"
	"dots-marketplace/internal/httpserver"
	"dots-marketplace/internal/logger"
	"dots-marketplace/internal/notify"
	"dots-marketplace/internal/pricing"
	cartrepo "dots-marketplace/internal/repository/cart"
	categoryrepo "dots-marketplace/internal/repository/category"
	orderrepo "dots-marketplace/internal/repository/order"
	productrepo "dots-marketplace/internal/repository/product"
	sessionrepo "dots-marketplace/internal/repository/session"
	"dots-marketplace/internal/seed"
	cartsvc "dots-marketplace/internal/service/cart"
	categorysvc "dots-marketplace/internal/service/category"
	"dots-marketplace/internal/service/checkout"
	ordersvc "dots-marketplace/internal/service/order"
	productsvc "dots-marketplace/internal/service/product"
	sessionsvc "dots-marketplace/internal/service/session"
)

func main() {
	os.Exit(start())
}

// start returns the process exit code. Deferred cleanup, including the logger
// flush, runs before main exits.
func start() int {
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
	log = log.With(zap.String("service", "dots-api"), zap.String("env", cfg.Environment))

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", zap.Error(err))
		return 1
	}
	return 0
}

func uses(cfg config.Config, backend string) bool {
	return cfg.CartBackend == backend || cfg.HistoryBackend == backend
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()
	ready := map[string]httpserver.ReadyCheck{}

	var pool *pgxpool.Pool
	if uses(cfg, config.BackendPostgres) {
		p, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			return fmt.Errorf("connect to db: %w", err)
		}
		defer p.Close()
		pool = p
		ready["db"] = pool.Ping
	}

	var rdb *redis.Client
	if uses(cfg, config.BackendRedis) {
		c, err := db.ConnectRedis(ctx, db.RedisOptions{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer c.Close()
		rdb = c
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	rules, err := cfg.PricingRules()
	if err != nil {
		return err
	}
	calc := pricing.NewCalculator(rules)
	notifier := notify.NewBroadcaster(notify.NewLogSink(log.Named("notify")))
	if rdb != nil {
		notifier.Subscribe(notify.NewRedisSink(rdb, notify.DefaultChannel, log.Named("notify")))
	}

	var (
		cartRepo     cartrepo.Repository
		historyRepo  orderrepo.Repository
		sessionRepo  sessionrepo.Repository
		productRepo  productrepo.Repository
		categoryRepo categoryrepo.Repository
	)
	switch cfg.CartBackend {
	case config.BackendPostgres:
		cartRepo = cartrepo.NewPostgres(pool, log.Named("cart-repo"))
		sessionRepo = sessionrepo.NewPostgres(pool)
	case config.BackendRedis:
		cartRepo = cartrepo.NewRedis(rdb, "")
		sessionRepo = sessionrepo.NewRedis(rdb, "dots_session:")
	default:
		cartRepo = cartrepo.NewMemory()
		sessionRepo = sessionrepo.NewMemory()
	}
	switch cfg.HistoryBackend {
	case config.BackendPostgres:
		historyRepo = orderrepo.NewPostgres(pool, log.Named("order-repo"))
	case config.BackendRedis:
		historyRepo = orderrepo.NewRedis(rdb, "")
	default:
		historyRepo = orderrepo.NewMemory()
	}
	if pool != nil {
		productRepo = productrepo.NewPostgres(pool, log.Named("product-repo"))
		categoryRepo = categoryrepo.NewPostgres(pool)
	} else {
		mem := productrepo.NewMemory()
		n, err := seed.Apply(ctx, mem)
		if err != nil {
			return fmt.Errorf("seed in-memory catalog: %w", err)
		}
		log.Info("using in-memory catalog", zap.Int("products", n))
		productRepo = mem
		categoryRepo = categoryrepo.FromCatalog(mem)
	}

	carts := cartsvc.New(cartsvc.NewStore(cartRepo, calc, log.Named("cart")), calc, notifier)
	orders := ordersvc.New(historyRepo, log.Named("orders"))
	processor := checkout.New(orders, carts, notifier, log.Named("checkout"), checkout.Options{LeadTime: cfg.DeliveryLead})

	srv, err := httpserver.New(cfg.HTTPAddr, log, httpserver.Deps{
		ProductSvc:  productsvc.New(productRepo),
		CategorySvc: categorysvc.New(categoryRepo),
		CartSvc:     carts,
		CheckoutSvc: processor,
		OrderSvc:    orders,
		SessionSvc:  sessionsvc.New(sessionRepo, cfg.SessionTTL),
		ReadyChecks: ready,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}
	log.Info("backends selected",
		zap.String("cart", cfg.CartBackend),
		zap.String("history", cfg.HistoryBackend),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
