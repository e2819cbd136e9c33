package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/farm-market/internal/cart"
	"github.com/MikeMC777/farm-market/internal/config"
	"github.com/MikeMC777/farm-market/internal/db"
	"github.com/MikeMC777/farm-market/internal/grpcx"
	"github.com/MikeMC777/farm-market/internal/httpx"
	"github.com/MikeMC777/farm-market/internal/logging"
	prod "github.com/MikeMC777/farm-market/internal/product"
)

// @title        Farm Market Catalog API
// @version      1.0
// @description  Product catalog and browsing-session carts for the farm market storefront.
// @BasePath     /

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:          "catalog-service",
		Short:        "Farm market product catalog and cart API",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(v), newMigrateCommand(v), newHealthCommand())
	return root
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog HTTP API and the gRPC health service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(v, cmd)
			return serve(cmd.Context(), v)
		},
	}
	f := cmd.Flags()
	f.String("http-addr", "", "HTTP listen address (env HTTP_ADDR)")
	f.String("grpc-addr", "", "gRPC health listen address (env GRPC_ADDR)")
	f.String("store", "", "catalog store: postgres or sqlite (env STORE_DRIVER)")
	return cmd
}

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the products table, optionally loading the starter catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(v, cmd)
			return migrate(cmd.Context(), v, seed)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&seed, "seed", false, "insert the starter catalog when the table is empty")
	f.String("store", "", "catalog store: postgres or sqlite (env STORE_DRIVER)")
	return cmd
}

func newHealthCommand() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health service; exits non-zero unless SERVING",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			st, err := grpcx.Check(ctx, addr, grpcx.CatalogService)
			if err != nil {
				return err
			}
			cmd.Println(st.String())
			if st != healthpb.HealthCheckResponse_SERVING {
				return errors.Errorf("catalog is %s", st)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", "localhost:50052", "gRPC health address")
	f.DurationVar(&timeout, "timeout", 3*time.Second, "health check timeout")
	return cmd
}

// bindFlags ties the running command's flags to their viper keys. Binding
// happens at run time because serve and migrate share the store key.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	keys := map[string]string{
		"http-addr": config.KeyHTTPAddr,
		"grpc-addr": config.KeyGRPCAddr,
		"store":     config.KeyStoreDriver,
	}
	for name, key := range keys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
}

type catalogStore interface {
	prod.Repository
	prod.Seeder
}

type store struct {
	repo    catalogStore
	migrate func(ctx context.Context) error
	close   func()
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	if cfg.StoreDriver == config.StoreSQLite {
		gdb, err := db.OpenSQLite(cfg.SQLitePath, cfg.LogMode == "production")
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		return &store{
			repo:    prod.NewGormRepo(gdb),
			migrate: func(context.Context) error { return nil }, // OpenSQLite already migrated
			close:   func() { _ = sqlDB.Close() },
		}, nil
	}

	pool, err := db.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	return &store{
		repo:    prod.NewPGRepo(pool, cfg.QueryTimeout),
		migrate: func(ctx context.Context) error { return db.Migrate(ctx, pool) },
		close:   pool.Close,
	}, nil
}

func setup(v *viper.Viper) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogMode, cfg.LogFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	zap.ReplaceGlobals(logger)
	logger.Info("config",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("grpc_addr", cfg.GRPCAddr),
		zap.String("store", cfg.StoreDriver),
		zap.Duration("cart_idle_ttl", cfg.CartIdleTTL),
	)
	return cfg, logger, nil
}

func migrate(ctx context.Context, v *viper.Viper, seed bool) error {
	cfg, logger, err := setup(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if err := st.migrate(ctx); err != nil {
		return err
	}
	logger.Info("schema applied")
	if !seed {
		return nil
	}
	n, err := prod.Seed(ctx, st.repo)
	if err != nil {
		return err
	}
	logger.Info("starter catalog", zap.Int("inserted", n))
	return nil
}

func serve(ctx context.Context, v *viper.Viper) error {
	cfg, logger, err := setup(v)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(logger))

	sessions := cart.NewSessionStore(cfg.CartIdleTTL, cart.WithNotifier(cart.NotifierFunc(func(sid, msg string) {
		logger.Info("cart", zap.String("session", sid), zap.String("notice", msg))
	})))
	registerRoutes(r, st.repo, sessions, cfg.CurrencySymbol)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	grpcSrv, hs := grpcx.NewServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("catalog-service listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return err
		}
		logger.Info("grpc health listening", zap.String("addr", cfg.GRPCAddr))
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		grpcx.Watch(gctx, hs, st.repo, 15*time.Second)
		return nil
	})
	g.Go(func() error {
		sessions.Run(gctx, time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
