package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/textdao/indexer/internal/config"
	"github.com/textdao/indexer/internal/dispatch"
	"github.com/textdao/indexer/internal/infrastructure/database"
	"github.com/textdao/indexer/internal/infrastructure/gateway"
	"github.com/textdao/indexer/internal/infrastructure/ledger"
	"github.com/textdao/indexer/internal/infrastructure/repository"
	"github.com/textdao/indexer/internal/present/rest"
	"github.com/textdao/indexer/internal/service"
	"github.com/textdao/indexer/internal/telemetry"
	"github.com/textdao/indexer/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	conf, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	traceEndpoint := ""
	if conf.Server.EnableTrace {
		traceEndpoint = conf.Server.TraceEndpoint
	}
	shutdownTracer, err := telemetry.Setup(ctx, "textdao-indexer", traceEndpoint)
	if err != nil {
		logger.Error("failed to setup tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer shutdownTracer(context.Background())

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		logger.Error("failed to connect database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := database.MigratePostgres(db); err != nil {
		logger.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, "", conf.Server.RedisDB)
	mc := database.NewMemcached(conf.Server.MemcachedAddr)

	repos := usecase.Repositories{
		Proposals: repository.NewProposalRepository(db),
		Headers:   repository.NewHeaderRepository(db),
		Commands:  repository.NewCommandRepository(db),
		Actions:   repository.NewActionRepository(db),
		Votes:     repository.NewVoteRepository(db),
		Snapshots: repository.NewSnapshotRepository(db),
		Texts:     repository.NewTextRepository(db),
		Members:   repository.NewMemberRepository(db),
		Config:    repository.NewConfigRepository(db),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	contentGateway := gateway.NewContentGateway(conf.Content.GatewayURL)

	// The projection registers content interest with the resolver; the
	// resolver applies resolved documents back through the projection.
	resolver := service.NewResolverService(contentGateway, conf.Content.QueueSize, registry, logger)
	projection := usecase.NewProjection(repos, resolver, logger)
	resolver.Attach(projection)

	signalService := service.NewSignalService(rdb, logger)
	dispatcher := dispatch.NewDispatcher(projection, dispatch.NewMetrics(registry), signalService, logger)

	ethClient, err := ethclient.DialContext(ctx, conf.Ledger.RPCEndpoint)
	if err != nil {
		logger.Error("failed to connect rpc", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer ethClient.Close()

	feed, err := ledger.NewFeed(
		ethClient,
		ledger.NewRedisCheckpoint(rdb),
		common.HexToAddress(conf.Ledger.ContractAddress),
		conf.Ledger.StartBlock,
		conf.Ledger.PollInterval(),
		logger,
	)
	if err != nil {
		logger.Error("failed to build feed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go resolver.Run(ctx)

	feedErr := make(chan error, 1)
	go func() {
		feedErr <- feed.Run(ctx, dispatcher.Apply)
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("textdao-indexer"))
	}

	handler := rest.NewHandler(usecase.NewQueryUsecase(repos), signalService, mc)
	handler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	go func() {
		if err := e.Start(conf.Server.ListenAddr); err != nil {
			logger.Info("server stopped", slog.String("error", err.Error()))
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-feedErr:
		if err != nil && err != context.Canceled {
			logger.Error("feed halted", slog.String("error", err.Error()))
		}
	}

	if err := e.Shutdown(context.Background()); err != nil {
		logger.Error("server shutdown failed", slog.String("error", err.Error()))
	}
}
