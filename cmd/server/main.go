package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/product_api/internal/config"
	"github.com/Skotchmaster/product_api/internal/es"
	"github.com/Skotchmaster/product_api/internal/httpserver"
	"github.com/Skotchmaster/product_api/internal/logging"
	middleware "github.com/Skotchmaster/product_api/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/product_api/internal/middleware/logging"
	"github.com/Skotchmaster/product_api/internal/mykafka"
	"github.com/Skotchmaster/product_api/internal/service"
	"github.com/Skotchmaster/product_api/internal/store"
	"github.com/Skotchmaster/product_api/internal/tokens"
)

type eventProducer interface {
	service.Publisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Open(ctx, cfg)
	cancel()
	if err != nil {
		logger.Error("store open failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("store connected", "driver", cfg.StoreDriver)

	var producer eventProducer = mykafka.Nop{}
	if cfg.KafkaEnabled() {
		p, err := mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka producer failed", "error", err)
			os.Exit(1)
		}
		producer = p
	}

	productSvc := &service.ProductService{Repo: st, Events: producer}
	if cfg.SearchEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := es.NewClient(ctx, es.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
		cancel()
		if err != nil {
			logger.Error("elasticsearch unavailable", "error", err)
			os.Exit(1)
		}
		productSvc.Index = es.NewProductIndex(client, cfg.ESProductIndex)
	}

	issuer := tokens.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL)

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Users:         &httpserver.UsersHTTP{Svc: &service.UserService{Repo: st, Tokens: issuer, Events: producer}},
		Products:      &httpserver.ProductsHTTP{Svc: productSvc},
		Auth:          middleware.NewBearerAuth(issuer),
		Ready:         st.Ping,
		SearchEnabled: cfg.SearchEnabled(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
