package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/marketgo/internal/auth"
	"github.com/nikolayk812/marketgo/internal/blob"
	"github.com/nikolayk812/marketgo/internal/config"
	"github.com/nikolayk812/marketgo/internal/handler"
	"github.com/nikolayk812/marketgo/internal/notify"
	"github.com/nikolayk812/marketgo/internal/port"
	"github.com/nikolayk812/marketgo/internal/repository"
	"github.com/nikolayk812/marketgo/internal/service"
	"github.com/sirupsen/logrus"
)

//go:embed migrations.sql
var migrationSQL string

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	if cfg.Development() {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations executed")

	userRepo := repository.NewUser(pool)
	productRepo := repository.NewProduct(pool)
	categoryRepo := repository.NewCategory(pool)
	cartRepo := repository.NewCart(pool)
	orderRepo := repository.NewOrder(pool)
	transactor := repository.NewTransactor(pool)

	tokens := auth.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	images := blob.NewFS(cfg.BlobDir, cfg.BlobBaseURL)

	var notifier port.Notifier = notify.NewLog(log)
	if cfg.SMTPAddr != "" {
		notifier = notify.NewSMTP(cfg.SMTPAddr, cfg.SMTPFrom)
	}

	userSvc := service.NewUser(userRepo, orderRepo, tokens, notifier, log)
	productSvc := service.NewProduct(productRepo, categoryRepo, images, log)
	cartSvc := service.NewCart(cartRepo, productRepo, transactor, notifier, log)

	h := handler.New(userSvc, productSvc, cartSvc, userRepo, tokens, log, cfg.Development())

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	router.PathPrefix("/images/").Handler(
		http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.BlobDir))))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}
