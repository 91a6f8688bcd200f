package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/varsha-shop/internal/api"
	"github.com/example/varsha-shop/internal/auth"
	"github.com/example/varsha-shop/internal/config"
	"github.com/example/varsha-shop/internal/domain/order"
	"github.com/example/varsha-shop/internal/domain/product"
	"github.com/example/varsha-shop/internal/domain/user"
	"github.com/example/varsha-shop/internal/infrastructure/kafka"
	"github.com/example/varsha-shop/internal/infrastructure/store"
	"github.com/example/varsha-shop/internal/payment"
	"github.com/example/varsha-shop/internal/query"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[API] %v", err)
	}
}

// run wires the API process. Deferred cleanup runs on every return path.
func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[API] ========================================")
	log.Printf("[API] %s - shop API", cfg.StoreBrand)
	log.Println("[API] ========================================")
	log.Printf("[API] Datastore: %s", cfg.Datastore)
	log.Printf("[API] Razorpay: %v", cfg.GatewayEnabled())
	log.Printf("[API] Events: %v", cfg.EventsEnabled())

	backend, release, err := store.OpenBackend(ctx, store.OpenOptions{
		Kind:           cfg.Datastore,
		Path:           cfg.DBPath,
		DatabaseURL:    cfg.DatabaseURL,
		DynamoTable:    cfg.DynamoTable,
		DynamoEndpoint: cfg.DynamoEndpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer release()

	ds := store.NewDocumentStore(backend)
	defer ds.Close()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn)

	orderOpts := order.Options{Currency: cfg.StoreCurrency}
	if cfg.GatewayEnabled() {
		orderOpts.Gateway = payment.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayAPIURL)
		orderOpts.KeySecret = cfg.RazorpayKeySecret
	}
	if cfg.EventsEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		orderOpts.Publisher = producer
		log.Printf("[API] Publishing order events to %s on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	productSvc := product.NewService(ds, product.Defaults{Brand: cfg.StoreBrand, Currency: cfg.StoreCurrency})
	orderSvc := order.NewService(ds, orderOpts)
	userSvc := user.NewService(ds, jwtService)
	queryHandler := query.NewHandler(ds, cfg.StoreCurrency)

	if _, err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("[API] Admin reconciliation failed: %v", err)
	}

	handlers := api.NewHandlers(productSvc, orderSvc, queryHandler, cfg.AdminKey)
	authHandlers := api.NewAuthHandlers(userSvc)
	router := api.NewRouter(handlers, authHandlers, jwtService, api.RouterConfig{
		AdminKey:    cfg.AdminKey,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return serve(server, sigCh, cancel)
}

// serve runs server until stop fires or the listener fails.
func serve(server *http.Server, stop <-chan os.Signal, onStop func()) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[API] Server started on %s", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		onStop()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	log.Println("[API] Shutting down...")
	onStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
	return nil
}
