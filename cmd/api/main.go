package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/attar/internal/auth"
	"github.com/MrJamesThe3rd/attar/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/attar/internal/catalog/store"
	"github.com/MrJamesThe3rd/attar/internal/config"
	"github.com/MrJamesThe3rd/attar/internal/customer"
	customerStore "github.com/MrJamesThe3rd/attar/internal/customer/store"
	"github.com/MrJamesThe3rd/attar/internal/database"
	attarHttp "github.com/MrJamesThe3rd/attar/internal/http"
	catalogHandler "github.com/MrJamesThe3rd/attar/internal/http/catalog"
	customerHandler "github.com/MrJamesThe3rd/attar/internal/http/customer"
	ingestHandler "github.com/MrJamesThe3rd/attar/internal/http/ingest"
	txHandler "github.com/MrJamesThe3rd/attar/internal/http/transaction"
	"github.com/MrJamesThe3rd/attar/internal/transaction"
	txStore "github.com/MrJamesThe3rd/attar/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		catalogService     = catalog.NewService(catalogStore.New(db))
		customerService    = customer.NewService(customerStore.New(db))
	)

	var (
		transactionH = txHandler.NewHandler(transactionService)
		ingestH      = ingestHandler.NewHandler(transactionService)
		catalogH     = catalogHandler.NewHandler(catalogService, cfg.Catalog.DefaultTaxRate)
		customerH    = customerHandler.NewHandler(customerService)
	)

	router := attarHttp.New(attarHttp.Options{
		Signer:         auth.NewSigner(cfg.Auth.Secret, 0),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, transactionH, ingestH, catalogH, customerH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	srv := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := srv.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
