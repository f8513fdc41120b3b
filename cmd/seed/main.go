// seed carga saldos iniciales de stock desde un CSV
// (product_id,warehouse_id,quantity,unit_cost,reorder_point) a través del motor de stock,
// de modo que cada apertura queda en el ledger como una compra.
//
// Uso: go run ./cmd/seed -file saldos.csv [-encoding latin1] [-performed-by carga-inicial]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/jhoicas/inventario-ledger/pkg/retry"
)

func main() {
	file := flag.String("file", "", "CSV de saldos (vacío = stdin)")
	encoding := flag.String("encoding", "utf-8", "codificación del archivo: utf-8, latin1, windows-1252")
	performedBy := flag.String("performed-by", "seed", "usuario registrado en los movimientos")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed"})

	var in io.Reader = os.Stdin
	source := "stdin"
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("abrir CSV")
		}
		defer f.Close()
		in, source = f, *file
	}
	in, err = decodeInput(in, *encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación")
	}
	rows, err := parseRows(in)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}

	ledgerUC := inventory.NewLedgerUseCase(
		postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		postgres.NewStockRecordRepository(pool),
		postgres.NewMovementRepository(pool),
		postgres.NewCatalogRepository(pool),
		nil, nil,
		log.Zerolog(),
	)

	retryLog := log.Component("retry")
	policy := retry.Policy{
		MaxAttempts:     cfg.Ledger.RetryMaxAttempts,
		InitialInterval: cfg.Ledger.RetryInitialInterval,
		MaxInterval:     cfg.Ledger.RetryMaxInterval,
		Multiplier:      2,
		OnRetry: func(err error, wait time.Duration) {
			retryLog.Warn().Err(err).Dur("wait", wait).Msg("conflicto, reintentando")
		},
	}

	start := time.Now()
	s, err := seed(ctx, ledgerUC, rows, policy, *performedBy, source, log.Component("seed"))
	if err != nil {
		log.Error().Err(err).Int("records", s.Records).Int("purchases", s.Purchases).Msg("carga interrumpida")
		os.Exit(1)
	}
	log.Info().
		Int("records", s.Records).
		Int("purchases", s.Purchases).
		Int("skipped", s.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("carga terminada")
}
