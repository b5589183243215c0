package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/Compuestos-api/internal/application/catalog"
	appledger "github.com/jhoicas/Compuestos-api/internal/application/ledger"
	apporder "github.com/jhoicas/Compuestos-api/internal/application/order"
	"github.com/jhoicas/Compuestos-api/internal/domain/repository"
	"github.com/jhoicas/Compuestos-api/internal/infrastructure/excel"
	"github.com/jhoicas/Compuestos-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Compuestos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Compuestos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Compuestos-api/internal/interfaces/http"
	"github.com/jhoicas/Compuestos-api/pkg/config"
	"github.com/jhoicas/Compuestos-api/pkg/logger"
)

// runMigrations aplica las migraciones goose sobre la base antes de abrir el
// pool de la aplicación.
func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	var (
		materialRepo repository.MaterialRepository
		entryRepo    repository.LedgerEntryRepository
		formulaRepo  repository.FormulaRepository
		orderRepo    repository.OrderRepository
		ledgerTx     appledger.TxRunner
		orderTx      apporder.TxRunner
	)

	// DB_DRIVER=memory arranca sin PostgreSQL: útil para demos y entornos
	// efímeros. El backend por defecto es postgres.
	if cfg.DB.Driver == "memory" {
		store := memory.NewStore()
		materialRepo = memory.NewMaterialRepository(store)
		entryRepo = memory.NewLedgerEntryRepository(store)
		formulaRepo = memory.NewFormulaRepository(store)
		orderRepo = memory.NewOrderRepository(store)
		txRunner := memory.NewTxRunner(store)
		ledgerTx = txRunner
		orderTx = txRunner
	} else {
		if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}

		ctx := context.Background()
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		materialRepo = postgres.NewMaterialRepository(pool)
		entryRepo = postgres.NewLedgerEntryRepository(pool)
		formulaRepo = postgres.NewFormulaRepository(pool)
		orderRepo = postgres.NewOrderRepository(pool)
		txRunner := postgres.NewTxRunner(pool)
		ledgerTx = txRunner
		orderTx = txRunner
	}

	bookExporter := excel.NewStockBookExporter()
	sheetGenerator := infrapdf.NewMarotoSheetGenerator()

	ledgerUC := appledger.NewLedgerUseCase(ledgerTx, materialRepo, entryRepo, formulaRepo, bookExporter)
	formulaUC := catalog.NewFormulaUseCase(formulaRepo)
	submitOrderUC := apporder.NewSubmitOrderUseCase(orderTx, formulaRepo, orderRepo, sheetGenerator, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Compuestos API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:       ledgerUC,
		FormulaUC:      formulaUC,
		SubmitOrderUC:  submitOrderUC,
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
