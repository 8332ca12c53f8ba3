package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/invoice-builder/internal/application/billing"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/invoice-builder/internal/infrastructure/pdf"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/postgres"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/qrcode"
	infraredis "github.com/jhoicas/invoice-builder/internal/infrastructure/redis"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/telemetry"
	"github.com/jhoicas/invoice-builder/internal/infrastructure/ubl"
	httpRouter "github.com/jhoicas/invoice-builder/internal/interfaces/http"
	"github.com/jhoicas/invoice-builder/pkg/config"
	"github.com/jhoicas/invoice-builder/pkg/logger"
)

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
		Str("draft_store", cfg.Draft.Store).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	store, closeStore, err := openDraftStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("draft_store", cfg.Draft.Store).Msg("almacén de borradores")
	}
	defer closeStore()

	metrics := telemetry.NewMetrics(telemetry.DefaultNamespace, prometheus.DefaultRegisterer)
	renderer := qrcode.NewRenderer(cfg.Invoice.QRSize)

	sessions := billing.NewSessionManager(store, renderer, metrics, billing.EditorDefaults{
		Currency:      cfg.Invoice.DefaultCurrency,
		TaxRate:       cfg.Invoice.DefaultTaxRate,
		EncodeTimeout: cfg.Invoice.EncodeTimeout,
		KeyPrefix:     cfg.Draft.KeyPrefix,
	}, log.Component("billing"))

	// Exportadores: PDF (maroto) y XML UBL 2.1 (etree)
	documents := billing.NewDocumentUseCase(
		renderer, infrapdf.NewMarotoPDFGenerator(), ubl.NewXMLBuilder(), cfg.Invoice.ExportWait,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 20,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log.Component("http"), metrics))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Invoice Builder API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "draft_store": cfg.Draft.Store})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Sessions:  sessions,
		Documents: documents,
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Component("drafts"),
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
	sessions.Close()

	log.Info().Msg("aplicación detenida")
}

// openDraftStore abre el backend configurado en DRAFT_STORE y devuelve su cierre.
func openDraftStore(ctx context.Context, cfg *config.Config) (repository.DraftRepository, func(), error) {
	switch cfg.Draft.Store {
	case config.DraftStorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		repo := postgres.NewDraftRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil
	case config.DraftStoreRedis:
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return infraredis.NewDraftRepository(rdb, cfg.Draft.TTL), func() { _ = rdb.Close() }, nil
	default:
		return memory.NewDraftRepository(), func() {}, nil
	}
}
