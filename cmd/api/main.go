package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Kardex-api/internal/application/auth"
	"github.com/jhoicas/Kardex-api/internal/application/conciliacion"
	appcosteo "github.com/jhoicas/Kardex-api/internal/application/costeo"
	domcosteo "github.com/jhoicas/Kardex-api/internal/domain/costeo"
	infrapdf "github.com/jhoicas/Kardex-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Kardex-api/internal/interfaces/http"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	transaccionRepo := postgres.NewTransaccionRepository(pool)
	kardexRepo := postgres.NewKardexRepository(pool)
	detalleRepo := postgres.NewDetalleCosteoRepository(pool)
	saldoRepo := postgres.NewSaldoCustodioRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	candados := appcosteo.NewCandadoGrupos()
	costeoUC := appcosteo.NewUseCase(
		txRunner, transaccionRepo, kardexRepo,
		candados, cfg.Costeo.Workers, log,
	)
	tolerancia := domcosteo.Tolerancia{
		Cantidad: cfg.Costeo.ToleranciaCantidad,
		Valor:    cfg.Costeo.ToleranciaValor,
	}
	conciliacionUC := conciliacion.NewUseCase(
		kardexRepo, saldoRepo, transaccionRepo, candados, tolerancia, log,
	)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 60, // las corridas grandes tardan
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CosteoUC:       costeoUC,
		ConciliacionUC: conciliacionUC,
		AuthUC:         authUC,
		DetalleRepo:    detalleRepo,
		PDFGenerator:   pdfGenerator,
		JWTSecret:      cfg.JWT.Secret,
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
