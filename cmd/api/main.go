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

	"github.com/tu-usuario/rastreo-paquetes/internal/application/auth"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/movimientos"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/paquetes"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/reportes"
	apprutas "github.com/tu-usuario/rastreo-paquetes/internal/application/rutas"
	infraai "github.com/tu-usuario/rastreo-paquetes/internal/infrastructure/ai"
	infracache "github.com/tu-usuario/rastreo-paquetes/internal/infrastructure/cache"
	infraemail "github.com/tu-usuario/rastreo-paquetes/internal/infrastructure/email"
	infrapdf "github.com/tu-usuario/rastreo-paquetes/internal/infrastructure/pdf"
	"github.com/tu-usuario/rastreo-paquetes/internal/infrastructure/postgres"
	"github.com/tu-usuario/rastreo-paquetes/internal/infrastructure/qrcode"
	infrarutas "github.com/tu-usuario/rastreo-paquetes/internal/infrastructure/rutas"
	httpRouter "github.com/tu-usuario/rastreo-paquetes/internal/interfaces/http"
	"github.com/tu-usuario/rastreo-paquetes/pkg/config"
	"github.com/tu-usuario/rastreo-paquetes/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	appLog := logger.New(logger.Config{
		Env:      cfg.App.Env,
		Level:    "info",
		Servicio: cfg.App.Name,
	})
	log := appLog.Zerolog()
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

	paqueteRepo := postgres.NewPaqueteRepository(pool)
	movimientoRepo := postgres.NewMovimientoRepository(pool)
	usuarioRepo := postgres.NewUsuarioRepository(pool)

	// Caché de consultas públicas — opcional, la aplicación funciona sin Redis.
	var cache ports.Cache
	if cfg.Redis.URL != "" {
		redisCache, err := infracache.NewRedisCache(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisCache.Close()
		cache = redisCache
	} else {
		log.Warn().Msg("REDIS_URL no configurado, operando sin caché")
	}

	// Planificador de rutas: oráculo Gemini con respaldo determinista de
	// corredores. Sin API key se opera solo con el respaldo.
	var oraculo ports.RouteSuggester
	if cfg.Gemini.APIKey != "" {
		oraculo = infraai.NewGeminiRouteService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	} else {
		log.Warn().Msg("GEMINI_API_KEY no configurado, rutas solo por tabla de corredores")
	}
	planner := apprutas.NewPlanner(
		oraculo,
		infrarutas.NewTablaRutas(),
		time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second,
		log,
	)

	// Correo transaccional — opcional, sin SMTP la recuperación de
	// contraseña queda deshabilitada.
	var emailSender ports.EmailSender
	if cfg.SMTP.Host != "" {
		emailSender = infraemail.NewSMTPSender(
			cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User,
			cfg.SMTP.Password, cfg.SMTP.From, cfg.Reset.BaseURL,
		)
	} else {
		log.Warn().Msg("SMTP_HOST no configurado, recuperación por correo deshabilitada")
	}

	authUC := auth.NewAuthUseCase(usuarioRepo, emailSender, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	paqueteUC := paquetes.NewPaqueteUseCase(
		paqueteRepo, movimientoRepo, usuarioRepo,
		planner, cache, qrcode.NewGenerator(),
		cfg.QR.BaseURL, cfg.Almacen.Direccion, log,
	)
	movimientoUC := movimientos.NewRegistrarUseCase(
		paqueteRepo, movimientoRepo, usuarioRepo, cache, log,
	)
	reporteUC := reportes.NewReporteUseCase(
		movimientoRepo, paqueteRepo, usuarioRepo,
		infrapdf.NewMarotoReporteGenerator(), log,
	)

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
		Title:    "Rastreo de Paquetes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		PaqueteUC:    paqueteUC,
		MovimientoUC: movimientoUC,
		ReporteUC:    reporteUC,
		JWTSecret:    cfg.JWT.Secret,
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
