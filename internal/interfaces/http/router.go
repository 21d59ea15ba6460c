package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/auth"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/movimientos"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/paquetes"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/reportes"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	PaqueteUC    *paquetes.PaqueteUseCase
	MovimientoUC *movimientos.RegistrarUseCase
	ReporteUC    *reportes.ReporteUseCase
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/password/solicitar-reset", authHandler.SolicitarReset)
	authGroup.Post("/password/reset", authHandler.ResetPassword)

	// Rastreo público por código y QR de etiqueta
	paqueteHandler := NewPaqueteHandler(deps.PaqueteUC)
	api.Get("/rastreo/:codigo", paqueteHandler.Rastrear)
	api.Get("/paquetes/:id/qr", paqueteHandler.ImagenQR)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Segundo factor (cualquier usuario autenticado)
	protected.Post("/auth/2fa/generar", authHandler.Generar2FA)
	protected.Post("/auth/2fa/habilitar", authHandler.Habilitar2FA)

	// Empleados (solo administrador)
	protected.Post("/empleados", RequireRole(entity.RolAdministrador), authHandler.CrearEmpleado)

	// Paquetes
	operativo := RequireRole(entity.RolAdministrador, entity.RolEmpleado)
	paquetesGroup := protected.Group("/paquetes")
	paquetesGroup.Post("/", operativo, paqueteHandler.Create)
	paquetesGroup.Get("/mios", RequireRole(entity.RolCliente), paqueteHandler.MisPaquetes)
	paquetesGroup.Get("/recientes", operativo, paqueteHandler.Recientes)
	paquetesGroup.Get("/", operativo, paqueteHandler.List)
	paquetesGroup.Get("/:id", paqueteHandler.GetByID)
	paquetesGroup.Post("/:id/confirmar-recepcion", RequireRole(entity.RolCliente), paqueteHandler.ConfirmarRecepcion)

	// Movimientos (personal operativo)
	movimientoHandler := NewMovimientoHandler(deps.MovimientoUC)
	movimientosGroup := protected.Group("/movimientos", operativo)
	movimientosGroup.Post("/", movimientoHandler.Registrar)
	movimientosGroup.Get("/rango-fechas", movimientoHandler.PorRango)
	movimientosGroup.Get("/empleado/:id", movimientoHandler.PorEmpleado)
	paquetesGroup.Get("/:id/movimientos", movimientoHandler.Historial)

	// Métricas de cumplimiento
	metricas := protected.Group("/metricas")
	metricas.Get("/satisfaccion", RequireRole(entity.RolAdministrador), paqueteHandler.SatisfaccionGlobal)
	metricas.Get("/satisfaccion/mia", RequireRole(entity.RolCliente), paqueteHandler.SatisfaccionCliente)
	metricas.Get("/satisfaccion/empleado/:id", RequireRole(entity.RolAdministrador), paqueteHandler.SatisfaccionEmpleado)

	// Reportes (solo administrador)
	reporteHandler := NewReporteHandler(deps.ReporteUC)
	protected.Get("/reportes/trazabilidad", RequireRole(entity.RolAdministrador), reporteHandler.Trazabilidad)
}
