package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/movimientos"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/tracking"
)

// MovimientoHandler maneja el registro de movimientos y la consulta de la
// bitácora.
type MovimientoHandler struct {
	uc *movimientos.RegistrarUseCase
}

// NewMovimientoHandler construye el handler de movimientos.
func NewMovimientoHandler(uc *movimientos.RegistrarUseCase) *MovimientoHandler {
	return &MovimientoHandler{uc: uc}
}

// Registrar godoc
// @Summary      Registrar un movimiento en la bitácora de un paquete
// @Tags         movimientos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegistrarMovimientoRequest  true  "paquete, estado y ubicación"
// @Success      201   {object}  dto.RegistrarMovimientoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/movimientos [post]
func (h *MovimientoHandler) Registrar(c *fiber.Ctx) error {
	var in dto.RegistrarMovimientoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Registrar(c.Context(), in, GetUserID(c))
	if err != nil {
		var te *tracking.TransicionInvalidaError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "paquete no encontrado"})
		case errors.Is(err, domain.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EMPLEADO_NOT_FOUND", Message: "el repartidor no existe"})
		case errors.As(err, &te):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "TRANSICION_INVALIDA", Message: te.Error()})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "otro repartidor actualizó el paquete, consulte y reintente"})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "solo personal operativo puede registrar movimientos"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paquete, estado conocido y ubicación son requeridos"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PorEmpleado godoc
// @Summary      Movimientos registrados por un repartidor
// @Tags         movimientos
// @Produce      json
// @Param        id     path   string  true   "ID del repartidor"
// @Param        desde  query  string  false  "inicio del periodo (RFC3339)"
// @Param        hasta  query  string  false  "fin del periodo (RFC3339)"
// @Success      200  {array}   dto.MovimientoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/movimientos/empleado/{id} [get]
func (h *MovimientoHandler) PorEmpleado(c *fiber.Ctx) error {
	desde, err := parseFecha(c.Query("desde"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde debe ser RFC3339"})
	}
	hasta, err := parseFecha(c.Query("hasta"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta debe ser RFC3339"})
	}

	out, err := h.uc.ListarPorEmpleado(c.Params("id"), desde, hasta)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EMPLEADO_NOT_FOUND", Message: "el repartidor no existe"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde y hasta deben venir juntos y en orden"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(out)
}

// PorRango godoc
// @Summary      Movimientos de toda la operación en un periodo
// @Tags         movimientos
// @Produce      json
// @Param        desde  query  string  true  "inicio del periodo (RFC3339)"
// @Param        hasta  query  string  true  "fin del periodo (RFC3339)"
// @Success      200  {array}   dto.MovimientoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/movimientos/rango-fechas [get]
func (h *MovimientoHandler) PorRango(c *fiber.Ctx) error {
	desde, err := time.Parse(time.RFC3339, c.Query("desde"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde es requerido en RFC3339"})
	}
	hasta, err := time.Parse(time.RFC3339, c.Query("hasta"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta es requerido en RFC3339"})
	}

	out, err := h.uc.ListarPorRango(desde, hasta)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el periodo es inválido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Historial godoc
// @Summary      Bitácora de un paquete
// @Tags         movimientos
// @Produce      json
// @Param        id  path  string  true  "ID del paquete"
// @Success      200  {array}   dto.MovimientoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/paquetes/{id}/movimientos [get]
func (h *MovimientoHandler) Historial(c *fiber.Ctx) error {
	out, err := h.uc.HistorialDePaquete(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "paquete no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}
