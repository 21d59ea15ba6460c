package http

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/paquetes"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/tracking"
)

// PaqueteHandler maneja el alta, las consultas y las métricas de paquetes.
type PaqueteHandler struct {
	uc *paquetes.PaqueteUseCase
}

// NewPaqueteHandler construye el handler de paquetes.
func NewPaqueteHandler(uc *paquetes.PaqueteUseCase) *PaqueteHandler {
	return &PaqueteHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar un paquete recolectado
// @Tags         paquetes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearPaqueteRequest  true  "descripción y cliente"
// @Success      201   {object}  dto.PaqueteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/paquetes [post]
func (h *PaqueteHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearPaqueteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Crear(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CLIENTE_NOT_FOUND", Message: "el cliente no existe"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "descripción y cliente con estado registrado son requeridos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Consultar un paquete con su historial
// @Tags         paquetes
// @Produce      json
// @Param        id   path      string  true  "ID del paquete"
// @Success      200  {object}  dto.PaqueteResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/paquetes/{id} [get]
func (h *PaqueteHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.ConsultarPorID(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "paquete no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Rastrear godoc
// @Summary      Consulta pública por código de rastreo
// @Tags         rastreo
// @Produce      json
// @Param        codigo  path      string  true  "código PKG-XXXXXXXX"
// @Success      200     {object}  dto.PaqueteResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/rastreo/{codigo} [get]
func (h *PaqueteHandler) Rastrear(c *fiber.Ctx) error {
	out, err := h.uc.ConsultarPorCodigo(c.Context(), c.Params("codigo"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "código de rastreo no encontrado"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "código de rastreo requerido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ImagenQR godoc
// @Summary      Imagen QR del código de rastreo
// @Tags         paquetes
// @Produce      png
// @Param        id  path  string  true  "ID del paquete"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/paquetes/{id}/qr [get]
func (h *PaqueteHandler) ImagenQR(c *fiber.Ctx) error {
	imagen, err := h.uc.GenerarImagenQR(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "paquete no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(imagen)
}

// MisPaquetes godoc
// @Summary      Paquetes del cliente autenticado
// @Tags         paquetes
// @Produce      json
// @Success      200  {array}  dto.PaqueteResponse
// @Security     BearerAuth
// @Router       /api/paquetes/mios [get]
func (h *PaqueteHandler) MisPaquetes(c *fiber.Ctx) error {
	out, err := h.uc.ListarPorCliente(GetEmail(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Buscar paquetes por repartidor, cliente, estado y periodo
// @Tags         paquetes
// @Produce      json
// @Param        empleado_id    query  string  false  "ID del repartidor"
// @Param        cliente_email  query  string  false  "email del cliente"
// @Param        estado         query  string  false  "RECOLECTADO | EN_TRANSITO | ENTREGADO | CANCELADO"
// @Param        mes            query  string  false  "mes en formato 2006-01 (excluyente con desde/hasta)"
// @Param        desde          query  string  false  "fecha RFC 3339"
// @Param        hasta          query  string  false  "fecha RFC 3339"
// @Success      200  {array}   dto.PaqueteResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/paquetes [get]
func (h *PaqueteHandler) List(c *fiber.Ctx) error {
	filtro := paquetes.FiltroConsulta{
		EmpleadoID:   c.Query("empleado_id"),
		ClienteEmail: c.Query("cliente_email"),
		Estado:       c.Query("estado"),
		Mes:          c.Query("mes"),
	}
	var err error
	if filtro.Desde, err = parseFecha(c.Query("desde")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde debe ser RFC 3339"})
	}
	if filtro.Hasta, err = parseFecha(c.Query("hasta")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta debe ser RFC 3339"})
	}

	out, err := h.uc.ListarFiltrados(filtro)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos: estado desconocido o mes combinado con rango"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Recientes godoc
// @Summary      Últimos paquetes registrados
// @Tags         paquetes
// @Produce      json
// @Param        limite  query  int  false  "cantidad, por defecto 10"
// @Success      200  {array}  dto.PaqueteResponse
// @Security     BearerAuth
// @Router       /api/paquetes/recientes [get]
func (h *PaqueteHandler) Recientes(c *fiber.Ctx) error {
	limite, _ := strconv.Atoi(c.Query("limite", "10"))
	out, err := h.uc.ListarRecientes(limite)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// SatisfaccionGlobal godoc
// @Summary      Índice de cumplimiento de toda la operación
// @Tags         metricas
// @Produce      json
// @Success      200  {object}  dto.SatisfaccionResponse
// @Security     BearerAuth
// @Router       /api/metricas/satisfaccion [get]
func (h *PaqueteHandler) SatisfaccionGlobal(c *fiber.Ctx) error {
	out, err := h.uc.SatisfaccionGlobal()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// SatisfaccionEmpleado godoc
// @Summary      Índice de cumplimiento de un repartidor
// @Tags         metricas
// @Produce      json
// @Param        id  path  string  true  "ID del repartidor"
// @Success      200  {object}  dto.SatisfaccionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/metricas/satisfaccion/empleado/{id} [get]
func (h *PaqueteHandler) SatisfaccionEmpleado(c *fiber.Ctx) error {
	out, err := h.uc.SatisfaccionPorEmpleado(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EMPLEADO_NOT_FOUND", Message: "el repartidor no existe"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el usuario no es repartidor"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// SatisfaccionCliente godoc
// @Summary      Índice de cumplimiento sobre los envíos del cliente autenticado
// @Tags         metricas
// @Produce      json
// @Success      200  {object}  dto.SatisfaccionResponse
// @Security     BearerAuth
// @Router       /api/metricas/satisfaccion/mia [get]
func (h *PaqueteHandler) SatisfaccionCliente(c *fiber.Ctx) error {
	out, err := h.uc.SatisfaccionPorCliente(GetEmail(c))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "CLIENTE_NOT_FOUND", Message: "el cliente no existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// ConfirmarRecepcion godoc
// @Summary      Confirmar la recepción del paquete con firma digital
// @Tags         paquetes
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del paquete"
// @Param        body  body  dto.ConfirmarRecepcionRequest  true  "firma digital"
// @Success      200   {object}  dto.PaqueteResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/paquetes/{id}/confirmar-recepcion [post]
func (h *PaqueteHandler) ConfirmarRecepcion(c *fiber.Ctx) error {
	var in dto.ConfirmarRecepcionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	clienteEmail := ""
	if GetRole(c) == entity.RolCliente {
		clienteEmail = GetEmail(c)
	}
	out, err := h.uc.ConfirmarRecepcion(c.Context(), c.Params("id"), clienteEmail, in.FirmaDigital)
	if err != nil {
		var te *tracking.TransicionInvalidaError
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "paquete no encontrado"})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el paquete no pertenece a este cliente"})
		case errors.Is(err, domain.ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "firma digital requerida"})
		case errors.As(err, &te):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "TRANSICION_INVALIDA", Message: te.Error()})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "el paquete fue actualizado por otra operación, reintente"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(out)
}

// parseFecha convierte un query param RFC 3339 a *time.Time; vacío → nil.
func parseFecha(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
