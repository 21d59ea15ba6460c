package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/reportes"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
)

// ReporteHandler sirve los reportes PDF de trazabilidad.
type ReporteHandler struct {
	uc *reportes.ReporteUseCase
}

// NewReporteHandler construye el handler de reportes.
func NewReporteHandler(uc *reportes.ReporteUseCase) *ReporteHandler {
	return &ReporteHandler{uc: uc}
}

// Trazabilidad godoc
// @Summary      Reporte PDF de movimientos en un periodo
// @Tags         reportes
// @Produce      application/pdf
// @Param        desde        query  string  true   "fecha RFC 3339"
// @Param        hasta        query  string  true   "fecha RFC 3339"
// @Param        empleado_id  query  string  false  "acotar a un repartidor"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Security     BearerAuth
// @Router       /api/reportes/trazabilidad [get]
func (h *ReporteHandler) Trazabilidad(c *fiber.Ctx) error {
	desde, err := time.Parse(time.RFC3339, c.Query("desde"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "desde debe ser RFC 3339"})
	}
	hasta, err := time.Parse(time.RFC3339, c.Query("hasta"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "hasta debe ser RFC 3339"})
	}

	pdf, err := h.uc.GenerarTrazabilidad(c.Context(), desde, hasta, c.Query("empleado_id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EMPLEADO_NOT_FOUND", Message: "el repartidor no existe"})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "periodo inválido"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	nombre := fmt.Sprintf("trazabilidad_%s_%s.pdf", desde.Format("20060102"), hasta.Format("20060102"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+nombre+`"`)
	return c.Send(pdf)
}
