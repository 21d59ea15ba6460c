package reportes

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
)

// ReporteUseCase arma el reporte de trazabilidad: todos los movimientos de
// un periodo, opcionalmente acotados a un repartidor, listos para el PDF.
type ReporteUseCase struct {
	movimientoRepo repository.MovimientoRepository
	paqueteRepo    repository.PaqueteRepository
	usuarioRepo    repository.UsuarioRepository
	generator      TrazabilidadPDFGenerator
	log            zerolog.Logger
}

// NewReporteUseCase construye el caso de uso de reportes.
func NewReporteUseCase(
	movimientoRepo repository.MovimientoRepository,
	paqueteRepo repository.PaqueteRepository,
	usuarioRepo repository.UsuarioRepository,
	generator TrazabilidadPDFGenerator,
	log zerolog.Logger,
) *ReporteUseCase {
	return &ReporteUseCase{
		movimientoRepo: movimientoRepo,
		paqueteRepo:    paqueteRepo,
		usuarioRepo:    usuarioRepo,
		generator:      generator,
		log:            log,
	}
}

// GenerarTrazabilidad devuelve el PDF del periodo. Con empleadoID vacío
// cubre toda la operación; si trae valor, solo los movimientos de ese
// repartidor.
func (uc *ReporteUseCase) GenerarTrazabilidad(ctx context.Context, desde, hasta time.Time, empleadoID string) ([]byte, error) {
	if desde.IsZero() || hasta.IsZero() || hasta.Before(desde) {
		return nil, domain.ErrInvalidInput
	}

	reporte := &ReporteTrazabilidad{
		Desde:            desde,
		Hasta:            hasta,
		TotalesPorEstado: make(map[string]int),
	}

	var movimientos []*entity.Movimiento
	var err error
	if empleadoID != "" {
		empleado, errEmp := uc.usuarioRepo.GetByID(empleadoID)
		if errEmp != nil {
			if errors.Is(errEmp, domain.ErrNotFound) {
				return nil, domain.ErrUserNotFound
			}
			return nil, errEmp
		}
		if empleado.Rol != entity.RolEmpleado {
			return nil, domain.ErrInvalidInput
		}
		reporte.EmpleadoNombre = empleado.NombreCompleto()
		movimientos, err = uc.movimientoRepo.ListByEmpleadoIDAndRango(empleadoID, desde, hasta)
	} else {
		movimientos, err = uc.movimientoRepo.ListByRango(desde, hasta)
	}
	if err != nil {
		return nil, err
	}

	codigos := make(map[string]string, len(movimientos))
	for _, m := range movimientos {
		codigo, ok := codigos[m.PaqueteID]
		if !ok {
			paquete, errPaq := uc.paqueteRepo.GetByID(m.PaqueteID)
			if errPaq != nil && !errors.Is(errPaq, domain.ErrNotFound) {
				return nil, errPaq
			}
			if paquete != nil {
				codigo = paquete.CodigoRastreo
			}
			codigos[m.PaqueteID] = codigo
		}
		reporte.Movimientos = append(reporte.Movimientos, FilaMovimiento{
			FechaHora:      m.FechaHora,
			CodigoRastreo:  codigo,
			Estado:         m.Estado,
			Ubicacion:      m.Ubicacion,
			EmpleadoNombre: m.EmpleadoNombre,
			Observaciones:  m.Observaciones,
		})
		reporte.TotalesPorEstado[m.Estado]++
	}

	uc.log.Info().
		Time("desde", desde).
		Time("hasta", hasta).
		Int("movimientos", len(reporte.Movimientos)).
		Msg("Generando reporte de trazabilidad")

	return uc.generator.GenerarReporte(ctx, reporte)
}
