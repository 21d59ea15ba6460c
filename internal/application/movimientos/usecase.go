package movimientos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/tracking"
)

// RegistrarUseCase registra movimientos en el historial de un paquete y
// mantiene su estado y su ruta restante. Las escrituras compiten por versión:
// si otro repartidor actualizó el paquete primero, el registro se rechaza con
// domain.ErrConflict y el historial no se toca.
type RegistrarUseCase struct {
	paqueteRepo    repository.PaqueteRepository
	movimientoRepo repository.MovimientoRepository
	usuarioRepo    repository.UsuarioRepository
	cache          ports.Cache
	log            zerolog.Logger
}

// NewRegistrarUseCase crea el caso de uso. La caché puede ser nil.
func NewRegistrarUseCase(
	paqueteRepo repository.PaqueteRepository,
	movimientoRepo repository.MovimientoRepository,
	usuarioRepo repository.UsuarioRepository,
	cache ports.Cache,
	log zerolog.Logger,
) *RegistrarUseCase {
	return &RegistrarUseCase{
		paqueteRepo:    paqueteRepo,
		movimientoRepo: movimientoRepo,
		usuarioRepo:    usuarioRepo,
		cache:          cache,
		log:            log,
	}
}

// Registrar valida la transición de estado, avanza la ruta si la ubicación
// reportada coincide con un tramo pendiente y escribe el movimiento. El
// paquete se actualiza primero; el movimiento solo se escribe si la
// actualización versionada tuvo éxito.
func (uc *RegistrarUseCase) Registrar(ctx context.Context, req dto.RegistrarMovimientoRequest, empleadoID string) (*dto.RegistrarMovimientoResponse, error) {
	estado := strings.ToUpper(strings.TrimSpace(req.Estado))
	ubicacion := strings.TrimSpace(req.Ubicacion)
	if ubicacion == "" || req.PaqueteID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !tracking.EsEstadoConocido(estado) {
		return nil, domain.ErrInvalidInput
	}

	paquete, err := uc.paqueteRepo.GetByID(req.PaqueteID)
	if err != nil {
		return nil, err
	}
	if err := tracking.ValidarTransicion(paquete.Estado, estado); err != nil {
		return nil, err
	}

	empleado, err := uc.usuarioRepo.GetByID(empleadoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if empleado.Rol == entity.RolCliente {
		return nil, domain.ErrForbidden
	}

	teniaRuta := len(paquete.EstadosRuta) > 0
	avanzo, omitidos := tracking.AvanzarRuta(paquete, estado, ubicacion)
	if estado == entity.EstadoEnTransito && teniaRuta && !avanzo {
		uc.log.Warn().
			Str("paquete_id", paquete.ID).
			Str("ubicacion", ubicacion).
			Msg("Ubicación reportada fuera de la ruta planificada")
	}
	if omitidos > 0 {
		uc.log.Warn().
			Str("paquete_id", paquete.ID).
			Str("ubicacion", ubicacion).
			Int("tramos_omitidos", omitidos).
			Msg("Ruta adelantada, se saltaron tramos intermedios")
	}

	ahora := time.Now()
	paquete.Estado = estado
	paquete.EmpleadoID = empleadoID
	paquete.FechaActualizacion = ahora

	if err := uc.paqueteRepo.UpdateVersioned(paquete); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			uc.log.Warn().
				Str("paquete_id", paquete.ID).
				Str("empleado_id", empleadoID).
				Msg("Escritura concurrente sobre el paquete, movimiento rechazado")
		}
		return nil, err
	}

	movimiento := &entity.Movimiento{
		ID:             uuid.New().String(),
		PaqueteID:      paquete.ID,
		Estado:         estado,
		Ubicacion:      ubicacion,
		EmpleadoID:     empleado.ID,
		EmpleadoNombre: empleado.NombreCompleto(),
		FechaHora:      ahora,
		Observaciones:  strings.TrimSpace(req.Observaciones),
	}
	if err := uc.movimientoRepo.Create(movimiento); err != nil {
		return nil, err
	}
	uc.invalidarCache(ctx, paquete.CodigoRastreo)

	uc.log.Info().
		Str("paquete_id", paquete.ID).
		Str("estado", estado).
		Str("ubicacion", ubicacion).
		Bool("ruta_actualizada", avanzo).
		Msg("Movimiento registrado")

	return &dto.RegistrarMovimientoResponse{
		Movimiento: dto.MovimientoResponse{
			ID:             movimiento.ID,
			PaqueteID:      movimiento.PaqueteID,
			Estado:         movimiento.Estado,
			Ubicacion:      movimiento.Ubicacion,
			EmpleadoID:     movimiento.EmpleadoID,
			EmpleadoNombre: movimiento.EmpleadoNombre,
			FechaHora:      movimiento.FechaHora,
			Observaciones:  movimiento.Observaciones,
		},
		EstadoPaquete:   paquete.Estado,
		RutaActualizada: avanzo,
		LegsOmitidos:    omitidos,
		RutaRestante:    paquete.EstadosRuta,
	}, nil
}

// HistorialDePaquete movimientos de un paquete, del más reciente al más
// antiguo.
func (uc *RegistrarUseCase) HistorialDePaquete(paqueteID string) ([]dto.MovimientoResponse, error) {
	if _, err := uc.paqueteRepo.GetByID(paqueteID); err != nil {
		return nil, err
	}
	movimientos, err := uc.movimientoRepo.ListByPaqueteID(paqueteID)
	if err != nil {
		return nil, err
	}
	return aRespuestas(movimientos), nil
}

// ListarPorEmpleado movimientos registrados por un repartidor. Con desde y
// hasta presentes se acota al periodo.
func (uc *RegistrarUseCase) ListarPorEmpleado(empleadoID string, desde, hasta *time.Time) ([]dto.MovimientoResponse, error) {
	if _, err := uc.usuarioRepo.GetByID(empleadoID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if desde == nil && hasta == nil {
		movimientos, err := uc.movimientoRepo.ListByEmpleadoID(empleadoID)
		if err != nil {
			return nil, err
		}
		return aRespuestas(movimientos), nil
	}
	if desde == nil || hasta == nil || hasta.Before(*desde) {
		return nil, domain.ErrInvalidInput
	}
	movimientos, err := uc.movimientoRepo.ListByEmpleadoIDAndRango(empleadoID, *desde, *hasta)
	if err != nil {
		return nil, err
	}
	return aRespuestas(movimientos), nil
}

// ListarPorRango movimientos de toda la operación dentro de un periodo.
func (uc *RegistrarUseCase) ListarPorRango(desde, hasta time.Time) ([]dto.MovimientoResponse, error) {
	if desde.IsZero() || hasta.IsZero() || hasta.Before(desde) {
		return nil, domain.ErrInvalidInput
	}
	movimientos, err := uc.movimientoRepo.ListByRango(desde, hasta)
	if err != nil {
		return nil, err
	}
	return aRespuestas(movimientos), nil
}

func aRespuestas(movimientos []*entity.Movimiento) []dto.MovimientoResponse {
	respuestas := make([]dto.MovimientoResponse, 0, len(movimientos))
	for _, m := range movimientos {
		respuestas = append(respuestas, dto.MovimientoResponse{
			ID:             m.ID,
			PaqueteID:      m.PaqueteID,
			Estado:         m.Estado,
			Ubicacion:      m.Ubicacion,
			EmpleadoID:     m.EmpleadoID,
			EmpleadoNombre: m.EmpleadoNombre,
			FechaHora:      m.FechaHora,
			Observaciones:  m.Observaciones,
		})
	}
	return respuestas
}

func (uc *RegistrarUseCase) invalidarCache(ctx context.Context, codigo string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, "paquete:codigo:"+codigo); err != nil {
		uc.log.Warn().Err(err).Str("codigo", codigo).Msg("No se pudo invalidar la caché")
	}
}
