package paquetes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/rutas"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/tracking"
)

// ttlConsultaPublica vigencia en caché de la consulta pública por código.
const ttlConsultaPublica = 60 * time.Second

// maxIntentosCodigo reintentos al generar un código de rastreo antes de
// rendirse por colisiones.
const maxIntentosCodigo = 5

// PaqueteUseCase agrupa las operaciones sobre paquetes: alta con planeación
// de ruta, consultas, métricas de cumplimiento y confirmación de recepción.
type PaqueteUseCase struct {
	paqueteRepo      repository.PaqueteRepository
	movimientoRepo   repository.MovimientoRepository
	usuarioRepo      repository.UsuarioRepository
	planner          *rutas.Planner
	cache            ports.Cache
	qrGen            ports.QRGenerator
	qrBaseURL        string
	direccionAlmacen string
	log              zerolog.Logger
}

// NewPaqueteUseCase crea el caso de uso. La caché puede ser nil cuando no
// hay Redis configurado.
func NewPaqueteUseCase(
	paqueteRepo repository.PaqueteRepository,
	movimientoRepo repository.MovimientoRepository,
	usuarioRepo repository.UsuarioRepository,
	planner *rutas.Planner,
	cache ports.Cache,
	qrGen ports.QRGenerator,
	qrBaseURL string,
	direccionAlmacen string,
	log zerolog.Logger,
) *PaqueteUseCase {
	return &PaqueteUseCase{
		paqueteRepo:      paqueteRepo,
		movimientoRepo:   movimientoRepo,
		usuarioRepo:      usuarioRepo,
		planner:          planner,
		cache:            cache,
		qrGen:            qrGen,
		qrBaseURL:        qrBaseURL,
		direccionAlmacen: direccionAlmacen,
		log:              log,
	}
}

// ─────────────────────────────────────────────
// Alta
// ─────────────────────────────────────────────

// Crear registra un paquete recolectado en el almacén. El destino se toma
// del estado registrado del cliente, se planifica la ruta completa y se
// escribe el primer movimiento del historial.
func (uc *PaqueteUseCase) Crear(ctx context.Context, req dto.CrearPaqueteRequest) (*dto.PaqueteResponse, error) {
	if strings.TrimSpace(req.Descripcion) == "" || strings.TrimSpace(req.ClienteEmail) == "" {
		return nil, domain.ErrInvalidInput
	}

	cliente, err := uc.usuarioRepo.GetByEmail(req.ClienteEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if cliente.Rol != entity.RolCliente {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(cliente.Estado) == "" {
		uc.log.Warn().Str("cliente", cliente.Email).Msg("Cliente sin estado registrado, no se puede planear ruta")
		return nil, domain.ErrInvalidInput
	}

	ruta := uc.planner.PlanearRuta(ctx, cliente.Estado)

	codigo, err := uc.generarCodigoRastreo()
	if err != nil {
		return nil, err
	}

	ahora := time.Now()
	paquete := &entity.Paquete{
		ID:                 uuid.New().String(),
		CodigoRastreo:      codigo,
		Descripcion:        strings.TrimSpace(req.Descripcion),
		Estado:             entity.EstadoRecolectado,
		ClienteEmail:       cliente.Email,
		DireccionOrigen:    uc.direccionAlmacen,
		DireccionDestino:   strings.TrimSpace(req.DireccionDestino),
		EstadosRuta:        ruta,
		EstadoActualRuta:   ruta[0],
		FechaCreacion:      ahora,
		FechaActualizacion: ahora,
	}
	paquete.QRImageURL = fmt.Sprintf("%s/api/paquetes/%s/qr", uc.qrBaseURL, paquete.ID)

	if err := uc.paqueteRepo.Create(paquete); err != nil {
		return nil, err
	}

	inicial := &entity.Movimiento{
		ID:            uuid.New().String(),
		PaqueteID:     paquete.ID,
		Estado:        entity.EstadoRecolectado,
		Ubicacion:     uc.direccionAlmacen,
		FechaHora:     ahora,
		Observaciones: "Paquete recolectado en almacén",
	}
	if err := uc.movimientoRepo.Create(inicial); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("paquete_id", paquete.ID).
		Str("codigo", paquete.CodigoRastreo).
		Str("destino", cliente.Estado).
		Int("tramos", len(ruta)).
		Msg("Paquete registrado")

	resp := uc.toResponse(paquete, []*entity.Movimiento{inicial})
	return &resp, nil
}

// generarCodigoRastreo produce un código corto único con reintentos ante
// colisión.
func (uc *PaqueteUseCase) generarCodigoRastreo() (string, error) {
	for i := 0; i < maxIntentosCodigo; i++ {
		codigo := "PKG-" + strings.ToUpper(uuid.New().String()[:8])
		_, err := uc.paqueteRepo.GetByCodigoRastreo(codigo)
		if errors.Is(err, domain.ErrNotFound) {
			return codigo, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", domain.ErrDuplicate
}

// ─────────────────────────────────────────────
// Consultas
// ─────────────────────────────────────────────

// ConsultarPorCodigo búsqueda pública por código de rastreo, con caché de
// corta vida para absorber consultas repetidas del mismo envío.
func (uc *PaqueteUseCase) ConsultarPorCodigo(ctx context.Context, codigo string) (*dto.PaqueteResponse, error) {
	codigo = strings.ToUpper(strings.TrimSpace(codigo))
	if codigo == "" {
		return nil, domain.ErrInvalidInput
	}

	if uc.cache != nil {
		if datos, err := uc.cache.Get(ctx, claveCodigo(codigo)); err == nil {
			var resp dto.PaqueteResponse
			if err := json.Unmarshal(datos, &resp); err == nil {
				return &resp, nil
			}
		} else if !errors.Is(err, ports.ErrCacheMiss) {
			uc.log.Warn().Err(err).Msg("Caché no disponible para consulta por código")
		}
	}

	paquete, err := uc.paqueteRepo.GetByCodigoRastreo(codigo)
	if err != nil {
		return nil, err
	}
	movimientos, err := uc.movimientoRepo.ListByPaqueteID(paquete.ID)
	if err != nil {
		return nil, err
	}

	resp := uc.toResponse(paquete, movimientos)
	if uc.cache != nil {
		if datos, err := json.Marshal(resp); err == nil {
			if err := uc.cache.Set(ctx, claveCodigo(codigo), datos, ttlConsultaPublica); err != nil {
				uc.log.Warn().Err(err).Msg("No se pudo guardar la consulta en caché")
			}
		}
	}
	return &resp, nil
}

// ConsultarPorID devuelve un paquete con su historial completo.
func (uc *PaqueteUseCase) ConsultarPorID(id string) (*dto.PaqueteResponse, error) {
	paquete, err := uc.paqueteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	movimientos, err := uc.movimientoRepo.ListByPaqueteID(paquete.ID)
	if err != nil {
		return nil, err
	}
	resp := uc.toResponse(paquete, movimientos)
	return &resp, nil
}

// ListarPorCliente paquetes de un cliente, sin historial.
func (uc *PaqueteUseCase) ListarPorCliente(email string) ([]dto.PaqueteResponse, error) {
	paquetes, err := uc.paqueteRepo.ListByClienteEmail(email)
	if err != nil {
		return nil, err
	}
	return uc.toResponses(paquetes), nil
}

// FiltroConsulta criterios de búsqueda de paquetes. Mes ("2006-01") y el
// rango Desde/Hasta son excluyentes.
type FiltroConsulta struct {
	EmpleadoID   string
	ClienteEmail string
	Estado       string
	Mes          string
	Desde        *time.Time
	Hasta        *time.Time
}

// ListarFiltrados búsqueda por repartidor, cliente, estado y periodo.
func (uc *PaqueteUseCase) ListarFiltrados(filtro FiltroConsulta) ([]dto.PaqueteResponse, error) {
	if filtro.Estado != "" && !tracking.EsEstadoConocido(filtro.Estado) {
		return nil, domain.ErrInvalidInput
	}
	if filtro.Mes != "" && (filtro.Desde != nil || filtro.Hasta != nil) {
		return nil, domain.ErrInvalidInput
	}

	desde, hasta := filtro.Desde, filtro.Hasta
	if filtro.Mes != "" {
		inicio, err := time.Parse("2006-01", filtro.Mes)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		fin := inicio.AddDate(0, 1, 0)
		desde, hasta = &inicio, &fin
	}

	paquetes, err := uc.paqueteRepo.ListWithFilters(repository.PaqueteFilter{
		EmpleadoID:   filtro.EmpleadoID,
		ClienteEmail: filtro.ClienteEmail,
		Estado:       filtro.Estado,
		Desde:        desde,
		Hasta:        hasta,
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponses(paquetes), nil
}

// ListarRecientes últimos paquetes registrados, para el tablero.
func (uc *PaqueteUseCase) ListarRecientes(limite int) ([]dto.PaqueteResponse, error) {
	if limite <= 0 {
		limite = 10
	}
	paquetes, err := uc.paqueteRepo.ListRecent(limite)
	if err != nil {
		return nil, err
	}
	return uc.toResponses(paquetes), nil
}

// ─────────────────────────────────────────────
// Métricas de cumplimiento
// ─────────────────────────────────────────────

// SatisfaccionGlobal porcentaje de paquetes entregados sobre el total.
func (uc *PaqueteUseCase) SatisfaccionGlobal() (*dto.SatisfaccionResponse, error) {
	total, err := uc.paqueteRepo.CountAll()
	if err != nil {
		return nil, err
	}
	entregados, err := uc.paqueteRepo.CountByEstado(entity.EstadoEntregado)
	if err != nil {
		return nil, err
	}
	return indiceDe(total, entregados), nil
}

// SatisfaccionPorEmpleado cumplimiento de un repartidor: de los paquetes que
// ha tocado en el historial, cuántos entregó él mismo. Una entrega registrada
// por otro repartidor no cuenta a su favor.
func (uc *PaqueteUseCase) SatisfaccionPorEmpleado(empleadoID string) (*dto.SatisfaccionResponse, error) {
	empleado, err := uc.usuarioRepo.GetByID(empleadoID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if empleado.Rol != entity.RolEmpleado {
		return nil, domain.ErrInvalidInput
	}

	movimientos, err := uc.movimientoRepo.ListByEmpleadoID(empleadoID)
	if err != nil {
		return nil, err
	}
	entregas, err := uc.movimientoRepo.ListByEmpleadoIDAndEstado(empleadoID, entity.EstadoEntregado)
	if err != nil {
		return nil, err
	}

	return indiceDe(paquetesDistintos(movimientos), paquetesDistintos(entregas)), nil
}

func paquetesDistintos(movimientos []*entity.Movimiento) int64 {
	vistos := make(map[string]bool, len(movimientos))
	for _, m := range movimientos {
		vistos[m.PaqueteID] = true
	}
	return int64(len(vistos))
}

// SatisfaccionPorCliente cumplimiento sobre los envíos de un cliente.
func (uc *PaqueteUseCase) SatisfaccionPorCliente(email string) (*dto.SatisfaccionResponse, error) {
	cliente, err := uc.usuarioRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if cliente.Rol != entity.RolCliente {
		return nil, domain.ErrInvalidInput
	}

	total, err := uc.paqueteRepo.CountByClienteEmail(email)
	if err != nil {
		return nil, err
	}
	entregados, err := uc.paqueteRepo.CountByClienteEmailAndEstado(email, entity.EstadoEntregado)
	if err != nil {
		return nil, err
	}
	return indiceDe(total, entregados), nil
}

func indiceDe(total, entregados int64) *dto.SatisfaccionResponse {
	resp := &dto.SatisfaccionResponse{
		TotalPaquetes:      total,
		PaquetesEntregados: entregados,
	}
	if total > 0 {
		resp.IndiceCumplimiento = float64(entregados) / float64(total) * 100
	}
	return resp
}

// ─────────────────────────────────────────────
// Recepción
// ─────────────────────────────────────────────

// ConfirmarRecepcion firma del cliente al recibir. Un paquete en tránsito
// pasa a entregado; uno ya entregado solo registra la firma. Cualquier otro
// estado se rechaza.
func (uc *PaqueteUseCase) ConfirmarRecepcion(ctx context.Context, id, clienteEmail, firma string) (*dto.PaqueteResponse, error) {
	if strings.TrimSpace(firma) == "" {
		return nil, domain.ErrInvalidInput
	}
	paquete, err := uc.paqueteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if clienteEmail != "" && !strings.EqualFold(paquete.ClienteEmail, clienteEmail) {
		return nil, domain.ErrForbidden
	}
	if paquete.Estado != entity.EstadoEnTransito && paquete.Estado != entity.EstadoEntregado {
		return nil, &tracking.TransicionInvalidaError{Actual: paquete.Estado, Intentado: entity.EstadoEntregado}
	}

	ahora := time.Now()
	cambiaEstado := paquete.Estado == entity.EstadoEnTransito
	paquete.ConfirmadoRecepcion = true
	paquete.FirmaDigital = firma
	paquete.FechaConfirmacion = &ahora
	paquete.FechaActualizacion = ahora
	if cambiaEstado {
		paquete.Estado = entity.EstadoEntregado
	}

	if err := uc.paqueteRepo.UpdateVersioned(paquete); err != nil {
		return nil, err
	}

	if cambiaEstado {
		mov := &entity.Movimiento{
			ID:            uuid.New().String(),
			PaqueteID:     paquete.ID,
			Estado:        entity.EstadoEntregado,
			Ubicacion:     paquete.DireccionDestino,
			FechaHora:     ahora,
			Observaciones: "Recepción confirmada por el cliente",
		}
		if err := uc.movimientoRepo.Create(mov); err != nil {
			return nil, err
		}
	}
	uc.invalidarCache(ctx, paquete.CodigoRastreo)

	uc.log.Info().Str("paquete_id", paquete.ID).Msg("Recepción confirmada")

	movimientos, err := uc.movimientoRepo.ListByPaqueteID(paquete.ID)
	if err != nil {
		return nil, err
	}
	resp := uc.toResponse(paquete, movimientos)
	return &resp, nil
}

// ─────────────────────────────────────────────
// QR
// ─────────────────────────────────────────────

// GenerarImagenQR imagen PNG con el código de rastreo del paquete, lista
// para pegarse en la etiqueta.
func (uc *PaqueteUseCase) GenerarImagenQR(id string) ([]byte, error) {
	paquete, err := uc.paqueteRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return uc.qrGen.GenerarPNG(paquete.CodigoRastreo)
}

// ─────────────────────────────────────────────
// Mapeo
// ─────────────────────────────────────────────

func (uc *PaqueteUseCase) invalidarCache(ctx context.Context, codigo string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, claveCodigo(codigo)); err != nil {
		uc.log.Warn().Err(err).Str("codigo", codigo).Msg("No se pudo invalidar la caché")
	}
}

func claveCodigo(codigo string) string {
	return "paquete:codigo:" + codigo
}

func (uc *PaqueteUseCase) toResponse(p *entity.Paquete, movimientos []*entity.Movimiento) dto.PaqueteResponse {
	resp := dto.PaqueteResponse{
		ID:                  p.ID,
		CodigoRastreo:       p.CodigoRastreo,
		QRImageURL:          p.QRImageURL,
		Descripcion:         p.Descripcion,
		Estado:              p.Estado,
		ClienteEmail:        p.ClienteEmail,
		DireccionOrigen:     p.DireccionOrigen,
		DireccionDestino:    p.DireccionDestino,
		EstadosRuta:         p.EstadosRuta,
		EstadoActualRuta:    p.EstadoActualRuta,
		EmpleadoID:          p.EmpleadoID,
		ConfirmadoRecepcion: p.ConfirmadoRecepcion,
		FechaConfirmacion:   p.FechaConfirmacion,
		FechaCreacion:       p.FechaCreacion,
		FechaActualizacion:  p.FechaActualizacion,
	}
	for _, m := range movimientos {
		resp.Historial = append(resp.Historial, toMovimientoResponse(m))
	}
	return resp
}

func (uc *PaqueteUseCase) toResponses(paquetes []*entity.Paquete) []dto.PaqueteResponse {
	respuestas := make([]dto.PaqueteResponse, 0, len(paquetes))
	for _, p := range paquetes {
		respuestas = append(respuestas, uc.toResponse(p, nil))
	}
	return respuestas
}

func toMovimientoResponse(m *entity.Movimiento) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:             m.ID,
		PaqueteID:      m.PaqueteID,
		Estado:         m.Estado,
		Ubicacion:      m.Ubicacion,
		EmpleadoID:     m.EmpleadoID,
		EmpleadoNombre: m.EmpleadoNombre,
		FechaHora:      m.FechaHora,
		Observaciones:  m.Observaciones,
	}
}
