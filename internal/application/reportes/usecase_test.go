package reportes_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/reportes"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria
// ──────────────────────────────────────────────────────────────────────────────

type movimientoRepoMem struct {
	movimientos []*entity.Movimiento
}

func (r *movimientoRepoMem) Create(m *entity.Movimiento) error {
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *movimientoRepoMem) ListByPaqueteID(paqueteID string) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.movimientos {
		if m.PaqueteID == paqueteID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoMem) ListByEmpleadoID(empleadoID string) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.movimientos {
		if m.EmpleadoID == empleadoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoMem) ListByEmpleadoIDAndEstado(empleadoID, estado string) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.movimientos {
		if m.EmpleadoID == empleadoID && m.Estado == estado {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoMem) ListByRango(desde, hasta time.Time) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.movimientos {
		if !m.FechaHora.Before(desde) && !m.FechaHora.After(hasta) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoMem) ListByEmpleadoIDAndRango(empleadoID string, desde, hasta time.Time) ([]*entity.Movimiento, error) {
	enRango, _ := r.ListByRango(desde, hasta)
	var out []*entity.Movimiento
	for _, m := range enRango {
		if m.EmpleadoID == empleadoID {
			out = append(out, m)
		}
	}
	return out, nil
}

type paqueteRepoMem struct {
	mu       sync.Mutex
	paquetes map[string]*entity.Paquete
}

func (r *paqueteRepoMem) Create(p *entity.Paquete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paquetes == nil {
		r.paquetes = make(map[string]*entity.Paquete)
	}
	r.paquetes[p.ID] = p
	return nil
}

func (r *paqueteRepoMem) GetByID(id string) (*entity.Paquete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.paquetes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *paqueteRepoMem) GetByCodigoRastreo(string) (*entity.Paquete, error) {
	return nil, domain.ErrNotFound
}
func (r *paqueteRepoMem) UpdateVersioned(*entity.Paquete) error { return nil }
func (r *paqueteRepoMem) ListByClienteEmail(string) ([]*entity.Paquete, error) {
	return nil, nil
}
func (r *paqueteRepoMem) ListWithFilters(repository.PaqueteFilter) ([]*entity.Paquete, error) {
	return nil, nil
}
func (r *paqueteRepoMem) ListRecent(int) ([]*entity.Paquete, error) { return nil, nil }
func (r *paqueteRepoMem) CountAll() (int64, error)                  { return 0, nil }
func (r *paqueteRepoMem) CountByEstado(string) (int64, error)       { return 0, nil }
func (r *paqueteRepoMem) CountByClienteEmail(string) (int64, error) { return 0, nil }
func (r *paqueteRepoMem) CountByClienteEmailAndEstado(string, string) (int64, error) {
	return 0, nil
}

type usuarioRepoMem struct {
	usuarios map[string]*entity.Usuario
}

func (r *usuarioRepoMem) Create(u *entity.Usuario) error {
	if r.usuarios == nil {
		r.usuarios = make(map[string]*entity.Usuario)
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *usuarioRepoMem) GetByID(id string) (*entity.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *usuarioRepoMem) GetByEmail(string) (*entity.Usuario, error) {
	return nil, domain.ErrNotFound
}
func (r *usuarioRepoMem) GetByResetToken(string) (*entity.Usuario, error) {
	return nil, domain.ErrNotFound
}
func (r *usuarioRepoMem) Update(*entity.Usuario) error { return nil }

// generadorCaptura retiene el reporte recibido para inspeccionarlo y devuelve
// bytes fijos en lugar de un PDF real.
type generadorCaptura struct {
	recibido *reportes.ReporteTrazabilidad
}

func (g *generadorCaptura) GenerarReporte(_ context.Context, r *reportes.ReporteTrazabilidad) ([]byte, error) {
	g.recibido = r
	return []byte("%PDF-falso"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

type entorno struct {
	uc       *reportes.ReporteUseCase
	movs     *movimientoRepoMem
	paquetes *paqueteRepoMem
	usuarios *usuarioRepoMem
	gen      *generadorCaptura
}

func armar(t *testing.T) *entorno {
	t.Helper()
	movs := &movimientoRepoMem{}
	paqueteRepo := &paqueteRepoMem{}
	usuarios := &usuarioRepoMem{}
	gen := &generadorCaptura{}

	require.NoError(t, usuarios.Create(&entity.Usuario{
		ID:              "empleado-1",
		Email:           "repartidor@rastreo.mx",
		Nombre:          "Luis",
		ApellidoPaterno: "Hernández",
		Rol:             entity.RolEmpleado,
	}))
	require.NoError(t, usuarios.Create(&entity.Usuario{
		ID:    "cliente-1",
		Email: "cliente@correo.mx",
		Rol:   entity.RolCliente,
	}))
	require.NoError(t, paqueteRepo.Create(&entity.Paquete{
		ID:            "paq-1",
		CodigoRastreo: "PKG-AAAA1111",
	}))

	uc := reportes.NewReporteUseCase(movs, paqueteRepo, usuarios, gen, zerolog.Nop())
	return &entorno{uc: uc, movs: movs, paquetes: paqueteRepo, usuarios: usuarios, gen: gen}
}

func (e *entorno) agregarMovimiento(t *testing.T, estado, empleadoID string, cuando time.Time) {
	t.Helper()
	require.NoError(t, e.movs.Create(&entity.Movimiento{
		ID:             estado + cuando.String(),
		PaqueteID:      "paq-1",
		Estado:         estado,
		Ubicacion:      "Puebla",
		EmpleadoID:     empleadoID,
		EmpleadoNombre: "Luis Hernández",
		FechaHora:      cuando,
	}))
}

var (
	desde = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	hasta = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerarTrazabilidad_PeriodoCompleto(t *testing.T) {
	e := armar(t)
	e.agregarMovimiento(t, entity.EstadoEnTransito, "empleado-1", desde.Add(24*time.Hour))
	e.agregarMovimiento(t, entity.EstadoEnTransito, "empleado-1", desde.Add(48*time.Hour))
	e.agregarMovimiento(t, entity.EstadoEntregado, "empleado-1", desde.Add(72*time.Hour))
	// Fuera del periodo: no debe aparecer.
	e.agregarMovimiento(t, entity.EstadoEnTransito, "empleado-1", hasta.Add(time.Hour))

	pdf, err := e.uc.GenerarTrazabilidad(context.Background(), desde, hasta, "")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-falso"), pdf)

	reporte := e.gen.recibido
	require.NotNil(t, reporte)
	assert.Empty(t, reporte.EmpleadoNombre, "sin filtro de empleado el alcance es global")
	require.Len(t, reporte.Movimientos, 3)
	assert.Equal(t, "PKG-AAAA1111", reporte.Movimientos[0].CodigoRastreo,
		"cada fila lleva el código de rastreo del paquete")
	assert.Equal(t, 2, reporte.TotalesPorEstado[entity.EstadoEnTransito])
	assert.Equal(t, 1, reporte.TotalesPorEstado[entity.EstadoEntregado])
}

func TestGenerarTrazabilidad_FiltradoPorEmpleado(t *testing.T) {
	e := armar(t)
	e.agregarMovimiento(t, entity.EstadoEnTransito, "empleado-1", desde.Add(time.Hour))
	e.agregarMovimiento(t, entity.EstadoEnTransito, "otro-empleado", desde.Add(time.Hour))

	_, err := e.uc.GenerarTrazabilidad(context.Background(), desde, hasta, "empleado-1")
	require.NoError(t, err)

	reporte := e.gen.recibido
	require.NotNil(t, reporte)
	assert.Equal(t, "Luis Hernández", reporte.EmpleadoNombre)
	assert.Len(t, reporte.Movimientos, 1)
}

func TestGenerarTrazabilidad_PeriodoVacioGeneraReporteVacio(t *testing.T) {
	e := armar(t)

	pdf, err := e.uc.GenerarTrazabilidad(context.Background(), desde, hasta, "")
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Empty(t, e.gen.recibido.Movimientos)
}

func TestGenerarTrazabilidad_RangoInvalido(t *testing.T) {
	e := armar(t)

	_, err := e.uc.GenerarTrazabilidad(context.Background(), hasta, desde, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "rango invertido")

	_, err = e.uc.GenerarTrazabilidad(context.Background(), time.Time{}, hasta, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "desde en cero")
}

func TestGenerarTrazabilidad_EmpleadoInexistente(t *testing.T) {
	e := armar(t)
	_, err := e.uc.GenerarTrazabilidad(context.Background(), desde, hasta, "fantasma")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestGenerarTrazabilidad_RolIncorrecto(t *testing.T) {
	e := armar(t)
	_, err := e.uc.GenerarTrazabilidad(context.Background(), desde, hasta, "cliente-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Los movimientos de un paquete que ya no existe conservan su fila con el
// código en blanco en lugar de tirar el reporte.
func TestGenerarTrazabilidad_PaqueteBorradoNoRompeElReporte(t *testing.T) {
	e := armar(t)
	require.NoError(t, e.movs.Create(&entity.Movimiento{
		ID:        "mov-huerfano",
		PaqueteID: "paq-borrado",
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Jalisco",
		FechaHora: desde.Add(time.Hour),
	}))

	_, err := e.uc.GenerarTrazabilidad(context.Background(), desde, hasta, "")
	require.NoError(t, err)

	require.Len(t, e.gen.recibido.Movimientos, 1)
	assert.Empty(t, e.gen.recibido.Movimientos[0].CodigoRastreo)
}
