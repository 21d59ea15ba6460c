package movimientos

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/tracking"
)

// ─────────────────────────────────────────────
// Repositorios en memoria
// ─────────────────────────────────────────────

type paqueteRepoMem struct {
	mu       sync.Mutex
	paquetes map[string]*entity.Paquete

	// barreraLectura, cuando está presente, sincroniza dos lecturas
	// concurrentes para que ambas observen la misma versión.
	barreraLectura *sync.WaitGroup
}

func newPaqueteRepoMem() *paqueteRepoMem {
	return &paqueteRepoMem{paquetes: make(map[string]*entity.Paquete)}
}

func copiaPaquete(p *entity.Paquete) *entity.Paquete {
	c := *p
	c.EstadosRuta = append([]string(nil), p.EstadosRuta...)
	return &c
}

func (r *paqueteRepoMem) Create(p *entity.Paquete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paquetes[p.ID] = copiaPaquete(p)
	return nil
}

func (r *paqueteRepoMem) GetByID(id string) (*entity.Paquete, error) {
	r.mu.Lock()
	p, ok := r.paquetes[id]
	var copia *entity.Paquete
	if ok {
		copia = copiaPaquete(p)
	}
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if r.barreraLectura != nil {
		r.barreraLectura.Done()
		r.barreraLectura.Wait()
	}
	return copia, nil
}

func (r *paqueteRepoMem) GetByCodigoRastreo(codigo string) (*entity.Paquete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paquetes {
		if p.CodigoRastreo == codigo {
			return copiaPaquete(p), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *paqueteRepoMem) UpdateVersioned(p *entity.Paquete) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	actual, ok := r.paquetes[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if actual.Version != p.Version {
		return domain.ErrConflict
	}
	p.Version++
	r.paquetes[p.ID] = copiaPaquete(p)
	return nil
}

func (r *paqueteRepoMem) ListByClienteEmail(string) ([]*entity.Paquete, error) { return nil, nil }
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

type movimientoRepoMem struct {
	mu          sync.Mutex
	movimientos []*entity.Movimiento
}

func (r *movimientoRepoMem) Create(m *entity.Movimiento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *m
	r.movimientos = append(r.movimientos, &copia)
	return nil
}

func (r *movimientoRepoMem) ListByPaqueteID(paqueteID string) ([]*entity.Movimiento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*entity.Movimiento
	for i := len(r.movimientos) - 1; i >= 0; i-- {
		if r.movimientos[i].PaqueteID == paqueteID {
			res = append(res, r.movimientos[i])
		}
	}
	return res, nil
}

func (r *movimientoRepoMem) ListByEmpleadoID(string) ([]*entity.Movimiento, error) { return nil, nil }
func (r *movimientoRepoMem) ListByEmpleadoIDAndEstado(string, string) ([]*entity.Movimiento, error) {
	return nil, nil
}
func (r *movimientoRepoMem) ListByRango(time.Time, time.Time) ([]*entity.Movimiento, error) {
	return nil, nil
}
func (r *movimientoRepoMem) ListByEmpleadoIDAndRango(string, time.Time, time.Time) ([]*entity.Movimiento, error) {
	return nil, nil
}

func (r *movimientoRepoMem) total(paqueteID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.movimientos {
		if m.PaqueteID == paqueteID {
			n++
		}
	}
	return n
}

type usuarioRepoMem struct {
	usuarios map[string]*entity.Usuario
}

func (r *usuarioRepoMem) Create(u *entity.Usuario) error { r.usuarios[u.ID] = u; return nil }
func (r *usuarioRepoMem) GetByID(id string) (*entity.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}
func (r *usuarioRepoMem) GetByEmail(email string) (*entity.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}
func (r *usuarioRepoMem) GetByResetToken(string) (*entity.Usuario, error) {
	return nil, domain.ErrNotFound
}
func (r *usuarioRepoMem) Update(u *entity.Usuario) error { r.usuarios[u.ID] = u; return nil }

// ─────────────────────────────────────────────
// Armado
// ─────────────────────────────────────────────

func armar(t *testing.T) (*RegistrarUseCase, *paqueteRepoMem, *movimientoRepoMem, *entity.Usuario) {
	t.Helper()
	paquetes := newPaqueteRepoMem()
	movs := &movimientoRepoMem{}
	empleado := &entity.Usuario{
		ID:              uuid.New().String(),
		Nombre:          "Luis",
		ApellidoPaterno: "Hernández",
		Email:           "luis@rastreo.mx",
		Rol:             entity.RolEmpleado,
		Activo:          true,
	}
	usuarios := &usuarioRepoMem{usuarios: map[string]*entity.Usuario{empleado.ID: empleado}}
	uc := NewRegistrarUseCase(paquetes, movs, usuarios, nil, zerolog.Nop())
	return uc, paquetes, movs, empleado
}

func paqueteEnTransito(t *testing.T, repo *paqueteRepoMem, ruta []string) *entity.Paquete {
	t.Helper()
	p := &entity.Paquete{
		ID:               uuid.New().String(),
		CodigoRastreo:    "PKG-TEST0001",
		Descripcion:      "Caja mediana",
		Estado:           entity.EstadoEnTransito,
		ClienteEmail:     "cliente@correo.mx",
		EstadosRuta:      ruta,
		EstadoActualRuta: "Ciudad de México",
	}
	require.NoError(t, repo.Create(p))
	return p
}

// ─────────────────────────────────────────────
// Registrar
// ─────────────────────────────────────────────

func TestRegistrar_AvanzaLaRuta(t *testing.T) {
	uc, paquetes, movs, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Veracruz", "Tabasco"})

	resp, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Puebla",
	}, empleado.ID)

	require.NoError(t, err)
	assert.True(t, resp.RutaActualizada)
	assert.Zero(t, resp.LegsOmitidos)
	assert.Equal(t, []string{"Veracruz", "Tabasco"}, resp.RutaRestante)
	assert.Equal(t, entity.EstadoEnTransito, resp.EstadoPaquete)
	assert.Equal(t, 1, movs.total(p.ID))

	guardado, err := paquetes.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Puebla", guardado.EstadoActualRuta)
	assert.Equal(t, []string{"Veracruz", "Tabasco"}, guardado.EstadosRuta)
}

func TestRegistrar_SaltaTramosIntermedios(t *testing.T) {
	uc, paquetes, _, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Veracruz", "Tabasco", "Campeche"})

	resp, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Tabasco",
	}, empleado.ID)

	require.NoError(t, err)
	assert.True(t, resp.RutaActualizada)
	assert.Equal(t, 2, resp.LegsOmitidos)
	assert.Equal(t, []string{"Campeche"}, resp.RutaRestante)
}

// El salto de tramos queda en el log de advertencia con el conteo, para que
// operaciones pueda auditar registros fuera de orden.
func TestRegistrar_SaltoDeTramosQuedaEnElLog(t *testing.T) {
	paquetes := newPaqueteRepoMem()
	movs := &movimientoRepoMem{}
	empleado := &entity.Usuario{
		ID:     uuid.New().String(),
		Nombre: "Luis",
		Email:  "luis@rastreo.mx",
		Rol:    entity.RolEmpleado,
		Activo: true,
	}
	usuarios := &usuarioRepoMem{usuarios: map[string]*entity.Usuario{empleado.ID: empleado}}

	var buf bytes.Buffer
	uc := NewRegistrarUseCase(paquetes, movs, usuarios, nil, zerolog.New(&buf))
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Veracruz", "Tabasco"})

	resp, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Tabasco",
	}, empleado.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.LegsOmitidos)
	assert.Contains(t, buf.String(), `"tramos_omitidos":2`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestRegistrar_UbicacionFueraDeRuta(t *testing.T) {
	uc, paquetes, movs, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Veracruz"})

	resp, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Monterrey Centro",
	}, empleado.ID)

	require.NoError(t, err)
	assert.False(t, resp.RutaActualizada)
	assert.Equal(t, []string{"Puebla", "Veracruz"}, resp.RutaRestante)
	assert.Equal(t, 1, movs.total(p.ID))
}

func TestRegistrar_NormalizaLaUbicacion(t *testing.T) {
	uc, paquetes, _, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Yucatán"})

	resp, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "bodega de yucatan",
	}, empleado.ID)

	require.NoError(t, err)
	assert.True(t, resp.RutaActualizada)
	assert.Equal(t, 1, resp.LegsOmitidos)
	assert.Empty(t, resp.RutaRestante)
}

func TestRegistrar_TransicionInvalida(t *testing.T) {
	uc, paquetes, movs, empleado := armar(t)
	p := &entity.Paquete{
		ID:            uuid.New().String(),
		CodigoRastreo: "PKG-TEST0002",
		Estado:        entity.EstadoEntregado,
	}
	require.NoError(t, paquetes.Create(p))

	_, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Puebla",
	}, empleado.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	var te *tracking.TransicionInvalidaError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, entity.EstadoEntregado, te.Actual)
	assert.Zero(t, movs.total(p.ID))
}

func TestRegistrar_EstadoDesconocido(t *testing.T) {
	uc, paquetes, _, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla"})

	_, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    "PERDIDO",
		Ubicacion: "Puebla",
	}, empleado.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegistrar_PaqueteInexistente(t *testing.T) {
	uc, _, _, empleado := armar(t)

	_, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: uuid.New().String(),
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Puebla",
	}, empleado.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistrar_ClienteNoPuedeRegistrar(t *testing.T) {
	uc, paquetes, _, _ := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla"})

	cliente := &entity.Usuario{ID: uuid.New().String(), Email: "c@c.mx", Rol: entity.RolCliente}
	require.NoError(t, uc.usuarioRepo.Create(cliente))

	_, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Puebla",
	}, cliente.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRegistrar_EntregadoNoConsumeRuta(t *testing.T) {
	uc, paquetes, _, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Veracruz"})

	resp, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEntregado,
		Ubicacion: "Puebla",
	}, empleado.ID)

	require.NoError(t, err)
	assert.False(t, resp.RutaActualizada)
	assert.Equal(t, entity.EstadoEntregado, resp.EstadoPaquete)
	assert.Equal(t, []string{"Puebla", "Veracruz"}, resp.RutaRestante)
}

// Dos repartidores reportan el mismo paquete a la vez. Solo una escritura
// gana; la otra recibe conflicto y no deja rastro en el historial.
func TestRegistrar_EscriturasConcurrentes(t *testing.T) {
	uc, paquetes, movs, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Veracruz", "Tabasco"})

	barrera := &sync.WaitGroup{}
	barrera.Add(2)
	paquetes.barreraLectura = barrera

	var wg sync.WaitGroup
	errores := make([]error, 2)
	ubicaciones := []string{"Puebla", "Veracruz"}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errores[i] = uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
				PaqueteID: p.ID,
				Estado:    entity.EstadoEnTransito,
				Ubicacion: ubicaciones[i],
			}, empleado.ID)
		}(i)
	}
	wg.Wait()

	exitos, conflictos := 0, 0
	for _, err := range errores {
		switch {
		case err == nil:
			exitos++
		case errors.Is(err, domain.ErrConflict):
			conflictos++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, exitos)
	assert.Equal(t, 1, conflictos)
	assert.Equal(t, 1, movs.total(p.ID))
}

// ─────────────────────────────────────────────
// Historial
// ─────────────────────────────────────────────

func TestHistorialDePaquete(t *testing.T) {
	uc, paquetes, _, empleado := armar(t)
	p := paqueteEnTransito(t, paquetes, []string{"Puebla", "Veracruz"})

	_, err := uc.Registrar(context.Background(), dto.RegistrarMovimientoRequest{
		PaqueteID: p.ID,
		Estado:    entity.EstadoEnTransito,
		Ubicacion: "Puebla",
	}, empleado.ID)
	require.NoError(t, err)

	historial, err := uc.HistorialDePaquete(p.ID)

	require.NoError(t, err)
	require.Len(t, historial, 1)
	assert.Equal(t, "Puebla", historial[0].Ubicacion)
	assert.Equal(t, "Luis Hernández", historial[0].EmpleadoNombre)
}

func TestHistorialDePaquete_PaqueteInexistente(t *testing.T) {
	uc, _, _, _ := armar(t)

	_, err := uc.HistorialDePaquete(uuid.New().String())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
