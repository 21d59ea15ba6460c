package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/movimientos"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
	apphttp "github.com/tu-usuario/rastreo-paquetes/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria
// ──────────────────────────────────────────────────────────────────────────────

type paqueteRepoStub struct{}

func (paqueteRepoStub) Create(*entity.Paquete) error            { return nil }
func (paqueteRepoStub) GetByID(string) (*entity.Paquete, error) { return nil, domain.ErrNotFound }
func (paqueteRepoStub) GetByCodigoRastreo(string) (*entity.Paquete, error) {
	return nil, domain.ErrNotFound
}
func (paqueteRepoStub) UpdateVersioned(*entity.Paquete) error { return nil }
func (paqueteRepoStub) ListByClienteEmail(string) ([]*entity.Paquete, error) {
	return nil, nil
}
func (paqueteRepoStub) ListWithFilters(repository.PaqueteFilter) ([]*entity.Paquete, error) {
	return nil, nil
}
func (paqueteRepoStub) ListRecent(int) ([]*entity.Paquete, error) { return nil, nil }
func (paqueteRepoStub) CountAll() (int64, error)                  { return 0, nil }
func (paqueteRepoStub) CountByEstado(string) (int64, error)       { return 0, nil }
func (paqueteRepoStub) CountByClienteEmail(string) (int64, error) { return 0, nil }
func (paqueteRepoStub) CountByClienteEmailAndEstado(string, string) (int64, error) {
	return 0, nil
}

type movimientoRepoStub struct {
	movimientos []*entity.Movimiento
}

func (r *movimientoRepoStub) Create(m *entity.Movimiento) error {
	r.movimientos = append(r.movimientos, m)
	return nil
}

func (r *movimientoRepoStub) ListByPaqueteID(paqueteID string) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.movimientos {
		if m.PaqueteID == paqueteID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoStub) ListByEmpleadoID(empleadoID string) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.movimientos {
		if m.EmpleadoID == empleadoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoStub) ListByEmpleadoIDAndEstado(empleadoID, estado string) ([]*entity.Movimiento, error) {
	porEmpleado, _ := r.ListByEmpleadoID(empleadoID)
	var out []*entity.Movimiento
	for _, m := range porEmpleado {
		if m.Estado == estado {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoStub) ListByRango(desde, hasta time.Time) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.movimientos {
		if !m.FechaHora.Before(desde) && !m.FechaHora.After(hasta) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *movimientoRepoStub) ListByEmpleadoIDAndRango(empleadoID string, desde, hasta time.Time) ([]*entity.Movimiento, error) {
	enRango, _ := r.ListByRango(desde, hasta)
	var out []*entity.Movimiento
	for _, m := range enRango {
		if m.EmpleadoID == empleadoID {
			out = append(out, m)
		}
	}
	return out, nil
}

type usuarioRepoStub struct {
	usuarios map[string]*entity.Usuario
}

func (r *usuarioRepoStub) Create(u *entity.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *usuarioRepoStub) GetByID(id string) (*entity.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *usuarioRepoStub) GetByEmail(string) (*entity.Usuario, error) {
	return nil, domain.ErrNotFound
}
func (r *usuarioRepoStub) GetByResetToken(string) (*entity.Usuario, error) {
	return nil, domain.ErrNotFound
}
func (r *usuarioRepoStub) Update(*entity.Usuario) error { return nil }

// ──────────────────────────────────────────────────────────────────────────────
// Armado
// ──────────────────────────────────────────────────────────────────────────────

var (
	inicioPeriodo = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	finPeriodo    = time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)
)

func armarAppMovimientos(t *testing.T) *fiber.App {
	t.Helper()
	movs := &movimientoRepoStub{}
	usuarios := &usuarioRepoStub{usuarios: map[string]*entity.Usuario{
		"empleado-1": {ID: "empleado-1", Nombre: "Luis", Rol: entity.RolEmpleado},
		"empleado-2": {ID: "empleado-2", Nombre: "Marta", Rol: entity.RolEmpleado},
	}}

	sembrar := func(empleadoID string, cuando time.Time) {
		require.NoError(t, movs.Create(&entity.Movimiento{
			ID:         empleadoID + cuando.String(),
			PaqueteID:  "paq-1",
			Estado:     entity.EstadoEnTransito,
			Ubicacion:  "Puebla",
			EmpleadoID: empleadoID,
			FechaHora:  cuando,
		}))
	}
	sembrar("empleado-1", inicioPeriodo.Add(24*time.Hour))
	sembrar("empleado-1", finPeriodo.Add(48*time.Hour)) // fuera del periodo
	sembrar("empleado-2", inicioPeriodo.Add(24*time.Hour))

	uc := movimientos.NewRegistrarUseCase(paqueteRepoStub{}, movs, usuarios, nil, zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		MovimientoUC: uc,
		JWTSecret:    testJWTSecret,
	})
	return app
}

func getMovimientos(t *testing.T, app *fiber.App, url, token string) (*http.Response, []dto.MovimientoResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("Authorization", token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var lista []dto.MovimientoResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&lista))
	}
	return resp, lista
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GET /api/movimientos/empleado/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientosPorEmpleado_DevuelveSoloLosSuyos(t *testing.T) {
	app := armarAppMovimientos(t)

	resp, lista := getMovimientos(t, app, "/api/movimientos/empleado/empleado-1",
		tokenForRole(t, entity.RolEmpleado))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, lista, 2)
	for _, m := range lista {
		assert.Equal(t, "empleado-1", m.EmpleadoID)
	}
}

func TestMovimientosPorEmpleado_AcotadoAlPeriodo(t *testing.T) {
	app := armarAppMovimientos(t)

	url := "/api/movimientos/empleado/empleado-1?desde=" + inicioPeriodo.Format(time.RFC3339) +
		"&hasta=" + finPeriodo.Format(time.RFC3339)
	resp, lista := getMovimientos(t, app, url, tokenForRole(t, entity.RolAdministrador))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, lista, 1, "el movimiento fuera del periodo no debe aparecer")
}

func TestMovimientosPorEmpleado_PeriodoIncompleto(t *testing.T) {
	app := armarAppMovimientos(t)

	url := "/api/movimientos/empleado/empleado-1?desde=" + inicioPeriodo.Format(time.RFC3339)
	resp, _ := getMovimientos(t, app, url, tokenForRole(t, entity.RolEmpleado))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "desde sin hasta es inválido")
}

func TestMovimientosPorEmpleado_Inexistente(t *testing.T) {
	app := armarAppMovimientos(t)

	resp, _ := getMovimientos(t, app, "/api/movimientos/empleado/fantasma",
		tokenForRole(t, entity.RolEmpleado))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "EMPLEADO_NOT_FOUND")
}

func TestMovimientosPorEmpleado_ClienteNoAccede(t *testing.T) {
	app := armarAppMovimientos(t)

	resp, _ := getMovimientos(t, app, "/api/movimientos/empleado/empleado-1",
		tokenForRole(t, entity.RolCliente))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests GET /api/movimientos/rango-fechas
// ──────────────────────────────────────────────────────────────────────────────

func TestMovimientosPorRango_DevuelveElPeriodo(t *testing.T) {
	app := armarAppMovimientos(t)

	url := "/api/movimientos/rango-fechas?desde=" + inicioPeriodo.Format(time.RFC3339) +
		"&hasta=" + finPeriodo.Format(time.RFC3339)
	resp, lista := getMovimientos(t, app, url, tokenForRole(t, entity.RolAdministrador))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, lista, 2, "ambos repartidores dentro del periodo")
}

func TestMovimientosPorRango_FechasRequeridas(t *testing.T) {
	app := armarAppMovimientos(t)

	resp, _ := getMovimientos(t, app, "/api/movimientos/rango-fechas",
		tokenForRole(t, entity.RolEmpleado))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMovimientosPorRango_PeriodoInvertido(t *testing.T) {
	app := armarAppMovimientos(t)

	url := "/api/movimientos/rango-fechas?desde=" + finPeriodo.Format(time.RFC3339) +
		"&hasta=" + inicioPeriodo.Format(time.RFC3339)
	resp, _ := getMovimientos(t, app, url, tokenForRole(t, entity.RolEmpleado))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
