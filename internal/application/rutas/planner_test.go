package rutas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain/geo"
)

// ─────────────────────────────────────────────
// Dobles de prueba
// ─────────────────────────────────────────────

type oraculoFijo struct {
	respuesta string
	err       error
}

func (o *oraculoFijo) SugerirRuta(_ context.Context, _ string) (string, error) {
	return o.respuesta, o.err
}

type oraculoLento struct{}

func (o *oraculoLento) SugerirRuta(ctx context.Context, _ string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(5 * time.Second):
		return "Ciudad de México, Puebla", nil
	}
}

func logSilencioso() zerolog.Logger {
	return zerolog.Nop()
}

// ─────────────────────────────────────────────
// PlanearRuta
// ─────────────────────────────────────────────

func TestPlanearRuta_UsaOraculoCuandoResponde(t *testing.T) {
	oraculo := &oraculoFijo{respuesta: "Ciudad de México, Puebla, Veracruz, Tabasco"}
	p := NewPlanner(oraculo, &oraculoFijo{err: errors.New("no debería usarse")}, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Tabasco")

	assert.Equal(t, []string{"Ciudad de México", "Puebla", "Veracruz", "Tabasco"}, ruta)
}

func TestPlanearRuta_CaeAlRespaldoCuandoElOraculoFalla(t *testing.T) {
	oraculo := &oraculoFijo{err: errors.New("servicio no disponible")}
	respaldo := &oraculoFijo{respuesta: "Ciudad de México, Puebla, Oaxaca"}
	p := NewPlanner(oraculo, respaldo, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Oaxaca")

	assert.Equal(t, []string{"Ciudad de México", "Puebla", "Oaxaca"}, ruta)
}

func TestPlanearRuta_CaeAlRespaldoPorTimeout(t *testing.T) {
	respaldo := &oraculoFijo{respuesta: "Ciudad de México, Puebla"}
	p := NewPlanner(&oraculoLento{}, respaldo, 50*time.Millisecond, logSilencioso())

	inicio := time.Now()
	ruta := p.PlanearRuta(context.Background(), "Puebla")

	assert.Equal(t, []string{"Ciudad de México", "Puebla"}, ruta)
	assert.Less(t, time.Since(inicio), time.Second)
}

func TestPlanearRuta_SinOraculoUsaRespaldo(t *testing.T) {
	respaldo := &oraculoFijo{respuesta: "Ciudad de México, Querétaro, Guanajuato, Jalisco"}
	p := NewPlanner(nil, respaldo, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Jalisco")

	assert.Equal(t, []string{"Ciudad de México", "Querétaro", "Guanajuato", "Jalisco"}, ruta)
}

func TestPlanearRuta_DestinoEsElAlmacen(t *testing.T) {
	p := NewPlanner(nil, &oraculoFijo{err: errors.New("no debería usarse")}, time.Second, logSilencioso())

	assert.Equal(t, []string{"Ciudad de México"}, p.PlanearRuta(context.Background(), "CDMX"))
	assert.Equal(t, []string{"Ciudad de México"}, p.PlanearRuta(context.Background(), "ciudad de mexico"))
}

func TestPlanearRuta_TodoFallaDevuelveRutaDirecta(t *testing.T) {
	falla := errors.New("fuera de servicio")
	p := NewPlanner(&oraculoFijo{err: falla}, &oraculoFijo{err: falla}, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Yucatán")

	assert.Equal(t, []string{"Ciudad de México", "Yucatán"}, ruta)
}

func TestPlanearRuta_FuerzaOrigenYDestino(t *testing.T) {
	// El oráculo omite el origen y el destino quedó a media lista.
	oraculo := &oraculoFijo{respuesta: "Puebla, Veracruz, Campeche, Tabasco"}
	p := NewPlanner(oraculo, nil, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Campeche")

	require.NotEmpty(t, ruta)
	assert.Equal(t, "Ciudad de México", ruta[0])
	assert.Equal(t, "Campeche", ruta[len(ruta)-1])
}

func TestPlanearRuta_RespuestaEnumeradaYSucia(t *testing.T) {
	oraculo := &oraculoFijo{respuesta: "1. ciudad de mexico\n2. queretaro\n3. guanajuato\n4. jalisco"}
	p := NewPlanner(oraculo, nil, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Jalisco")

	assert.Equal(t, []string{"Ciudad de México", "Querétaro", "Guanajuato", "Jalisco"}, ruta)
}

func TestPlanearRuta_EliminaDuplicadosConservandoOrden(t *testing.T) {
	oraculo := &oraculoFijo{respuesta: "Ciudad de México, Puebla, Puebla, Veracruz, Puebla, Veracruz"}
	p := NewPlanner(oraculo, nil, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Veracruz")

	assert.Equal(t, []string{"Ciudad de México", "Puebla", "Veracruz"}, ruta)
}

func TestPlanearRuta_DestinoFueraDeCatalogo(t *testing.T) {
	p := NewPlanner(nil, &oraculoFijo{err: errors.New("no debería usarse")}, time.Second, logSilencioso())

	ruta := p.PlanearRuta(context.Background(), "Springfield")

	assert.Equal(t, []string{"Ciudad de México", "Springfield"}, ruta)
}

// ─────────────────────────────────────────────
// parsearRuta
// ─────────────────────────────────────────────

func TestParsearRuta_TextoVacio(t *testing.T) {
	assert.Empty(t, parsearRuta(""))
	assert.Empty(t, parsearRuta("   \n  "))
}

func TestParsearRuta_SeparadoresMixtos(t *testing.T) {
	ruta := parsearRuta("Ciudad de México; Puebla, Oaxaca")
	assert.Equal(t, []string{"Ciudad de México", "Puebla", "Oaxaca"}, ruta)
}

// ─────────────────────────────────────────────
// Totalidad sobre el catálogo
// ─────────────────────────────────────────────

// Cada estado del catálogo debe producir un plan válido aun sin proveedores:
// la degradación a ruta directa cubre todo el territorio.
func TestPlanearRuta_TotalidadSobreElCatalogo(t *testing.T) {
	p := NewPlanner(nil, nil, time.Second, logSilencioso())

	for _, estado := range geo.Regiones {
		ruta := p.PlanearRuta(context.Background(), estado)

		require.NotEmpty(t, ruta, "sin ruta para %s", estado)
		assert.Equal(t, "Ciudad de México", ruta[0], "origen incorrecto para %s", estado)
		assert.Equal(t, estado, ruta[len(ruta)-1], "destino incorrecto para %s", estado)
	}
}
