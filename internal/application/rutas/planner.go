package rutas

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/geo"
)

// EstadoAlmacen es el origen de todos los envíos. El almacén central opera
// en la capital y toda ruta planificada comienza ahí.
const EstadoAlmacen = "Ciudad de México"

// TimeoutOraculoDefault tiempo máximo de espera por una sugerencia del
// oráculo antes de caer al plan determinista.
const TimeoutOraculoDefault = 8 * time.Second

// enumPrefix enumeraciones al inicio de un tramo ("1.", "- ", "* ", "2)").
var enumPrefix = regexp.MustCompile(`^[\d\-\.\*\)]+\s*`)

// Planner calcula la ruta de estados que un paquete recorrerá desde el
// almacén hasta su destino. Consulta primero al oráculo y, si éste falla,
// responde fuera de tiempo o devuelve una ruta inutilizable, usa el respaldo
// determinista. El plan resultante siempre inicia en EstadoAlmacen y termina
// en el destino.
type Planner struct {
	oraculo  ports.RouteSuggester
	respaldo ports.RouteSuggester
	timeout  time.Duration
	log      zerolog.Logger
}

// NewPlanner crea un planificador. El oráculo puede ser nil cuando no hay
// proveedor configurado; el respaldo es obligatorio.
func NewPlanner(oraculo, respaldo ports.RouteSuggester, timeout time.Duration, log zerolog.Logger) *Planner {
	if timeout <= 0 {
		timeout = TimeoutOraculoDefault
	}
	return &Planner{oraculo: oraculo, respaldo: respaldo, timeout: timeout, log: log}
}

// PlanearRuta devuelve la secuencia de estados para llegar a destinoTexto.
// Nunca devuelve error: ante cualquier falla degrada a [origen, destino].
func (p *Planner) PlanearRuta(ctx context.Context, destinoTexto string) []string {
	destino, conocido := geo.Normalizar(destinoTexto)
	if destino == "" {
		return []string{EstadoAlmacen}
	}
	if destino == EstadoAlmacen {
		return []string{EstadoAlmacen}
	}
	if !conocido {
		p.log.Warn().Str("destino", destinoTexto).Msg("Destino fuera del catálogo de estados, ruta directa")
		return []string{EstadoAlmacen, destino}
	}

	if ruta, ok := p.sugerir(ctx, p.oraculo, destino); ok {
		return ruta
	}
	if ruta, ok := p.sugerir(ctx, p.respaldo, destino); ok {
		return ruta
	}
	p.log.Warn().Str("destino", destino).Msg("Sin plan de ruta disponible, ruta directa")
	return []string{EstadoAlmacen, destino}
}

func (p *Planner) sugerir(ctx context.Context, s ports.RouteSuggester, destino string) ([]string, bool) {
	if s == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	crudo, err := s.SugerirRuta(ctx, destino)
	if err != nil {
		p.log.Warn().Err(err).Str("destino", destino).Msg("Sugerencia de ruta falló")
		return nil, false
	}
	ruta := parsearRuta(crudo)
	ruta = asegurarExtremos(ruta, destino)
	if len(ruta) == 0 {
		return nil, false
	}
	return ruta, true
}

// parsearRuta convierte el texto del proveedor en una lista de estados:
// separa por comas o punto y coma, limpia enumeraciones, normaliza cada
// tramo contra el catálogo y elimina duplicados conservando el orden.
func parsearRuta(crudo string) []string {
	partes := strings.FieldsFunc(crudo, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	vistos := make(map[string]bool, len(partes))
	ruta := make([]string, 0, len(partes))
	for _, parte := range partes {
		tramo := enumPrefix.ReplaceAllString(strings.TrimSpace(parte), "")
		if tramo == "" {
			continue
		}
		nombre, _ := geo.Normalizar(tramo)
		if nombre == "" || vistos[nombre] {
			continue
		}
		vistos[nombre] = true
		ruta = append(ruta, nombre)
	}
	return ruta
}

// asegurarExtremos fuerza las postcondiciones del plan: el primer tramo es
// el almacén y el último el destino.
func asegurarExtremos(ruta []string, destino string) []string {
	if len(ruta) == 0 {
		return nil
	}
	if ruta[0] != EstadoAlmacen {
		sinOrigen := make([]string, 0, len(ruta)+1)
		for _, tramo := range ruta {
			if tramo != EstadoAlmacen {
				sinOrigen = append(sinOrigen, tramo)
			}
		}
		ruta = append([]string{EstadoAlmacen}, sinOrigen...)
	}
	if ruta[len(ruta)-1] != destino {
		sinDestino := ruta[:0:len(ruta)]
		for _, tramo := range ruta {
			if tramo != destino {
				sinDestino = append(sinDestino, tramo)
			}
		}
		ruta = append(sinDestino, destino)
	}
	return ruta
}
