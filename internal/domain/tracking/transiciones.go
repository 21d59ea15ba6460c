// Package tracking contiene las reglas puras del ciclo de vida de un paquete:
// el grafo de transiciones de estado y el consumo de la ruta planificada.
package tracking

import (
	"fmt"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
)

// transiciones define, por estado actual, los estados siguientes permitidos.
// EN_TRANSITO se permite a sí mismo: cada leg de la ruta se registra como un
// movimiento EN_TRANSITO distinto en una ubicación distinta. ENTREGADO y
// CANCELADO son finales y no aparecen como llave con destinos.
var transiciones = map[string][]string{
	entity.EstadoRecolectado: {entity.EstadoEnTransito, entity.EstadoCancelado},
	entity.EstadoEnTransito:  {entity.EstadoEnTransito, entity.EstadoEntregado, entity.EstadoCancelado},
	entity.EstadoEntregado:   {},
	entity.EstadoCancelado:   {},
}

// TransicionInvalidaError detalla una transición rechazada: estado actual del
// paquete y estado que el movimiento intentó afirmar.
type TransicionInvalidaError struct {
	Actual    string
	Intentado string
}

func (e *TransicionInvalidaError) Error() string {
	return fmt.Sprintf("transición de estado inválida: %s -> %s", e.Actual, e.Intentado)
}

// Is permite errors.Is(err, domain.ErrInvalidTransition).
func (e *TransicionInvalidaError) Is(target error) bool {
	return target == domain.ErrInvalidTransition
}

// EsEstadoConocido indica si estado pertenece al ciclo de vida.
func EsEstadoConocido(estado string) bool {
	_, ok := transiciones[estado]
	return ok
}

// PuedeTransicionar indica si (actual, siguiente) es una arista del grafo.
func PuedeTransicionar(actual, siguiente string) bool {
	for _, permitido := range transiciones[actual] {
		if permitido == siguiente {
			return true
		}
	}
	return false
}

// ValidarTransicion devuelve nil si la transición es válida o un
// *TransicionInvalidaError con el contexto para el mensaje al caller.
func ValidarTransicion(actual, siguiente string) error {
	if PuedeTransicionar(actual, siguiente) {
		return nil
	}
	return &TransicionInvalidaError{Actual: actual, Intentado: siguiente}
}
