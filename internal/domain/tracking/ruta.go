package tracking

import (
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/geo"
)

// AvanzarRuta consume la ruta restante del paquete según la ubicación de un
// movimiento. Solo los movimientos EN_TRANSITO consumen ruta. Si la ubicación
// normalizada coincide con un leg pendiente, EstadoActualRuta pasa a ser ese
// leg y EstadosRuta se reemplaza por el sufijo estrictamente posterior: el leg
// alcanzado y todo lo anterior se descartan, un paquete no revisita legs.
//
// Devuelve avanzo=false cuando no hubo consumo (estado distinto de EN_TRANSITO,
// ruta vacía o ubicación sin correspondencia con ningún leg) y omitidos con la
// cantidad de legs intermedios saltados cuando la ubicación cae más adelante
// en la lista. El salto replica el comportamiento del registro fuera de orden:
// no está resuelto si es un adelanto legítimo o un reporte desordenado del
// repartidor, así que se conserva y se expone el conteo para observabilidad.
func AvanzarRuta(p *entity.Paquete, estadoMovimiento, ubicacion string) (avanzo bool, omitidos int) {
	if estadoMovimiento != entity.EstadoEnTransito {
		return false, 0
	}
	if len(p.EstadosRuta) == 0 {
		return false, 0
	}

	// La ruta puede contener legs sin mapear (texto crudo del oráculo o un
	// destino desconocido); se compara contra la forma normalizada aunque no
	// sea canónica.
	region, _ := geo.Normalizar(ubicacion)
	if region == "" {
		return false, 0
	}

	indice := -1
	for i, leg := range p.EstadosRuta {
		if leg == region {
			indice = i
			break
		}
	}
	if indice < 0 {
		return false, 0
	}

	p.EstadoActualRuta = region
	restantes := make([]string, len(p.EstadosRuta)-indice-1)
	copy(restantes, p.EstadosRuta[indice+1:])
	p.EstadosRuta = restantes

	// EstadosRuta vacío significa que llegó al leg destino; el cierre del
	// envío sigue requiriendo un movimiento ENTREGADO con firma del cliente.
	return true, indice
}
