package entity

import "time"

// Estados del ciclo de vida de un paquete.
const (
	EstadoRecolectado = "RECOLECTADO" // recogido en el almacén, estado inicial
	EstadoEnTransito  = "EN_TRANSITO" // en movimiento entre centros de distribución
	EstadoEntregado   = "ENTREGADO"   // entregado al cliente, estado final
	EstadoCancelado   = "CANCELADO"   // envío cancelado, estado final
)

// Paquete representa un envío físico rastreado desde el almacén hasta el cliente.
// EstadosRuta contiene únicamente los estados de la República que faltan por
// recorrer; la lista se acorta conforme se registran movimientos EN_TRANSITO y
// nunca se reordena. Version respalda la escritura compare-and-swap: dos
// registros de movimiento concurrentes sobre el mismo paquete no pueden pisarse.
type Paquete struct {
	ID                  string
	CodigoRastreo       string // código humano-legible PKG-XXXXXXXX, único e inmutable
	Descripcion         string
	Estado              string
	ClienteEmail        string
	DireccionOrigen     string
	DireccionDestino    string
	EstadosRuta         []string // legs restantes, en orden
	EstadoActualRuta    string   // último estado de la ruta al que llegó el paquete
	QRImageURL          string
	EmpleadoID          string // último repartidor que registró un movimiento
	ConfirmadoRecepcion bool
	FechaConfirmacion   *time.Time
	FirmaDigital        string // se asigna una sola vez, al confirmar recepción
	Version             int64
	FechaCreacion       time.Time
	FechaActualizacion  time.Time
}

// EnEstadoFinal indica si el paquete ya no admite más transiciones.
func (p *Paquete) EnEstadoFinal() bool {
	return p.Estado == EstadoEntregado || p.Estado == EstadoCancelado
}
