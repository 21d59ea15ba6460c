package dto

import "time"

// CrearPaqueteRequest alta de un paquete. El destino se toma del estado
// registrado del cliente; la dirección de destino es el texto libre a mostrar.
type CrearPaqueteRequest struct {
	Descripcion      string `json:"descripcion"`
	ClienteEmail     string `json:"cliente_email"`
	DireccionDestino string `json:"direccion_destino"`
}

// ConfirmarRecepcionRequest firma del cliente al recibir el paquete.
type ConfirmarRecepcionRequest struct {
	FirmaDigital string `json:"firma_digital"`
}

// PaqueteResponse representación externa de un paquete.
type PaqueteResponse struct {
	ID                  string               `json:"id"`
	CodigoRastreo       string               `json:"codigo_rastreo"`
	QRImageURL          string               `json:"qr_image_url,omitempty"`
	Descripcion         string               `json:"descripcion"`
	Estado              string               `json:"estado"`
	ClienteEmail        string               `json:"cliente_email"`
	DireccionOrigen     string               `json:"direccion_origen"`
	DireccionDestino    string               `json:"direccion_destino"`
	EstadosRuta         []string             `json:"estados_ruta"`
	EstadoActualRuta    string               `json:"estado_actual_ruta,omitempty"`
	EmpleadoID          string               `json:"empleado_id,omitempty"`
	ConfirmadoRecepcion bool                 `json:"confirmado_recepcion"`
	FechaConfirmacion   *time.Time           `json:"fecha_confirmacion,omitempty"`
	FechaCreacion       time.Time            `json:"fecha_creacion"`
	FechaActualizacion  time.Time            `json:"fecha_actualizacion"`
	Historial           []MovimientoResponse `json:"historial_movimientos,omitempty"`
}

// SatisfaccionResponse índice de cumplimiento de entregas para un alcance:
// todos los paquetes, los de un repartidor o los de un cliente.
type SatisfaccionResponse struct {
	TotalPaquetes      int64   `json:"total_paquetes"`
	PaquetesEntregados int64   `json:"paquetes_entregados"`
	IndiceCumplimiento float64 `json:"indice_cumplimiento"` // porcentaje 0-100
}
