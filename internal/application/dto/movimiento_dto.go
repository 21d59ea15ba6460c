package dto

import "time"

// RegistrarMovimientoRequest alta de un movimiento en el historial de un
// paquete. El paquete se identifica por su ID interno.
type RegistrarMovimientoRequest struct {
	PaqueteID     string `json:"paquete_id"`
	Estado        string `json:"estado"`
	Ubicacion     string `json:"ubicacion"`
	Observaciones string `json:"observaciones,omitempty"`
}

// MovimientoResponse representación externa de una entrada del historial.
type MovimientoResponse struct {
	ID             string    `json:"id"`
	PaqueteID      string    `json:"paquete_id"`
	Estado         string    `json:"estado"`
	Ubicacion      string    `json:"ubicacion"`
	EmpleadoID     string    `json:"empleado_id,omitempty"`
	EmpleadoNombre string    `json:"empleado_nombre,omitempty"`
	FechaHora      time.Time `json:"fecha_hora"`
	Observaciones  string    `json:"observaciones,omitempty"`
}

// RegistrarMovimientoResponse resultado del registro. RutaActualizada indica
// si la ubicación reportada consumió tramos de la ruta planificada y
// LegsOmitidos cuántos tramos intermedios quedaron atrás en ese avance.
type RegistrarMovimientoResponse struct {
	Movimiento      MovimientoResponse `json:"movimiento"`
	EstadoPaquete   string             `json:"estado_paquete"`
	RutaActualizada bool               `json:"ruta_actualizada"`
	LegsOmitidos    int                `json:"tramos_omitidos"`
	RutaRestante    []string           `json:"ruta_restante"`
}
