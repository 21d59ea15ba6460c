package entity

import "time"

// Movimiento es una entrada inmutable de la bitácora de un paquete.
// Nunca se edita ni se borra: una corrección es un movimiento nuevo.
type Movimiento struct {
	ID             string
	PaqueteID      string
	Estado         string // estado que este evento afirma (RECOLECTADO, EN_TRANSITO, ...)
	Ubicacion      string // texto libre: dirección completa o nombre de estado
	EmpleadoID     string
	EmpleadoNombre string
	FechaHora      time.Time
	Observaciones  string
}
