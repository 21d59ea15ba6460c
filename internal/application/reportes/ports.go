package reportes

import (
	"context"
	"time"
)

// FilaMovimiento una línea de la tabla del reporte.
type FilaMovimiento struct {
	FechaHora      time.Time
	CodigoRastreo  string
	Estado         string
	Ubicacion      string
	EmpleadoNombre string
	Observaciones  string
}

// ReporteTrazabilidad datos ya armados para el documento: periodo, alcance,
// filas y conteo de movimientos por estado.
type ReporteTrazabilidad struct {
	Desde            time.Time
	Hasta            time.Time
	EmpleadoNombre   string // vacío = toda la operación
	Movimientos      []FilaMovimiento
	TotalesPorEstado map[string]int
}

// TrazabilidadPDFGenerator puerto de salida para el documento del reporte.
type TrazabilidadPDFGenerator interface {
	GenerarReporte(ctx context.Context, reporte *ReporteTrazabilidad) ([]byte, error)
}
