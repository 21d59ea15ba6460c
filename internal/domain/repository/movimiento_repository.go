package repository

import (
	"time"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
)

// MovimientoRepository define el puerto de persistencia para la bitácora.
// Solo hay Create y consultas: los movimientos nunca se actualizan ni borran.
// Los listados por paquete devuelven orden de fecha descendente.
type MovimientoRepository interface {
	Create(m *entity.Movimiento) error
	ListByPaqueteID(paqueteID string) ([]*entity.Movimiento, error)
	ListByEmpleadoID(empleadoID string) ([]*entity.Movimiento, error)
	ListByEmpleadoIDAndEstado(empleadoID, estado string) ([]*entity.Movimiento, error)
	ListByRango(desde, hasta time.Time) ([]*entity.Movimiento, error)
	ListByEmpleadoIDAndRango(empleadoID string, desde, hasta time.Time) ([]*entity.Movimiento, error)
}
