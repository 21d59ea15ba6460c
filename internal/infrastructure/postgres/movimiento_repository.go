package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
)

var _ repository.MovimientoRepository = (*MovimientoRepo)(nil)

const movimientoColumns = `id, paquete_id, estado, ubicacion, empleado_id,
	empleado_nombre, fecha_hora, observaciones`

// MovimientoRepo implementación del puerto MovimientoRepository sobre
// PostgreSQL. La bitácora es de solo inserción; no hay UPDATE ni DELETE.
type MovimientoRepo struct {
	pool *pgxpool.Pool
}

// NewMovimientoRepository construye el adaptador de persistencia para la bitácora.
func NewMovimientoRepository(pool *pgxpool.Pool) *MovimientoRepo {
	return &MovimientoRepo{pool: pool}
}

// Create inserta una entrada en la bitácora.
func (r *MovimientoRepo) Create(m *entity.Movimiento) error {
	query := `
		INSERT INTO movimientos (id, paquete_id, estado, ubicacion, empleado_id,
			empleado_nombre, fecha_hora, observaciones)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(context.Background(), query,
		m.ID, m.PaqueteID, m.Estado, m.Ubicacion, nullIfEmpty(m.EmpleadoID),
		m.EmpleadoNombre, m.FechaHora, m.Observaciones,
	)
	if err != nil {
		return fmt.Errorf("insert movimiento: %w", err)
	}
	return nil
}

// ListByPaqueteID bitácora de un paquete, del más reciente al más antiguo.
func (r *MovimientoRepo) ListByPaqueteID(paqueteID string) ([]*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumns + `
		FROM movimientos WHERE paquete_id = $1 ORDER BY fecha_hora DESC`
	return r.queryMany(query, paqueteID)
}

// ListByEmpleadoID movimientos registrados por un repartidor.
func (r *MovimientoRepo) ListByEmpleadoID(empleadoID string) ([]*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumns + `
		FROM movimientos WHERE empleado_id = $1 ORDER BY fecha_hora DESC`
	return r.queryMany(query, empleadoID)
}

// ListByEmpleadoIDAndEstado movimientos de un repartidor con un estado dado.
func (r *MovimientoRepo) ListByEmpleadoIDAndEstado(empleadoID, estado string) ([]*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumns + `
		FROM movimientos WHERE empleado_id = $1 AND estado = $2 ORDER BY fecha_hora DESC`
	return r.queryMany(query, empleadoID, estado)
}

// ListByRango movimientos de toda la operación en un periodo, en orden
// cronológico para el reporte.
func (r *MovimientoRepo) ListByRango(desde, hasta time.Time) ([]*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumns + `
		FROM movimientos WHERE fecha_hora >= $1 AND fecha_hora <= $2 ORDER BY fecha_hora ASC`
	return r.queryMany(query, desde, hasta)
}

// ListByEmpleadoIDAndRango movimientos de un repartidor en un periodo.
func (r *MovimientoRepo) ListByEmpleadoIDAndRango(empleadoID string, desde, hasta time.Time) ([]*entity.Movimiento, error) {
	query := `SELECT ` + movimientoColumns + `
		FROM movimientos
		WHERE empleado_id = $1 AND fecha_hora >= $2 AND fecha_hora <= $3
		ORDER BY fecha_hora ASC`
	return r.queryMany(query, empleadoID, desde, hasta)
}

func (r *MovimientoRepo) queryMany(query string, args ...any) ([]*entity.Movimiento, error) {
	rows, err := r.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()

	var movimientos []*entity.Movimiento
	for rows.Next() {
		m, err := scanMovimiento(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movimiento: %w", err)
		}
		movimientos = append(movimientos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	return movimientos, nil
}

func scanMovimiento(row pgx.Row) (*entity.Movimiento, error) {
	var m entity.Movimiento
	var empleadoID *string
	err := row.Scan(
		&m.ID, &m.PaqueteID, &m.Estado, &m.Ubicacion, &empleadoID,
		&m.EmpleadoNombre, &m.FechaHora, &m.Observaciones,
	)
	if err != nil {
		return nil, err
	}
	if empleadoID != nil {
		m.EmpleadoID = *empleadoID
	}
	return &m, nil
}
