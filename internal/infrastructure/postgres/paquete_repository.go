package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
)

var _ repository.PaqueteRepository = (*PaqueteRepo)(nil)

const paqueteColumns = `id, codigo_rastreo, descripcion, estado, cliente_email,
	direccion_origen, direccion_destino, estados_ruta, estado_actual_ruta,
	qr_image_url, empleado_id, confirmado_recepcion, fecha_confirmacion,
	firma_digital, version, fecha_creacion, fecha_actualizacion`

// PaqueteRepo implementación del puerto PaqueteRepository sobre PostgreSQL.
// estados_ruta se guarda como text[] nativo de Postgres.
type PaqueteRepo struct {
	pool *pgxpool.Pool
}

// NewPaqueteRepository construye el adaptador de persistencia para paquetes.
func NewPaqueteRepository(pool *pgxpool.Pool) *PaqueteRepo {
	return &PaqueteRepo{pool: pool}
}

// Create persiste un paquete recién registrado con version 0.
func (r *PaqueteRepo) Create(p *entity.Paquete) error {
	query := `
		INSERT INTO paquetes (id, codigo_rastreo, descripcion, estado, cliente_email,
			direccion_origen, direccion_destino, estados_ruta, estado_actual_ruta,
			qr_image_url, empleado_id, confirmado_recepcion, fecha_confirmacion,
			firma_digital, version, fecha_creacion, fecha_actualizacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.pool.Exec(context.Background(), query,
		p.ID, p.CodigoRastreo, p.Descripcion, p.Estado, p.ClienteEmail,
		p.DireccionOrigen, p.DireccionDestino, p.EstadosRuta, p.EstadoActualRuta,
		p.QRImageURL, nullIfEmpty(p.EmpleadoID), p.ConfirmadoRecepcion, p.FechaConfirmacion,
		p.FirmaDigital, p.Version, p.FechaCreacion, p.FechaActualizacion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert paquete: %w", err)
	}
	return nil
}

// GetByID obtiene un paquete por ID.
func (r *PaqueteRepo) GetByID(id string) (*entity.Paquete, error) {
	query := `SELECT ` + paqueteColumns + ` FROM paquetes WHERE id = $1`
	return r.queryOne(query, id)
}

// GetByCodigoRastreo obtiene un paquete por su código público.
func (r *PaqueteRepo) GetByCodigoRastreo(codigo string) (*entity.Paquete, error) {
	query := `SELECT ` + paqueteColumns + ` FROM paquetes WHERE codigo_rastreo = $1`
	return r.queryOne(query, codigo)
}

// UpdateVersioned escribe el paquete solo si nadie lo actualizó desde la
// lectura: el WHERE exige la versión leída y la escritura la incrementa. Si
// no afecta filas y el paquete existe, otro escritor ganó la carrera.
func (r *PaqueteRepo) UpdateVersioned(p *entity.Paquete) error {
	query := `
		UPDATE paquetes
		SET estado = $3, estados_ruta = $4, estado_actual_ruta = $5, empleado_id = $6,
			confirmado_recepcion = $7, fecha_confirmacion = $8, firma_digital = $9,
			version = version + 1, fecha_actualizacion = $10
		WHERE id = $1 AND version = $2`
	tag, err := r.pool.Exec(context.Background(), query,
		p.ID, p.Version,
		p.Estado, p.EstadosRuta, p.EstadoActualRuta, nullIfEmpty(p.EmpleadoID),
		p.ConfirmadoRecepcion, p.FechaConfirmacion, p.FirmaDigital,
		p.FechaActualizacion,
	)
	if err != nil {
		return fmt.Errorf("update paquete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, errGet := r.GetByID(p.ID); errGet != nil {
			return errGet
		}
		return domain.ErrConflict
	}
	p.Version++
	return nil
}

// ListByClienteEmail paquetes de un cliente, del más reciente al más antiguo.
func (r *PaqueteRepo) ListByClienteEmail(email string) ([]*entity.Paquete, error) {
	query := `SELECT ` + paqueteColumns + `
		FROM paquetes WHERE cliente_email = $1 ORDER BY fecha_creacion DESC`
	return r.queryMany(query, email)
}

// ListWithFilters búsqueda combinando repartidor, cliente, estado y periodo.
func (r *PaqueteRepo) ListWithFilters(f repository.PaqueteFilter) ([]*entity.Paquete, error) {
	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.EmpleadoID != "" {
		add("empleado_id = $%d", f.EmpleadoID)
	}
	if f.ClienteEmail != "" {
		add("cliente_email = $%d", f.ClienteEmail)
	}
	if f.Estado != "" {
		add("estado = $%d", f.Estado)
	}
	if f.Desde != nil {
		add("fecha_creacion >= $%d", *f.Desde)
	}
	if f.Hasta != nil {
		add("fecha_creacion < $%d", *f.Hasta)
	}

	query := `SELECT ` + paqueteColumns + ` FROM paquetes`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY fecha_creacion DESC"
	return r.queryMany(query, args...)
}

// ListRecent últimos paquetes registrados.
func (r *PaqueteRepo) ListRecent(limit int) ([]*entity.Paquete, error) {
	query := `SELECT ` + paqueteColumns + `
		FROM paquetes ORDER BY fecha_actualizacion DESC LIMIT $1`
	return r.queryMany(query, limit)
}

// CountAll total de paquetes registrados.
func (r *PaqueteRepo) CountAll() (int64, error) {
	return r.count(`SELECT COUNT(*) FROM paquetes`)
}

// CountByEstado total de paquetes en un estado.
func (r *PaqueteRepo) CountByEstado(estado string) (int64, error) {
	return r.count(`SELECT COUNT(*) FROM paquetes WHERE estado = $1`, estado)
}

// CountByClienteEmail total de paquetes de un cliente.
func (r *PaqueteRepo) CountByClienteEmail(email string) (int64, error) {
	return r.count(`SELECT COUNT(*) FROM paquetes WHERE cliente_email = $1`, email)
}

// CountByClienteEmailAndEstado total de paquetes de un cliente en un estado.
func (r *PaqueteRepo) CountByClienteEmailAndEstado(email, estado string) (int64, error) {
	return r.count(`SELECT COUNT(*) FROM paquetes WHERE cliente_email = $1 AND estado = $2`, email, estado)
}

func (r *PaqueteRepo) count(query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count paquetes: %w", err)
	}
	return n, nil
}

func (r *PaqueteRepo) queryOne(query string, args ...any) (*entity.Paquete, error) {
	row := r.pool.QueryRow(context.Background(), query, args...)
	p, err := scanPaquete(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get paquete: %w", err)
	}
	return p, nil
}

func (r *PaqueteRepo) queryMany(query string, args ...any) ([]*entity.Paquete, error) {
	rows, err := r.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list paquetes: %w", err)
	}
	defer rows.Close()

	var paquetes []*entity.Paquete
	for rows.Next() {
		p, err := scanPaquete(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paquete: %w", err)
		}
		paquetes = append(paquetes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list paquetes: %w", err)
	}
	return paquetes, nil
}

func scanPaquete(row pgx.Row) (*entity.Paquete, error) {
	var p entity.Paquete
	var empleadoID *string
	err := row.Scan(
		&p.ID, &p.CodigoRastreo, &p.Descripcion, &p.Estado, &p.ClienteEmail,
		&p.DireccionOrigen, &p.DireccionDestino, &p.EstadosRuta, &p.EstadoActualRuta,
		&p.QRImageURL, &empleadoID, &p.ConfirmadoRecepcion, &p.FechaConfirmacion,
		&p.FirmaDigital, &p.Version, &p.FechaCreacion, &p.FechaActualizacion,
	)
	if err != nil {
		return nil, err
	}
	if empleadoID != nil {
		p.EmpleadoID = *empleadoID
	}
	return &p, nil
}
