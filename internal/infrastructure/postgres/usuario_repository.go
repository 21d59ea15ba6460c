package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
)

var _ repository.UsuarioRepository = (*UsuarioRepo)(nil)

const usuarioColumns = `id, email, password_hash, nombre, apellido_paterno, apellido_materno,
	rol, estado, ciudad, activo, intentos_fallidos, bloqueado_hasta,
	secret_2fa, habilitado_2fa, reset_token, reset_token_expira,
	fecha_creacion, fecha_actualizacion`

// UsuarioRepo implementación del puerto UsuarioRepository sobre PostgreSQL.
type UsuarioRepo struct {
	pool *pgxpool.Pool
}

// NewUsuarioRepository construye el adaptador de persistencia para usuarios.
func NewUsuarioRepository(pool *pgxpool.Pool) *UsuarioRepo {
	return &UsuarioRepo{pool: pool}
}

// Create persiste un nuevo usuario.
func (r *UsuarioRepo) Create(u *entity.Usuario) error {
	query := `
		INSERT INTO usuarios (id, email, password_hash, nombre, apellido_paterno, apellido_materno,
			rol, estado, ciudad, activo, intentos_fallidos, bloqueado_hasta,
			secret_2fa, habilitado_2fa, reset_token, reset_token_expira,
			fecha_creacion, fecha_actualizacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.pool.Exec(context.Background(), query,
		u.ID, u.Email, u.PasswordHash, u.Nombre, u.ApellidoPaterno, u.ApellidoMaterno,
		u.Rol, u.Estado, u.Ciudad, u.Activo, u.IntentosFallidos, u.BloqueadoHasta,
		u.Secret2FA, u.Habilitado2FA, nullIfEmpty(u.ResetToken), u.ResetTokenExpira,
		u.FechaCreacion, u.FechaActualizacion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert usuario: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UsuarioRepo) GetByID(id string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`
	return r.queryOne(query, id)
}

// GetByEmail obtiene un usuario por email.
func (r *UsuarioRepo) GetByEmail(email string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email = $1 LIMIT 1`
	return r.queryOne(query, email)
}

// GetByResetToken obtiene el usuario dueño de un token de recuperación.
func (r *UsuarioRepo) GetByResetToken(token string) (*entity.Usuario, error) {
	query := `SELECT ` + usuarioColumns + ` FROM usuarios WHERE reset_token = $1 LIMIT 1`
	return r.queryOne(query, token)
}

// Update sobreescribe los campos mutables del usuario.
func (r *UsuarioRepo) Update(u *entity.Usuario) error {
	query := `
		UPDATE usuarios
		SET password_hash = $2, nombre = $3, apellido_paterno = $4, apellido_materno = $5,
			estado = $6, ciudad = $7, activo = $8, intentos_fallidos = $9, bloqueado_hasta = $10,
			secret_2fa = $11, habilitado_2fa = $12, reset_token = $13, reset_token_expira = $14,
			fecha_actualizacion = $15
		WHERE id = $1`
	tag, err := r.pool.Exec(context.Background(), query,
		u.ID, u.PasswordHash, u.Nombre, u.ApellidoPaterno, u.ApellidoMaterno,
		u.Estado, u.Ciudad, u.Activo, u.IntentosFallidos, u.BloqueadoHasta,
		u.Secret2FA, u.Habilitado2FA, nullIfEmpty(u.ResetToken), u.ResetTokenExpira,
		u.FechaActualizacion,
	)
	if err != nil {
		return fmt.Errorf("update usuario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UsuarioRepo) queryOne(query string, args ...any) (*entity.Usuario, error) {
	var u entity.Usuario
	var resetToken *string
	err := r.pool.QueryRow(context.Background(), query, args...).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Nombre, &u.ApellidoPaterno, &u.ApellidoMaterno,
		&u.Rol, &u.Estado, &u.Ciudad, &u.Activo, &u.IntentosFallidos, &u.BloqueadoHasta,
		&u.Secret2FA, &u.Habilitado2FA, &resetToken, &u.ResetTokenExpira,
		&u.FechaCreacion, &u.FechaActualizacion,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get usuario: %w", err)
	}
	if resetToken != nil {
		u.ResetToken = *resetToken
	}
	return &u, nil
}

// nullIfEmpty deja NULL en la columna cuando el valor está vacío, para que
// el índice único de reset_token no choque entre usuarios sin token.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
