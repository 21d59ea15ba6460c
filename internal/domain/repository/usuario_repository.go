package repository

import "github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"

// UsuarioRepository define el puerto de persistencia para Usuario (DIP).
type UsuarioRepository interface {
	Create(u *entity.Usuario) error
	GetByID(id string) (*entity.Usuario, error)
	GetByEmail(email string) (*entity.Usuario, error)
	GetByResetToken(token string) (*entity.Usuario, error)
	Update(u *entity.Usuario) error
}
