package repository

import (
	"time"

	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
)

// PaqueteFilter filtros combinables para listar paquetes.
// Los campos vacíos no filtran.
type PaqueteFilter struct {
	EmpleadoID   string
	ClienteEmail string
	Estado       string
	Desde        *time.Time
	Hasta        *time.Time
}

// PaqueteRepository define el puerto de persistencia para Paquete (DIP).
// UpdateVersioned es la única vía de mutación: escribe solo si la versión en
// el almacén coincide con la leída (compare-and-swap) y devuelve
// domain.ErrConflict si otro escritor ganó la carrera.
type PaqueteRepository interface {
	Create(p *entity.Paquete) error
	GetByID(id string) (*entity.Paquete, error)
	GetByCodigoRastreo(codigo string) (*entity.Paquete, error)
	UpdateVersioned(p *entity.Paquete) error
	ListByClienteEmail(email string) ([]*entity.Paquete, error)
	ListWithFilters(f PaqueteFilter) ([]*entity.Paquete, error)
	ListRecent(limit int) ([]*entity.Paquete, error)
	CountAll() (int64, error)
	CountByEstado(estado string) (int64, error)
	CountByClienteEmail(email string) (int64, error)
	CountByClienteEmailAndEstado(email, estado string) (int64, error)
}
