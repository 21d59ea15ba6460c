package entity

import "time"

// Roles válidos para Usuario.
const (
	RolAdministrador = "ADMINISTRADOR"
	RolEmpleado      = "EMPLEADO" // repartidor
	RolCliente       = "CLIENTE"
)

// Usuario representa un usuario del sistema: administrador, repartidor o cliente.
// Estado y Ciudad son la entidad federativa y ciudad del cliente; de ahí se toma
// el destino al crear un paquete.
type Usuario struct {
	ID                 string
	Email              string
	PasswordHash       string // bcrypt, nunca en claro después de persistir
	Nombre             string
	ApellidoPaterno    string
	ApellidoMaterno    string
	Rol                string
	Estado             string // entidad federativa del cliente
	Ciudad             string
	Activo             bool
	IntentosFallidos   int
	BloqueadoHasta     *time.Time
	Secret2FA          string
	Habilitado2FA      bool
	ResetToken         string
	ResetTokenExpira   *time.Time
	FechaCreacion      time.Time
	FechaActualizacion time.Time
}

// NombreCompleto devuelve nombre y apellidos para mostrar en la bitácora.
func (u *Usuario) NombreCompleto() string {
	s := u.Nombre
	if u.ApellidoPaterno != "" {
		s += " " + u.ApellidoPaterno
	}
	if u.ApellidoMaterno != "" {
		s += " " + u.ApellidoMaterno
	}
	return s
}
