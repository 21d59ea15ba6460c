package dto

// LoginRequest credenciales de acceso. Codigo2FA solo se envía cuando la
// cuenta tiene verificación en dos pasos habilitada.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Codigo2FA string `json:"codigo_2fa,omitempty"`
}

// LoginResponse token emitido tras un login exitoso. Cuando la cuenta exige
// segundo factor y el código no vino en la petición, Requiere2FA es true y
// el token va vacío.
type LoginResponse struct {
	Token       string `json:"token,omitempty"`
	Requiere2FA bool   `json:"requiere_2fa,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Nombre      string `json:"nombre,omitempty"`
	Rol         string `json:"rol,omitempty"`
}

// RegistroClienteRequest alta de un cliente desde el portal público.
type RegistroClienteRequest struct {
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno,omitempty"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Estado          string `json:"estado"`
	Ciudad          string `json:"ciudad,omitempty"`
}

// CrearEmpleadoRequest alta de un repartidor por un administrador.
type CrearEmpleadoRequest struct {
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno,omitempty"`
	Email           string `json:"email"`
	Password        string `json:"password"`
}

// UsuarioResponse representación externa de un usuario.
type UsuarioResponse struct {
	ID              string `json:"id"`
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno,omitempty"`
	Email           string `json:"email"`
	Rol             string `json:"rol"`
	Estado          string `json:"estado,omitempty"`
	Ciudad          string `json:"ciudad,omitempty"`
	Activo          bool   `json:"activo"`
	Habilitado2FA   bool   `json:"habilitado_2fa"`
}

// Generar2FAResponse secreto recién generado para enrolar una app TOTP.
type Generar2FAResponse struct {
	Secreto    string `json:"secreto"`
	OTPAuthURL string `json:"otpauth_url"`
}

// Habilitar2FARequest confirma el enrolamiento con un código vigente.
type Habilitar2FARequest struct {
	Codigo string `json:"codigo"`
}

// SolicitarResetRequest pide un correo de recuperación de contraseña.
type SolicitarResetRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest cambia la contraseña usando el token del correo.
type ResetPasswordRequest struct {
	Token         string `json:"token"`
	NuevaPassword string `json:"nueva_password"`
}
