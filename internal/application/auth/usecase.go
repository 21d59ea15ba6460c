package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/dto"
	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/entity"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/geo"
	"github.com/tu-usuario/rastreo-paquetes/internal/domain/repository"
	"github.com/tu-usuario/rastreo-paquetes/pkg/jwt"
)

// maxIntentosLogin intentos fallidos consecutivos antes de bloquear la cuenta.
const maxIntentosLogin = 3

// duracionBloqueo tiempo que la cuenta permanece bloqueada.
const duracionBloqueo = 24 * time.Hour

// vigenciaResetToken vigencia del enlace de recuperación de contraseña.
const vigenciaResetToken = time.Hour

// emisor2FA nombre que muestran las apps TOTP al enrolar la cuenta.
const emisor2FA = "Rastreo de Paquetes"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login con bloqueo por
// intentos fallidos, segundo factor TOTP y recuperación de contraseña.
type AuthUseCase struct {
	usuarioRepo repository.UsuarioRepository
	email       ports.EmailSender
	jwtCfg      JWTConfig
	log         zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth. El envío de correos puede
// ser nil cuando no hay SMTP configurado.
func NewAuthUseCase(usuarioRepo repository.UsuarioRepository, email ports.EmailSender, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{usuarioRepo: usuarioRepo, email: email, jwtCfg: jwtCfg, log: log}
}

// ─────────────────────────────────────────────
// Registro
// ─────────────────────────────────────────────

// RegistrarCliente crea un cliente: valida que su estado exista en el
// catálogo, hashea el password con bcrypt y persiste.
func (uc *AuthUseCase) RegistrarCliente(in dto.RegistroClienteRequest) (*dto.UsuarioResponse, error) {
	if in.Email == "" || in.Password == "" || in.Nombre == "" {
		return nil, domain.ErrInvalidInput
	}
	estado, ok := geo.Normalizar(in.Estado)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	usuario, err := uc.crearUsuario(in.Email, in.Password, in.Nombre, in.ApellidoPaterno, in.ApellidoMaterno, entity.RolCliente)
	if err != nil {
		return nil, err
	}
	usuario.Estado = estado
	usuario.Ciudad = strings.TrimSpace(in.Ciudad)
	if err := uc.usuarioRepo.Create(usuario); err != nil {
		return nil, err
	}
	uc.log.Info().Str("usuario_id", usuario.ID).Str("estado", estado).Msg("Cliente registrado")
	return toUsuarioResponse(usuario), nil
}

// CrearEmpleado alta de un repartidor. Solo la invoca un administrador; el
// control de acceso vive en el middleware HTTP.
func (uc *AuthUseCase) CrearEmpleado(in dto.CrearEmpleadoRequest) (*dto.UsuarioResponse, error) {
	if in.Email == "" || in.Password == "" || in.Nombre == "" {
		return nil, domain.ErrInvalidInput
	}
	usuario, err := uc.crearUsuario(in.Email, in.Password, in.Nombre, in.ApellidoPaterno, in.ApellidoMaterno, entity.RolEmpleado)
	if err != nil {
		return nil, err
	}
	if err := uc.usuarioRepo.Create(usuario); err != nil {
		return nil, err
	}
	uc.log.Info().Str("usuario_id", usuario.ID).Msg("Repartidor creado")
	return toUsuarioResponse(usuario), nil
}

func (uc *AuthUseCase) crearUsuario(email, password, nombre, paterno, materno, rol string) (*entity.Usuario, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := uc.usuarioRepo.GetByEmail(email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &entity.Usuario{
		ID:                 uuid.New().String(),
		Email:              email,
		PasswordHash:       string(hash),
		Nombre:             strings.TrimSpace(nombre),
		ApellidoPaterno:    strings.TrimSpace(paterno),
		ApellidoMaterno:    strings.TrimSpace(materno),
		Rol:                rol,
		Activo:             true,
		FechaCreacion:      now,
		FechaActualizacion: now,
	}, nil
}

// ─────────────────────────────────────────────
// Login
// ─────────────────────────────────────────────

// Login verifica credenciales y genera el JWT. Tres intentos fallidos
// seguidos bloquean la cuenta por 24 horas. Si la cuenta tiene segundo
// factor habilitado y la petición no trae código, responde Requiere2FA sin
// emitir token.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	usuario, err := uc.usuarioRepo.GetByEmail(strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !usuario.Activo {
		return nil, domain.ErrForbidden
	}
	if usuario.BloqueadoHasta != nil {
		if time.Now().Before(*usuario.BloqueadoHasta) {
			return nil, domain.ErrAccountLocked
		}
		// El bloqueo expiró; la cuenta vuelve a operar.
		usuario.BloqueadoHasta = nil
		usuario.IntentosFallidos = 0
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.PasswordHash), []byte(in.Password)); err != nil {
		return nil, uc.registrarFallo(usuario)
	}

	if usuario.Habilitado2FA {
		if in.Codigo2FA == "" {
			return &dto.LoginResponse{Requiere2FA: true}, nil
		}
		if !totp.Validate(in.Codigo2FA, usuario.Secret2FA) {
			return nil, uc.registrarFallo(usuario)
		}
	}

	if usuario.IntentosFallidos > 0 || usuario.BloqueadoHasta != nil {
		usuario.IntentosFallidos = 0
		usuario.BloqueadoHasta = nil
		usuario.FechaActualizacion = time.Now()
		if err := uc.usuarioRepo.Update(usuario); err != nil {
			return nil, err
		}
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, usuario.ID, usuario.Email, usuario.Rol, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:  token,
		UserID: usuario.ID,
		Nombre: usuario.NombreCompleto(),
		Rol:    usuario.Rol,
	}, nil
}

// registrarFallo acumula el intento fallido y bloquea la cuenta al llegar al
// límite. Devuelve siempre el error que verá el cliente.
func (uc *AuthUseCase) registrarFallo(usuario *entity.Usuario) error {
	usuario.IntentosFallidos++
	usuario.FechaActualizacion = time.Now()
	resultado := domain.ErrInvalidCredentials
	if usuario.IntentosFallidos >= maxIntentosLogin {
		hasta := time.Now().Add(duracionBloqueo)
		usuario.BloqueadoHasta = &hasta
		resultado = domain.ErrAccountLocked
		uc.log.Warn().Str("usuario_id", usuario.ID).Time("hasta", hasta).Msg("Cuenta bloqueada por intentos fallidos")
	}
	if err := uc.usuarioRepo.Update(usuario); err != nil {
		return err
	}
	return resultado
}

// ─────────────────────────────────────────────
// Segundo factor
// ─────────────────────────────────────────────

// Generar2FA produce un secreto TOTP nuevo para el usuario. El segundo
// factor no queda activo hasta confirmar con Habilitar2FA.
func (uc *AuthUseCase) Generar2FA(usuarioID string) (*dto.Generar2FAResponse, error) {
	usuario, err := uc.usuarioRepo.GetByID(usuarioID)
	if err != nil {
		return nil, err
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      emisor2FA,
		AccountName: usuario.Email,
	})
	if err != nil {
		return nil, err
	}
	usuario.Secret2FA = key.Secret()
	usuario.Habilitado2FA = false
	usuario.FechaActualizacion = time.Now()
	if err := uc.usuarioRepo.Update(usuario); err != nil {
		return nil, err
	}
	return &dto.Generar2FAResponse{Secreto: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// Habilitar2FA activa el segundo factor tras validar un código vigente
// generado con el secreto recién enrolado.
func (uc *AuthUseCase) Habilitar2FA(usuarioID, codigo string) error {
	usuario, err := uc.usuarioRepo.GetByID(usuarioID)
	if err != nil {
		return err
	}
	if usuario.Secret2FA == "" {
		return domain.ErrInvalidInput
	}
	if !totp.Validate(codigo, usuario.Secret2FA) {
		return domain.ErrUnauthorized
	}
	usuario.Habilitado2FA = true
	usuario.FechaActualizacion = time.Now()
	if err := uc.usuarioRepo.Update(usuario); err != nil {
		return err
	}
	uc.log.Info().Str("usuario_id", usuario.ID).Msg("Segundo factor habilitado")
	return nil
}

// ─────────────────────────────────────────────
// Recuperación de contraseña
// ─────────────────────────────────────────────

// SolicitarResetPassword genera un token de un solo uso con vigencia de una
// hora y lo envía por correo. Para no revelar qué correos existen, un email
// desconocido no produce error.
func (uc *AuthUseCase) SolicitarResetPassword(email string) error {
	usuario, err := uc.usuarioRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	expira := time.Now().Add(vigenciaResetToken)
	usuario.ResetToken = uuid.New().String()
	usuario.ResetTokenExpira = &expira
	usuario.FechaActualizacion = time.Now()
	if err := uc.usuarioRepo.Update(usuario); err != nil {
		return err
	}

	if uc.email == nil {
		uc.log.Warn().Str("usuario_id", usuario.ID).Msg("SMTP no configurado, no se envió el correo de recuperación")
		return nil
	}
	if err := uc.email.EnviarRecuperacionPassword(usuario.Email, usuario.ResetToken); err != nil {
		uc.log.Error().Err(err).Str("usuario_id", usuario.ID).Msg("No se pudo enviar el correo de recuperación")
		return err
	}
	uc.log.Info().Str("usuario_id", usuario.ID).Msg("Correo de recuperación enviado")
	return nil
}

// ResetPassword cambia la contraseña usando el token del correo y lo
// invalida. El reset también limpia cualquier bloqueo vigente.
func (uc *AuthUseCase) ResetPassword(token, nuevaPassword string) error {
	if token == "" || nuevaPassword == "" {
		return domain.ErrInvalidInput
	}
	usuario, err := uc.usuarioRepo.GetByResetToken(token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrTokenExpired
		}
		return err
	}
	if usuario.ResetTokenExpira == nil || time.Now().After(*usuario.ResetTokenExpira) {
		return domain.ErrTokenExpired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(nuevaPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	usuario.PasswordHash = string(hash)
	usuario.ResetToken = ""
	usuario.ResetTokenExpira = nil
	usuario.IntentosFallidos = 0
	usuario.BloqueadoHasta = nil
	usuario.FechaActualizacion = time.Now()
	if err := uc.usuarioRepo.Update(usuario); err != nil {
		return err
	}
	uc.log.Info().Str("usuario_id", usuario.ID).Msg("Contraseña restablecida")
	return nil
}

func toUsuarioResponse(u *entity.Usuario) *dto.UsuarioResponse {
	if u == nil {
		return nil
	}
	return &dto.UsuarioResponse{
		ID:              u.ID,
		Nombre:          u.Nombre,
		ApellidoPaterno: u.ApellidoPaterno,
		ApellidoMaterno: u.ApellidoMaterno,
		Email:           u.Email,
		Rol:             u.Rol,
		Estado:          u.Estado,
		Ciudad:          u.Ciudad,
		Activo:          u.Activo,
		Habilitado2FA:   u.Habilitado2FA,
	}
}
