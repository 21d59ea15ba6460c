package ports

// EmailSender define el puerto de salida para correo transaccional.
type EmailSender interface {
	// EnviarRecuperacionPassword manda el enlace de restablecimiento con el
	// token al correo del usuario.
	EnviarRecuperacionPassword(destinatario, token string) error
}
