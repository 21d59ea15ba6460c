// Package email envía correos transaccionales por SMTP con gomail.
package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/tu-usuario/rastreo-paquetes/internal/application/ports"
)

var _ ports.EmailSender = (*SMTPSender)(nil)

// SMTPSender envía los correos de recuperación de contraseña.
type SMTPSender struct {
	dialer       *gomail.Dialer
	from         string
	resetBaseURL string
}

// NewSMTPSender construye el adaptador SMTP. resetBaseURL es la página del
// frontend que recibe el token (ej. https://app.example.mx/reset-password).
func NewSMTPSender(host string, port int, user, password, from, resetBaseURL string) *SMTPSender {
	return &SMTPSender{
		dialer:       gomail.NewDialer(host, port, user, password),
		from:         from,
		resetBaseURL: resetBaseURL,
	}
}

// EnviarRecuperacionPassword manda el enlace de recuperación al destinatario.
func (s *SMTPSender) EnviarRecuperacionPassword(destinatario, token string) error {
	enlace := fmt.Sprintf("%s?token=%s", s.resetBaseURL, token)

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", destinatario)
	m.SetHeader("Subject", "Recuperación de contraseña")
	m.SetBody("text/html", fmt.Sprintf(`
		<p>Recibimos una solicitud para restablecer tu contraseña.</p>
		<p><a href="%s">Haz clic aquí para elegir una nueva contraseña</a></p>
		<p>El enlace vence en una hora. Si no solicitaste el cambio, ignora este correo.</p>`,
		enlace,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("email: enviar recuperación: %w", err)
	}
	return nil
}
