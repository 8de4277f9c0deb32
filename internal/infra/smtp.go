package infra

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/smtp"
	"path/filepath"

	"github.com/jordan-wright/email"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/config"
)

// puertoSMTPS is implicit TLS; every other port goes through STARTTLS when
// the server offers it.
const puertoSMTPS = 465

// Mailer sends the closing reports. Every send goes through its own breaker
// so a dead mail server parks jobs in the dead-letter list quickly.
type Mailer struct {
	host string
	addr string
	from string
	auth smtp.Auth
	tls  bool
	cb   *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		host: cfg.SMTPHost,
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		from: remitente(cfg),
		tls:  cfg.SMTPPort == puertoSMTPS,
		cb:   NewCircuitBreaker("smtp", DefaultCBConfig()),
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return m
}

// remitente prefers SMTP_FROM when it parses as an address.
func remitente(cfg *config.Config) string {
	if cfg.SMTPFrom != "" {
		if addr, err := mail.ParseAddress(cfg.SMTPFrom); err == nil {
			return addr.String()
		}
	}
	return cfg.SMTPUser
}

// Configurado reports whether an SMTP host was provided.
func (m *Mailer) Configurado() bool { return m.host != "" }

// EnviarConAdjunto sends a plain-text mail; pdfPath may be empty.
func (m *Mailer) EnviarConAdjunto(to, subject, body, pdfPath string) error {
	if !m.Configurado() {
		return fmt.Errorf("mailer: SMTP_HOST no configurado")
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: adjuntar %s: %w", filepath.Base(pdfPath), err)
		}
	}

	return m.cb.Execute(func() error {
		if m.tls {
			return e.SendWithTLS(m.addr, m.auth, &tls.Config{ServerName: m.host, MinVersion: tls.VersionTLS12})
		}
		return e.Send(m.addr, m.auth)
	})
}

// Breaker exposes the breaker to the health endpoint.
func (m *Mailer) Breaker() *CircuitBreaker { return m.cb }
