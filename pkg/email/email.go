package email

import (
	"fmt"
	"net/smtp"
)

// Config holds the SMTP settings. An empty Host disables sending.
type Config struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT" envDefault:"587"`
	Sender   string `env:"SENDER"`
	Password string `env:"PASSWORD"`
}

// Sender sends plain text email over SMTP.
type Sender struct {
	cfg      Config
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg, sendMail: smtp.SendMail}
}

// Enabled reports whether an SMTP host is configured.
func (s *Sender) Enabled() bool {
	return s.cfg.Host != ""
}

// SendEmail sends a plain text email using SMTP.
func (s *Sender) SendEmail(to, subject, body string) error {
	if !s.Enabled() {
		return nil
	}
	auth := smtp.PlainAuth("", s.cfg.Sender, s.cfg.Password, s.cfg.Host)

	msg := []byte("From: " + s.cfg.Sender + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	address := s.cfg.Host + ":" + s.cfg.Port

	err := s.sendMail(address, auth, s.cfg.Sender, []string{to}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
