package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"avilegal.backend/internal/domain/entities"
	"avilegal.backend/pkg/logger"
)

const (
	defaultPort       = "587"
	defaultEncryption = "tls"
	dialTimeout       = 8 * time.Second
	sendTimeout       = 15 * time.Second
)

// Settings is the subset of the settings provider the sender reads.
type Settings interface {
	GetDefault(ctx context.Context, key, def string) string
}

type smtpConfig struct {
	host       string
	port       string
	username   string
	password   string
	encryption string
	fromAddr   string
	fromName   string
}

// SMTPSender delivers messages over SMTP. Server settings are read on every
// send so admin changes apply without a restart.
type SMTPSender struct {
	settings Settings
	now      func() time.Time
}

func NewSMTPSender(settings Settings) *SMTPSender {
	return &SMTPSender{settings: settings, now: time.Now}
}

func (s *SMTPSender) config(ctx context.Context) (smtpConfig, error) {
	cfg := smtpConfig{
		host:       s.settings.GetDefault(ctx, entities.SettingSMTPHost, ""),
		port:       s.settings.GetDefault(ctx, entities.SettingSMTPPort, defaultPort),
		username:   s.settings.GetDefault(ctx, entities.SettingSMTPUsername, ""),
		password:   s.settings.GetDefault(ctx, entities.SettingSMTPPassword, ""),
		encryption: s.settings.GetDefault(ctx, entities.SettingSMTPEncryption, defaultEncryption),
		fromAddr:   s.settings.GetDefault(ctx, entities.SettingSMTPFromAddress, ""),
		fromName:   s.settings.GetDefault(ctx, entities.SettingSMTPFromName, ""),
	}
	if cfg.host == "" {
		return cfg, ErrNotConfigured
	}
	if cfg.fromAddr == "" {
		cfg.fromAddr = s.settings.GetDefault(ctx, entities.SettingCompanyEmail, cfg.username)
	}
	if cfg.fromName == "" {
		cfg.fromName = s.settings.GetDefault(ctx, entities.SettingCompanyName, "")
	}
	if cfg.fromAddr == "" {
		return cfg, fmt.Errorf("%w: missing from address", ErrNotConfigured)
	}
	return cfg, nil
}

// Send delivers msg. From fields left empty are filled from settings.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	cfg, err := s.config(ctx)
	if err != nil {
		return err
	}
	if msg.FromAddr == "" {
		msg.FromAddr = cfg.fromAddr
	}
	if msg.FromName == "" {
		msg.FromName = cfg.fromName
	}

	logger.Debug(ctx, "Sending email",
		zap.String("to", msg.To),
		zap.String("host", cfg.host),
		zap.String("encryption", cfg.encryption),
	)

	if err := s.deliver(ctx, cfg, msg); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) deliver(ctx context.Context, cfg smtpConfig, msg Message) error {
	addr := net.JoinHostPort(cfg.host, cfg.port)
	dialer := &net.Dialer{Timeout: dialTimeout}

	var conn net.Conn
	var err error
	if cfg.encryption == "ssl" {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: cfg.host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}

	deadline := s.now().Add(sendTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, cfg.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	if cfg.encryption == "tls" {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: cfg.host}); err != nil {
				return err
			}
		}
	}

	if cfg.username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", cfg.username, cfg.password, cfg.host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(msg.FromAddr); err != nil {
		return err
	}
	if err := c.Rcpt(msg.To); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg.build(s.now())); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
