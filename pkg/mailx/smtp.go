package mailx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig mirrors the SMTP_* environment variables.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS (465); otherwise STARTTLS is required
	Username string
	Password string
	From     string
	ReplyTo  string
	Timeout  time.Duration
}

// SMTPSender sends through an authenticated SMTP relay. A new connection is
// dialled per message.
type SMTPSender struct {
	cfg     SMTPConfig
	options []mail.Option
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("mailx: SMTP host is required")
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	return &SMTPSender{cfg: cfg, options: opts}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) (Result, error) {
	res := Result{Driver: "smtp"}

	m, err := s.build(msg)
	if err != nil {
		return res, &DeliveryError{Driver: "smtp", Reason: "invalid message", Err: err}
	}

	c, err := mail.NewClient(s.cfg.Host, s.options...)
	if err != nil {
		return res, &DeliveryError{Driver: "smtp", Reason: "client setup", Err: err}
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		de := &DeliveryError{Driver: "smtp", Reason: "send", Err: err}
		var se *mail.SendError
		if errors.As(err, &se) {
			de.Reason = se.Reason.String()
			de.Temporary = se.IsTemp()
		}
		return res, de
	}

	res.MessageID = m.GetMessageID()
	return res, nil
}

func (s *SMTPSender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	if s.cfg.ReplyTo != "" {
		if err := m.ReplyTo(s.cfg.ReplyTo); err != nil {
			return nil, fmt.Errorf("reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetMessageID()

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		m.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return m, nil
}
