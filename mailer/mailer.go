// Package mailer delivers the weekly report over SMTP.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured means a required SMTP setting is missing.
var ErrNotConfigured = errors.New("smtp not configured")

// Config is the SMTP relay and envelope.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	// TLSConfig overrides the STARTTLS settings; nil uses ServerName=Host.
	TLSConfig *tls.Config
}

// Complete reports whether every required field is set.
func (c Config) Complete() bool {
	return c.Host != "" && c.Port > 0 && c.Username != "" && c.Password != "" &&
		c.From != "" && len(c.To) > 0
}

// Attachment is a file carried with the message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// AttachFile reads path into an attachment.
func AttachFile(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read attachment: %w", err)
	}
	name := filepath.Base(path)
	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return Attachment{Name: name, ContentType: ctype, Data: data}, nil
}

// Message is a plain text mail with optional attachments.
type Message struct {
	Subject     string
	Body        string
	Attachments []Attachment
}

// Send delivers msg. STARTTLS is used when the server offers it. PLAIN
// authentication is required: a server that does not advertise AUTH fails
// the send rather than relaying unauthenticated.
func Send(ctx context.Context, cfg Config, msg Message) error {
	if !cfg.Complete() {
		return ErrNotConfigured
	}

	m, err := newMsg(cfg.From, cfg.To, msg, time.Now())
	if err != nil {
		return err
	}

	tlsCfg := cfg.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: cfg.Host}
	}
	c, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTLSConfig(tlsCfg),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// BuildMessage renders msg as a multipart/mixed RFC 5322 message.
func BuildMessage(from string, to []string, msg Message, date time.Time) ([]byte, error) {
	m, err := newMsg(from, to, msg, date)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render message: %w", err)
	}
	return buf.Bytes(), nil
}

func newMsg(from string, to []string, msg Message, date time.Time) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithEncoding(mail.EncodingB64), mail.WithCharset(mail.CharsetUTF8))
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("sender %q: %w", from, err)
	}
	if err := m.To(to...); err != nil {
		return nil, fmt.Errorf("recipients: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(date)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		ctype := a.ContentType
		if ctype == "" {
			ctype = "application/octet-stream"
		}
		if err := m.AttachReader(a.Name, bytes.NewReader(a.Data),
			mail.WithFileContentType(mail.ContentType(ctype))); err != nil {
			return nil, fmt.Errorf("attach %s: %w", a.Name, err)
		}
	}
	return m, nil
}
