package mailer

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"tpv/config"

	"gopkg.in/gomail.v2"
)

const (
	reportSubject = "Informe Diario - Cierre de Caja"
	reportBody    = "Adjunto se encuentra el informe diario del cierre de caja."
	senderName    = "Sistema TPV"
)

// SMTP delivers the daily report through an authenticated SMTP relay.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewSMTP(cfg config.Mail) *SMTP {
	return &SMTP{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.User,
		to:     cfg.To,
	}
}

func (m *SMTP) SendReport(ctx context.Context, filename string, pdf []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.reportMessage(filename, pdf)); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

func (m *SMTP) reportMessage(filename string, pdf []byte) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, senderName)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", reportSubject)
	msg.SetBody("text/plain", reportBody)
	msg.Attach(filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)
	return msg
}

// Discard is used when no SMTP credentials are configured. The report stays
// downloadable from the daily cash record.
type Discard struct {
	Log *slog.Logger
}

func (d Discard) SendReport(_ context.Context, filename string, pdf []byte) error {
	if d.Log != nil {
		d.Log.Warn("report_not_emailed", "reason", "smtp not configured", "file", filename, "bytes", len(pdf))
	}
	return nil
}
