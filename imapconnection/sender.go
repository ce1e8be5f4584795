// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/mail"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -destination=sender_mocks_test.go -package=imapconnection -source sender.go

type sender interface {
	submit(ctx context.Context, creds *domain.Credentials, from string, rcpts []string, raw []byte) error
}

type smtpSender struct {
	timeout   time.Duration
	tlsConfig *tls.Config
}

func (s *smtpSender) submit(ctx context.Context, creds *domain.Credentials, from string, rcpts []string, raw []byte) error {
	dialer := &net.Dialer{Timeout: s.timeout}
	tlsConfig := s.tlsConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: creds.SmtpServerName()}
	}

	security := creds.EffectiveSmtpSecurity()
	var conn net.Conn
	var err error
	if security == domain.SecurityTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", creds.SmtpAddress(), tlsConfig)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", creds.SmtpAddress())
	}
	if err != nil {
		return &domain.ConnectionError{Kind: domain.ConnectionTransport, Err: fmt.Errorf("could not dial to smtp: %w", err)}
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, creds.SmtpServerName())
	if err != nil {
		_ = conn.Close()
		return &domain.ConnectionError{Kind: domain.ConnectionTransport, Err: fmt.Errorf("could not greet smtp server: %w", err)}
	}
	defer c.Close()

	if security == domain.SecuritySTARTTLS {
		err = c.StartTLS(tlsConfig)
		if err != nil {
			return &domain.ConnectionError{Kind: domain.ConnectionTLS, Err: fmt.Errorf("could not start tls: %w", err)}
		}
	}

	if ok, _ := c.Extension("AUTH"); ok {
		err = c.Auth(sasl.NewPlainClient("", creds.Username, creds.Password))
		if err != nil {
			return &domain.ConnectionError{Kind: domain.ConnectionAuth, Err: fmt.Errorf("could not authenticate to smtp: %w", err)}
		}
	}

	err = c.SendMail(from, rcpts, bytes.NewReader(raw))
	if err != nil {
		return &domain.ProtocolError{Op: "send", Err: err}
	}

	return c.Quit()
}

// Send composes the message, submits it via SMTP and optionally appends a copy to
// opts.SaveToFolder. The IMAP connection must be Ready, the credentials are shared.
func (s *ImapSession) Send(ctx context.Context, opts domain.SendOptions) error {
	s.mu.Lock()
	if s.State() != domain.Ready || s.creds == nil {
		s.mu.Unlock()
		return domain.ErrNotConnected
	}
	creds := *s.creds
	s.mu.Unlock()

	from := creds.From()
	date := time.Now()
	raw, messageID, err := mail.Compose(from, opts, date)
	if err != nil {
		return fmt.Errorf("could not compose message: %w", err)
	}

	baseLogger := s.l.WithFields(logrus.Fields{"messageId": messageID, "recipients": len(opts.Recipients())})
	err = s.sender.submit(ctx, &creds, from.Address, opts.Recipients(), raw)
	creds.Wipe()
	if err != nil {
		baseLogger.WithField("error", err).Warn("Could not send message")
		return err
	}
	baseLogger.Info("Sent message")

	if len(opts.SaveToFolder) == 0 {
		return nil
	}

	err = s.run(ctx, "append", "", func(conn *connection) error {
		err := conn.Append(opts.SaveToFolder, []string{imap.SeenFlag}, date, bytes.NewBuffer(raw))
		if err != nil {
			return fmt.Errorf("could not append to %s: %w", opts.SaveToFolder, err)
		}
		return nil
	})
	if err != nil {
		// the message went out, a missing sent copy is not worth failing the send
		baseLogger.WithFields(logrus.Fields{"folder": opts.SaveToFolder, "error": err}).Warn("Could not save sent message")
	}
	return nil
}
