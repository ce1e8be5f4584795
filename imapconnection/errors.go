// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/CrawX/go-imap-mailsync/domain"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

var (
	errUidPlusUnsupported = errors.New("UIDPLUS not supported by server")
	errNothingExpunged    = errors.New("server expunged nothing")

	// ErrMoveIncomplete is returned when a copy&delete move copied the message but could not
	// remove it from the source folder, it then exists in both.
	ErrMoveIncomplete = errors.New("message copied but left in source folder")
)

// loginError marks a failure of the LOGIN command itself, as opposed to the transport.
type loginError struct {
	err error
}

func (e *loginError) Error() string {
	return "could not login to imap: " + e.err.Error()
}

func (e *loginError) Unwrap() error {
	return e.err
}

func classifyConnectError(err error) error {
	var le *loginError
	if errors.As(err, &le) {
		var statusErr *imap.ErrStatusResp
		if errors.As(le.err, &statusErr) {
			return &domain.ConnectionError{Kind: domain.ConnectionAuth, Err: err}
		}
	}

	if kind, ok := transportKind(err); ok {
		return &domain.ConnectionError{Kind: kind, Err: err}
	}

	if le != nil {
		return &domain.ConnectionError{Kind: domain.ConnectionAuth, Err: err}
	}
	return &domain.ConnectionError{Kind: domain.ConnectionTransport, Err: err}
}

// classifyError maps an error of a command into the error taxonomy. NO/BAD responses are
// protocol errors that keep the connection usable, everything that broke the transport is a
// connection error.
func classifyError(op string, err error, c imapClient) error {
	if err == nil {
		return nil
	}

	var connErr *domain.ConnectionError
	var parseErr *domain.ParseError
	if errors.As(err, &connErr) || errors.As(err, &parseErr) || errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if kind, ok := transportKind(err); ok {
		return &domain.ConnectionError{Kind: kind, Err: err}
	}

	var statusErr *imap.ErrStatusResp
	if errors.As(err, &statusErr) {
		return &domain.ProtocolError{Op: op, Err: err}
	}

	if c != nil && c.State() == imap.LogoutState {
		return &domain.ConnectionError{Kind: domain.ConnectionTransport, Err: err}
	}

	return &domain.ProtocolError{Op: op, Err: err}
}

func transportKind(err error) (domain.ConnectionErrorKind, bool) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ConnectionTimeout, true
	}

	var recordErr tls.RecordHeaderError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var invalidCert x509.CertificateInvalidError
	if errors.As(err, &recordErr) || errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) || errors.As(err, &invalidCert) {
		return domain.ConnectionTLS, true
	}
	if strings.Contains(err.Error(), "tls:") {
		return domain.ConnectionTLS, true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) || isLoggedOut(err) {
		return domain.ConnectionTransport, true
	}

	return "", false
}

func isLoggedOut(err error) bool {
	return errors.Is(err, client.ErrAlreadyLoggedOut) || errors.Is(err, client.ErrNotLoggedIn)
}
