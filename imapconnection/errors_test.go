// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/CrawX/go-imap-mailsync/domain"

	"github.com/emersion/go-imap/client"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestTransportKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.ConnectionErrorKind
		ok   bool
	}{
		{"timeout", fmt.Errorf("could not dial: %w", timeoutError{}), domain.ConnectionTimeout, true},
		{"unknown authority", x509.UnknownAuthorityError{}, domain.ConnectionTLS, true},
		{"op error", &net.OpError{Op: "read", Err: errors.New("connection reset by peer")}, domain.ConnectionTransport, true},
		{"eof", fmt.Errorf("could not fetch: %w", io.EOF), domain.ConnectionTransport, true},
		{"logged out", client.ErrNotLoggedIn, domain.ConnectionTransport, true},
		{"no response", errors.New("Mailbox doesn't exist"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := transportKind(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestClassifyError_PassesTaxonomy(t *testing.T) {
	parseErr := &domain.ParseError{UID: 3, Err: errors.New("bad envelope")}
	assert.Equal(t, parseErr, classifyError("fetch", parseErr, nil))

	notFound := fmt.Errorf("message 3: %w", domain.ErrNotFound)
	assert.Equal(t, notFound, classifyError("fetch", notFound, nil))

	assert.Nil(t, classifyError("fetch", nil, nil))
}

func TestClassifyConnectError_LoginRejected(t *testing.T) {
	err := classifyConnectError(&loginError{errors.New("AUTHENTICATIONFAILED invalid credentials")})
	assert.True(t, domain.IsAuthError(err))
}
