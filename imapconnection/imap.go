// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/log"

	"github.com/emersion/go-imap"
	compress "github.com/emersion/go-imap-compress"
	move "github.com/emersion/go-imap-move"
	uidplus "github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"
)

const (
	DefaultConnectTimeout = 15 * time.Second
	DefaultAuthTimeout    = 10 * time.Second
	DefaultCommandTimeout = 2 * time.Minute
)

//go:generate mockgen -destination=imap_mocks_test.go -package=imapconnection -source imap.go

// imapClient is the subset of *client.Client used by the session.
type imapClient interface {
	Login(username, password string) error
	Logout() error
	State() imap.ConnState
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	List(ref, name string, ch chan *imap.MailboxInfo) error
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Expunge(ch chan uint32) error
	UidCopy(seqset *imap.SeqSet, dest string) error
	Append(mbox string, flags []string, date time.Time, msg imap.Literal) error
}

type dialFunc func(creds *domain.Credentials, s *ImapSession) (*connection, error)

// ImapSession owns one IMAP connection. All remote operations are serialized, the
// underlying connection cannot interleave commands.
type ImapSession struct {
	mu   sync.Mutex
	conn *connection

	stateMu sync.RWMutex
	state   domain.SessionState
	lastErr error

	creds          *domain.Credentials
	selectedFolder string
	uidValidity    uint32

	connectTimeout time.Duration
	authTimeout    time.Duration
	commandTimeout time.Duration
	useCompress    bool
	tlsConfig      *tls.Config

	dial   dialFunc
	sender sender

	l *logrus.Logger
}

type Option func(s *ImapSession)

func ConnectTimeout(d time.Duration) Option {
	return func(s *ImapSession) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}

func AuthTimeout(d time.Duration) Option {
	return func(s *ImapSession) {
		if d > 0 {
			s.authTimeout = d
		}
	}
}

func CommandTimeout(d time.Duration) Option {
	return func(s *ImapSession) {
		if d > 0 {
			s.commandTimeout = d
		}
	}
}

// Compress enables COMPRESS=DEFLATE when the server offers it.
func Compress() Option {
	return func(s *ImapSession) {
		s.useCompress = true
	}
}

func TLSConfig(cfg *tls.Config) Option {
	return func(s *ImapSession) {
		s.tlsConfig = cfg
	}
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *ImapSession) {
		s.l = l
	}
}

func NewImapSession(opts ...Option) *ImapSession {
	s := &ImapSession{
		state:          domain.Disconnected,
		connectTimeout: DefaultConnectTimeout,
		authTimeout:    DefaultAuthTimeout,
		commandTimeout: DefaultCommandTimeout,
		dial:           dialImap,
		l:              log.Logger(log.LOG_SESSION),
	}
	for _, o := range opts {
		o(s)
	}
	if s.sender == nil {
		s.sender = &smtpSender{timeout: s.connectTimeout, tlsConfig: s.tlsConfig}
	}
	return s
}

func (s *ImapSession) State() domain.SessionState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// LastError returns the error that moved the session into the Error state.
func (s *ImapSession) LastError() error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.lastErr
}

func (s *ImapSession) transition(to domain.SessionState, cause error) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.state == to {
		return nil
	}
	if !domain.CanTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.state, to)
	}

	s.l.WithFields(logrus.Fields{"from": s.state, "to": to}).Debug("Session state changed")
	s.state = to
	if to == domain.Error {
		s.lastErr = cause
	} else if to == domain.Ready {
		s.lastErr = nil
	}
	return nil
}

// Connect logs in with creds. It is a no-op when the session is already Ready.
func (s *ImapSession) Connect(ctx context.Context, creds *domain.Credentials) error {
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("could not connect: invalid credentials: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == domain.Ready {
		return nil
	}

	copied := *creds
	s.creds = &copied
	return s.connect(ctx)
}

// Reconnect re-establishes a session that failed, using the credentials of the last Connect.
func (s *ImapSession) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.State() {
	case domain.Ready:
		return nil
	case domain.Disconnected:
		return domain.ErrNoCredentials
	}

	if s.creds == nil || len(s.creds.Password) == 0 {
		return domain.ErrNoCredentials
	}
	return s.connect(ctx)
}

func (s *ImapSession) connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.transition(domain.Connecting, nil); err != nil {
		return err
	}

	baseLogger := s.l.WithFields(logrus.Fields{"server": s.creds.Address(), "security": s.creds.Security})
	start := time.Now()
	conn, err := s.dial(s.creds, s)
	if err != nil {
		connErr := classifyConnectError(err)
		_ = s.transition(domain.Error, connErr)
		baseLogger.WithField("error", connErr).Warn("Could not connect")
		return connErr
	}

	s.conn = conn
	s.selectedFolder = ""
	s.uidValidity = 0
	if err := s.transition(domain.Ready, nil); err != nil {
		return err
	}
	baseLogger.WithField("duration", time.Since(start)).Info("Logged in to server")
	return nil
}

// Disconnect logs out and forgets the credentials. Safe to call when not connected.
func (s *ImapSession) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.conn != nil {
		err = s.conn.Logout()
		s.conn = nil
	}
	s.selectedFolder = ""
	s.creds.Wipe()
	s.creds = nil

	if s.State() == domain.Disconnected {
		return nil
	}
	_ = s.transition(domain.Disconnected, nil)

	if err != nil && !isLoggedOut(err) {
		s.l.WithField("error", err).Debug("Logout did not complete cleanly")
		return fmt.Errorf("could not logout: %w", err)
	}
	s.l.Info("Disconnected")
	return nil
}

// run executes fn on the connection with folder selected read-write. Connection level
// failures move the session into the Error state.
func (s *ImapSession) run(ctx context.Context, op string, folder string, fn func(conn *connection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() != domain.Ready || s.conn == nil {
		return domain.ErrNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(folder) > 0 && folder != s.selectedFolder {
		status, err := s.conn.Select(folder, false)
		if err != nil {
			return s.fail("select", err)
		}
		s.selectedFolder = folder
		s.uidValidity = status.UidValidity
	}

	if err := fn(s.conn); err != nil {
		return s.fail(op, err)
	}
	return nil
}

func (s *ImapSession) fail(op string, err error) error {
	classified := classifyError(op, err, s.conn)
	if domain.IsConnectionError(classified) {
		s.l.WithFields(logrus.Fields{"op": op, "error": classified}).Warn("Connection lost")
		if s.conn != nil {
			_ = s.conn.Logout()
		}
		s.conn = nil
		s.selectedFolder = ""
		_ = s.transition(domain.Error, classified)
	}
	return classified
}

type connection struct {
	imapClient

	uidPlus *uidplus.Client

	mailDeleter deleter
	mailMover   mover
}

func newConnection(c imapClient) *connection {
	conn := &connection{imapClient: c}
	conn.mailDeleter = &compatibilityDeleter{imapConn: conn}
	conn.mailMover = &compatibilityMover{imapConn: conn}
	return conn
}

func (c *connection) flagDeleted(uids []uint32) (*imap.SeqSet, error) {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)
	err := c.UidStore(seqset, imap.FormatFlagsOp(imap.AddFlags, true), []interface{}{imap.DeletedFlag}, nil)
	if err != nil {
		return nil, fmt.Errorf("could set delete flag: %w", err)
	}

	return seqset, nil
}

func (c *connection) UidExpunge(seqset *imap.SeqSet, ch chan uint32) error {
	if c.uidPlus == nil {
		close(ch)
		return errUidPlusUnsupported
	}
	return c.uidPlus.UidExpunge(seqset, ch)
}

func (c *connection) delete(uids []uint32) error {
	return c.mailDeleter.delete(uids)
}

func (c *connection) deleteReady() (error, error) {
	return c.mailDeleter.deleteReady()
}

func dialImap(creds *domain.Credentials, s *ImapSession) (*connection, error) {
	dialer := &net.Dialer{Timeout: s.connectTimeout}
	tlsConfig := s.tlsConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: creds.Host}
	}

	var imapClient *client.Client
	var err error
	switch creds.Security {
	case domain.SecurityTLS:
		imapClient, err = client.DialWithDialerTLS(dialer, creds.Address(), tlsConfig)
	default:
		imapClient, err = client.DialWithDialer(dialer, creds.Address())
	}
	if err != nil {
		return nil, fmt.Errorf("could not dial to imap: %w", err)
	}

	if creds.Security == domain.SecuritySTARTTLS {
		err = imapClient.StartTLS(tlsConfig)
		if err != nil {
			_ = imapClient.Logout()
			return nil, fmt.Errorf("could not start tls: %w", err)
		}
	}

	imapClient.Timeout = s.authTimeout
	err = imapClient.Login(creds.Username, creds.Password)
	if err != nil {
		_ = imapClient.Logout()
		return nil, &loginError{err}
	}
	imapClient.Timeout = s.commandTimeout

	conn := newConnection(imapClient)
	baseLogger := s.l.WithFields(logrus.Fields{"server": creds.Address()})

	uidPlusClient := uidplus.NewClient(imapClient)
	uidPlusSupported, err := uidPlusClient.SupportUidPlus()
	if err != nil {
		_ = imapClient.Logout()
		return nil, fmt.Errorf("could not check for UIDPLUS support: %w", err)
	}

	moveClient := move.NewClient(imapClient)
	moveSupported, err := moveClient.SupportMove()
	if err != nil {
		_ = imapClient.Logout()
		return nil, fmt.Errorf("could not check for MOVE support: %w", err)
	}

	if uidPlusSupported {
		baseLogger.Debug("UIDPLUS supported on server, using UID delete")
		conn.uidPlus = uidPlusClient
		conn.mailDeleter = &uidPlusDeleter{imapConn: conn}
	} else {
		baseLogger.Info("UIDPLUS not supported on server, falling back to flag&expunge")
	}

	if moveSupported {
		baseLogger.Debug("MOVE supported on server")
		conn.mailMover = &moveMover{moveClient: moveClient}
	} else {
		baseLogger.Info("MOVE not supported on server, falling back to copy&delete")
	}

	if s.useCompress {
		compressClient := compress.NewClient(imapClient)
		compressSupported, err := compressClient.SupportCompress(compress.Deflate)
		if err != nil {
			_ = imapClient.Logout()
			return nil, fmt.Errorf("could not check for COMPRESS support: %w", err)
		}
		if compressSupported {
			err = compressClient.Compress(compress.Deflate)
			if err != nil {
				_ = imapClient.Logout()
				return nil, fmt.Errorf("could not enable compression: %w", err)
			}
			baseLogger.Debug("COMPRESS=DEFLATE enabled")
		} else {
			baseLogger.Info("COMPRESS=DEFLATE not supported on server")
		}
	}

	return conn, nil
}
