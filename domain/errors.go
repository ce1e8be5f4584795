// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected      = errors.New("mailbox session is not connected")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid session state transition")
	ErrNoCredentials     = errors.New("no credentials available for reconnect")
)

type ConnectionErrorKind string

const (
	ConnectionTimeout   = ConnectionErrorKind("timeout")
	ConnectionAuth      = ConnectionErrorKind("auth")
	ConnectionTLS       = ConnectionErrorKind("tls")
	ConnectionTransport = ConnectionErrorKind("transport")
)

type ConnectionError struct {
	Kind ConnectionErrorKind
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error (%s): %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ProtocolError is a malformed or negative server response that leaves the connection usable.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error during %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

type ParseError struct {
	UID uint32
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse message %d: %v", e.UID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error during %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

func IsAuthError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr) && connErr.Kind == ConnectionAuth
}

func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

func IsCacheError(err error) bool {
	var cacheErr *CacheError
	return errors.As(err, &cacheErr)
}
