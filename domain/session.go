// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "context"

//go:generate mockgen -destination=mocks/session.go -package=mocks . MailboxSession
type MailboxSession interface {
	Connect(ctx context.Context, creds *Credentials) error
	Reconnect(ctx context.Context) error
	Disconnect() error
	State() SessionState

	ListFolders(ctx context.Context) ([]*Folder, error)
	FetchMessages(ctx context.Context, folder string, opts FetchOptions) (*FetchResult, error)
	FetchMessagesAfter(ctx context.Context, folder string, uid uint32) (*FetchResult, error)
	FetchBody(ctx context.Context, folder string, uid uint32) (*Body, error)
	// FetchFlags returns the current flags of uids, uids missing from the result no longer
	// exist on the server.
	FetchFlags(ctx context.Context, folder string, uids []uint32) (*FlagsResult, error)

	SetFlag(ctx context.Context, folder string, uid uint32, flag Flag, value bool) error
	Delete(ctx context.Context, folder string, uid uint32) error
	Move(ctx context.Context, folder string, uid uint32, destination string) error
	Send(ctx context.Context, opts SendOptions) error
}
