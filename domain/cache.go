// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import "context"

//go:generate mockgen -destination=mocks/cache.go -package=mocks . Cache
type Cache interface {
	Close() error

	UpsertMessages(ctx context.Context, messages []*Message, folder string) error
	GetMessages(ctx context.Context, folder string, limit int) ([]*CachedMessage, error)
	GetMessagesAfter(ctx context.Context, folder string, uid uint32) ([]*CachedMessage, error)
	GetMessage(ctx context.Context, id string) (*CachedMessage, error)
	CountMessages(ctx context.Context, folder string) (int, error)
	MinUID(ctx context.Context, folder string) (uint32, error)

	UpsertBody(ctx context.Context, body *Body) error
	GetBody(ctx context.Context, messageID string) (*Body, error)

	UpsertFolders(ctx context.Context, folders []*Folder) error
	GetFolders(ctx context.Context) ([]*Folder, error)

	SetCursor(ctx context.Context, folder string, lastUID uint32, uidValidity uint32) error
	GetCursor(ctx context.Context, folder string) (*SyncCursor, error)
	ClearFolder(ctx context.Context, folder string) error

	UpdateFlags(ctx context.Context, messageID string, update FlagsUpdate) error
	DeleteMessage(ctx context.Context, messageID string) error
	MoveMessage(ctx context.Context, messageID string, folder string, uid uint32) error
	EvictOlderThan(ctx context.Context, days int) (int64, error)
	Stats(ctx context.Context) (*CacheStats, error)
}
