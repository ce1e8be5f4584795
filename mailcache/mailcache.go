// SPDX-License-Identifier: GPL-3.0-or-later
package mailcache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/log"
	"github.com/CrawX/go-imap-mailsync/mail"
	"github.com/CrawX/go-imap-mailsync/mailsync"

	"github.com/sirupsen/logrus"
)

// errorReporter is implemented by sessions that remember why they entered the Error state.
type errorReporter interface {
	LastError() error
}

type Status struct {
	State     domain.SessionState
	LastError error
}

func (s Status) Online() bool {
	return s.State == domain.Ready
}

// CachedMailbox serves reads from the cache and keeps it in sync with the mailbox in the
// background. Flag, delete and move mutations are applied to the cache before the server,
// they still reach the server when the message is not cached.
type CachedMailbox struct {
	cache   domain.Cache
	session domain.MailboxSession
	sync    *mailsync.Synchronizer

	configuration *configuration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	once      sync.Once
	loggedOut chan struct{}

	l *logrus.Logger
}

func NewCachedMailbox(cache domain.Cache, session domain.MailboxSession, synchronizer *mailsync.Synchronizer, configFunc ...ConfigFunc) (*CachedMailbox, error) {
	config := defaultConfiguration()
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &CachedMailbox{
		cache:         cache,
		session:       session,
		sync:          synchronizer,
		configuration: config,
		ctx:           ctx,
		cancel:        cancel,
		l:             log.Logger(log.LOG_FACADE),
	}, nil
}

// GetMessages returns the cached messages of folder, newest first. It never fails, a broken
// cache reads as an empty folder.
func (c *CachedMailbox) GetMessages(ctx context.Context, folder string) []*domain.CachedMessage {
	messages, err := c.cache.GetMessages(ctx, folder, 0)
	if err != nil {
		c.l.WithFields(logrus.Fields{"folder": folder, "error": err}).Warn("Could not read cached messages")
		messages = []*domain.CachedMessage{}
	}

	if c.configuration.AutoSync {
		c.background(folder)
	}
	return messages
}

func (c *CachedMailbox) background(folder string) {
	if c.ctx.Err() != nil {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_, err := c.Sync(c.ctx, folder)
		if err != nil && !errors.Is(err, context.Canceled) {
			c.l.WithFields(logrus.Fields{"folder": folder, "error": err}).Debug("Background sync failed")
		}
	}()
}

// Sync runs an incremental sync of folder in the foreground, older messages are loaded in the
// background.
func (c *CachedMailbox) Sync(ctx context.Context, folder string) (*mailsync.Result, error) {
	return c.sync.Sync(ctx, folder, c.sync.Target(folder))
}

// LoadMore raises the number of messages kept for folder by one batch and syncs towards it.
func (c *CachedMailbox) LoadMore(ctx context.Context, folder string) (*mailsync.Result, error) {
	target := c.sync.RaiseTarget(folder)
	c.l.WithFields(logrus.Fields{"folder": folder, "target": target}).Debug("Loading more messages")
	return c.sync.Sync(ctx, folder, target)
}

// StartSync syncs folders periodically until Logout.
func (c *CachedMailbox) StartSync(ctx context.Context, folders []string) {
	c.sync.Start(ctx, folders)
}

// Refresh resyncs folder ignoring the cursor.
func (c *CachedMailbox) Refresh(ctx context.Context, folder string) (*mailsync.Result, error) {
	return c.sync.FullSync(ctx, folder, c.sync.Target(folder))
}

// GetBody returns the body of a message, fetching it from folder on first access. Bodies of
// cached messages are stored, a broken cache only costs the round trip to the server.
func (c *CachedMailbox) GetBody(ctx context.Context, folder string, id string, uid uint32) (*domain.Body, error) {
	body, err := c.cache.GetBody(ctx, id)
	if err != nil {
		c.l.WithFields(logrus.Fields{"id": id, "error": err}).Warn("Could not read cached body")
	}
	if body != nil {
		return body, nil
	}

	body, err = c.session.FetchBody(ctx, folder, uid)
	if err != nil {
		return nil, fmt.Errorf("could not fetch body of %s: %w", id, err)
	}
	// the cache is keyed by our id, which can differ from the header of the fetched body
	body.MessageID = id

	if c.cached(ctx, id) == nil {
		return body, nil
	}
	err = c.cache.UpsertBody(ctx, body)
	if err != nil {
		c.l.WithFields(logrus.Fields{"id": id, "error": err}).Warn("Could not cache body")
	}
	return body, nil
}

func (c *CachedMailbox) SetRead(ctx context.Context, folder string, id string, uid uint32, value bool) error {
	return c.setFlag(ctx, folder, id, uid, domain.FlagRead, value)
}

func (c *CachedMailbox) SetFlagged(ctx context.Context, folder string, id string, uid uint32, value bool) error {
	return c.setFlag(ctx, folder, id, uid, domain.FlagFlagged, value)
}

func (c *CachedMailbox) setFlag(ctx context.Context, folder string, id string, uid uint32, flag domain.Flag, value bool) error {
	baseLogger := c.l.WithFields(logrus.Fields{"folder": folder, "id": id, "uid": uid, "flag": flag, "value": value})

	update, err := domain.FlagUpdate(flag, value)
	if err != nil {
		return err
	}

	previous := c.cached(ctx, id)
	if previous != nil {
		err = c.cache.UpdateFlags(ctx, id, update)
		if err != nil {
			baseLogger.WithField("error", err).Warn("Could not update cached flags")
		}
	}

	err = c.session.SetFlag(ctx, folder, uid, flag, value)
	if err == nil {
		return nil
	}

	baseLogger.WithField("error", err).Warn("Server rejected flag change")
	if c.configuration.Rollback && previous != nil {
		revert, _ := domain.FlagUpdate(flag, flagValue(previous.Flags, flag))
		rollbackErr := c.cache.UpdateFlags(ctx, id, revert)
		if rollbackErr != nil {
			baseLogger.WithField("error", rollbackErr).Warn("Could not roll back cached flags")
		}
	}
	return fmt.Errorf("could not set %s on %s: %w", flag, id, err)
}

// Delete removes the message and its body from the cache, then from folder on the server.
func (c *CachedMailbox) Delete(ctx context.Context, folder string, id string, uid uint32) error {
	baseLogger := c.l.WithFields(logrus.Fields{"folder": folder, "id": id, "uid": uid})

	previous := c.cached(ctx, id)
	var body *domain.Body
	if c.configuration.Rollback && previous != nil {
		body, _ = c.cache.GetBody(ctx, id)
	}

	err := c.cache.DeleteMessage(ctx, id)
	if err != nil {
		baseLogger.WithField("error", err).Warn("Could not delete cached message")
	}

	err = c.session.Delete(ctx, folder, uid)
	if err == nil {
		return nil
	}

	baseLogger.WithField("error", err).Warn("Server delete failed")
	if c.configuration.Rollback && previous != nil {
		c.restore(ctx, previous, body)
	}
	return fmt.Errorf("could not delete %s: %w", id, err)
}

// Move files the cached message under dest, then moves it on the server. The uid in dest is
// assigned by the server and learned with the next sync of dest.
func (c *CachedMailbox) Move(ctx context.Context, folder string, id string, uid uint32, dest string) error {
	if len(dest) == 0 || dest == folder {
		return fmt.Errorf("invalid move destination %q for %s", dest, id)
	}
	baseLogger := c.l.WithFields(logrus.Fields{"folder": folder, "id": id, "uid": uid, "dest": dest})

	previous := c.cached(ctx, id)
	if previous != nil {
		err := c.cache.MoveMessage(ctx, id, dest, 0)
		if err != nil {
			baseLogger.WithField("error", err).Warn("Could not move cached message")
		}
	}

	err := c.session.Move(ctx, folder, uid, dest)
	if err == nil {
		return nil
	}

	baseLogger.WithField("error", err).Warn("Server move failed")
	if c.configuration.Rollback && previous != nil {
		rollbackErr := c.cache.MoveMessage(ctx, id, previous.Folder, previous.UID)
		if rollbackErr != nil {
			baseLogger.WithField("error", rollbackErr).Warn("Could not roll back cached move")
		}
	}
	return fmt.Errorf("could not move %s to %s: %w", id, dest, err)
}

func (c *CachedMailbox) restore(ctx context.Context, message *domain.CachedMessage, body *domain.Body) {
	restored := message.Message
	if body != nil {
		restored.Text = body.Text
		restored.HTML = body.HTML
	}
	err := c.cache.UpsertMessages(ctx, []*domain.Message{&restored}, message.Folder)
	if err != nil {
		c.l.WithFields(logrus.Fields{"id": message.ID, "error": err}).Warn("Could not restore deleted message")
	}
}

// Folders returns the cached folder list, listing the server when the cache has none.
func (c *CachedMailbox) Folders(ctx context.Context) ([]*domain.Folder, error) {
	folders, err := c.cache.GetFolders(ctx)
	if err != nil {
		c.l.WithField("error", err).Warn("Could not read cached folders")
	}
	if len(folders) > 0 {
		return folders, nil
	}
	return c.sync.RefreshFolders(ctx)
}

func (c *CachedMailbox) Send(ctx context.Context, opts domain.SendOptions) error {
	if len(opts.SaveToFolder) == 0 {
		opts.SaveToFolder = c.configuration.SentFolder
	}
	err := c.session.Send(ctx, opts)
	if err != nil {
		return fmt.Errorf("could not send message: %w", err)
	}
	return nil
}

// Reply answers a cached message, threading headers are taken from the original.
func (c *CachedMailbox) Reply(ctx context.Context, id string, text string) error {
	original, err := c.message(ctx, id)
	if err != nil {
		return err
	}

	err = c.Send(ctx, mail.ReplyOptions(&original.Message, text))
	if err != nil {
		return err
	}

	answered := true
	err = c.cache.UpdateFlags(ctx, id, domain.FlagsUpdate{Answered: &answered})
	if err != nil {
		c.l.WithFields(logrus.Fields{"id": id, "error": err}).Warn("Could not mark cached message answered")
	}
	err = c.session.SetFlag(ctx, original.Folder, original.UID, domain.FlagAnswered, true)
	if err != nil {
		c.l.WithFields(logrus.Fields{"id": id, "error": err}).Warn("Could not mark message answered")
	}
	return nil
}

func (c *CachedMailbox) Status() Status {
	status := Status{State: c.session.State()}
	if reporter, ok := c.session.(errorReporter); ok && status.State == domain.Error {
		status.LastError = reporter.LastError()
	}
	return status
}

// Events streams sync progress. The channel is closed on Logout.
func (c *CachedMailbox) Events() <-chan mailsync.Event {
	return c.sync.Subscribe()
}

func (c *CachedMailbox) Stats(ctx context.Context) (*domain.CacheStats, error) {
	return c.cache.Stats(ctx)
}

func (c *CachedMailbox) Evict(ctx context.Context) (int64, error) {
	return c.sync.Evict(ctx)
}

// Logout stops all background work and disconnects without waiting for the server. The
// returned channel is closed once the disconnect attempt finished.
func (c *CachedMailbox) Logout() <-chan struct{} {
	c.once.Do(func() {
		c.loggedOut = make(chan struct{})
		c.cancel()
		c.sync.StopSchedule()
		c.sync.Stop()
		c.wg.Wait()

		go func() {
			defer close(c.loggedOut)
			err := c.session.Disconnect()
			if err != nil {
				c.l.WithField("error", err).Debug("Disconnect failed")
			}
		}()
		c.l.Info("Logged out")
	})
	return c.loggedOut
}

// Wait blocks until background syncs started by GetMessages finished.
func (c *CachedMailbox) Wait() {
	c.wg.Wait()
	c.sync.Wait()
}

// cached returns the cached message, nil when it is not cached or the cache cannot be read.
func (c *CachedMailbox) cached(ctx context.Context, id string) *domain.CachedMessage {
	message, err := c.cache.GetMessage(ctx, id)
	if err != nil {
		c.l.WithFields(logrus.Fields{"id": id, "error": err}).Warn("Could not look up cached message")
		return nil
	}
	return message
}

func (c *CachedMailbox) message(ctx context.Context, id string) (*domain.CachedMessage, error) {
	message, err := c.cache.GetMessage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not look up message %s: %w", id, err)
	}
	if message == nil {
		return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	return message, nil
}

func flagValue(flags domain.Flags, flag domain.Flag) bool {
	switch flag {
	case domain.FlagRead:
		return flags.Read
	case domain.FlagFlagged:
		return flags.Flagged
	case domain.FlagAnswered:
		return flags.Answered
	case domain.FlagDeleted:
		return flags.Deleted
	}
	return false
}
