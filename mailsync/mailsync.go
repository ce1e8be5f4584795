// SPDX-License-Identifier: GPL-3.0-or-later
package mailsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/log"

	"github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeFull        = Mode("full")
	ModeIncremental = Mode("incremental")
	ModeBackground  = Mode("background")
)

type Result struct {
	Folder string
	Mode   Mode

	Fetched int
	Skipped int
	// Updated and Removed count cached messages whose flags changed or that were expunged on
	// the server.
	Updated int
	Removed int
	// HasMore is a heuristic, the last fetch returned as many messages as requested.
	HasMore bool

	Cursor      uint32
	UIDValidity uint32

	// Coalesced is set when another pass was running, the request is served by its follow-up.
	Coalesced bool
}

// Synchronizer reconciles the cache with the mailbox. At most one pass per folder runs at any time.
type Synchronizer struct {
	cache   domain.Cache
	session domain.MailboxSession

	configuration *configuration
	guards        *guards

	targetsMu sync.Mutex
	targets   map[string]int
	exhausted map[string]bool

	subsMu      sync.Mutex
	subscribers []chan Event
	stopped     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	schedMu     sync.Mutex
	schedCancel context.CancelFunc

	l *logrus.Logger
}

func NewSynchronizer(cache domain.Cache, session domain.MailboxSession, configFunc ...ConfigFunc) (*Synchronizer, error) {
	config := defaultConfiguration()
	for _, f := range configFunc {
		err := f(config)
		if err != nil {
			return nil, fmt.Errorf("error applying configuration: %w", err)
		}
	}
	if config.FastBatch > config.TargetLimit {
		config.FastBatch = config.TargetLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Synchronizer{
		cache:         cache,
		session:       session,
		configuration: config,
		guards:        newGuards(),
		targets:       map[string]int{},
		exhausted:     map[string]bool{},
		ctx:           ctx,
		cancel:        cancel,
		l:             log.Logger(log.LOG_SYNC),
	}, nil
}

// Target returns the number of messages the synchronizer loads for folder.
func (s *Synchronizer) Target(folder string) int {
	s.targetsMu.Lock()
	defer s.targetsMu.Unlock()

	if t, ok := s.targets[folder]; ok {
		return t
	}
	return s.configuration.TargetLimit
}

// RaiseTarget increases the target of folder by one BatchSize and returns the new target.
func (s *Synchronizer) RaiseTarget(folder string) int {
	s.targetsMu.Lock()
	defer s.targetsMu.Unlock()

	t, ok := s.targets[folder]
	if !ok {
		t = s.configuration.TargetLimit
	}
	t += s.configuration.BatchSize
	s.targets[folder] = t
	return t
}

// Sync runs an incremental pass, or a full pass when folder has no cursor yet. The first full
// pass only fetches FastBatch messages, the rest up to targetLimit is loaded in the background.
func (s *Synchronizer) Sync(ctx context.Context, folder string, targetLimit int) (*Result, error) {
	return s.run(ctx, folder, request{target: targetLimit}, true)
}

// FullSync ignores the cursor and fetches the newest messages again.
func (s *Synchronizer) FullSync(ctx context.Context, folder string, targetLimit int) (*Result, error) {
	return s.run(ctx, folder, request{target: targetLimit, full: true}, true)
}

func (s *Synchronizer) run(ctx context.Context, folder string, req request, collapse bool) (*Result, error) {
	if req.target < 1 {
		req.target = s.Target(folder)
	}

	if !s.guards.acquire(folder, req, collapse) {
		s.l.WithFields(logrus.Fields{"folder": folder, "collapsed": collapse}).Debug("Sync already running")
		return &Result{Folder: folder, Coalesced: true}, nil
	}

	result, fill, err := s.pass(ctx, folder, req)
	if (fill || s.guards.hasPending(folder)) && s.ctx.Err() == nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if fill {
				s.fill(s.ctx, folder, req.target)
			}
			s.followUps(folder)
		}()
		return result, err
	}

	s.followUps(folder)
	return result, err
}

// followUps runs collapsed requests until none is left and releases the folder.
func (s *Synchronizer) followUps(folder string) {
	for {
		req, ok := s.guards.next(folder)
		if !ok {
			return
		}
		if s.ctx.Err() != nil {
			continue
		}

		s.l.WithFields(logrus.Fields{"folder": folder, "target": req.target}).Debug("Running collapsed follow-up sync")
		_, fill, _ := s.pass(s.ctx, folder, req)
		if fill {
			s.fill(s.ctx, folder, req.target)
		}
	}
}

// pass runs one foreground pass. fill reports whether the cache holds less than the target and
// older messages may still exist on the server.
func (s *Synchronizer) pass(ctx context.Context, folder string, req request) (*Result, bool, error) {
	start := time.Now()
	s.publish(Event{Folder: folder, Kind: SyncStarted})
	baseLogger := s.l.WithFields(logrus.Fields{"folder": folder, "target": req.target})

	cursor, err := s.cache.GetCursor(ctx, folder)
	if err != nil {
		baseLogger.WithField("error", err).Warn("Could not read cursor, falling back to full sync")
		cursor = nil
	}

	var result *Result
	if cursor == nil || req.full {
		result, err = s.fullPass(ctx, folder, req.target, cursor)
	} else {
		result, err = s.incrementalPass(ctx, folder, req.target, cursor)
	}
	if err != nil {
		s.failed(folder, err)
		baseLogger.WithField("error", err).Warn("Sync failed")
		return result, false, err
	}

	s.publish(Event{Folder: folder, Kind: SyncFinished, Result: result})
	baseLogger.WithFields(logrus.Fields{
		"mode":     result.Mode,
		"fetched":  result.Fetched,
		"skipped":  result.Skipped,
		"updated":  result.Updated,
		"removed":  result.Removed,
		"cursor":   result.Cursor,
		"duration": time.Since(start),
	}).Info("Synced folder")

	return result, s.needsFill(ctx, folder, req.target), nil
}

func (s *Synchronizer) fullPass(ctx context.Context, folder string, target int, cursor *domain.SyncCursor) (*Result, error) {
	limit := s.configuration.FastBatch
	if target < limit {
		limit = target
	}

	fetched, err := s.session.FetchMessages(ctx, folder, domain.FetchOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("could not fetch messages of %s: %w", folder, err)
	}

	if cursor != nil && cursor.UIDValidity != fetched.UIDValidity {
		err = s.resetFolder(ctx, folder, cursor.UIDValidity, fetched.UIDValidity)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Folder:      folder,
		Mode:        ModeFull,
		HasMore:     len(fetched.Messages)+fetched.Skipped == limit,
		UIDValidity: fetched.UIDValidity,
	}
	if cursor != nil && cursor.UIDValidity == fetched.UIDValidity {
		result.Cursor = cursor.LastSeenUID
	}
	if fetched.Requested < limit {
		s.setExhausted(folder, true)
	}
	return result, s.merge(ctx, folder, fetched, result)
}

func (s *Synchronizer) incrementalPass(ctx context.Context, folder string, target int, cursor *domain.SyncCursor) (*Result, error) {
	fetched, err := s.session.FetchMessagesAfter(ctx, folder, cursor.LastSeenUID)
	if err != nil {
		return nil, fmt.Errorf("could not fetch new messages of %s: %w", folder, err)
	}

	if cursor.UIDValidity != fetched.UIDValidity {
		err = s.resetFolder(ctx, folder, cursor.UIDValidity, fetched.UIDValidity)
		if err != nil {
			return nil, err
		}
		return s.fullPass(ctx, folder, target, nil)
	}

	result := &Result{
		Folder:      folder,
		Mode:        ModeIncremental,
		UIDValidity: fetched.UIDValidity,
		Cursor:      cursor.LastSeenUID,
	}
	err = s.merge(ctx, folder, fetched, result)
	if err != nil {
		return result, err
	}
	return result, s.reconcile(ctx, folder, cursor, result)
}

// reconcile diffs the cached messages up to the cursor against the server. Flags changed by
// other clients are applied, messages the server no longer has are dropped.
func (s *Synchronizer) reconcile(ctx context.Context, folder string, cursor *domain.SyncCursor, result *Result) error {
	baseLogger := s.l.WithField("folder", folder)

	cached, err := s.cache.GetMessages(ctx, folder, 0)
	if err != nil {
		baseLogger.WithField("error", err).Warn("Could not read cached messages, skipping reconciliation")
		return nil
	}

	local := map[uint32]*domain.CachedMessage{}
	uids := []uint32{}
	for _, m := range cached {
		// uid 0 marks a message moved here locally, its uid is learned by the next fetch
		if m.UID == 0 || m.UID > cursor.LastSeenUID {
			continue
		}
		local[m.UID] = m
		uids = append(uids, m.UID)
	}
	if len(uids) == 0 {
		return nil
	}

	remote, err := s.session.FetchFlags(ctx, folder, uids)
	if err != nil {
		return fmt.Errorf("could not fetch flags of %s: %w", folder, err)
	}
	if remote.UIDValidity != cursor.UIDValidity {
		baseLogger.Info("UIDVALIDITY changed during reconciliation, leaving it to the next pass")
		return nil
	}

	for uid, m := range local {
		flags, ok := remote.Flags[uid]
		if !ok {
			err = s.cache.DeleteMessage(ctx, m.ID)
			if err != nil {
				baseLogger.WithFields(logrus.Fields{"uid": uid, "error": err}).Warn("Could not drop expunged message")
				continue
			}
			result.Removed++
			continue
		}
		if flags == m.Flags {
			continue
		}

		err = s.cache.UpdateFlags(ctx, m.ID, domain.FlagsUpdate{
			Read:     &flags.Read,
			Flagged:  &flags.Flagged,
			Answered: &flags.Answered,
			Deleted:  &flags.Deleted,
		})
		if err != nil {
			baseLogger.WithFields(logrus.Fields{"uid": uid, "error": err}).Warn("Could not update flags")
			continue
		}
		result.Updated++
	}
	return nil
}

// merge writes fetched into the cache and advances the cursor to the highest uid seen.
func (s *Synchronizer) merge(ctx context.Context, folder string, fetched *domain.FetchResult, result *Result) error {
	result.Fetched = len(fetched.Messages)
	result.Skipped = fetched.Skipped

	if len(fetched.Messages) > 0 {
		err := s.cache.UpsertMessages(ctx, fetched.Messages, folder)
		if err != nil {
			// the cursor must not move past messages that never reached the cache
			return fmt.Errorf("could not cache messages of %s: %w", folder, err)
		}
	}

	if fetched.MaxUID > result.Cursor {
		result.Cursor = fetched.MaxUID
	}
	if result.Cursor == 0 {
		return nil
	}

	err := s.cache.SetCursor(ctx, folder, result.Cursor, fetched.UIDValidity)
	if err != nil {
		return fmt.Errorf("could not save cursor of %s: %w", folder, err)
	}
	return nil
}

func (s *Synchronizer) resetFolder(ctx context.Context, folder string, old uint32, current uint32) error {
	s.l.WithFields(logrus.Fields{"folder": folder, "old": old, "new": current}).Warn("UIDVALIDITY changed, dropping cached folder")
	s.setExhausted(folder, false)
	err := s.cache.ClearFolder(ctx, folder)
	if err != nil {
		return fmt.Errorf("could not clear folder %s: %w", folder, err)
	}
	return nil
}

func (s *Synchronizer) needsFill(ctx context.Context, folder string, target int) bool {
	if s.isExhausted(folder) {
		return false
	}
	count, err := s.cache.CountMessages(ctx, folder)
	if err != nil {
		s.l.WithFields(logrus.Fields{"folder": folder, "error": err}).Warn("Could not count cached messages")
		return false
	}
	return count < target
}

// fill loads older messages in BatchSize steps until the cache holds target messages or the
// server has no older messages left.
func (s *Synchronizer) fill(ctx context.Context, folder string, target int) {
	baseLogger := s.l.WithFields(logrus.Fields{"folder": folder, "target": target})

	before, err := s.cache.MinUID(ctx, folder)
	if err != nil {
		s.failed(folder, err)
		return
	}

	for ctx.Err() == nil {
		count, err := s.cache.CountMessages(ctx, folder)
		if err != nil {
			s.failed(folder, err)
			return
		}
		if count >= target {
			return
		}
		if before == 1 {
			s.setExhausted(folder, true)
			return
		}

		limit := target - count
		if limit > s.configuration.BatchSize {
			limit = s.configuration.BatchSize
		}

		fetched, err := s.session.FetchMessages(ctx, folder, domain.FetchOptions{Limit: limit, BeforeUID: before})
		if err != nil {
			s.failed(folder, fmt.Errorf("could not fetch older messages of %s: %w", folder, err))
			return
		}

		cursor, err := s.cache.GetCursor(ctx, folder)
		if err == nil && cursor != nil && cursor.UIDValidity != fetched.UIDValidity {
			baseLogger.Info("UIDVALIDITY changed during background fill, stopping")
			return
		}

		result := &Result{
			Folder:      folder,
			Mode:        ModeBackground,
			HasMore:     len(fetched.Messages)+fetched.Skipped == limit,
			UIDValidity: fetched.UIDValidity,
		}
		if cursor != nil {
			result.Cursor = cursor.LastSeenUID
		}
		err = s.merge(ctx, folder, fetched, result)
		if err != nil {
			s.failed(folder, err)
			return
		}

		s.publish(Event{Folder: folder, Kind: BatchLoaded, Result: result})
		baseLogger.WithFields(logrus.Fields{"fetched": result.Fetched, "skipped": result.Skipped}).Debug("Loaded older messages")

		if fetched.Requested < limit || fetched.MinUID == 0 {
			s.setExhausted(folder, true)
			return
		}
		before = fetched.MinUID
	}
}

func (s *Synchronizer) failed(folder string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if domain.IsConnectionError(err) {
		s.publish(Event{Folder: folder, Kind: ConnectionLost, Err: err})
		return
	}
	s.publish(Event{Folder: folder, Kind: SyncFailed, Err: err})
}

func (s *Synchronizer) setExhausted(folder string, exhausted bool) {
	s.targetsMu.Lock()
	defer s.targetsMu.Unlock()
	if exhausted {
		s.exhausted[folder] = true
	} else {
		delete(s.exhausted, folder)
	}
}

func (s *Synchronizer) isExhausted(folder string) bool {
	s.targetsMu.Lock()
	defer s.targetsMu.Unlock()
	return s.exhausted[folder]
}

// Running reports whether a pass or background fill for folder is in flight.
func (s *Synchronizer) Running(folder string) bool {
	return s.guards.busy(folder)
}

// RefreshFolders lists the folders on the server and stores them in the cache.
func (s *Synchronizer) RefreshFolders(ctx context.Context) ([]*domain.Folder, error) {
	folders, err := s.session.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list folders: %w", err)
	}

	err = s.cache.UpsertFolders(ctx, folders)
	if err != nil {
		s.l.WithField("error", err).Warn("Could not cache folder list")
	}
	return folders, nil
}

// Wait blocks until all background passes finished.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// Stop cancels the scheduled loop and background fills, waits for them and closes all
// subscriptions. A stopped synchronizer cannot be started again.
func (s *Synchronizer) Stop() {
	s.cancel()
	s.wg.Wait()
	s.closeSubscribers()
	s.l.Debug("Stopped")
}
