// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/log"
	"github.com/CrawX/go-imap-mailsync/persistence/migrations"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rubenv/sql-migrate"
	"github.com/sirupsen/logrus"
)

const (
	DriverSqlite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Persistence is the sql backed local cache. Writes of a single record are atomic, deleting a
// message removes metadata and body in one transaction. Every row belongs to an account, see
// ForAccount.
type Persistence struct {
	db      *sqlx.DB
	driver  string
	account string
	view    bool
	now     func() time.Time
	l       *logrus.Logger
}

func NewPersistence(driver string, datasource string) (*Persistence, error) {
	if driver != DriverSqlite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Connect(driver, datasource)
	if err != nil {
		return nil, fmt.Errorf("could not open db: %w", err)
	}

	l := log.Logger(log.LOG_CACHE)

	if driver == DriverSqlite {
		// a single connection keeps :memory: databases alive and serializes writers
		db.SetMaxOpenConns(1)

		_, err = db.Exec(`PRAGMA journal_mode=WAL`)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("could not set journal mode: %w", err)
		}
		_, err = db.Exec(`PRAGMA synchronous=normal`)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("could not set synchronous mode: %w", err)
		}
	}
	l.WithFields(logrus.Fields{"driver": driver}).Info("Connected")

	migrationSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations.FS,
		Root:       migrations.Root,
	}
	appliedMigrations, err := migrate.Exec(db.DB, driver, migrationSource, migrate.Up)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not migrate to newest version: %w", err)
	}

	l.WithField("migrations", appliedMigrations).Debug("Executed migrations")

	return &Persistence{
		db:     db,
		driver: driver,
		now:    time.Now,
		l:      l,
	}, nil
}

// ForAccount returns a cache that only reads and writes the rows of account. The view shares
// the connection pool of p, closing it leaves the database open.
func (p *Persistence) ForAccount(account string) *Persistence {
	return &Persistence{
		db:      p.db,
		driver:  p.driver,
		account: account,
		view:    true,
		now:     p.now,
		l:       p.l,
	}
}

func (p *Persistence) Close() error {
	if p.view {
		return nil
	}
	err := p.db.Close()
	if err != nil {
		return cacheError("close", fmt.Errorf("could not close db: %w", err))
	}
	p.l.Info("Disconnected")
	return nil
}

func (p *Persistence) UpsertFolders(ctx context.Context, folders []*domain.Folder) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return cacheError("upsert folders", fmt.Errorf("could not start transaction: %w", err))
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM folders WHERE account = ?`), p.account)
	if err != nil {
		return cacheError("upsert folders", txEnd(tx, fmt.Errorf("could not clear folders: %w", err)))
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(
		`INSERT INTO folders (account, path, name, delimiter, attributes, cached_at) VALUES (?, ?, ?, ?, ?, ?)`,
	))
	if err != nil {
		return cacheError("upsert folders", txEnd(tx, fmt.Errorf("could not prepare statement: %w", err)))
	}
	defer stmt.Close()

	now := toMillis(p.now())
	for _, f := range folders {
		attributes, err := toJson(nonNilStrings(f.Attributes))
		if err != nil {
			return cacheError("upsert folders", txEnd(tx, err))
		}
		_, err = stmt.ExecContext(ctx, p.account, f.Path, f.Name, f.Delimiter, attributes, now)
		if err != nil {
			return cacheError("upsert folders", txEnd(tx, fmt.Errorf("could not save folder %s: %w", f.Path, err)))
		}
	}

	err = txEnd(tx, nil)
	if err != nil {
		return cacheError("upsert folders", err)
	}

	p.l.WithField("count", len(folders)).Debug("Persisted folders")
	return nil
}

func (p *Persistence) GetFolders(ctx context.Context) ([]*domain.Folder, error) {
	dbFolders := []struct {
		Path       string
		Name       string
		Delimiter  string
		Attributes string
		CachedAt   int64 `db:"cached_at"`
	}{}

	err := p.db.SelectContext(ctx, &dbFolders, p.db.Rebind(
		`SELECT path, name, delimiter, attributes, cached_at FROM folders WHERE account = ? ORDER BY path`,
	), p.account)
	if err != nil {
		return nil, cacheError("get folders", fmt.Errorf("could not query db: %w", err))
	}

	folders := []*domain.Folder{}
	for _, f := range dbFolders {
		folder := &domain.Folder{
			Name:       f.Name,
			Path:       f.Path,
			Delimiter:  f.Delimiter,
			Attributes: []string{},
			CachedAt:   fromMillis(f.CachedAt),
		}
		err = fromJson(f.Attributes, &folder.Attributes)
		if err != nil {
			return nil, cacheError("get folders", err)
		}
		folders = append(folders, folder)
	}

	return folders, nil
}

// SetCursor stores the sync position of folder. Within the same UIDVALIDITY the stored uid
// only ever grows, a new UIDVALIDITY replaces it.
func (p *Persistence) SetCursor(ctx context.Context, folder string, lastUID uint32, uidValidity uint32) error {
	_, err := p.db.ExecContext(ctx, p.db.Rebind(`
		INSERT INTO cursors (account, folder, last_seen_uid, uid_validity, last_sync) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (account, folder) DO UPDATE SET
			last_seen_uid = CASE
				WHEN cursors.uid_validity = excluded.uid_validity AND cursors.last_seen_uid > excluded.last_seen_uid
				THEN cursors.last_seen_uid
				ELSE excluded.last_seen_uid
			END,
			uid_validity = excluded.uid_validity,
			last_sync = excluded.last_sync`),
		p.account, folder, int64(lastUID), int64(uidValidity), toMillis(p.now()),
	)
	if err != nil {
		return cacheError("set cursor", fmt.Errorf("could not save cursor for %s: %w", folder, err))
	}

	p.l.WithFields(logrus.Fields{"folder": folder, "uid": lastUID, "uidValidity": uidValidity}).Debug("Persisted cursor")
	return nil
}

func (p *Persistence) GetCursor(ctx context.Context, folder string) (*domain.SyncCursor, error) {
	dbCursor := struct {
		Folder      string
		LastSeenUid int64 `db:"last_seen_uid"`
		UidValidity int64 `db:"uid_validity"`
		LastSync    int64 `db:"last_sync"`
	}{}

	err := p.db.GetContext(ctx, &dbCursor, p.db.Rebind(
		`SELECT folder, last_seen_uid, uid_validity, last_sync FROM cursors WHERE account = ? AND folder = ?`,
	), p.account, folder)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, cacheError("get cursor", fmt.Errorf("could not query db: %w", err))
	}

	return &domain.SyncCursor{
		Folder:      dbCursor.Folder,
		LastSeenUID: uint32(dbCursor.LastSeenUid),
		UIDValidity: uint32(dbCursor.UidValidity),
		LastSync:    fromMillis(dbCursor.LastSync),
	}, nil
}

// ClearFolder drops all messages, bodies and the cursor of folder.
func (p *Persistence) ClearFolder(ctx context.Context, folder string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return cacheError("clear folder", fmt.Errorf("could not start transaction: %w", err))
	}

	queries := []struct {
		qry  string
		args []interface{}
	}{
		{
			`DELETE FROM bodies WHERE account = ? AND message_id IN (SELECT id FROM messages WHERE account = ? AND folder = ?)`,
			[]interface{}{p.account, p.account, folder},
		},
		{`DELETE FROM messages WHERE account = ? AND folder = ?`, []interface{}{p.account, folder}},
		{`DELETE FROM cursors WHERE account = ? AND folder = ?`, []interface{}{p.account, folder}},
	}
	for _, q := range queries {
		_, err = tx.ExecContext(ctx, tx.Rebind(q.qry), q.args...)
		if err != nil {
			return cacheError("clear folder", txEnd(tx, fmt.Errorf("could not clear folder %s: %w", folder, err)))
		}
	}

	err = txEnd(tx, nil)
	if err != nil {
		return cacheError("clear folder", err)
	}

	p.l.WithField("folder", folder).Info("Cleared folder")
	return nil
}

func (p *Persistence) Stats(ctx context.Context) (*domain.CacheStats, error) {
	dbStats := struct {
		Messages int
		Oldest   *int64
		Newest   *int64
	}{}
	err := p.db.GetContext(ctx, &dbStats, p.db.Rebind(
		`SELECT COUNT(*) AS messages, MIN(sent_at) AS oldest, MAX(sent_at) AS newest FROM messages WHERE account = ?`,
	), p.account)
	if err != nil {
		return nil, cacheError("stats", fmt.Errorf("could not query db: %w", err))
	}

	stats := &domain.CacheStats{TotalMessages: dbStats.Messages}
	err = p.db.GetContext(ctx, &stats.TotalBodies, p.db.Rebind(`SELECT COUNT(*) FROM bodies WHERE account = ?`), p.account)
	if err != nil {
		return nil, cacheError("stats", fmt.Errorf("could not query db: %w", err))
	}
	err = p.db.GetContext(ctx, &stats.TotalFolders, p.db.Rebind(`SELECT COUNT(*) FROM folders WHERE account = ?`), p.account)
	if err != nil {
		return nil, cacheError("stats", fmt.Errorf("could not query db: %w", err))
	}

	if dbStats.Oldest != nil {
		oldest := fromMillis(*dbStats.Oldest)
		stats.Oldest = &oldest
	}
	if dbStats.Newest != nil {
		newest := fromMillis(*dbStats.Newest)
		stats.Newest = &newest
	}
	return stats, nil
}

func cacheError(op string, err error) error {
	return &domain.CacheError{Op: op, Err: err}
}

func toJson(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("could not encode: %w", err)
	}
	return string(b), nil
}

func fromJson(s string, v interface{}) error {
	if len(s) == 0 {
		return nil
	}
	err := json.Unmarshal([]byte(s), v)
	if err != nil {
		return fmt.Errorf("could not decode: %w", err)
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func txEnd(tx *sqlx.Tx, err error) error {
	if err == nil {
		err = tx.Commit()
		if err != nil {
			return fmt.Errorf("could not commit tx: %w", err)
		}
	} else {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			errStr := err.Error()
			return fmt.Errorf("%s, could not rollback tx: %w", errStr, rollbackErr)
		} else {
			return err
		}
	}

	return nil
}
