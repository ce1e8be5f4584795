// SPDX-License-Identifier: GPL-3.0-or-later
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const messageColumns = `m.id, m.folder, m.uid, m.subject, m.from_name, m.from_address, m.recipients, m.cc,
	m.sent_at, m.attachments, m.flag_read, m.flag_flagged, m.flag_answered, m.flag_deleted,
	m.in_reply_to, m.refs, m.body_loaded, m.cached_at`

type dbMessage struct {
	Id           string
	Folder       string
	Uid          int64
	Subject      string
	FromName     string `db:"from_name"`
	FromAddress  string `db:"from_address"`
	Recipients   string
	Cc           string
	SentAt       int64 `db:"sent_at"`
	Attachments  string
	FlagRead     bool   `db:"flag_read"`
	FlagFlagged  bool   `db:"flag_flagged"`
	FlagAnswered bool   `db:"flag_answered"`
	FlagDeleted  bool   `db:"flag_deleted"`
	InReplyTo    string `db:"in_reply_to"`
	Refs         string
	BodyLoaded   bool  `db:"body_loaded"`
	CachedAt     int64 `db:"cached_at"`

	TextContent sql.NullString `db:"text_content"`
	HtmlContent sql.NullString `db:"html_content"`
}

func (m *dbMessage) toCached() (*domain.CachedMessage, error) {
	cached := &domain.CachedMessage{
		Message: domain.Message{
			ID:          m.Id,
			UID:         uint32(m.Uid),
			Folder:      m.Folder,
			Subject:     m.Subject,
			From:        domain.EmailAddress{Name: m.FromName, Address: m.FromAddress},
			To:          []domain.EmailAddress{},
			Date:        fromMillis(m.SentAt),
			Text:        m.TextContent.String,
			HTML:        m.HtmlContent.String,
			Attachments: []domain.Attachment{},
			Flags: domain.Flags{
				Read:     m.FlagRead,
				Flagged:  m.FlagFlagged,
				Answered: m.FlagAnswered,
				Deleted:  m.FlagDeleted,
			},
			InReplyTo: m.InReplyTo,
		},
		CachedAt:   fromMillis(m.CachedAt),
		BodyLoaded: m.BodyLoaded,
	}

	for _, decode := range []struct {
		raw string
		v   interface{}
	}{
		{m.Recipients, &cached.To},
		{m.Cc, &cached.Cc},
		{m.Attachments, &cached.Attachments},
		{m.Refs, &cached.References},
	} {
		if err := fromJson(decode.raw, decode.v); err != nil {
			return nil, fmt.Errorf("could not decode message %s: %w", m.Id, err)
		}
	}

	return cached, nil
}

// UpsertMessages inserts or updates metadata of messages in folder. Bodies that are already
// cached are kept, the insertion time of existing records is not changed.
func (p *Persistence) UpsertMessages(ctx context.Context, messages []*domain.Message, folder string) error {
	if len(messages) == 0 {
		return nil
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return cacheError("upsert messages", fmt.Errorf("could not start transaction: %w", err))
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`
		INSERT INTO messages (account, id, folder, uid, subject, from_name, from_address, recipients, cc, sent_at,
			attachments, flag_read, flag_flagged, flag_answered, flag_deleted, in_reply_to, refs, body_loaded, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account, id) DO UPDATE SET
			folder = excluded.folder,
			uid = excluded.uid,
			subject = excluded.subject,
			from_name = excluded.from_name,
			from_address = excluded.from_address,
			recipients = excluded.recipients,
			cc = excluded.cc,
			sent_at = excluded.sent_at,
			attachments = excluded.attachments,
			flag_read = excluded.flag_read,
			flag_flagged = excluded.flag_flagged,
			flag_answered = excluded.flag_answered,
			flag_deleted = excluded.flag_deleted,
			in_reply_to = excluded.in_reply_to,
			refs = excluded.refs,
			body_loaded = messages.body_loaded OR excluded.body_loaded`,
	))
	if err != nil {
		return cacheError("upsert messages", txEnd(tx, fmt.Errorf("could not prepare statement: %w", err)))
	}
	defer stmt.Close()

	now := toMillis(p.now())
	withBody := []*domain.Message{}
	for _, m := range messages {
		args, err := messageArgs(p.account, m, folder, now)
		if err != nil {
			return cacheError("upsert messages", txEnd(tx, err))
		}

		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			return cacheError("upsert messages", txEnd(tx, fmt.Errorf("could not save message %s: %w", m.ID, err)))
		}

		if m.BodyLoaded() {
			withBody = append(withBody, m)
		}
	}

	for _, m := range withBody {
		err = insertBody(ctx, tx, p.account, bodyOf(m), false)
		if err != nil {
			return cacheError("upsert messages", txEnd(tx, err))
		}
	}

	err = txEnd(tx, nil)
	if err != nil {
		return cacheError("upsert messages", err)
	}

	p.l.WithFields(logrus.Fields{"folder": folder, "count": len(messages)}).Debug("Persisted messages")
	return nil
}

func messageArgs(account string, m *domain.Message, folder string, cachedAt int64) ([]interface{}, error) {
	encoded := []string{}
	for _, v := range []interface{}{nonNilAddresses(m.To), nonNilAddresses(m.Cc), nonNilAttachments(m.Attachments), nonNilStrings(m.References)} {
		s, err := toJson(v)
		if err != nil {
			return nil, fmt.Errorf("could not encode message %s: %w", m.ID, err)
		}
		encoded = append(encoded, s)
	}

	return []interface{}{
		account, m.ID, folder, int64(m.UID), m.Subject, m.From.Name, m.From.Address, encoded[0], encoded[1],
		toMillis(m.Date), encoded[2], m.Flags.Read, m.Flags.Flagged, m.Flags.Answered, m.Flags.Deleted,
		m.InReplyTo, encoded[3], m.BodyLoaded(), cachedAt,
	}, nil
}

func (p *Persistence) GetMessages(ctx context.Context, folder string, limit int) ([]*domain.CachedMessage, error) {
	qry := `SELECT ` + messageColumns + ` FROM messages m WHERE m.account = ? AND m.folder = ? ORDER BY m.sent_at DESC, m.uid DESC`
	args := []interface{}{p.account, folder}
	if limit > 0 {
		qry += ` LIMIT ?`
		args = append(args, limit)
	}
	return p.selectMessages(ctx, "get messages", qry, args...)
}

func (p *Persistence) GetMessagesAfter(ctx context.Context, folder string, uid uint32) ([]*domain.CachedMessage, error) {
	return p.selectMessages(
		ctx,
		"get messages after",
		`SELECT `+messageColumns+` FROM messages m WHERE m.account = ? AND m.folder = ? AND m.uid > ? ORDER BY m.sent_at DESC, m.uid DESC`,
		p.account, folder, int64(uid),
	)
}

func (p *Persistence) selectMessages(ctx context.Context, op string, qry string, args ...interface{}) ([]*domain.CachedMessage, error) {
	dbMessages := []*dbMessage{}
	err := p.db.SelectContext(ctx, &dbMessages, p.db.Rebind(qry), args...)
	if err != nil {
		return nil, cacheError(op, fmt.Errorf("could not query db: %w", err))
	}

	messages := make([]*domain.CachedMessage, 0, len(dbMessages))
	for _, m := range dbMessages {
		cached, err := m.toCached()
		if err != nil {
			return nil, cacheError(op, err)
		}
		messages = append(messages, cached)
	}
	return messages, nil
}

// GetMessage returns the message including its cached body, nil if it is not cached.
func (p *Persistence) GetMessage(ctx context.Context, id string) (*domain.CachedMessage, error) {
	dbMsg := &dbMessage{}
	err := p.db.GetContext(ctx, dbMsg, p.db.Rebind(
		`SELECT `+messageColumns+`, b.text_content, b.html_content
		FROM messages m LEFT JOIN bodies b ON b.account = m.account AND b.message_id = m.id
		WHERE m.account = ? AND m.id = ?`,
	), p.account, id)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, cacheError("get message", fmt.Errorf("could not query db: %w", err))
	}

	cached, err := dbMsg.toCached()
	if err != nil {
		return nil, cacheError("get message", err)
	}
	return cached, nil
}

func (p *Persistence) CountMessages(ctx context.Context, folder string) (int, error) {
	count := 0
	err := p.db.GetContext(ctx, &count, p.db.Rebind(`SELECT COUNT(*) FROM messages WHERE account = ? AND folder = ?`), p.account, folder)
	if err != nil {
		return 0, cacheError("count messages", fmt.Errorf("could not query db: %w", err))
	}
	return count, nil
}

// MinUID returns the lowest cached uid of folder, 0 when the folder is empty.
func (p *Persistence) MinUID(ctx context.Context, folder string) (uint32, error) {
	var min sql.NullInt64
	err := p.db.GetContext(ctx, &min, p.db.Rebind(`SELECT MIN(uid) FROM messages WHERE account = ? AND folder = ?`), p.account, folder)
	if err != nil {
		return 0, cacheError("min uid", fmt.Errorf("could not query db: %w", err))
	}
	return uint32(min.Int64), nil
}

func (p *Persistence) UpsertBody(ctx context.Context, body *domain.Body) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return cacheError("upsert body", fmt.Errorf("could not start transaction: %w", err))
	}

	err = insertBody(ctx, tx, p.account, body, true)
	if err != nil {
		return cacheError("upsert body", txEnd(tx, err))
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE messages SET body_loaded = ? WHERE account = ? AND id = ?`), true, p.account, body.MessageID)
	if err != nil {
		return cacheError("upsert body", txEnd(tx, fmt.Errorf("could not mark body loaded: %w", err)))
	}

	err = txEnd(tx, nil)
	if err != nil {
		return cacheError("upsert body", err)
	}

	p.l.WithField("id", body.MessageID).Debug("Persisted body")
	return nil
}

func insertBody(ctx context.Context, tx *sqlx.Tx, account string, body *domain.Body, replace bool) error {
	attachments, err := toJson(nonNilAttachments(body.Attachments))
	if err != nil {
		return fmt.Errorf("could not encode body %s: %w", body.MessageID, err)
	}

	conflict := `DO NOTHING`
	if replace {
		conflict = `DO UPDATE SET uid = excluded.uid, text_content = excluded.text_content,
			html_content = excluded.html_content, attachments = excluded.attachments`
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(
		`INSERT INTO bodies (account, message_id, uid, text_content, html_content, attachments) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account, message_id) `+conflict,
	), account, body.MessageID, int64(body.UID), body.Text, body.HTML, attachments)
	if err != nil {
		return fmt.Errorf("could not save body %s: %w", body.MessageID, err)
	}
	return nil
}

func (p *Persistence) GetBody(ctx context.Context, messageID string) (*domain.Body, error) {
	dbBody := struct {
		MessageId   string `db:"message_id"`
		Uid         int64
		TextContent string `db:"text_content"`
		HtmlContent string `db:"html_content"`
		Attachments string
	}{}

	err := p.db.GetContext(ctx, &dbBody, p.db.Rebind(
		`SELECT message_id, uid, text_content, html_content, attachments FROM bodies WHERE account = ? AND message_id = ?`,
	), p.account, messageID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, cacheError("get body", fmt.Errorf("could not query db: %w", err))
	}

	body := &domain.Body{
		MessageID:   dbBody.MessageId,
		UID:         uint32(dbBody.Uid),
		Text:        dbBody.TextContent,
		HTML:        dbBody.HtmlContent,
		Attachments: []domain.Attachment{},
	}
	err = fromJson(dbBody.Attachments, &body.Attachments)
	if err != nil {
		return nil, cacheError("get body", err)
	}
	return body, nil
}

// UpdateFlags applies a partial flag update, fields left nil keep their cached value.
func (p *Persistence) UpdateFlags(ctx context.Context, messageID string, update domain.FlagsUpdate) error {
	if update.Empty() {
		return nil
	}

	result, err := p.db.ExecContext(ctx, p.db.Rebind(`
		UPDATE messages SET
			flag_read = COALESCE(?, flag_read),
			flag_flagged = COALESCE(?, flag_flagged),
			flag_answered = COALESCE(?, flag_answered),
			flag_deleted = COALESCE(?, flag_deleted)
		WHERE account = ? AND id = ?`),
		update.Read, update.Flagged, update.Answered, update.Deleted, p.account, messageID,
	)
	if err != nil {
		return cacheError("update flags", fmt.Errorf("could not update flags: %w", err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return cacheError("update flags", fmt.Errorf("could not get num of affected rows: %w", err))
	}
	if affected == 0 {
		return fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound)
	}

	return nil
}

// DeleteMessage removes metadata and body of a message together. Deleting an unknown message
// is not an error.
func (p *Persistence) DeleteMessage(ctx context.Context, messageID string) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return cacheError("delete message", fmt.Errorf("could not start transaction: %w", err))
	}

	for _, q := range []string{
		`DELETE FROM bodies WHERE account = ? AND message_id = ?`,
		`DELETE FROM messages WHERE account = ? AND id = ?`,
	} {
		_, err = tx.ExecContext(ctx, tx.Rebind(q), p.account, messageID)
		if err != nil {
			return cacheError("delete message", txEnd(tx, fmt.Errorf("could not delete message %s: %w", messageID, err)))
		}
	}

	err = txEnd(tx, nil)
	if err != nil {
		return cacheError("delete message", err)
	}

	p.l.WithField("id", messageID).Debug("Deleted message")
	return nil
}

// MoveMessage files a cached message under folder with uid. The uid a message gets in the
// destination folder is unknown until that folder is synced, callers pass 0 then.
func (p *Persistence) MoveMessage(ctx context.Context, messageID string, folder string, uid uint32) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return cacheError("move message", fmt.Errorf("could not start transaction: %w", err))
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(
		`UPDATE messages SET folder = ?, uid = ? WHERE account = ? AND id = ?`,
	), folder, int64(uid), p.account, messageID)
	if err != nil {
		return cacheError("move message", txEnd(tx, fmt.Errorf("could not move message %s: %w", messageID, err)))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return cacheError("move message", txEnd(tx, fmt.Errorf("could not get num of affected rows: %w", err)))
	}
	if affected == 0 {
		return txEnd(tx, fmt.Errorf("message %s: %w", messageID, domain.ErrNotFound))
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(
		`UPDATE bodies SET uid = ? WHERE account = ? AND message_id = ?`,
	), int64(uid), p.account, messageID)
	if err != nil {
		return cacheError("move message", txEnd(tx, fmt.Errorf("could not move body %s: %w", messageID, err)))
	}

	err = txEnd(tx, nil)
	if err != nil {
		return cacheError("move message", err)
	}

	p.l.WithFields(logrus.Fields{"id": messageID, "folder": folder}).Debug("Moved message")
	return nil
}

// EvictOlderThan removes messages and folder entries that were written to the cache more than
// days ago and returns the number of evicted messages. Cursors are kept, evicted messages are
// not fetched again by an incremental sync.
func (p *Persistence) EvictOlderThan(ctx context.Context, days int) (int64, error) {
	cutoff := toMillis(p.now().Add(-time.Duration(days) * 24 * time.Hour))

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, cacheError("evict", fmt.Errorf("could not start transaction: %w", err))
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(
		`DELETE FROM bodies WHERE account = ? AND message_id IN (SELECT id FROM messages WHERE account = ? AND cached_at < ?)`,
	), p.account, p.account, cutoff)
	if err != nil {
		return 0, cacheError("evict", txEnd(tx, fmt.Errorf("could not evict bodies: %w", err)))
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM messages WHERE account = ? AND cached_at < ?`), p.account, cutoff)
	if err != nil {
		return 0, cacheError("evict", txEnd(tx, fmt.Errorf("could not evict messages: %w", err)))
	}

	evicted, err := result.RowsAffected()
	if err != nil {
		return 0, cacheError("evict", txEnd(tx, fmt.Errorf("could not get num of affected rows: %w", err)))
	}

	result, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM folders WHERE account = ? AND cached_at < ?`), p.account, cutoff)
	if err != nil {
		return 0, cacheError("evict", txEnd(tx, fmt.Errorf("could not evict folders: %w", err)))
	}

	folders, err := result.RowsAffected()
	if err != nil {
		return 0, cacheError("evict", txEnd(tx, fmt.Errorf("could not get num of affected rows: %w", err)))
	}

	err = txEnd(tx, nil)
	if err != nil {
		return 0, cacheError("evict", err)
	}

	p.l.WithFields(logrus.Fields{"days": days, "evicted": evicted, "folders": folders}).Info("Evicted messages")
	return evicted, nil
}

func bodyOf(m *domain.Message) *domain.Body {
	return &domain.Body{
		MessageID:   m.ID,
		UID:         m.UID,
		Text:        m.Text,
		HTML:        m.HTML,
		Attachments: m.Attachments,
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nonNilAddresses(a []domain.EmailAddress) []domain.EmailAddress {
	if a == nil {
		return []domain.EmailAddress{}
	}
	return a
}

func nonNilAttachments(a []domain.Attachment) []domain.Attachment {
	if a == nil {
		return []domain.Attachment{}
	}
	return a
}

func nonNilStrings(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}
