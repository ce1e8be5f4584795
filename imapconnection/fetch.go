// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"
	"github.com/CrawX/go-imap-mailsync/mail"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"
)

// FetchBatchSize bounds the number of uids per UID FETCH command.
const FetchBatchSize = 100

var referencesSection = &imap.BodySectionName{
	BodyPartName: imap.BodyPartName{
		Specifier: imap.HeaderSpecifier,
		Fields:    []string{"References"},
	},
	Peek: true,
}

var metadataItems = []imap.FetchItem{
	imap.FetchUid,
	imap.FetchFlags,
	imap.FetchEnvelope,
	imap.FetchInternalDate,
	imap.FetchBodyStructure,
	referencesSection.FetchItem(),
}

func (s *ImapSession) ListFolders(ctx context.Context) ([]*domain.Folder, error) {
	folders := []*domain.Folder{}
	err := s.run(ctx, "list", "", func(conn *connection) error {
		mailboxes := make(chan *imap.MailboxInfo, 10)
		done := make(chan error, 1)
		go func() {
			done <- conn.List("", "*", mailboxes)
		}()

		for m := range mailboxes {
			folders = append(folders, folderFromMailboxInfo(m))
		}

		err := <-done
		if err != nil {
			return fmt.Errorf("could not list folders: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Path < folders[j].Path })
	s.l.WithField("count", len(folders)).Debug("Listed folders")
	return folders, nil
}

func folderFromMailboxInfo(m *imap.MailboxInfo) *domain.Folder {
	name := m.Name
	if len(m.Delimiter) > 0 {
		if i := strings.LastIndex(m.Name, m.Delimiter); i >= 0 {
			name = m.Name[i+len(m.Delimiter):]
		}
	}
	return &domain.Folder{
		Name:       name,
		Path:       m.Name,
		Delimiter:  m.Delimiter,
		Attributes: append([]string{}, m.Attributes...),
	}
}

// FetchMessages returns up to opts.Limit messages newest first. Messages that cannot be
// parsed are skipped but still count for MaxUID.
func (s *ImapSession) FetchMessages(ctx context.Context, folder string, opts domain.FetchOptions) (*domain.FetchResult, error) {
	result := &domain.FetchResult{}
	err := s.run(ctx, "fetch", folder, func(conn *connection) error {
		result.UIDValidity = s.uidValidity

		if opts.BeforeUID == 1 {
			return nil
		}

		criteria := searchCriteria(opts)
		uids, err := conn.UidSearch(criteria)
		if err != nil {
			return fmt.Errorf("could not search folder: %w", err)
		}
		if opts.BeforeUID > 0 {
			uids = filterUids(uids, func(uid uint32) bool { return uid < opts.BeforeUID })
		}

		sortUidsDescending(uids)
		if opts.Limit > 0 && len(uids) > opts.Limit {
			uids = uids[:opts.Limit]
		}

		return s.fetchMetadata(conn, folder, uids, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchMessagesAfter returns all messages with a uid strictly greater than uid.
func (s *ImapSession) FetchMessagesAfter(ctx context.Context, folder string, uid uint32) (*domain.FetchResult, error) {
	result := &domain.FetchResult{}
	err := s.run(ctx, "fetch", folder, func(conn *connection) error {
		result.UIDValidity = s.uidValidity

		criteria := imap.NewSearchCriteria()
		criteria.Uid = &imap.SeqSet{}
		criteria.Uid.AddRange(uid+1, 0)
		uids, err := conn.UidSearch(criteria)
		if err != nil {
			return fmt.Errorf("could not search folder: %w", err)
		}

		// "n:*" always matches the highest uid, even when it is lower than n.
		uids = filterUids(uids, func(u uint32) bool { return u > uid })
		sortUidsDescending(uids)

		return s.fetchMetadata(conn, folder, uids, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ImapSession) fetchMetadata(conn *connection, folder string, uids []uint32, result *domain.FetchResult) error {
	result.Requested = len(uids)
	if len(uids) == 0 {
		return nil
	}

	start := time.Now()
	for _, batch := range partitionUids(uids, FetchBatchSize) {
		err := s.fetchBatch(conn, folder, batch, result)
		if err != nil {
			return err
		}
	}

	sortNewestFirst(result.Messages)
	s.l.WithFields(logrus.Fields{"folder": folder, "requested": len(uids), "fetched": len(result.Messages), "skipped": result.Skipped, "duration": time.Since(start)}).Debug("Fetched messages")
	return nil
}

func (s *ImapSession) fetchBatch(conn *connection, folder string, uids []uint32, result *domain.FetchResult) error {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- conn.UidFetch(seqset, metadataItems, messages)
	}()

	for msg := range messages {
		if msg.Uid > result.MaxUID {
			result.MaxUID = msg.Uid
		}
		if msg.Uid > 0 && (result.MinUID == 0 || msg.Uid < result.MinUID) {
			result.MinUID = msg.Uid
		}

		m, err := messageFromImap(folder, msg)
		if err != nil {
			result.Skipped++
			s.l.WithFields(logrus.Fields{"folder": folder, "uid": msg.Uid, "error": err}).Warn("Skipping message that could not be parsed")
			continue
		}
		result.Messages = append(result.Messages, m)
	}

	err := <-done
	if err != nil {
		return fmt.Errorf("could not fetch messages: %w", err)
	}
	return nil
}

func (s *ImapSession) FetchBody(ctx context.Context, folder string, uid uint32) (*domain.Body, error) {
	var body *domain.Body
	err := s.run(ctx, "fetch body", folder, func(conn *connection) error {
		seqset := &imap.SeqSet{}
		seqset.AddNum(uid)

		fullBodySection := &imap.BodySectionName{
			Peek: true,
		}
		items := []imap.FetchItem{imap.FetchUid, imap.FetchEnvelope, fullBodySection.FetchItem()}

		messages := make(chan *imap.Message, 1)
		done := make(chan error, 1)
		go func() {
			done <- conn.UidFetch(seqset, items, messages)
		}()

		var parseErr error
		for msg := range messages {
			if msg.Uid != uid || body != nil {
				continue
			}
			body, parseErr = bodyFromImap(folder, msg, fullBodySection)
		}

		err := <-done
		if err != nil {
			return fmt.Errorf("could not fetch body: %w", err)
		}
		if parseErr != nil {
			return parseErr
		}
		if body == nil {
			return fmt.Errorf("message %d in %s: %w", uid, folder, domain.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// FetchFlags reads the flags of uids. A uid the server does not report was expunged.
func (s *ImapSession) FetchFlags(ctx context.Context, folder string, uids []uint32) (*domain.FlagsResult, error) {
	result := &domain.FlagsResult{Flags: map[uint32]domain.Flags{}}
	err := s.run(ctx, "fetch flags", folder, func(conn *connection) error {
		result.UIDValidity = s.uidValidity
		if len(uids) == 0 {
			return nil
		}

		for _, batch := range partitionUids(uids, FetchBatchSize) {
			seqset := &imap.SeqSet{}
			seqset.AddNum(batch...)

			messages := make(chan *imap.Message, 10)
			done := make(chan error, 1)
			go func() {
				done <- conn.UidFetch(seqset, []imap.FetchItem{imap.FetchUid, imap.FetchFlags}, messages)
			}()

			for msg := range messages {
				if msg.Uid == 0 {
					continue
				}
				result.Flags[msg.Uid] = flagsFromImap(msg.Flags)
			}

			err := <-done
			if err != nil {
				return fmt.Errorf("could not fetch flags: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.l.WithFields(logrus.Fields{"folder": folder, "requested": len(uids), "present": len(result.Flags)}).Debug("Fetched flags")
	return result, nil
}

func bodyFromImap(folder string, msg *imap.Message, section *imap.BodySectionName) (*domain.Body, error) {
	r := msg.GetBody(section)
	if r == nil {
		return nil, &domain.ParseError{UID: msg.Uid, Err: errors.New("server returned no body")}
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &domain.ParseError{UID: msg.Uid, Err: fmt.Errorf("could not read mail body: %w", err)}
	}

	parsed, err := mail.ParseBody(raw)
	if err != nil {
		return nil, &domain.ParseError{UID: msg.Uid, Err: err}
	}

	headerID := ""
	if msg.Envelope != nil {
		headerID = msg.Envelope.MessageId
	}
	return &domain.Body{
		MessageID:   mail.MessageID(headerID, folder, msg.Uid),
		UID:         msg.Uid,
		Text:        parsed.Text,
		HTML:        parsed.HTML,
		Attachments: parsed.Attachments,
	}, nil
}

func messageFromImap(folder string, msg *imap.Message) (*domain.Message, error) {
	if msg.Uid == 0 {
		return nil, &domain.ParseError{Err: errors.New("message without uid")}
	}
	if msg.Envelope == nil {
		return nil, &domain.ParseError{UID: msg.Uid, Err: errors.New("message without envelope")}
	}

	env := msg.Envelope
	date := env.Date
	if date.IsZero() {
		date = msg.InternalDate
	}

	m := &domain.Message{
		ID:          mail.MessageID(env.MessageId, folder, msg.Uid),
		UID:         msg.Uid,
		Folder:      folder,
		Subject:     mail.DecodeHeader(env.Subject),
		To:          addresses(env.To),
		Cc:          addresses(env.Cc),
		Date:        date,
		Attachments: attachmentsFromStructure(msg.BodyStructure),
		Flags:       flagsFromImap(msg.Flags),
		InReplyTo:   mail.NormalizeMessageID(env.InReplyTo),
	}
	if from := addresses(env.From); len(from) > 0 {
		m.From = from[0]
	} else if sender := addresses(env.Sender); len(sender) > 0 {
		m.From = sender[0]
	}

	if r := msg.GetBody(referencesSection); r != nil {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, &domain.ParseError{UID: msg.Uid, Err: fmt.Errorf("could not read references header: %w", err)}
		}
		m.References = mail.HeaderReferences(raw)
	}

	return m, nil
}

func addresses(list []*imap.Address) []domain.EmailAddress {
	out := []domain.EmailAddress{}
	for _, a := range list {
		if a == nil || len(a.MailboxName) == 0 {
			// group syntax markers carry no mailbox
			continue
		}
		address := a.MailboxName
		if len(a.HostName) > 0 {
			address += "@" + a.HostName
		}
		out = append(out, domain.EmailAddress{Name: mail.DecodeHeader(a.PersonalName), Address: address})
	}
	return out
}

func flagsFromImap(flags []string) domain.Flags {
	f := domain.Flags{}
	for _, flag := range flags {
		switch {
		case strings.EqualFold(flag, imap.SeenFlag):
			f.Read = true
		case strings.EqualFold(flag, imap.FlaggedFlag):
			f.Flagged = true
		case strings.EqualFold(flag, imap.AnsweredFlag):
			f.Answered = true
		case strings.EqualFold(flag, imap.DeletedFlag):
			f.Deleted = true
		}
	}
	return f
}

func attachmentsFromStructure(bs *imap.BodyStructure) []domain.Attachment {
	attachments := []domain.Attachment{}
	var walk func(part *imap.BodyStructure)
	walk = func(part *imap.BodyStructure) {
		if part == nil {
			return
		}
		if len(part.Parts) > 0 {
			for _, p := range part.Parts {
				walk(p)
			}
			return
		}

		filename := part.DispositionParams["filename"]
		if len(filename) == 0 {
			filename = part.Params["name"]
		}
		isAttachment := strings.EqualFold(part.Disposition, "attachment") ||
			(len(filename) > 0 && !strings.EqualFold(part.MIMEType, "text"))
		if !isAttachment {
			return
		}

		attachments = append(attachments, domain.Attachment{
			Filename:    mail.DecodeHeader(filename),
			ContentType: strings.ToLower(part.MIMEType + "/" + part.MIMESubType),
			SizeBytes:   int64(part.Size),
		})
	}
	walk(bs)
	return attachments
}

func searchCriteria(opts domain.FetchOptions) *imap.SearchCriteria {
	criteria := imap.NewSearchCriteria()
	if opts.UnreadOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}
	if !opts.Since.IsZero() {
		criteria.Since = opts.Since
	}
	if opts.BeforeUID > 1 {
		criteria.Uid = &imap.SeqSet{}
		criteria.Uid.AddRange(1, opts.BeforeUID-1)
	}
	return criteria
}

func filterUids(uids []uint32, keep func(uint32) bool) []uint32 {
	filtered := make([]uint32, 0, len(uids))
	for _, uid := range uids {
		if keep(uid) {
			filtered = append(filtered, uid)
		}
	}
	return filtered
}

func sortUidsDescending(uids []uint32) {
	sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
}

func sortNewestFirst(messages []*domain.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].Date.Equal(messages[j].Date) {
			return messages[i].UID > messages[j].UID
		}
		return messages[i].Date.After(messages[j].Date)
	})
}

// taken from https://github.com/golang/go/wiki/SliceTricks
func partitionUids(uids []uint32, partitionSize int) [][]uint32 {
	batches := make([][]uint32, 0, (len(uids)+partitionSize-1)/partitionSize)

	for partitionSize < len(uids) {
		uids, batches = uids[partitionSize:], append(batches, uids[0:partitionSize:partitionSize])
	}
	batches = append(batches, uids)

	return batches
}
