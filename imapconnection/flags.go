// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"context"
	"fmt"

	"github.com/CrawX/go-imap-mailsync/domain"

	"github.com/emersion/go-imap"
	"github.com/sirupsen/logrus"
)

func imapFlag(flag domain.Flag) (string, error) {
	switch flag {
	case domain.FlagRead:
		return imap.SeenFlag, nil
	case domain.FlagFlagged:
		return imap.FlaggedFlag, nil
	case domain.FlagAnswered:
		return imap.AnsweredFlag, nil
	case domain.FlagDeleted:
		return imap.DeletedFlag, nil
	}
	return "", fmt.Errorf("unknown flag %q", flag)
}

func (s *ImapSession) SetFlag(ctx context.Context, folder string, uid uint32, flag domain.Flag, value bool) error {
	name, err := imapFlag(flag)
	if err != nil {
		return err
	}

	var op imap.FlagsOp = imap.RemoveFlags
	if value {
		op = imap.AddFlags
	}

	err = s.run(ctx, "store", folder, func(conn *connection) error {
		seqset := &imap.SeqSet{}
		seqset.AddNum(uid)
		err := conn.UidStore(seqset, imap.FormatFlagsOp(op, true), []interface{}{name}, nil)
		if err != nil {
			return fmt.Errorf("could not store flag %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.l.WithFields(logrus.Fields{"folder": folder, "uid": uid, "flag": name, "value": value}).Debug("Stored flag")
	return nil
}

// Delete flags the message \Deleted and expunges it. The message is only gone when both steps
// succeeded.
func (s *ImapSession) Delete(ctx context.Context, folder string, uid uint32) error {
	err := s.run(ctx, "delete", folder, func(conn *connection) error {
		if err := ensureExists(conn, folder, uid); err != nil {
			return err
		}
		return conn.delete([]uint32{uid})
	})
	if err != nil {
		return err
	}

	s.l.WithFields(logrus.Fields{"folder": folder, "uid": uid}).Info("Deleted message")
	return nil
}

// Move transfers a message to dest, with MOVE when the server supports it and copy&delete
// otherwise.
func (s *ImapSession) Move(ctx context.Context, folder string, uid uint32, dest string) error {
	if len(dest) == 0 || dest == folder {
		return fmt.Errorf("invalid move destination %q for a message in %s", dest, folder)
	}

	err := s.run(ctx, "move", folder, func(conn *connection) error {
		if err := ensureExists(conn, folder, uid); err != nil {
			return err
		}
		return conn.mailMover.move([]uint32{uid}, dest)
	})
	if err != nil {
		return err
	}

	s.l.WithFields(logrus.Fields{"folder": folder, "uid": uid, "dest": dest}).Info("Moved message")
	return nil
}

func ensureExists(conn *connection, folder string, uid uint32) error {
	criteria := imap.NewSearchCriteria()
	criteria.Uid = &imap.SeqSet{}
	criteria.Uid.AddNum(uid)
	uids, err := conn.UidSearch(criteria)
	if err != nil {
		return fmt.Errorf("could not search for message: %w", err)
	}
	for _, u := range uids {
		if u == uid {
			return nil
		}
	}
	return fmt.Errorf("message %d in %s: %w", uid, folder, domain.ErrNotFound)
}
