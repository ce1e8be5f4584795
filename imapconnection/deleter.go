// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

//go:generate mockgen -destination=deleter_mocks_test.go -package=imapconnection -source deleter.go
import (
	"errors"
	"fmt"

	"github.com/emersion/go-imap"
)

// ErrExpungeDeferred is returned when a message was flagged \Deleted but a plain EXPUNGE would
// also remove other messages the user flagged \Deleted elsewhere. The message stays flagged
// until the next expunge that is safe.
var ErrExpungeDeferred = errors.New("expunge deferred, folder holds other messages flagged as deleted")

type deletedFlagger interface {
	flagDeleted(uids []uint32) (*imap.SeqSet, error)
}

type deletedFlaggerAndUidExpunger interface {
	deletedFlagger
	UidExpunge(seqSet *imap.SeqSet, ch chan uint32) error
}

type uidPlusDeleter struct {
	imapConn deletedFlaggerAndUidExpunger
}

func (u *uidPlusDeleter) delete(uids []uint32) error {
	seqset, err := u.imapConn.flagDeleted(uids)
	if err != nil {
		return fmt.Errorf("could not flag message as deleted: %w", err)
	}

	out := make(chan uint32)
	done := make(chan error, 1)
	go func() {
		done <- u.imapConn.UidExpunge(seqset, out)
	}()

	expunged := 0
	for range out {
		expunged++
	}

	err = <-done
	if err != nil {
		return fmt.Errorf("could not expunge message: %w", err)
	}

	return checkExpunged(uids, expunged)
}

func (u *uidPlusDeleter) deleteReady() (error, error) {
	// UID EXPUNGE only touches the given uids
	return nil, nil
}

type deleteFlaggerAndExpunger interface {
	deletedFlagger
	Expunge(ch chan uint32) error
	UidSearch(criteria *imap.SearchCriteria) (uids []uint32, err error)
}

type compatibilityDeleter struct {
	imapConn deleteFlaggerAndExpunger
}

func (c *compatibilityDeleter) delete(uids []uint32) error {
	notDeleteReadyReason, err := c.deleteReady()
	if err != nil {
		return fmt.Errorf("could not check for delete readiness: %w", err)
	}

	_, err = c.imapConn.flagDeleted(uids)
	if err != nil {
		return fmt.Errorf("could not flag message as deleted: %w", err)
	}

	if notDeleteReadyReason != nil {
		return fmt.Errorf("message flagged but not expunged: %w", notDeleteReadyReason)
	}

	out := make(chan uint32)
	done := make(chan error, 1)
	go func() {
		done <- c.imapConn.Expunge(out)
	}()

	expunged := 0
	for range out {
		expunged++
	}

	err = <-done
	if err != nil {
		return fmt.Errorf("could not expunge message: %w", err)
	}

	return checkExpunged(uids, expunged)
}

func (c *compatibilityDeleter) deleteReady() (error, error) {
	// EXPUNGE removes everything carrying \Deleted, so it is only safe on a folder without
	// previously flagged messages.
	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.DeletedFlag}
	ids, err := c.imapConn.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("could not search for deleted in folder: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}
	return ErrExpungeDeferred, nil
}

func checkExpunged(uids []uint32, expunged int) error {
	if expunged == 0 {
		return fmt.Errorf("message %v: %w", uids, errNothingExpunged)
	}
	if expunged != len(uids) {
		return fmt.Errorf("unexpected number of expunges, expected %d got %d", len(uids), expunged)
	}
	return nil
}
