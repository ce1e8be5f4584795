// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

//go:generate mockgen -destination=mover_mocks_test.go -package=imapconnection -source mover.go
import (
	"fmt"

	"github.com/emersion/go-imap"
)

type moveClient interface {
	UidMove(seqset *imap.SeqSet, dest string) error
}

// moveMover uses the MOVE extension, the server transfers the messages atomically.
type moveMover struct {
	moveClient moveClient
}

func (m *moveMover) move(uids []uint32, dest string) error {
	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)
	if err := m.moveClient.UidMove(seqset, dest); err != nil {
		return fmt.Errorf("could not move to %s: %w", dest, err)
	}
	return nil
}

// compatibilityMover copies and then deletes through the deleter of the connection. Nothing is
// copied when the folder cannot be expunged safely, so a refused move leaves no duplicate.
type compatibilityMover struct {
	imapConn copyAndDeleteMoveClient
}

func (c *compatibilityMover) move(uids []uint32, dest string) error {
	reason, err := c.imapConn.deleteReady()
	if err != nil {
		return fmt.Errorf("could not check whether %s can be moved: %w", dest, err)
	}
	if reason != nil {
		return fmt.Errorf("cannot move to %s with copy&delete: %w", dest, reason)
	}

	seqset := &imap.SeqSet{}
	seqset.AddNum(uids...)
	if err := c.imapConn.UidCopy(seqset, dest); err != nil {
		return fmt.Errorf("could not copy to %s: %w", dest, err)
	}

	if err := c.imapConn.delete(uids); err != nil {
		return fmt.Errorf("%w: %v", ErrMoveIncomplete, err)
	}
	return nil
}
