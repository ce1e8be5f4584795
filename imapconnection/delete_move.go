// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import "github.com/emersion/go-imap"

//go:generate mockgen -destination=delete_move_mocks_test.go -package=imapconnection -source delete_move.go

// deleter, mover and the copy client share one file: mockgen source mode cannot resolve
// embedded interfaces that are declared in different files.

// deleteReady returns a reason why the folder cannot be expunged safely, or the error that
// prevented the check.
type deleter interface {
	delete([]uint32) error
	deleteReady() (error, error)
}

// mover transfers uids of the selected folder to dest.
type mover interface {
	move(uids []uint32, dest string) error
}

type copyAndDeleteMoveClient interface {
	deleter
	UidCopy(seqset *imap.SeqSet, dest string) error
}
