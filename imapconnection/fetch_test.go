// SPDX-License-Identifier: GPL-3.0-or-later
package imapconnection

import (
	"testing"
	"time"

	"github.com/CrawX/go-imap-mailsync/domain"

	"github.com/emersion/go-imap"
	"github.com/stretchr/testify/assert"
)

func Test_partitionUids(t *testing.T) {
	tests := []struct {
		name     string
		input    []uint32
		expected [][]uint32
	}{
		{"singlepartition", u32a(1), [][]uint32{u32a(1)}},
		{"multiple", u32a(5, 4, 3, 2, 1), [][]uint32{u32a(5, 4), u32a(3, 2), u32a(1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uids := partitionUids(tc.input, 2)
			assert.Equal(t, tc.expected, uids)
		})
	}
}

func TestMessageFromImap(t *testing.T) {
	date := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	msg := imap.NewMessage(1, nil)
	msg.Uid = 9
	msg.InternalDate = date
	msg.Flags = []string{imap.FlaggedFlag, imap.AnsweredFlag, "$Junk"}
	msg.Envelope = &imap.Envelope{
		Subject:   "=?ISO-8859-1?Q?Gr=FC=DFe?=",
		InReplyTo: "<parent@example.org>",
		Sender:    []*imap.Address{{MailboxName: "list", HostName: "example.org"}},
		Cc:        []*imap.Address{{MailboxName: "team"}, {PersonalName: "group end"}},
	}
	msg.BodyStructure = &imap.BodyStructure{
		MIMEType: "multipart",
		Parts: []*imap.BodyStructure{
			{MIMEType: "text", MIMESubType: "plain", Size: 12},
			{MIMEType: "application", MIMESubType: "pdf", Disposition: "attachment", DispositionParams: map[string]string{"filename": "invoice.pdf"}, Size: 10},
			{MIMEType: "image", MIMESubType: "PNG", Params: map[string]string{"name": "logo.png"}, Size: 20},
		},
	}

	m, err := messageFromImap("INBOX", msg)
	assert.NoError(t, err)
	assert.Equal(t, "Grüße", m.Subject)
	assert.Equal(t, date, m.Date)
	assert.Equal(t, "parent@example.org", m.InReplyTo)
	assert.Equal(t, domain.EmailAddress{Address: "list@example.org"}, m.From)
	assert.Equal(t, []domain.EmailAddress{{Address: "team"}}, m.Cc)
	assert.Equal(t, domain.Flags{Flagged: true, Answered: true}, m.Flags)
	assert.Equal(t, []domain.Attachment{
		{Filename: "invoice.pdf", ContentType: "application/pdf", SizeBytes: 10},
		{Filename: "logo.png", ContentType: "image/png", SizeBytes: 20},
	}, m.Attachments)
	// no Message-ID header, synthetic id
	assert.Equal(t, "uid-", m.ID[:4])
}

func TestMessageFromImap_MissingEnvelope(t *testing.T) {
	msg := imap.NewMessage(1, nil)
	msg.Uid = 9

	_, err := messageFromImap("INBOX", msg)
	var parseErr *domain.ParseError
	if assert.ErrorAs(t, err, &parseErr) {
		assert.Equal(t, uint32(9), parseErr.UID)
	}
}
