// SPDX-License-Identifier: GPL-3.0-or-later
package domain

import (
	"fmt"
	"strings"
	"time"
)

type EmailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

func (a EmailAddress) String() string {
	if len(a.Name) == 0 {
		return a.Address
	}
	return fmt.Sprintf("%q <%s>", a.Name, a.Address)
}

// Attachment only carries metadata, content bytes are never cached.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}

type Flag string

const (
	FlagRead     = Flag("read")
	FlagFlagged  = Flag("flagged")
	FlagAnswered = Flag("answered")
	FlagDeleted  = Flag("deleted")
)

type Flags struct {
	Read     bool `json:"read"`
	Flagged  bool `json:"flagged"`
	Answered bool `json:"answered"`
	Deleted  bool `json:"deleted"`
}

// FlagsUpdate is a partial update, nil fields are left untouched.
type FlagsUpdate struct {
	Read     *bool
	Flagged  *bool
	Answered *bool
	Deleted  *bool
}

func FlagUpdate(flag Flag, value bool) (FlagsUpdate, error) {
	u := FlagsUpdate{}
	switch flag {
	case FlagRead:
		u.Read = &value
	case FlagFlagged:
		u.Flagged = &value
	case FlagAnswered:
		u.Answered = &value
	case FlagDeleted:
		u.Deleted = &value
	default:
		return u, fmt.Errorf("unsupported flag %q", flag)
	}
	return u, nil
}

func (u FlagsUpdate) Apply(f Flags) Flags {
	if u.Read != nil {
		f.Read = *u.Read
	}
	if u.Flagged != nil {
		f.Flagged = *u.Flagged
	}
	if u.Answered != nil {
		f.Answered = *u.Answered
	}
	if u.Deleted != nil {
		f.Deleted = *u.Deleted
	}
	return f
}

func (u FlagsUpdate) Empty() bool {
	return u.Read == nil && u.Flagged == nil && u.Answered == nil && u.Deleted == nil
}

type Message struct {
	ID          string         `json:"id"`
	UID         uint32         `json:"uid"`
	Folder      string         `json:"folder"`
	Subject     string         `json:"subject"`
	From        EmailAddress   `json:"from"`
	To          []EmailAddress `json:"to"`
	Cc          []EmailAddress `json:"cc,omitempty"`
	Date        time.Time      `json:"date"`
	Text        string         `json:"text,omitempty"`
	HTML        string         `json:"html,omitempty"`
	Attachments []Attachment   `json:"attachments"`
	Flags       Flags          `json:"flags"`

	InReplyTo  string   `json:"inReplyTo,omitempty"`
	References []string `json:"references,omitempty"`
}

func (m *Message) BodyLoaded() bool {
	return len(m.Text) > 0 || len(m.HTML) > 0
}

type Body struct {
	MessageID   string
	UID         uint32
	Text        string
	HTML        string
	Attachments []Attachment
}

// CachedMessage is a Message as stored by the cache, with bookkeeping for eviction.
type CachedMessage struct {
	Message
	CachedAt   time.Time
	BodyLoaded bool
}

type SyncCursor struct {
	Folder      string
	LastSeenUID uint32
	UIDValidity uint32
	LastSync    time.Time
}

type Folder struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Delimiter  string    `json:"delimiter"`
	Attributes []string  `json:"attributes"`
	CachedAt   time.Time `json:"cachedAt"`
}

// Selectable reports whether the folder can hold messages.
func (f *Folder) Selectable() bool {
	for _, a := range f.Attributes {
		if strings.EqualFold(a, `\Noselect`) || strings.EqualFold(a, `\NonExistent`) {
			return false
		}
	}
	return true
}

type CacheStats struct {
	TotalMessages int
	TotalBodies   int
	TotalFolders  int
	Oldest        *time.Time
	Newest        *time.Time
}

type FetchOptions struct {
	Limit      int
	UnreadOnly bool
	Since      time.Time
	// BeforeUID restricts the fetch to uids strictly lower than this value when non-zero.
	BeforeUID uint32
}

type FetchResult struct {
	Messages []*Message
	// MaxUID is the highest uid returned by the server, including messages that failed to parse.
	MaxUID      uint32
	MinUID      uint32
	UIDValidity uint32
	Requested   int
	Skipped     int
}

type FlagsResult struct {
	Flags       map[uint32]Flags
	UIDValidity uint32
}

type SendOptions struct {
	To         []EmailAddress
	Cc         []EmailAddress
	Bcc        []EmailAddress
	Subject    string
	Text       string
	HTML       string
	InReplyTo  string
	References []string
	// SaveToFolder appends a copy of the sent message when set, e.g. "Sent".
	SaveToFolder string
}

func (o *SendOptions) Recipients() []string {
	rcpts := []string{}
	for _, list := range [][]EmailAddress{o.To, o.Cc, o.Bcc} {
		for _, a := range list {
			rcpts = append(rcpts, a.Address)
		}
	}
	return rcpts
}
