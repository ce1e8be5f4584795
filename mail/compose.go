// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gomail "github.com/emersion/go-message/mail"

	"github.com/CrawX/go-imap-mailsync/domain"
)

// Compose renders opts into an RFC 5322 message. Bcc recipients are not written to the header.
// The generated Message-ID is returned alongside the raw message.
func Compose(from domain.EmailAddress, opts domain.SendOptions, date time.Time) ([]byte, string, error) {
	if len(opts.To)+len(opts.Cc)+len(opts.Bcc) == 0 {
		return nil, "", errors.New("message has no recipients")
	}

	var h gomail.Header
	h.SetDate(date)
	h.SetSubject(opts.Subject)
	h.SetAddressList("From", []*gomail.Address{toAddress(from)})
	h.SetAddressList("To", toAddresses(opts.To))
	if len(opts.Cc) > 0 {
		h.SetAddressList("Cc", toAddresses(opts.Cc))
	}
	if err := h.GenerateMessageID(); err != nil {
		return nil, "", fmt.Errorf("could not generate message id: %w", err)
	}
	messageID, err := h.MessageID()
	if err != nil {
		return nil, "", fmt.Errorf("could not read generated message id: %w", err)
	}

	inReplyTo := NormalizeMessageID(opts.InReplyTo)
	if len(inReplyTo) > 0 {
		h.SetMsgIDList("In-Reply-To", []string{inReplyTo})
	}
	references := normalizeReferences(opts.References)
	if len(references) > 0 {
		h.SetMsgIDList("References", references)
	}

	buf := &bytes.Buffer{}
	switch {
	case len(opts.HTML) > 0 && len(opts.Text) > 0:
		err = writeAlternative(buf, h, opts.Text, opts.HTML)
	case len(opts.HTML) > 0:
		err = writeSingle(buf, h, "text/html", opts.HTML)
	default:
		err = writeSingle(buf, h, "text/plain", opts.Text)
	}
	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), messageID, nil
}

// ReplyOptions derives the threading headers and subject for a reply to original.
func ReplyOptions(original *domain.Message, text string) domain.SendOptions {
	references := append([]string{}, original.References...)
	if len(original.InReplyTo) > 0 && !contains(references, original.InReplyTo) {
		references = append(references, original.InReplyTo)
	}
	if !strings.HasPrefix(original.ID, "uid-") {
		references = append(references, original.ID)
	}

	opts := domain.SendOptions{
		To:         []domain.EmailAddress{original.From},
		Subject:    ReplySubject(original.Subject),
		Text:       text,
		References: references,
	}
	if !strings.HasPrefix(original.ID, "uid-") {
		opts.InReplyTo = original.ID
	}
	return opts
}

func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:") {
		return subject
	}
	return "Re: " + subject
}

func writeSingle(w io.Writer, h gomail.Header, contentType, content string) error {
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	body, err := gomail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("could not create message writer: %w", err)
	}
	if _, err = io.WriteString(body, content); err != nil {
		return fmt.Errorf("could not write message body: %w", err)
	}
	if err = body.Close(); err != nil {
		return fmt.Errorf("could not close message body: %w", err)
	}
	return nil
}

func writeAlternative(w io.Writer, h gomail.Header, text, html string) error {
	mw, err := gomail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("could not create message writer: %w", err)
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("could not create inline writer: %w", err)
	}

	for _, part := range []struct {
		contentType string
		content     string
	}{{"text/plain", text}, {"text/html", html}} {
		var ph gomail.InlineHeader
		ph.SetContentType(part.contentType, map[string]string{"charset": "utf-8"})
		pw, err := iw.CreatePart(ph)
		if err != nil {
			return fmt.Errorf("could not create %s part: %w", part.contentType, err)
		}
		if _, err = io.WriteString(pw, part.content); err != nil {
			return fmt.Errorf("could not write %s part: %w", part.contentType, err)
		}
		if err = pw.Close(); err != nil {
			return fmt.Errorf("could not close %s part: %w", part.contentType, err)
		}
	}

	if err = iw.Close(); err != nil {
		return fmt.Errorf("could not close inline writer: %w", err)
	}
	return mw.Close()
}

func toAddress(a domain.EmailAddress) *gomail.Address {
	return &gomail.Address{Name: a.Name, Address: a.Address}
}

func toAddresses(list []domain.EmailAddress) []*gomail.Address {
	addrs := make([]*gomail.Address, 0, len(list))
	for _, a := range list {
		addrs = append(addrs, toAddress(a))
	}
	return addrs
}

func normalizeReferences(refs []string) []string {
	out := []string{}
	for _, r := range refs {
		for _, id := range strings.Fields(r) {
			id = NormalizeMessageID(id)
			if len(id) > 0 && !contains(out, id) {
				out = append(out, id)
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
