// SPDX-License-Identifier: GPL-3.0-or-later
package mail

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/charset"
	gomail "github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"

	"github.com/CrawX/go-imap-mailsync/domain"
)

var wordDecoder = &mime.WordDecoder{
	CharsetReader: charset.Reader,
}

// DecodeHeader decodes RFC 2047 encoded words, returning the raw value if decoding fails.
func DecodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// NormalizeMessageID strips whitespace and angle brackets from a Message-ID header value.
func NormalizeMessageID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	return strings.TrimSpace(id)
}

// MessageID prefers the Message-ID header and falls back to a synthetic id derived from
// folder and uid. The synthetic id is only stable until the folder's UIDVALIDITY changes.
func MessageID(headerID string, folder string, uid uint32) string {
	id := NormalizeMessageID(headerID)
	if len(id) > 0 {
		return id
	}
	return SyntheticID(folder, uid)
}

func SyntheticID(folder string, uid uint32) string {
	h, err := hash([][]string{{folder, fmt.Sprintf("%d", uid)}})
	if err != nil {
		return fmt.Sprintf("uid-%s-%d", folder, uid)
	}
	return "uid-" + h[:24]
}

// HeaderReferences extracts the message ids of a References header from a raw header block.
func HeaderReferences(raw []byte) []string {
	raw = append(append([]byte{}, raw...), '\r', '\n')
	th, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return nil
	}

	h := gomail.Header{Header: message.Header{Header: th}}
	ids, err := h.MsgIDList("References")
	if err == nil {
		return ids
	}

	// malformed ids, take whatever looks like one
	refs := []string{}
	for _, f := range strings.Fields(h.Get("References")) {
		if id := NormalizeMessageID(f); len(id) > 0 {
			refs = append(refs, id)
		}
	}
	return refs
}

type ParsedBody struct {
	Text        string
	HTML        string
	Attachments []domain.Attachment
}

// ParseBody extracts text/plain, text/html and attachment metadata from a raw RFC 5322 message.
// The first text and html parts win, later alternatives are ignored.
func ParseBody(raw []byte) (*ParsedBody, error) {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("could not parse mail: %w", err)
	}
	defer mr.Close()

	parsed := &ParsedBody{}
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			if len(parsed.Text) > 0 || len(parsed.HTML) > 0 {
				// Keep what was decoded so far, a broken trailing part is common.
				break
			}
			return nil, fmt.Errorf("could not read mail part: %w", err)
		}

		switch h := p.Header.(type) {
		case *gomail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(p.Body)
			if err != nil {
				return nil, fmt.Errorf("could not read inline part: %w", err)
			}

			switch {
			case strings.HasPrefix(contentType, "text/plain") || contentType == "":
				if len(parsed.Text) == 0 {
					parsed.Text = string(body)
				}
			case strings.HasPrefix(contentType, "text/html"):
				if len(parsed.HTML) == 0 {
					parsed.HTML = string(body)
				}
			default:
				parsed.Attachments = append(parsed.Attachments, domain.Attachment{
					ContentType: contentType,
					SizeBytes:   int64(len(body)),
				})
			}
		case *gomail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			size, err := io.Copy(io.Discard, p.Body)
			if err != nil {
				return nil, fmt.Errorf("could not read attachment %q: %w", filename, err)
			}

			parsed.Attachments = append(parsed.Attachments, domain.Attachment{
				Filename:    filename,
				ContentType: contentType,
				SizeBytes:   size,
			})
		}
	}

	return parsed, nil
}

func ShortSubject(subject string) string {
	if (len(subject)) > 30 {
		subject = subject[:30] + "..."
	}
	return subject
}

func hash(input [][]string) (string, error) {
	sha := sha256.New()
	for _, i := range input {
		for _, ii := range i {
			_, err := sha.Write([]byte(ii))
			if err != nil {
				return "", fmt.Errorf("could not hash: %w", err)
			}
		}
	}

	return fmt.Sprintf("%x", sha.Sum(nil)), nil
}
