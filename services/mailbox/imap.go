package mailbox

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
)

// IMAPSource lists recent messages from an IMAP mailbox. A fresh connection
// is dialed per poll; the retriever's poll cadence is slow enough that
// keeping a long-lived IMAP connection is not worth its failure modes.
type IMAPSource struct {
	Addr     string // host:port, TLS
	Username string
	Password string
	Mailbox  string
}

func (s *IMAPSource) RecentMessages(ctx context.Context, since time.Time) ([]Message, error) {
	c, err := client.DialTLS(s.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial IMAP server: %w", err)
	}
	c.Timeout = 30 * time.Second
	defer c.Logout()

	if err := c.Login(s.Username, s.Password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	mailbox := s.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if _, err := c.Select(mailbox, true); err != nil {
		return nil, fmt.Errorf("failed to select mailbox %q: %w", mailbox, err)
	}

	// IMAP SINCE has date granularity; the retriever applies the precise
	// time window on the envelope dates.
	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	ch := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, ch)
	}()

	var messages []Message
	for msg := range ch {
		if msg.Envelope == nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		messages = append(messages, Message{
			Subject: msg.Envelope.Subject,
			Date:    msg.Envelope.Date,
			Body:    readTextBody(body),
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %w", err)
	}
	return messages, nil
}

// readTextBody walks the MIME parts and returns the first text part,
// preferring plain text over HTML; binary attachments are skipped.
func readTextBody(r io.Reader) string {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return ""
	}

	var plain, html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF || err != nil {
			break
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch contentType {
		case "text/plain":
			if plain == "" {
				plain = string(data)
			}
		case "text/html":
			if html == "" {
				html = string(data)
			}
		}
	}

	if plain != "" {
		return plain
	}
	return html
}
