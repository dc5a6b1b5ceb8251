package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"bookdrop/internal/book"
	"bookdrop/internal/csvutil"
)

// Store is a version-controlled content store. Get returns the file content
// with an opaque version token; Put succeeds only while the file's version
// still equals that token.
type Store interface {
	Get(ctx context.Context, path string) (content []byte, version string, err error)
	Put(ctx context.Context, path string, content []byte, message, version string) error
}

//go:generate mockgen -destination mocks/store.go -package mocks bookdrop/internal/ledger Store

// QueueEntry is one row of the manual-review queue. Entries may repeat;
// the queue has no uniqueness constraint.
type QueueEntry struct {
	Timestamp     time.Time
	SenderEmail   string
	OriginalURL   string
	ResolvedURL   string
	Identifier    string
	ScrapedTitle  string
	ScrapedAuthor string
}

// QueueHeader is the review queue file's header row, in column order.
var QueueHeader = []string{
	"timestamp", "sender_email", "original_url", "resolved_url",
	"identifier", "scraped_title", "scraped_author", "status",
}

func (e QueueEntry) fields() []string {
	return []string{
		e.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		e.SenderEmail, e.OriginalURL, e.ResolvedURL,
		e.Identifier, e.ScrapedTitle, e.ScrapedAuthor,
		"pending",
	}
}

// Writer appends resolved records to the shared ledger and failed
// submissions to the review queue, using the store's conditional writes
// for correctness under concurrent appends.
type Writer struct {
	store        Store
	ledgerPath   string
	queuePath    string
	onQueueError func(error)
}

// NewWriter builds a Writer. An empty queuePath disables the review queue.
// onQueueError receives queue write failures (they are never surfaced to
// callers); nil installs a logging default.
func NewWriter(store Store, ledgerPath, queuePath string, onQueueError func(error)) *Writer {
	if onQueueError == nil {
		onQueueError = func(err error) {
			log.Printf("review queue write failed: %v", err)
		}
	}
	return &Writer{
		store:        store,
		ledgerPath:   ledgerPath,
		queuePath:    queuePath,
		onQueueError: onQueueError,
	}
}

// HasQueue reports whether a review queue is configured.
func (w *Writer) HasQueue() bool {
	return w.queuePath != ""
}

// Append adds rec to the ledger unless a row with the same id already
// exists, in which case it reports added=false without writing (repeated
// appends of the same record are idempotent). A lost write race returns an
// error wrapping the store's version-conflict error; there is no retry.
func (w *Writer) Append(ctx context.Context, rec book.Record, message string) (bool, error) {
	content, version, err := w.store.Get(ctx, w.ledgerPath)
	if err != nil {
		return false, fmt.Errorf("read ledger: %w", err)
	}

	body := string(content)
	if hasRow(body, rec.ID) {
		return false, nil
	}

	updated := appendRow(body, book.LedgerHeader, rec.Fields())
	if err := w.store.Put(ctx, w.ledgerPath, []byte(updated), message, version); err != nil {
		return false, fmt.Errorf("write ledger: %w", err)
	}
	return true, nil
}

// EnqueueForReview appends entry to the review queue. Queuing is a
// best-effort convenience: every failure is reported to the error hook and
// swallowed, so a broken queue never fails the submission itself.
func (w *Writer) EnqueueForReview(ctx context.Context, entry QueueEntry) {
	if !w.HasQueue() {
		return
	}

	content, version, err := w.store.Get(ctx, w.queuePath)
	if err != nil {
		w.onQueueError(fmt.Errorf("read queue: %w", err))
		return
	}

	updated := appendRow(string(content), QueueHeader, entry.fields())
	message := fmt.Sprintf("Queue submission for review (%s)", entry.OriginalURL)
	if err := w.store.Put(ctx, w.queuePath, []byte(updated), message, version); err != nil {
		w.onQueueError(fmt.Errorf("write queue: %w", err))
	}
}

// hasRow scans the primary-key column of every row past the header.
func hasRow(body, id string) bool {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if csvutil.DecodeFirstField(line) == id {
			return true
		}
	}
	return false
}

// appendRow seeds an empty file with the header, normalizes the existing
// content to exactly one trailing line break, and appends the new row.
func appendRow(body string, header, fields []string) string {
	if strings.TrimSpace(body) == "" {
		body = csvutil.EncodeRow(header) + "\n"
	} else {
		body = strings.TrimRight(body, "\r\n") + "\n"
	}
	return body + csvutil.EncodeRow(fields) + "\n"
}
