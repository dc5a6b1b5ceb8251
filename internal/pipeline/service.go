// Package pipeline wires one submission through link resolution, identifier
// extraction, bibliographic lookup, and the ledger append, with the review
// queue as the fallback for anything that cannot be resolved automatically.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"bookdrop/internal/book"
	"bookdrop/internal/ledger"
	"bookdrop/internal/lookup"
	"bookdrop/internal/platform/amazon"

	"github.com/google/uuid"
)

// ErrNoIdentifier and ErrUnresolved are only returned when no review queue
// is configured; with a queue they become queued outcomes instead.
var (
	ErrNoIdentifier = errors.New("no product identifier in resolved URL")
	ErrUnresolved   = errors.New("could not resolve a bibliographic record")
)

// SubmissionRequest is one inbound book-purchase link. It flows through the
// pipeline as a value and is discarded afterwards.
type SubmissionRequest struct {
	OriginalURL string `json:"original_url" validate:"required,url"`
	SenderEmail string `json:"sender_email" validate:"omitempty,email"`
	Subject     string `json:"subject"`
}

// Result is the submitter-facing outcome.
type Result struct {
	Added   bool
	Queued  bool
	Message string
}

type LinkResolver interface {
	Resolve(ctx context.Context, rawURL string) (amazon.ResolvedLink, error)
}

type RecordResolver interface {
	Resolve(ctx context.Context, identifier, productURL string) (lookup.Result, error)
}

type LedgerWriter interface {
	Append(ctx context.Context, rec book.Record, message string) (added bool, err error)
	EnqueueForReview(ctx context.Context, entry ledger.QueueEntry)
	HasQueue() bool
}

type Service struct {
	links   LinkResolver
	records RecordResolver
	ledger  LedgerWriter
	now     func() time.Time
}

func NewService(links LinkResolver, records RecordResolver, ledgerWriter LedgerWriter) *Service {
	return &Service{
		links:   links,
		records: records,
		ledger:  ledgerWriter,
		now:     time.Now,
	}
}

// Process runs the whole pipeline for one submission. Errors are reserved
// for failures that prevent useful feedback to the submitter (store or
// provider breakage, a lost write race, the caller's deadline); everything
// recoverable becomes an added, duplicate, or queued Result.
func (s *Service) Process(ctx context.Context, req SubmissionRequest) (Result, error) {
	sub := uuid.NewString()

	link, err := s.links.Resolve(ctx, req.OriginalURL)
	if err != nil {
		return Result{}, err
	}

	identifier, ok := amazon.ExtractIdentifier(link.ResolvedURL)
	if !ok {
		log.Printf("submission %s: no identifier in %q (%d hops from %q)", sub, link.ResolvedURL, link.Hops, req.OriginalURL)
		return s.queue(ctx, req, link, "", lookup.Result{})
	}

	res, err := s.records.Resolve(ctx, identifier, link.ResolvedURL)
	if err != nil {
		return Result{}, err
	}
	if !res.Resolved {
		log.Printf("submission %s: identifier %s unresolved, scraped title %q", sub, identifier, res.ScrapedTitle)
		return s.queue(ctx, req, link, identifier, res)
	}

	message := fmt.Sprintf("Add %q (submission %s)", res.Record.Title, sub)
	added, err := s.ledger.Append(ctx, res.Record, message)
	if err != nil {
		return Result{}, err
	}
	if !added {
		return Result{Message: fmt.Sprintf("%q is already in the ledger", res.Record.Title)}, nil
	}
	log.Printf("submission %s: added %q (%s)", sub, res.Record.Title, res.Record.ID)
	return Result{Added: true, Message: fmt.Sprintf("added %q to the ledger", res.Record.Title)}, nil
}

func (s *Service) queue(ctx context.Context, req SubmissionRequest, link amazon.ResolvedLink, identifier string, res lookup.Result) (Result, error) {
	if !s.ledger.HasQueue() {
		if identifier == "" {
			return Result{}, ErrNoIdentifier
		}
		return Result{}, ErrUnresolved
	}

	s.ledger.EnqueueForReview(ctx, ledger.QueueEntry{
		Timestamp:     s.now().UTC(),
		SenderEmail:   req.SenderEmail,
		OriginalURL:   req.OriginalURL,
		ResolvedURL:   link.ResolvedURL,
		Identifier:    identifier,
		ScrapedTitle:  res.ScrapedTitle,
		ScrapedAuthor: res.ScrapedAuthor,
	})
	return Result{Queued: true, Message: "submission queued for manual review"}, nil
}
