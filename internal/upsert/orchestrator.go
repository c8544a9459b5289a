package upsert

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ariel-frischer/mergelog/internal/retry"
	"github.com/ariel-frischer/mergelog/internal/store"
)

// Request is one upsert pass: the entry to log plus everything needed to
// pick its day page.
type Request struct {
	Entry Entry

	// MergedAt is the effective timestamp the day is computed from.
	MergedAt time.Time
	// Timezone is the IANA zone the calendar day is computed in.
	Timezone string
	// DateOverride, when set, takes precedence over the computed day.
	DateOverride string

	// PageID, when set, appends to that page directly instead of locating
	// a day bucket. The idempotency guard still applies.
	PageID string

	// Overrides optionally pins the schema field names.
	Overrides Overrides
}

// Result reports the outcome of an upsert pass.
type Result struct {
	// Page is the durable reference to the day page written (or found).
	Page store.Page
	// Day is the resolved calendar day; empty in direct page-append mode.
	Day Day
	// Created reports whether this pass created the day page.
	Created bool
	// Skipped reports that the entry was already present and nothing was
	// written.
	Skipped bool
}

// Orchestrator composes the core components into the single idempotent
// upsert pass: resolve schema, locate or create the day page, check the
// guard, merge, then persist against a freshly re-read body.
type Orchestrator struct {
	store  store.Store
	policy retry.Policy
	log    *zap.Logger
}

// New returns an Orchestrator writing through the given store.
func New(s store.Store, policy retry.Policy, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{store: s, policy: policy, log: log}
}

// Upsert runs one pass to completion. At most one page create and one
// append reach the store; a skipped duplicate performs no writes at all.
// Transient store failures are retried with bounded backoff; *SchemaError
// aborts immediately.
func (o *Orchestrator) Upsert(ctx context.Context, req Request) (Result, error) {
	page, day, created, err := o.targetPage(ctx, req)
	if err != nil {
		return Result{}, err
	}

	var body store.Body
	err = retry.Do(ctx, o.policy, func() error {
		b, err := o.store.Body(ctx, page.ID)
		if err != nil {
			return &OpError{Op: OpLookup, Err: err}
		}
		body = b
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if AlreadyLogged(body, req.Entry.Number) {
		o.log.Info("entry already present; skipping",
			zap.Int("pr", req.Entry.Number),
			zap.String("page_id", page.ID))
		return Result{Page: o.withURL(ctx, page), Day: day, Created: created, Skipped: true}, nil
	}

	blocks, _ := Merge(body, req.Entry)

	// The narrowed critical section: re-read the body immediately before
	// the append and re-run the guard against it, as one retryable unit.
	// A racing run that landed the entry between our first read and now is
	// detected here instead of being double-written.
	skipped := false
	err = retry.Do(ctx, o.policy, func() error {
		fresh, err := o.store.Body(ctx, page.ID)
		if err != nil {
			return &OpError{Op: OpPersist, Err: err}
		}
		if AlreadyLogged(fresh, req.Entry.Number) {
			skipped = true
			return nil
		}
		if err := o.store.AppendBlocks(ctx, page.ID, blocks); err != nil {
			return &OpError{Op: OpPersist, Err: err}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if skipped {
		o.log.Info("entry landed concurrently; skipping",
			zap.Int("pr", req.Entry.Number),
			zap.String("page_id", page.ID))
	} else {
		o.log.Info("entry appended",
			zap.Int("pr", req.Entry.Number),
			zap.String("page_id", page.ID),
			zap.String("day", string(day)))
	}

	return Result{Page: o.withURL(ctx, page), Day: day, Created: created, Skipped: skipped}, nil
}

// targetPage resolves the page the entry belongs on: either the explicit
// page from the request or the located/created day bucket.
func (o *Orchestrator) targetPage(ctx context.Context, req Request) (store.Page, Day, bool, error) {
	if req.PageID != "" {
		return store.Page{ID: req.PageID}, "", false, nil
	}

	day, err := resolveDay(req)
	if err != nil {
		return store.Page{}, "", false, err
	}

	var schema store.Schema
	err = retry.Do(ctx, o.policy, func() error {
		s, err := o.store.Schema(ctx)
		if err != nil {
			return &OpError{Op: OpLookup, Err: err}
		}
		schema = s
		return nil
	})
	if err != nil {
		return store.Page{}, "", false, err
	}

	props, err := Resolve(schema, req.Overrides)
	if err != nil {
		return store.Page{}, "", false, err
	}

	locator := NewLocator(o.store, o.log)
	var page store.Page
	var created bool
	err = retry.Do(ctx, o.policy, func() error {
		p, c, err := locator.Locate(ctx, props, day)
		if err != nil {
			return err
		}
		page, created = p, c
		return nil
	})
	if err != nil {
		return store.Page{}, "", false, err
	}
	return page, day, created, nil
}

func resolveDay(req Request) (Day, error) {
	if req.DateOverride != "" {
		return ParseDay(req.DateOverride)
	}
	if req.MergedAt.IsZero() {
		return "", fmt.Errorf("request has neither a merge timestamp nor a date override")
	}
	return DayOf(req.MergedAt, req.Timezone)
}

// withURL fills in the page URL when the reference came back without one.
// URL resolution is best-effort: the upsert already succeeded, so a
// failure here is only logged.
func (o *Orchestrator) withURL(ctx context.Context, page store.Page) store.Page {
	if page.URL != "" {
		return page
	}
	url, err := o.store.PageURL(ctx, page.ID)
	if err != nil {
		o.log.Warn("fetching page url failed", zap.String("page_id", page.ID), zap.Error(err))
		return page
	}
	page.URL = url
	return page
}
