package upsert

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ariel-frischer/mergelog/internal/store"
)

const dayLayout = "2006-01-02"

// Day is a calendar day in YYYY-MM-DD form, already localized to the
// configured timezone.
type Day string

// DayOf converts an instant to the calendar day in the named IANA zone.
func DayOf(t time.Time, tz string) (Day, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	return Day(t.In(loc).Format(dayLayout)), nil
}

// ParseDay validates an explicit YYYY-MM-DD override string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date override %q (want YYYY-MM-DD): %w", s, err)
	}
	return Day(t.Format(dayLayout)), nil
}

// BucketTitle renders the human-readable title for a day's page.
func BucketTitle(d Day) string {
	return "Changelog " + string(d)
}

// Locator finds or creates the single page representing a calendar day.
// Uniqueness is enforced by lookup-before-create, not by a store
// constraint, so two racing runs can still leave duplicates behind; when
// the lookup sees more than one match the earliest-enumerated page wins
// and the extras are reported as an anomaly.
type Locator struct {
	store store.Store
	log   *zap.Logger
}

// NewLocator returns a Locator backed by the given store.
func NewLocator(s store.Store, log *zap.Logger) *Locator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Locator{store: s, log: log}
}

// Locate returns the page for day, creating it when absent. The second
// return reports whether a new page was created. Store failures come back
// as retriable *OpError values (lookup or create).
func (l *Locator) Locate(ctx context.Context, props Properties, day Day) (store.Page, bool, error) {
	pages, err := l.store.FindByDate(ctx, props.Date, string(day))
	if err != nil {
		return store.Page{}, false, &OpError{Op: OpLookup, Err: err}
	}

	if len(pages) > 0 {
		if len(pages) > 1 {
			extras := make([]string, 0, len(pages)-1)
			for _, p := range pages[1:] {
				extras = append(extras, p.ID)
			}
			l.log.Warn("multiple pages match day; using first",
				zap.String("day", string(day)),
				zap.String("page_id", pages[0].ID),
				zap.Strings("duplicates", extras))
		}
		return pages[0], false, nil
	}

	page, err := l.store.CreatePage(ctx, props.Title, props.Date, BucketTitle(day), string(day))
	if err != nil {
		return store.Page{}, false, &OpError{Op: OpCreate, Err: err}
	}
	l.log.Info("created day page", zap.String("day", string(day)), zap.String("page_id", page.ID))
	return page, true, nil
}
