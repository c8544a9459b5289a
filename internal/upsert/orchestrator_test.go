package upsert

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariel-frischer/mergelog/internal/retry"
	"github.com/ariel-frischer/mergelog/internal/store"
)

// fakeStore is an in-memory store.Store with injectable failures and a
// pre-append hook for simulating racing writers.
type fakeStore struct {
	schema store.Schema
	pages  map[string]*fakePage
	order  []string
	nextID int

	creates     int
	appends     int
	schemaCalls int
	bodyCalls   int

	schemaErr  error
	findErr    error
	createErr  error
	appendErr  error
	schemaErrs []error // consumed one per Schema call before schemaErr
}

type fakePage struct {
	title string
	day   string
	body  store.Body
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schema: store.Schema{
			{Name: "Name", Kind: store.KindTitle},
			{Name: "Date", Kind: store.KindDate},
		},
		pages: make(map[string]*fakePage),
	}
}

func (f *fakeStore) addPage(day string) string {
	f.nextID++
	id := fmt.Sprintf("page-%d", f.nextID)
	f.pages[id] = &fakePage{title: "Changelog " + day, day: day}
	f.order = append(f.order, id)
	return id
}

func (f *fakeStore) Schema(_ context.Context) (store.Schema, error) {
	f.schemaCalls++
	if len(f.schemaErrs) > 0 {
		err := f.schemaErrs[0]
		f.schemaErrs = f.schemaErrs[1:]
		if err != nil {
			return nil, err
		}
	} else if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	return f.schema, nil
}

func (f *fakeStore) FindByDate(_ context.Context, _, day string) ([]store.Page, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var pages []store.Page
	for _, id := range f.order {
		if f.pages[id].day == day {
			pages = append(pages, store.Page{ID: id})
		}
	}
	return pages, nil
}

func (f *fakeStore) Body(_ context.Context, pageID string) (store.Body, error) {
	f.bodyCalls++
	p, ok := f.pages[pageID]
	if !ok {
		return nil, &store.APIError{Service: "notion", Status: 404, Message: "page not found"}
	}
	body := make(store.Body, len(p.body))
	copy(body, p.body)
	return body, nil
}

func (f *fakeStore) CreatePage(_ context.Context, _, _, title, day string) (store.Page, error) {
	if f.createErr != nil {
		return store.Page{}, f.createErr
	}
	f.creates++
	id := f.addPage(day)
	f.pages[id].title = title
	return store.Page{ID: id}, nil
}

func (f *fakeStore) AppendBlocks(_ context.Context, pageID string, blocks []store.Block) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	p, ok := f.pages[pageID]
	if !ok {
		return &store.APIError{Service: "notion", Status: 404, Message: "page not found"}
	}
	f.appends++
	p.body = append(p.body, blocks...)
	return nil
}

func (f *fakeStore) PageURL(_ context.Context, pageID string) (string, error) {
	return "https://notion.example/" + pageID, nil
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func testRequest(pr int) Request {
	return Request{
		Entry: Entry{
			Repo:    "acme/widgets",
			Number:  pr,
			Title:   fmt.Sprintf("Change %d", pr),
			URL:     fmt.Sprintf("https://github.com/acme/widgets/pull/%d", pr),
			Summary: "Summary line.\n- detail",
		},
		MergedAt: time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC),
		Timezone: "America/New_York",
	}
}

func TestUpsertCreatesPageAndEntry(t *testing.T) {
	fake := newFakeStore()
	o := New(fake, testPolicy(), nil)

	res, err := o.Upsert(context.Background(), testRequest(42))
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.False(t, res.Skipped)
	assert.Equal(t, Day("2024-03-15"), res.Day)
	assert.NotEmpty(t, res.Page.URL)
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 1, fake.appends)

	body := fake.pages[res.Page.ID].body
	require.NotEmpty(t, body)
	assert.True(t, AlreadyLogged(body, 42))
	assert.Equal(t, "Changelog 2024-03-15", fake.pages[res.Page.ID].title)
}

func TestUpsertIsIdempotent(t *testing.T) {
	fake := newFakeStore()
	o := New(fake, testPolicy(), nil)
	req := testRequest(42)

	first, err := o.Upsert(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Skipped)

	snapshot := make(store.Body, len(fake.pages[first.Page.ID].body))
	copy(snapshot, fake.pages[first.Page.ID].body)

	second, err := o.Upsert(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, second.Skipped)
	assert.Equal(t, first.Page.ID, second.Page.ID)
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 1, fake.appends)
	assert.Equal(t, snapshot, fake.pages[first.Page.ID].body)
}

func TestUpsertSameDayAccumulatesInOnePage(t *testing.T) {
	fake := newFakeStore()
	o := New(fake, testPolicy(), nil)

	const n = 5
	var pageID string
	for pr := 1; pr <= n; pr++ {
		res, err := o.Upsert(context.Background(), testRequest(pr))
		require.NoError(t, err)
		if pageID == "" {
			pageID = res.Page.ID
		}
		assert.Equal(t, pageID, res.Page.ID)
	}

	assert.Equal(t, 1, fake.creates)
	assert.Len(t, fake.pages, 1)
	for pr := 1; pr <= n; pr++ {
		assert.True(t, AlreadyLogged(fake.pages[pageID].body, pr), "entry for pr %d", pr)
	}
}

func TestUpsertDateOverrideWins(t *testing.T) {
	fake := newFakeStore()
	o := New(fake, testPolicy(), nil)

	req := testRequest(42)
	req.DateOverride = "2024-01-01"

	res, err := o.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Day("2024-01-01"), res.Day)
	assert.Equal(t, "2024-01-01", fake.pages[res.Page.ID].day)
}

func TestUpsertTolerantOfCustomSchemas(t *testing.T) {
	fake := newFakeStore()
	fake.schema = store.Schema{
		{Name: "Etiketten", Kind: store.FieldKind("multi_select")},
		{Name: "Rubrik", Kind: store.KindTitle},
		{Name: "Tag", Kind: store.KindDate},
	}
	o := New(fake, testPolicy(), nil)

	_, err := o.Upsert(context.Background(), testRequest(42))
	require.NoError(t, err)
	assert.Equal(t, 1, fake.creates)
}

func TestUpsertSchemaErrorIsFatalAndNotRetried(t *testing.T) {
	fake := newFakeStore()
	fake.schema = store.Schema{{Name: "Name", Kind: store.KindTitle}}
	o := New(fake, testPolicy(), nil)

	_, err := o.Upsert(context.Background(), testRequest(42))

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, store.KindDate, schemaErr.Kind)
	// The schema itself was fetched once; the resolution failure must not
	// burn the retry budget.
	assert.Equal(t, 1, fake.schemaCalls)
	assert.Zero(t, fake.creates)
	assert.Zero(t, fake.appends)
}

func TestUpsertRetriesTransientSchemaFetch(t *testing.T) {
	fake := newFakeStore()
	fake.schemaErrs = []error{
		&store.APIError{Service: "notion", Status: 503},
		&store.APIError{Service: "notion", Status: 429},
	}
	o := New(fake, testPolicy(), nil)

	_, err := o.Upsert(context.Background(), testRequest(42))
	require.NoError(t, err)
	assert.Equal(t, 3, fake.schemaCalls)
}

func TestUpsertPersistExhaustionSurfacesOpError(t *testing.T) {
	fake := newFakeStore()
	fake.appendErr = &store.APIError{Service: "notion", Status: 503}
	o := New(fake, testPolicy(), nil)

	_, err := o.Upsert(context.Background(), testRequest(42))

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpPersist, opErr.Op)
	// The created-but-never-updated page is an acceptable terminal state;
	// the next run for the day must reuse it.
	assert.Equal(t, 1, fake.creates)

	fake.appendErr = nil
	res, err := o.Upsert(context.Background(), testRequest(42))
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 1, fake.appends)
}

func TestUpsertRechecksBeforePersist(t *testing.T) {
	// A racing invocation lands the same entry between the initial read and
	// the final persist. The narrowed re-check must catch it and skip the
	// write instead of double-logging.
	fake := newFakeStore()
	pageID := fake.addPage("2024-03-15")
	firstRead := true
	o := New(&racingStore{fakeStore: fake, pageID: pageID, firstRead: &firstRead}, testPolicy(), nil)

	res, err := o.Upsert(context.Background(), testRequest(42))
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Zero(t, fake.appends)
}

// racingStore wraps fakeStore and injects the marker after the first body
// read, modeling a concurrent writer that commits between check and act.
type racingStore struct {
	*fakeStore
	pageID    string
	firstRead *bool
}

func (r *racingStore) Body(ctx context.Context, pageID string) (store.Body, error) {
	body, err := r.fakeStore.Body(ctx, pageID)
	if err == nil && *r.firstRead && pageID == r.pageID {
		*r.firstRead = false
		r.fakeStore.pages[pageID].body = append(r.fakeStore.pages[pageID].body, store.Block{
			Type: store.BlockParagraph,
			Text: Marker(42),
		})
	}
	return body, err
}

func TestUpsertDirectPageMode(t *testing.T) {
	fake := newFakeStore()
	pageID := fake.addPage("") // day unset: an arbitrary pinned page
	o := New(fake, testPolicy(), nil)

	req := testRequest(42)
	req.PageID = pageID

	res, err := o.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, pageID, res.Page.ID)
	assert.Empty(t, res.Day)
	assert.Zero(t, fake.schemaCalls)
	assert.Zero(t, fake.creates)
	assert.Equal(t, 1, fake.appends)

	// Guard still applies in direct mode.
	res, err = o.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, 1, fake.appends)
}

func TestUpsertRejectsRequestWithoutTimestampOrOverride(t *testing.T) {
	o := New(newFakeStore(), testPolicy(), nil)
	req := testRequest(42)
	req.MergedAt = time.Time{}

	_, err := o.Upsert(context.Background(), req)
	require.Error(t, err)
}
