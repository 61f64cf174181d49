package scans

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/artscan/internal/application/catalog"
	"github.com/bryanwahyu/artscan/internal/domain/artworks"
	"github.com/bryanwahyu/artscan/internal/domain/museums"
	domain "github.com/bryanwahyu/artscan/internal/domain/scans"
	"github.com/bryanwahyu/artscan/internal/domain/vision"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

type fakeEmbedder struct {
	v   artworks.Vector
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, image []byte) (artworks.Vector, error) {
	return f.v, f.err
}

type fakeAnalyzer struct {
	a     vision.Analysis
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, image []byte) (vision.Analysis, error) {
	f.calls++
	return f.a, f.err
}

type fakeStore struct{ puts int }

func (f *fakeStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.puts++
	return "http://store/" + key, nil
}

type fakeMuseums struct {
	ms  []*museums.Museum
	err error
}

func (f *fakeMuseums) List(ctx context.Context) ([]*museums.Museum, error) { return f.ms, f.err }
func (f *fakeMuseums) Get(ctx context.Context, id string) (*museums.Museum, error) {
	for _, m := range f.ms {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, museums.ErrNotFound
}
func (f *fakeMuseums) Save(ctx context.Context, m *museums.Museum) error { return nil }

type fakeLedger struct {
	mu     sync.Mutex
	events []*domain.ScanEvent
}

func (f *fakeLedger) Append(ctx context.Context, e *domain.ScanEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fakeLedger) Latest(ctx context.Context, limit int) ([]*domain.ScanEvent, error) {
	return f.events, nil
}

func (f *fakeLedger) LatestByUser(ctx context.Context, userID string, limit int) ([]*domain.ScanEvent, error) {
	var out []*domain.ScanEvent
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeLedger) Summarize(ctx context.Context, since time.Time) (domain.Summary, error) {
	s := domain.Summary{}
	users := map[string]struct{}{}
	for _, e := range f.events {
		s.TotalScans++
		if e.ArtworkID != nil {
			s.Matched++
		}
		users[e.UserID] = struct{}{}
	}
	s.UniqueUsers = len(users)
	return s, nil
}

type memArtworks struct {
	mu   sync.Mutex
	rows map[artworks.ArtworkID]*artworks.Artwork
}

func newMemArtworks() *memArtworks {
	return &memArtworks{rows: make(map[artworks.ArtworkID]*artworks.Artwork)}
}

func (r *memArtworks) Create(ctx context.Context, a *artworks.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; ok {
		return artworks.ErrConflict
	}
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *memArtworks) Get(ctx context.Context, id artworks.ArtworkID) (*artworks.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, artworks.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memArtworks) Update(ctx context.Context, a *artworks.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return artworks.ErrNotFound
	}
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *memArtworks) Delete(ctx context.Context, id artworks.ArtworkID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return artworks.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memArtworks) Nearest(ctx context.Context, embedding artworks.Vector, scope []string, k int) ([]artworks.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inScope := func(a *artworks.Artwork) bool {
		if a.MuseumID == nil {
			return true
		}
		for _, id := range scope {
			if id == *a.MuseumID {
				return true
			}
		}
		return false
	}
	var out []artworks.Candidate
	for _, a := range r.rows {
		if !inScope(a) {
			continue
		}
		cp := *a
		out = append(out, artworks.Candidate{Artwork: &cp, Distance: embedding.Cosine(a.Embedding)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

type noopLocker struct{ mu sync.Mutex }

func (l *noopLocker) Acquire(ctx context.Context, key int64) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

type fixture struct {
	svc      *Service
	repo     *memArtworks
	ledger   *fakeLedger
	store    *fakeStore
	analyzer *fakeAnalyzer
	embedder *fakeEmbedder
	museums  *fakeMuseums
}

func newFixture() *fixture {
	clock := fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	repo := newMemArtworks()
	ledger := &fakeLedger{}
	store := &fakeStore{}
	embedder := &fakeEmbedder{v: artworks.Vector{1, 0, 0, 0}}
	analyzer := &fakeAnalyzer{}
	ms := &fakeMuseums{}

	coord := &catalog.Coordinator{
		Repo:      repo,
		Locker:    &noopLocker{},
		Clock:     clock,
		Threshold: artworks.MatchThreshold,
		TopK:      5,
		Dimension: 4,
		Log:       zerolog.Nop(),
	}
	return &fixture{
		svc: &Service{
			Artworks:  repo,
			Museums:   ms,
			Ledger:    ledger,
			Embedder:  embedder,
			Analyzer:  analyzer,
			Catalog:   coord,
			Images:    store,
			Clock:     clock,
			Threshold: artworks.MatchThreshold,
			TopK:      5,
			Log:       zerolog.Nop(),
		},
		repo:     repo,
		ledger:   ledger,
		store:    store,
		analyzer: analyzer,
		embedder: embedder,
		museums:  ms,
	}
}

func seedArtwork(t *testing.T, f *fixture, id string, emb artworks.Vector, src artworks.Source, verified bool, museumID *string) {
	t.Helper()
	require.NoError(t, f.repo.Create(context.Background(), &artworks.Artwork{
		ID:         artworks.ArtworkID(id),
		MuseumID:   museumID,
		Title:      "Seeded " + id,
		Embedding:  emb,
		IsVerified: verified,
		Source:     src,
		CreatedAt:  time.Now(),
	}))
}

func TestSubmitMatchFound(t *testing.T) {
	f := newFixture()
	seedArtwork(t, f, "known", artworks.Vector{1, 0, 0, 0}, artworks.SourceMuseumAPI, true, nil)

	res, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: testImage(t), Lat: 48.86, Lon: 2.33, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatchFound, res.Status)
	require.NotNil(t, res.Artwork)
	assert.Equal(t, artworks.ArtworkID("known"), res.Artwork.ID)
	assert.Equal(t, artworks.TierVerified, res.Tier)
	require.NotNil(t, res.Distance)
	assert.InDelta(t, 0, *res.Distance, 1e-9)

	// one ledger event referencing the match, analyzer never consulted
	require.Len(t, f.ledger.events, 1)
	require.NotNil(t, f.ledger.events[0].ArtworkID)
	assert.Equal(t, "known", *f.ledger.events[0].ArtworkID)
	assert.Equal(t, 0, f.analyzer.calls)
	assert.Equal(t, 1, f.store.puts)
}

func TestSubmitNotArt(t *testing.T) {
	f := newFixture()
	f.analyzer.a = vision.Analysis{IsArtwork: false, Description: "a cafeteria tray"}

	res, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: testImage(t), Lat: 48.86, Lon: 2.33, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotArt, res.Status)
	assert.Nil(t, res.Artwork)
	assert.False(t, res.Cataloged)

	// the attempt still lands in the ledger, with no artwork reference
	require.Len(t, f.ledger.events, 1)
	assert.Nil(t, f.ledger.events[0].ArtworkID)
	assert.Empty(t, f.repo.rows)
}

func TestSubmitAutoCatalogsThenMatches(t *testing.T) {
	f := newFixture()
	f.analyzer.a = vision.Analysis{
		IsArtwork:   true,
		Label:       "Sunset Over the Harbor",
		Artist:      "Unknown",
		Description: "An oil painting of a harbor at dusk.",
		Style:       "Impressionism",
		Confidence:  0.82,
	}

	res, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: testImage(t), Lat: 48.86, Lon: 2.33, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAIAnalysis, res.Status)
	assert.True(t, res.Cataloged)
	require.NotNil(t, res.Artwork)
	assert.Equal(t, artworks.SourceAIGenerated, res.Artwork.Source)
	assert.Equal(t, artworks.TierCommunity, res.Tier)
	firstID := res.Artwork.ID

	// second scan of the same subject resolves to the existing row
	res2, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: testImage(t), Lat: 48.86, Lon: 2.33, UserID: "u2",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAIAnalysis, res2.Status)
	assert.False(t, res2.Cataloged)
	require.NotNil(t, res2.Artwork)
	assert.Equal(t, firstID, res2.Artwork.ID)
	assert.Equal(t, 1, f.analyzer.calls, "second scan matches before analysis")

	assert.Len(t, f.repo.rows, 1)
	assert.Len(t, f.ledger.events, 2)
}

func TestSubmitGeofenceExcludesOtherMuseums(t *testing.T) {
	f := newFixture()
	louvre := "louvre"
	f.museums.ms = []*museums.Museum{
		{ID: "louvre", Name: "Louvre", Lat: 48.8606, Lon: 2.3376, RadiusMeters: 300},
		{ID: "moma", Name: "MoMA", Lat: 40.7614, Lon: -73.9776, RadiusMeters: 300},
	}
	// same embedding, but the row belongs to a museum outside the scan's fence
	seedArtwork(t, f, "moma-piece", artworks.Vector{1, 0, 0, 0}, artworks.SourceMuseumAPI, true, ptr("moma"))
	seedArtwork(t, f, "louvre-piece", artworks.Vector{1, 0, 0, 0}, artworks.SourceMuseumAPI, true, &louvre)

	res, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: testImage(t), Lat: 48.8606, Lon: 2.3376, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusMatchFound, res.Status)
	require.NotNil(t, res.Artwork)
	assert.Equal(t, artworks.ArtworkID("louvre-piece"), res.Artwork.ID)
}

func TestSubmitGeofenceLookupFailureDegrades(t *testing.T) {
	f := newFixture()
	f.museums.err = errors.New("museum table unavailable")
	seedArtwork(t, f, "unaffiliated", artworks.Vector{1, 0, 0, 0}, artworks.SourceAdmin, true, nil)

	res, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: testImage(t), Lat: 48.86, Lon: 2.33, UserID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerifiedResult, res.Status)
}

func TestSubmitInvalidImage(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: []byte("definitely not an image"), UserID: "u1",
	})
	assert.ErrorIs(t, err, vision.ErrInvalidImage)
	assert.Empty(t, f.ledger.events)
	assert.Equal(t, 0, f.store.puts)

	_, err = f.svc.Submit(context.Background(), SubmitCommand{UserID: "u1"})
	assert.ErrorIs(t, err, vision.ErrInvalidImage)
}

func TestSubmitEmbedderFailure(t *testing.T) {
	f := newFixture()
	f.embedder.err = fmt.Errorf("%w: sidecar down", vision.ErrEmbeddingUnavailable)

	_, err := f.svc.Submit(context.Background(), SubmitCommand{
		Image: testImage(t), UserID: "u1",
	})
	assert.ErrorIs(t, err, vision.ErrEmbeddingUnavailable)
	assert.Empty(t, f.ledger.events)
}

func TestStatusForMatch(t *testing.T) {
	testCases := []struct {
		name string
		art  *artworks.Artwork
		want domain.Status
	}{
		{"museum api row", &artworks.Artwork{Source: artworks.SourceMuseumAPI, IsVerified: true}, domain.StatusMatchFound},
		{"admin verified row", &artworks.Artwork{Source: artworks.SourceAdmin, IsVerified: true}, domain.StatusVerifiedResult},
		{"ai generated row", &artworks.Artwork{Source: artworks.SourceAIGenerated}, domain.StatusAIAnalysis},
		{"community row", &artworks.Artwork{Source: artworks.SourceCommunity}, domain.StatusCommunityResult},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, statusForMatch(tc.art))
		})
	}
}

func TestLatestAndSummary(t *testing.T) {
	f := newFixture()
	id := "a1"
	require.NoError(t, f.ledger.Append(context.Background(), &domain.ScanEvent{ID: "e1", UserID: "u1", ArtworkID: &id}))
	require.NoError(t, f.ledger.Append(context.Background(), &domain.ScanEvent{ID: "e2", UserID: "u2"}))

	all, err := f.svc.Latest(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.Latest(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "e1", mine[0].ID)

	sum, err := f.svc.Summary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalScans)
	assert.Equal(t, 1, sum.Matched)
	assert.Equal(t, 2, sum.UniqueUsers)
}

func ptr(s string) *string { return &s }
