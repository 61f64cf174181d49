package scans

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/artscan/internal/application"
	"github.com/bryanwahyu/artscan/internal/application/catalog"
	"github.com/bryanwahyu/artscan/internal/domain/artworks"
	"github.com/bryanwahyu/artscan/internal/domain/museums"
	domain "github.com/bryanwahyu/artscan/internal/domain/scans"
	"github.com/bryanwahyu/artscan/internal/domain/vision"
)

// MaxImageBytes caps scan uploads. Phone camera JPEGs stay well under this.
const MaxImageBytes = 10 << 20

// Service implements the scan pipeline use-case:
// embed → geofence → match → (ledger | analyze → catalog → ledger).
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Artworks  artworks.Repository
	Museums   museums.Repository
	Ledger    domain.Repository
	Embedder  vision.Embedder
	Analyzer  vision.Analyzer
	Catalog   *catalog.Coordinator
	Images    domain.ImageStore
	Clock     application.Clock
	Threshold float64
	TopK      int
	Log       zerolog.Logger
}

// Command untuk submit scan
type SubmitCommand struct {
	Image  []byte
	Lat    float64
	Lon    float64
	UserID string
}

type SubmitResult struct {
	Status    domain.Status     `json:"status"`
	Artwork   *artworks.Artwork `json:"artwork,omitempty"`
	Tier      artworks.Tier     `json:"tier,omitempty"`
	Distance  *float64          `json:"distance,omitempty"`
	Analysis  *vision.Analysis  `json:"analysis,omitempty"`
	Message   string            `json:"message,omitempty"`
	Cataloged bool              `json:"cataloged"`
}

// Submit runs one scan to its single terminal status. Every completed scan
// appends exactly one ledger event, whatever the outcome.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	contentType, err := sniffImage(cmd.Image)
	if err != nil {
		return SubmitResult{}, err
	}

	start := s.Clock.Now()
	emb, err := s.Embedder.Embed(ctx, cmd.Image)
	externalLatency.WithLabelValues("embedding").Observe(time.Since(start).Seconds())
	if err != nil {
		return SubmitResult{}, err
	}

	scope := s.geofenceScope(ctx, cmd.Lat, cmd.Lon)

	cands, err := s.Artworks.Nearest(ctx, emb, scope, s.TopK)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("querying similarity index: %w", err)
	}

	if best := artworks.Best(cands, s.Threshold); best != nil {
		imageURL, err := s.upload(ctx, cmd, contentType)
		if err != nil {
			return SubmitResult{}, err
		}
		if err := s.record(ctx, cmd.UserID, &best.Artwork.ID, imageURL); err != nil {
			return SubmitResult{}, err
		}
		st := statusForMatch(best.Artwork)
		scansTotal.WithLabelValues(string(st)).Inc()
		d := best.Distance
		return SubmitResult{
			Status:   st,
			Artwork:  best.Artwork,
			Tier:     best.Artwork.Tier(),
			Distance: &d,
		}, nil
	}

	// No match: fall back to generative analysis.
	start = s.Clock.Now()
	analysis, err := s.Analyzer.Analyze(ctx, cmd.Image)
	externalLatency.WithLabelValues("analysis").Observe(time.Since(start).Seconds())
	if err != nil {
		return SubmitResult{}, err
	}

	imageURL, err := s.upload(ctx, cmd, contentType)
	if err != nil {
		return SubmitResult{}, err
	}

	if !analysis.IsArtwork {
		// Nothing cataloged, no embedding stored, but the ledger still
		// records the attempt.
		if err := s.record(ctx, cmd.UserID, nil, imageURL); err != nil {
			return SubmitResult{}, err
		}
		scansTotal.WithLabelValues(string(domain.StatusNotArt)).Inc()
		return SubmitResult{
			Status:   domain.StatusNotArt,
			Analysis: &analysis,
			Message:  analysis.Description,
		}, nil
	}

	art, created, err := s.Catalog.GetOrCreate(ctx, catalog.Proposal{
		Embedding:   emb,
		Title:       analysis.Label,
		Artist:      analysis.Artist,
		Description: descriptionFor(analysis),
		Confidence:  analysis.Confidence,
		ImageURL:    imageURL,
		MuseumScope: scope,
	})
	if err != nil {
		return SubmitResult{}, err
	}

	if err := s.record(ctx, cmd.UserID, &art.ID, imageURL); err != nil {
		return SubmitResult{}, err
	}
	st := domain.StatusAIAnalysis
	if !created {
		st = statusForMatch(art)
	}
	scansTotal.WithLabelValues(string(st)).Inc()
	return SubmitResult{
		Status:    st,
		Artwork:   art,
		Tier:      art.Tier(),
		Analysis:  &analysis,
		Cataloged: created,
	}, nil
}

// Artwork ambil 1 artwork by id
func (s *Service) Artwork(ctx context.Context, id artworks.ArtworkID) (*artworks.Artwork, error) {
	return s.Artworks.Get(ctx, id)
}

// Latest ambil N scan event terakhir
func (s *Service) Latest(ctx context.Context, userID string, limit int) ([]*domain.ScanEvent, error) {
	if userID != "" {
		return s.Ledger.LatestByUser(ctx, userID, limit)
	}
	return s.Ledger.Latest(ctx, limit)
}

// Summary rekap hasil scan N hari terakhir
func (s *Service) Summary(ctx context.Context, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	return s.Ledger.Summarize(ctx, s.Clock.Now().AddDate(0, 0, -sinceDays))
}

// geofenceScope narrows matching to nearby museums. Lookup failures are
// never fatal: they degrade to an empty scope (unaffiliated pool).
func (s *Service) geofenceScope(ctx context.Context, lat, lon float64) []string {
	ms, err := s.Museums.List(ctx)
	if err != nil {
		s.Log.Warn().Err(err).Msg("geofence lookup failed, searching unaffiliated pool")
		return nil
	}
	return museums.Candidates(ms, lat, lon)
}

func (s *Service) upload(ctx context.Context, cmd SubmitCommand, contentType string) (string, error) {
	key := fmt.Sprintf("scans/%s/%s%s", cmd.UserID, uuid.New().String(), extFor(contentType))
	url, err := s.Images.Put(ctx, key, cmd.Image, contentType)
	if err != nil {
		return "", fmt.Errorf("uploading scan image: %w", err)
	}
	return url, nil
}

func (s *Service) record(ctx context.Context, userID string, artworkID *artworks.ArtworkID, imageURL string) error {
	var ref *string
	if artworkID != nil {
		id := string(*artworkID)
		ref = &id
	}
	e := &domain.ScanEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		ArtworkID: ref,
		ImageURL:  imageURL,
		Timestamp: s.Clock.Now(),
	}
	if err := s.Ledger.Append(ctx, e); err != nil {
		return fmt.Errorf("appending scan event: %w", err)
	}
	return nil
}

// statusForMatch maps the winning artwork to the response status.
func statusForMatch(a *artworks.Artwork) domain.Status {
	switch {
	case a.Source == artworks.SourceMuseumAPI:
		return domain.StatusMatchFound
	case a.IsVerified:
		return domain.StatusVerifiedResult
	case a.Source == artworks.SourceAIGenerated:
		return domain.StatusAIAnalysis
	default:
		return domain.StatusCommunityResult
	}
}

func descriptionFor(a vision.Analysis) map[string]any {
	d := map[string]any{
		"narrative":    a.Description,
		"ai_generated": true,
	}
	if a.Style != "" {
		d["style"] = a.Style
	}
	if a.Era != "" {
		d["era"] = a.Era
	}
	if a.Medium != "" {
		d["medium"] = a.Medium
	}
	return d
}

// sniffImage rejects undecodable uploads before any external call is made.
func sniffImage(data []byte) (string, error) {
	if len(data) == 0 || len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: empty or oversized upload", vision.ErrInvalidImage)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: %v", vision.ErrInvalidImage, err)
	}
	return http.DetectContentType(data), nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
