package issues

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/artscan/internal/application"
	"github.com/bryanwahyu/artscan/internal/domain/artworks"
	domain "github.com/bryanwahyu/artscan/internal/domain/issues"
)

// Service implements issue reporting and the moderation workflow. Moderation
// is the only path that mutates catalog rows after creation; it runs outside
// scan-time concurrency.
type Service struct {
	Reports  domain.Repository
	Artworks artworks.Repository
	Clock    application.Clock
	Log      zerolog.Logger
}

// Report files a correction against an existing artwork.
func (s *Service) Report(ctx context.Context, artworkID artworks.ArtworkID, userID string, kind domain.Kind, note string) (*domain.IssueReport, error) {
	if !domain.ValidKind(kind) {
		return nil, fmt.Errorf("invalid issue kind: %s", kind)
	}
	if _, err := s.Artworks.Get(ctx, artworkID); err != nil {
		return nil, err
	}
	r := &domain.IssueReport{
		ID:        uuid.New().String(),
		ArtworkID: string(artworkID),
		UserID:    userID,
		Kind:      kind,
		Note:      note,
		State:     domain.StateOpen,
		CreatedAt: s.Clock.Now(),
	}
	if err := s.Reports.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Outcome is the moderator's decision on an open report.
type Outcome struct {
	Action      string         `json:"action"` // dismiss | correct | verify | delete
	Title       *string        `json:"title,omitempty"`
	Artist      *string        `json:"artist,omitempty"`
	Description map[string]any `json:"description,omitempty"`
}

// Resolve applies the outcome and transitions the report. Artwork deletion
// happens only here, via explicit admin action.
func (s *Service) Resolve(ctx context.Context, reportID string, out Outcome) error {
	r, err := s.Reports.Get(ctx, reportID)
	if err != nil {
		return err
	}

	to := domain.StateResolved
	switch out.Action {
	case "dismiss":
		to = domain.StateDismissed
	case "correct":
		if err := s.correct(ctx, r, out); err != nil {
			return err
		}
	case "verify":
		if err := s.verify(ctx, r); err != nil {
			return err
		}
	case "delete":
		// artwork removed after the state update below; issue_reports
		// cascades on artwork delete, so the row must be written first
	default:
		return fmt.Errorf("%w: %s", domain.ErrInvalidAction, out.Action)
	}

	if err := r.Transition(to); err != nil {
		return err
	}
	if err := s.Reports.UpdateState(ctx, r.ID, r.State); err != nil {
		return err
	}
	if out.Action == "delete" {
		if err := s.Artworks.Delete(ctx, artworks.ArtworkID(r.ArtworkID)); err != nil {
			return err
		}
	}
	s.Log.Info().
		Str("report_id", r.ID).
		Str("artwork_id", r.ArtworkID).
		Str("action", out.Action).
		Msg("issue report resolved")
	return nil
}

// Open lists reports awaiting moderation.
func (s *Service) Open(ctx context.Context, limit int) ([]*domain.IssueReport, error) {
	return s.Reports.ListOpen(ctx, limit)
}

func (s *Service) correct(ctx context.Context, r *domain.IssueReport, out Outcome) error {
	a, err := s.Artworks.Get(ctx, artworks.ArtworkID(r.ArtworkID))
	if err != nil {
		return err
	}
	if out.Title != nil {
		a.Title = *out.Title
	}
	if out.Artist != nil {
		a.Artist = *out.Artist
	}
	if out.Description != nil {
		a.Description = out.Description
	}
	return s.Artworks.Update(ctx, a)
}

func (s *Service) verify(ctx context.Context, r *domain.IssueReport) error {
	a, err := s.Artworks.Get(ctx, artworks.ArtworkID(r.ArtworkID))
	if err != nil {
		return err
	}
	a.IsVerified = true
	a.Source = artworks.SourceAdmin
	return s.Artworks.Update(ctx, a)
}
