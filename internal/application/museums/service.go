package museums

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/bryanwahyu/artscan/internal/domain/museums"
)

// Service implements admin use-cases untuk Museum
type Service struct {
	Repo domain.Repository
}

// Save validates and upserts a museum; a missing ID means a new row.
func (s *Service) Save(ctx context.Context, m *domain.Museum) (*domain.Museum, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Museum, error) {
	return s.Repo.List(ctx)
}
