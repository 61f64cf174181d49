package museums

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	List(ctx context.Context) ([]*Museum, error)
	Get(ctx context.Context, id string) (*Museum, error)
	Save(ctx context.Context, m *Museum) error
}
