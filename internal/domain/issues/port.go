package issues

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, r *IssueReport) error
	Get(ctx context.Context, id string) (*IssueReport, error)
	UpdateState(ctx context.Context, id string, state State) error
	ListOpen(ctx context.Context, limit int) ([]*IssueReport, error)
}
