package shared

import (
	"context"
)

// Filter represents query filter options for listing endpoints
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// TransactionManager runs a function inside a single store transaction.
// Repository calls made with the context passed to fn join that
// transaction; any error returned from fn rolls the whole unit back.
type TransactionManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
