package ports

import (
	"context"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

// SessionCache persists the last known identity and session credential so the
// next run can render without waiting on the backend. It is never consulted
// as an authority, only as a hydration hint.
type SessionCache interface {
	Load(ctx context.Context) (domain.CachedSession, error)
	Save(ctx context.Context, session domain.CachedSession) error
	Clear(ctx context.Context) error
}
