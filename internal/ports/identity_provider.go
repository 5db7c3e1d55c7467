package ports

import (
	"context"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

// IdentityProvider runs a third-party login flow and returns an identity
// token suitable for exchange at the backend's social login endpoint.
type IdentityProvider interface {
	Authenticate(ctx context.Context) (domain.IdentityToken, error)
	// SignOut ends the provider-side session. Best effort.
	SignOut(ctx context.Context) error
}
