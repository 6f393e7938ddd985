// Package connectors defines the upstream identity clients that feed the
// engineer directory.
package connectors

import (
	"github.com/rotaops/rota/auth"
	"github.com/rotaops/rota/core/model"
)

// ErrIncompatibleOption formats the error for an option applied to the
// wrong client implementation.
const ErrIncompatibleOption = "option %s does not apply to connector %s"

// Option configures a client before Fetch.
type Option func(IdentityClient) error

// IdentityClient fetches the engineer roster from an upstream directory.
type IdentityClient interface {
	Fetch(authClient *auth.ClientCred, opts ...Option) (IdentityResponse, error)
}

// IdentityResponse is a provider payload convertible to the domain roster.
type IdentityResponse interface {
	Engineers() ([]model.Engineer, error)
}
