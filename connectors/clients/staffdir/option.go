package staffdir

import (
	"fmt"

	"github.com/rotaops/rota/connectors"
)

func WithBaseURL(baseURL string) connectors.Option {
	return func(c connectors.IdentityClient) error {
		if s, ok := c.(*Client); ok {
			s.baseURL = baseURL
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithBaseURL", "staff_directory")
	}
}

func WithTeam(team string) connectors.Option {
	return func(c connectors.IdentityClient) error {
		if s, ok := c.(*Client); ok {
			s.team = team
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithTeam", "staff_directory")
	}
}
