package factory

import (
	"fmt"

	"github.com/rotaops/rota/connectors"
	"github.com/rotaops/rota/connectors/clients/staffdir"
)

const (
	IDStaffDirectory = "staff_directory"
)

var (
	errUnknownClient = "unknown connector id: %s"
)

func NewIdentityClient(id string) (connectors.IdentityClient, error) {
	switch id {
	case IDStaffDirectory:
		return &staffdir.Client{}, nil
	default:
		return nil, fmt.Errorf(errUnknownClient, id)
	}
}
