package staffdir

import (
	"fmt"

	"github.com/rotaops/rota/core/model"
)

// Response is the staff directory members payload.
type Response struct {
	Members []Member `json:"members"`
}

// Member is one directory row.
type Member struct {
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Qualification string `json:"qualification"`
	Pod           string `json:"pod"`
	Active        bool   `json:"active"`
}

// Engineers converts the payload to the domain roster. Inactive members
// become soft-deleted engineers so their history survives the sync.
func (r *Response) Engineers() ([]model.Engineer, error) {
	out := make([]model.Engineer, 0, len(r.Members))
	for _, m := range r.Members {
		if m.Email == "" {
			return nil, fmt.Errorf("staffdir: member %q has no email", m.DisplayName)
		}
		qual, err := model.ParseRotation(m.Qualification)
		if err != nil {
			return nil, fmt.Errorf("staffdir: member %s: %w", m.Email, err)
		}
		out = append(out, model.Engineer{
			Email:         m.Email,
			Name:          m.DisplayName,
			Qualification: qual,
			Pod:           m.Pod,
			Deleted:       !m.Active,
		})
	}
	return out, nil
}
