package main

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Member mirrors the staff directory wire format so the simulator can
// stand in for the identity connector during rehearsals.
type Member struct {
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Qualification string `json:"qualification"`
	Pod           string `json:"pod"`
	Active        bool   `json:"active"`
}

// GenerateRoster creates size members with IDs eng0001..engNNNN,
// alternating am and pm qualifications and cycling through pods.
func GenerateRoster(size, pods int) []Member {
	if size <= 0 {
		return nil
	}
	if pods <= 0 {
		pods = 1
	}
	ms := make([]Member, size)
	for i := 0; i < size; i++ {
		qual := "am"
		if i%2 == 1 {
			qual = "pm"
		}
		ms[i] = Member{
			Email:         fmt.Sprintf("eng%04d@sim.example.com", i+1),
			DisplayName:   fmt.Sprintf("Engineer %04d", i+1),
			Qualification: qual,
			Pod:           fmt.Sprintf("pod%02d", i%pods+1),
			Active:        true,
		}
	}
	return ms
}

// LoadRoster reads members from a JSON file payload.
func LoadRoster(data []byte) ([]Member, error) {
	var ms []Member
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// directoryHandler serves the members list in the staff directory
// format. The team query parameter is accepted and ignored: the
// simulated roster is the team.
func directoryHandler(members []Member) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/members", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(struct {
			Members []Member `json:"members"`
		}{Members: members}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}
