package config

import "github.com/rotaops/rota/auth"

// IdentityConfig defines the upstream engineer directory sync.
type IdentityConfig struct {
	// Connector selects the identity client type. Empty disables sync.
	Connector string `json:"connector"`
	// BaseURL is the directory service root.
	BaseURL string `json:"base_url"`
	// Team narrows the fetch to one team when set.
	Team string `json:"team"`
	// SyncIntervalSeconds re-runs the sync in the daemon. Zero syncs once
	// at startup.
	SyncIntervalSeconds int `json:"sync_interval_seconds"`
	// Auth holds the client-credentials grant used against the directory.
	Auth auth.Conf `json:"auth"`
}
