package config

// APIConfig defines the admin HTTP API server.
type APIConfig struct {
	// Addr is the listen address. Empty disables the API server.
	Addr string `json:"addr"`
	// Token guards every endpoint with a bearer check when non-empty.
	Token string `json:"token"`
}
