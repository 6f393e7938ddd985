package config

// PluginConfig stores the type name of a pluggable component and raw
// configuration data for it. Each plugin decodes the raw map into its own
// concrete configuration struct.
type PluginConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
}
