package driven

// ConfigStore manages application configuration keyed by dotted names
// such as "embedding.model".
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if absent.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if absent.
	GetInt(key string) int

	// Set stores a configuration value and persists it.
	Set(key string, value any) error

	// Keys returns all configured keys in sorted order.
	Keys() []string
}
