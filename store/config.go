package store

// Config holds configuration for the Store.
type Config struct {
	// TablePrefix is prepended to every collection name to form the
	// physical table name. Default: "" (collection name used as-is).
	TablePrefix string

	// Tables overrides the physical table name for individual collections.
	// Entries take precedence over TablePrefix.
	Tables map[string]string
}

// DefaultConfig returns defaults that map each collection directly to a
// table of the same name.
func DefaultConfig() Config {
	return Config{}
}

// validate ensures config values are usable.
func (c *Config) validate() {
	if c.Tables == nil {
		c.Tables = map[string]string{}
	}
}

// tableFor resolves the physical table name for a collection.
func (c *Config) tableFor(collection string) string {
	if t, ok := c.Tables[collection]; ok {
		return t
	}
	return c.TablePrefix + collection
}
