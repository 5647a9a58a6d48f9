package driven

// ConfigStore holds user settings as flat dotted keys such as
// "backend.url" or "summary.delay_ms". Values keep the type the store
// decoded them as; the settings service does the conversion.
type ConfigStore interface {
	Get(key string) (any, bool)

	// Set stores value under key and persists it.
	Set(key string, value any) error

	// Delete removes key so its default applies again. Deleting a missing
	// key is not an error.
	Delete(key string) error

	// Save flushes the whole configuration.
	Save() error

	// Path locates the backing file, or ":memory:".
	Path() string
}
