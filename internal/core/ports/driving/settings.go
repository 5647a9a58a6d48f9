package driving

import "github.com/searchbox/searchbox-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment
	// overrides applied.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Set parses and stores a single dotted key.
	Set(key, value string) error

	// Unset reverts a key to its default.
	Unset(key string) error

	// Values returns every known key with its effective value.
	Values() ([]domain.SettingValue, error)

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
