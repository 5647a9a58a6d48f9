package services

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driven"
	"github.com/searchbox/searchbox-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyBackendURL         = "backend.url"
	KeyBackendCSRFToken   = "backend.csrf_token"
	KeyBackendRateLimit   = "backend.requests_per_second"
	KeyMeiliURL           = "meilisearch.url"
	KeyMeiliAPIKey        = "meilisearch.api_key"
	KeyMeiliIndex         = "meilisearch.index"
	KeyPageSize           = "search.page_size"
	KeyImagePageSize      = "search.image_page_size"
	KeyExplorePageSize    = "search.explore_page_size"
	KeySort               = "search.sort"
	KeySummaryEnabled     = "summary.enabled"
	KeySummaryDelay       = "summary.delay_ms"
	KeySummaryStreaming   = "summary.streaming"
	KeyCachePath          = "cache.path"
	KeyCacheTTL           = "cache.ttl_ms"
	KeyCacheMaxEntries    = "cache.max_entries"
	KeyCacheCleanup       = "cache.cleanup_interval_s"
	KeyRecommendationsTTL = "recommendations.ttl_s"
	KeyViewerTimeout      = "viewer.timeout_s"
	KeyWebAddr            = "web.addr"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
)

// settingField describes one configurable key.
type settingField struct {
	key    string
	kind   settingKind
	env    string
	secret bool
	format func(s *domain.AppSettings) string
}

func millis(d time.Duration) string  { return strconv.FormatInt(d.Milliseconds(), 10) }
func seconds(d time.Duration) string { return strconv.Itoa(int(d / time.Second)) }

var settingFields = []settingField{
	{KeyBackendURL, kindString, "SEARCHBOX_BACKEND_URL", false, func(s *domain.AppSettings) string { return s.Backend.URL }},
	{KeyBackendCSRFToken, kindString, "SEARCHBOX_CSRF_TOKEN", true, func(s *domain.AppSettings) string { return s.Backend.CSRFToken }},
	{KeyBackendRateLimit, kindInt, "", false, func(s *domain.AppSettings) string {
		return strconv.FormatFloat(s.Backend.RequestsPerSecond, 'f', -1, 64)
	}},
	{KeyMeiliURL, kindString, "SEARCHBOX_MEILI_URL", false, func(s *domain.AppSettings) string { return s.Meilisearch.URL }},
	{KeyMeiliAPIKey, kindString, "SEARCHBOX_MEILI_KEY", true, func(s *domain.AppSettings) string { return s.Meilisearch.APIKey }},
	{KeyMeiliIndex, kindString, "", false, func(s *domain.AppSettings) string { return s.Meilisearch.Index }},
	{KeyPageSize, kindInt, "", false, func(s *domain.AppSettings) string { return strconv.Itoa(s.Search.PageSize) }},
	{KeyImagePageSize, kindInt, "", false, func(s *domain.AppSettings) string { return strconv.Itoa(s.Search.ImagePageSize) }},
	{KeyExplorePageSize, kindInt, "", false, func(s *domain.AppSettings) string { return strconv.Itoa(s.Search.ExplorePageSize) }},
	{KeySort, kindString, "", false, func(s *domain.AppSettings) string { return string(s.Search.Sort) }},
	{KeySummaryEnabled, kindBool, "", false, func(s *domain.AppSettings) string { return strconv.FormatBool(s.Summary.Enabled) }},
	{KeySummaryDelay, kindInt, "", false, func(s *domain.AppSettings) string { return millis(s.Summary.Delay) }},
	{KeySummaryStreaming, kindBool, "", false, func(s *domain.AppSettings) string { return strconv.FormatBool(s.Summary.Streaming) }},
	{KeyCachePath, kindString, "", false, func(s *domain.AppSettings) string { return s.Cache.Path }},
	{KeyCacheTTL, kindInt, "", false, func(s *domain.AppSettings) string { return millis(s.Cache.TTL) }},
	{KeyCacheMaxEntries, kindInt, "", false, func(s *domain.AppSettings) string { return strconv.Itoa(s.Cache.MaxEntries) }},
	{KeyCacheCleanup, kindInt, "", false, func(s *domain.AppSettings) string { return seconds(s.Cache.CleanupInterval) }},
	{KeyRecommendationsTTL, kindInt, "", false, func(s *domain.AppSettings) string { return seconds(s.RecommendationsTTL) }},
	{KeyViewerTimeout, kindInt, "", false, func(s *domain.AppSettings) string { return seconds(s.Viewer.Timeout) }},
	{KeyWebAddr, kindString, "", false, func(s *domain.AppSettings) string { return s.Web.Addr }},
}

func fieldFor(key string) (settingField, bool) {
	for _, f := range settingFields {
		if f.key == key {
			return f, true
		}
	}
	return settingField{}, false
}

// SettingKeys returns every configurable key in display order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingFields))
	for _, f := range settingFields {
		keys = append(keys, f.key)
	}
	return keys
}

// SettingsService maps the flat config store onto AppSettings.
// Environment variables override stored values for connection settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Backend: domain.BackendSettings{
			URL:               strings.TrimRight(s.getString(KeyBackendURL, d.Backend.URL), "/"),
			CSRFToken:         s.getString(KeyBackendCSRFToken, d.Backend.CSRFToken),
			RequestsPerSecond: float64(s.getInt(KeyBackendRateLimit, int(d.Backend.RequestsPerSecond))),
		},
		Meilisearch: domain.MeilisearchSettings{
			URL:    strings.TrimRight(s.getString(KeyMeiliURL, d.Meilisearch.URL), "/"),
			APIKey: s.getString(KeyMeiliAPIKey, d.Meilisearch.APIKey),
			Index:  s.getString(KeyMeiliIndex, d.Meilisearch.Index),
		},
		Search: domain.SearchSettings{
			PageSize:        s.getInt(KeyPageSize, d.Search.PageSize),
			ImagePageSize:   s.getInt(KeyImagePageSize, d.Search.ImagePageSize),
			ExplorePageSize: s.getInt(KeyExplorePageSize, d.Search.ExplorePageSize),
			Sort:            s.getSort(d.Search.Sort),
		},
		Summary: domain.SummarySettings{
			Enabled:   s.getBool(KeySummaryEnabled, d.Summary.Enabled),
			Delay:     s.getDuration(KeySummaryDelay, time.Millisecond, d.Summary.Delay),
			Streaming: s.getBool(KeySummaryStreaming, d.Summary.Streaming),
		},
		Cache: domain.CacheSettings{
			Path:            s.getString(KeyCachePath, d.Cache.Path),
			TTL:             s.getDuration(KeyCacheTTL, time.Millisecond, d.Cache.TTL),
			MaxEntries:      s.getInt(KeyCacheMaxEntries, d.Cache.MaxEntries),
			CleanupInterval: s.getDuration(KeyCacheCleanup, time.Second, d.Cache.CleanupInterval),
		},
		RecommendationsTTL: s.getDuration(KeyRecommendationsTTL, time.Second, d.RecommendationsTTL),
		Viewer: domain.ViewerSettings{
			Timeout: s.getDuration(KeyViewerTimeout, time.Second, d.Viewer.Timeout),
		},
		Web: domain.WebSettings{
			Addr: s.getString(KeyWebAddr, d.Web.Addr),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("%w: nil settings", domain.ErrInvalidInput)
	}
	for _, f := range settingFields {
		if err := s.Set(f.key, f.format(settings)); err != nil {
			return err
		}
	}
	return s.configStore.Save()
}

// Set parses value according to the key's type and stores it.
func (s *SettingsService) Set(key, value string) error {
	f, ok := fieldFor(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch f.kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		parsed = b
	default:
		if key == KeySort && !domain.SortOrder(value).IsValid() {
			return fmt.Errorf("%w: %s must be recent, name or size", domain.ErrInvalidInput, key)
		}
		parsed = value
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Unset removes a stored key so its default applies again. Environment
// overrides are unaffected.
func (s *SettingsService) Unset(key string) error {
	if _, ok := fieldFor(key); !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Values returns every key with its effective value and where it came from.
// Secrets are masked.
func (s *SettingsService) Values() ([]domain.SettingValue, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}
	out := make([]domain.SettingValue, 0, len(settingFields))
	for _, f := range settingFields {
		_, source := s.raw(f)
		value := f.format(settings)
		if f.secret && value != "" {
			value = "********"
		}
		out = append(out, domain.SettingValue{Key: f.key, Value: value, Source: source})
	}
	return out, nil
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if err := validateBaseURL(KeyBackendURL, settings.Backend.URL); err != nil {
		errs = append(errs, err)
	}
	if err := validateBaseURL(KeyMeiliURL, settings.Meilisearch.URL); err != nil {
		errs = append(errs, err)
	}
	if settings.Meilisearch.Index == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", domain.ErrInvalidInput, KeyMeiliIndex))
	}
	if settings.Cache.MaxEntries <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, KeyCacheMaxEntries))
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func validateBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL, got %q", domain.ErrInvalidInput, key, raw)
	}
	return nil
}

// raw returns the override or stored value of a key and its source.
func (s *SettingsService) raw(f settingField) (any, string) {
	if f.env != "" && s.lookupEnv != nil {
		if v, ok := s.lookupEnv(f.env); ok && v != "" {
			return v, "env"
		}
	}
	if v, ok := s.configStore.Get(f.key); ok {
		return v, "config"
	}
	return nil, "default"
}

func (s *SettingsService) lookup(key string) (any, bool) {
	f, ok := fieldFor(key)
	if !ok {
		return nil, false
	}
	v, source := s.raw(f)
	return v, source != "default"
}

func (s *SettingsService) getString(key, defaultVal string) string {
	v, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	str := strings.TrimSpace(fmt.Sprint(v))
	if str == "" {
		return defaultVal
	}
	return str
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	v, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	var n int
	switch val := v.(type) {
	case int:
		n = val
	case int64:
		n = int(val)
	case float64:
		n = int(val)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return defaultVal
		}
		n = parsed
	default:
		return defaultVal
	}
	if n <= 0 {
		return defaultVal
	}
	return n
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	v, ok := s.lookup(key)
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return defaultVal
		}
		return b
	default:
		return defaultVal
	}
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	n := s.getInt(key, -1)
	if n < 0 {
		return defaultVal
	}
	return time.Duration(n) * unit
}

func (s *SettingsService) getSort(defaultVal domain.SortOrder) domain.SortOrder {
	sort := domain.SortOrder(s.getString(KeySort, string(defaultVal)))
	if !sort.IsValid() {
		return defaultVal
	}
	return sort
}
