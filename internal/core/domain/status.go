package domain

// MeilisearchStatus is the backend's report on the index engine.
type MeilisearchStatus struct {
	Running       bool           `json:"running"`
	Version       string         `json:"version,omitempty"`
	DocumentCount int            `json:"document_count,omitempty"`
	Host          string         `json:"host,omitempty"`
	Port          int            `json:"port,omitempty"`
	Stats         map[string]any `json:"stats,omitempty"`
}

// VaultStatus is the backend's report on the PIN-protected vault.
type VaultStatus struct {
	// PINSet is true once a vault PIN has been configured.
	PINSet bool `json:"pin_set"`
}

// PINLength is the number of digits in a vault PIN.
const PINLength = 4

// ValidPIN reports whether pin is exactly four ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// CheckResult is one subsystem check. Error is set when the check failed.
type CheckResult[T any] struct {
	Value T      `json:"value" yaml:"value"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the check succeeded.
func (p CheckResult[T]) OK() bool {
	return p.Error == ""
}

// SystemStatus is a snapshot of every backend subsystem.
type SystemStatus struct {
	Backend     string                         `json:"backend" yaml:"backend"`
	LLM         CheckResult[LLMStatus]         `json:"llm" yaml:"llm"`
	Meilisearch CheckResult[MeilisearchStatus] `json:"meilisearch" yaml:"meilisearch"`
	Vault       CheckResult[VaultStatus]       `json:"vault" yaml:"vault"`
}
