package driving

import (
	"context"

	"github.com/searchbox/searchbox-cli/internal/core/domain"
)

// StatusService reports the health of the backend subsystems.
type StatusService interface {
	// Status checks the LLM, the index engine and the vault. A failed check
	// is reported in the snapshot rather than returned.
	Status(ctx context.Context) domain.SystemStatus
}
