package ports

import (
	"context"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

// Reporter presents a finished run to the user.
type Reporter interface {
	Report(ctx context.Context, result *domain.SimulationResult) error
}
