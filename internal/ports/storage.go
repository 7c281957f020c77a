package ports

import (
	"context"

	"github.com/jinhyuklee/leadstock/internal/domain"
)

// ResultStore persists finished simulations.
type ResultStore interface {
	// SaveSimulation stores the result with its serialized parameters.
	SaveSimulation(ctx context.Context, result *domain.SimulationResult, paramsJSON string) error

	// ListSimulations returns stored run headers, newest first.
	ListSimulations(ctx context.Context) ([]domain.SimulationMeta, error)
}
