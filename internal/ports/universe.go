package ports

import "context"

// UniverseProvider lists the tradable universe as ticker → display name.
// Implementations: a market-cap-ranked stock listing, or a fixed
// whitelist for the curated ETF mode. The engine only cares about ticker
// identity.
type UniverseProvider interface {
	FetchUniverse(ctx context.Context) (map[string]string, error)
}
