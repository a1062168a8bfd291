// Package adapters declares the uniform shape every provider integration
// presents to the scheduler (§4.2), and holds the shared HTTP plumbing the
// plain-http adapters build on.
package adapters

import (
	"context"

	"github.com/oddsforge/arbiter/internal/models"
)

// Adapter is the uniform interface every provider integration implements,
// regardless of which of the three wire shapes (flat platform, structured,
// compressed-overview) or which transport (plain HTTP or browser-driven) its
// upstream actually uses (§4.2).
type Adapter interface {
	BaseURL() string
	SupportedSports() []models.SportID
	Scrape(ctx context.Context) ([]models.RawMatch, error)
}
