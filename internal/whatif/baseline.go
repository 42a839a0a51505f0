package whatif

import (
	"context"

	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// Source tags which data source produced a baseline snapshot. A fallback
// source must be visibly flagged to the user as non-authoritative; it is
// never presented as if it were live.
type Source string

const (
	SourceLive      Source = "live"
	SourceReference Source = "reference"
)

// BaselineProvider supplies the reference operational metrics a scenario
// is compared against. The snapshot is supplied fresh for each simulation
// run and never mutated.
type BaselineProvider interface {
	Current(ctx context.Context) (models.BaselineMetrics, Source, error)
}

// ReferenceBaseline is the fixed reference snapshot used when no live
// fleet-data source is wired in. Real deployments replace it with a query
// against live fleet state; the eight-field shape must be preserved
// exactly, because the impact transform is defined in terms of these
// fields.
func ReferenceBaseline() models.BaselineMetrics {
	return models.BaselineMetrics{
		InService:          18,
		Maintenance:        3,
		Standby:            4,
		TotalShunting:      25,
		EnergyConsumption:  4500,
		OperationalCost:    150000,
		Punctuality:        99.5,
		BrandingCompliance: 92,
	}
}

// StaticProvider always serves the fixed reference snapshot.
type StaticProvider struct{}

func (StaticProvider) Current(context.Context) (models.BaselineMetrics, Source, error) {
	return ReferenceBaseline(), SourceReference, nil
}

// LiveBaselineFunc is the shape of a live fleet-state query.
type LiveBaselineFunc func(ctx context.Context) (models.BaselineMetrics, error)

// FallbackProvider tries the live query first and substitutes the
// reference snapshot when the upstream is unavailable. The choice is made
// here, explicitly, and reported through the Source tag rather than
// through exception-style control flow.
type FallbackProvider struct {
	Live LiveBaselineFunc
}

func (p *FallbackProvider) Current(ctx context.Context) (models.BaselineMetrics, Source, error) {
	if p.Live != nil {
		if m, err := p.Live(ctx); err == nil {
			return m, SourceLive, nil
		}
	}
	return ReferenceBaseline(), SourceReference, nil
}
