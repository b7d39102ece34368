package provider

import (
	"context"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// FixedBaselineProvider replaces the provider's typical travel time with a
// configured constant, e.g. the free-flow time measured in the middle of the night.
type FixedBaselineProvider struct {
	provider        TrafficProvider
	baselineMinutes float64
}

func NewFixedBaselineProvider(provider TrafficProvider, baselineMinutes float64) *FixedBaselineProvider {
	return &FixedBaselineProvider{provider: provider, baselineMinutes: baselineMinutes}
}

func (p *FixedBaselineProvider) GetProviderName() string {
	return p.provider.GetProviderName() + "+fixed-baseline"
}

func (p *FixedBaselineProvider) Fetch(ctx context.Context) (model.TravelSample, error) {
	sample, err := p.provider.Fetch(ctx)
	if err != nil {
		return model.TravelSample{}, err
	}
	sample.BaselineMinutes = p.baselineMinutes
	return sample, nil
}
