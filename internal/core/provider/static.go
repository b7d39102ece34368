package provider

import (
	"context"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// StaticProvider always reports the same travel times. It drives the
// displays on a bench without network access.
type StaticProvider struct {
	sample model.TravelSample
	now    func() time.Time
}

func NewStaticProvider(cfg *SourceConfig) *StaticProvider {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &StaticProvider{sample: cfg.StaticSample, now: now}
}

func (p *StaticProvider) GetProviderName() string {
	return SourceStatic
}

func (p *StaticProvider) Fetch(ctx context.Context) (model.TravelSample, error) {
	if err := ctx.Err(); err != nil {
		return model.TravelSample{}, err
	}
	sample := p.sample
	sample.FetchedAt = p.now()
	return sample, nil
}
