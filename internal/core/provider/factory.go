package provider

import (
	"fmt"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/util"
)

// Provider source names
const (
	SourcePathList = "pathlist"
	SourceSegments = "segments"
	SourceStatic   = "static"
)

// SourceConfig selects and configures a traffic provider
type SourceConfig struct {
	Source  string
	BaseURL string
	Token   string
	Timeout time.Duration

	// Point-to-point route
	Origin         string
	Destination    string
	PreferredRoute []string

	// Segment-sum route
	RoadIDs    []string
	SegmentIDs []string

	// FixedBaselineMinutes, when positive, overrides the provider's typical time
	FixedBaselineMinutes float64

	StaticSample model.TravelSample

	Now func() time.Time
}

// CreateProvider creates a traffic provider based on configuration
func CreateProvider(cfg *SourceConfig) (TrafficProvider, error) {
	var base TrafficProvider

	switch cfg.Source {
	case SourcePathList, "":
		if cfg.Origin == "" || cfg.Destination == "" {
			return nil, fmt.Errorf("%s provider requires origin and destination", SourcePathList)
		}
		base = NewPathListProvider(cfg)
	case SourceSegments:
		if len(cfg.SegmentIDs) == 0 || len(cfg.RoadIDs) == 0 {
			return nil, fmt.Errorf("%s provider requires road ids and segment ids", SourceSegments)
		}
		base = NewSegmentSumProvider(cfg)
	case SourceStatic:
		base = NewStaticProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown traffic provider: %s", cfg.Source)
	}

	if cfg.Token == "" && cfg.Source != SourceStatic {
		util.LogWarn("No API credential configured; the provider will likely reject requests")
	}

	if cfg.FixedBaselineMinutes > 0 {
		util.LogDebugf("Using fixed baseline of %.1f minutes", cfg.FixedBaselineMinutes)
		return NewFixedBaselineProvider(base, cfg.FixedBaselineMinutes), nil
	}

	util.LogDebug("Created traffic provider", util.F("source", base.GetProviderName()))
	return base, nil
}
