package provider

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/penwyp/go-commute-monitor/internal/util"
)

const DefaultSegmentsURL = "http://api.511.org/traffic/traffic_segments"

// utf8BOM prefixes some JSON feeds and must be stripped before decoding
var utf8BOM = []byte("\xef\xbb\xbf")

// SegmentSumProvider requests every segment on a set of roads and sums the
// current and historical travel times of the configured segment ids.
// The feed carries no incident data, so IncidentPresent is always false.
type SegmentSumProvider struct {
	fetcher    httpFetcher
	baseURL    string
	token      string
	roadIDs    []string
	segmentIDs []string
}

type segmentFeed struct {
	Message  string        `json:"Message"`
	Segments []segmentNode `json:"traffic_segments"`
}

type segmentNode struct {
	ID                   string        `json:"id"`
	CurrentTravelTime    *travelSeconds `json:"current_travel_time"`
	HistoricalTravelTime *travelSeconds `json:"historical_travel_time"`
	Roads                []segmentRoad `json:"roads"`
}

type segmentRoad struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// travelSeconds accepts a travel time encoded as a number or a numeric string
type travelSeconds float64

func (s *travelSeconds) UnmarshalJSON(data []byte) error {
	var n float64
	if err := sonic.Unmarshal(data, &n); err != nil {
		var str string
		if err := sonic.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("travel time must be a number or numeric string")
		}
		n, err = strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("invalid travel time %q: %w", str, err)
		}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("travel time is not finite: %v", n)
	}
	*s = travelSeconds(n)
	return nil
}

func NewSegmentSumProvider(cfg *SourceConfig) *SegmentSumProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSegmentsURL
	}
	return &SegmentSumProvider{
		fetcher:    newHTTPFetcher(cfg.Timeout, cfg.Now),
		baseURL:    baseURL,
		token:      cfg.Token,
		roadIDs:    cfg.RoadIDs,
		segmentIDs: cfg.SegmentIDs,
	}
}

func (p *SegmentSumProvider) GetProviderName() string {
	return SourceSegments
}

func (p *SegmentSumProvider) Fetch(ctx context.Context) (model.TravelSample, error) {
	body, err := p.fetcher.get(ctx, p.requestURL())
	if err != nil {
		return model.TravelSample{}, err
	}
	fetchedAt := p.fetcher.now()

	segments, err := parseSegmentFeed(body)
	if err != nil {
		return model.TravelSample{}, err
	}

	sample, matched, err := sumSegments(segments, p.segmentIDs)
	if err != nil {
		return model.TravelSample{}, err
	}
	if matched < len(p.segmentIDs) {
		util.LogWarn("Some configured segments were not reported",
			util.F("matched", matched), util.F("configured", len(p.segmentIDs)))
	}
	util.LogDebug("Summed traffic segments", util.F("matched", matched), util.F("roads", joinRoads(sample.Roads)))

	sample.FetchedAt = fetchedAt
	return sample, nil
}

func (p *SegmentSumProvider) requestURL() string {
	q := url.Values{}
	q.Set("api_key", p.token)
	q.Set("road", strings.Join(p.roadIDs, ","))
	q.Set("limit", "10000")
	q.Set("format", "json")
	return p.baseURL + "?" + q.Encode()
}

// parseSegmentFeed decodes a segment feed. A body that carries an error
// message instead of segments is KindProviderError.
func parseSegmentFeed(body []byte) ([]segmentNode, error) {
	body = bytes.TrimPrefix(body, utf8BOM)

	var feed segmentFeed
	if err := sonic.Unmarshal(body, &feed); err != nil {
		if bytes.Contains(body, []byte("Error")) {
			return nil, traffic.ProviderFailure(firstLine(body))
		}
		return nil, traffic.Malformed("failed to parse segment feed", err)
	}
	if feed.Segments == nil {
		if feed.Message != "" {
			return nil, traffic.ProviderFailure(feed.Message)
		}
		return nil, traffic.Malformed("missing traffic_segments", nil)
	}

	for i, seg := range feed.Segments {
		if seg.ID == "" {
			return nil, traffic.Malformed(fmt.Sprintf("segment %d missing id", i), nil)
		}
		if seg.CurrentTravelTime == nil || seg.HistoricalTravelTime == nil {
			return nil, traffic.Malformed(fmt.Sprintf("segment %s missing travel times", seg.ID), nil)
		}
	}
	return feed.Segments, nil
}

// sumSegments adds up the travel times, in seconds, of the wanted segment ids
// and converts them to minutes. No matching segment is KindNoRouteFound.
func sumSegments(segments []segmentNode, wanted []string) (model.TravelSample, int, error) {
	index := make(map[string]segmentNode, len(segments))
	for _, seg := range segments {
		index[seg.ID] = seg
	}

	var current, historical float64
	var roads []string
	matched := 0
	for _, id := range wanted {
		seg, ok := index[id]
		if !ok {
			continue
		}
		matched++
		current += float64(*seg.CurrentTravelTime)
		historical += float64(*seg.HistoricalTravelTime)
		for _, road := range seg.Roads {
			if len(roads) == 0 || roads[len(roads)-1] != road.Name {
				roads = append(roads, road.Name)
			}
		}
	}

	if matched == 0 {
		return model.TravelSample{}, 0, traffic.NoRouteFound(fmt.Sprintf("none of %d configured segments reported", len(wanted)))
	}

	return model.TravelSample{
		CurrentMinutes:  current / 60,
		BaselineMinutes: historical / 60,
		Roads:           roads,
	}, matched, nil
}

// SegmentMatch is a feed segment whose roads match a searched road sequence
type SegmentMatch struct {
	ID   string
	Road string
	From string
	To   string
}

// FindSegments fetches the feed for the configured road ids and returns the
// number of segments reported plus those whose road names equal roads, in
// feed order. The ids it returns are the values --segment-ids expects.
func (p *SegmentSumProvider) FindSegments(ctx context.Context, roads []string) (int, []SegmentMatch, error) {
	body, err := p.fetcher.get(ctx, p.requestURL())
	if err != nil {
		return 0, nil, err
	}
	segments, err := parseSegmentFeed(body)
	if err != nil {
		return 0, nil, err
	}
	return len(segments), matchSegments(segments, roads), nil
}

func matchSegments(segments []segmentNode, roads []string) []SegmentMatch {
	var matches []SegmentMatch
	for _, seg := range segments {
		if len(seg.Roads) != len(roads) || len(roads) == 0 {
			continue
		}
		same := true
		for i, road := range seg.Roads {
			if road.Name != roads[i] {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		last := seg.Roads[len(seg.Roads)-1]
		matches = append(matches, SegmentMatch{ID: seg.ID, Road: last.Name, From: last.From, To: last.To})
	}
	return matches
}
