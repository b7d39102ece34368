package provider

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/penwyp/go-commute-monitor/internal/util"
)

const DefaultPathListURL = "http://services.my511.org/traffic/getpathlist.aspx"

// PathListProvider queries a point-to-point endpoint that returns candidate
// paths between two location ids, each with its roads, current and typical
// travel time in minutes and active incidents.
type PathListProvider struct {
	fetcher        httpFetcher
	baseURL        string
	token          string
	origin         string
	destination    string
	preferredRoute []string
}

// pathList is the typed shape of the point-to-point payload
type pathList struct {
	XMLName xml.Name
	Message string     `xml:",chardata"`
	Paths   []pathNode `xml:"path"`
}

type pathNode struct {
	CurrentTravelTime *string `xml:"currentTravelTime"`
	TypicalTravelTime *string `xml:"typicalTravelTime"`
	Miles             string  `xml:"miles"`
	Segments          *struct {
		Segment []struct {
			Road *string `xml:"road"`
		} `xml:"segment"`
	} `xml:"segments"`
	Incidents []string `xml:"incidents>incident"`
}

func NewPathListProvider(cfg *SourceConfig) *PathListProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultPathListURL
	}
	return &PathListProvider{
		fetcher:        newHTTPFetcher(cfg.Timeout, cfg.Now),
		baseURL:        baseURL,
		token:          cfg.Token,
		origin:         cfg.Origin,
		destination:    cfg.Destination,
		preferredRoute: cfg.PreferredRoute,
	}
}

func (p *PathListProvider) GetProviderName() string {
	return SourcePathList
}

func (p *PathListProvider) Fetch(ctx context.Context) (model.TravelSample, error) {
	body, err := p.fetcher.get(ctx, p.requestURL())
	if err != nil {
		return model.TravelSample{}, err
	}
	fetchedAt := p.fetcher.now()

	candidates, err := ParsePathList(body)
	if err != nil {
		return model.TravelSample{}, err
	}
	if len(candidates) > 1 {
		util.LogDebugf("Received %d possible paths", len(candidates))
	}

	sel, err := traffic.SelectRoute(candidates, p.preferredRoute)
	if err != nil {
		return model.TravelSample{}, err
	}
	if sel.Warning != nil {
		util.LogWarn("Route selection fell back to first candidate",
			util.F("reason", sel.Warning.Message), util.F("candidates", len(candidates)))
	}

	chosen := candidates[sel.Index]
	util.LogDebug("Selected route", util.F("roads", joinRoads(chosen.Roads)), util.F("index", sel.Index))
	return model.TravelSample{
		CurrentMinutes:  chosen.CurrentMinutes,
		BaselineMinutes: chosen.TypicalMinutes,
		IncidentPresent: len(chosen.Incidents) > 0,
		Incidents:       chosen.Incidents,
		Roads:           chosen.Roads,
		FetchedAt:       fetchedAt,
	}, nil
}

func (p *PathListProvider) requestURL() string {
	q := url.Values{}
	q.Set("token", p.token)
	q.Set("o", p.origin)
	q.Set("d", p.destination)
	return p.baseURL + "?" + q.Encode()
}

// ParsePathList decodes a point-to-point payload into route candidates.
// Any missing required element fails the whole payload.
func ParsePathList(body []byte) ([]model.RouteCandidate, error) {
	var doc pathList
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&doc); err != nil {
		if bytes.Contains(body, []byte("Error")) {
			return nil, traffic.ProviderFailure(firstLine(body))
		}
		return nil, traffic.Malformed("failed to parse path list", err)
	}

	if doc.XMLName.Local != "paths" {
		if strings.Contains(strings.ToLower(doc.XMLName.Local), "err") {
			return nil, traffic.ProviderFailure(strings.TrimSpace(doc.Message))
		}
		return nil, traffic.Malformed(fmt.Sprintf("unexpected root element <%s>", doc.XMLName.Local), nil)
	}

	candidates := make([]model.RouteCandidate, 0, len(doc.Paths))
	for i, path := range doc.Paths {
		candidate, err := path.toCandidate()
		if err != nil {
			return nil, traffic.Malformed(fmt.Sprintf("path %d", i), err)
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (n pathNode) toCandidate() (model.RouteCandidate, error) {
	current, err := requiredMinutes("currentTravelTime", n.CurrentTravelTime)
	if err != nil {
		return model.RouteCandidate{}, err
	}
	typical, err := requiredMinutes("typicalTravelTime", n.TypicalTravelTime)
	if err != nil {
		return model.RouteCandidate{}, err
	}
	if n.Segments == nil {
		return model.RouteCandidate{}, fmt.Errorf("missing <segments>")
	}

	roads := make([]string, 0, len(n.Segments.Segment))
	for i, seg := range n.Segments.Segment {
		if seg.Road == nil {
			return model.RouteCandidate{}, fmt.Errorf("segment %d missing <road>", i)
		}
		roads = append(roads, strings.TrimSpace(*seg.Road))
	}

	incidents := make([]string, 0, len(n.Incidents))
	for _, incident := range n.Incidents {
		if text := strings.TrimSpace(incident); text != "" {
			incidents = append(incidents, text)
		}
	}

	miles, _ := strconv.ParseFloat(strings.TrimSpace(n.Miles), 64)

	return model.RouteCandidate{
		Roads:          roads,
		CurrentMinutes: current,
		TypicalMinutes: typical,
		Miles:          miles,
		Incidents:      incidents,
	}, nil
}

func requiredMinutes(name string, raw *string) (float64, error) {
	if raw == nil {
		return 0, fmt.Errorf("missing <%s>", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid <%s> %q: %w", name, *raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite <%s> %q", name, *raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative <%s> %v", name, v)
	}
	return v, nil
}

func firstLine(body []byte) string {
	text := strings.TrimSpace(string(body))
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
