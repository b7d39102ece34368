package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/penwyp/go-commute-monitor/internal/util"
)

// TrafficProvider fetches one normalized travel sample for the configured route
type TrafficProvider interface {
	// Fetch returns a sample or an error classified by traffic.ClassifyError
	Fetch(ctx context.Context) (model.TravelSample, error)

	// GetProviderName returns the name of this traffic provider
	GetProviderName() string
}

// maxBodyBytes bounds a provider response; the segment feed is ~600 kB
const maxBodyBytes = 8 << 20

// httpFetcher performs bounded GET requests and maps failures onto the taxonomy
type httpFetcher struct {
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
}

func newHTTPFetcher(timeout time.Duration, now func() time.Time) httpFetcher {
	if now == nil {
		now = time.Now
	}
	return httpFetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		now:     now,
	}
}

// get returns the response body. Connection failures and timeouts are
// KindUnreachable, non-2xx responses are KindBadStatus.
func (f httpFetcher) get(ctx context.Context, endpoint string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	util.LogDebug("Requesting traffic data", util.F("url", redactURL(endpoint)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, traffic.Malformed("failed to create request", redactURLError(err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, traffic.Unreachable(redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, traffic.BadStatus(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, traffic.Unreachable(fmt.Errorf("failed to read response body: %w", err))
	}
	return body, nil
}

// credentialParams are query parameters that carry the API credential
var credentialParams = []string{"token", "api_key"}

// redactURL hides credentials so request URLs can be logged
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	for _, key := range credentialParams {
		if q.Has(key) {
			q.Set(key, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// redactURLError strips credentials from the URL a *url.Error prints
func redactURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = redactURL(urlErr.URL)
	}
	return err
}

func joinRoads(roads []string) string {
	return strings.Join(roads, " -> ")
}
