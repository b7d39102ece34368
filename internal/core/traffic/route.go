package traffic

import (
	"github.com/penwyp/go-commute-monitor/internal/core/model"
)

// Selection is the outcome of choosing one route among provider candidates
type Selection struct {
	Index int
	// Warning is set when the preferred route was absent and the first
	// candidate was used instead. It is an observation, not a failure.
	Warning *FetchError
}

// SelectRoute picks the first candidate whose road sequence equals preferred.
// Without a preferred route, or when none matches, the first candidate is
// used. An empty candidate set is KindNoRouteFound; a sample is never invented.
func SelectRoute(candidates []model.RouteCandidate, preferred []string) (Selection, error) {
	if len(candidates) == 0 {
		return Selection{}, NoRouteFound("provider returned no candidate routes")
	}

	if len(preferred) > 0 {
		for i, c := range candidates {
			if sameRoads(c.Roads, preferred) {
				return Selection{Index: i}, nil
			}
		}
		return Selection{Index: 0, Warning: RouteMismatch(preferred)}, nil
	}

	if len(candidates) > 1 {
		return Selection{Index: 0, Warning: &FetchError{
			Kind:    KindRouteMismatch,
			Message: "no preferred route configured, using first of several candidates",
		}}, nil
	}
	return Selection{Index: 0}, nil
}

func sameRoads(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
