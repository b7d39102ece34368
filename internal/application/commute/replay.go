package commute

import (
	"github.com/penwyp/go-commute-monitor/internal/core/history"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/data/commutelog"
)

// ReplayHistory rebuilds the matrix history from logged ticks with the same
// update gating the loop uses. The log does not record incidents, so the
// incident row stays clear.
func ReplayHistory(records []commutelog.Record, scale history.BarScale, interval int) *history.Buffer {
	if interval < 1 {
		interval = 1
	}
	buf := history.NewBuffer()
	for i, r := range records {
		if i%interval != 0 {
			continue
		}
		sample := model.TravelSample{
			CurrentMinutes:  r.CurrentMinutes,
			BaselineMinutes: r.BaselineMinutes,
			FetchedAt:       r.Timestamp,
		}
		buf.Push(history.EncodeColumn(sample, scale))
	}
	return buf
}
