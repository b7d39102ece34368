package commute

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-commute-monitor/internal/core/history"
	"github.com/penwyp/go-commute-monitor/internal/core/model"
	"github.com/penwyp/go-commute-monitor/internal/core/provider"
	"github.com/penwyp/go-commute-monitor/internal/core/traffic"
	"github.com/penwyp/go-commute-monitor/internal/data/commutelog"
	"github.com/penwyp/go-commute-monitor/internal/presentation/display"
	"github.com/penwyp/go-commute-monitor/internal/util"
)

// State is the polling loop's lifecycle state
type State int

const (
	StateStarting State = iota
	StateRunning
	StateRetrying
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateRetrying:
		return "RETRYING"
	case StateFailed:
		return "FAILED"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// LogSink receives one record per successful tick
type LogSink interface {
	Append(r commutelog.Record) error
	Close() error
}

// Dependencies are the collaborators owned by one Loop
type Dependencies struct {
	Provider provider.TrafficProvider
	Numeric  display.NumericDisplay
	Matrix   display.MatrixDisplay
	Clock    util.Clock
	// Log is optional
	Log LogSink
	// TuningUpdates is optional; received settings apply from the next tick
	TuningUpdates <-chan Tuning
}

// Loop is the commute clock's control loop. It owns the displays, the
// history buffer and the log; nothing else may touch them while Run is
// executing.
type Loop struct {
	config   *ClockConfig
	provider provider.TrafficProvider
	numeric  display.NumericDisplay
	matrix   display.MatrixDisplay
	clock    util.Clock
	log      LogSink
	updates  <-chan Tuning

	tuning        Tuning
	state         State
	transitions   []State
	retry         traffic.RetryState
	history       *history.Buffer
	matrixCounter int
	lastSample    *model.TravelSample
}

// NewLoop validates the config and wires the collaborators
func NewLoop(config *ClockConfig, deps Dependencies) (*Loop, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if deps.Provider == nil || deps.Numeric == nil || deps.Matrix == nil || deps.Clock == nil {
		return nil, fmt.Errorf("loop requires a provider, both displays and a clock")
	}
	return &Loop{
		config:   config,
		provider: deps.Provider,
		numeric:  deps.Numeric,
		matrix:   deps.Matrix,
		clock:    deps.Clock,
		log:      deps.Log,
		updates:  deps.TuningUpdates,
		tuning:   config.Tuning,
		history:  history.NewBuffer(),
	}, nil
}

// State returns the current state
func (l *Loop) State() State {
	return l.state
}

// Transitions returns every state entered, in order
func (l *Loop) Transitions() []State {
	out := make([]State, len(l.transitions))
	copy(out, l.transitions)
	return out
}

// LastSample returns the most recent accepted sample
func (l *Loop) LastSample() (model.TravelSample, bool) {
	if l.lastSample == nil {
		return model.TravelSample{}, false
	}
	return *l.lastSample, true
}

// History returns the matrix history buffer
func (l *Loop) History() *history.Buffer {
	return l.history
}

// Run drives the loop until ctx is cancelled or retries are exhausted.
// Cancellation returns nil. Exhausted retries return an error wrapping
// ErrRetriesExhausted after the error glyph is shown. Any error outside
// the fetch error taxonomy also stops the loop and is returned as is.
func (l *Loop) Run(ctx context.Context) error {
	util.LogInfo("Starting commute monitor", util.F("provider", l.provider.GetProviderName()))

	failed := false
	defer func() { l.stop(failed) }()

	l.setState(StateStarting)
	if err := l.start(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("startup failed: %w", err)
	}
	l.setState(StateRunning)

	for {
		if ctx.Err() != nil {
			util.LogInfo("Stop requested")
			return nil
		}
		l.applyTuning()

		sample, err := l.fetch(ctx)
		if ctx.Err() != nil {
			util.LogInfo("Stop requested")
			return nil
		}

		if err == nil {
			l.accept(sample)
			if err := l.sleepUntilNextTick(ctx); err != nil {
				util.LogInfo("Stop requested")
				return nil
			}
			continue
		}

		fetchErr, ok := traffic.ClassifyError(err)
		if !ok {
			failed = true
			l.fail()
			return fmt.Errorf("unexpected error from %s: %w", l.provider.GetProviderName(), err)
		}

		if !fetchErr.CountsAsFailure() {
			util.LogWarn("Tick skipped", util.F("reason", fetchErr.Error()))
			if err := l.sleepUntilNextTick(ctx); err != nil {
				util.LogInfo("Stop requested")
				return nil
			}
			continue
		}

		exhausted := l.retry.RecordFailure()
		util.LogWarn("Traffic fetch failed",
			util.F("kind", fetchErr.Kind.String()),
			util.F("error", fetchErr.Error()),
			util.F("consecutive_failures", l.retry.ConsecutiveFailures),
			util.F("max_retries", l.retry.MaxRetries))

		if exhausted {
			failed = true
			l.fail()
			return fmt.Errorf("%w after %d consecutive failures: %v", ErrRetriesExhausted, l.retry.ConsecutiveFailures, fetchErr)
		}

		l.setState(StateRetrying)
		if err := l.clock.Sleep(ctx, l.config.RetryBackoff); err != nil {
			util.LogInfo("Stop requested")
			return nil
		}
	}
}

func (l *Loop) start(ctx context.Context) error {
	if err := l.numeric.Begin(); err != nil {
		return fmt.Errorf("numeric display: %w", err)
	}
	if err := l.matrix.Begin(); err != nil {
		return fmt.Errorf("matrix display: %w", err)
	}
	if err := l.numeric.Clear(); err != nil {
		return fmt.Errorf("numeric display: %w", err)
	}
	if err := l.matrix.Clear(); err != nil {
		return fmt.Errorf("matrix display: %w", err)
	}
	if err := l.numeric.SetSeparator(true); err != nil {
		return fmt.Errorf("numeric display: %w", err)
	}
	if l.config.Splash {
		if err := display.Splash(ctx, l.matrix, l.clock); err != nil {
			return fmt.Errorf("splash: %w", err)
		}
	}

	l.retry = traffic.NewRetryState(l.config.MaxRetries)
	l.matrixCounter = 0
	l.history.Clear()
	return nil
}

// fetch blanks the separator while the request is in flight
func (l *Loop) fetch(ctx context.Context) (model.TravelSample, error) {
	l.warnOnDisplayError(l.numeric.SetSeparator(false))
	defer func() { l.warnOnDisplayError(l.numeric.SetSeparator(true)) }()

	fetchCtx, cancel := context.WithTimeout(ctx, l.config.FetchTimeout)
	defer cancel()

	sample, err := l.provider.Fetch(fetchCtx)
	if err != nil {
		return model.TravelSample{}, err
	}
	if err := sample.Validate(); err != nil {
		return model.TravelSample{}, traffic.Malformed("provider returned an invalid sample", err)
	}
	if sample.FetchedAt.IsZero() {
		sample.FetchedAt = l.clock.Now()
	}
	return sample, nil
}

// accept applies one successful sample: numeric display, log, then history
func (l *Loop) accept(sample model.TravelSample) {
	if l.state == StateRetrying {
		util.LogInfo("Traffic fetch recovered", util.F("after_failures", l.retry.ConsecutiveFailures))
	}
	l.retry.Reset()
	l.setState(StateRunning)

	now := l.clock.Now()
	eta := traffic.EstimateArrival(now, sample.CurrentMinutes, l.tuning.ExtraMinutes)
	level := traffic.Classify(sample, l.tuning.Thresholds)

	util.LogInfo("Travel time",
		util.F("route", strings.Join(sample.Roads, " > ")),
		util.F("current_minutes", sample.CurrentMinutes),
		util.F("baseline_minutes", sample.BaselineMinutes),
		util.F("delay_minutes", sample.Delay()),
		util.F("level", level.String()),
		util.F("eta", eta.Format("15:04")))
	for _, incident := range sample.Incidents {
		util.LogInfo("Traffic incident", util.F("incident", incident))
	}

	l.warnOnDisplayError(l.numeric.Show(traffic.FormatNumeric(eta)))

	if l.log != nil {
		record := commutelog.Record{
			Timestamp:       sample.FetchedAt,
			CurrentMinutes:  sample.CurrentMinutes,
			BaselineMinutes: sample.BaselineMinutes,
		}
		if err := l.log.Append(record); err != nil {
			util.LogWarn("Failed to append commute log", util.F("error", err.Error()))
		}
	}

	if l.matrixCounter == 0 {
		column := history.EncodeColumn(sample, l.tuning.BarScale)
		l.history.Push(column)
		util.LogDebug("History column pushed", util.F("column", column.String()))
		l.warnOnDisplayError(display.DrawFrame(l.matrix, l.history.Frame()))
	}
	l.matrixCounter = (l.matrixCounter + 1) % l.config.MatrixUpdateInterval

	l.lastSample = &sample
}

// sleepUntilNextTick sleeps until the next minute aligned wake time. The
// wake time is fixed before sleeping; the sleep itself is a monotonic timer.
func (l *Loop) sleepUntilNextTick(ctx context.Context) error {
	now := l.clock.Now()
	wake := util.NextAlignedTick(now, l.config.SampleInterval)
	d := wake.Sub(now)
	util.LogDebug("Sleeping until next tick", util.F("wake", wake.Format(time.RFC3339)))
	return l.clock.Sleep(ctx, d)
}

// fail shows the error glyph and leaves the numeric display as it was
func (l *Loop) fail() {
	l.setState(StateFailed)
	util.LogError("Giving up on traffic updates",
		util.F("consecutive_failures", l.retry.ConsecutiveFailures))
	l.warnOnDisplayError(display.DrawFrame(l.matrix, history.ErrorFrame()))
}

// stop releases the displays and the log. After a failure the displays
// keep the error glyph and the last estimate; otherwise they are blanked.
func (l *Loop) stop(failed bool) {
	l.setState(StateStopped)
	if !failed {
		l.warnOnDisplayError(l.numeric.Clear())
		l.warnOnDisplayError(l.matrix.Clear())
	}
	if l.log != nil {
		if err := l.log.Close(); err != nil {
			util.LogWarn("Failed to close commute log", util.F("error", err.Error()))
		}
	}
	l.warnOnDisplayError(l.numeric.Close())
	l.warnOnDisplayError(l.matrix.Close())
	util.LogInfo("Commute monitor stopped")
}

func (l *Loop) applyTuning() {
	if l.updates == nil {
		return
	}
	select {
	case t := <-l.updates:
		l.tuning = t
		util.LogInfo("Applied new display settings",
			util.F("extra_minutes", t.ExtraMinutes),
			util.F("pixel_minutes", t.BarScale.PixelMinutes))
	default:
	}
}

func (l *Loop) setState(s State) {
	if l.state == s && len(l.transitions) > 0 {
		return
	}
	if len(l.transitions) > 0 {
		util.LogDebug("State change", util.F("from", l.state.String()), util.F("to", s.String()))
	}
	l.state = s
	l.transitions = append(l.transitions, s)
}

func (l *Loop) warnOnDisplayError(err error) {
	if err != nil {
		util.LogWarn("Display update failed", util.F("error", err.Error()))
	}
}
