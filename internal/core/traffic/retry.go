package traffic

// RetryState counts consecutive failed ticks within one run of the loop
type RetryState struct {
	ConsecutiveFailures int
	MaxRetries          int
}

func NewRetryState(maxRetries int) RetryState {
	return RetryState{MaxRetries: maxRetries}
}

// RecordFailure counts one failed tick and reports whether retries are exhausted
func (r *RetryState) RecordFailure() bool {
	r.ConsecutiveFailures++
	return r.Exhausted()
}

// Reset clears the counter after a fully successful tick
func (r *RetryState) Reset() {
	r.ConsecutiveFailures = 0
}

func (r RetryState) Exhausted() bool {
	return r.ConsecutiveFailures >= r.MaxRetries
}
