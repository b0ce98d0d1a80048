package app

import "time"

// OutcomeStatus is the per-subject result of a sweep.
type OutcomeStatus string

const (
	OutcomeSent                   OutcomeStatus = "sent"
	OutcomeSkippedNoConfig        OutcomeStatus = "skipped:no-config"
	OutcomeSkippedDisabled        OutcomeStatus = "skipped:disabled"
	OutcomeSkippedChannelNotFound OutcomeStatus = "skipped:channel-not-found"
	OutcomeFailedDispatch         OutcomeStatus = "failed:dispatch-error"
	OutcomeFailedStore            OutcomeStatus = "failed:store-error"
)

func (s OutcomeStatus) Skipped() bool {
	switch s {
	case OutcomeSkippedNoConfig, OutcomeSkippedDisabled, OutcomeSkippedChannelNotFound:
		return true
	}
	return false
}

func (s OutcomeStatus) Failed() bool {
	return s == OutcomeFailedDispatch || s == OutcomeFailedStore
}

// Outcome records what happened to one matching birthday.
type Outcome struct {
	UserID   string
	TargetID string // empty when the guild had no usable target
	Status   OutcomeStatus
	Err      error
}

// SweepResult is owned by whoever requested the sweep.
type SweepResult struct {
	GuildID    string
	Date       time.Time
	Configured bool  // a config existed when the sweep ran
	Err        error // set when matching records could not be listed
	Outcomes   []Outcome

	Sent    int
	Skipped int
	Failed  int
}

func (r *SweepResult) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.count(o.Status)
}

func (r *SweepResult) count(s OutcomeStatus) {
	switch {
	case s == OutcomeSent:
		r.Sent++
	case s.Skipped():
		r.Skipped++
	case s.Failed():
		r.Failed++
	}
}

// NothingDue reports a configured guild with no birthday today.
func (r *SweepResult) NothingDue() bool {
	return r.Err == nil && r.Configured && len(r.Outcomes) == 0
}

// SweepTotals sums the counters of several results.
func SweepTotals(results []*SweepResult) (sent, skipped, failed int) {
	for _, r := range results {
		if r == nil {
			continue
		}
		sent += r.Sent
		skipped += r.Skipped
		failed += r.Failed
	}
	return sent, skipped, failed
}
