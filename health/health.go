// Package health tracks per-feed fetch failures and decides when a feed
// should be skipped, backed off, or permanently disabled. Transitions are
// pure functions over a Status value; callers persist the result at the
// ingestion-cycle boundary.
package health

import "time"

const (
	// DisableThreshold is the consecutive-failure count at which a feed is
	// permanently disabled. Disabled feeds are never fetched automatically;
	// a manual re-enable is the only way back.
	DisableThreshold = 11

	shortBackoff = 6 * time.Hour
	longBackoff  = 24 * time.Hour
)

// Status holds the failure-tracking fields of one feed. The zero value is a
// healthy feed with no recorded failures.
type Status struct {
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastError           string     `json:"last_error,omitempty"`
	LastFailedAt        *time.Time `json:"last_failed_at,omitempty"`
	DisabledAt          *time.Time `json:"disabled_at,omitempty"`
}

// Disabled reports whether the feed has been permanently disabled.
func (s Status) Disabled() bool {
	return s.DisabledAt != nil
}

// ShouldSkip reports whether a scheduled fetch should be skipped at the
// given time. Up to 3 failures retry immediately; 4-7 failures back off for
// 6 hours after the last failure, 8-10 for 24 hours; anything beyond 10 is
// always skipped.
func (s Status) ShouldSkip(now time.Time) bool {
	failures := s.ConsecutiveFailures

	if failures <= 3 {
		return false
	}

	if failures <= 7 {
		return s.LastFailedAt != nil && s.LastFailedAt.After(now.Add(-shortBackoff))
	}

	if failures <= 10 {
		return s.LastFailedAt != nil && s.LastFailedAt.After(now.Add(-longBackoff))
	}

	return true
}

// RecordFailure returns the status after one more failed fetch. The feed is
// disabled once the failure count reaches DisableThreshold.
func RecordFailure(s Status, errMsg string, now time.Time) Status {
	s.ConsecutiveFailures++
	s.LastError = errMsg
	s.LastFailedAt = &now

	if s.ConsecutiveFailures >= DisableThreshold {
		s.DisabledAt = &now
	} else {
		s.DisabledAt = nil
	}

	return s
}

// RecordSuccess returns a fully recovered status: failure count reset and
// all failure fields cleared, including a previous disablement.
func RecordSuccess(s Status) Status {
	return Status{}
}
