package models

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// TokenStatus is the promotional lifecycle state of a token.
type TokenStatus string

const (
	StatusNotStarted TokenStatus = "NOT_STARTED"
	StatusValid      TokenStatus = "VALID"
	StatusCancelled  TokenStatus = "CANCELLED"
	StatusEnded      TokenStatus = "ENDED"
)

// StartOfTime anchors the first transition of every schedule.
var StartOfTime = time.Unix(0, 0).UTC()

// StatusTransition is one (timestamp, status) point of a schedule.
type StatusTransition struct {
	At     time.Time   `json:"at"`
	Status TokenStatus `json:"status"`
}

// StatusSchedule is a time-ordered sequence of status transitions. The
// active status at time T is the status of the last transition at or before
// T. Schedules are immutable once constructed.
//
// A schedule containing only the initial NOT_STARTED entry models a token
// with no promotional window: such a token is always eligible on the status
// axis and IsTrivial reports true.
type StatusSchedule struct {
	transitions []StatusTransition
}

// Legal successor statuses for schedule construction.
var statusSuccessors = map[TokenStatus][]TokenStatus{
	StatusNotStarted: {StatusValid, StatusCancelled},
	StatusValid:      {StatusEnded, StatusCancelled},
	StatusCancelled:  {},
	StatusEnded:      {},
}

// NewStatusSchedule validates and constructs a schedule. The first
// transition must be NOT_STARTED at StartOfTime; timestamps must be strictly
// ascending and each status must be a legal successor of the previous one.
func NewStatusSchedule(transitions ...StatusTransition) (StatusSchedule, error) {
	if len(transitions) == 0 {
		return StatusSchedule{}, fmt.Errorf("schedule must have at least one transition")
	}
	first := transitions[0]
	if !first.At.Equal(StartOfTime) || first.Status != StatusNotStarted {
		return StatusSchedule{}, fmt.Errorf(
			"schedule must start with %s at start of time, got %s at %s",
			StatusNotStarted, first.Status, first.At)
	}
	for i := 1; i < len(transitions); i++ {
		prev, cur := transitions[i-1], transitions[i]
		if !cur.At.After(prev.At) {
			return StatusSchedule{}, fmt.Errorf(
				"schedule timestamps must be strictly ascending at index %d", i)
		}
		if !slices.Contains(statusSuccessors[prev.Status], cur.Status) {
			return StatusSchedule{}, fmt.Errorf(
				"illegal status transition %s -> %s", prev.Status, cur.Status)
		}
	}
	return StatusSchedule{transitions: slices.Clone(transitions)}, nil
}

// TrivialSchedule returns the single-entry schedule of a token with no
// promotional window.
func TrivialSchedule() StatusSchedule {
	return StatusSchedule{transitions: []StatusTransition{
		{At: StartOfTime, Status: StatusNotStarted},
	}}
}

// PromoSchedule builds the common NOT_STARTED -> VALID -> ENDED window.
func PromoSchedule(start, end time.Time) (StatusSchedule, error) {
	return NewStatusSchedule(
		StatusTransition{At: StartOfTime, Status: StatusNotStarted},
		StatusTransition{At: start, Status: StatusValid},
		StatusTransition{At: end, Status: StatusEnded},
	)
}

// ValueAt returns the status in effect at the given time: the status of the
// last transition with At <= now, found by binary search.
func (s StatusSchedule) ValueAt(now time.Time) TokenStatus {
	if len(s.transitions) == 0 {
		return StatusNotStarted
	}
	// First index whose timestamp is after now.
	i := sort.Search(len(s.transitions), func(i int) bool {
		return s.transitions[i].At.After(now)
	})
	if i == 0 {
		return StatusNotStarted
	}
	return s.transitions[i-1].Status
}

// IsTrivial reports whether the schedule is the single initial entry,
// meaning the promotion-window check does not apply.
func (s StatusSchedule) IsTrivial() bool {
	return len(s.transitions) <= 1
}

// Transitions returns a copy of the transition points.
func (s StatusSchedule) Transitions() []StatusTransition {
	return slices.Clone(s.transitions)
}

// Len returns the number of transition points.
func (s StatusSchedule) Len() int {
	return len(s.transitions)
}
