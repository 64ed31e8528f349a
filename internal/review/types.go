// Package review drives the bounded review→refine loop: one judgement per
// round, reviewer questions surfaced to the human with timeout defaults,
// and a transition table deciding whether the loop continues.
package review

import "strings"

// Status is the categorical outcome of one review round. Exactly one value
// applies per round.
type Status string

const (
	// StatusSuitable is terminal success: the implementation passes review.
	StatusSuitable Status = "SUITABLE"
	// StatusFailed is terminal failure: a refine-round patch failed to apply.
	StatusFailed Status = "FAILED"
	// StatusChangesNeeded continues the loop with another round.
	StatusChangesNeeded Status = "CHANGES_NEEDED"
	// StatusHold requires human confirmation before continuing. Declining
	// aborts the whole run, not just the loop.
	StatusHold Status = "HOLD"
	// StatusUnnecessary skips this round's fix and continues the loop.
	StatusUnnecessary Status = "UNNECESSARY"
)

// Terminal reports whether the status stops the loop.
func (s Status) Terminal() bool {
	return s == StatusSuitable || s == StatusFailed
}

// ParseStatus extracts a Status from a judgement artifact. The artifact
// carries a "JUDGEMENT: <STATUS>" line; anything unrecognized defaults to
// CHANGES_NEEDED so a garbled judgement keeps the loop going instead of
// silently succeeding.
func ParseStatus(judgement string) Status {
	for _, line := range strings.Split(judgement, "\n") {
		value, found := strings.CutPrefix(strings.TrimSpace(line), "JUDGEMENT:")
		if !found {
			continue
		}
		switch Status(strings.TrimSpace(value)) {
		case StatusSuitable:
			return StatusSuitable
		case StatusFailed:
			return StatusFailed
		case StatusChangesNeeded:
			return StatusChangesNeeded
		case StatusHold:
			return StatusHold
		case StatusUnnecessary:
			return StatusUnnecessary
		}
	}
	return StatusChangesNeeded
}
