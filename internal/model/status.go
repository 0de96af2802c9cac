package model

import (
	"fmt"
	"strings"
)

const (
	StatusQueued        = "queued"
	StatusRunning       = "running"
	StatusWaitingReview = "waiting_review"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
)

// allowedTransitions lists the status changes the pipeline is expected to make
// between two observations of the same job. Polling can miss intermediate
// states, so skips such as queued -> waiting_review are listed too.
var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusQueued:        true,
		StatusRunning:       true,
		StatusWaitingReview: true,
		StatusCompleted:     true,
		StatusFailed:        true,
	},
	StatusQueued: {
		StatusQueued:        true,
		StatusRunning:       true,
		StatusWaitingReview: true,
		StatusCompleted:     true,
		StatusFailed:        true,
	},
	StatusRunning: {
		StatusRunning:       true,
		StatusWaitingReview: true,
		StatusCompleted:     true,
		StatusFailed:        true,
	},
	StatusWaitingReview: {
		StatusWaitingReview: true,
		StatusRunning:       true, // review submitted, pipeline resumed
		StatusCompleted:     true, // approved and published between polls
		StatusFailed:        true,
	},
	StatusCompleted: {
		StatusCompleted: true,
	},
	StatusFailed: {
		StatusFailed: true,
	},
}

func IsKnownStatus(status string) bool {
	if status == "" {
		return false
	}
	_, ok := allowedTransitions[status]
	return ok
}

// IsTerminal reports whether the pipeline will not touch the job again.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// CanTransition reports whether from -> to is an expected observation.
// Statuses unknown to this client are never rejected: the remote pipeline
// evolves independently.
func CanTransition(from, to string) bool {
	if from != "" && !IsKnownStatus(from) {
		return true
	}
	if !IsKnownStatus(to) {
		return true
	}
	return allowedTransitions[from][to]
}

// CheckTransition returns a descriptive error for an unexpected status change.
func CheckTransition(jobID, from, to string) error {
	if CanTransition(from, to) {
		return nil
	}
	return fmt.Errorf("unexpected job status transition: %q -> %q (job_id=%s)", from, to, jobID)
}

// StatusLabel renders a status for humans: "waiting_review" -> "waiting review".
func StatusLabel(status string) string {
	s := strings.TrimSpace(status)
	if s == "" {
		return "unknown"
	}
	return strings.ReplaceAll(s, "_", " ")
}
