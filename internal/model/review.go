package model

import (
	"fmt"
	"strings"
)

// ReviewDecision is a reviewer's disposition on a job paused at waiting_review.
type ReviewDecision string

const (
	DecisionApproved            ReviewDecision = "approved"
	DecisionNeedsScriptRevision ReviewDecision = "needs_script_revision"
	DecisionFindMoreAssets      ReviewDecision = "find_more_assets"
	DecisionReassemble          ReviewDecision = "reassemble"
)

// ReviewDecisions is the closed set accepted by the review endpoint, in the
// order they are offered to reviewers.
var ReviewDecisions = []ReviewDecision{
	DecisionApproved,
	DecisionNeedsScriptRevision,
	DecisionFindMoreAssets,
	DecisionReassemble,
}

var decisionLabels = map[ReviewDecision]string{
	DecisionApproved:            "Approve",
	DecisionNeedsScriptRevision: "Script Revision",
	DecisionFindMoreAssets:      "Find More Assets",
	DecisionReassemble:          "Reassemble",
}

func (d ReviewDecision) Valid() bool {
	_, ok := decisionLabels[d]
	return ok
}

func (d ReviewDecision) Label() string {
	if label, ok := decisionLabels[d]; ok {
		return label
	}
	return string(d)
}

func ParseReviewDecision(raw string) (ReviewDecision, error) {
	d := ReviewDecision(strings.ToLower(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("invalid review decision %q (want one of: approved, needs_script_revision, find_more_assets, reassemble)", raw)
	}
	return d, nil
}
