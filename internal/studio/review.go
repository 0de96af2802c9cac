package studio

import (
	"context"
	"errors"
	"fmt"

	"shorts-studio/internal/model"
)

var ErrNotAwaitingReview = errors.New("job is not waiting for review")

// ReviewController submits human decisions for jobs paused at waiting_review
// and forces a refresh so the resulting status change shows up immediately.
type ReviewController struct {
	sync *Synchronizer
}

func NewReviewController(s *Synchronizer) *ReviewController {
	return &ReviewController{sync: s}
}

// Submit sends decision for jobID. When the synchronizer holds detail for the
// job and it is not waiting for review, the call is rejected locally.
func (r *ReviewController) Submit(ctx context.Context, jobID string, decision model.ReviewDecision, notes string) (model.JobSummary, error) {
	s := r.sync
	if !decision.Valid() {
		err := fmt.Errorf("invalid review decision %q", decision)
		s.setError(err)
		return model.JobSummary{}, err
	}
	if d, ok := s.Snapshot().Detail(); ok && d.JobID == jobID && d.Status != model.StatusWaitingReview {
		err := fmt.Errorf("%w: %s is %s", ErrNotAwaitingReview, jobID, model.StatusLabel(d.Status))
		s.setError(err)
		return model.JobSummary{}, err
	}

	job, err := s.store.SubmitReview(ctx, jobID, decision, notes)
	if err != nil {
		s.logger.Warn("submit review failed", "job_id", jobID, "decision", string(decision), "error", err)
		s.setError(err)
		return model.JobSummary{}, err
	}
	s.logger.Info("review submitted", "job_id", jobID, "decision", string(decision), "status", job.Status)
	_ = s.Refresh(ctx)
	return job, nil
}
