package studioapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"shorts-studio/internal/model"
)

// Topic length limits enforced by the job store.
const (
	MinTopicLength = 2
	MaxTopicLength = 200
)

// CreateJobRequest is the body of POST /api/jobs.
type CreateJobRequest struct {
	Topic string `json:"topic" validate:"required,min=2,max=200"`
}

// ReviewRequest is the body of POST /api/jobs/{job_id}/review.
type ReviewRequest struct {
	HumanDecision model.ReviewDecision `json:"human_decision" validate:"required,oneof=approved needs_script_revision find_more_assets reassemble"`
	ReviewNotes   string               `json:"review_notes"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (r *CreateJobRequest) Validate() error {
	return validationError(validate.Struct(r))
}

func (r *ReviewRequest) Validate() error {
	return validationError(validate.Struct(r))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	field := jsonFieldName(fe.Field())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: "must not be empty"}
	case "min":
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at least %s characters", fe.Param())}
	case "max":
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %s characters", fe.Param())}
	case "oneof":
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))}
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("failed %q validation", fe.Tag())}
	}
}

func jsonFieldName(goName string) string {
	switch goName {
	case "Topic":
		return "topic"
	case "HumanDecision":
		return "human_decision"
	case "ReviewNotes":
		return "review_notes"
	default:
		return strings.ToLower(goName)
	}
}
