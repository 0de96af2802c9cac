package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// PipelineState is the subset of the pipeline's state blob this client knows
// how to show. Missing or wrong-typed fields are left empty.
type PipelineState struct {
	Script            string         `json:"script,omitempty"`
	ClipURLs          []string       `json:"clips_urls,omitempty"`
	ImageURLs         []string       `json:"images_urls,omitempty"`
	FinalVideoURL     string         `json:"final_video_url,omitempty"`
	AudioNarrationURL string         `json:"audio_narration_url,omitempty"`
	BackgroundMusic   string         `json:"bg_music_url,omitempty"`
	MetadataURL       string         `json:"metadata_path_url,omitempty"`
	NextAction        string         `json:"next_action,omitempty"`
	Errors            []string       `json:"errors,omitempty"`
	Attempts          map[string]int `json:"attempts,omitempty"`
}

// ReviewPayload is what the pipeline asks the reviewer to evaluate.
type ReviewPayload struct {
	Message string           `json:"message,omitempty"`
	Script  string           `json:"script,omitempty"`
	Options []ReviewDecision `json:"options,omitempty"`
}

func ProjectPipelineState(state map[string]any) PipelineState {
	return PipelineState{
		Script:            stringField(state, "script"),
		ClipURLs:          stringSliceField(state, "clips_urls"),
		ImageURLs:         stringSliceField(state, "images_urls"),
		FinalVideoURL:     stringField(state, "final_video_url"),
		AudioNarrationURL: stringField(state, "audio_narration_url"),
		BackgroundMusic:   stringField(state, "bg_music_url"),
		MetadataURL:       stringField(state, "metadata_path_url"),
		NextAction:        stringField(state, "next_action"),
		Errors:            stringSliceField(state, "errors"),
		Attempts:          intMapField(state, "attempts"),
	}
}

// ProjectReviewPayload reads the review payload. Options the client does not
// recognize are dropped; an empty list means every decision is allowed.
func ProjectReviewPayload(payload map[string]any) ReviewPayload {
	out := ReviewPayload{
		Message: stringField(payload, "message"),
		Script:  stringField(payload, "script"),
	}
	for _, raw := range stringSliceField(payload, "options") {
		if d, err := ParseReviewDecision(raw); err == nil {
			out.Options = append(out.Options, d)
		}
	}
	return out
}

// AllowedDecisions returns the decisions to offer, keeping the canonical order.
func (p ReviewPayload) AllowedDecisions() []ReviewDecision {
	if len(p.Options) == 0 {
		return append([]ReviewDecision(nil), ReviewDecisions...)
	}
	offered := make(map[ReviewDecision]bool, len(p.Options))
	for _, d := range p.Options {
		offered[d] = true
	}
	out := make([]ReviewDecision, 0, len(p.Options))
	for _, d := range ReviewDecisions {
		if offered[d] {
			out = append(out, d)
		}
	}
	return out
}

// AttemptStages returns the stage names in Attempts, sorted.
func (s PipelineState) AttemptStages() []string {
	stages := make([]string, 0, len(s.Attempts))
	for stage := range s.Attempts {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	return stages
}

// stringField mirrors a lenient string coercion: numbers and booleans are
// rendered, nil and composite values become empty.
func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func stringSliceField(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func intMapField(m map[string]any, key string) map[string]int {
	if m == nil {
		return nil
	}
	raw, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		if n, ok := v.(float64); ok {
			out[k] = int(n)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
