package model

import "encoding/json"

// JobSummary is one pipeline run as reported by the list endpoint.
type JobSummary struct {
	JobID     string    `json:"job_id"`
	Topic     string    `json:"topic"`
	Status    string    `json:"status"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// JobDetail is the full view of a single job. State is produced by the remote
// pipeline and kept loosely typed; use Pipeline() to read known fields.
type JobDetail struct {
	JobID         string         `json:"job_id"`
	ThreadID      string         `json:"thread_id"`
	Topic         string         `json:"topic"`
	Status        string         `json:"status"`
	CreatedAt     Timestamp      `json:"created_at"`
	UpdatedAt     Timestamp      `json:"updated_at"`
	ReviewPayload map[string]any `json:"review_payload,omitempty"`
	State         map[string]any `json:"state"`
	Error         *string        `json:"error,omitempty"`
}

func (d JobDetail) Summary() JobSummary {
	return JobSummary{
		JobID:     d.JobID,
		Topic:     d.Topic,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d JobDetail) ErrorMessage() string {
	if d.Error == nil {
		return ""
	}
	return *d.Error
}

func (d JobDetail) Pipeline() PipelineState {
	return ProjectPipelineState(d.State)
}

func (d JobDetail) Review() ReviewPayload {
	return ProjectReviewPayload(d.ReviewPayload)
}

// LibraryItem summarizes a published artifact. Every field may be missing
// because it is read from persisted metadata files on the server.
type LibraryItem struct {
	JobID         *string    `json:"job_id,omitempty"`
	Topic         *string    `json:"topic,omitempty"`
	Script        *string    `json:"script,omitempty"`
	FinalVideo    *string    `json:"final_video,omitempty"`
	FinalVideoURL *string    `json:"final_video_url,omitempty"`
	MetadataPath  *string    `json:"metadata_path,omitempty"`
	CreatedAt     *Timestamp `json:"created_at,omitempty"`
}

func (i LibraryItem) JobIDValue() string         { return deref(i.JobID) }
func (i LibraryItem) TopicValue() string         { return deref(i.Topic) }
func (i LibraryItem) ScriptValue() string        { return deref(i.Script) }
func (i LibraryItem) FinalVideoValue() string    { return deref(i.FinalVideo) }
func (i LibraryItem) FinalVideoURLValue() string { return deref(i.FinalVideoURL) }
func (i LibraryItem) MetadataPathValue() string  { return deref(i.MetadataPath) }

// Key identifies an item in a list even when job_id is absent.
func (i LibraryItem) Key() string {
	return i.MetadataPathValue() + i.FinalVideoValue()
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// DependencyReport is the payload of GET /api/system/dependencies: which
// media tools the pipeline host can run.
type DependencyReport struct {
	Overall      string            `json:"overall"`
	GeneratedAt  string            `json:"generated_at,omitempty"`
	Dependencies []MediaDependency `json:"dependencies"`
}

type MediaDependency struct {
	Name     string  `json:"name"`
	Required bool    `json:"required"`
	Status   string  `json:"status"`
	Found    bool    `json:"found"`
	Version  *string `json:"version,omitempty"`
	HelpURL  string  `json:"help_url,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Clone returns a deep copy of the detail so snapshots handed to views never
// alias maps owned by the synchronizer.
func (d JobDetail) Clone() JobDetail {
	out := d
	out.State = cloneMap(d.State)
	out.ReviewPayload = cloneMap(d.ReviewPayload)
	if d.Error != nil {
		msg := *d.Error
		out.Error = &msg
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	data, err := json.Marshal(in)
	if err != nil {
		out := make(map[string]any, len(in))
		for k, v := range in {
			out[k] = v
		}
		return out
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return in
	}
	return out
}
