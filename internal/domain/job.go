package domain

import "time"

// JobState enumerates queue lifecycle states.
type JobState string

const (
	JobStateQueued    JobState = "queued"
	JobStateActive    JobState = "active"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
	JobStateNotFound  JobState = "not_found"
)

// Terminal reports whether the state can no longer change.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// Job is one fetch-and-merge request. It is created at submission, owned by
// the queue until terminal, and mutated only by the worker that holds it.
type Job struct {
	ID           string
	SourceURL    string
	StreamID     string
	Container    string
	FilenameHint string
	Requester    string
	State        JobState
	Progress     int
	AttemptsLeft int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobResult is the durable outcome of a successful job. Written at most once;
// the JSON shape is what the result cache stores and the API returns.
type JobResult struct {
	DownloadURL string `json:"downloadUrl"`
	Key         string `json:"key"`
}

// JobStatus is the answer to "what is the state of job X". It is derived on
// demand from the queue and the result cache, never stored as its own record.
type JobStatus struct {
	ID       string
	State    JobState
	Progress int
	Result   *JobResult
}
