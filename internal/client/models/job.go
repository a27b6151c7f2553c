package models

import (
	"time"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// JobState is the lifecycle state of a job record.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobCompleted JobState = "completed"
	JobFailed    JobState = "failed"
	JobCancelled JobState = "cancelled"
)

// Terminal reports whether s is an absorbing state.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed || s == JobCancelled
}

// Job is a single invocation of a service on one or more files. The mediator
// owns job records; everyone else observes them through republished events.
type Job struct {
	ID           string
	ServiceKind  ServiceKind
	InputFileIDs []string
	Options      any

	State           JobState
	ProgressPercent float64
	ProgressMessage string

	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time

	OutputFileIDs []string
	Result        any

	ErrorKind    common.Kind
	ErrorMessage string
}

// Clone returns a copy safe to hand to observers.
func (j *Job) Clone() *Job {
	c := *j
	c.InputFileIDs = append([]string(nil), j.InputFileIDs...)
	c.OutputFileIDs = append([]string(nil), j.OutputFileIDs...)
	return &c
}
