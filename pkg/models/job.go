package models

import "time"

// JobStatus is the lifecycle state of a batch discovery job
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// DiscoveryJob records a tenant-wide batch discovery run. The API returns
// immediately with the job id; progress and per-contact outcomes are durable
// here so callers can poll instead of guessing from side effects.
type DiscoveryJob struct {
	ID               string     `json:"id" db:"id"`
	TenantID         string     `json:"tenant_id" db:"tenant_id"`
	Status           JobStatus  `json:"status" db:"status"`
	ContactsTotal    int        `json:"contacts_total" db:"contacts_total"`
	ContactsScanned  int        `json:"contacts_scanned" db:"contacts_scanned"`
	ContactsFailed   int        `json:"contacts_failed" db:"contacts_failed"`
	CandidatesFound  int        `json:"candidates_found" db:"candidates_found"`
	StartedBy        string     `json:"started_by" db:"started_by"`
	StartedAt        time.Time  `json:"started_at" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	FailureReason    *string    `json:"failure_reason,omitempty" db:"failure_reason"`
}

// BatchDiscoverResponse is the immediate acknowledgment for a batch run
type BatchDiscoverResponse struct {
	JobID  string    `json:"job_id"`
	Status JobStatus `json:"status"`
}
