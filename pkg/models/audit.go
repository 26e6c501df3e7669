package models

import "time"

// AuditStatus is the outcome recorded for a single provisioning attempt.
type AuditStatus string

const (
	// AuditPending marks an attempt that has been scheduled but not yet executed.
	AuditPending AuditStatus = "pending"
	// AuditSuccess marks an attempt that completed the provisioning operation.
	AuditSuccess AuditStatus = "success"
	// AuditFailed marks a failed attempt that will be retried.
	AuditFailed AuditStatus = "failed"
	// AuditPermanentlyFailed marks a job that exhausted its attempt budget or
	// could not be processed at all. This is the only external signal that
	// automatic recovery has given up.
	AuditPermanentlyFailed AuditStatus = "permanently_failed"
)

// AuditRecord is one row in the append-only audit trail. The retrier only
// writes these; storage and querying belong to the audit backend.
type AuditRecord struct {
	LogicalKey string      `json:"logical_key"`
	Attempt    int         `json:"attempt"`
	Status     AuditStatus `json:"status"`
	Error      string      `json:"error,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}
