package models

import "encoding/json"

// RetryJob represents one scheduled re-attempt of a failed provisioning
// operation. Attempt is the 1-based number of the attempt this job will
// perform when claimed; it never exceeds the configured attempt cap.
type RetryJob struct {
	LogicalKey string          `json:"logical_key"`
	Payload    json.RawMessage `json:"payload"`
	Attempt    int             `json:"attempt"`
	LastError  string          `json:"last_error"`
	EnqueuedAt int64           `json:"enqueued_at"`
	ExecuteAt  int64           `json:"execute_at"`
}
