package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
)

// AuditMetadata is the metadata bag attached to jobs and steps. Usage is
// the one structured key; anything else lands in Extra so old records with
// ad-hoc keys still round-trip.
type AuditMetadata struct {
	Usage *llm.UsageStats
	Extra map[string]any
}

// MarshalJSON flattens Extra keys alongside the usage field.
func (m AuditMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+1)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Usage != nil {
		out["usage"] = m.Usage
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the usage field from any remaining keys.
func (m *AuditMetadata) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if usageRaw, ok := raw["usage"]; ok {
		var usage llm.UsageStats
		if err := json.Unmarshal(usageRaw, &usage); err != nil {
			return err
		}
		m.Usage = &usage
		delete(raw, "usage")
	}
	if len(raw) > 0 {
		m.Extra = make(map[string]any, len(raw))
		for k, v := range raw {
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return err
			}
			m.Extra[k] = val
		}
	}
	return nil
}

// IsZero reports whether the metadata carries nothing worth persisting.
func (m AuditMetadata) IsZero() bool {
	return m.Usage == nil && len(m.Extra) == 0
}

// Job is one top-level pipeline invocation, audit-logged start to finish.
// Created at invocation start, updated once at completion - not resumable.
type Job struct {
	ID           uuid.UUID     `json:"id"`
	WorkflowName string        `json:"workflow_name"`
	Metadata     AuditMetadata `json:"metadata,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// StepError is the persisted error payload of a failed step.
type StepError struct {
	Message string `json:"message"`
}

// Step is one named sub-operation within a job, recorded with its input
// and output-or-error. An after-the-fact audit trail, not a resumption
// checkpoint.
type Step struct {
	ID          uuid.UUID       `json:"id"`
	JobID       uuid.UUID       `json:"job_id"`
	Name        string          `json:"name"`
	Input       json.RawMessage `json:"input,omitempty"`
	Output      json.RawMessage `json:"output,omitempty"`
	Error       *StepError      `json:"error,omitempty"`
	Metadata    AuditMetadata   `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
