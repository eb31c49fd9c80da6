package registry

import (
	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

// Job is the client-side record of one submitted file's processing
// lifecycle. Exactly one Job exists per accepted file, keyed by the
// pipeline-assigned id; ids are never reused or reassigned.
type Job struct {
	Id       string           `json:"id"`
	Filename string           `json:"filename"`
	Schema   string           `json:"schema,omitempty"`
	Software string           `json:"software,omitempty"`
	Status   api.JobStatus    `json:"status"`
	Error    string           `json:"error,omitempty"`
	Result   *api.ResultPaths `json:"result,omitempty"`
	Selected bool             `json:"selected"`
	Category Category         `json:"category"`
	Position int              `json:"-"`
}

// Clone returns a snapshot safe to hand outside the registry lock.
func (j *Job) Clone() Job {
	clone := *j
	if j.Result != nil {
		result := *j.Result
		clone.Result = &result
	}
	return clone
}

// StatusUpdate is a partial update reconciled into a Job. Empty fields
// leave the corresponding Job fields untouched; the wire contract encodes
// absence as omission.
type StatusUpdate struct {
	Status   api.JobStatus
	Error    string
	Schema   string
	Software string
	Result   *api.ResultPaths
}

// NewStatusUpdate maps a poll response to the update to reconcile.
func NewStatusUpdate(response *api.StatusResponse) StatusUpdate {
	return StatusUpdate{
		Status:   response.Status,
		Error:    response.Error,
		Schema:   response.Schema,
		Software: response.Software,
		Result:   response.Result,
	}
}
