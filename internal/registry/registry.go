package registry

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

var ErrJobNotFound = errors.New("job not found")

// Registry owns the canonical collection of tracked jobs. Jobs keep their
// submission order for display and are mutated in place, never reordered or
// recreated; within a session a job is never deleted.
//
// One Registry exists per session. Construct it fresh; there is no package
// level instance.
type Registry struct {
	mu    sync.Mutex
	jobs  []*Job
	index map[string]*Job

	listenerMu sync.Mutex
	onChange   []func(Job)
	onReset    []func()
}

func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]*Job),
	}
}

// OnJobChange registers a callback fired synchronously after every
// single-job mutation, with a snapshot of the mutated job. Callbacks run
// outside the registry lock, so they may call back into the registry.
func (r *Registry) OnJobChange(fn func(Job)) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// OnReset registers a callback fired after bulk mutations that touch every
// job.
func (r *Registry) OnReset(fn func()) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.onReset = append(r.onReset, fn)
}

// Add registers a newly accepted file as a tracked job. New jobs default to
// selected with no category, matching the submission contract.
func (r *Registry) Add(file api.FileInfo) (Job, error) {
	r.mu.Lock()
	if _, ok := r.index[file.Id]; ok {
		r.mu.Unlock()
		return Job{}, fmt.Errorf("job %q already registered", file.Id)
	}

	job := &Job{
		Id:       file.Id,
		Filename: file.Filename,
		Schema:   file.Schema,
		Software: file.Software,
		Status:   file.Status,
		Selected: true,
		Category: CategoryUnspecified,
		Position: len(r.jobs),
	}
	if job.Status == "" {
		job.Status = api.JobStatusProcessing
	}
	r.jobs = append(r.jobs, job)
	r.index[job.Id] = job
	snapshot := job.Clone()
	r.mu.Unlock()

	r.notifyChange(snapshot)
	return snapshot, nil
}

// Restore re-adds a job persisted by a previous run, keeping its stored
// fields. It does not fire change callbacks; restoring is loading state,
// not mutating it.
func (r *Registry) Restore(job Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[job.Id]; ok {
		return fmt.Errorf("job %q already registered", job.Id)
	}

	restored := job.Clone()
	restored.Position = len(r.jobs)
	r.jobs = append(r.jobs, &restored)
	r.index[restored.Id] = &restored
	return nil
}

// ApplyStatusUpdate merges a partial update into the job with the given id.
// The merge is guarded: an update that would move the job backward, or out
// of a terminal state, is discarded and the registry is left untouched.
// It returns the post-merge snapshot and whether the update was applied.
func (r *Registry) ApplyStatusUpdate(id string, update StatusUpdate) (Job, bool, error) {
	r.mu.Lock()
	job, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, false, ErrJobNotFound
	}

	if discardReason := job.guard(update.Status); discardReason != "" {
		snapshot := job.Clone()
		r.mu.Unlock()
		zap.S().Named("registry").Debugf("discarding stale update for job %s: %s", id, discardReason)
		return snapshot, false, nil
	}

	job.Status = update.Status
	if update.Error != "" {
		job.Error = update.Error
	}
	if update.Schema != "" {
		job.Schema = update.Schema
	}
	if update.Software != "" {
		job.Software = update.Software
	}
	if update.Result != nil {
		result := *update.Result
		job.Result = &result
	}
	snapshot := job.Clone()
	r.mu.Unlock()

	r.notifyChange(snapshot)
	return snapshot, true, nil
}

// guard returns a non-empty reason when the incoming status must be
// discarded. Out-of-order poll responses are the hazard here: a slow
// response may arrive after a later tick already advanced the job.
func (j *Job) guard(incoming api.JobStatus) string {
	if j.Status.IsTerminal() && incoming != j.Status {
		return fmt.Sprintf("job is already %s, update says %s", j.Status, incoming)
	}
	if incoming.Rank() < j.Status.Rank() {
		return fmt.Sprintf("%s ranks below current %s", incoming, j.Status)
	}
	return ""
}

// Get returns a snapshot of the job with the given id.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.index[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return job.Clone(), nil
}

// List returns snapshots of all jobs in submission order.
func (r *Registry) List() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job.Clone())
	}
	return jobs
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// SetSelected flips the selection flag of one job.
func (r *Registry) SetSelected(id string, selected bool) (Job, error) {
	return r.mutate(id, func(job *Job) {
		job.Selected = selected
	})
}

// SetCategory assigns the user category of one job.
func (r *Registry) SetCategory(id string, category Category) (Job, error) {
	return r.mutate(id, func(job *Job) {
		job.Category = category
	})
}

func (r *Registry) mutate(id string, fn func(*Job)) (Job, error) {
	r.mu.Lock()
	job, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return Job{}, ErrJobNotFound
	}
	fn(job)
	snapshot := job.Clone()
	r.mu.Unlock()

	r.notifyChange(snapshot)
	return snapshot, nil
}

func (r *Registry) notifyChange(job Job) {
	r.listenerMu.Lock()
	listeners := make([]func(Job), len(r.onChange))
	copy(listeners, r.onChange)
	r.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(job)
	}
}

func (r *Registry) notifyReset() {
	r.listenerMu.Lock()
	listeners := make([]func(), len(r.onReset))
	copy(listeners, r.onReset)
	r.listenerMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
