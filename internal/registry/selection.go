package registry

import (
	api "github.com/emizp/IFCAtom/api/v1alpha1"
)

// SelectedCompleted returns the jobs eligible for the extract, chart and
// graph actions: selected and completed, in submission order.
func (r *Registry) SelectedCompleted() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	jobs := []Job{}
	for _, job := range r.jobs {
		if job.Selected && job.Status == api.JobStatusCompleted {
			jobs = append(jobs, job.Clone())
		}
	}
	return jobs
}

// SelectAll marks every job selected.
func (r *Registry) SelectAll() {
	r.setAll(func(*Job) bool { return true })
}

// DeselectAll clears every job's selection.
func (r *Registry) DeselectAll() {
	r.setAll(func(*Job) bool { return false })
}

// SelectCategory selects exactly the jobs carrying the given category and
// deselects the rest.
func (r *Registry) SelectCategory(category Category) {
	r.setAll(func(job *Job) bool { return job.Category == category })
}

func (r *Registry) setAll(selected func(*Job) bool) {
	r.mu.Lock()
	for _, job := range r.jobs {
		job.Selected = selected(job)
	}
	r.mu.Unlock()

	r.notifyReset()
}
