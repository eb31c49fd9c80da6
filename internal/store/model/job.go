package model

import (
	"encoding/json"
	"time"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
	"github.com/emizp/IFCAtom/internal/registry"
)

// Job is the persisted form of one tracked job. Position keeps the
// submission order stable across restarts.
type Job struct {
	ID        string `gorm:"primaryKey"`
	Filename  string `gorm:"not null"`
	Schema    string
	Software  string
	Status    string `gorm:"not null"`
	Error     string
	CsvPath   string
	JsonPath  string
	Selected  bool
	Category  string
	Position  int `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type JobList []Job

func NewJobFromTracked(job registry.Job) Job {
	record := Job{
		ID:       job.Id,
		Filename: job.Filename,
		Schema:   job.Schema,
		Software: job.Software,
		Status:   string(job.Status),
		Error:    job.Error,
		Selected: job.Selected,
		Category: string(job.Category),
		Position: job.Position,
	}
	if job.Result != nil {
		record.CsvPath = job.Result.CsvPath
		record.JsonPath = job.Result.JsonPath
	}
	return record
}

func (j Job) ToTracked() registry.Job {
	job := registry.Job{
		Id:       j.ID,
		Filename: j.Filename,
		Schema:   j.Schema,
		Software: j.Software,
		Status:   api.StringToJobStatus(j.Status),
		Error:    j.Error,
		Selected: j.Selected,
		Category: registry.StringToCategory(j.Category),
		Position: j.Position,
	}
	if j.CsvPath != "" || j.JsonPath != "" {
		job.Result = &api.ResultPaths{CsvPath: j.CsvPath, JsonPath: j.JsonPath}
	}
	return job
}

func (l JobList) ToTracked() []registry.Job {
	jobs := make([]registry.Job, 0, len(l))
	for _, record := range l {
		jobs = append(jobs, record.ToTracked())
	}
	return jobs
}

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}
