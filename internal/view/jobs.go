package view

import (
	"fmt"
	"io"
	"text/tabwriter"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
	"github.com/emizp/IFCAtom/internal/registry"
)

// RenderJobs writes the job table in submission order.
func RenderJobs(w io.Writer, jobs []registry.Job) error {
	tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
	fmt.Fprintln(tw, "ID\tFILE\tSTATUS\tSCHEMA\tSOFTWARE\tCATEGORY\tSELECTED")
	for _, job := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			job.Id, job.Filename, statusLine(job), job.Schema, job.Software, job.Category, job.Selected)
	}
	return tw.Flush()
}

// statusLine folds the failure reason or the result paths into the
// status cell. Failure wording comes from the pipeline unchanged.
func statusLine(job registry.Job) string {
	switch job.Status {
	case api.JobStatusFailed:
		if job.Error != "" {
			return fmt.Sprintf("failed: %s", job.Error)
		}
		return string(api.JobStatusFailed)
	case api.JobStatusCompleted:
		if job.Result != nil {
			return fmt.Sprintf("completed (csv: %s, json: %s)", job.Result.CsvPath, job.Result.JsonPath)
		}
		return string(api.JobStatusCompleted)
	default:
		return string(job.Status)
	}
}
