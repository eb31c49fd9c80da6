package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
	"github.com/emizp/IFCAtom/internal/client"
	"github.com/emizp/IFCAtom/internal/dataset"
	"github.com/emizp/IFCAtom/internal/poller"
	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/internal/store"
	"github.com/emizp/IFCAtom/internal/view"
	"github.com/emizp/IFCAtom/pkg/metrics"
)

// Session is the state container of one tracking session: the job
// registry, the poller feeding it, the pipeline client, the local
// store mirroring the registry, and the current result projections.
// Construct it fresh per session; nothing here is process-global.
type Session struct {
	registry *registry.Registry
	poller   *poller.Poller
	pipeline client.Pipeline
	store    store.Store

	pager *view.ChartPager
	data  *dataset.Dataset
	graph view.GraphOutcome

	ctx    context.Context
	cancel context.CancelFunc
}

func New(reg *registry.Registry, pol *poller.Poller, pipeline client.Pipeline, st store.Store) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		registry: reg,
		poller:   pol,
		pipeline: pipeline,
		store:    st,
		pager:    view.NewChartPager(),
		ctx:      ctx,
		cancel:   cancel,
	}

	// Write-through mirror: every registry mutation lands in the store
	// right away, so a later command or a crash sees the same session.
	reg.OnJobChange(func(job registry.Job) {
		if err := s.store.Job().Upsert(context.Background(), job); err != nil {
			zap.S().Named("session").Errorf("failed to persist job %s: %v", job.Id, err)
		}
		s.updateStatusCounts()
	})
	reg.OnReset(func() {
		for _, job := range s.registry.List() {
			if err := s.store.Job().UpdateSelection(context.Background(), job.Id, job.Selected); err != nil {
				zap.S().Named("session").Errorf("failed to persist selection of job %s: %v", job.Id, err)
			}
		}
	})

	return s
}

func (s *Session) Registry() *registry.Registry {
	return s.registry
}

func (s *Session) Pager() *view.ChartPager {
	return s.pager
}

func (s *Session) Dataset() *dataset.Dataset {
	return s.data
}

func (s *Session) Graph() view.GraphOutcome {
	return s.graph
}

// Load restores the jobs persisted by previous runs, oldest first.
func (s *Session) Load(ctx context.Context) error {
	jobs, err := s.store.Job().List(ctx)
	if err != nil {
		return fmt.Errorf("loading session jobs: %w", err)
	}
	for _, job := range jobs {
		if err := s.registry.Restore(job); err != nil {
			return err
		}
	}
	s.updateStatusCounts()
	return nil
}

// Resume restarts polling for every job that has not reached a
// terminal state yet.
func (s *Session) Resume() int {
	resumed := 0
	for _, job := range s.registry.List() {
		if job.Status.IsTerminal() {
			continue
		}
		s.poller.Start(s.ctx, job.Id)
		resumed++
	}
	return resumed
}

// SubmitBatch uploads the given files and registers one job per
// accepted file, polling each until it settles.
func (s *Session) SubmitBatch(ctx context.Context, files []client.UploadFile) ([]registry.Job, error) {
	if len(files) == 0 {
		return nil, &ValidationError{Message: msgEmptyUploadBatch}
	}

	response, err := s.pipeline.UploadFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	jobs := make([]registry.Job, 0, len(response.Files))
	for _, file := range response.Files {
		job, err := s.registry.Add(file)
		if err != nil {
			// The pipeline replayed an id we already track. Keep the
			// existing job and its poll loop.
			zap.S().Named("session").Warnf("skipping duplicate upload response entry: %v", err)
			continue
		}
		s.poller.Start(s.ctx, job.Id)
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// ExtractData runs the extraction action over the selected completed
// jobs and replaces the current dataset with the response.
func (s *Session) ExtractData(ctx context.Context) (*dataset.Dataset, error) {
	ids, err := s.eligibleIds()
	if err != nil {
		return nil, err
	}

	response, err := s.pipeline.ExtractData(ctx, ids)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.New(response.Data)
	if err != nil {
		return nil, fmt.Errorf("building dataset: %w", err)
	}
	s.data = ds
	return ds, nil
}

// GenerateCharts runs the chart action over the selected completed
// jobs. The response batch replaces the pager contents wholesale; the
// entries carry the response's own job references, so a selection
// changed while the request was in flight does not skew the result.
func (s *Session) GenerateCharts(ctx context.Context) (*view.ChartPager, error) {
	ids, err := s.eligibleIds()
	if err != nil {
		return nil, err
	}

	response, err := s.pipeline.GenerateChart(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.pager.SetCharts(response.Charts)
	return s.pager, nil
}

// GenerateGraph runs the graph action. It needs exactly one selected
// completed job. A well-formed pipeline error becomes the error arm of
// the graph outcome rather than a Go error, so the caller renders it
// in the graph area.
func (s *Session) GenerateGraph(ctx context.Context) (view.GraphOutcome, error) {
	eligible := s.registry.SelectedCompleted()
	if len(eligible) != 1 {
		return view.GraphOutcome{}, &ValidationError{Message: msgGraphNeedsExactlyOne}
	}

	response, err := s.pipeline.GenerateGraph(ctx, eligible[0].Id)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			s.graph = view.GraphError(apiErr.Message)
			return s.graph, nil
		}
		return view.GraphOutcome{}, err
	}

	s.graph = view.NewGraphOutcome(response)
	return s.graph, nil
}

// FetchArtifact streams one generated artifact into dst.
func (s *Session) FetchArtifact(ctx context.Context, ref string, dst io.Writer) error {
	return s.pipeline.FetchArtifact(ctx, ref, dst)
}

// AllSettled reports whether every tracked job reached a terminal
// state.
func (s *Session) AllSettled() bool {
	for _, job := range s.registry.List() {
		if !job.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// Close tears the session down: all poll loops are cancelled and
// awaited, then the store is closed.
func (s *Session) Close() error {
	s.cancel()
	s.poller.Close()
	return s.store.Close()
}

func (s *Session) eligibleIds() ([]string, error) {
	eligible := s.registry.SelectedCompleted()
	if len(eligible) == 0 {
		return nil, &ValidationError{Message: msgNoCompletedSelection}
	}
	ids := make([]string, 0, len(eligible))
	for _, job := range eligible {
		ids = append(ids, job.Id)
	}
	return ids, nil
}

func (s *Session) updateStatusCounts() {
	counts := map[api.JobStatus]int{
		api.JobStatusPending:    0,
		api.JobStatusProcessing: 0,
		api.JobStatusCompleted:  0,
		api.JobStatusFailed:     0,
	}
	for _, job := range s.registry.List() {
		counts[job.Status]++
	}
	for status, count := range counts {
		metrics.UpdateJobStatusCountMetric(string(status), count)
	}
}
