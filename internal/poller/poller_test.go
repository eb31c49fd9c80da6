package poller_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
	"github.com/emizp/IFCAtom/internal/client"
	"github.com/emizp/IFCAtom/internal/poller"
	"github.com/emizp/IFCAtom/internal/registry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type statusReply struct {
	response *api.StatusResponse
	err      error
}

// fakePipeline serves a scripted sequence of status replies. The last
// entry repeats once the script is exhausted.
type fakePipeline struct {
	mu      sync.Mutex
	calls   int
	replies []statusReply
}

var _ client.Pipeline = (*fakePipeline)(nil)

func (f *fakePipeline) GetStatus(_ context.Context, _ string) (*api.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	f.calls++
	return f.replies[i].response, f.replies[i].err
}

func (f *fakePipeline) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakePipeline) UploadFiles(context.Context, []client.UploadFile) (*api.UploadResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePipeline) ExtractData(context.Context, []string) (*api.ExtractDataResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePipeline) GenerateChart(context.Context, []string) (*api.GenerateChartResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePipeline) GenerateGraph(context.Context, string) (*api.GenerateGraphResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakePipeline) ArtifactURL(refPath string) string { return refPath }

func (f *fakePipeline) FetchArtifact(context.Context, string, io.Writer) error {
	return errors.New("not implemented")
}

func newTestRegistry(t *testing.T, ids ...string) *registry.Registry {
	t.Helper()
	reg := registry.NewRegistry()
	for _, id := range ids {
		_, err := reg.Add(api.FileInfo{Id: id, Filename: id + ".ifc", Status: api.JobStatusProcessing})
		require.NoError(t, err)
	}
	return reg
}

func TestPollerStopsOnTerminalStatus(t *testing.T) {
	reg := newTestRegistry(t, "job-1")
	pipeline := &fakePipeline{replies: []statusReply{
		{response: &api.StatusResponse{Status: "processing"}},
		{response: &api.StatusResponse{
			Status: "completed",
			Result: &api.ResultPaths{CsvPath: "static/parsed_data/job-1.csv", JsonPath: "static/parsed_data/job-1.json"},
		}},
	}}
	p := poller.NewPoller(reg, pipeline, 10*time.Millisecond, time.Second)
	defer p.Close()

	p.Start(context.Background(), "job-1")

	require.Eventually(t, func() bool {
		return !p.Active("job-1")
	}, 2*time.Second, 5*time.Millisecond)

	job, err := reg.Get("job-1")
	require.NoError(t, err)
	require.Equal(t, api.JobStatusCompleted, job.Status)
	require.NotNil(t, job.Result)
	require.Equal(t, "static/parsed_data/job-1.csv", job.Result.CsvPath)
}

func TestPollerMarksUnknownJobFailed(t *testing.T) {
	reg := newTestRegistry(t, "job-1")
	pipeline := &fakePipeline{replies: []statusReply{
		{err: &client.NotFoundError{Message: "File ID not found"}},
	}}
	p := poller.NewPoller(reg, pipeline, 10*time.Millisecond, time.Second)
	defer p.Close()

	p.Start(context.Background(), "job-1")

	require.Eventually(t, func() bool {
		return !p.Active("job-1")
	}, 2*time.Second, 5*time.Millisecond)

	job, err := reg.Get("job-1")
	require.NoError(t, err)
	require.Equal(t, api.JobStatusFailed, job.Status)
	require.Equal(t, "File ID not found", job.Error)
}

func TestPollerRetriesAfterTransientError(t *testing.T) {
	reg := newTestRegistry(t, "job-1")
	pipeline := &fakePipeline{replies: []statusReply{
		{err: errors.New("connection refused")},
		{response: &api.StatusResponse{Status: "processing"}},
		{response: &api.StatusResponse{Status: "completed"}},
	}}
	p := poller.NewPoller(reg, pipeline, 10*time.Millisecond, time.Second)
	defer p.Close()

	p.Start(context.Background(), "job-1")

	require.Eventually(t, func() bool {
		return !p.Active("job-1")
	}, 2*time.Second, 5*time.Millisecond)

	require.GreaterOrEqual(t, pipeline.callCount(), 3)
	job, err := reg.Get("job-1")
	require.NoError(t, err)
	require.Equal(t, api.JobStatusCompleted, job.Status)
}

func TestPollerIgnoresStaleUpdates(t *testing.T) {
	reg := newTestRegistry(t, "job-1")
	_, _, err := reg.ApplyStatusUpdate("job-1", registry.StatusUpdate{Status: api.JobStatusCompleted})
	require.NoError(t, err)

	// The server answer lags behind what the registry already knows.
	// The stale reply is discarded and the loop stops on its own.
	pipeline := &fakePipeline{replies: []statusReply{
		{response: &api.StatusResponse{Status: "processing"}},
	}}
	p := poller.NewPoller(reg, pipeline, 10*time.Millisecond, time.Second)
	defer p.Close()

	p.Start(context.Background(), "job-1")

	require.Eventually(t, func() bool {
		return !p.Active("job-1")
	}, 2*time.Second, 5*time.Millisecond)

	job, err := reg.Get("job-1")
	require.NoError(t, err)
	require.Equal(t, api.JobStatusCompleted, job.Status)
}

func TestPollerStopAndClose(t *testing.T) {
	reg := newTestRegistry(t, "job-1", "job-2")
	pipeline := &fakePipeline{replies: []statusReply{
		{response: &api.StatusResponse{Status: "processing"}},
	}}
	p := poller.NewPoller(reg, pipeline, 10*time.Millisecond, time.Second)

	p.Start(context.Background(), "job-1")
	p.Start(context.Background(), "job-2")
	require.Equal(t, 2, p.Len())

	p.Stop("job-1")
	require.False(t, p.Active("job-1"))
	require.True(t, p.Active("job-2"))

	p.Close()
	require.Equal(t, 0, p.Len())

	// Starting after Close must not leak a loop.
	p.Start(context.Background(), "job-2")
	require.Equal(t, 0, p.Len())
}

func TestPollerStartReplacesExistingLoop(t *testing.T) {
	reg := newTestRegistry(t, "job-1")
	pipeline := &fakePipeline{replies: []statusReply{
		{response: &api.StatusResponse{Status: "processing"}},
	}}
	p := poller.NewPoller(reg, pipeline, 10*time.Millisecond, time.Second)
	defer p.Close()

	p.Start(context.Background(), "job-1")
	p.Start(context.Background(), "job-1")
	require.Equal(t, 1, p.Len())

	p.Stop("job-1")
	require.Equal(t, 0, p.Len())
}
