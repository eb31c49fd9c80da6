package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
	"github.com/emizp/IFCAtom/internal/client"
	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/pkg/metrics"
)

// Poller runs one polling loop per tracked job and feeds the
// responses into the registry. Loops stop on their own once the job
// reaches a terminal status or the server reports the id unknown.
type Poller struct {
	mu       sync.Mutex
	tasks    map[string]*pollTask
	wg       sync.WaitGroup
	closed   bool
	registry *registry.Registry
	client   client.Pipeline
	interval time.Duration
	timeout  time.Duration
}

type pollTask struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(reg *registry.Registry, pipeline client.Pipeline, interval, timeout time.Duration) *Poller {
	return &Poller{
		tasks:    make(map[string]*pollTask),
		registry: reg,
		client:   pipeline,
		interval: interval,
		timeout:  timeout,
	}
}

// Start begins polling the given job id. Starting an id that is
// already polled cancels the previous loop and replaces it.
func (p *Poller) Start(ctx context.Context, id string) {
	taskCtx, cancel := context.WithCancel(ctx)
	t := &pollTask{id: id, cancel: cancel, done: make(chan struct{})}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		cancel()
		return
	}
	if prev, ok := p.tasks[id]; ok {
		prev.cancel()
	}
	p.tasks[id] = t
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run(taskCtx, t)
}

// Stop cancels the polling loop for the given id and waits for it to
// exit. Stopping an id that is not polled is a no-op.
func (p *Poller) Stop(id string) {
	p.mu.Lock()
	t, ok := p.tasks[id]
	p.mu.Unlock()
	if !ok {
		return
	}
	t.cancel()
	<-t.done
}

// Close stops all polling loops and waits for them to exit. The
// poller cannot be reused afterwards.
func (p *Poller) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	for _, t := range p.tasks {
		t.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// Active reports whether a polling loop currently exists for the id.
func (p *Poller) Active(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.tasks[id]
	return ok
}

func (p *Poller) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tasks)
}

func (p *Poller) run(ctx context.Context, t *pollTask) {
	defer p.wg.Done()
	defer close(t.done)
	defer p.remove(t)

	// Jitter spreads the requests of a batch so they do not hit the
	// server in lockstep.
	ticker := jitterbug.New(p.interval, &jitterbug.Norm{Stdev: 30 * time.Millisecond, Mean: 0})
	defer ticker.Stop()

	if p.tick(ctx, t.id) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.tick(ctx, t.id) {
				return
			}
		}
	}
}

// remove drops the task from the table unless it was already replaced
// by a newer loop for the same id.
func (p *Poller) remove(t *pollTask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tasks[t.id] == t {
		delete(p.tasks, t.id)
	}
}

// tick performs one status request and returns true when the loop
// should stop.
func (p *Poller) tick(ctx context.Context, id string) bool {
	metrics.IncreasePollTicksMetric()

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	response, err := p.client.GetStatus(reqCtx, id)
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return true
		}
		var notFound *client.NotFoundError
		if errors.As(err, &notFound) {
			// The server no longer knows the id. Carry its wording
			// into the job instead of inventing our own.
			metrics.IncreasePollErrorsMetric("not_found")
			_, _, updateErr := p.registry.ApplyStatusUpdate(id, registry.StatusUpdate{
				Status: api.JobStatusFailed,
				Error:  notFound.Message,
			})
			if updateErr != nil {
				zap.S().Named("poller").Errorf("failed to record missing job %s: %v", id, updateErr)
			}
			return true
		}
		metrics.IncreasePollErrorsMetric("transient")
		zap.S().Named("poller").Debugf("status poll for %s failed, will retry: %v", id, err)
		return false
	}

	job, applied, err := p.registry.ApplyStatusUpdate(id, registry.NewStatusUpdate(response))
	if err != nil {
		zap.S().Named("poller").Errorf("failed to apply status of job %s: %v", id, err)
		return true
	}
	if !applied {
		metrics.IncreaseStaleUpdatesMetric()
		return job.Status.IsTerminal()
	}
	if job.Status.IsTerminal() {
		zap.S().Named("poller").Infof("job %s reached status %s", id, job.Status)
		return true
	}
	return false
}
