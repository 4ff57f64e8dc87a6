package jobs

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/delta10/wpsd/internal/wps"
)

// Job is one execution. The worker running it is the only writer; readers
// load complete immutable snapshots.
type Job struct {
	ID      string
	Process wps.ProcessDescription
	Request wps.Execute
	Stored  bool
	// Subject is the authenticated caller, if any.
	Subject string

	mu       sync.Mutex
	snapshot atomic.Pointer[wps.ExecuteResponse]
	done     chan struct{}
	closed   sync.Once
}

func newJob(id string, p wps.ProcessDescription, req wps.Execute, resp wps.ExecuteResponse, stored bool) *Job {
	j := &Job{ID: id, Process: p, Request: req, Stored: stored, done: make(chan struct{})}
	j.snapshot.Store(&resp)
	return j
}

// Snapshot returns the latest published response.
func (j *Job) Snapshot() wps.ExecuteResponse {
	return *j.snapshot.Load()
}

// Done is closed once the job is terminal and its final document has been
// stored and audited.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) complete() { j.closed.Do(func() { close(j.done) }) }

// advance applies ev and publishes the result. Illegal transitions leave the
// published snapshot untouched.
func (j *Job) advance(ev wps.Event, at time.Time) (wps.ExecuteResponse, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	next, err := j.snapshot.Load().Advance(ev, at)
	if err != nil {
		return next, err
	}
	j.snapshot.Store(&next)
	return next, nil
}

// Registry holds the jobs that are running or recently finished.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{jobs: map[string]*Job{}}
}

func (r *Registry) add(j *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID] = j
}

func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
