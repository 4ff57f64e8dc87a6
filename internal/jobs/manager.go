// Package jobs runs Execute requests and publishes their status.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/delta10/wpsd/internal/auth"
	"github.com/delta10/wpsd/internal/codec"
	"github.com/delta10/wpsd/internal/logs"
	"github.com/delta10/wpsd/internal/ows"
	"github.com/delta10/wpsd/internal/processes"
	"github.com/delta10/wpsd/internal/wps"
)

// ErrClosed is returned by Execute once Close has been called.
var ErrClosed = errors.New("job manager is closed")

// Fetcher resolves complex references before a process runs.
type Fetcher interface {
	ResolveInputs(ctx context.Context, inputs map[string][]wps.Data) (map[string][]wps.Data, error)
}

// URLs builds the public locations of stored documents.
type URLs interface {
	StatusURL(job string) string
	OutputURL(job, output string) string
}

type Options struct {
	Workers         int64
	Retention       time.Duration
	ServiceInstance string
	URLs            URLs
	Store           Store
	Fetcher         Fetcher
	Audit           logs.Auditor
	Logger          *slog.Logger
	Now             func() time.Time
	NewID           func() string
}

// RawOutput is the body of a RawDataOutput response.
type RawOutput struct {
	Format  wps.Format
	Payload []byte
}

// Result is what Execute hands back to the caller. Raw is set only for a
// successful RawDataOutput request.
type Result struct {
	Job      *Job
	Response wps.ExecuteResponse
	Raw      *RawOutput
}

type Manager struct {
	processes *processes.Registry
	jobs      *Registry
	opts      Options
	sem       *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewManager(registry *processes.Registry, opts Options) *Manager {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Retention == 0 {
		opts.Retention = 10 * time.Minute
	}
	if opts.Audit == nil {
		opts.Audit = logs.Discard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		processes: registry,
		jobs:      NewRegistry(),
		opts:      opts,
		sem:       semaphore.NewWeighted(opts.Workers),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *Manager) Jobs() *Registry { return m.jobs }

// Execute validates req and runs it. With status requested the Accepted
// response is returned at once and the job continues in the background;
// otherwise Execute blocks until the job is terminal.
func (m *Manager) Execute(ctx context.Context, req wps.Execute) (Result, error) {
	if !m.enter() {
		return Result{}, ErrClosed
	}
	defer m.wg.Done()

	desc, err := m.processes.Lookup(req.Identifier)
	if err != nil {
		return Result{}, err
	}
	if err := req.Validate(desc); err != nil {
		return Result{}, err
	}
	proc, err := m.processes.Process(req.Identifier)
	if err != nil {
		return Result{}, err
	}

	doc, isDoc := req.ResponseForm.(wps.ResponseDocument)
	stored := isDoc && doc.StoreExecuteResponse
	needsStore := stored
	for _, o := range doc.Outputs {
		needsStore = needsStore || o.AsReference
	}
	if needsStore && (m.opts.Store == nil || m.opts.URLs == nil) {
		return Result{}, &wps.Error{Kind: wps.ErrStoreNotSupported, Locator: req.Identifier, Msg: "server has no storage"}
	}

	id := m.opts.NewID()
	resp := wps.NewExecuteResponse(req, desc, m.opts.ServiceInstance, m.opts.Now())
	if stored {
		resp.StatusLocation = m.opts.URLs.StatusURL(id)
	}
	job := newJob(id, desc, req, resp, stored)
	if claims, ok := auth.FromContext(ctx); ok {
		job.Subject = claims.Subject
	}
	m.jobs.add(job)
	m.publish(ctx, job, resp)

	if isDoc && doc.Status {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := m.sem.Acquire(m.ctx, 1); err != nil {
				m.fail(m.ctx, job, err)
				return
			}
			defer m.sem.Release(1)
			m.run(m.ctx, job, proc)
		}()
		return Result{Job: job, Response: job.Snapshot()}, nil
	}

	if err := m.sem.Acquire(ctx, 1); err != nil {
		m.fail(ctx, job, err)
	} else {
		m.run(ctx, job, proc)
		m.sem.Release(1)
	}

	final := job.Snapshot()
	res := Result{Job: job, Response: final}
	if raw, ok := req.ResponseForm.(wps.RawDataOutput); ok {
		if failed, ok := final.Status.State.(wps.Failed); ok {
			return res, failed.Report
		}
		out, err := rawOutput(raw, desc, final)
		if err != nil {
			return res, err
		}
		res.Raw = out
	}
	return res, nil
}

// enter registers a caller with the wait group unless the manager is closing.
func (m *Manager) enter() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.wg.Add(1)
	return true
}

// Close rejects new executions, fails every running job and waits for the
// workers to stop.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type reporter struct {
	m   *Manager
	ctx context.Context
	job *Job
}

func (r reporter) Progress(percent int, message string) {
	next, err := r.job.advance(wps.Progress{Percent: percent, Message: message}, r.m.opts.Now())
	if err != nil {
		r.m.opts.Logger.Debug("ignored progress", "job", r.job.ID, "error", err)
		return
	}
	r.m.publish(r.ctx, r.job, next)
}

func (m *Manager) run(ctx context.Context, job *Job, proc processes.Process) {
	logger := m.opts.Logger.With("job", job.ID, "process", job.Process.Identifier)

	next, err := job.advance(wps.Start{Message: "Process started"}, m.opts.Now())
	if err != nil {
		logger.Error("could not start job", "error", err)
		return
	}
	m.publish(ctx, job, next)
	logger.Info("job started")

	inputs := job.Request.Occurrences()
	if m.opts.Fetcher != nil {
		inputs, err = m.opts.Fetcher.ResolveInputs(ctx, inputs)
		if err != nil {
			m.fail(ctx, job, err)
			return
		}
		// Fetched payloads are held to the same format and size limits as inline ones.
		for id, values := range inputs {
			in, _ := job.Process.Input(id)
			for _, v := range values {
				if err := wps.ValidateValue(id, v, in.Data()); err != nil {
					m.fail(ctx, job, err)
					return
				}
			}
		}
	}

	produced, err := proc.Execute(ctx, inputs, reporter{m: m, ctx: ctx, job: job})
	if err != nil {
		m.fail(ctx, job, err)
		return
	}

	outputs, err := m.collect(ctx, job, produced)
	if err != nil {
		m.fail(ctx, job, err)
		return
	}

	next, err = job.advance(wps.Succeed{Message: "Process succeeded", Outputs: outputs}, m.opts.Now())
	if err != nil {
		logger.Error("could not complete job", "error", err)
		return
	}
	m.publish(ctx, job, next)
	logger.Info("job succeeded")
	m.finish(job, next)
}

// collect turns the values a process produced into the outputs the response
// form selected. Outputs requested by reference are stored.
func (m *Manager) collect(ctx context.Context, job *Job, produced map[string]wps.Data) ([]wps.OutputData, error) {
	if _, raw := job.Request.ResponseForm.(wps.RawDataOutput); raw {
		defs := wps.SelectedOutputs(job.Request.ResponseForm, job.Process)
		id := defs[0].Identifier
		v, ok := produced[id]
		if !ok {
			return nil, fmt.Errorf("process produced no output %s", id)
		}
		return []wps.OutputData{{Identifier: id, Data: v}}, nil
	}

	var outputs []wps.OutputData
	for _, def := range wps.SelectedOutputs(job.Request.ResponseForm, job.Process) {
		desc, _ := job.Process.Output(def.Identifier)
		v, ok := produced[def.Identifier]
		if !ok {
			return nil, fmt.Errorf("process produced no output %s", def.Identifier)
		}
		out := wps.OutputData{Identifier: def.Identifier, Title: desc.Title, Abstract: desc.Abstract, Data: v}
		if def.Title != "" {
			out.Title = def.Title
		}
		if def.Abstract != "" {
			out.Abstract = def.Abstract
		}
		if def.AsReference {
			f, payload, err := valueBytes(v, desc)
			if err != nil {
				return nil, fmt.Errorf("encoding output %s: %w", def.Identifier, err)
			}
			if err := m.opts.Store.SaveOutput(ctx, job.ID, def.Identifier, StoredOutput{Format: f, Payload: payload}); err != nil {
				return nil, fmt.Errorf("storing output %s: %w", def.Identifier, err)
			}
			ref, err := wps.NewComplexReference(wps.Reference{Href: m.opts.URLs.OutputURL(job.ID, def.Identifier), Format: f})
			if err != nil {
				return nil, err
			}
			out.Data = ref
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// valueBytes returns the serialized form of a value served on its own.
func valueBytes(v wps.Data, desc wps.OutputDescription) (wps.Format, []byte, error) {
	switch d := v.(type) {
	case wps.ComplexData:
		f := d.Format()
		if f.MimeType == "" {
			if cd, ok := desc.Data().(wps.ComplexDescription); ok {
				f = cd.Default()
			}
		}
		return f, d.Payload(), nil
	case wps.LiteralData:
		return wps.Format{MimeType: "text/plain"}, []byte(d.Value), nil
	case wps.BoundingBoxData:
		b, err := codec.EncodeBoundingBox(d.BoundingBox)
		if err != nil {
			return wps.Format{}, nil, err
		}
		return wps.Format{MimeType: "text/xml"}, b, nil
	default:
		return wps.Format{}, nil, fmt.Errorf("unsupported value %T", v)
	}
}

func rawOutput(raw wps.RawDataOutput, desc wps.ProcessDescription, resp wps.ExecuteResponse) (*RawOutput, error) {
	if len(resp.ProcessOutputs) != 1 {
		return nil, errors.New("raw output missing from response")
	}
	out := resp.ProcessOutputs[0]
	od, _ := desc.Output(out.Identifier)
	f, payload, err := valueBytes(out.Data, od)
	if err != nil {
		return nil, err
	}
	if raw.Output.MimeType != "" {
		f.MimeType = raw.Output.MimeType
	}
	return &RawOutput{Format: f, Payload: payload}, nil
}

func (m *Manager) fail(ctx context.Context, job *Job, cause error) {
	report := wps.ExceptionReportFor(cause)
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		report = ows.NewExceptionReport(ows.CodeNoApplicableCode, job.Process.Identifier, "job was interrupted: "+cause.Error())
	}
	next, err := job.advance(wps.Fail{Report: report}, m.opts.Now())
	if err != nil {
		m.opts.Logger.Error("could not fail job", "job", job.ID, "error", err)
		return
	}
	m.opts.Logger.Warn("job failed", "job", job.ID, "process", job.Process.Identifier, "error", cause)
	m.publish(context.WithoutCancel(ctx), job, next)
	m.finish(job, next)
}

// publish persists a stored job's latest document.
func (m *Manager) publish(ctx context.Context, job *Job, resp wps.ExecuteResponse) {
	if !job.Stored {
		return
	}
	doc, err := codec.EncodeExecuteResponse(resp)
	if err != nil {
		m.opts.Logger.Error("could not encode response", "job", job.ID, "error", err)
		return
	}
	if err := m.opts.Store.SaveResponse(context.WithoutCancel(ctx), job.ID, job.Process.Identifier, resp.Status.State.Name(), doc, resp.Status.CreationTime); err != nil {
		m.opts.Logger.Error("could not store response", "job", job.ID, "error", err)
	}
}

// finish audits a terminal job and schedules its removal from memory.
func (m *Manager) finish(job *Job, resp wps.ExecuteResponse) {
	line := map[string]string{
		"job":     job.ID,
		"state":   resp.Status.State.Name(),
		"created": resp.Status.CreationTime.UTC().Format(time.RFC3339Nano),
	}
	if job.Subject != "" {
		line["subject"] = job.Subject
	}
	if failed, ok := resp.Status.State.(wps.Failed); ok {
		line["error"] = failed.Report.Error()
	}
	labels := map[string]string{"app": "wpsd", "process": job.Process.Identifier}
	if err := m.opts.Audit.WriteLog(context.Background(), labels, line); err != nil {
		m.opts.Logger.Warn("could not write audit log", "job", job.ID, "error", err)
	}

	job.complete()
	time.AfterFunc(m.opts.Retention, func() { m.jobs.remove(job.ID) })
}
