// Package mediator coordinates the orchestration core: it owns the job
// table, routes start requests to services, answers their file-resolution
// traffic against the FileStore and republishes their event streams as job
// events. It is the only component that both reads the store and talks to
// services.
package mediator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/asyncx"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/entitlement"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/filestore"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/services"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

// Options tunes mediator behavior.
type Options struct {
	// WatchdogWindow fails a running job whose progress stream stays silent
	// for longer than this. Zero disables the watchdog.
	WatchdogWindow time.Duration
}

// Mediator owns the job table and the service registry.
type Mediator struct {
	bus    *eventbus.Bus
	store  *filestore.Store
	policy entitlement.Policy
	logger logging.Logger
	opts   Options

	mu           sync.Mutex
	services     map[models.ServiceKind]services.Service
	jobs         map[string]*models.Job
	currentJob   map[models.ServiceKind]string
	lastActivity map[string]time.Time
	disposers    []func()
	started      bool

	runCtx    context.Context
	cancelRun context.CancelFunc
}

// New wires a mediator. A nil policy allows everything.
func New(bus *eventbus.Bus, store *filestore.Store, policy entitlement.Policy, logger logging.Logger, opts Options) *Mediator {
	if policy == nil {
		policy = entitlement.AllowAll()
	}
	return &Mediator{
		bus:          bus,
		store:        store,
		policy:       policy,
		logger:       logging.OrNop(logger).With("component", "mediator"),
		opts:         opts,
		services:     make(map[models.ServiceKind]services.Service),
		jobs:         make(map[string]*models.Job),
		currentJob:   make(map[models.ServiceKind]string),
		lastActivity: make(map[string]time.Time),
	}
}

// Register adds a service and initializes it. Must be called before Start.
func (m *Mediator) Register(svc services.Service) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("cannot register %s after start: %w", svc.Kind(), common.ErrInvalidInput)
	}
	if _, exists := m.services[svc.Kind()]; exists {
		m.mu.Unlock()
		return fmt.Errorf("service %s already registered: %w", svc.Kind(), common.ErrInvalidInput)
	}
	m.services[svc.Kind()] = svc
	m.mu.Unlock()

	return svc.Initialize()
}

// Start subscribes the mediator to the bus and, when configured, launches
// the progress watchdog. ctx bounds every job run.
func (m *Mediator) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil
	}
	m.started = true
	m.runCtx, m.cancelRun = context.WithCancel(ctx)

	m.disposers = append(m.disposers,
		m.bus.Subscribe(events.TopicServiceStartRequest, m.onStartRequest),
		m.bus.Subscribe(events.TopicJobCancelRequest, m.onCancelRequest),
		m.bus.Subscribe(events.TopicFileRequest, m.onFileRequest),
		m.bus.Subscribe(events.TopicFilePersistRequest, m.onPersistRequest),
	)
	for kind := range m.services {
		kind := kind
		m.disposers = append(m.disposers,
			m.bus.Subscribe(events.ServiceTopic(kind, events.SuffixStatusChanged), m.onStatusChanged),
			m.bus.Subscribe(events.ServiceTopic(kind, events.SuffixProgress), m.onProgress),
			m.bus.Subscribe(events.ServiceTopic(kind, events.SuffixComplete), m.onComplete),
			m.bus.Subscribe(events.ServiceTopic(kind, events.SuffixError), m.onError),
			m.bus.Subscribe(events.ServiceTopic(kind, events.SuffixCancelled), m.onCancelled),
		)
	}

	if m.opts.WatchdogWindow > 0 {
		asyncx.Go(m.logger, "progress-watchdog", func() { m.watchdog(m.runCtx) })
	}
	return nil
}

// Close cancels running jobs, tears services down and unsubscribes.
func (m *Mediator) Close() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	cancel := m.cancelRun
	disposers := m.disposers
	m.disposers = nil
	svcs := make([]services.Service, 0, len(m.services))
	for _, svc := range m.services {
		svcs = append(svcs, svc)
	}
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, dispose := range disposers {
		dispose()
	}
	for _, svc := range svcs {
		svc.Teardown()
	}
}

// Job returns a snapshot of the job record.
func (m *Mediator) Job(jobID string) (*models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", jobID, common.ErrNotFound)
	}
	return job.Clone(), nil
}

// Jobs snapshots every known job, newest last.
func (m *Mediator) Jobs() []*models.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, job.Clone())
	}
	sortJobsByStart(out)
	return out
}

func sortJobsByStart(jobs []*models.Job) {
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && jobs[j].CreatedAt.Before(jobs[j-1].CreatedAt); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}

func (m *Mediator) onStartRequest(payload any) {
	req, ok := payload.(events.ServiceStartRequest)
	if !ok {
		return
	}

	job := &models.Job{
		ID:           uuid.NewString(),
		ServiceKind:  req.ServiceKind,
		InputFileIDs: append([]string(nil), req.FileIDs...),
		Options:      req.Options,
		State:        models.JobQueued,
		CreatedAt:    time.Now(),
	}

	m.mu.Lock()
	svc, known := m.services[req.ServiceKind]
	m.jobs[job.ID] = job
	m.mu.Unlock()

	if !known {
		m.failJob(job.ID, common.KindNotFound,
			fmt.Sprintf("unknown service kind %q", req.ServiceKind))
		return
	}

	opts, ok := req.Options.(services.Options)
	if !ok {
		m.failJob(job.ID, common.KindInvalidInput,
			fmt.Sprintf("options for %s have unexpected type %T", req.ServiceKind, req.Options))
		return
	}
	if err := opts.Validate(); err != nil {
		m.failJob(job.ID, common.KindOf(err), err.Error())
		return
	}

	if err := m.checkEntitlement(opts, len(req.FileIDs)); err != nil {
		m.failJob(job.ID, common.KindEntitlementDenied, err.Error())
		return
	}

	m.mu.Lock()
	if currentID, busy := m.currentJob[req.ServiceKind]; busy {
		if current, ok := m.jobs[currentID]; ok && !current.State.Terminal() {
			m.mu.Unlock()
			m.failJob(job.ID, common.KindServiceBusy,
				fmt.Sprintf("service %s is still running job %s", req.ServiceKind, currentID))
			return
		}
	}
	m.currentJob[req.ServiceKind] = job.ID
	m.lastActivity[job.ID] = time.Now()
	ctx := m.runCtx
	m.mu.Unlock()

	asyncx.Go(m.logger, "job-"+job.ID, func() {
		err := svc.Start(ctx, services.StartInputs{JobID: job.ID, FileIDs: job.InputFileIDs}, req.Options)
		if err != nil {
			m.logger.Debug(context.Background(), "job ended with error", "job_id", job.ID, "err", err)
			// A run that got past begin already reported its outcome over the
			// bus and the job is terminal; failJob then no-ops. An error before
			// begin (bad input set, option bag of the wrong type) emits no
			// service events, so the job must be failed here or it would pin
			// the service busy forever.
			m.failJob(job.ID, common.KindOf(err), err.Error())
		}
	})
}

func (m *Mediator) checkEntitlement(opts services.Options, fileCount int) error {
	ctx := context.Background()
	if opts.RequiresServerProcessing() && !m.policy.Allows(ctx, entitlement.CapabilityServerProcessing) {
		return fmt.Errorf("server processing requires entitlement: %w", common.ErrEntitlementDenied)
	}
	if fileCount > 1 && !m.policy.Allows(ctx, entitlement.CapabilityBulkProcessing) {
		return fmt.Errorf("bulk processing of %d files requires entitlement: %w",
			fileCount, common.ErrEntitlementDenied)
	}
	return nil
}

// failJob marks a job failed before (or without) its service ever running.
func (m *Mediator) failJob(jobID string, kind common.Kind, message string) {
	now := time.Now()

	m.mu.Lock()
	job, ok := m.jobs[jobID]
	if !ok || job.State.Terminal() {
		m.mu.Unlock()
		return
	}
	job.State = models.JobFailed
	job.ErrorKind = kind
	job.ErrorMessage = message
	job.EndedAt = now
	kindOut := job.ServiceKind
	delete(m.lastActivity, jobID)
	m.mu.Unlock()

	m.bus.Publish(events.TopicJobFailed, events.JobFailed{
		JobID:       jobID,
		ServiceKind: kindOut,
		Kind:        kind,
		Message:     message,
	})
}

func (m *Mediator) onCancelRequest(payload any) {
	req, ok := payload.(events.JobCancelRequest)
	if !ok {
		return
	}

	m.mu.Lock()
	job, known := m.jobs[req.JobID]
	var svc services.Service
	if known && !job.State.Terminal() {
		svc = m.services[job.ServiceKind]
	}
	m.mu.Unlock()

	// Best-effort: unknown and already-terminal jobs are ignored.
	if svc != nil {
		svc.Cancel()
	}
}

func (m *Mediator) onFileRequest(payload any) {
	req, ok := payload.(events.FileRequest)
	if !ok {
		return
	}

	resp := events.FileResponse{RequestID: req.RequestID, FileID: req.FileID}
	record, err := m.store.Get(req.FileID)
	if err != nil {
		resp.ErrorKind = common.KindOf(err)
		resp.ErrorMessage = err.Error()
	} else {
		resp.Record = record
	}
	m.bus.Publish(events.TopicFileResponse, resp)
}

func (m *Mediator) onPersistRequest(payload any) {
	req, ok := payload.(events.FilePersistRequest)
	if !ok {
		return
	}

	resp := events.FilePersistResponse{RequestID: req.RequestID}
	fileID, err := m.store.Add(req.Bytes, models.FileMeta{
		Name:        req.Name,
		MimeType:    req.MimeType,
		Source:      req.Source,
		DerivedFrom: req.DerivedFrom,
	})
	if err != nil {
		resp.ErrorKind = common.KindOf(err)
		resp.ErrorMessage = err.Error()
	} else {
		resp.FileID = fileID
	}
	m.bus.Publish(events.TopicFilePersistResponse, resp)
}

func (m *Mediator) onStatusChanged(payload any) {
	ev, ok := payload.(events.StatusChanged)
	if !ok || ev.JobID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	job, known := m.jobs[ev.JobID]
	if !known || job.State.Terminal() {
		return
	}
	if ev.State == models.StateRunning && job.State == models.JobQueued {
		now := time.Now()
		job.State = models.JobRunning
		job.StartedAt = now
		m.lastActivity[ev.JobID] = now
	}
}

func (m *Mediator) onProgress(payload any) {
	ev, ok := payload.(events.Progress)
	if !ok {
		return
	}

	m.mu.Lock()
	job, known := m.jobs[ev.JobID]
	// Progress observed after a terminal state is stale; drop it.
	if !known || job.State.Terminal() {
		m.mu.Unlock()
		return
	}
	if ev.Percent >= job.ProgressPercent {
		job.ProgressPercent = ev.Percent
		job.ProgressMessage = ev.Message
	}
	m.lastActivity[ev.JobID] = time.Now()
	m.mu.Unlock()

	m.bus.Publish(events.TopicJobProgress, events.JobProgress{
		JobID:       ev.JobID,
		ServiceKind: ev.ServiceKind,
		Percent:     ev.Percent,
		Message:     ev.Message,
	})
}

func (m *Mediator) onComplete(payload any) {
	ev, ok := payload.(events.Complete)
	if !ok {
		return
	}
	now := time.Now()

	m.mu.Lock()
	job, known := m.jobs[ev.JobID]
	if !known || job.State.Terminal() {
		m.mu.Unlock()
		return
	}
	job.State = models.JobCompleted
	job.ProgressPercent = 100
	job.OutputFileIDs = append([]string(nil), ev.OutputFileIDs...)
	job.Result = ev.Result
	job.EndedAt = now
	delete(m.lastActivity, ev.JobID)
	m.mu.Unlock()

	m.bus.Publish(events.TopicJobCompleted, events.JobCompleted{
		JobID:         ev.JobID,
		ServiceKind:   ev.ServiceKind,
		OutputFileIDs: ev.OutputFileIDs,
		Result:        ev.Result,
		Message:       ev.Message,
	})
}

func (m *Mediator) onError(payload any) {
	ev, ok := payload.(events.ServiceError)
	if !ok {
		return
	}
	now := time.Now()

	m.mu.Lock()
	job, known := m.jobs[ev.JobID]
	if !known || job.State.Terminal() {
		m.mu.Unlock()
		return
	}
	job.State = models.JobFailed
	job.ErrorKind = ev.Kind
	job.ErrorMessage = ev.Message
	job.EndedAt = now
	delete(m.lastActivity, ev.JobID)
	m.mu.Unlock()

	m.bus.Publish(events.TopicJobFailed, events.JobFailed{
		JobID:       ev.JobID,
		ServiceKind: ev.ServiceKind,
		Kind:        ev.Kind,
		Message:     ev.Message,
	})
}

func (m *Mediator) onCancelled(payload any) {
	ev, ok := payload.(events.Cancelled)
	if !ok {
		return
	}
	now := time.Now()

	m.mu.Lock()
	job, known := m.jobs[ev.JobID]
	if !known || job.State.Terminal() {
		m.mu.Unlock()
		return
	}
	job.State = models.JobCancelled
	job.ErrorKind = common.KindCancelled
	job.ErrorMessage = ev.Reason
	job.EndedAt = now
	delete(m.lastActivity, ev.JobID)
	m.mu.Unlock()

	m.bus.Publish(events.TopicJobCancelled, events.JobCancelled{
		JobID:       ev.JobID,
		ServiceKind: ev.ServiceKind,
		Reason:      ev.Reason,
	})
}

// watchdog cancels jobs whose progress stream stalls. The stalled job still
// terminates through the service's cancelled path, tagged for diagnostics.
func (m *Mediator) watchdog(ctx context.Context) {
	interval := m.opts.WatchdogWindow / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-m.opts.WatchdogWindow)

		m.mu.Lock()
		type stalledJob struct {
			jobID string
			svc   services.Service
		}
		var stalled []stalledJob
		for jobID, last := range m.lastActivity {
			job, ok := m.jobs[jobID]
			if !ok || job.State != models.JobRunning || !last.Before(cutoff) {
				continue
			}
			m.logger.Warn(context.Background(), "job stalled", "job_id", jobID,
				"window", m.opts.WatchdogWindow)
			stalled = append(stalled, stalledJob{jobID, m.services[job.ServiceKind]})
			delete(m.lastActivity, jobID)
		}
		m.mu.Unlock()

		for _, s := range stalled {
			// The job fails as Timeout; the later cancelled event from the
			// service lands on a terminal job and is dropped.
			m.failJob(s.jobID, common.KindTimeout, "progress stalled")
			if s.svc != nil {
				s.svc.Cancel()
			}
		}
	}
}
