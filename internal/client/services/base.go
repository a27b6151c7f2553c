// Package services implements the feature services behind the PDFSmaller
// client: compression, conversion, OCR, AI summarize/translate and cloud
// transfer. Every service shares one lifecycle and one progress/error
// protocol, embodied by Base; concrete services differ only in their option
// schema, the engine they call and the shape of their result.
//
// Services are deliberately isolated: they never touch the FileStore or any
// widget. File bytes come in through file-request events and produced
// artifacts go out through file-persist events, both answered by the
// mediator.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

// DefaultFileTimeout bounds how long a service waits for the mediator to
// answer a file-request before failing the run.
const DefaultFileTimeout = 10 * time.Second

// StartInputs carries the job identity and the ordered input file set the
// mediator hands to Start.
type StartInputs struct {
	JobID   string
	FileIDs []string
}

// Service is the contract every feature service implements.
type Service interface {
	Kind() models.ServiceKind
	State() models.ServiceState

	// Initialize performs one-time bootstrap. Idempotent.
	Initialize() error

	// Start runs one job and returns when the run reaches a terminal
	// state. It refuses to start unless the service is idle.
	Start(ctx context.Context, inputs StartInputs, options any) error

	// Cancel requests a cooperative stop of the current run.
	Cancel()

	// Teardown releases resources; afterwards the state is uninitialized.
	Teardown()

	// SetFileTimeout tunes how long the service waits for the mediator to
	// answer file traffic. Non-positive values are ignored.
	SetFileTimeout(d time.Duration)
}

// Base carries the shared lifecycle, the progress/error protocol and the
// file-resolution plumbing. Concrete services embed it.
type Base struct {
	kind        models.ServiceKind
	bus         *eventbus.Bus
	logger      logging.Logger
	fileTimeout time.Duration

	mu          sync.Mutex
	state       models.ServiceState
	jobID       string
	lastPercent float64
	cancelRun   context.CancelFunc
	pending     map[string]chan any
	disposers   []func()
}

// NewBase wires a Base for the given kind. A zero fileTimeout selects
// DefaultFileTimeout.
func NewBase(kind models.ServiceKind, bus *eventbus.Bus, logger logging.Logger, fileTimeout time.Duration) *Base {
	if fileTimeout <= 0 {
		fileTimeout = DefaultFileTimeout
	}
	return &Base{
		kind:        kind,
		bus:         bus,
		logger:      logging.OrNop(logger).With("service", string(kind)),
		fileTimeout: fileTimeout,
		state:       models.StateUninitialized,
		pending:     make(map[string]chan any),
	}
}

func (b *Base) Kind() models.ServiceKind { return b.kind }

// SetFileTimeout overrides the file-resolution timeout for subsequent
// requests. Non-positive values are ignored.
func (b *Base) SetFileTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.fileTimeout = d
	b.mu.Unlock()
}

func (b *Base) State() models.ServiceState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Initialize subscribes to the response topics and moves to idle. Calling it
// again is a no-op.
func (b *Base) Initialize() error {
	b.mu.Lock()
	if b.state != models.StateUninitialized {
		b.mu.Unlock()
		return nil
	}
	b.state = models.StateIdle
	b.disposers = append(b.disposers,
		b.bus.Subscribe(events.TopicFileResponse, b.onFileResponse),
		b.bus.Subscribe(events.TopicFilePersistResponse, b.onPersistResponse),
	)
	b.mu.Unlock()

	b.publishStatus(models.StateIdle, "initialized")
	return nil
}

// Teardown cancels any current run, drops subscriptions and returns to
// uninitialized.
func (b *Base) Teardown() {
	b.Cancel()

	b.mu.Lock()
	disposers := b.disposers
	b.disposers = nil
	b.pending = make(map[string]chan any)
	b.state = models.StateUninitialized
	b.mu.Unlock()

	for _, dispose := range disposers {
		dispose()
	}
	b.publishStatus(models.StateUninitialized, "teardown")
}

// Cancel flags the current run. The run aborts at its next suspension point.
func (b *Base) Cancel() {
	b.mu.Lock()
	cancel := b.cancelRun
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// begin transitions idle -> running and returns the run context. The caller
// must end the run with complete, fail or cancelled.
func (b *Base) begin(ctx context.Context, inputs StartInputs) (context.Context, error) {
	b.mu.Lock()
	if b.state != models.StateIdle {
		state := b.state
		b.mu.Unlock()
		return nil, fmt.Errorf("service %s is %s: %w", b.kind, state, common.ErrServiceBusy)
	}
	runCtx, cancel := context.WithCancel(ctx)
	b.state = models.StateRunning
	b.jobID = inputs.JobID
	b.lastPercent = 0
	b.cancelRun = cancel
	b.mu.Unlock()

	b.publishStatus(models.StateRunning, "run started")
	b.Progress(0, "starting")
	return runCtx, nil
}

// finish ends the run in terminal state and settles back to idle.
func (b *Base) finish(terminal models.ServiceState) {
	b.mu.Lock()
	if b.cancelRun != nil {
		b.cancelRun()
		b.cancelRun = nil
	}
	b.state = terminal
	b.mu.Unlock()

	b.publishStatus(terminal, "run finished")

	b.mu.Lock()
	b.state = models.StateIdle
	b.jobID = ""
	b.mu.Unlock()

	b.publishStatus(models.StateIdle, "ready")
}

// Progress publishes <kind>:progress. Percent is clamped to [0,100] and kept
// monotonic within the run; regressions are dropped.
func (b *Base) Progress(percent float64, message string) {
	b.mu.Lock()
	if b.state != models.StateRunning {
		b.mu.Unlock()
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent < b.lastPercent {
		b.mu.Unlock()
		return
	}
	b.lastPercent = percent
	jobID := b.jobID
	b.mu.Unlock()

	b.bus.Publish(events.ServiceTopic(b.kind, events.SuffixProgress), events.Progress{
		ServiceKind: b.kind,
		JobID:       jobID,
		Percent:     percent,
		Message:     message,
	})
}

// Complete publishes 100% progress if the run has not reached it yet, then
// <kind>:complete, then settles to idle.
func (b *Base) Complete(outputFileIDs []string, result any, message string) {
	b.mu.Lock()
	jobID := b.jobID
	needFinalTick := b.lastPercent < 100
	b.mu.Unlock()

	if needFinalTick {
		b.Progress(100, "finishing")
	}

	b.bus.Publish(events.ServiceTopic(b.kind, events.SuffixComplete), events.Complete{
		ServiceKind:   b.kind,
		JobID:         jobID,
		OutputFileIDs: outputFileIDs,
		Result:        result,
		Message:       message,
	})
	b.finish(models.StateCompleted)
}

// Fail classifies err and publishes <kind>:error, then settles to idle.
func (b *Base) Fail(err error, runContext string) {
	b.mu.Lock()
	jobID := b.jobID
	b.mu.Unlock()

	b.logger.Warn(context.Background(), "run failed", "job_id", jobID, "err", err)
	b.bus.Publish(events.ServiceTopic(b.kind, events.SuffixError), events.ServiceError{
		ServiceKind: b.kind,
		JobID:       jobID,
		Kind:        common.KindOf(err),
		Message:     err.Error(),
		Context:     runContext,
	})
	b.finish(models.StateFailed)
}

// Cancelled publishes <kind>:cancelled, then settles to idle.
func (b *Base) Cancelled(reason string) {
	b.mu.Lock()
	jobID := b.jobID
	b.mu.Unlock()

	b.bus.Publish(events.ServiceTopic(b.kind, events.SuffixCancelled), events.Cancelled{
		ServiceKind: b.kind,
		JobID:       jobID,
		Reason:      reason,
	})
	b.finish(models.StateCancelled)
}

// End routes a run error to Fail or Cancelled depending on its kind.
func (b *Base) End(err error) {
	if errors.Is(err, common.ErrCancelled) || errors.Is(err, context.Canceled) {
		b.Cancelled("cancelled at suspension point")
		return
	}
	b.Fail(err, "run aborted")
}

func (b *Base) publishStatus(state models.ServiceState, runContext string) {
	b.mu.Lock()
	jobID := b.jobID
	b.mu.Unlock()

	b.bus.Publish(events.ServiceTopic(b.kind, events.SuffixStatusChanged), events.StatusChanged{
		ServiceKind: b.kind,
		JobID:       jobID,
		State:       state,
		Context:     runContext,
	})
}

func (b *Base) onFileResponse(payload any) {
	resp, ok := payload.(events.FileResponse)
	if !ok {
		return
	}
	b.deliver(resp.RequestID, resp)
}

func (b *Base) onPersistResponse(payload any) {
	resp, ok := payload.(events.FilePersistResponse)
	if !ok {
		return
	}
	b.deliver(resp.RequestID, resp)
}

func (b *Base) deliver(requestID string, payload any) {
	b.mu.Lock()
	ch, ok := b.pending[requestID]
	if ok {
		delete(b.pending, requestID)
	}
	b.mu.Unlock()

	if ok {
		ch <- payload
	}
}

func (b *Base) await(ctx context.Context, requestID string, publish func()) (any, error) {
	ch := make(chan any, 1)
	b.mu.Lock()
	b.pending[requestID] = ch
	timeout := b.fileTimeout
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, requestID)
		b.mu.Unlock()
	}()

	publish()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("awaiting file response: %w", common.ErrCancelled)
	case <-timer.C:
		return nil, fmt.Errorf("file request %s unanswered after %s: %w",
			requestID, timeout, common.ErrTimeout)
	}
}

// ResolveFile fetches the record behind fileID through the mediator.
func (b *Base) ResolveFile(ctx context.Context, fileID string) (*models.FileRecord, error) {
	requestID := uuid.NewString()

	resp, err := b.await(ctx, requestID, func() {
		b.bus.Publish(events.TopicFileRequest, events.FileRequest{
			RequestID: requestID,
			FileID:    fileID,
		})
	})
	if err != nil {
		return nil, err
	}

	fileResp := resp.(events.FileResponse)
	if fileResp.ErrorKind != "" {
		return nil, fmt.Errorf("resolving file %s: %s: %w",
			fileID, fileResp.ErrorMessage, sentinelFor(fileResp.ErrorKind))
	}
	return fileResp.Record, nil
}

// PersistOutput hands a produced artifact to the mediator and returns its
// new fileId.
func (b *Base) PersistOutput(ctx context.Context, req events.FilePersistRequest) (string, error) {
	req.RequestID = uuid.NewString()
	if req.Source == "" {
		req.Source = models.SourceServiceOutput
	}

	resp, err := b.await(ctx, req.RequestID, func() {
		b.bus.Publish(events.TopicFilePersistRequest, req)
	})
	if err != nil {
		return "", err
	}

	persistResp := resp.(events.FilePersistResponse)
	if persistResp.ErrorKind != "" {
		return "", fmt.Errorf("persisting output %q: %s: %w",
			req.Name, persistResp.ErrorMessage, sentinelFor(persistResp.ErrorKind))
	}
	return persistResp.FileID, nil
}

// sentinelFor maps a wire kind back to a sentinel so errors.Is keeps working
// on this side of the bus.
func sentinelFor(kind common.Kind) error {
	switch kind {
	case common.KindInvalidInput:
		return common.ErrInvalidInput
	case common.KindNotFound:
		return common.ErrNotFound
	case common.KindUnsupported:
		return common.ErrUnsupported
	case common.KindTooLarge:
		return common.ErrTooLarge
	case common.KindEntitlementDenied:
		return common.ErrEntitlementDenied
	case common.KindServiceBusy:
		return common.ErrServiceBusy
	case common.KindTimeout:
		return common.ErrTimeout
	case common.KindRemoteFailure:
		return common.ErrRemoteFailure
	case common.KindCancelled:
		return common.ErrCancelled
	default:
		return common.ErrInternal
	}
}
