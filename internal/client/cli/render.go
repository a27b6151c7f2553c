package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
)

// renderer turns the republished job stream and the uploader warnings into
// terminal output: one progress bar per running job, colored terminal lines
// for outcomes.
type renderer struct {
	bus *eventbus.Bus
	out io.Writer

	mu        sync.Mutex
	bars      map[string]*progressbar.ProgressBar
	disposers []func()
}

func newRenderer(bus *eventbus.Bus, out io.Writer) *renderer {
	return &renderer{
		bus:  bus,
		out:  out,
		bars: make(map[string]*progressbar.ProgressBar),
	}
}

func (r *renderer) attach() {
	r.disposers = append(r.disposers,
		r.bus.Subscribe(events.TopicJobProgress, r.onProgress),
		r.bus.Subscribe(events.TopicJobCompleted, r.onCompleted),
		r.bus.Subscribe(events.TopicJobFailed, r.onFailed),
		r.bus.Subscribe(events.TopicJobCancelled, r.onCancelled),
		r.bus.Subscribe(events.TopicFilesAdapted, r.onFilesAdapted),
		r.bus.Subscribe(events.TopicModeChanged, r.onModeChanged),
		r.bus.Subscribe(events.TopicModeChangeError, r.onModeChangeError),
		r.bus.Subscribe(events.TopicHandlerError, r.onHandlerError),
	)
}

func (r *renderer) detach() {
	for _, dispose := range r.disposers {
		dispose()
	}
	r.disposers = nil
}

func (r *renderer) bar(jobID, description string) *progressbar.ProgressBar {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bar, ok := r.bars[jobID]; ok {
		return bar
	}
	bar := progressbar.NewOptions64(
		100,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(r.out, "\n")
		}),
	)
	r.bars[jobID] = bar
	return bar
}

func (r *renderer) dropBar(jobID string) {
	r.mu.Lock()
	bar, ok := r.bars[jobID]
	delete(r.bars, jobID)
	r.mu.Unlock()
	if ok {
		_ = bar.Finish()
	}
}

func (r *renderer) onProgress(payload any) {
	ev, ok := payload.(events.JobProgress)
	if !ok {
		return
	}
	bar := r.bar(ev.JobID, string(ev.ServiceKind))
	_ = bar.Set64(int64(ev.Percent))
}

func (r *renderer) onCompleted(payload any) {
	ev, ok := payload.(events.JobCompleted)
	if !ok {
		return
	}
	r.dropBar(ev.JobID)
	color.New(color.FgGreen).Fprintf(r.out, "✓ %s done: %s\n", ev.ServiceKind, ev.Message)
	for _, id := range ev.OutputFileIDs {
		fmt.Fprintf(r.out, "  output %s\n", id)
	}
}

func (r *renderer) onFailed(payload any) {
	ev, ok := payload.(events.JobFailed)
	if !ok {
		return
	}
	r.dropBar(ev.JobID)
	color.New(color.FgRed).Fprintf(r.out, "✗ %s failed (%s): %s\n", ev.ServiceKind, ev.Kind, ev.Message)
}

func (r *renderer) onCancelled(payload any) {
	ev, ok := payload.(events.JobCancelled)
	if !ok {
		return
	}
	r.dropBar(ev.JobID)
	color.New(color.FgYellow).Fprintf(r.out, "⚠ %s cancelled: %s\n", ev.ServiceKind, ev.Reason)
}

func (r *renderer) onFilesAdapted(payload any) {
	ev, ok := payload.(events.FilesAdapted)
	if !ok {
		return
	}
	if ev.Discarded > 0 {
		color.New(color.FgYellow).Fprintf(r.out, "⚠ %d file(s) discarded (%s), %d kept\n",
			ev.Discarded, ev.Reason, ev.Kept)
	}
	if len(ev.Duplicates) > 0 {
		color.New(color.FgCyan).Fprintf(r.out, "ℹ duplicate content detected (%d match(es))\n",
			len(ev.Duplicates))
	}
}

func (r *renderer) onModeChanged(payload any) {
	ev, ok := payload.(events.ModeChanged)
	if !ok {
		return
	}
	fmt.Fprintf(r.out, "mode: %s → %s (%s)\n", ev.OldMode, ev.NewMode, ev.TriggeredBy)
}

func (r *renderer) onModeChangeError(payload any) {
	ev, ok := payload.(events.ModeChangeError)
	if !ok {
		return
	}
	color.New(color.FgRed).Fprintf(r.out, "✗ mode change to %q rejected: %s\n", ev.Requested, ev.Error)
}

func (r *renderer) onHandlerError(payload any) {
	ev, ok := payload.(events.HandlerError)
	if !ok {
		return
	}
	color.New(color.FgRed).Fprintf(r.out, "✗ handler on %q panicked: %s\n", ev.Topic, ev.Message)
}
