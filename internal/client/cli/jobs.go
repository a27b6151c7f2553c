package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
)

// Jobs prints the job table, oldest first.
func (a *App) Jobs(context.Context) error {
	jobs := a.mediator.Jobs()
	if len(jobs) == 0 {
		printlnFn("No jobs yet.")
		return nil
	}
	for _, job := range jobs {
		line := fmt.Sprintf("%s  %-14s %-9s %5.1f%%", job.ID, job.ServiceKind, job.State, job.ProgressPercent)
		if job.ErrorMessage != "" {
			line += fmt.Sprintf("  [%s] %s", job.ErrorKind, job.ErrorMessage)
		}
		printlnFn(line)
	}
	return nil
}

// CancelJob publishes a best-effort cancellation.
func (a *App) CancelJob(_ context.Context, jobID string) error {
	a.bus.Publish(events.TopicJobCancelRequest, events.JobCancelRequest{JobID: jobID})
	return nil
}

// Token reads an entitlement token without echo and installs it. An empty
// entry clears the grant set.
func (a *App) Token(context.Context) error {
	if a.tokenPolicy == nil {
		printlnFn("No entitlement secret configured; all capabilities are already granted.")
		return nil
	}

	token, err := GetSecret("Entitlement token", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.tokenPolicy.SetToken(strings.TrimSpace(string(token))); err != nil {
		return err
	}
	printlnFn("Entitlement token accepted.")
	return nil
}
