// Package asyncx runs background goroutines with panic recovery so a
// misbehaving service run cannot take down the whole client.
package asyncx

import (
	"context"
	"runtime/debug"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

// Go runs fn in a goroutine guarded by panic recovery.
func Go(logger logging.Logger, name string, fn func()) {
	go func() {
		defer Recover(logger, name)
		fn()
	}()
}

// Recover logs panic details without crashing the process.
func Recover(logger logging.Logger, name string) {
	if r := recover(); r != nil {
		logging.OrNop(logger).Error(context.Background(), "goroutine panic",
			"name", name, "panic", r, "stack", string(debug.Stack()))
	}
}
