package config

import (
	"flag"
	"os"
	"time"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/flagx"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string   per-file size cap, human readable (default from Config)
//	-d string   default uploader mode, single or batch
//	-t int      file resolution timeout in seconds
//	-w int      progress watchdog window in seconds, 0 disables
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-d", "-t", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	maxFileSize := fs.String("m", sizex.Format(cfg.MaxFileBytes), "per-file size cap (e.g. 50MB)")
	fs.StringVar(&cfg.DefaultMode, "d", cfg.DefaultMode, "default uploader mode (single|batch)")
	fileTimeout := fs.Int("t", int(cfg.FileRequestTimeout.Seconds()), "file resolution timeout (in seconds)")
	watchdog := fs.Int("w", int(cfg.WatchdogWindow.Seconds()), "progress watchdog window (in seconds, 0 disables)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	size, err := sizex.Parse(*maxFileSize)
	if err != nil {
		panic(err)
	}
	cfg.MaxFileBytes = size
	cfg.FileRequestTimeout = time.Duration(*fileTimeout) * time.Second
	cfg.WatchdogWindow = time.Duration(*watchdog) * time.Second
}
