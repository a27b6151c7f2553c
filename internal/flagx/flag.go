// Package flagx contains helpers for parsing a subset of the command line
// without tripping over flags owned by other packages.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the allowed flags.
//
// Two flag spellings are recognized:
//  1. separate value:      -c conf.json
//  2. inline value:        -config=conf.json
//
// Arguments for flags outside allowed are skipped, which lets several
// flag sets parse os.Args independently.
func FilterArgs(args []string, allowed []string) []string {
	names := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		names[name] = struct{}{}
	}

	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, inline := strings.Cut(arg, "="); inline {
			if _, ok := names[name]; ok {
				kept = append(kept, arg)
			}
			continue
		}

		if _, ok := names[arg]; ok {
			kept = append(kept, arg)
			// A following non-flag argument is this flag's value.
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				kept = append(kept, args[i+1])
				i++
			}
		}
	}
	return kept
}

// JsonConfigFlags extracts the config file path given via -c or -config.
// Other arguments are ignored. Returns "" when neither flag is present.
func JsonConfigFlags() string {
	var path string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return path
}
