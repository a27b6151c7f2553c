// Package sizex parses human-readable byte sizes such as "50MB" or "512kb",
// the format accepted by the uploader's max-size attribute.
package sizex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

const (
	KB int64 = 1 << 10
	MB int64 = 1 << 20
	GB int64 = 1 << 30
)

var units = map[string]int64{
	"":   1,
	"b":  1,
	"kb": KB,
	"mb": MB,
	"gb": GB,
}

// Parse converts a human-readable size like "50MB", "2 gb" or "1024" (plain
// bytes) to a byte count. The unit is case-insensitive; fractional values
// ("1.5MB") are accepted. Malformed input yields common.ErrInvalidInput.
func Parse(s string) (int64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return 0, fmt.Errorf("empty size: %w", common.ErrInvalidInput)
	}

	numEnd := len(trimmed)
	for i, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' {
			numEnd = i
			break
		}
	}

	numPart := trimmed[:numEnd]
	unitPart := strings.TrimSpace(trimmed[numEnd:])

	mult, ok := units[unitPart]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q: %w", unitPart, common.ErrInvalidInput)
	}

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("bad size value %q: %w", s, common.ErrInvalidInput)
	}

	return int64(value * float64(mult)), nil
}

// Format renders a byte count in the largest unit that keeps the value >= 1.
func Format(n int64) string {
	switch {
	case n >= GB:
		return trimZero(float64(n)/float64(GB)) + "GB"
	case n >= MB:
		return trimZero(float64(n)/float64(MB)) + "MB"
	case n >= KB:
		return trimZero(float64(n)/float64(KB)) + "KB"
	default:
		return fmt.Sprintf("%dB", n)
	}
}

func trimZero(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
