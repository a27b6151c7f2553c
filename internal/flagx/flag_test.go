package flagx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-x", "other"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "inline value",
			args:    []string{"--mode=batch", "-config=conf.json"},
			allowed: []string{"-config"},
			want:    []string{"-config=conf.json"},
		},
		{
			name:    "flag without value",
			args:    []string{"-v", "-c", "conf.json"},
			allowed: []string{"-v"},
			want:    []string{"-v"},
		},
		{
			name:    "value that looks like a flag is not consumed",
			args:    []string{"-c", "-other"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "nothing allowed",
			args:    []string{"-a", "1", "-b", "2"},
			allowed: nil,
			want:    []string{},
		},
		{
			name:    "bare positionals are skipped",
			args:    []string{"upload", "a.pdf", "-c", "conf.json"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FilterArgs(tc.args, tc.allowed))
		})
	}
}
