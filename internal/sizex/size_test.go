package sizex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"50MB", 50 * MB},
		{"50mb", 50 * MB},
		{" 2 GB ", 2 * GB},
		{"512KB", 512 * KB},
		{"1024", 1024},
		{"10b", 10},
		{"1.5MB", MB + MB/2},
		{"0", 0},
	}

	for _, tc := range tests {
		got, err := Parse(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		require.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "MB", "12XB", "abc", "-5MB", "1..2MB"} {
		_, err := Parse(in)
		require.ErrorIs(t, err, common.ErrInvalidInput, "input %q", in)
	}
}

func TestFormat(t *testing.T) {
	require.Equal(t, "50MB", Format(50*MB))
	require.Equal(t, "1.5MB", Format(MB+MB/2))
	require.Equal(t, "2GB", Format(2*GB))
	require.Equal(t, "512KB", Format(512*KB))
	require.Equal(t, "100B", Format(100))
}
