package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalString(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"10s"`), &d))
	require.Equal(t, 10*time.Second, d.Duration)
}

func TestDuration_UnmarshalNanoseconds(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`3000000000`), &d))
	require.Equal(t, 3*time.Second, d.Duration)
}

func TestDuration_UnmarshalInvalid(t *testing.T) {
	var d Duration
	require.Error(t, json.Unmarshal([]byte(`"abc"`), &d))
	require.Error(t, json.Unmarshal([]byte(`true`), &d))
}

func TestDuration_RoundTrip(t *testing.T) {
	in := Duration{90 * time.Second}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Duration
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in.Duration, out.Duration)
}
