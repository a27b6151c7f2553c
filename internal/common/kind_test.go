package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf_MapsSentinels(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{ErrInvalidInput, KindInvalidInput},
		{ErrNotFound, KindNotFound},
		{ErrUnsupported, KindUnsupported},
		{ErrTooLarge, KindTooLarge},
		{ErrEntitlementDenied, KindEntitlementDenied},
		{ErrServiceBusy, KindServiceBusy},
		{ErrTimeout, KindTimeout},
		{ErrRemoteFailure, KindRemoteFailure},
		{ErrCancelled, KindCancelled},
		{ErrInternal, KindInternal},
	}

	for _, tc := range tests {
		require.Equal(t, tc.want, KindOf(tc.err), "kind for %v", tc.err)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("resolving file: %w", ErrNotFound)
	require.Equal(t, KindNotFound, KindOf(err))

	err = fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrTooLarge))
	require.Equal(t, KindTooLarge, KindOf(err))
}

func TestKindOf_UnknownAndNil(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.Equal(t, Kind(""), KindOf(nil))
}
