package common

import "errors"

// Kind is the stable failure classification carried in error events and job
// records. It is a name, not a type: components compare kinds, user-facing
// layers translate them to messages, and raw error details stay in logs.
type Kind string

const (
	KindInvalidInput      Kind = "InvalidInput"
	KindNotFound          Kind = "NotFound"
	KindUnsupported       Kind = "Unsupported"
	KindTooLarge          Kind = "TooLarge"
	KindEntitlementDenied Kind = "EntitlementDenied"
	KindServiceBusy       Kind = "ServiceBusy"
	KindTimeout           Kind = "Timeout"
	KindRemoteFailure     Kind = "RemoteFailure"
	KindCancelled         Kind = "Cancelled"
	KindInternal          Kind = "InternalError"
)

// KindOf maps err to its failure kind by unwrapping to one of the package
// sentinels. Unknown errors classify as KindInternal, nil as the empty kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, ErrTooLarge):
		return KindTooLarge
	case errors.Is(err, ErrEntitlementDenied):
		return KindEntitlementDenied
	case errors.Is(err, ErrServiceBusy):
		return KindServiceBusy
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrRemoteFailure):
		return KindRemoteFailure
	case errors.Is(err, ErrCancelled):
		return KindCancelled
	default:
		return KindInternal
	}
}
