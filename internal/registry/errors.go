package registry

import "errors"

// Error taxonomy for calls to the main-project registry. Callers decide
// retry behavior from these sentinels: ErrUnavailable is transient and
// retryable, ErrRejected and ErrAuthentication are not.
var (
	// ErrAuthentication means the service credentials were rejected. The
	// client re-authenticates once on token expiry before returning this.
	ErrAuthentication = errors.New("registry: authentication failed")

	// ErrUnavailable means the registry could not be reached or answered
	// with a server error. Safe to retry with backoff.
	ErrUnavailable = errors.New("registry: service unavailable")

	// ErrRejected means the registry refused the request (4xx). Retrying
	// the same request will not succeed.
	ErrRejected = errors.New("registry: request rejected")
)
