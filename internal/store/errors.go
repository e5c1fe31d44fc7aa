package store

import "errors"

// Sentinel errors shared across store implementations.
var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrTenantAlreadyExists  = errors.New("tenant already exists")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrWorkspaceNotFound    = errors.New("workspace not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrMembershipExists     = errors.New("membership already exists")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrBoardNotFound        = errors.New("board not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrAlreadyExists        = errors.New("record already exists")
)

// Error classes. Resolution routes on these rather than on concrete
// backend errors: unauthenticated and rate-limited both send the user
// back to login, everything else resolves to no-access or degrades the
// affected aggregation branch.
var (
	// ErrUnauthenticated indicates the backend rejected the call because
	// the session is missing or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRateLimited indicates a transient provider-level throttle.
	ErrRateLimited = errors.New("rate limited")

	// ErrAccessDenied indicates the caller resolved but is not allowed.
	ErrAccessDenied = errors.New("access denied")

	// ErrTransient indicates a network or backend failure that is safe
	// to retry or degrade around.
	ErrTransient = errors.New("transient backend failure")
)

// IsAuthError reports whether err belongs to the class of failures that
// re-authentication resolves (missing/expired session or throttling).
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrRateLimited)
}

// IsNotFound reports whether err is any of the per-entity not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound) ||
		errors.Is(err, ErrOrganizationNotFound) ||
		errors.Is(err, ErrWorkspaceNotFound) ||
		errors.Is(err, ErrMembershipNotFound) ||
		errors.Is(err, ErrInvitationNotFound) ||
		errors.Is(err, ErrBoardNotFound)
}

// IsTransient reports whether err is safe to retry or to degrade to an
// empty partial result during aggregation.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
