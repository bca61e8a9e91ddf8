package browser

import "github.com/pkg/errors"

// Failure conditions surfaced by sessions and page objects. Callers match
// them with errors.Is; every one of them is terminal for the running case.
var (
	// ErrElementNotFound: a required locator resolved to zero elements within the timeout.
	ErrElementNotFound = errors.New("element not found")

	// ErrAssertionFailed: an expected condition (visibility, URL) did not hold within the timeout.
	ErrAssertionFailed = errors.New("assertion failed")

	// ErrNetworkMockUnmatched: an interception rule never matched a request.
	ErrNetworkMockUnmatched = errors.New("network mock unmatched")

	// ErrNotNavigated: a DOM lookup was attempted before the first navigation.
	ErrNotNavigated = errors.New("no page loaded, call Navigate first")

	// ErrInvalidLocator: a locator failed construction-time validation.
	ErrInvalidLocator = errors.New("invalid locator")

	// ErrUnknownBackend: Config.Backend names no known automation runtime.
	ErrUnknownBackend = errors.New("unknown browser backend")
)
