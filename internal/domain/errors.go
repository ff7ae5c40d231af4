package domain

import "errors"

var (
	// ErrMalformedGeometry marks alert geometry that cannot be summarized:
	// a polygon ring with fewer than 3 points, or coordinates outside valid
	// lat/lon ranges. Not fatal to enrichment; the alert proceeds without a
	// geometry summary.
	ErrMalformedGeometry = errors.New("malformed geometry")

	// ErrStaleAlert marks an alert update whose sent timestamp is equal to
	// or earlier than the stored version. Stale updates are discarded
	// silently; the stored record stays unchanged.
	ErrStaleAlert = errors.New("stale alert event")

	// ErrInvalidAlert marks an alert payload that fails basic validation,
	// e.g. effective after expires or a missing identifier.
	ErrInvalidAlert = errors.New("invalid alert")

	// ErrRuleConfigInvalid marks a webhook rule with an unrecognized hazard
	// or unusable threshold. The rule is skipped; other rules still apply.
	ErrRuleConfigInvalid = errors.New("invalid webhook rule")

	// ErrDeliveryRejected marks a webhook endpoint response outside the 2xx
	// range. Recoverable: drives retry with backoff up to the attempt cap.
	ErrDeliveryRejected = errors.New("delivery rejected")

	// ErrDeliveryTimeout marks a webhook attempt that exceeded the
	// per-attempt timeout or failed to connect. Recoverable, like rejection.
	ErrDeliveryTimeout = errors.New("delivery timeout")
)
