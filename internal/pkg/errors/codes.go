package errors

import "net/http"

var (
	ErrUpstreamUnavailable = New(
		"UPSTREAM_UNAVAILABLE",
		"Upstream provider unavailable",
		http.StatusBadGateway,
	)

	ErrUpstreamRejected = New(
		"UPSTREAM_REJECTED",
		"Upstream provider rejected the request",
		http.StatusBadGateway,
	)

	ErrNoViableCandidate = New(
		"NO_VIABLE_CANDIDATE",
		"no route found",
		http.StatusBadRequest,
	)

	ErrConfigurationMissing = New(
		"CONFIGURATION_MISSING",
		"Required capability is not configured",
		http.StatusServiceUnavailable,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
