package domain

import "errors"

var (
	// ErrChainNotFound means the requested chain was not found.
	ErrChainNotFound = errors.New("chain not found")

	// ErrUpstreamSourceFailure means an error occurred while fetching data from the upstream source (e.g., chainid.network).
	ErrUpstreamSourceFailure = errors.New("upstream source failure")
)
