package entity

import (
	"fmt"
	"net/url"
	"strings"

	"chainlist-rpcs/internal/pkg/apperrors"
)

// PlaceholderMarker is the substring chainlist leaves in RPC URLs whose credential has not been filled in.
const PlaceholderMarker = "API_KEY"

// RPCURL represents a typed URL for an RPC endpoint.
type RPCURL string

// NewRPCURL creates a new RPCURL instance.
func NewRPCURL(rawURL string) (RPCURL, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("%w: rpc url cannot be empty", apperrors.ErrInvalidInput)
	}

	// A placeholder may sit in the host ("https://${API_KEY}.example.com"), which no URL parser accepts.
	// Such URLs are kept so they can be reported, and only their scheme is checked.
	if strings.Contains(rawURL, PlaceholderMarker) {
		scheme, rest, found := strings.Cut(rawURL, "://")
		if !found || rest == "" {
			return "", fmt.Errorf("%w: invalid rpc url format '%s'", apperrors.ErrInvalidInput, rawURL)
		}
		if _, err := TransportForScheme(scheme); err != nil {
			return "", fmt.Errorf("rpc url '%s': %w", rawURL, err)
		}
		return RPCURL(rawURL), nil
	}

	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid rpc url format '%s': %v", apperrors.ErrInvalidInput, rawURL, err)
	}

	if _, err := TransportForScheme(u.Scheme); err != nil {
		return "", fmt.Errorf("rpc url '%s': %w", rawURL, err)
	}

	return RPCURL(rawURL), nil
}

// String returns the string representation of the RPCURL.
func (r RPCURL) String() string {
	return string(r)
}

// Transport is the wire transport used to reach an endpoint.
type Transport string

const (
	TransportHTTP      Transport = "http"
	TransportWebSocket Transport = "websocket"
)

// TransportForScheme maps a URL scheme to its transport.
func TransportForScheme(scheme string) (Transport, error) {
	switch strings.ToLower(scheme) {
	case "http", "https":
		return TransportHTTP, nil
	case "ws", "wss":
		return TransportWebSocket, nil
	default:
		return "", fmt.Errorf("%w: unsupported scheme '%s'", apperrors.ErrInvalidInput, scheme)
	}
}

// Endpoint is one candidate RPC address of a chain. The transport is resolved once, when the endpoint is built.
type Endpoint struct {
	URL       RPCURL    `json:"url"`
	Transport Transport `json:"transport"`
}

// NewEndpoint validates rawURL and resolves its transport from the scheme.
func NewEndpoint(rawURL string) (Endpoint, error) {
	rpcURL, err := NewRPCURL(strings.TrimSpace(rawURL))
	if err != nil {
		return Endpoint{}, err
	}

	scheme, _, _ := strings.Cut(rpcURL.String(), "://")
	transport, err := TransportForScheme(scheme)
	if err != nil {
		return Endpoint{}, err
	}

	return Endpoint{URL: rpcURL, Transport: transport}, nil
}

// RequiresSecret reports whether the URL still carries an unresolved credential placeholder.
func (e Endpoint) RequiresSecret() bool {
	return strings.Contains(e.URL.String(), PlaceholderMarker)
}

// String returns the endpoint URL.
func (e Endpoint) String() string {
	return e.URL.String()
}
