// Package identity resolves the owner behind an HTTP request. The
// engine itself never authenticates; it trusts whatever the resolver
// in front of it decides.
package identity

import (
	"errors"
	"net/http"
	"strconv"
)

// ErrNoOwner means the request carries no resolvable owner.
var ErrNoOwner = errors.New("no owner identity on request")

// Resolver maps a request to the owning account id.
type Resolver interface {
	OwnerID(r *http.Request) (int64, error)
}

// HeaderResolver reads the owner id from a header set by the proxy or
// gateway that already authenticated the caller.
type HeaderResolver struct {
	Header string
}

// DefaultHeader is the owner id header used when none is configured.
const DefaultHeader = "X-Owner-ID"

func NewHeaderResolver(header string) *HeaderResolver {
	if header == "" {
		header = DefaultHeader
	}
	return &HeaderResolver{Header: header}
}

func (h *HeaderResolver) OwnerID(r *http.Request) (int64, error) {
	raw := r.Header.Get(h.Header)
	if raw == "" {
		return 0, ErrNoOwner
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrNoOwner
	}
	return id, nil
}

// StaticResolver always returns the same owner. Single-user
// deployments and tests use it.
type StaticResolver struct {
	ID int64
}

func (s StaticResolver) OwnerID(r *http.Request) (int64, error) {
	if s.ID < 1 {
		return 0, ErrNoOwner
	}
	return s.ID, nil
}
