// Package client contains the client-side transport and local storage
// bootstrap for GophSocial.
//
// Client is the API contract, one method per REST route. HTTPClient
// implements it over net/http: it attaches the bearer token returned by
// its token supplier, retries idempotent GETs with exponential backoff and
// maps error statuses to sentinel errors (ErrUnauthorized, ErrForbidden,
// ErrNotFound, ErrConflict, ErrBadRequest, ErrServer). Transport failures
// are reported as ErrUnavailable.
//
// InitDatabase opens the local SQLite session database and applies the
// embedded goose migrations.
package client
