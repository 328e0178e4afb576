// Package common defines shared constants and sentinel errors used across
// client and server layers of GophSocial. Callers should use errors.Is to
// match these values; services wrap them with a human-readable detail, e.g.
//
//	fmt.Errorf("%w: name is required", common.ErrorValidation)
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorValidation         = errors.New("validation error")
	ErrorDuplicateEmail     = errors.New("email already exists")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorForbidden          = errors.New("forbidden")
	ErrorConflict           = errors.New("conflict")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
