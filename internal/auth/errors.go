package auth

import (
	"errors"

	apperrors "github.com/spec-kit/classroom-service/pkg/util"
)

// Sentinel errors returned by token verification. Callers pick acceptance
// rules (strict vs refresh) off the same decode primitive via errors.Is.
var (
	// ErrInvalidSignature covers unparseable tokens and signature mismatches.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired is returned by strict verification once exp has elapsed.
	ErrExpired = errors.New("token expired")
	// ErrRefreshWindowExceeded is returned when a token is past exp plus the
	// refresh grace window.
	ErrRefreshWindowExceeded = errors.New("token expired beyond refresh window")
	// ErrCryptoFault marks signing/verification faults unrelated to the
	// token's own validity, e.g. a missing signing key.
	ErrCryptoFault = errors.New("token crypto fault")
)

// WireError converts token verification errors into their stable wire
// representation.
func WireError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrExpired):
		return apperrors.NewTokenExpired()
	case errors.Is(err, ErrInvalidSignature):
		return apperrors.NewInvalidSignature()
	case errors.Is(err, ErrRefreshWindowExceeded):
		return apperrors.NewRefreshWindowExceeded()
	case errors.Is(err, ErrCryptoFault):
		return apperrors.NewCryptoFault(err)
	default:
		return apperrors.MapError(err)
	}
}
