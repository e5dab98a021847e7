// Package auth provides the minimal token service the API surface needs:
// issuing and validating HMAC-signed bearer tokens carrying a user ID.
package auth

import "errors"

// Token validation errors
var (
	// ErrInvalidToken indicates the token is malformed, carries an invalid
	// signature, or fails validation for a reason other than timing.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token's expiry has passed.
	ErrExpiredToken = errors.New("token has expired")

	// ErrTokenNotYetValid indicates the token's not-before time is in the
	// future.
	ErrTokenNotYetValid = errors.New("token not yet valid")
)
