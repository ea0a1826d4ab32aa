// Package auth implements the door and card sides of an anonymous, revocable access protocol.
//
// The mechanism relies on Shamir secret sharing: the door holds r+1 random polynomials, the one at
// index i having degree i. Every card is given one point on each polynomial, at x = its user ID.
// At epoch k the door broadcasts k public points on polynomial k, a hash of the polynomial's constant
// term (the "secret"), and a random challenge. A card adds its own point, which makes k+1 points:
// exactly enough to interpolate polynomial k and recover the secret. It checks the recovered secret
// against the broadcast hash (to detect a fake door) and answers with HMAC(secret, challenge).
// The door doesn't learn which card answered, only that the card knew the secret.
//
// Revoking a user advances the epoch and publishes that user's point on the new polynomial as one of
// the public points. The revoked card's own point then duplicates a public point, so it only has k
// distinct points, and interpolation hits a zero denominator. Cards report this as ErrShareCollision.
// Since user IDs are required to be larger than r, the filler points the door publishes at x = 1..r
// never collide with a genuine card's point.
package auth

import (
	"errors"

	"github.com/sauerbraten/anonauth/pkg/shamir"
)

// UserID identifies a card holder; it is the x coordinate of the holder's private points.
// It must be larger than the door's maximum number of revocations.
type UserID uint16

var (
	ErrInvalidArgument      = shamir.ErrInvalidArgument
	ErrShareCollision       = errors.New("auth: share collision (card is revoked)")
	ErrBroadcastIntegrity   = errors.New("auth: broadcast does not match derivable secret")
	ErrNotProvisioned       = errors.New("auth: card not provisioned for this epoch")
	ErrMalformedBroadcast   = errors.New("auth: malformed broadcast")
	ErrRevocationsExhausted = errors.New("auth: no revocations left")
)

// Denied reports whether err means the card was refused (revoked card or untrusted broadcast),
// as opposed to a malformed message or a local fault.
func Denied(err error) bool {
	return errors.Is(err, ErrShareCollision) || errors.Is(err, ErrBroadcastIntegrity)
}
