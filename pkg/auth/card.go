package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/sauerbraten/anonauth/pkg/shamir"
)

// Card is the proving side of the protocol. It only holds its credential and never changes.
type Card struct {
	credential Credential
}

func NewCard(credential Credential) *Card {
	cp := make(Credential, len(credential))
	for i, p := range credential {
		cp[i] = shamir.NewPoint(p.X, p.Y)
	}
	return &Card{credential: cp}
}

// Epochs returns how many epochs the card was provisioned for.
func (c *Card) Epochs() int {
	return len(c.credential)
}

// Authenticate answers a door's broadcast. If the card is revoked, the error wraps
// ErrShareCollision; if the broadcast's hash doesn't match the secret the card derives,
// the error wraps ErrBroadcastIntegrity and no response is computed.
func (c *Card) Authenticate(broadcast []byte) ([]byte, error) {
	b, err := ParseBroadcast(broadcast)
	if err != nil {
		return nil, err
	}

	k := len(b.Points)
	if k >= len(c.credential) {
		return nil, fmt.Errorf("%w: epoch %d, card has %d epochs", ErrNotProvisioned, k, len(c.credential))
	}

	points := append(b.Points, c.credential[k])
	secret := shamir.FromPoints(points)

	hash, err := secret.Hash()
	if err != nil {
		return nil, collision(err)
	}
	if subtle.ConstantTimeCompare(hash, b.SecretHash) != 1 {
		return nil, ErrBroadcastIntegrity
	}

	response, err := secret.HMAC(b.Challenge)
	if err != nil {
		return nil, collision(err)
	}
	return response, nil
}

func collision(err error) error {
	if errors.Is(err, shamir.ErrNoModularInverse) {
		return fmt.Errorf("%w: %w", ErrShareCollision, err)
	}
	return err
}
