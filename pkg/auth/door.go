package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/sauerbraten/anonauth/pkg/shamir"
)

// Door is the verifying side of the protocol. It is safe for concurrent use; all state changes
// happen under one lock, so a broadcast and the check of its response see consistent state
// as long as no revocation or challenge rotation happened in between.
type Door struct {
	mu sync.Mutex

	rand      io.Reader
	secrets   []*shamir.Secret // index = epoch = polynomial degree
	epoch     Epoch
	blacklist []UserID
	public    ShareSet
	challenge *big.Int
}

type Option func(*Door)

// WithRand sets the source of randomness used for secrets and challenges.
// The default is crypto/rand.Reader.
func WithRand(r io.Reader) Option {
	return func(d *Door) {
		d.rand = r
	}
}

// NewDoor sets up a door supporting up to maxRevocations revocations.
func NewDoor(maxRevocations int, opts ...Option) (*Door, error) {
	if maxRevocations < 0 || maxRevocations > MaxPublicPoints {
		return nil, fmt.Errorf("%w: max. revocations must be in [0, %d], got %d", ErrInvalidArgument, MaxPublicPoints, maxRevocations)
	}

	d := &Door{
		rand:  rand.Reader,
		epoch: NewEpoch(maxRevocations),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.secrets = make([]*shamir.Secret, 0, maxRevocations+1)
	for i := 0; i <= maxRevocations; i++ {
		s, err := shamir.RandomSecret(d.rand, i+1)
		if err != nil {
			return nil, fmt.Errorf("auth: generating secret for epoch %d: %w", i, err)
		}
		d.secrets = append(d.secrets, s)
	}

	err := d.rotateChallenge()
	if err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Door) checkUser(user UserID) error {
	if int(user) <= d.epoch.Max() {
		return fmt.Errorf("%w: user ID %d must be greater than %d", ErrInvalidArgument, user, d.epoch.Max())
	}
	return nil
}

// PrivatePoints returns the credential to hand out to the given user: the user's point on
// every epoch's polynomial.
func (d *Door) PrivatePoints(user UserID) (Credential, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.checkUser(user)
	if err != nil {
		return nil, err
	}

	x := big.NewInt(int64(user))
	points := make(Credential, 0, len(d.secrets))
	for i, s := range d.secrets {
		p, err := s.Sample(x)
		if err != nil {
			return nil, fmt.Errorf("auth: sampling epoch %d for user %d: %w", i, user, err)
		}
		points = append(points, p)
	}

	return points, nil
}

// Revoke moves the door to the next epoch and publishes the user's share of it,
// so the user's card can no longer reconstruct the secret.
func (d *Door) Revoke(user UserID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.checkUser(user)
	if err != nil {
		return err
	}
	if d.isRevoked(user) {
		return fmt.Errorf("%w: user %d is already revoked", ErrInvalidArgument, user)
	}

	next, err := d.epoch.Advance()
	if err != nil {
		return err
	}

	blacklist := make([]UserID, len(d.blacklist), len(d.blacklist)+1)
	copy(blacklist, d.blacklist)
	blacklist = append(blacklist, user)

	public, err := newShareSet(d.secrets[next.Index()], blacklist, next.Index())
	if err != nil {
		return err
	}

	d.epoch, d.blacklist, d.public = next, blacklist, public
	return nil
}

func (d *Door) current() *shamir.Secret {
	return d.secrets[d.epoch.Index()]
}

// Broadcast returns the door's current broadcast message.
func (d *Door) Broadcast() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	hash, err := d.current().Hash()
	if err != nil {
		return nil, err
	}

	return Broadcast{
		Points:     d.public.points,
		SecretHash: hash,
		Challenge:  d.challenge,
	}.MarshalBinary()
}

// CheckResponse reports whether response is the correct answer to the current challenge.
// It does not rotate the challenge; see Verify.
func (d *Door) CheckResponse(response []byte) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.checkResponse(response)
}

func (d *Door) checkResponse(response []byte) bool {
	expected, err := d.current().HMAC(d.challenge)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, response)
}

// Verify checks the response and, if it is correct, rotates the challenge so the same
// response can't be replayed. Both happen atomically.
func (d *Door) Verify(response []byte) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.checkResponse(response) {
		return false, nil
	}
	return true, d.rotateChallenge()
}

// RotateChallenge replaces the current challenge with a fresh random one.
func (d *Door) RotateChallenge() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.rotateChallenge()
}

func (d *Door) rotateChallenge() error {
	c, err := randomChallenge(d.rand)
	if err != nil {
		return err
	}
	d.challenge = c
	return nil
}

// randomChallenge draws field elements until one fits the 16-byte challenge field.
func randomChallenge(r io.Reader) (*big.Int, error) {
	for {
		c, err := shamir.RandomElement(r)
		if err != nil {
			return nil, fmt.Errorf("auth: generating challenge: %w", err)
		}
		if c.BitLen() <= 8*ChallengeSize {
			return c, nil
		}
	}
}

func (d *Door) Epoch() Epoch {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.epoch
}

// Blacklist returns the revoked users in order of revocation.
func (d *Door) Blacklist() []UserID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]UserID(nil), d.blacklist...)
}

// IsRevoked reports whether user is on the blacklist.
func (d *Door) IsRevoked(user UserID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRevoked(user)
}

func (d *Door) isRevoked(user UserID) bool {
	for _, revoked := range d.blacklist {
		if revoked == user {
			return true
		}
	}
	return false
}

func (d *Door) PublicShares() ShareSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.public
}
