package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/sauerbraten/anonauth/pkg/shamir"
)

// State is everything needed to bring a door back after a restart.
type State struct {
	MaxRevocations int
	Epoch          int
	Secrets        [][]*big.Int // coefficients, one polynomial per epoch
	Blacklist      []UserID
	Challenge      *big.Int
}

// State returns a snapshot of the door's state.
func (d *Door) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	secrets := make([][]*big.Int, len(d.secrets))
	for i, s := range d.secrets {
		// the door only ever holds coefficient-backed secrets
		secrets[i], _ = s.Coefficients()
	}

	return State{
		MaxRevocations: d.epoch.Max(),
		Epoch:          d.epoch.Index(),
		Secrets:        secrets,
		Blacklist:      append([]UserID(nil), d.blacklist...),
		Challenge:      new(big.Int).Set(d.challenge),
	}
}

// Restore creates a door from a snapshot taken with State. The public share set is
// recomputed; if the snapshot has no challenge, a fresh one is drawn.
func Restore(s State, opts ...Option) (*Door, error) {
	if s.MaxRevocations < 0 || s.MaxRevocations > MaxPublicPoints {
		return nil, fmt.Errorf("%w: max. revocations must be in [0, %d], got %d", ErrInvalidArgument, MaxPublicPoints, s.MaxRevocations)
	}
	if s.Epoch < 0 || s.Epoch > s.MaxRevocations {
		return nil, fmt.Errorf("%w: epoch %d out of range [0, %d]", ErrInvalidArgument, s.Epoch, s.MaxRevocations)
	}
	if len(s.Secrets) != s.MaxRevocations+1 {
		return nil, fmt.Errorf("%w: need %d secrets, got %d", ErrInvalidArgument, s.MaxRevocations+1, len(s.Secrets))
	}
	if len(s.Blacklist) > s.Epoch {
		return nil, fmt.Errorf("%w: %d revoked users at epoch %d", ErrInvalidArgument, len(s.Blacklist), s.Epoch)
	}

	d := &Door{
		rand:      rand.Reader,
		epoch:     Epoch{k: s.Epoch, max: s.MaxRevocations},
		blacklist: append([]UserID(nil), s.Blacklist...),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.secrets = make([]*shamir.Secret, len(s.Secrets))
	for i, c := range s.Secrets {
		if len(c) != i+1 {
			return nil, fmt.Errorf("%w: secret for epoch %d needs %d coefficients, got %d", ErrInvalidArgument, i, i+1, len(c))
		}
		d.secrets[i] = shamir.FromCoefficients(c)
	}

	seen := map[UserID]bool{}
	for _, user := range d.blacklist {
		err := d.checkUser(user)
		if err != nil {
			return nil, err
		}
		if seen[user] {
			return nil, fmt.Errorf("%w: user %d revoked twice", ErrInvalidArgument, user)
		}
		seen[user] = true
	}

	public, err := newShareSet(d.current(), d.blacklist, s.Epoch)
	if err != nil {
		return nil, err
	}
	d.public = public

	if s.Challenge == nil {
		err = d.rotateChallenge()
		if err != nil {
			return nil, err
		}
	} else {
		if s.Challenge.Sign() < 0 || s.Challenge.BitLen() > 8*ChallengeSize {
			return nil, fmt.Errorf("%w: challenge %s does not fit %d bytes", ErrInvalidArgument, s.Challenge, ChallengeSize)
		}
		d.challenge = new(big.Int).Set(s.Challenge)
	}

	return d, nil
}
