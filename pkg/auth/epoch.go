package auth

import (
	"fmt"
	"math/big"

	"github.com/sauerbraten/anonauth/pkg/shamir"
)

// Epoch is the current revocation generation: the degree of the polynomial in force.
// It counts from 0 up to the maximum number of revocations and never goes back.
type Epoch struct {
	k, max int
}

func NewEpoch(max int) Epoch {
	return Epoch{max: max}
}

func (e Epoch) Index() int { return e.k }

func (e Epoch) Max() int { return e.max }

// Remaining returns how many revocations are still possible.
func (e Epoch) Remaining() int { return e.max - e.k }

func (e Epoch) Final() bool { return e.k == e.max }

// Advance returns the next epoch.
func (e Epoch) Advance() (Epoch, error) {
	if e.Final() {
		return e, fmt.Errorf("%w: epoch %d is the last one", ErrRevocationsExhausted, e.k)
	}
	return Epoch{k: e.k + 1, max: e.max}, nil
}

func (e Epoch) String() string {
	return fmt.Sprintf("%d/%d", e.k, e.max)
}

// ShareSet is the set of points a door publishes during one epoch.
type ShareSet struct {
	points []shamir.Point
}

// newShareSet computes the k public points for secret: one per blacklisted user, in blacklist
// order, then fillers at x = 1, 2, 3, ... until there are k points.
func newShareSet(secret *shamir.Secret, blacklist []UserID, k int) (ShareSet, error) {
	if len(blacklist) > k {
		return ShareSet{}, fmt.Errorf("auth: %d revoked users but only %d public points at this epoch", len(blacklist), k)
	}

	points := make([]shamir.Point, 0, k)
	for _, user := range blacklist {
		p, err := secret.Sample(big.NewInt(int64(user)))
		if err != nil {
			return ShareSet{}, err
		}
		points = append(points, p)
	}

	for x := int64(1); len(points) < k; x++ {
		p, err := secret.Sample(big.NewInt(x))
		if err != nil {
			return ShareSet{}, err
		}
		points = append(points, p)
	}

	return ShareSet{points: points}, nil
}

func (s ShareSet) Len() int { return len(s.points) }

// Points returns a copy of the published points.
func (s ShareSet) Points() []shamir.Point {
	points := make([]shamir.Point, len(s.points))
	for i, p := range s.points {
		points[i] = shamir.NewPoint(p.X, p.Y)
	}
	return points
}
