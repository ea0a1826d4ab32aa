package shamir

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
)

// polynomial is the one primitive each secret representation has to provide.
type polynomial interface {
	sample(x *big.Int) (*big.Int, error)
}

// coefficients represent a polynomial by its coefficients, constant term first.
type coefficients []*big.Int

func (c coefficients) sample(x *big.Int) (*big.Int, error) {
	return Evaluate(c, x), nil
}

// samples represent a polynomial by points on it.
type samples []Point

func (s samples) sample(x *big.Int) (*big.Int, error) {
	return Interpolate(x, s)
}

// Secret is a polynomial-valued secret, either known by its coefficients (the door's view)
// or by enough points on it (the card's view). Both views derive identical values, hashes
// and HMACs for the same polynomial.
type Secret struct {
	poly polynomial
}

// RandomSecret creates a secret with a random value that needs k points to reconstruct,
// i.e. a random polynomial of degree k-1.
func RandomSecret(r io.Reader, k int) (*Secret, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: a secret needs at least one point, got %d", ErrInvalidArgument, k)
	}

	intercept, err := RandomElement(r)
	if err != nil {
		return nil, err
	}

	c, err := RandomPolynomial(r, k-1, intercept)
	if err != nil {
		return nil, err
	}

	return &Secret{poly: coefficients(c)}, nil
}

func FromCoefficients(c []*big.Int) *Secret {
	cp := make(coefficients, len(c))
	for i := range c {
		cp[i] = new(big.Int).Set(c[i])
	}
	return &Secret{poly: cp}
}

func FromPoints(points []Point) *Secret {
	cp := make(samples, len(points))
	for i := range points {
		cp[i] = NewPoint(points[i].X, points[i].Y)
	}
	return &Secret{poly: cp}
}

// Coefficients returns a copy of the coefficients if the secret is backed by them.
func (s *Secret) Coefficients() ([]*big.Int, bool) {
	c, ok := s.poly.(coefficients)
	if !ok {
		return nil, false
	}
	cp := make([]*big.Int, len(c))
	for i := range c {
		cp[i] = new(big.Int).Set(c[i])
	}
	return cp, true
}

// Sample returns the point of the polynomial at x.
func (s *Secret) Sample(x *big.Int) (Point, error) {
	y, err := s.poly.sample(x)
	if err != nil {
		return Point{}, err
	}
	return Point{X: new(big.Int).Set(x), Y: y}, nil
}

// Value returns the secret itself, the polynomial's constant term.
func (s *Secret) Value() (*big.Int, error) {
	return s.poly.sample(new(big.Int))
}

// Hash returns the SHA-256 hash of the secret's unsigned big-endian encoding.
func (s *Secret) Hash() ([]byte, error) {
	v, err := s.Value()
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(v.Bytes())
	return sum[:], nil
}

// HMAC computes HMAC-SHA256 over the challenge's unsigned big-endian encoding,
// keyed with the secret.
func (s *Secret) HMAC(challenge *big.Int) ([]byte, error) {
	v, err := s.Value()
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, v.Bytes())
	mac.Write(challenge.Bytes())
	return mac.Sum(nil), nil
}
