// Package shamir implements the secret sharing arithmetic used by the door protocol.
//
// All arithmetic happens in the prime field of order P = 2^128 + 51. A secret is the
// constant term of a polynomial over that field; shares are points on the polynomial.
// Any d+1 points with distinct x coordinates reconstruct a polynomial of degree d via
// Lagrange interpolation. Two points sharing an x coordinate make interpolation impossible
// (the Lagrange denominator is zero), which is reported as ErrNoModularInverse.
package shamir

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
)

var (
	ErrInvalidArgument  = errors.New("shamir: invalid argument")
	ErrNoModularInverse = errors.New("shamir: no modular inverse (points share an x coordinate)")
	ErrFieldOverflow    = errors.New("shamir: value does not fit into field")
)

// 2^128 + 51
var prime = new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(51))

// Prime returns the field modulus.
func Prime() *big.Int {
	return new(big.Int).Set(prime)
}

// RandomElement returns a field element drawn uniformly from [0, P).
func RandomElement(r io.Reader) (*big.Int, error) {
	// rand.Int rejection-samples at the bit length of P, no modulo bias
	v, err := rand.Int(r, prime)
	if err != nil {
		return nil, fmt.Errorf("shamir: drawing random field element: %w", err)
	}
	return v, nil
}

// RandomPolynomial returns the degree+1 coefficients of a random polynomial
// with the given intercept. Coefficients are ordered by ascending power.
func RandomPolynomial(r io.Reader, degree int, intercept *big.Int) ([]*big.Int, error) {
	if degree < 0 {
		return nil, fmt.Errorf("%w: degree must be non-negative, got %d", ErrInvalidArgument, degree)
	}

	coefficients := make([]*big.Int, 0, degree+1)
	coefficients = append(coefficients, new(big.Int).Set(intercept))
	for i := 0; i < degree; i++ {
		c, err := RandomElement(r)
		if err != nil {
			return nil, err
		}
		coefficients = append(coefficients, c)
	}

	return coefficients, nil
}

// Evaluate computes the polynomial at x, mod P. x may be larger than P.
func Evaluate(coefficients []*big.Int, x *big.Int) *big.Int {
	xm := new(big.Int).Mod(x, prime)

	// Horner's scheme, highest power first
	y := new(big.Int)
	for i := len(coefficients) - 1; i >= 0; i-- {
		y.Mul(y, xm)
		y.Add(y, coefficients[i])
		y.Mod(y, prime)
	}

	return y
}

// Interpolate evaluates the unique polynomial through points at the given x.
// If two points have the same x coordinate (mod P), ErrNoModularInverse is returned.
func Interpolate(at *big.Int, points []Point) (*big.Int, error) {
	result := new(big.Int)
	term := new(big.Int)

	for i, p := range points {
		numerator := big.NewInt(1)
		denominator := big.NewInt(1)

		for j, other := range points {
			if i == j {
				continue
			}
			term.Sub(at, other.X)
			numerator.Mul(numerator, term).Mod(numerator, prime)

			term.Sub(p.X, other.X)
			denominator.Mul(denominator, term).Mod(denominator, prime)
		}

		inverse := new(big.Int).ModInverse(denominator, prime)
		if inverse == nil {
			return nil, fmt.Errorf("%w: interpolating at x=%s", ErrNoModularInverse, p.X)
		}

		term.Mul(p.Y, numerator)
		term.Mul(term, inverse)
		result.Add(result, term).Mod(result, prime)
	}

	return result, nil
}
