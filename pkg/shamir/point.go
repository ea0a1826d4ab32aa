package shamir

import (
	"fmt"
	"math/big"
)

// wire sizes of a point's coordinates, in bytes
const (
	XSize     = 2
	YSize     = 16
	PointSize = XSize + YSize
)

// Point is a share: a sample (x, y) of a secret polynomial.
// Points are values; constructors copy their inputs and nothing mutates them afterwards.
type Point struct {
	X *big.Int `json:"x"`
	Y *big.Int `json:"y"`
}

func NewPoint(x, y *big.Int) Point {
	return Point{
		X: new(big.Int).Set(x),
		Y: new(big.Int).Set(y),
	}
}

func (p Point) Equal(o Point) bool {
	return p.X.Cmp(o.X) == 0 && p.Y.Cmp(o.Y) == 0
}

func (p Point) String() string {
	return fmt.Sprintf("Point<%s,%s>", p.X, p.Y)
}

// MarshalBinary encodes the point as a 2-byte x followed by a 16-byte y, both big-endian.
func (p Point) MarshalBinary() ([]byte, error) {
	buf := make([]byte, PointSize)
	err := PutFixed(buf[:XSize], p.X)
	if err != nil {
		return nil, fmt.Errorf("encoding x: %w", err)
	}
	err = PutFixed(buf[XSize:], p.Y)
	if err != nil {
		return nil, fmt.Errorf("encoding y: %w", err)
	}
	return buf, nil
}

// UnmarshalBinary decodes a point produced by MarshalBinary.
func (p *Point) UnmarshalBinary(data []byte) error {
	if len(data) != PointSize {
		return fmt.Errorf("shamir: point must be %d bytes, got %d", PointSize, len(data))
	}
	p.X = new(big.Int).SetBytes(data[:XSize])
	p.Y = new(big.Int).SetBytes(data[XSize:])
	return nil
}

// PutFixed writes v into dst as an unsigned big-endian integer, zero-padded to len(dst).
// Values that need more than len(dst) bytes (or are negative) are rejected, never truncated.
func PutFixed(dst []byte, v *big.Int) error {
	if v.Sign() < 0 || v.BitLen() > 8*len(dst) {
		return fmt.Errorf("%w: %s needs more than %d bytes", ErrFieldOverflow, v, len(dst))
	}
	v.FillBytes(dst)
	return nil
}
