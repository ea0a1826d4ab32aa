package auth

import (
	"encoding/binary"
	"fmt"

	"github.com/sauerbraten/anonauth/pkg/shamir"
)

// Credential is a card's private share sequence: one point per epoch, in epoch order.
type Credential []shamir.Point

// MarshalBinary encodes the credential as a 2-byte count followed by the points.
func (c Credential) MarshalBinary() ([]byte, error) {
	if len(c) > 0xffff {
		return nil, fmt.Errorf("%w: %d points in credential", shamir.ErrFieldOverflow, len(c))
	}

	buf := make([]byte, 2, 2+len(c)*shamir.PointSize)
	binary.BigEndian.PutUint16(buf, uint16(len(c)))

	for i, p := range c {
		b, err := p.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("auth: encoding point %d of credential: %w", i, err)
		}
		buf = append(buf, b...)
	}

	return buf, nil
}

func (c *Credential) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("auth: credential too short (%d bytes)", len(data))
	}

	n := int(binary.BigEndian.Uint16(data))
	if len(data) != 2+n*shamir.PointSize {
		return fmt.Errorf("auth: credential of %d points must be %d bytes, got %d", n, 2+n*shamir.PointSize, len(data))
	}

	points := make(Credential, n)
	for i := range points {
		offset := 2 + i*shamir.PointSize
		err := points[i].UnmarshalBinary(data[offset : offset+shamir.PointSize])
		if err != nil {
			return err
		}
	}

	*c = points
	return nil
}
