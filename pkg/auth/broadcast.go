package auth

import (
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/sauerbraten/anonauth/pkg/shamir"
)

const (
	HashSize      = sha256.Size
	ChallengeSize = 16
	ResponseSize  = sha256.Size

	// maximum number of public points in one broadcast (k is sent as a single byte)
	MaxPublicPoints = 255
)

// Broadcast is what a door sends to cards in range:
//
//	k (1 byte) | k × (x (2 bytes) | y (16 bytes)) | secret hash (32 bytes) | challenge (16 bytes)
//
// All integers are unsigned big-endian and zero-padded.
type Broadcast struct {
	Points     []shamir.Point
	SecretHash []byte
	Challenge  *big.Int
}

// BroadcastSize returns the encoded size of a broadcast with k public points.
func BroadcastSize(k int) int {
	return 1 + k*shamir.PointSize + HashSize + ChallengeSize
}

func (b Broadcast) MarshalBinary() ([]byte, error) {
	k := len(b.Points)
	if k > MaxPublicPoints {
		return nil, fmt.Errorf("%w: %d public points (max. %d)", shamir.ErrFieldOverflow, k, MaxPublicPoints)
	}
	if len(b.SecretHash) != HashSize {
		return nil, fmt.Errorf("auth: secret hash must be %d bytes, got %d", HashSize, len(b.SecretHash))
	}

	buf := make([]byte, BroadcastSize(k))
	buf[0] = byte(k)
	offset := 1

	for i, p := range b.Points {
		err := shamir.PutFixed(buf[offset:offset+shamir.XSize], p.X)
		if err != nil {
			return nil, fmt.Errorf("auth: encoding x of public point %d: %w", i, err)
		}
		offset += shamir.XSize

		err = shamir.PutFixed(buf[offset:offset+shamir.YSize], p.Y)
		if err != nil {
			return nil, fmt.Errorf("auth: encoding y of public point %d: %w", i, err)
		}
		offset += shamir.YSize
	}

	offset += copy(buf[offset:], b.SecretHash)

	err := shamir.PutFixed(buf[offset:], b.Challenge)
	if err != nil {
		return nil, fmt.Errorf("auth: encoding challenge: %w", err)
	}

	return buf, nil
}

// ParseBroadcast decodes a broadcast. The buffer must have exactly the length implied by its k byte.
func ParseBroadcast(data []byte) (Broadcast, error) {
	if len(data) < 1 {
		return Broadcast{}, fmt.Errorf("%w: empty", ErrMalformedBroadcast)
	}

	k := int(data[0])
	if len(data) != BroadcastSize(k) {
		return Broadcast{}, fmt.Errorf("%w: %d bytes, expected %d for k=%d", ErrMalformedBroadcast, len(data), BroadcastSize(k), k)
	}
	offset := 1

	points := make([]shamir.Point, k)
	for i := range points {
		err := points[i].UnmarshalBinary(data[offset : offset+shamir.PointSize])
		if err != nil {
			return Broadcast{}, fmt.Errorf("%w: %v", ErrMalformedBroadcast, err)
		}
		offset += shamir.PointSize
	}

	hash := make([]byte, HashSize)
	offset += copy(hash, data[offset:offset+HashSize])

	return Broadcast{
		Points:     points,
		SecretHash: hash,
		Challenge:  new(big.Int).SetBytes(data[offset:]),
	}, nil
}
