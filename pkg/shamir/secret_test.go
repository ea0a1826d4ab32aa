package shamir

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretRepresentationsAgree(t *testing.T) {
	r := mrand.New(mrand.NewSource(4))

	for _, k := range []int{1, 2, 5, 51} {
		a, err := RandomSecret(r, k)
		require.NoError(t, err)

		points := make([]Point, 0, k)
		for x := 1; x <= k; x++ {
			p, err := a.Sample(big.NewInt(int64(x + 1000)))
			require.NoError(t, err)
			points = append(points, p)
		}
		b := FromPoints(points)

		va, err := a.Value()
		require.NoError(t, err)
		vb, err := b.Value()
		require.NoError(t, err)
		assert.Equal(t, 0, va.Cmp(vb), "k=%d", k)

		ha, err := a.Hash()
		require.NoError(t, err)
		hb, err := b.Hash()
		require.NoError(t, err)
		assert.Equal(t, ha, hb)

		for _, c := range []int64{0, 123, 1 << 40} {
			ma, err := a.HMAC(big.NewInt(c))
			require.NoError(t, err)
			mb, err := b.HMAC(big.NewInt(c))
			require.NoError(t, err)
			assert.Equal(t, ma, mb, "k=%d challenge=%d", k, c)
		}

		// sampling off the original points agrees too
		pa, err := a.Sample(big.NewInt(77))
		require.NoError(t, err)
		pb, err := b.Sample(big.NewInt(77))
		require.NoError(t, err)
		assert.True(t, pa.Equal(pb))
	}
}

func TestSecretLengths(t *testing.T) {
	s, err := RandomSecret(rand.Reader, 5)
	require.NoError(t, err)

	h, err := s.Hash()
	require.NoError(t, err)
	assert.Len(t, h, sha256.Size)

	m, err := s.HMAC(big.NewInt(0))
	require.NoError(t, err)
	assert.Len(t, m, sha256.Size)
}

func TestSecretHashIsUnsignedEncoding(t *testing.T) {
	// 0x80 would get a sign byte in a two's complement encoding
	s := FromCoefficients([]*big.Int{big.NewInt(0x80)})
	h, err := s.Hash()
	require.NoError(t, err)

	want := sha256.Sum256([]byte{0x80})
	assert.Equal(t, want[:], h)
}

func TestRandomSecretInvalid(t *testing.T) {
	_, err := RandomSecret(rand.Reader, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSecretCollisionPropagates(t *testing.T) {
	a, err := RandomSecret(rand.Reader, 3)
	require.NoError(t, err)

	p1, err := a.Sample(big.NewInt(10))
	require.NoError(t, err)
	p2, err := a.Sample(big.NewInt(20))
	require.NoError(t, err)

	b := FromPoints([]Point{p1, p2, p1})

	_, err = b.Value()
	assert.ErrorIs(t, err, ErrNoModularInverse)
	_, err = b.Hash()
	assert.ErrorIs(t, err, ErrNoModularInverse)
	_, err = b.HMAC(big.NewInt(1))
	assert.ErrorIs(t, err, ErrNoModularInverse)
	_, err = b.Sample(big.NewInt(1))
	assert.ErrorIs(t, err, ErrNoModularInverse)
}

func TestSecretCoefficients(t *testing.T) {
	s := FromCoefficients([]*big.Int{big.NewInt(1), big.NewInt(2)})
	c, ok := s.Coefficients()
	require.True(t, ok)
	assert.Equal(t, []*big.Int{big.NewInt(1), big.NewInt(2)}, c)

	// mutating the copy leaves the secret alone
	c[0].SetInt64(99)
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Int64())

	_, ok = FromPoints(nil).Coefficients()
	assert.False(t, ok)
}
