package auth

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore(t *testing.T) {
	door1, err := NewDoor(50)
	require.NoError(t, err)
	cardA := newCard(t, door1, 5001)
	cardB := newCard(t, door1, 5002)

	assert.True(t, exchange(t, door1, cardA))
	assert.True(t, exchange(t, door1, cardB))
	require.NoError(t, door1.Revoke(5002))

	door2, err := Restore(door1.State())
	require.NoError(t, err)

	assert.Equal(t, door1.Epoch(), door2.Epoch())
	assert.Equal(t, door1.Blacklist(), door2.Blacklist())

	b1, err := door1.Broadcast()
	require.NoError(t, err)
	b2, err := door2.Broadcast()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)

	assert.True(t, exchange(t, door2, cardA))
	assert.False(t, exchange(t, door2, cardB))
}

func TestRestoreWithoutChallenge(t *testing.T) {
	door1, err := NewDoor(2)
	require.NoError(t, err)
	card := newCard(t, door1, 100)

	s := door1.State()
	s.Challenge = nil

	door2, err := Restore(s)
	require.NoError(t, err)
	assert.True(t, exchange(t, door2, card))
}

func TestRestoreFillsWithDummyPoints(t *testing.T) {
	door1, err := NewDoor(5)
	require.NoError(t, err)
	revoked := newCard(t, door1, 100)
	genuine := newCard(t, door1, 200)

	// epoch 3 with a single revoked user: the share set needs two fillers
	s := door1.State()
	s.Epoch = 3
	s.Blacklist = []UserID{100}

	door2, err := Restore(s)
	require.NoError(t, err)

	public := door2.PublicShares().Points()
	require.Len(t, public, 3)
	assert.Equal(t, int64(100), public[0].X.Int64())
	assert.Equal(t, int64(1), public[1].X.Int64())
	assert.Equal(t, int64(2), public[2].X.Int64())

	assert.True(t, exchange(t, door2, genuine))
	assert.False(t, exchange(t, door2, revoked))
}

func TestRestoreInvalid(t *testing.T) {
	door, err := NewDoor(3)
	require.NoError(t, err)
	require.NoError(t, door.Revoke(100))
	valid := door.State()

	tests := []struct {
		name   string
		modify func(s *State)
	}{
		{"negative max", func(s *State) { s.MaxRevocations = -1 }},
		{"epoch beyond max", func(s *State) { s.Epoch = 4 }},
		{"missing secret", func(s *State) { s.Secrets = s.Secrets[:3] }},
		{"wrong degree", func(s *State) { s.Secrets[2] = s.Secrets[1] }},
		{"more revoked users than epochs", func(s *State) { s.Blacklist = []UserID{100, 200} }},
		{"revoked user in filler range", func(s *State) { s.Blacklist = []UserID{2} }},
		{"challenge too wide", func(s *State) { s.Challenge = new(big.Int).Lsh(big.NewInt(1), 128) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.Secrets = append([][]*big.Int(nil), valid.Secrets...)
			s.Blacklist = append([]UserID(nil), valid.Blacklist...)
			tt.modify(&s)

			_, err := Restore(s)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestRestoreDuplicateRevocation(t *testing.T) {
	door, err := NewDoor(3)
	require.NoError(t, err)

	s := door.State()
	s.Epoch = 2
	s.Blacklist = []UserID{100, 100}

	_, err = Restore(s)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
