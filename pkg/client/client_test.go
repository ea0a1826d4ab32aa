package client

import (
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sauerbraten/anonauth/pkg/auth"
	"github.com/sauerbraten/anonauth/pkg/protocol"
	"github.com/sauerbraten/anonauth/pkg/server"
)

var adminKey = []byte("secret admin key")

type memStore struct {
	mu    sync.Mutex
	users map[auth.UserID]bool
}

func (s *memStore) AddUser(user auth.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[user] {
		return errors.New("duplicate user")
	}
	s.users[user] = true
	return nil
}

func (s *memStore) SaveRevocation(auth.UserID, auth.State) error { return nil }

func startDoor(t *testing.T, maxRevocations int) string {
	t.Helper()

	door, err := auth.NewDoor(maxRevocations)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	stop := make(chan struct{})
	s := server.New(nil, door, &memStore{users: map[auth.UserID]bool{}}, map[string][]byte{"admin": adminKey}, stop)
	go s.Serve(listener)
	t.Cleanup(func() { close(stop) })

	return listener.Addr().String()
}

func TestEnrollAuthenticateRevoke(t *testing.T) {
	addr := startDoor(t, 2)

	admin, err := DialAdmin(addr, "admin", adminKey)
	require.NoError(t, err)
	defer admin.Close()

	credA, err := admin.Enroll(1000)
	require.NoError(t, err)
	assert.Len(t, credA, 3)
	credB, err := admin.Enroll(2000)
	require.NoError(t, err)

	cardA, err := DialCard(addr, auth.NewCard(credA))
	require.NoError(t, err)
	defer cardA.Close()
	cardB, err := DialCard(addr, auth.NewCard(credB))
	require.NoError(t, err)
	defer cardB.Close()

	ok, err := cardA.Authenticate()
	require.NoError(t, err)
	assert.True(t, ok)

	epoch, err := admin.Revoke(1000)
	require.NoError(t, err)
	assert.Equal(t, 1, epoch)

	ok, err = cardA.Authenticate()
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = cardB.Authenticate()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdminFailures(t *testing.T) {
	addr := startDoor(t, 1)

	_, err := DialAdmin(addr, "admin", []byte("wrong"))
	var failed *FailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, protocol.FailAdmin, failed.Command)

	admin, err := DialAdmin(addr, "admin", adminKey)
	require.NoError(t, err)
	defer admin.Close()

	_, err = admin.Enroll(1) // reserved for dummy shares
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, protocol.FailEnroll, failed.Command)
	assert.NotEmpty(t, failed.Reason)

	_, err = admin.Enroll(500)
	require.NoError(t, err)
	_, err = admin.Enroll(500)
	assert.ErrorAs(t, err, &failed)

	_, err = admin.Revoke(500)
	require.NoError(t, err)
	_, err = admin.Revoke(600) // only one revocation allowed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, protocol.FailRevoke, failed.Command)
}

func TestCardAtForeignDoor(t *testing.T) {
	home := startDoor(t, 1)
	foreign := startDoor(t, 1)

	admin, err := DialAdmin(home, "admin", adminKey)
	require.NoError(t, err)
	defer admin.Close()

	cred, err := admin.Enroll(1000)
	require.NoError(t, err)

	c, err := DialCard(foreign, auth.NewCard(cred))
	require.NoError(t, err)
	defer c.Close()

	ok, err := c.Authenticate()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCardNotProvisioned(t *testing.T) {
	addr := startDoor(t, 2)

	admin, err := DialAdmin(addr, "admin", adminKey)
	require.NoError(t, err)
	defer admin.Close()

	cred, err := admin.Enroll(1000)
	require.NoError(t, err)
	_, err = admin.Revoke(2000)
	require.NoError(t, err)

	c, err := DialCard(addr, auth.NewCard(cred[:1]))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Authenticate()
	assert.ErrorIs(t, err, auth.ErrNotProvisioned)
}

func TestDialUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	_, err = DialCard(addr, nil)
	assert.Error(t, err)
}
