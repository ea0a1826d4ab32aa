package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sauerbraten/anonauth/internal/db"
	"github.com/sauerbraten/anonauth/pkg/auth"
)

type fakeRegistry struct {
	users       []db.User
	revocations []db.Revocation
	err         error
}

func (r *fakeRegistry) Users() ([]db.User, error)             { return r.users, r.err }
func (r *fakeRegistry) Revocations() ([]db.Revocation, error) { return r.revocations, r.err }

func (r *fakeRegistry) GetUser(id auth.UserID) (db.User, error) {
	if r.err != nil {
		return db.User{}, r.err
	}
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return db.User{}, db.UserNotFoundError(id)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatus(t *testing.T) {
	door, err := auth.NewDoor(10)
	require.NoError(t, err)
	require.NoError(t, door.Revoke(100))
	require.NoError(t, door.Revoke(200))

	rec := get(t, NewRouter(door, &fakeRegistry{}), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var status Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, Status{
		Epoch:                2,
		MaxRevocations:       10,
		RemainingRevocations: 8,
		PublicShares:         2,
		Revoked:              []auth.UserID{100, 200},
	}, status)
}

func TestStatusFreshDoor(t *testing.T) {
	door, err := auth.NewDoor(1)
	require.NoError(t, err)

	rec := get(t, NewRouter(door, &fakeRegistry{}), "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"revoked":[]`)
}

func TestUsersAndRevocations(t *testing.T) {
	door, err := auth.NewDoor(1)
	require.NoError(t, err)

	registry := &fakeRegistry{
		users:       []db.User{{ID: 100, EnrolledAt: 1700000000, Revoked: true}, {ID: 200, EnrolledAt: 1700000001}},
		revocations: []db.Revocation{{User: 100, Epoch: 1, RevokedAt: 1700000002}},
	}
	h := NewRouter(door, registry)

	rec := get(t, h, "/users")
	require.Equal(t, http.StatusOK, rec.Code)
	var users []db.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&users))
	assert.Equal(t, registry.users, users)

	rec = get(t, h, "/revocations/")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)

	rec = get(t, h, "/revocations")
	require.Equal(t, http.StatusOK, rec.Code)
	var revocations []db.Revocation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&revocations))
	assert.Equal(t, registry.revocations, revocations)
}

func TestUser(t *testing.T) {
	door, err := auth.NewDoor(1)
	require.NoError(t, err)

	registry := &fakeRegistry{users: []db.User{{ID: 100, EnrolledAt: 1700000000, Revoked: true}}}
	h := NewRouter(door, registry)

	rec := get(t, h, "/users/100")
	require.Equal(t, http.StatusOK, rec.Code)
	var u db.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
	assert.Equal(t, registry.users[0], u)

	rec = get(t, h, "/users/200")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "db: no user with ID 200"}`, rec.Body.String())

	for _, id := range []string{"abc", "70000"} {
		rec = get(t, h, "/users/"+id)
		assert.Equal(t, http.StatusBadRequest, rec.Code, id)
	}

	rec = get(t, NewRouter(door, &fakeRegistry{err: errors.New("db: broken")}), "/users/100")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRegistryError(t *testing.T) {
	door, err := auth.NewDoor(1)
	require.NoError(t, err)

	rec := get(t, NewRouter(door, &fakeRegistry{err: errors.New("db: broken")}), "/users")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "db: broken"}`, rec.Body.String())
}

func TestMetricsAndHelp(t *testing.T) {
	door, err := auth.NewDoor(1)
	require.NoError(t, err)
	h := NewRouter(door, &fakeRegistry{})

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "go_goroutines"))

	rec = get(t, h, "/help")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/status")
}
