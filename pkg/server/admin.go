package server

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"log"
	"strconv"
	"time"

	"github.com/sauerbraten/anonauth/pkg/auth"
	"github.com/sauerbraten/anonauth/pkg/metrics"
	"github.com/sauerbraten/anonauth/pkg/protocol"
)

const (
	nonceSize = 32

	// how long an admin has to answer the login challenge
	adminTimeout = 30 * time.Second
)

// adminSession holds what we need to remember between sending the login challenge and
// checking the answer.
type adminSession struct {
	name          string
	nonce         []byte
	issued        time.Time
	authenticated bool
}

func (h *handler) handleReqAdmin(args string) {
	name := args
	if _, ok := h.admins[name]; name == "" || !ok {
		log.Printf("%s requested admin login as unknown admin '%s'", h.conn.RemoteAddr(), name)
		metrics.RecordAdminLogin(false)
		h.respond(protocol.FailAdmin)
		h.close()
		return
	}

	nonce := make([]byte, nonceSize)
	_, err := rand.Read(nonce)
	if err != nil {
		log.Printf("could not generate challenge to authenticate '%s' as admin: %v", name, err)
		h.respond(protocol.FailAdmin)
		h.close()
		return
	}

	h.admin = adminSession{
		name:   name,
		nonce:  nonce,
		issued: time.Now(),
	}

	h.respond("%s %s", protocol.ChalAdmin, hex.EncodeToString(nonce))
}

func (h *handler) handleConfAdmin(args string) {
	session := h.admin
	// a challenge can only be answered once
	h.admin.nonce = nil

	answer, err := hex.DecodeString(args)
	if err != nil {
		log.Printf("malformed %s message from %s: '%s': %v", protocol.ConfAdmin, h.conn.RemoteAddr(), args, err)
		metrics.RecordAdminLogin(false)
		h.respond(protocol.FailAdmin)
		h.close()
		return
	}

	ok := session.nonce != nil &&
		time.Since(session.issued) < adminTimeout &&
		hmac.Equal(answer, protocol.AdminAnswer(h.admins[session.name], session.nonce))

	metrics.RecordAdminLogin(ok)
	if !ok {
		h.respond(protocol.FailAdmin)
		h.close()
		log.Printf("connection from %s failed to authenticate as admin '%s'", h.conn.RemoteAddr(), session.name)
		return
	}

	h.admin.authenticated = true
	h.respond(protocol.SuccAdmin)
	log.Printf("connection from %s successfully authenticated as admin '%s'", h.conn.RemoteAddr(), session.name)
}

func parseUser(args string) (auth.UserID, error) {
	id, err := strconv.ParseUint(args, 10, 16)
	if err != nil {
		return 0, err
	}
	return auth.UserID(id), nil
}

func (h *handler) handleEnroll(args string) {
	user, err := parseUser(args)
	if err != nil {
		log.Printf("malformed %s message from %s: '%s': %v", protocol.Enroll, h.conn.RemoteAddr(), args, err)
		metrics.RecordEnrollment(false)
		h.respond("%s %s %s", protocol.FailEnroll, args, "invalid user ID")
		return
	}

	// a revoked user's point is public, so a new credential could never authenticate
	if h.door.IsRevoked(user) {
		log.Printf("refusing to enroll revoked user %d", user)
		metrics.RecordEnrollment(false)
		h.respond("%s %d %s", protocol.FailEnroll, user, "revoked")
		return
	}

	credential, err := h.door.PrivatePoints(user)
	if err != nil {
		log.Printf("could not compute credential for user %d: %v", user, err)
		metrics.RecordEnrollment(false)
		h.respond("%s %d %v", protocol.FailEnroll, user, err)
		return
	}

	buf, err := credential.MarshalBinary()
	if err != nil {
		log.Printf("could not encode credential for user %d: %v", user, err)
		metrics.RecordEnrollment(false)
		h.respond("%s %d %s", protocol.FailEnroll, user, "internal error")
		return
	}

	err = h.store.AddUser(user)
	if err != nil {
		log.Println(err)
		metrics.RecordEnrollment(false)
		h.respond("%s %d %v", protocol.FailEnroll, user, err)
		return
	}

	metrics.RecordEnrollment(true)
	h.respond("%s %d %s", protocol.SuccEnroll, user, hex.EncodeToString(buf))
	log.Printf("admin '%s' (%s) enrolled user %d", h.admin.name, h.conn.RemoteAddr(), user)
}

func (h *handler) handleRevoke(args string) {
	user, err := parseUser(args)
	if err != nil {
		log.Printf("malformed %s message from %s: '%s': %v", protocol.Revoke, h.conn.RemoteAddr(), args, err)
		metrics.RecordRevocation(false)
		h.respond("%s %s %s", protocol.FailRevoke, args, "invalid user ID")
		return
	}

	h.revocations.Lock()
	defer h.revocations.Unlock()

	err = h.door.Revoke(user)
	if err != nil {
		log.Printf("could not revoke user %d: %v", user, err)
		metrics.RecordRevocation(false)
		h.respond("%s %d %v", protocol.FailRevoke, user, err)
		return
	}

	state := h.door.State()
	metrics.SetEpoch(state.Epoch, state.MaxRevocations-state.Epoch)

	err = h.store.SaveRevocation(user, state)
	if err != nil {
		// the door already moved on; the user stays locked out until the door restarts
		log.Printf("revoked user %d, but could not persist the revocation: %v", user, err)
		metrics.RecordRevocation(false)
		h.respond("%s %d %s", protocol.FailRevoke, user, "internal error")
		return
	}

	metrics.RecordRevocation(true)
	h.respond("%s %d %d", protocol.SuccRevoke, user, state.Epoch)
	log.Printf("admin '%s' (%s) revoked user %d, door is now in epoch %d", h.admin.name, h.conn.RemoteAddr(), user, state.Epoch)
}
