package client

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/sauerbraten/anonauth/pkg/auth"
	"github.com/sauerbraten/anonauth/pkg/protocol"
)

// Admin is an authenticated admin connection to a door.
type Admin struct {
	*conn
	name string
}

// DialAdmin connects to the door and logs in using the admin's HMAC key.
func DialAdmin(addr, name string, key []byte) (*Admin, error) {
	c, err := dial(addr)
	if err != nil {
		return nil, err
	}

	a := &Admin{conn: c, name: name}
	err = a.login(key)
	if err != nil {
		c.Close()
		return nil, err
	}
	return a, nil
}

func (a *Admin) login(key []byte) error {
	cmd, args, err := a.request("%s %s", protocol.ReqAdmin, a.name)
	if err != nil {
		return err
	}
	if cmd != protocol.ChalAdmin {
		return replyError(cmd, args)
	}

	nonce, err := hex.DecodeString(args)
	if err != nil {
		return fmt.Errorf("client: decoding admin challenge: %w", err)
	}

	cmd, args, err = a.request("%s %s", protocol.ConfAdmin, hex.EncodeToString(protocol.AdminAnswer(key, nonce)))
	if err != nil {
		return err
	}
	if cmd != protocol.SuccAdmin {
		return replyError(cmd, args)
	}
	return nil
}

// Enroll registers a new user with the door and returns the user's credential.
func (a *Admin) Enroll(user auth.UserID) (auth.Credential, error) {
	cmd, args, err := a.request("%s %d", protocol.Enroll, user)
	if err != nil {
		return nil, err
	}
	if cmd != protocol.SuccEnroll {
		return nil, replyError(cmd, dropUser(args))
	}

	fields := strings.Fields(args)
	if len(fields) != 2 || fields[0] != strconv.Itoa(int(user)) {
		return nil, UnexpectedReplyError(cmd + " " + args)
	}

	buf, err := hex.DecodeString(fields[1])
	if err != nil {
		return nil, fmt.Errorf("client: decoding credential: %w", err)
	}

	var credential auth.Credential
	err = credential.UnmarshalBinary(buf)
	if err != nil {
		return nil, fmt.Errorf("client: decoding credential: %w", err)
	}
	return credential, nil
}

// Revoke revokes a user and returns the door's new epoch.
func (a *Admin) Revoke(user auth.UserID) (int, error) {
	cmd, args, err := a.request("%s %d", protocol.Revoke, user)
	if err != nil {
		return 0, err
	}
	if cmd != protocol.SuccRevoke {
		return 0, replyError(cmd, dropUser(args))
	}

	var (
		revoked auth.UserID
		epoch   int
	)
	_, err = fmt.Sscanf(args, "%d %d", &revoked, &epoch)
	if err != nil || revoked != user {
		return 0, UnexpectedReplyError(cmd + " " + args)
	}
	return epoch, nil
}

func replyError(cmd, reason string) error {
	switch cmd {
	case protocol.FailAdmin, protocol.FailEnroll, protocol.FailRevoke:
		return &FailedError{Command: cmd, Reason: reason}
	default:
		return UnexpectedReplyError(strings.TrimSpace(cmd + " " + reason))
	}
}

// dropUser strips the leading user ID from a failure reply's arguments.
func dropUser(args string) string {
	_, reason := protocol.Split(args)
	return reason
}
