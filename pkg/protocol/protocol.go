// Package protocol defines the line-based protocol spoken between doors, cards and admin tools.
//
// Every message is one line: a command followed by space-separated arguments.
// Binary payloads (broadcasts, responses, credentials, admin nonces) are hex encoded.
package protocol

import (
	"crypto/hmac"
	"crypto/sha256"
)

// card commands
const (
	ReqBcast = "reqbcast" // card → door
	Bcast    = "bcast"    // door → card: bcast <hex broadcast>
	Resp     = "resp"     // card → door: resp <hex response>
	SuccAuth = "succauth"
	FailAuth = "failauth"
)

// administration commands
const (
	ReqAdmin  = "reqadmin"  // reqadmin <name>
	ChalAdmin = "chaladmin" // chaladmin <hex nonce>
	ConfAdmin = "confadmin" // confadmin <hex HMAC-SHA256(key, nonce)>
	SuccAdmin = "succadmin"
	FailAdmin = "failadmin"

	Enroll     = "enroll" // enroll <user>
	SuccEnroll = "succenroll"
	FailEnroll = "failenroll"

	Revoke     = "revoke" // revoke <user>
	SuccRevoke = "succrevoke"
	FailRevoke = "failrevoke"
)

// AdminAnswer computes the answer to an admin login challenge: HMAC-SHA256 over the nonce,
// keyed with the admin's key.
func AdminAnswer(key, nonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(nonce)
	return mac.Sum(nil)
}
