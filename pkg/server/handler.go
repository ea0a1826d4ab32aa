package server

import (
	"encoding/hex"
	"log"

	"github.com/sauerbraten/anonauth/pkg/metrics"
	"github.com/sauerbraten/anonauth/pkg/protocol"
)

type handler struct {
	*clientConn
	*Server

	admin adminSession
}

func newHandler(s *Server, conn *protocol.Conn) *handler {
	return &handler{
		clientConn: newClientConn(conn),
		Server:     s,
	}
}

func (h *handler) handle(msg string) {
	cmd, args := protocol.Split(msg)

	switch cmd {
	case protocol.ReqBcast:
		h.handleReqBcast()

	case protocol.Resp:
		h.handleResp(args)

	case protocol.ReqAdmin:
		h.handleReqAdmin(args)

	case protocol.ConfAdmin:
		h.handleConfAdmin(args)

	case protocol.Enroll:
		if h.admin.authenticated {
			h.handleEnroll(args)
		} else {
			log.Printf("ignoring %s from unauthenticated connection %s", cmd, h.conn.RemoteAddr())
		}

	case protocol.Revoke:
		if h.admin.authenticated {
			h.handleRevoke(args)
		} else {
			log.Printf("ignoring %s from unauthenticated connection %s", cmd, h.conn.RemoteAddr())
		}

	default:
		log.Printf("no handler for command %s in '%s'", cmd, msg)
	}
}

func (h *handler) handleReqBcast() {
	if !h.allow() {
		h.respond(protocol.FailAuth)
		return
	}

	broadcast, err := h.door.Broadcast()
	if err != nil {
		log.Printf("could not build broadcast for %s: %v", h.conn.RemoteAddr(), err)
		h.respond(protocol.FailAuth)
		return
	}

	metrics.RecordBroadcast()
	h.respond("%s %s", protocol.Bcast, hex.EncodeToString(broadcast))
}

func (h *handler) handleResp(args string) {
	if !h.allow() {
		h.respond(protocol.FailAuth)
		return
	}

	response, err := hex.DecodeString(args)
	if err != nil {
		log.Printf("malformed %s message from %s: '%s': %v", protocol.Resp, h.conn.RemoteAddr(), args, err)
		metrics.RecordAuthentication(false)
		h.respond(protocol.FailAuth)
		return
	}

	ok, err := h.door.Verify(response)
	if err != nil {
		// the response was checked, but the challenge could not be replaced
		log.Printf("error rotating challenge after response from %s: %v", h.conn.RemoteAddr(), err)
		metrics.RecordAuthenticationError()
		h.respond(protocol.FailAuth)
		return
	}

	metrics.RecordAuthentication(ok)
	if ok {
		log.Println(h.conn.RemoteAddr(), "authenticated successfully")
		h.respond(protocol.SuccAuth)
	} else {
		log.Println(h.conn.RemoteAddr(), "failed to authenticate")
		h.respond(protocol.FailAuth)
	}
}
