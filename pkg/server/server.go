// Package server implements the door's TCP service: it hands out broadcasts, checks card
// responses and lets authenticated admins enroll and revoke users.
package server

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/sauerbraten/anonauth/pkg/auth"
	"github.com/sauerbraten/anonauth/pkg/metrics"
	"github.com/sauerbraten/anonauth/pkg/protocol"
)

// Store persists the results of admin commands. Both methods must have completed before the
// server confirms the command to the admin.
type Store interface {
	AddUser(user auth.UserID) error
	// SaveRevocation records the revocation of user together with the door state after it.
	SaveRevocation(user auth.UserID, state auth.State) error
}

type Server struct {
	listenAddr *net.TCPAddr
	door       *auth.Door
	store      Store
	admins     map[string][]byte // name → HMAC key
	stop       <-chan struct{}

	// serializes revocations so their snapshots reach the store in order
	revocations sync.Mutex
}

func New(listenAddr *net.TCPAddr, door *auth.Door, store Store, admins map[string][]byte, stop <-chan struct{}) *Server {
	return &Server{
		listenAddr: listenAddr,
		door:       door,
		store:      store,
		admins:     admins,
		stop:       stop,
	}
}

// Listen binds the configured address and serves connections until stop is closed.
func (s *Server) Listen() error {
	listener, err := net.ListenTCP("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("server: listening on %s: %w", s.listenAddr, err)
	}
	log.Println("listening on", listener.Addr())
	return s.Serve(listener)
}

// Serve accepts connections on listener until stop is closed.
func (s *Server) Serve(listener net.Listener) error {
	go func() {
		<-s.stop
		listener.Close()
	}()

	epoch := s.door.Epoch()
	metrics.SetEpoch(epoch.Index(), epoch.Remaining())

	for {
		netConn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.stop:
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Printf("error accepting connection: %v", err)
				continue
			}
			return fmt.Errorf("server: accepting connection: %w", err)
		}

		log.Println("connection from", netConn.RemoteAddr())

		conn := protocol.NewConn(nil)
		conn.Start(netConn)

		h := newHandler(s, conn)
		go h.run(s.stop, h.handle)
	}
}
