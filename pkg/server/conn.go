package server

import (
	"log"

	"golang.org/x/time/rate"

	"github.com/sauerbraten/anonauth/pkg/metrics"
	"github.com/sauerbraten/anonauth/pkg/protocol"
)

const (
	// per connection; each exchange is two requests (reqbcast and resp)
	authRate  = 10
	authBurst = 20
)

type clientConn struct {
	conn    *protocol.Conn
	limiter *rate.Limiter
}

func newClientConn(conn *protocol.Conn) *clientConn {
	return &clientConn{
		conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(authRate), authBurst),
	}
}

// run feeds incoming lines to handle until the peer disconnects or stop is closed.
func (cc *clientConn) run(stop <-chan struct{}, handle func(string)) {
	for {
		select {
		case msg, ok := <-cc.conn.Incoming():
			if !ok {
				log.Println(cc.conn.RemoteAddr(), "closed the connection")
				return
			}
			handle(msg)
		case <-stop:
			log.Println("closing connection to", cc.conn.RemoteAddr())
			cc.conn.Close()
			return
		}
	}
}

func (cc *clientConn) respond(format string, args ...interface{}) {
	err := cc.conn.Send(format, args...)
	if err != nil {
		log.Println(err)
	}
}

// allow reports whether another exchange may be started right now.
func (cc *clientConn) allow() bool {
	if cc.limiter.Allow() {
		return true
	}
	metrics.RecordRejected("rate_limited")
	log.Printf("rate limiting %s", cc.conn.RemoteAddr())
	return false
}

func (cc *clientConn) close() {
	err := cc.conn.Close()
	if err != nil {
		log.Printf("error closing connection to %s: %v", cc.conn.RemoteAddr(), err)
	}
}
