package client

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sauerbraten/anonauth/pkg/protocol"
)

// how long to wait for the door to answer a request
const replyTimeout = 10 * time.Second

var ErrTimeout = errors.New("client: timed out waiting for reply")

// FailedError is returned when the door answers a request with a failure command.
type FailedError struct {
	Command string
	Reason  string
}

func (e *FailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("client: door replied '%s'", e.Command)
	}
	return fmt.Sprintf("client: door replied '%s': %s", e.Command, e.Reason)
}

// UnexpectedReplyError is returned when the door's reply doesn't fit the request.
type UnexpectedReplyError string

func (e UnexpectedReplyError) Error() string {
	return fmt.Sprintf("client: unexpected reply '%s'", string(e))
}

type conn struct {
	*protocol.Conn
}

func dial(addr string) (*conn, error) {
	raddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: resolving door address %s: %w", addr, err)
	}

	tcpConn, err := net.DialTCP("tcp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("client: connecting to %s: %w", raddr, err)
	}

	c := &conn{Conn: protocol.NewConn(nil)}
	c.Start(tcpConn)
	return c, nil
}

// request sends a message and returns the door's reply, split into command and arguments.
func (c *conn) request(format string, args ...interface{}) (cmd, rest string, err error) {
	err = c.Send(format, args...)
	if err != nil {
		return "", "", err
	}

	select {
	case msg, ok := <-c.Incoming():
		if !ok {
			return "", "", errors.New("client: door closed the connection")
		}
		cmd, rest = protocol.Split(msg)
		return cmd, rest, nil
	case <-time.After(replyTimeout):
		return "", "", ErrTimeout
	}
}
