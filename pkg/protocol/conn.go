package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"
)

const writeTimeout = 10 * time.Second

// Conn wraps a network connection, delivering incoming lines on a channel.
type Conn struct {
	mutex sync.Mutex
	conn  net.Conn

	inc          chan string
	done         chan struct{}
	closeOnce    sync.Once
	onDisconnect func(error)
}

// NewConn returns an unconnected Conn. onDisconnect, if not nil, is called with the read
// error (or nil on EOF) once the peer goes away.
func NewConn(onDisconnect func(error)) *Conn {
	return &Conn{
		inc:          make(chan string),
		done:         make(chan struct{}),
		onDisconnect: onDisconnect,
	}
}

// Start begins reading lines from conn.
func (c *Conn) Start(conn net.Conn) {
	c.mutex.Lock()
	c.conn = conn
	c.mutex.Unlock()

	go func() {
		defer close(c.inc)

		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			select {
			case c.inc <- sc.Text():
			case <-c.done:
				return
			}
		}
		err := sc.Err()
		if err != nil {
			log.Println(err)
		}
		if c.onDisconnect != nil {
			c.onDisconnect(err)
		}
	}()
}

// Incoming is closed when the peer closes the connection.
func (c *Conn) Incoming() <-chan string {
	return c.inc
}

func (c *Conn) Send(format string, args ...interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil {
		return errors.New("protocol: not connected")
	}

	msg := fmt.Sprintf(format, args...)
	err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err != nil {
		return fmt.Errorf("protocol: sending '%s': %w", msg, err)
	}
	_, err = c.conn.Write([]byte(msg + "\n"))
	if err != nil {
		return fmt.Errorf("protocol: sending '%s': %w", msg, err)
	}
	return nil
}

func (c *Conn) RemoteAddr() net.Addr {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil {
		return nil
	}
	return c.conn.RemoteAddr()
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Split separates a message into command and arguments.
func Split(msg string) (cmd, args string) {
	msg = strings.TrimSpace(msg)
	cmd = strings.Split(msg, " ")[0]
	args = strings.TrimSpace(msg[len(cmd):])
	return
}
