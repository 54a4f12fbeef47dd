// Package transport owns the two TCP connections that make up a PTP/IP
// session (command and event channel) and turns their byte streams into
// whole frames.
package transport

import (
	"net"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Port is the well-known PTP/IP TCP port.
const Port = 15740

// ConnectTimeout bounds how long dialing either channel may take. It is a
// var, not a const, so an embedder's configuration can tune it (and tests
// can shrink it) instead of living with the production default.
var ConnectTimeout = 10 * time.Second

// ReceiveTimeout bounds how long a single Receive call may block. It is a
// var, not a const, for the same reason as ConnectTimeout.
var ReceiveTimeout = 15 * time.Second

// Conn wraps one TCP connection to the camera plus its frame accumulator.
// Exactly one goroutine may call Receive on a Conn at a time; Send may be
// called concurrently with Receive. Close may be called concurrently with
// either, to cancel whichever is outstanding.
type Conn struct {
	name   string
	framer Framer
	log    *log.Entry

	mu sync.Mutex // guards nc; net.Conn itself is safe for concurrent I/O
	nc net.Conn
}

// Dial opens a TCP connection to host:Port and returns a Conn ready for
// framed Send/Receive. name is used only for log correlation
// ("command"/"event").
func Dial(host string, name string) (*Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(Port))
	nc, err := net.DialTimeout("tcp", addr, ConnectTimeout)
	if err != nil {
		return nil, err
	}
	return &Conn{
		name: name,
		nc:   nc,
		log:  log.WithField("component", "transport").WithField("channel", name),
	}, nil
}

// Wrap adapts an already-established net.Conn into a framed Conn. It
// exists for tests that drive both ends of a loopback socket directly
// instead of going through Dial's address resolution.
func Wrap(nc net.Conn, name string) *Conn {
	return &Conn{
		name: name,
		nc:   nc,
		log:  log.WithField("component", "transport").WithField("channel", name),
	}
}

// conn returns the underlying socket, or ErrAlreadyClosed once Close has
// run. net.Conn is itself safe for concurrent use by multiple goroutines;
// only the field holding it needs the lock.
func (c *Conn) conn() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nc == nil {
		return nil, ErrAlreadyClosed
	}
	return c.nc, nil
}

// Send writes a whole frame to the connection.
func (c *Conn) Send(frame []byte) error {
	nc, err := c.conn()
	if err != nil {
		return ErrConnectionLost
	}
	if _, err := nc.Write(frame); err != nil {
		c.log.WithError(err).Warn("send failed")
		return ErrConnectionLost
	}
	return nil
}

// Receive blocks until one full frame has been read, ReceiveTimeout
// elapses, or the connection is closed. It returns the same frame that was
// written by the peer, with the length/type header intact.
func (c *Conn) Receive() ([]byte, error) {
	if frame, ok := c.framer.Next(); ok {
		return frame, nil
	}

	nc, err := c.conn()
	if err != nil {
		return nil, ErrConnectionLost
	}

	deadline := time.Now().Add(ReceiveTimeout)
	buf := make([]byte, 64*1024)
	for {
		if err := nc.SetReadDeadline(deadline); err != nil {
			return nil, ErrConnectionLost
		}
		n, err := nc.Read(buf)
		if n > 0 {
			c.framer.Feed(buf[:n])
			if frame, ok := c.framer.Next(); ok {
				return frame, nil
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				c.log.Debug("receive timed out")
				return nil, ErrReceiveTimeout
			}
			c.log.WithError(err).Debug("connection closed while receiving")
			return nil, ErrConnectionLost
		}
	}
}

// Close tears down the underlying socket, unblocking any Send or Receive
// in progress with ErrConnectionLost. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	nc := c.nc
	c.nc = nil
	c.mu.Unlock()

	if nc == nil {
		return ErrAlreadyClosed
	}
	return nc.Close()
}
