package ftp

import (
	"net"
	"time"
)

// deadlineConn pushes the read or write deadline forward before every call,
// so timeout bounds each individual operation rather than the whole session.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

// withDeadlines returns conn unchanged when timeout is zero.
func withDeadlines(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &deadlineConn{Conn: conn, timeout: timeout}
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
