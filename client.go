package ftp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"time"
)

// Credentials holds the user name and password sent during login.
type Credentials struct {
	User string
	Pass string
}

// AnonymousCredentials returns the conventional anonymous login pair.
func AnonymousCredentials() Credentials {
	return Credentials{User: "anonymous", Pass: "anonymous"}
}

// Client is a logged-in FTP session. It owns the control connection and is
// meant to be used by a single goroutine; it performs no locking.
type Client struct {
	// conn is the underlying network connection (control channel)
	conn net.Conn

	// addr is the server address the control connection was dialed to
	addr netip.AddrPort

	// ctrl reads and writes the control channel
	ctrl *controlConn

	// timeout bounds dials and each read/write; zero means none
	timeout time.Duration

	// logger is used for trace logging
	logger *slog.Logger

	// dialer is used to establish both connections
	dialer Dialer

	// bandwidthLimit caps the download rate in bytes per second
	bandwidthLimit int64

	// progress is called after every chunk written to the destination
	progress ProgressFunc

	// completionReply requires the trailing 226 after each transfer
	completionReply bool
}

// Login connects to the server at addr, waits for the 220 greeting and
// authenticates with USER/PASS. The returned client is logged in; any other
// outcome closes the connection and returns an error.
//
// Every step accepts exactly one status code: 220 for the greeting, 331 for
// USER and 230 for PASS.
//
// Example:
//
//	addr := netip.MustParseAddrPort("192.0.2.10:21")
//	client, err := ftp.Login(ctx, addr, ftp.AnonymousCredentials())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func Login(ctx context.Context, addr netip.AddrPort, creds Credentials, options ...Option) (*Client, error) {
	c := &Client{
		addr:   addr,
		dialer: &net.Dialer{},
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	c.logger.Debug("connecting to ftp server", "addr", addr.String())

	conn, err := c.dial(ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn
	c.ctrl = newControlConn(conn, c.logger)

	if err := c.handshake(creds); err != nil {
		c.conn.Close()
		return nil, err
	}

	c.logger.Info("logged in", "user", creds.User)
	return c, nil
}

// handshake reads the greeting and authenticates.
func (c *Client) handshake(creds Credentials) error {
	resp, err := c.ctrl.readResponse()
	if err != nil {
		return fmt.Errorf("failed to read greeting: %w", err)
	}

	if resp.Code != 220 {
		return &ProtocolError{
			Command:  "CONNECT",
			Response: resp.Message,
			Code:     resp.Code,
		}
	}

	if _, err := c.ctrl.expectCode(331, "USER", creds.User); err != nil {
		return err
	}

	if _, err := c.ctrl.expectCode(230, "PASS", creds.Pass); err != nil {
		return err
	}

	return nil
}

// dial opens a TCP connection with the configured dialer and timeout.
func (c *Client) dial(ctx context.Context, addr string) (net.Conn, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	return withDeadlines(conn, c.timeout), nil
}

// Size returns the size of the remote file as reported by the SIZE command.
func (c *Client) Size(ctx context.Context, remotePath string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg, err := c.ctrl.expectCode(213, "SIZE", remotePath)
	if err != nil {
		return 0, err
	}

	size, err := strconv.ParseUint(msg, 10, 64)
	if err != nil {
		return 0, unparsable("SIZE value", msg)
	}

	return size, nil
}

// Close closes the control connection without sending QUIT.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Fetch logs in to target, downloads target.Path into localPath and closes
// the session. It is the whole lifecycle of one download.
//
// Example:
//
//	target, err := ftp.ParseTarget("ftp://127.0.0.1:2121/f.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := ftp.Fetch(ctx, target, "f.bin"); err != nil {
//	    log.Fatal(err)
//	}
func Fetch(ctx context.Context, target *Target, localPath string, options ...Option) error {
	c, err := Login(ctx, target.Addr, target.Credentials(), options...)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Download(ctx, target.Path, localPath)
}
