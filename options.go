package ftp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Option is a functional option for configuring an FTP client.
type Option func(*Client) error

// Dialer opens the control and data connections.
// *net.Dialer satisfies it, and so does golang.org/x/net/proxy.ContextDialer.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// WithTimeout bounds every individual read and write on both the control and
// the data connection, as well as each dial.
//
// The default is zero: no timeouts, so an unresponsive server stalls the
// caller until ctx is cancelled.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return fmt.Errorf("negative timeout: %s", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// WithLogger enables trace logging using the provided logger.
// Commands and replies are logged at debug level, the file size and the
// passive endpoint at info level. Passwords are never logged.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	client, _ := ftp.Login(ctx, addr, ftp.AnonymousCredentials(), ftp.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithDialer replaces the dialer used for both connections.
// This can be used to go through a SOCKS proxy or to bind a source address.
func WithDialer(dialer Dialer) Option {
	return func(c *Client) error {
		if dialer == nil {
			return fmt.Errorf("nil dialer")
		}
		c.dialer = dialer
		return nil
	}
}

// WithBandwidthLimit caps the download rate in bytes per second.
// Zero disables the limit.
func WithBandwidthLimit(bytesPerSecond int64) Option {
	return func(c *Client) error {
		if bytesPerSecond < 0 {
			return fmt.Errorf("negative bandwidth limit: %d", bytesPerSecond)
		}
		c.bandwidthLimit = bytesPerSecond
		return nil
	}
}

// WithProgress registers a callback invoked after every chunk written to the
// destination. total is the size the server reported for the file; it is a
// hint only and the transfer does not stop when it is reached.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) error {
		c.progress = fn
		return nil
	}
}

// WithCompletionReply makes Retrieve close the data connection after the
// last byte and require the server's "226" completion reply.
//
// By default that reply is left unread and a transfer counts as successful
// as soon as the server closes the data connection.
func WithCompletionReply() Option {
	return func(c *Client) error {
		c.completionReply = true
		return nil
	}
}
