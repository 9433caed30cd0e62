package ftp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/gonzalop/ftpget/internal/ratelimit"
)

// bufferSize is the chunk size of the transfer loop.
const bufferSize = 8000

// Retrieve downloads remotePath into w in binary mode (TYPE I).
//
// The sequence is TYPE I, SIZE, PASV, connect to the data port, RETR. RETR
// must be answered with 125. Bytes are then copied until the server closes
// the data connection. It returns the number of bytes written to w.
//
// Cancelling ctx while the transfer runs closes both connections; the
// client is unusable afterwards.
func (c *Client) Retrieve(ctx context.Context, remotePath string, w io.Writer) (int64, error) {
	return c.retrieve(ctx, remotePath, func() (io.Writer, error) { return w, nil })
}

// retrieve runs the download sequence. open is called only once the server
// has accepted RETR, so nothing is written before the transfer starts.
func (c *Client) retrieve(ctx context.Context, remotePath string, open func() (io.Writer, error)) (int64, error) {
	if _, err := c.ctrl.expectCode(200, "TYPE", "I"); err != nil {
		return 0, fmt.Errorf("failed to set binary mode: %w", err)
	}

	size, err := c.Size(ctx, remotePath)
	if err != nil {
		return 0, err
	}
	c.logger.Info("remote file size", "path", remotePath, "bytes", size)

	dataConn, err := c.openPassiveDataConn(ctx)
	if err != nil {
		return 0, err
	}
	defer dataConn.Close()

	control := c.conn
	stop := context.AfterFunc(ctx, func() {
		dataConn.Close()
		control.Close()
	})
	defer stop()

	if _, err := c.ctrl.expectCode(125, "RETR", remotePath); err != nil {
		return 0, contextCause(ctx, err)
	}

	w, err := open()
	if err != nil {
		return 0, err
	}

	var dst io.Writer = w
	if c.progress != nil {
		dst = newProgressWriter(w, size, c.progress)
	}
	src := ratelimit.NewReader(ctx, dataConn, c.bandwidthLimit)

	n, err := copyChunks(dst, src, c.logger)
	if err != nil {
		return n, contextCause(ctx, fmt.Errorf("download failed: %w", err))
	}

	if c.completionReply {
		if err := c.finishTransfer(dataConn, "RETR "+remotePath); err != nil {
			return n, contextCause(ctx, err)
		}
	}

	c.logger.Debug("ftp data transfer complete", "path", remotePath, "bytes", n)
	return n, nil
}

// Download retrieves remotePath into localPath, creating or truncating it.
// The file is opened only after the server accepts RETR, so a refused step
// leaves an existing file untouched. A failure during the transfer leaves
// the bytes received so far. The file is flushed and closed before Download
// returns nil.
func (c *Client) Download(ctx context.Context, remotePath, localPath string) error {
	var (
		f  *os.File
		bw *bufio.Writer
	)
	open := func() (io.Writer, error) {
		var err error
		f, err = os.Create(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create local file: %w", err)
		}
		bw = bufio.NewWriterSize(f, bufferSize)
		return bw, nil
	}

	_, err := c.retrieve(ctx, remotePath, open)
	if f == nil {
		return err
	}
	defer f.Close()

	if err != nil {
		_ = bw.Flush()
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write local file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close local file: %w", err)
	}

	return nil
}

// copyChunks copies src to dst in bufferSize chunks until src reports EOF.
func copyChunks(dst io.Writer, src io.Reader, logger *slog.Logger) (int64, error) {
	buf := make([]byte, bufferSize)
	var written int64

	for {
		n, err := src.Read(buf)
		if n > 0 {
			logger.Debug("writing bytes", "count", n)
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

// finishTransfer closes the data connection and requires the 226 reply.
func (c *Client) finishTransfer(dataConn net.Conn, command string) error {
	if err := dataConn.Close(); err != nil {
		return fmt.Errorf("failed to close data connection: %w", err)
	}

	resp, err := c.ctrl.readResponse()
	if err != nil {
		return fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.Code != 226 {
		return &ProtocolError{
			Command:  command,
			Response: resp.Message,
			Code:     resp.Code,
		}
	}

	return nil
}

// contextCause prefers the context error over the I/O error it caused.
func contextCause(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
