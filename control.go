package ftp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Response represents a single-line FTP server reply.
type Response struct {
	// Code is the status code (e.g., 220, 550)
	Code uint16

	// Message is everything after the first space, verbatim
	Message string
}

// String returns the reply as it appeared on the wire, without the line terminator.
func (r *Response) String() string {
	return strconv.FormatUint(uint64(r.Code), 10) + " " + r.Message
}

// parseReplyLine splits "<code> <message>" at the first space.
// The code must be a decimal number that fits in 16 bits.
//
// Example: "220 FTP server 1.0.0 ready." -> (220, "FTP server 1.0.0 ready.")
func parseReplyLine(line string) (*Response, bool) {
	code, msg, ok := strings.Cut(line, " ")
	if !ok {
		return nil, false
	}

	n, err := strconv.ParseUint(code, 10, 16)
	if err != nil {
		return nil, false
	}

	return &Response{Code: uint16(n), Message: msg}, true
}

// readResponse reads exactly one reply line from the reader.
// Continuation (multi-line) replies are not supported; each line is parsed
// on its own.
func readResponse(r *bufio.Reader) (*Response, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
		// A last line without terminator still counts
		if line == "" {
			return nil, ErrUnexpectedEOF
		}
	}

	line = strings.TrimRight(line, "\r\n")
	resp, ok := parseReplyLine(line)
	if !ok {
		return nil, unparsable("reply", line)
	}

	return resp, nil
}

// controlConn serializes commands on the control stream and reads one reply
// per command.
type controlConn struct {
	w      io.Writer
	reader *bufio.Reader
	logger *slog.Logger
}

func newControlConn(rw io.ReadWriter, logger *slog.Logger) *controlConn {
	return &controlConn{
		w:      rw,
		reader: bufio.NewReader(rw),
		logger: logger,
	}
}

// formatCommand builds the command line and the variant that is safe to log.
func formatCommand(command string, args []string) (line, logged string) {
	if len(args) == 0 {
		return command, command
	}

	line = command + " " + strings.Join(args, " ")
	if strings.EqualFold(command, "PASS") {
		return line, command + " ****"
	}
	return line, line
}

// sendCommand writes one CRLF-terminated command line.
func (cc *controlConn) sendCommand(command string, args ...string) error {
	line, logged := formatCommand(command, args)
	if strings.ContainsAny(line, "\r\n") {
		return fmt.Errorf("ftp: refusing to send command with embedded line break: %q", logged)
	}

	cc.logger.Debug("ftp command", "cmd", logged)

	if _, err := io.WriteString(cc.w, line+"\r\n"); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}
	return nil
}

// readResponse reads the next reply from the control stream.
func (cc *controlConn) readResponse() (*Response, error) {
	resp, err := readResponse(cc.reader)
	if err != nil {
		if errors.Is(err, ErrUnexpectedEOF) || errors.Is(err, ErrUnparsableReply) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	cc.logger.Debug("ftp response", "code", resp.Code, "message", resp.Message)
	return resp, nil
}

// command sends a command and returns the reply whatever its code.
func (cc *controlConn) command(command string, args ...string) (*Response, error) {
	if err := cc.sendCommand(command, args...); err != nil {
		return nil, err
	}
	return cc.readResponse()
}

// expectCode sends a command and returns the reply message if, and only if,
// the reply carries expectedCode. Any other code yields a *ProtocolError.
func (cc *controlConn) expectCode(expectedCode uint16, command string, args ...string) (string, error) {
	resp, err := cc.command(command, args...)
	if err != nil {
		return "", err
	}

	if resp.Code != expectedCode {
		_, logged := formatCommand(command, args)
		return "", &ProtocolError{
			Command:  logged,
			Response: resp.Message,
			Code:     resp.Code,
		}
	}

	return resp.Message, nil
}
