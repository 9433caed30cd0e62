package ftp

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when the control connection is closed
	// before the server delivered a reply line.
	ErrUnexpectedEOF = errors.New("ftp: unexpected EOF from server")

	// ErrUnparsableReply is returned when a reply line, or data embedded in a
	// reply (the SIZE value, the PASV tuple), does not have the expected shape.
	ErrUnparsableReply = errors.New("ftp: invalid response from server")

	// ErrInvalidTarget is returned by ParseTarget for malformed URLs,
	// unsupported schemes and hosts that are not IP literals.
	ErrInvalidTarget = errors.New("ftp: bad target")
)

// ProtocolError is returned when the server answers a command with a status
// code other than the single code that step accepts.
type ProtocolError struct {
	// Command is the FTP command that was sent (e.g., "RETR /f.bin").
	// Passwords are masked.
	Command string

	// Response is the message text that followed the code.
	Response string

	// Code is the status code the server actually sent.
	Code uint16
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("ftp: %s failed: bad status code %d from server: %s", e.Command, e.Code, e.Response)
}

// IsTemporary returns true if the server reported a transient failure (4xx).
func (e *ProtocolError) IsTemporary() bool {
	return e.Code >= 400 && e.Code < 500
}

// IsPermanent returns true if the server reported a permanent failure (5xx).
func (e *ProtocolError) IsPermanent() bool {
	return e.Code >= 500 && e.Code < 600
}

func unparsable(what, text string) error {
	return fmt.Errorf("%w: %s %q", ErrUnparsableReply, what, text)
}
