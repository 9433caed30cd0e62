// Package ftp implements the client side of a single FTP download.
//
// # Overview
//
// A session is one fixed sequence of commands on the control connection:
//
//	<- 220 greeting
//	-> USER <user>        <- 331
//	-> PASS <pass>        <- 230
//	-> TYPE I             <- 200
//	-> SIZE <path>        <- 213 <bytes>
//	-> PASV               <- 227 ... (h1,h2,h3,h4,p1,p2)
//	   connect to h1.h2.h3.h4:p1*256+p2
//	-> RETR <path>        <- 125
//	   read the data connection until the server closes it
//
// Each step accepts exactly one status code. Any other code, even one that
// looks like success, ends the download with a *ProtocolError. There are no
// retries and no fallbacks: active mode, EPSV, TLS, listings and uploads are
// not supported.
//
// # Basic Usage
//
//	target, err := ftp.ParseTarget("ftp://anonymous@192.0.2.10/pub/file.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := ftp.Fetch(ctx, target, "file.bin"); err != nil {
//	    log.Fatal(err)
//	}
//
// Host names are not resolved; the URL must carry an IP literal.
//
// # Completion Reply
//
// After the data connection closes, most servers send "226 Transfer
// complete" on the control connection. By default that reply is not read.
// WithCompletionReply makes the client wait for it and fail on anything else.
//
// # Error Handling
//
// Failures are reported as one of:
//
//   - ErrUnexpectedEOF: the control connection closed before a reply arrived
//   - ErrUnparsableReply: a reply line, SIZE value or PASV tuple was malformed
//   - *ProtocolError: the server answered with the wrong status code
//   - ErrInvalidTarget: ParseTarget rejected the URL
//   - wrapped net and os errors for transport and file failures
//
// Use errors.Is and errors.As to tell them apart:
//
//	var pe *ftp.ProtocolError
//	if errors.As(err, &pe) {
//	    fmt.Printf("%s answered %d: %s\n", pe.Command, pe.Code, pe.Response)
//	}
//
// The local file is created only after the server accepts RETR, so a
// refused step leaves an existing file untouched. A failure during the
// transfer leaves whatever was already written.
package ftp
