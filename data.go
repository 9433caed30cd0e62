package ftp

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// parsePASV extracts the data endpoint from a PASV reply message.
// The tuple lies between the first '(' and the last ')'.
//
// Example: "Entering Passive Mode (145,24,145,107,207,235)."
// Returns: 145.24.145.107:53211 (207*256 + 235 = 53211)
func parsePASV(msg string) (netip.AddrPort, error) {
	lparen := strings.IndexByte(msg, '(')
	rparen := strings.LastIndexByte(msg, ')')
	if lparen < 0 || rparen < lparen {
		return netip.AddrPort{}, unparsable("PASV reply", msg)
	}

	fields := strings.Split(msg[lparen+1:rparen], ",")
	if len(fields) != 6 {
		return netip.AddrPort{}, unparsable("PASV reply", msg)
	}

	var b [6]byte
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return netip.AddrPort{}, unparsable("PASV octet", f)
		}
		b[i] = byte(n)
	}

	host := netip.AddrFrom4([4]byte{b[0], b[1], b[2], b[3]})
	port := uint16(b[4])<<8 | uint16(b[5])
	return netip.AddrPortFrom(host, port), nil
}

// resolveDataAddr replaces an unspecified PASV host (0.0.0.0) with the
// address of the server the control connection was dialed to. Servers
// behind NAT send it. The dialed address is used rather than the
// connection's peer, which is the proxy when one is configured.
func resolveDataAddr(pasv, server netip.AddrPort) netip.AddrPort {
	if !pasv.Addr().IsUnspecified() || !server.IsValid() {
		return pasv
	}
	return netip.AddrPortFrom(server.Addr().Unmap(), pasv.Port())
}

// openPassiveDataConn negotiates passive mode and connects to the endpoint
// the server reported. It must run before the transfer command is sent.
func (c *Client) openPassiveDataConn(ctx context.Context) (net.Conn, error) {
	msg, err := c.ctrl.expectCode(227, "PASV")
	if err != nil {
		return nil, err
	}

	addr, err := parsePASV(msg)
	if err != nil {
		return nil, err
	}
	addr = resolveDataAddr(addr, c.addr)

	c.logger.Info("passive mode listen address", "addr", addr.String())

	dataConn, err := c.dial(ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to data port: %w", err)
	}

	return dataConn, nil
}
