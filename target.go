package ftp

import (
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPort is used when the URL does not name a port.
const DefaultPort = 21

// Target is a parsed ftp:// URL: where to connect, who to log in as and
// which file to fetch.
type Target struct {
	Addr netip.AddrPort
	User string
	Pass string
	Path string
}

// Credentials returns the login pair carried by the target.
func (t *Target) Credentials() Credentials {
	return Credentials{User: t.User, Pass: t.Pass}
}

// String returns the target as a URL with the password removed.
func (t *Target) String() string {
	u := url.URL{
		Scheme: "ftp",
		User:   url.User(t.User),
		Host:   t.Addr.String(),
		Path:   t.Path,
	}
	return u.String()
}

// ParseTarget parses ftp://[user[:password]@]host[:port]/remote-path.
//
// Host names are not resolved: the host must be an IPv4 or IPv6 literal.
// The port defaults to 21, the user to "anonymous" and the password to "".
// All failures wrap ErrInvalidTarget.
func ParseTarget(raw string) (*Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}

	if u.Scheme != "ftp" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidTarget, u.Scheme)
	}

	host, err := netip.ParseAddr(u.Hostname())
	if err != nil {
		return nil, fmt.Errorf("%w: host %q is not an IP address", ErrInvalidTarget, u.Hostname())
	}

	port := uint16(DefaultPort)
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidTarget, p)
		}
		port = uint16(n)
	}

	if u.Path == "" {
		return nil, fmt.Errorf("%w: missing remote path", ErrInvalidTarget)
	}
	if strings.ContainsAny(u.Path, "\r\n") {
		return nil, fmt.Errorf("%w: remote path contains a line break", ErrInvalidTarget)
	}

	t := &Target{
		Addr: netip.AddrPortFrom(host, port),
		User: u.User.Username(),
		Path: u.Path,
	}
	if t.User == "" {
		t.User = "anonymous"
	}
	if pass, ok := u.User.Password(); ok {
		t.Pass = pass
	}
	if strings.ContainsAny(t.User+t.Pass, "\r\n") {
		return nil, fmt.Errorf("%w: credentials contain a line break", ErrInvalidTarget)
	}

	return t, nil
}
