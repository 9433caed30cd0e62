package ftp

import (
	"fmt"
	"net"
	"net/netip"
	"net/textproto"
	"strings"
	"sync"
	"testing"
)

// mockServer provides a simple way to script server responses.
type mockServer struct {
	listener net.Listener
	addr     netip.AddrPort

	// greeting is sent on connect; empty closes the connection immediately
	greeting string
	// silent makes the server accept and never answer
	silent bool

	// handlers override the default behavior per command (e.g., "PASS")
	handlers map[string]func(conn *textproto.Conn, args string)

	// payload is served by the default SIZE and RETR handlers
	payload []byte

	// pasvHost replaces the advertised PASV host when set
	pasvHost string

	mu               sync.Mutex
	conn             net.Conn
	dataListener     net.Listener
	receivedCommands []string

	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func newMockServer(t *testing.T) *mockServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return &mockServer{
		listener: l,
		addr:     netip.MustParseAddrPort(l.Addr().String()),
		greeting: "220 Service ready",
		handlers: make(map[string]func(*textproto.Conn, string)),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *mockServer) start() {
	go func() {
		defer close(s.done)
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		defer conn.Close()

		if s.silent {
			<-s.quit
			return
		}
		if s.greeting == "" {
			return
		}

		textConn := textproto.NewConn(conn)
		defer textConn.Close()

		_ = textConn.PrintfLine("%s", s.greeting)

		for {
			line, err := textConn.ReadLine()
			if err != nil {
				return
			}

			cmd, args, _ := strings.Cut(line, " ")
			cmd = strings.ToUpper(cmd)

			s.mu.Lock()
			s.receivedCommands = append(s.receivedCommands, cmd)
			s.mu.Unlock()

			if handler, ok := s.handlers[cmd]; ok {
				handler(textConn, args)
				continue
			}

			switch cmd {
			case "USER":
				_ = textConn.PrintfLine("331 User name okay, need password.")
			case "PASS":
				_ = textConn.PrintfLine("230 User logged in, proceed.")
			case "TYPE":
				_ = textConn.PrintfLine("200 Command okay.")
			case "SIZE":
				_ = textConn.PrintfLine("213 %d", len(s.payload))
			case "PASV":
				s.handlePASV(textConn)
			case "RETR":
				_ = textConn.PrintfLine("125 Data connection already open; transfer starting.")
				s.sendData(s.payload)
				_ = textConn.PrintfLine("226 Transfer complete.")
			default:
				_ = textConn.PrintfLine("502 Command not implemented.")
			}
		}
	}()
}

// handlePASV opens the data listener and advertises it.
func (s *mockServer) handlePASV(conn *textproto.Conn) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		_ = conn.PrintfLine("425 Can't open data connection.")
		return
	}
	s.mu.Lock()
	s.dataListener = l
	s.mu.Unlock()

	ap := netip.MustParseAddrPort(l.Addr().String())
	host := strings.ReplaceAll(ap.Addr().String(), ".", ",")
	if s.pasvHost != "" {
		host = s.pasvHost
	}
	_ = conn.PrintfLine("227 Entering Passive Mode (%s,%d,%d).", host, ap.Port()>>8, ap.Port()&0xff)
}

// acceptData returns the client's data connection.
func (s *mockServer) acceptData() (net.Conn, error) {
	s.mu.Lock()
	l := s.dataListener
	s.mu.Unlock()
	if l == nil {
		return nil, fmt.Errorf("no PASV listener")
	}
	return l.Accept()
}

// sendData writes data on the data connection and closes it.
func (s *mockServer) sendData(data []byte) {
	dc, err := s.acceptData()
	if err != nil {
		return
	}
	_, _ = dc.Write(data)
	dc.Close()
}

func (s *mockServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.receivedCommands...)
}

// stop shuts the server down and waits for its goroutine. It is safe to
// call more than once.
func (s *mockServer) stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.listener.Close()
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		if s.dataListener != nil {
			s.dataListener.Close()
		}
		s.mu.Unlock()
	})
	<-s.done
}
