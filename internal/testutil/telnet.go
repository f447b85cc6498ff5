package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
)

// TelnetClient plays the game over a real TCP connection. Output is read as
// plain text: protocol negotiation and ANSI styling are stripped.
type TelnetClient struct {
	conn    net.Conn
	t       *testing.T
	pending string
	// carry holds an escape sequence split across reads.
	carry string
}

// NewTelnetClient dials addr and closes the connection when the test ends.
//
// Precondition: a server must be listening on addr.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{conn: conn, t: t}
}

// ReadUntil returns plain-text output up to and including the first
// occurrence of substr. Output after the match is kept for the next call, so
// consecutive expectations never lose text that arrived in one packet.
//
// Postcondition: Returns text ending in substr, or fails the test on timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	tmp := make([]byte, 1024)
	for {
		if i := strings.Index(c.pending, substr); i >= 0 {
			end := i + len(substr)
			out := c.pending[:end]
			c.pending = c.pending[end:]
			return out
		}
		n, err := c.conn.Read(tmp)
		if n > 0 {
			c.append(string(telnet.FilterIAC(tmp[:n])))
		}
		if err != nil {
			c.t.Fatalf("waiting for %q: got %q, error: %v", substr, c.pending, err)
		}
	}
}

func (c *TelnetClient) append(chunk string) {
	text := c.carry + chunk
	c.carry = ""
	if i := strings.LastIndexByte(text, '\033'); i >= 0 && !strings.Contains(text[i:], "m") {
		text, c.carry = text[:i], text[i:]
	}
	c.pending += telnet.StripANSI(text)
}

// Send writes text as one command line.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the connection early.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
