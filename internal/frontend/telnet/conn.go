package telnet

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet protocol bytes (RFC 854) the game sends or has to skip over.
const (
	IAC  byte = 255
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250
	SE   byte = 240

	OptSuppressGoAhead byte = 3
)

const (
	backspace byte = 0x08
	del       byte = 0x7f
)

// maxLineLength caps a single command line. Anything longer is truncated.
const maxLineLength = 512

// Conn is a player's Telnet connection. Reads strip protocol negotiation and
// apply line editing; writes are serialized so tick notices and command
// replies never interleave mid-line.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps an accepted TCP connection. A zero timeout disables that deadline.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate tells the client the server will not send go-ahead, which keeps
// line-mode clients from waiting on GA after each prompt.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine returns the next command line without its terminator.
//
// Postcondition: The line holds no protocol bytes or control characters other
// than tab; backspace and DEL erase the previous character.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}

		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return line.String(), err
			}
		case b == '\n':
			return line.String(), nil
		case b == '\r':
			// CR LF and CR NUL both end the line.
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return line.String(), nil
		case b == backspace || b == del:
			if line.Len() > 0 {
				line.Truncate(line.Len() - 1)
			}
		case b < 32 && b != '\t':
		default:
			if line.Len() < maxLineLength {
				line.WriteByte(b)
			}
		}
	}
}

// skipCommand consumes the rest of a command whose IAC byte was already read.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if next == SE {
				return nil
			}
		}
	}
	return nil
}

// WriteLine sends text followed by CRLF. Embedded "\n" line breaks are
// normalized to CRLF so multi-line renders display correctly.
func (c *Conn) WriteLine(text string) error {
	return c.write([]byte(crlf(text) + "\r\n"))
}

// WritePrompt sends a prompt without a line break.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write([]byte(prompt))
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the underlying TCP connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client's network address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

func crlf(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
}

// FilterIAC removes Telnet commands from a raw byte stream, keeping escaped
// 0xFF data bytes. Test clients use it to read server output as plain text.
func FilterIAC(input []byte) []byte {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		if input[i] != IAC || i+1 >= len(input) {
			out = append(out, input[i])
			continue
		}
		switch input[i+1] {
		case WILL, WONT, DO, DONT:
			i += 2
		case SB:
			j := i + 2
			for j+1 < len(input) && !(input[j] == IAC && input[j+1] == SE) {
				j++
			}
			i = j + 1
		case IAC:
			out = append(out, IAC)
			i++
		default:
			i++
		}
	}
	return out
}
