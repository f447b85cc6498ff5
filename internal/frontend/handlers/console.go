package handlers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
)

// ConsoleConn adapts a terminal's input and output streams to LineConn.
type ConsoleConn struct {
	scanner *bufio.Scanner
	out     io.Writer
	color   bool
	mu      sync.Mutex
}

// NewConsoleConn wraps in and out. When color is false ANSI sequences are
// stripped from everything written.
//
// Postcondition: Returns a ConsoleConn ready for reading and writing.
func NewConsoleConn(in io.Reader, out io.Writer, color bool) *ConsoleConn {
	return &ConsoleConn{scanner: bufio.NewScanner(in), out: out, color: color}
}

// ReadLine returns the next input line without its terminator.
//
// Postcondition: Returns io.EOF once input is exhausted.
func (c *ConsoleConn) ReadLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(c.scanner.Text(), "\r"), nil
}

// WriteLine writes text followed by a newline.
func (c *ConsoleConn) WriteLine(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, c.filter(text))
	return err
}

// WritePrompt writes prompt without a trailing newline.
func (c *ConsoleConn) WritePrompt(prompt string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprint(c.out, c.filter(prompt))
	return err
}

func (c *ConsoleConn) filter(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !c.color {
		s = telnet.StripANSI(s)
	}
	return s
}
