package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
)

// LineConn is a line-oriented player connection. *telnet.Conn and
// *ConsoleConn both satisfy it.
type LineConn interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	WritePrompt(prompt string) error
}

// Game is the engine surface a LineSession drives.
type Game interface {
	// Handle executes one command line and returns the rendered reply.
	Handle(ctx context.Context, line string) (lines []string, quit bool, err error)
	// Subscribe returns a channel of asynchronous notices and a cancel func.
	Subscribe(buffer int) (<-chan []string, func())
}

// noticeBuffer is the subscription depth; notices beyond it are dropped.
const noticeBuffer = 32

var prompt = telnet.Colorize(telnet.BrightCyan, "> ")

// LineSession forwards player lines to a Game and writes replies and tick
// notices back to the connection.
type LineSession struct {
	game   Game
	logger *zap.Logger
}

// NewLineSession creates a LineSession.
//
// Precondition: game and logger must be non-nil.
func NewLineSession(game Game, logger *zap.Logger) *LineSession {
	return &LineSession{game: game, logger: logger}
}

// HandleSession satisfies telnet.SessionHandler.
func (s *LineSession) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	return s.Serve(ctx, conn)
}

// Serve runs the read-dispatch-write loop until the player quits, the
// connection fails, or ctx is cancelled.
//
// Postcondition: Returns nil on quit or EOF, ctx.Err() on cancellation, or a
// wrapped error on failure.
func (s *LineSession) Serve(ctx context.Context, conn LineConn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	notices, unsubscribe := s.game.Subscribe(noticeBuffer)
	defer unsubscribe()

	if quit, err := s.dispatch(ctx, conn, "status"); err != nil || quit {
		return err
	}
	_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "Type 'help' for commands. Activities continue while you type."))
	if err := conn.WritePrompt(prompt); err != nil {
		return fmt.Errorf("writing initial prompt: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.forwardNotices(ctx, notices, conn)
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		for {
			line, err := conn.ReadLine()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				s.logger.Info("input closed; leaving session")
				_, _, _ = s.game.Handle(context.WithoutCancel(ctx), "quit")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		case line := <-lines:
			if strings.TrimSpace(line) == "" {
				_ = conn.WritePrompt(prompt)
				continue
			}
			quit, err := s.dispatch(ctx, conn, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			if err := conn.WritePrompt(prompt); err != nil {
				return fmt.Errorf("writing prompt: %w", err)
			}
		}
	}
}

func (s *LineSession) dispatch(ctx context.Context, conn LineConn, line string) (bool, error) {
	out, quit, err := s.game.Handle(ctx, line)
	if err != nil {
		return false, fmt.Errorf("handling %q: %w", line, err)
	}
	for _, l := range out {
		if err := conn.WriteLine(l); err != nil {
			return false, fmt.Errorf("writing response: %w", err)
		}
	}
	return quit, nil
}

// forwardNotices writes tick notices as they arrive and re-displays the prompt.
func (s *LineSession) forwardNotices(ctx context.Context, notices <-chan []string, conn LineConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-notices:
			if !ok {
				return
			}
			_ = conn.WriteLine("")
			for _, l := range batch {
				if err := conn.WriteLine(l); err != nil {
					s.logger.Debug("writing notice", zap.Error(err))
					return
				}
			}
			_ = conn.WritePrompt(prompt)
		}
	}
}
