package gameserver

import (
	"errors"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/frontend/handlers"
	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
	"github.com/cory-johannsen/idlegather/internal/game/activity"
	"github.com/cory-johannsen/idlegather/internal/game/command"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
	"github.com/cory-johannsen/idlegather/internal/scripting"
	"github.com/cory-johannsen/idlegather/internal/storage"
)

// Execute brings the session up to now, then runs one command line against it.
// Events produced by catching up are rendered ahead of the command's output.
//
// Precondition: must not run concurrently with Tick or another Execute; Run
// guarantees this for submitted lines.
// Postcondition: game-level failures are rendered as text, never returned.
func (e *Engine) Execute(now time.Time, line string) Response {
	lines := e.Tick(now)

	parsed := command.Parse(line)
	if parsed.Command == "" {
		return Response{Lines: lines}
	}

	cmd, ok := e.registry.Resolve(parsed.Command)
	if !ok {
		lines = append(lines,
			telnet.Colorf(telnet.Red, "Unknown command: %s.", parsed.Command),
			handlers.RenderHelp(e.registry.Commands()),
		)
		return Response{Lines: lines}
	}

	e.logger.Debug("command", zap.String("command", cmd.Name), zap.String("args", parsed.RawArgs))

	var resp Response
	switch cmd.Handler {
	case command.HandlerGather, command.HandlerBurn:
		resp = e.handleStart(now, cmd, parsed.RawArgs)
	case command.HandlerStop:
		resp = e.handleStop(now)
	case command.HandlerStatus:
		resp = Response{Lines: []string{handlers.RenderStatus(e.sess.Player(), e.sess.Statuses(now))}}
	case command.HandlerSkills:
		resp = Response{Lines: []string{handlers.RenderSkills(e.sess.Player())}}
	case command.HandlerInventory:
		resp = Response{Lines: []string{handlers.RenderInventory(e.sess.Player().Inventory())}}
	case command.HandlerTargets:
		resp = e.handleTargets(parsed.RawArgs)
	case command.HandlerSave:
		resp = e.handleSave()
	case command.HandlerLoad:
		resp = e.handleLoad()
	case command.HandlerHelp:
		resp = Response{Lines: []string{handlers.RenderHelp(e.registry.Commands())}}
	case command.HandlerQuit:
		resp = e.handleQuit()
	default:
		resp = Response{Lines: []string{telnet.Colorf(telnet.Red, "Command %q is not available.", cmd.Name)}}
	}
	resp.Lines = append(lines, resp.Lines...)
	return resp
}

func (e *Engine) handleStart(now time.Time, cmd *command.Command, raw string) Response {
	table := e.sess.Catalog().Table(cmd.Skill)
	level := e.sess.Player().Level(cmd.Skill)
	if raw == "" {
		usage := telnet.Colorf(telnet.Yellow, "Usage: %s %s", cmd.Name, cmd.Usage)
		if names := table.Names(); len(names) > 0 {
			usage = telnet.Colorf(telnet.Yellow, "Usage: %s %s (e.g., %s %s)", cmd.Name, cmd.Usage, cmd.Name, names[0])
		}
		return Response{Lines: []string{usage, handlers.RenderTargets(table, level)}}
	}

	target, err := command.ResolveTarget(raw, table.Names())
	if err != nil {
		return Response{Lines: []string{handlers.RenderError(err)}}
	}

	events, err := e.sess.Start(now, cmd.Skill, target)
	lines := e.render(events)
	if err != nil {
		e.logger.Debug("start rejected",
			zap.String("skill", cmd.Skill.String()),
			zap.String("target", target),
			zap.Error(err),
		)
		lines = append(lines, handlers.RenderError(err))
		if errors.Is(err, activity.ErrInsufficientLevel) || errors.Is(err, activity.ErrNothingCatchable) {
			lines = append(lines, handlers.RenderTargets(table, level))
		}
	}
	return Response{Lines: lines}
}

func (e *Engine) handleStop(now time.Time) Response {
	events := e.sess.Stop(now)
	if len(events) == 0 {
		return Response{Lines: []string{telnet.Colorize(telnet.Dim, "Not doing anything.")}}
	}
	return Response{Lines: e.render(events)}
}

func (e *Engine) handleTargets(raw string) Response {
	p := e.sess.Player()
	if raw != "" {
		sk, err := skill.Parse(raw)
		if err != nil {
			return Response{Lines: []string{handlers.RenderError(err)}}
		}
		return Response{Lines: []string{handlers.RenderTargets(e.sess.Catalog().Table(sk), p.Level(sk))}}
	}
	lines := make([]string, 0, len(skill.All()))
	for _, sk := range skill.All() {
		lines = append(lines, handlers.RenderTargets(e.sess.Catalog().Table(sk), p.Level(sk)))
	}
	return Response{Lines: lines}
}

func (e *Engine) handleSave() Response {
	if err := e.save(); err != nil {
		e.logger.Error("save failed", zap.Error(err))
		return Response{Lines: []string{telnet.Colorf(telnet.Red, "Error saving game: %v", err)}}
	}
	return Response{Lines: []string{telnet.Colorize(telnet.Green, "Game saved successfully!")}}
}

func (e *Engine) handleLoad() Response {
	err := e.load()
	switch {
	case err == nil:
		return Response{Lines: []string{telnet.Colorize(telnet.Green, "Game loaded successfully!")}}
	case errors.Is(err, storage.ErrNoSave):
		return Response{Lines: []string{telnet.Colorize(telnet.Yellow, "No save found. Keep playing and 'save' first.")}}
	default:
		e.logger.Warn("load failed", zap.Error(err))
		return Response{Lines: []string{telnet.Colorf(telnet.Red, "Error loading game: %v", err)}}
	}
}

func (e *Engine) handleQuit() Response {
	lines := []string{}
	if e.cfg.SaveOnQuit {
		if err := e.save(); err != nil {
			e.logger.Error("save on quit failed", zap.Error(err))
			lines = append(lines, telnet.Colorf(telnet.Red, "Error saving game: %v", err))
		} else {
			lines = append(lines, telnet.Colorize(telnet.Green, "Game saved."))
		}
	}
	lines = append(lines, telnet.Colorize(telnet.BrightWhite, "Goodbye!"))
	return Response{Lines: lines, Quit: true}
}

// render turns events into lines, appending any flavour text the Lua hooks return.
func (e *Engine) render(events []activity.Event) []string {
	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, handlers.RenderEvent(ev))
		if text, ok := e.hookText(ev); ok {
			lines = append(lines, telnet.Colorize(telnet.Magenta, text))
		}
	}
	return lines
}

func (e *Engine) hookText(ev activity.Event) (string, bool) {
	if e.scripts == nil {
		return "", false
	}
	switch ev.Kind {
	case activity.EventLevelUp:
		return e.scripts.CallText(scripting.HookLevelUp, lua.LString(ev.Skill.String()), lua.LNumber(ev.Level))
	case activity.EventYield:
		return e.scripts.CallText(scripting.HookYield, lua.LString(ev.Skill.String()), lua.LString(ev.ItemID), lua.LNumber(ev.XP))
	case activity.EventFireOut:
		return e.scripts.CallText(scripting.HookFireOut, lua.LString(ev.ItemID))
	default:
		return "", false
	}
}

var _ handlers.Game = (*Engine)(nil)
