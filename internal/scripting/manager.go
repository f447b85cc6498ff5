package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Hook names invoked by the game engine.
const (
	HookLevelUp = "on_level_up"
	HookYield   = "on_yield"
	HookFireOut = "on_fire_out"
)

// Manager owns a single sandboxed LState and exposes hook dispatch.
//
// The LState is single-threaded; Manager serializes every load and call.
type Manager struct {
	mu        sync.Mutex
	state     *lua.LState
	cancel    context.CancelFunc
	instLimit int
	logger    *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager; CallHook is a no-op until LoadDir succeeds.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{logger: logger}
}

// LoadDir creates a sandboxed VM, registers the idle.* module, then executes
// every *.lua file in scriptDir in lexicographic order. A previously loaded VM
// is replaced only when the new one loads cleanly.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Returns error on directory or Lua load failure.
func (m *Manager) LoadDir(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	m.closeLocked()
	m.state = L
	m.cancel = cancel
	m.instLimit = instLimit
	m.mu.Unlock()

	m.logger.Info("lua scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// CallHook calls the named Lua global function with a fresh instruction
// budget. Returns (LNil, nil) if no scripts are loaded or the hook is not
// defined. Lua runtime errors are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L := m.state
	if L == nil {
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	m.cancel()
	m.cancel = Rebudget(L, m.instLimit)

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// CallText calls hook and returns its result when it is a non-empty string.
//
// Postcondition: ok is false when the hook is absent, failed, or returned a non-string.
func (m *Manager) CallText(hook string, args ...lua.LValue) (text string, ok bool) {
	ret, err := m.CallHook(hook, args...)
	if err != nil {
		return "", false
	}
	s, isStr := ret.(lua.LString)
	if !isStr || s == "" {
		return "", false
	}
	return string(s), true
}

// Close releases the VM. CallHook is a no-op afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
