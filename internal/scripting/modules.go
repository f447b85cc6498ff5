package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/idlegather/internal/game/inventory"
	"github.com/cory-johannsen/idlegather/internal/game/player"
)

// RegisterModules registers the idle.* Lua table into L:
//
//	idle.log(msg)            logs msg at info level
//	idle.display_name(id)    "raw_shrimps" -> "Raw Shrimps"
//	idle.threshold(level)    XP required to leave level
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: idle global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(mod, "display_name", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(inventory.DisplayName(L.CheckString(1))))
		return 1
	}))
	L.SetField(mod, "threshold", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(player.Threshold(L.CheckInt(1))))
		return 1
	}))
	L.SetGlobal("idle", mod)
}
