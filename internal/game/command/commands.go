// Package command provides the command registry, parser, and built-in command definitions.
package command

import "github.com/cory-johannsen/idlegather/internal/game/skill"

// Categories for organizing commands.
const (
	CategoryActivity = "activity"
	CategoryInfo     = "info"
	CategorySystem   = "system"
)

// Handler identifiers mapping commands to interpreter actions.
const (
	HandlerGather    = "gather"
	HandlerBurn      = "burn"
	HandlerStop      = "stop"
	HandlerStatus    = "status"
	HandlerSkills    = "skills"
	HandlerInventory = "inventory"
	HandlerTargets   = "targets"
	HandlerSave      = "save"
	HandlerLoad      = "load"
	HandlerHelp      = "help"
	HandlerQuit      = "quit"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage shows the argument shape, e.g. "<tree>".
	Usage string
	// Help is the short help text displayed to players.
	Help string
	// Category groups the command (activity, info, system).
	Category string
	// Handler selects the interpreter action.
	Handler string
	// Skill is the skill an activity command starts; empty otherwise.
	Skill skill.Skill
}

// BuiltinCommands returns all built-in commands for the game.
func BuiltinCommands() []Command {
	return []Command{
		// Activity commands
		{Name: "chop", Aliases: []string{"wc", "cut"}, Usage: "<tree>", Help: "Cut logs from a tree", Category: CategoryActivity, Handler: HandlerGather, Skill: skill.Woodcutting},
		{Name: "mine", Usage: "<rock>", Help: "Mine ore from a rock", Category: CategoryActivity, Handler: HandlerGather, Skill: skill.Mining},
		{Name: "fish", Usage: "<spot>", Help: "Fish at a fishing spot", Category: CategoryActivity, Handler: HandlerGather, Skill: skill.Fishing},
		{Name: "burn", Aliases: []string{"light", "fm"}, Usage: "<log>", Help: "Light a fire with a log from your inventory", Category: CategoryActivity, Handler: HandlerBurn, Skill: skill.Firemaking},
		{Name: "stop", Help: "Stop the current activity", Category: CategoryActivity, Handler: HandlerStop},

		// Info commands
		{Name: "status", Aliases: []string{"st"}, Help: "Show skills, inventory, and activity", Category: CategoryInfo, Handler: HandlerStatus},
		{Name: "skills", Help: "Show skill levels and experience", Category: CategoryInfo, Handler: HandlerSkills},
		{Name: "inventory", Aliases: []string{"inv", "i"}, Help: "Show your inventory", Category: CategoryInfo, Handler: HandlerInventory},
		{Name: "targets", Aliases: []string{"list", "ls"}, Usage: "[skill]", Help: "List trees, rocks, spots, and logs", Category: CategoryInfo, Handler: HandlerTargets},

		// System commands
		{Name: "save", Help: "Save your progress", Category: CategorySystem, Handler: HandlerSave},
		{Name: "load", Help: "Reload your last save", Category: CategorySystem, Handler: HandlerLoad},
		{Name: "help", Aliases: []string{"?"}, Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Save and leave the game", Category: CategorySystem, Handler: HandlerQuit},
	}
}
