package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
	"github.com/cory-johannsen/idlegather/internal/game/activity"
	"github.com/cory-johannsen/idlegather/internal/game/command"
	"github.com/cory-johannsen/idlegather/internal/game/inventory"
	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

const rule = "=============================="

// verbs are the present-participle phrases used when describing an activity.
var verbs = map[skill.Skill]string{
	skill.Woodcutting: "Cutting",
	skill.Mining:      "Mining",
	skill.Fishing:     "Fishing at",
	skill.Firemaking:  "Burning",
}

// seconds formats d with one decimal place, e.g. "2.5s".
func seconds(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// formatXP prints whole numbers without a fraction and keeps one decimal otherwise.
func formatXP(xp float64) string {
	if xp == float64(int64(xp)) {
		return fmt.Sprintf("%d", int64(xp))
	}
	return fmt.Sprintf("%.1f", xp)
}

// RenderSkills formats every skill's level and progress toward the next level.
//
// Postcondition: one line per skill in display order.
func RenderSkills(p *player.Player) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "--- Skills ---"))
	for _, sk := range skill.All() {
		pr := p.Progress(sk)
		b.WriteString("\r\n")
		b.WriteString(fmt.Sprintf("  %s%-12s%s Level %2d  (XP: %s/%s)",
			telnet.BrightCyan, sk.String()+":", telnet.Reset,
			pr.Level, formatXP(pr.XP), formatXP(player.Threshold(pr.Level))))
	}
	return b.String()
}

// RenderInventory formats the ledger as "Name: qty" pairs in item order.
func RenderInventory(l *inventory.Ledger) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "--- Inventory ---"))
	b.WriteString("\r\n")
	items := l.Items()
	if len(items) == 0 {
		b.WriteString(telnet.Colorize(telnet.Dim, "  Your inventory is empty."))
		return b.String()
	}
	parts := make([]string, len(items))
	for i, e := range items {
		parts[i] = fmt.Sprintf("%s: %d", inventory.DisplayName(e.ItemID), e.Quantity)
	}
	b.WriteString("  " + strings.Join(parts, ", "))
	return b.String()
}

// RenderActivity describes the focused activity and any fire that is still
// burning without focus.
//
// Postcondition: a waiting gather shows "respawns in N.Ns"; fishing shows
// "next catch in N.Ns"; a fire shows its remaining burn time.
func RenderActivity(statuses []activity.Status) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "--- Activity ---"))

	focused := false
	for _, st := range statuses {
		if !st.Focused {
			continue
		}
		focused = true
		b.WriteString("\r\n  ")
		b.WriteString(telnet.Colorf(telnet.Green, "Current: %s - %s", st.Skill, describe(st)))
	}
	if !focused {
		b.WriteString("\r\n  ")
		b.WriteString(telnet.Colorize(telnet.Dim, "Current: Idle. Type 'help' for commands."))
	}
	for _, st := range statuses {
		if st.Focused || st.Phase != activity.PhaseBurning {
			continue
		}
		b.WriteString("\r\n  ")
		b.WriteString(telnet.Colorf(telnet.Yellow, "Fire: %s", describe(st)))
	}
	return b.String()
}

func describe(st activity.Status) string {
	details := fmt.Sprintf("%s %s", verbs[st.Skill], st.Target)
	switch st.Phase {
	case activity.PhaseWaiting:
		if st.Skill == skill.Fishing {
			return details + fmt.Sprintf(" (next catch in %s)", seconds(st.Remaining))
		}
		return details + fmt.Sprintf(" (depleted, respawns in %s)", seconds(st.Remaining))
	case activity.PhaseBurning:
		return details + fmt.Sprintf(" (%s left)", seconds(st.Remaining))
	case activity.PhaseIdle:
		if st.Target == "" {
			return "idle"
		}
		return st.Target + " (stopped)"
	default:
		return details
	}
}

// RenderStatus is the combined skills, inventory, and activity view.
func RenderStatus(p *player.Player, statuses []activity.Status) string {
	var b strings.Builder
	b.WriteString(rule)
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorize(telnet.BrightYellow, "      Idle Gatherer"))
	b.WriteString("\r\n")
	b.WriteString(rule)
	b.WriteString("\r\n")
	b.WriteString(RenderSkills(p))
	b.WriteString("\r\n")
	b.WriteString(RenderInventory(p.Inventory()))
	b.WriteString("\r\n")
	b.WriteString(RenderActivity(statuses))
	b.WriteString("\r\n")
	b.WriteString(rule)
	return b.String()
}

// RenderEvent formats one activity event as a line of narration.
func RenderEvent(ev activity.Event) string {
	switch ev.Kind {
	case activity.EventStarted:
		return telnet.Colorf(telnet.Green, "You start %s %s...", strings.ToLower(verbs[ev.Skill]), ev.Target)
	case activity.EventStopped:
		if ev.Skill == skill.Firemaking && ev.Wait > 0 {
			return telnet.Colorf(telnet.Yellow, "You step away from the fire. It will burn for another %s.", seconds(ev.Wait))
		}
		return telnet.Colorf(telnet.Yellow, "You stop %s.", strings.ToLower(strings.Fields(verbs[ev.Skill])[0]))
	case activity.EventYield:
		line := telnet.Colorf(telnet.BrightWhite, "You get %dx %s (+%s %s XP).",
			ev.Quantity, inventory.DisplayName(ev.ItemID), formatXP(ev.XP), ev.Skill)
		if ev.Skill != skill.Fishing {
			line += telnet.Colorf(telnet.Dim, " The %s is depleted. It will respawn in %s.", ev.Target, seconds(ev.Wait))
		}
		return line
	case activity.EventLevelUp:
		return telnet.Colorf(telnet.BrightYellow, "Congratulations! Your %s level is now %d!", ev.Skill, ev.Level)
	case activity.EventFireLit:
		return telnet.Colorf(telnet.BrightRed, "You burn the %s and gain %s Firemaking XP. The fire will burn for %s.",
			ev.Target, formatXP(ev.XP), seconds(ev.Wait))
	case activity.EventFireOut:
		return telnet.Colorf(telnet.Yellow, "Your %s fire has burned out.", ev.Target)
	case activity.EventNothingCatchable:
		return telnet.Colorf(telnet.Red, "You don't have the required level to catch anything at %s. Stopping.", ev.Target)
	default:
		return fmt.Sprintf("%s: %s", ev.Skill, ev.Kind)
	}
}

// RenderTargets lists the nodes of table, marking those above level.
func RenderTargets(table *resource.Table, level int) string {
	var b strings.Builder
	b.WriteString(telnet.Colorf(telnet.BrightWhite, "--- %s (level %d) ---", table.Skill(), level))
	for _, n := range table.Nodes() {
		b.WriteString("\r\n")
		color := telnet.BrightCyan
		suffix := ""
		if n.LevelReq > level {
			color = telnet.Dim
			suffix = " (locked)"
		}
		b.WriteString(fmt.Sprintf("  %s%-20s%s lvl %2d  %s%s", color, n.Name, telnet.Reset, n.LevelReq, targetDetail(n), suffix))
	}
	return b.String()
}

func targetDetail(n *resource.Node) string {
	switch {
	case n.Weighted():
		names := make([]string, len(n.Outcomes))
		for i, o := range n.Outcomes {
			names[i] = fmt.Sprintf("%s (lvl %d, %s xp)", inventory.DisplayName(o.ItemID), o.LevelReq, formatXP(o.XP))
		}
		return fmt.Sprintf("every %s: %s", seconds(n.Interval), strings.Join(names, ", "))
	case n.Skill == skill.Firemaking:
		return fmt.Sprintf("%s xp, burns %s", formatXP(n.XP), seconds(n.Interval))
	default:
		return fmt.Sprintf("%s xp, respawn %s", formatXP(n.XP), seconds(n.Interval))
	}
}

// RenderHelp lists commands grouped by category in registry order.
func RenderHelp(cmds []*command.Command) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "--- Commands ---"))
	category := ""
	for _, c := range cmds {
		if c.Category != category {
			category = c.Category
			b.WriteString("\r\n")
			b.WriteString(telnet.Colorize(telnet.Cyan, strings.ToUpper(category[:1])+category[1:]+":"))
		}
		name := c.Name
		if c.Usage != "" {
			name += " " + c.Usage
		}
		b.WriteString(fmt.Sprintf("\r\n  %s%-18s%s %s", telnet.BrightCyan, name, telnet.Reset, c.Help))
		if len(c.Aliases) > 0 {
			b.WriteString(telnet.Colorf(telnet.Dim, " (%s)", strings.Join(c.Aliases, ", ")))
		}
	}
	return b.String()
}

// playerErrors are the sentinels whose text is dropped from player-facing
// messages; the wrapping context already says what went wrong.
var playerErrors = []error{
	activity.ErrUnknownTarget,
	activity.ErrInsufficientLevel,
	activity.ErrInsufficientInventory,
	activity.ErrAlreadyActive,
	activity.ErrNothingCatchable,
	command.ErrNoMatch,
	command.ErrAmbiguous,
}

// RenderError formats err as red text. Activity errors get a hint where one helps.
func RenderError(err error) string {
	msg := err.Error()
	for _, sentinel := range playerErrors {
		if errors.Is(err, sentinel) {
			msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
		}
	}
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	switch {
	case errors.Is(err, activity.ErrUnknownTarget), errors.Is(err, command.ErrNoMatch):
		msg += ". Type 'targets' to see what is available."
	case errors.Is(err, activity.ErrAlreadyActive):
		msg += ". Type 'stop' first or pick another target."
	default:
		msg += "."
	}
	return telnet.Colorize(telnet.Red, msg)
}
