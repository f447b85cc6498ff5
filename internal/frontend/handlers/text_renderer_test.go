package handlers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/idlegather/internal/frontend/telnet"
	"github.com/cory-johannsen/idlegather/internal/game/activity"
	"github.com/cory-johannsen/idlegather/internal/game/command"
	"github.com/cory-johannsen/idlegather/internal/game/inventory"
	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

func TestRenderSkills(t *testing.T) {
	p := player.New(uuid.New())
	p.AddExperience(skill.Mining, 250)
	p.AddExperience(skill.Woodcutting, 37.5)

	stripped := telnet.StripANSI(RenderSkills(p))
	assert.Contains(t, stripped, "Mining:")
	assert.Contains(t, stripped, "Level  3  (XP: 250/300)")
	assert.Contains(t, stripped, "(XP: 37.5/100)")
	assert.Contains(t, stripped, "Firemaking:")
}

func TestRenderInventory(t *testing.T) {
	l := inventory.NewLedger()
	assert.Contains(t, telnet.StripANSI(RenderInventory(l)), "Your inventory is empty.")

	l.Add("raw_shrimps", 3)
	l.Add("copper_ore", 2)
	stripped := telnet.StripANSI(RenderInventory(l))
	assert.Contains(t, stripped, "Copper Ore: 2, Raw Shrimps: 3")
}

func TestRenderActivity_Idle(t *testing.T) {
	stripped := telnet.StripANSI(RenderActivity([]activity.Status{{Skill: skill.Mining, Phase: activity.PhaseIdle}}))
	assert.Contains(t, stripped, "Current: Idle.")
}

func TestRenderActivity_RespawnCountdown(t *testing.T) {
	statuses := []activity.Status{
		{Skill: skill.Woodcutting, Active: true, Focused: true, Target: "Oak Tree", Remaining: 1500 * time.Millisecond, Phase: activity.PhaseWaiting},
		{Skill: skill.Firemaking, Active: true, Target: "Yew Log", Remaining: 12 * time.Second, Phase: activity.PhaseBurning},
	}
	stripped := telnet.StripANSI(RenderActivity(statuses))
	assert.Contains(t, stripped, "Current: Woodcutting - Cutting Oak Tree (depleted, respawns in 1.5s)")
	assert.Contains(t, stripped, "Fire: Burning Yew Log (12.0s left)")
	assert.NotContains(t, stripped, "Idle")
}

func TestRenderActivity_FishingCountdown(t *testing.T) {
	statuses := []activity.Status{
		{Skill: skill.Fishing, Active: true, Focused: true, Target: "Netting Spot", Remaining: 2 * time.Second, Phase: activity.PhaseWaiting},
	}
	assert.Contains(t, telnet.StripANSI(RenderActivity(statuses)), "Fishing at Netting Spot (next catch in 2.0s)")
}

func TestRenderEvent(t *testing.T) {
	cases := []struct {
		ev   activity.Event
		want string
	}{
		{activity.Event{Kind: activity.EventStarted, Skill: skill.Mining, Target: "Copper Ore"}, "You start mining Copper Ore..."},
		{activity.Event{Kind: activity.EventStarted, Skill: skill.Fishing, Target: "Netting Spot"}, "You start fishing at Netting Spot..."},
		{activity.Event{Kind: activity.EventStopped, Skill: skill.Woodcutting}, "You stop cutting."},
		{activity.Event{Kind: activity.EventStopped, Skill: skill.Firemaking, Wait: 4 * time.Second}, "It will burn for another 4.0s."},
		{activity.Event{Kind: activity.EventYield, Skill: skill.Mining, Target: "Copper Ore", ItemID: "copper_ore", Quantity: 1, XP: 17.5, Wait: 3 * time.Second}, "You get 1x Copper Ore (+17.5 Mining XP). The Copper Ore is depleted. It will respawn in 3.0s."},
		{activity.Event{Kind: activity.EventYield, Skill: skill.Fishing, Target: "Netting Spot", ItemID: "raw_shrimps", Quantity: 1, XP: 10}, "You get 1x Raw Shrimps (+10 Fishing XP)."},
		{activity.Event{Kind: activity.EventLevelUp, Skill: skill.Mining, Level: 2}, "Congratulations! Your Mining level is now 2!"},
		{activity.Event{Kind: activity.EventFireLit, Skill: skill.Firemaking, Target: "Oak Log", XP: 60, Wait: 12 * time.Second}, "You burn the Oak Log and gain 60 Firemaking XP. The fire will burn for 12.0s."},
		{activity.Event{Kind: activity.EventFireOut, Skill: skill.Firemaking, Target: "Oak Log"}, "Your Oak Log fire has burned out."},
		{activity.Event{Kind: activity.EventNothingCatchable, Skill: skill.Fishing, Target: "Harpoon Spot"}, "catch anything at Harpoon Spot"},
	}
	for _, tc := range cases {
		t.Run(string(tc.ev.Kind), func(t *testing.T) {
			assert.Contains(t, telnet.StripANSI(RenderEvent(tc.ev)), tc.want)
		})
	}
	assert.NotContains(t, telnet.StripANSI(RenderEvent(cases[5].ev)), "depleted")
}

func TestRenderTargets(t *testing.T) {
	table := resource.DefaultCatalog().Table(skill.Woodcutting)
	stripped := telnet.StripANSI(RenderTargets(table, 20))
	assert.Contains(t, stripped, "--- Woodcutting (level 20) ---")
	assert.Contains(t, stripped, "Normal Tree")
	assert.Regexp(t, `Oak Tree\s+lvl 15  37.5 xp, respawn 8.0s\n`, strings.ReplaceAll(stripped, "\r", "")+"\n")
	assert.Regexp(t, `Yew Tree.*\(locked\)`, stripped)

	fishing := telnet.StripANSI(RenderTargets(resource.DefaultCatalog().Table(skill.Fishing), 1))
	assert.Contains(t, fishing, "Raw Shrimps (lvl 1, 10 xp)")
}

func TestRenderHelp(t *testing.T) {
	stripped := telnet.StripANSI(RenderHelp(command.DefaultRegistry().Commands()))
	assert.Contains(t, stripped, "Activity:")
	assert.Contains(t, stripped, "chop <tree>")
	assert.Contains(t, stripped, "(wc, cut)")
	assert.Less(t, strings.Index(stripped, "Activity:"), strings.Index(stripped, "System:"))
}

func TestRenderError_TrimsSentinel(t *testing.T) {
	err := fmt.Errorf("you need level 15 Woodcutting for Oak Tree (you have 1): %w", activity.ErrInsufficientLevel)
	assert.Equal(t, "You need level 15 Woodcutting for Oak Tree (you have 1).", telnet.StripANSI(RenderError(err)))

	err = fmt.Errorf("no Mining target named %q: %w", "gold", activity.ErrUnknownTarget)
	assert.Contains(t, telnet.StripANSI(RenderError(err)), "Type 'targets'")
}

func TestProperty_RenderInventoryListsEveryItem(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := inventory.NewLedger()
		ids := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{2,8}(_[a-z]{2,8})?`), rapid.ID[string]).Draw(t, "ids")
		for _, id := range ids {
			l.Add(id, rapid.IntRange(1, 99).Draw(t, "qty"))
		}
		out := telnet.StripANSI(RenderInventory(l))
		for _, id := range ids {
			want := fmt.Sprintf("%s: %d", inventory.DisplayName(id), l.Quantity(id))
			if !strings.Contains(out, want) {
				t.Fatalf("missing %q in %q", want, out)
			}
		}
	})
}
