// Package activity implements the per-skill state machines that turn the
// passage of time into experience and items.
package activity

import (
	"errors"
	"time"

	"github.com/cory-johannsen/idlegather/internal/game/player"
	"github.com/cory-johannsen/idlegather/internal/game/resource"
	"github.com/cory-johannsen/idlegather/internal/game/skill"
)

var (
	// ErrUnknownTarget is returned when a target name matches no node.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrInsufficientLevel is returned when the skill level is below the node requirement.
	ErrInsufficientLevel = errors.New("insufficient level")
	// ErrInsufficientInventory is returned when a consuming action lacks its input item.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrAlreadyActive is returned when the manager is already running on the requested target.
	ErrAlreadyActive = errors.New("already active")
	// ErrNothingCatchable is reported when every weighted outcome is above the current level.
	ErrNothingCatchable = errors.New("nothing catchable")
)

// EventKind classifies an Event.
type EventKind string

const (
	EventStarted          EventKind = "started"
	EventStopped          EventKind = "stopped"
	EventYield            EventKind = "yield"
	EventLevelUp          EventKind = "level_up"
	EventFireLit          EventKind = "fire_lit"
	EventFireOut          EventKind = "fire_out"
	EventNothingCatchable EventKind = "nothing_catchable"
)

// Event reports something a manager did. Managers never print; callers
// decide how to surface events.
type Event struct {
	Kind     EventKind
	Skill    skill.Skill
	Target   string
	ItemID   string
	Quantity int
	XP       float64
	Level    int
	// Wait is the time until the next yield or until the fire goes out.
	Wait time.Duration
}

// Phase names the presentational state of a manager.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseReady   Phase = "ready"
	PhaseWaiting Phase = "waiting"
	PhaseBurning Phase = "burning"
)

// Status is a read-only view of a manager for presentation.
type Status struct {
	Skill     skill.Skill
	Active    bool
	Focused   bool
	Target    string
	ReadyAt   time.Time
	Remaining time.Duration
	Phase     Phase
}

// Manager is the uniform capability every skill exposes.
//
// All methods are synchronous and must not be called concurrently; the tick
// driver serializes access.
type Manager interface {
	// Skill returns the skill this manager trains.
	Skill() skill.Skill
	// Check validates a start request without mutating any state.
	Check(target string) (*resource.Node, error)
	// Start begins the activity on target. On error no state changes.
	Start(now time.Time, target string) ([]Event, error)
	// Stop releases focus. Calling it twice is the same as once.
	Stop(now time.Time) []Event
	// Update fires any due yield or expiry.
	Update(now time.Time) []Event
	// Status reports the current state at now.
	Status(now time.Time) Status
}

func levelUpEvents(ups []player.LevelUp) []Event {
	events := make([]Event, 0, len(ups))
	for _, u := range ups {
		events = append(events, Event{Kind: EventLevelUp, Skill: u.Skill, Level: u.Level})
	}
	return events
}

func remaining(now, at time.Time) time.Duration {
	if d := at.Sub(now); d > 0 {
		return d
	}
	return 0
}
