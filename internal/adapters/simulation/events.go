package simulation

import (
	"context"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// EventKind is the kind of host callback an Event turns into
type EventKind int

const (
	EventCreated EventKind = iota
	EventFinished
	EventDestroyed
	EventIdle
	EventDamaged
	EventMoveFailed
	EventEnemySeen
	EventEnemyDestroyed
)

var eventNames = map[EventKind]string{
	EventCreated:        "created",
	EventFinished:       "finished",
	EventDestroyed:      "destroyed",
	EventIdle:           "idle",
	EventDamaged:        "damaged",
	EventMoveFailed:     "move_failed",
	EventEnemySeen:      "enemy_seen",
	EventEnemyDestroyed: "enemy_destroyed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is something the world reports to the bot
type Event struct {
	Kind     EventKind
	Unit     shared.UnitID
	Type     shared.UnitTypeID
	Position shared.Position
	Frame    shared.Frame
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s type=%d at %s", e.Kind, e.Unit, e.Type, e.Position)
}

// Bot receives the world's callbacks. ai.Instance satisfies it.
type Bot interface {
	UnitCreated(ctx context.Context, unit shared.UnitID, t shared.UnitTypeID, pos shared.Position, frame shared.Frame)
	UnitFinished(ctx context.Context, unit shared.UnitID, frame shared.Frame)
	UnitDestroyed(ctx context.Context, unit shared.UnitID, frame shared.Frame)
	UnitIdle(ctx context.Context, unit shared.UnitID, frame shared.Frame)
	UnitDamaged(ctx context.Context, unit shared.UnitID, frame shared.Frame)
	UnitMoveFailed(ctx context.Context, unit shared.UnitID, frame shared.Frame)
	EnemyEnteredLOS(ctx context.Context, enemy shared.UnitID, t shared.UnitTypeID, pos shared.Position, frame shared.Frame)
	EnemyDestroyed(ctx context.Context, enemy shared.UnitID, t shared.UnitTypeID, frame shared.Frame)
	Update(ctx context.Context, frame shared.Frame)
}

// Deliver hands e to the matching callback of bot
func Deliver(ctx context.Context, bot Bot, e Event) {
	switch e.Kind {
	case EventCreated:
		bot.UnitCreated(ctx, e.Unit, e.Type, e.Position, e.Frame)
	case EventFinished:
		bot.UnitFinished(ctx, e.Unit, e.Frame)
	case EventDestroyed:
		bot.UnitDestroyed(ctx, e.Unit, e.Frame)
	case EventIdle:
		bot.UnitIdle(ctx, e.Unit, e.Frame)
	case EventDamaged:
		bot.UnitDamaged(ctx, e.Unit, e.Frame)
	case EventMoveFailed:
		bot.UnitMoveFailed(ctx, e.Unit, e.Frame)
	case EventEnemySeen:
		bot.EnemyEnteredLOS(ctx, e.Unit, e.Type, e.Position, e.Frame)
	case EventEnemyDestroyed:
		bot.EnemyDestroyed(ctx, e.Unit, e.Type, e.Frame)
	}
}
