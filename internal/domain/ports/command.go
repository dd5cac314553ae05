package ports

import (
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// CommandKind identifies what a command asks a unit to do
type CommandKind int

const (
	CommandStop CommandKind = iota
	CommandBuild
	CommandRepair
	CommandReclaimUnit
	CommandReclaimArea
	CommandResurrect
	CommandCapture
	CommandGuard
	CommandWait
	CommandMove
)

var commandNames = map[CommandKind]string{
	CommandStop:        "stop",
	CommandBuild:       "build",
	CommandRepair:      "repair",
	CommandReclaimUnit: "reclaim",
	CommandReclaimArea: "reclaim_area",
	CommandResurrect:   "resurrect",
	CommandCapture:     "capture",
	CommandGuard:       "guard",
	CommandWait:        "wait",
	CommandMove:        "move",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// NoFacing leaves the building orientation to the host
const NoFacing = -1

// Command is one instruction for a unit. Only the fields relevant to Kind are set.
type Command struct {
	Kind     CommandKind
	UnitType shared.UnitTypeID
	Position shared.Position
	Radius   float64
	Target   shared.UnitID
	Facing   int
}

// HasPosition reports whether the command carries a map position
func (c Command) HasPosition() bool {
	return c.Position.IsValid()
}

func (c Command) String() string {
	switch c.Kind {
	case CommandBuild:
		return fmt.Sprintf("build %d at %s", c.UnitType, c.Position)
	case CommandReclaimArea, CommandResurrect:
		return fmt.Sprintf("%s %s r=%.0f", c.Kind, c.Position, c.Radius)
	case CommandRepair, CommandReclaimUnit, CommandCapture, CommandGuard:
		return fmt.Sprintf("%s %s", c.Kind, c.Target)
	case CommandMove:
		return fmt.Sprintf("move %s", c.Position)
	default:
		return c.Kind.String()
	}
}

func targeted(kind CommandKind, target shared.UnitID) Command {
	return Command{Kind: kind, Target: target, Position: shared.InvalidPosition, UnitType: shared.NoUnitType, Facing: NoFacing}
}

func area(kind CommandKind, pos shared.Position, radius float64) Command {
	return Command{Kind: kind, Position: pos, Radius: radius, Target: shared.NoUnit, UnitType: shared.NoUnitType, Facing: NoFacing}
}

// Build asks a builder to construct t at pos
func Build(t shared.UnitTypeID, pos shared.Position, facing int) Command {
	return Command{Kind: CommandBuild, UnitType: t, Position: pos, Target: shared.NoUnit, Facing: facing}
}

func Repair(target shared.UnitID) Command      { return targeted(CommandRepair, target) }
func ReclaimUnit(target shared.UnitID) Command { return targeted(CommandReclaimUnit, target) }
func Capture(target shared.UnitID) Command     { return targeted(CommandCapture, target) }
func Guard(target shared.UnitID) Command       { return targeted(CommandGuard, target) }

func ReclaimArea(pos shared.Position, radius float64) Command {
	return area(CommandReclaimArea, pos, radius)
}

func Resurrect(pos shared.Position, radius float64) Command {
	return area(CommandResurrect, pos, radius)
}

func Move(pos shared.Position) Command { return area(CommandMove, pos, 0) }

func Wait() Command { return targeted(CommandWait, shared.NoUnit) }

func Stop() Command { return targeted(CommandStop, shared.NoUnit) }
