package shared

import "fmt"

// UnitID identifies a unit in the host engine
type UnitID int

// NoUnit marks an empty unit reference
const NoUnit UnitID = -1

// IsValid reports whether id refers to a unit
func (id UnitID) IsValid() bool {
	return id >= 0
}

func (id UnitID) String() string {
	if id < 0 {
		return "none"
	}
	return fmt.Sprintf("unit-%d", int(id))
}

// UnitTypeID identifies a unit definition in the host engine
type UnitTypeID int

// NoUnitType marks an empty unit type reference
const NoUnitType UnitTypeID = -1

// Frame is a simulation frame number. The host runs at FramesPerSecond.
type Frame int

// FramesPerSecond is the lockstep simulation rate
const FramesPerSecond = 30

// Seconds converts a frame count into seconds of game time
func (f Frame) Seconds() float64 {
	return float64(f) / FramesPerSecond
}
