package build

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// ErrOrderNotFound is returned when a handle does not name a live order
var ErrOrderNotFound = errors.New("build order not found")

// StaleHandleError is the panic value of Ledger.MustGet
type StaleHandleError = shared.StaleHandleError

// ErrUnknownUnitType indicates a reference to a type the catalog does not know
type ErrUnknownUnitType struct {
	Type    shared.UnitTypeID
	Context string
}

func (e *ErrUnknownUnitType) Error() string {
	return fmt.Sprintf("unknown unit type %d in %s", int(e.Type), e.Context)
}

// ErrDuplicateUnitType indicates two definitions share an ID
type ErrDuplicateUnitType struct {
	Type shared.UnitTypeID
}

func (e *ErrDuplicateUnitType) Error() string {
	return fmt.Sprintf("duplicate unit type %d", int(e.Type))
}

// InvariantError lists every ledger inconsistency found by CheckInvariants
type InvariantError struct {
	Violations []string
}

func (e *InvariantError) Error() string {
	if len(e.Violations) == 1 {
		return "ledger invariant violated: " + e.Violations[0]
	}
	return fmt.Sprintf("ledger invariants violated (%d): %s ...", len(e.Violations), e.Violations[0])
}
