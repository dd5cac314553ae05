package resource

import (
	"errors"
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

var (
	// ErrSnapshotMismatch is returned when a stored graph does not describe the current sites
	ErrSnapshotMismatch = errors.New("site graph snapshot does not match the selected sites")
)

func newSiteIndexError(index, size int) *shared.SiteError {
	return shared.NewSiteError(fmt.Sprintf("site index %d out of range (have %d sites)", index, size), index)
}
