package build

import "fmt"

// Handle addresses an order in the ledger. The generation detects handles
// kept across a removal: a reused slot carries a newer generation.
type Handle struct {
	index      int
	generation uint32
}

// NoHandle is the zero handle; it never names an order
var NoHandle = Handle{}

// IsZero reports whether h is NoHandle
func (h Handle) IsZero() bool {
	return h.generation == 0
}

func (h Handle) String() string {
	if h.IsZero() {
		return "order(none)"
	}
	return fmt.Sprintf("order(%d#%d)", h.index, h.generation)
}
