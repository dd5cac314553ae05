package build

import (
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// OrderKind buckets orders for the demand caps
type OrderKind int

const (
	GeneralOrder OrderKind = iota + 1
	EnergyOrder
	MetalOrder
	BuilderOrder
	EnergyStorageOrder
	MetalStorageOrder
	PrerequisiteOrder
)

const orderKindSlots = int(PrerequisiteOrder) + 1

func (k OrderKind) String() string {
	switch k {
	case GeneralOrder:
		return "general"
	case EnergyOrder:
		return "energy"
	case MetalOrder:
		return "metal"
	case BuilderOrder:
		return "builder"
	case EnergyStorageOrder:
		return "energy_storage"
	case MetalStorageOrder:
		return "metal_storage"
	case PrerequisiteOrder:
		return "prerequisite"
	default:
		return fmt.Sprintf("order_kind(%d)", int(k))
	}
}

// RemovalReason records why an order left the ledger
type RemovalReason string

const (
	RemovalCompleted   RemovalReason = "COMPLETED"
	RemovalExpired     RemovalReason = "EXPIRED"
	RemovalRetries     RemovalReason = "RETRIES"
	RemovalDecayed     RemovalReason = "DECAYED"
	RemovalCostBlocked RemovalReason = "COST_BLOCKED"
	RemovalInfeasible  RemovalReason = "INFEASIBLE"
	RemovalOutranked   RemovalReason = "OUTRANKED"
)

// Order is a pending or in-progress request to construct one unit
type Order struct {
	handle   Handle
	pos      int
	unitType shared.UnitTypeID
	category *Category
	kind     OrderKind
	builder  shared.UnitID
	site     int
	spawned  []shared.UnitID
	retries  int
	expiry   shared.Frame
	created  shared.Frame
	contrib  economy.Contribution
}

func (o *Order) Handle() Handle              { return o.handle }
func (o *Order) UnitType() shared.UnitTypeID { return o.unitType }
func (o *Order) Kind() OrderKind             { return o.kind }
func (o *Order) Builder() shared.UnitID      { return o.builder }
func (o *Order) Retries() int                { return o.retries }
func (o *Order) Expiry() shared.Frame        { return o.expiry }
func (o *Order) Created() shared.Frame       { return o.created }

// Category returns the owning build list, nil for opportunistic orders
func (o *Order) Category() *Category { return o.category }

// HasBuilder reports whether a builder is assigned
func (o *Order) HasBuilder() bool { return o.builder.IsValid() }

// Site returns the reserved resource site index
func (o *Order) Site() (int, bool) {
	return o.site, o.site >= 0
}

// Spawned returns the in-progress units created towards this order, oldest first
func (o *Order) Spawned() []shared.UnitID {
	return append([]shared.UnitID(nil), o.spawned...)
}

// FirstSpawned returns the oldest in-progress unit
func (o *Order) FirstSpawned() (shared.UnitID, bool) {
	if len(o.spawned) == 0 {
		return shared.NoUnit, false
	}
	return o.spawned[0], true
}

// IsValid reports whether the order is still worth keeping at frame: it has
// progress, a builder, or has not yet reached its expiry.
func (o *Order) IsValid(frame shared.Frame) bool {
	return len(o.spawned) > 0 || o.builder.IsValid() || frame < o.expiry
}

func (o *Order) String() string {
	return fmt.Sprintf("%s type=%d kind=%s builder=%s site=%d spawned=%d", o.handle, int(o.unitType), o.kind, o.builder, o.site, len(o.spawned))
}

func (o *Order) removeSpawned(unit shared.UnitID) bool {
	for i, u := range o.spawned {
		if u == unit {
			o.spawned = append(o.spawned[:i], o.spawned[i+1:]...)
			return true
		}
	}
	return false
}

// OrderView is a detached copy of an order for observers and reports
type OrderView struct {
	Handle   Handle
	UnitType shared.UnitTypeID
	Category string
	Kind     OrderKind
	Builder  shared.UnitID
	Site     int
	Spawned  int
	Retries  int
	Frame    shared.Frame
}

func (o *Order) view(frame shared.Frame) OrderView {
	v := OrderView{
		Handle:   o.handle,
		UnitType: o.unitType,
		Kind:     o.kind,
		Builder:  o.builder,
		Site:     o.site,
		Spawned:  len(o.spawned),
		Retries:  o.retries,
		Frame:    frame,
	}
	if o.category != nil {
		v.Category = o.category.name
	}
	return v
}
