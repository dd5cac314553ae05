package build

import (
	"fmt"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/resource"
	"github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"
)

// SiteBinder finds and reserves resource sites for site-bound orders
type SiteBinder interface {
	FindSite(from shared.Position, unitType shared.UnitTypeID, classID int) (*resource.Site, bool)
	Reserve(index int, builder shared.UnitID) error
	Release(index int)
}

// HealthReader reports the current health of a unit; zero or less means dead
type HealthReader interface {
	Health(unit shared.UnitID) float64
}

// BuilderRef identifies the builder being attached to an order
type BuilderRef struct {
	ID            shared.UnitID
	Position      shared.Position
	MovementClass int
}

// Construction links a unit under construction to the order that spawned it.
// Abandoned entries outlive their order until the unit finishes or dies.
type Construction struct {
	Order     Handle
	UnitType  shared.UnitTypeID
	Abandoned bool
}

// Observer is told about every ledger mutation
type Observer interface {
	OrderCreated(order OrderView)
	OrderAssigned(order OrderView, previous shared.UnitID)
	OrderRemoved(order OrderView, reason RemovalReason)
}

// LedgerConfig holds the order lifetime settings
type LedgerConfig struct {
	// Lease is how long an order without progress or builder survives
	Lease shared.Frame
}

// DefaultLedgerConfig returns the standard order lease
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{Lease: 1200}
}

type slot struct {
	order      *Order
	generation uint32
}

// Ledger owns every live build order.
//
// Orders sit in stable arena slots addressed by generation-checked handles
// and are also kept in a dense list that is compacted by swap-with-last on
// removal. Builders refer to their order through a weak builder table that
// AssignBuilder and Remove keep in step with the orders.
type Ledger struct {
	config  LedgerConfig
	catalog *Catalog
	sites   SiteBinder

	slots []slot
	free  []int
	live  []*Order

	byBuilder     map[shared.UnitID]Handle
	constructions map[shared.UnitID]*Construction
	kinds         [orderKindSlots]int
	accounting    economy.Accounting
	prerequisite  Handle

	lastBuilder      shared.UnitID
	lastBuilderFrame shared.Frame

	observers []Observer
}

// NewLedger creates an empty ledger. sites may be nil when no type needs a site.
func NewLedger(catalog *Catalog, sites SiteBinder, cfg LedgerConfig) *Ledger {
	return &Ledger{
		config:           cfg,
		catalog:          catalog,
		sites:            sites,
		byBuilder:        make(map[shared.UnitID]Handle),
		constructions:    make(map[shared.UnitID]*Construction),
		lastBuilder:      shared.NoUnit,
		lastBuilderFrame: -1,
	}
}

// Observe registers an observer for subsequent mutations
func (l *Ledger) Observe(o Observer) {
	l.observers = append(l.observers, o)
}

// Len returns the number of live orders
func (l *Ledger) Len() int { return len(l.live) }

// Count returns the number of live orders of a kind
func (l *Ledger) Count(kind OrderKind) int {
	if kind <= 0 || int(kind) >= orderKindSlots {
		return 0
	}
	return l.kinds[kind]
}

// QueueCounts returns the ledger sizes the demand caps are measured against
func (l *Ledger) QueueCounts() economy.QueueCounts {
	return economy.QueueCounts{
		Total:         len(l.live),
		Energy:        l.kinds[EnergyOrder],
		Metal:         l.kinds[MetalOrder],
		Builder:       l.kinds[BuilderOrder],
		EnergyStorage: l.kinds[EnergyStorageOrder],
		MetalStorage:  l.kinds[MetalStorageOrder],
	}
}

// Accounting returns the resources committed to live orders
func (l *Ledger) Accounting() economy.Accounting { return l.accounting }

// Orders returns the live orders in ledger order
func (l *Ledger) Orders() []*Order {
	return append([]*Order(nil), l.live...)
}

// Get resolves a handle; ok is false for stale or zero handles
func (l *Ledger) Get(h Handle) (*Order, bool) {
	if h.IsZero() || h.index < 0 || h.index >= len(l.slots) {
		return nil, false
	}
	s := l.slots[h.index]
	if s.generation != h.generation || s.order == nil {
		return nil, false
	}
	return s.order, true
}

// MustGet resolves a handle and panics with a *StaleHandleError when the
// order is gone. Reaching the panic means a caller kept a handle across a removal.
func (l *Ledger) MustGet(h Handle) *Order {
	o, ok := l.Get(h)
	if !ok {
		current := uint32(0)
		if h.index >= 0 && h.index < len(l.slots) {
			current = l.slots[h.index].generation
		}
		panic(shared.NewStaleHandleError(h.index, h.generation, current))
	}
	return o
}

// OrderOf returns the order a builder is assigned to
func (l *Ledger) OrderOf(builder shared.UnitID) (*Order, bool) {
	h, ok := l.byBuilder[builder]
	if !ok {
		return nil, false
	}
	return l.Get(h)
}

// Prerequisite returns the pending prerequisite order, if any
func (l *Ledger) Prerequisite() (*Order, bool) {
	if l.prerequisite.IsZero() {
		return nil, false
	}
	o, ok := l.Get(l.prerequisite)
	if !ok {
		l.prerequisite = NoHandle
	}
	return o, ok
}

// SetPrerequisite marks h as the one pending prerequisite order
func (l *Ledger) SetPrerequisite(h Handle) error {
	if _, ok := l.Get(h); !ok {
		return fmt.Errorf("set prerequisite %s: %w", h, ErrOrderNotFound)
	}
	l.prerequisite = h
	return nil
}

// LastRemovedBuilder returns the builder of the most recently removed
// assigned order and the frame it was removed at
func (l *Ledger) LastRemovedBuilder() (shared.UnitID, shared.Frame) {
	return l.lastBuilder, l.lastBuilderFrame
}

// Create queues a new order for unitType. cat may be nil for opportunistic orders.
func (l *Ledger) Create(unitType shared.UnitTypeID, cat *Category, kind OrderKind, frame shared.Frame) (Handle, error) {
	if _, ok := l.catalog.Type(unitType); !ok {
		return NoHandle, &ErrUnknownUnitType{Type: unitType, Context: "new order"}
	}
	if kind <= 0 || int(kind) >= orderKindSlots {
		kind = GeneralOrder
	}

	var idx int
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		l.slots = append(l.slots, slot{})
		idx = len(l.slots) - 1
	}
	l.slots[idx].generation++

	o := &Order{
		handle:   Handle{index: idx, generation: l.slots[idx].generation},
		pos:      len(l.live),
		unitType: unitType,
		category: cat,
		kind:     kind,
		builder:  shared.NoUnit,
		site:     -1,
		expiry:   frame + l.config.Lease,
		created:  frame,
		contrib:  l.catalog.Contribution(unitType),
	}
	l.slots[idx].order = o
	l.live = append(l.live, o)

	l.kinds[kind]++
	if cat != nil {
		cat.increment()
	}
	l.catalog.orderQueued(unitType)
	l.accounting.AddOrder(o.contrib)

	for _, obs := range l.observers {
		obs.OrderCreated(o.view(frame))
	}
	return o.handle, nil
}

// AssignBuilder attaches b to the order, detaching whichever builder held it
// before and whichever order b held before. A site-bound order also reserves
// the nearest usable site reachable by the builder.
func (l *Ledger) AssignBuilder(h Handle, b BuilderRef, frame shared.Frame) error {
	o, ok := l.Get(h)
	if !ok {
		return fmt.Errorf("assign builder %s to %s: %w", b.ID, h, ErrOrderNotFound)
	}
	if !b.ID.IsValid() {
		return l.Unassign(h, frame)
	}
	previous := o.builder
	if previous == b.ID {
		return nil
	}
	if held, ok := l.OrderOf(b.ID); ok {
		l.detach(held, frame)
	}
	l.detach(o, frame)

	o.builder = b.ID
	o.expiry = frame + l.config.Lease
	l.byBuilder[b.ID] = o.handle
	l.accounting.BuilderAttached(o.contrib)

	if def, _ := l.catalog.Type(o.unitType); def.NeedsSite() && l.sites != nil {
		if site, found := l.sites.FindSite(b.Position, o.unitType, b.MovementClass); found {
			if err := l.sites.Reserve(site.Index(), b.ID); err == nil {
				o.site = site.Index()
			}
		}
	}

	for _, obs := range l.observers {
		obs.OrderAssigned(o.view(frame), previous)
	}
	return nil
}

// Unassign detaches the order's builder and releases its site. Progress on
// spawned units is kept so another builder can resume it.
func (l *Ledger) Unassign(h Handle, frame shared.Frame) error {
	o, ok := l.Get(h)
	if !ok {
		return fmt.Errorf("unassign %s: %w", h, ErrOrderNotFound)
	}
	l.detach(o, frame)
	return nil
}

// UnassignBuilder detaches a builder from whatever order it holds
func (l *Ledger) UnassignBuilder(builder shared.UnitID, frame shared.Frame) bool {
	o, ok := l.OrderOf(builder)
	if !ok {
		return false
	}
	l.detach(o, frame)
	return true
}

func (l *Ledger) detach(o *Order, frame shared.Frame) {
	if !o.builder.IsValid() {
		return
	}
	previous := o.builder
	l.accounting.BuilderDetached(o.contrib)
	delete(l.byBuilder, o.builder)
	o.builder = shared.NoUnit
	if o.site >= 0 {
		if l.sites != nil {
			l.sites.Release(o.site)
		}
		o.site = -1
	}
	for _, obs := range l.observers {
		obs.OrderAssigned(o.view(frame), previous)
	}
}

// Remove deletes the order, reverses its accounting and compacts the dense
// list by moving the last order into the freed position. Units still under
// construction for it are marked abandoned.
func (l *Ledger) Remove(h Handle, frame shared.Frame, reason RemovalReason) (OrderView, error) {
	o, ok := l.Get(h)
	if !ok {
		return OrderView{}, fmt.Errorf("remove %s: %w", h, ErrOrderNotFound)
	}
	if l.prerequisite == h {
		l.prerequisite = NoHandle
	}
	if o.builder.IsValid() {
		l.lastBuilder = o.builder
		l.lastBuilderFrame = frame
	}
	l.detach(o, frame)

	l.kinds[o.kind]--
	if o.category != nil {
		o.category.decrement()
	}
	l.catalog.orderRemoved(o.unitType)
	l.accounting.RemoveOrder(o.contrib)

	last := len(l.live) - 1
	if o.pos != last {
		moved := l.live[last]
		l.live[o.pos] = moved
		moved.pos = o.pos
	}
	l.live[last] = nil
	l.live = l.live[:last]

	for _, u := range o.spawned {
		if c, ok := l.constructions[u]; ok && c.Order == h {
			c.Abandoned = true
		}
	}

	l.slots[h.index].order = nil
	l.free = append(l.free, h.index)

	view := o.view(frame)
	for _, obs := range l.observers {
		obs.OrderRemoved(view, reason)
	}
	o.pos = -1
	return view, nil
}

// RecordIdle is called when the order's builder went idle: a dead first spawn
// is dropped, and an order without any spawn counts one more failed attempt.
func (l *Ledger) RecordIdle(h Handle, health HealthReader) (*Order, error) {
	o, ok := l.Get(h)
	if !ok {
		return nil, fmt.Errorf("record idle %s: %w", h, ErrOrderNotFound)
	}
	if len(o.spawned) > 0 && health.Health(o.spawned[0]) <= 0 {
		if c, ok := l.constructions[o.spawned[0]]; ok && c.Order == h {
			delete(l.constructions, o.spawned[0])
		}
		o.spawned = o.spawned[1:]
	}
	if len(o.spawned) == 0 {
		o.retries++
	}
	return o, nil
}

// AttachSpawn records that unit started construction on behalf of the order
func (l *Ledger) AttachSpawn(h Handle, unit shared.UnitID) error {
	o, ok := l.Get(h)
	if !ok {
		return fmt.Errorf("attach spawn %s to %s: %w", unit, h, ErrOrderNotFound)
	}
	o.spawned = append(o.spawned, unit)
	l.constructions[unit] = &Construction{Order: h, UnitType: o.unitType}
	return nil
}

// Construction returns the construction entry of a unit being built
func (l *Ledger) Construction(unit shared.UnitID) (Construction, bool) {
	c, ok := l.constructions[unit]
	if !ok {
		return Construction{}, false
	}
	return *c, true
}

// ConstructionFinished forgets a unit that completed
func (l *Ledger) ConstructionFinished(unit shared.UnitID) (Construction, bool) {
	c, ok := l.constructions[unit]
	if !ok {
		return Construction{}, false
	}
	delete(l.constructions, unit)
	return *c, true
}

// ConstructionDestroyed forgets a unit that died while being built and
// removes it from its order when the order is still live.
func (l *Ledger) ConstructionDestroyed(unit shared.UnitID) (Construction, bool) {
	c, ok := l.constructions[unit]
	if !ok {
		return Construction{}, false
	}
	delete(l.constructions, unit)
	if !c.Abandoned {
		if o, live := l.Get(c.Order); live {
			o.removeSpawned(unit)
		}
	}
	return *c, true
}

// Constructions returns the number of tracked units under construction
func (l *Ledger) Constructions() int { return len(l.constructions) }

// CheckInvariants verifies that handles, the dense list, the builder table,
// the kind counters and the construction table agree.
func (l *Ledger) CheckInvariants() error {
	var violations []string
	var kinds [orderKindSlots]int
	for pos, o := range l.live {
		if o.pos != pos {
			violations = append(violations, fmt.Sprintf("%s sits at %d but records %d", o.handle, pos, o.pos))
		}
		if got, ok := l.Get(o.handle); !ok || got != o {
			violations = append(violations, fmt.Sprintf("%s does not resolve to itself", o.handle))
		}
		if o.builder.IsValid() {
			if h, ok := l.byBuilder[o.builder]; !ok || h != o.handle {
				violations = append(violations, fmt.Sprintf("%s names builder %s which points elsewhere", o.handle, o.builder))
			}
		}
		kinds[o.kind]++
	}
	for b, h := range l.byBuilder {
		o, ok := l.Get(h)
		if !ok {
			violations = append(violations, fmt.Sprintf("builder %s points at dead %s", b, h))
			continue
		}
		if o.builder != b {
			violations = append(violations, fmt.Sprintf("builder %s points at %s assigned to %s", b, h, o.builder))
		}
	}
	if kinds != l.kinds {
		violations = append(violations, fmt.Sprintf("kind counters %v do not match orders %v", l.kinds, kinds))
	}
	for u, c := range l.constructions {
		if c.Abandoned {
			continue
		}
		if _, ok := l.Get(c.Order); !ok {
			violations = append(violations, fmt.Sprintf("unit %s is tracked for dead %s", u, c.Order))
		}
	}
	if len(violations) > 0 {
		return &InvariantError{Violations: violations}
	}
	return nil
}
