package economy

// Contribution is what a single order adds to the construction accumulators
type Contribution struct {
	MetalCost     float64
	EnergyCost    float64
	MetalDrain    float64
	EnergyDrain   float64
	MetalRate     float64
	EnergyRate    float64
	MetalStorage  float64
	EnergyStorage float64
}

// Accounting tracks the resources committed to queued orders.
//
// Lost and Drain count only orders with no builder working on them; Rate and
// Storage count every queued order.
type Accounting struct {
	MetalLost     float64
	EnergyLost    float64
	MetalDrain    float64
	EnergyDrain   float64
	MetalRate     float64
	EnergyRate    float64
	MetalStorage  float64
	EnergyStorage float64
}

// AddOrder records a newly queued order
func (a *Accounting) AddOrder(c Contribution) {
	a.addPending(c, 1)
	a.MetalRate += c.MetalRate
	a.EnergyRate += c.EnergyRate
	a.MetalStorage += c.MetalStorage
	a.EnergyStorage += c.EnergyStorage
}

// RemoveOrder reverses AddOrder
func (a *Accounting) RemoveOrder(c Contribution) {
	a.addPending(c, -1)
	a.MetalRate -= c.MetalRate
	a.EnergyRate -= c.EnergyRate
	a.MetalStorage -= c.MetalStorage
	a.EnergyStorage -= c.EnergyStorage
}

// BuilderAttached moves an order's cost out of the pending totals
func (a *Accounting) BuilderAttached(c Contribution) {
	a.addPending(c, -1)
}

// BuilderDetached returns an order's cost to the pending totals
func (a *Accounting) BuilderDetached(c Contribution) {
	a.addPending(c, 1)
}

func (a *Accounting) addPending(c Contribution, sign float64) {
	a.MetalLost += sign * c.MetalCost
	a.EnergyLost += sign * c.EnergyCost
	a.MetalDrain += sign * c.MetalDrain
	a.EnergyDrain += sign * c.EnergyDrain
}
