package economy

// ResourceState is the host's report for one resource
type ResourceState struct {
	Stock   float64
	Income  float64
	Usage   float64
	Storage float64
}

// PowerState carries the figures produced by the power manager that the
// scheduler consumes but does not compute
type PowerState struct {
	// EtoMIncome is metal produced by converters from energy
	EtoMIncome float64
	// EtoMNeeded is negative when converters are short of energy
	EtoMNeeded float64
	// OffEnergyDifference is the (usually negative) energy balance of switchable units that are off
	OffEnergyDifference float64
	// WeaponEnergyNeeded is the (usually negative) energy reserve wanted for weapons
	WeaponEnergyNeeded float64
}

// Snapshot is a single read of the economy
type Snapshot struct {
	Metal  ResourceState
	Energy ResourceState
	Power  PowerState
}

// Telemetry provides the current economy snapshot
type Telemetry interface {
	Snapshot() Snapshot
}
