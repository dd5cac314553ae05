package economy

// Producers reports whether the catalog has any unit types that produce each resource
type Producers struct {
	Metal  bool
	Energy bool
}

// MetalIsFavorable reports whether metal is plentiful enough for discretionary spending.
// storage is the stock fraction of capacity, production the income/usage ratio required.
func MetalIsFavorable(t Tuning, snap Snapshot, producers Producers, correction BuilderCorrection, storage, production float64) bool {
	if !producers.Metal {
		return true
	}
	m := snap.Metal
	usage := m.Usage - correction.Metal
	if m.Income > t.AbundantIncomeFactor*usage {
		return true
	}
	return (m.Stock > storage*m.Storage || m.Income > t.StorageIncomeFraction*m.Storage) && m.Income > production*usage
}

// EnergyIsFavorable is the energy counterpart of MetalIsFavorable, without the abundant-income shortcut
func EnergyIsFavorable(t Tuning, snap Snapshot, producers Producers, correction BuilderCorrection, storage, production float64) bool {
	if !producers.Energy {
		return true
	}
	e := snap.Energy
	usage := e.Usage - correction.Energy
	return (e.Stock > storage*e.Storage || e.Income > t.StorageIncomeFraction*e.Storage) && e.Income > production*usage
}
