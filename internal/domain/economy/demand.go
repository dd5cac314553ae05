package economy

import "math"

// DemandKind names the resource need that can override a category choice
type DemandKind int

const (
	DemandNone DemandKind = iota
	DemandEnergy
	DemandMetal
	DemandConstructor
	DemandEnergyStorage
	DemandMetalStorage
)

func (k DemandKind) String() string {
	switch k {
	case DemandEnergy:
		return "energy"
	case DemandMetal:
		return "metal"
	case DemandConstructor:
		return "constructor"
	case DemandEnergyStorage:
		return "energy_storage"
	case DemandMetalStorage:
		return "metal_storage"
	default:
		return "none"
	}
}

// QueueCounts are the ledger sizes the demand caps are measured against
type QueueCounts struct {
	Total         int
	Energy        int
	Metal         int
	Builder       int
	EnergyStorage int
	MetalStorage  int
}

// Availability reports which categories currently have an eligible unit type
type Availability struct {
	Energy        bool
	Metal         bool
	Extractor     bool
	Constructor   bool
	EnergyStorage bool
	MetalStorage  bool
}

// Candidate is the unit type the scheduler is about to queue
type Candidate struct {
	// BuildFrames is the build time divided by the average construct speed
	BuildFrames         float64
	MetalCost           float64
	EnergyCost          float64
	HighEnergyDemand    bool
	WeaponMaxEnergyCost float64
}

// DemandInput gathers everything the demand scores depend on
type DemandInput struct {
	Snapshot           Snapshot
	Forecast           Forecast
	Accounting         Accounting
	Queue              QueueCounts
	Available          Availability
	Candidate          Candidate
	EnergyToMetalRatio float64
}

// DemandScores holds one score per demand kind; a non-positive score means no demand
type DemandScores struct {
	Energy        float64
	Metal         float64
	Constructor   float64
	EnergyStorage float64
	MetalStorage  float64
}

// ComputeDemand scores how urgently each resource category should override the
// candidate. Scores are -1 when their gating conditions are not met.
func ComputeDemand(t Tuning, in DemandInput) DemandScores {
	s := DemandScores{Energy: -1, Metal: -1, Constructor: -1, EnergyStorage: -1, MetalStorage: -1}
	snap := in.Snapshot
	f := in.Forecast
	q := in.Queue
	c := in.Candidate
	total := float64(q.Total)

	if in.Available.Energy && q.Energy < t.ProducerQueueCap && float64(q.Energy) < t.ProducerLedgerFraction*total {
		ratio := in.EnergyToMetalRatio
		if ratio <= 0 {
			ratio = 1
		}
		s.Energy = -(c.BuildFrames*f.EnergyRate + snap.Energy.Stock - t.UnassignedCostWeight*in.Accounting.EnergyLost - c.EnergyCost) * f.EnergyRatio / ratio
	}

	if in.Available.Metal && q.Metal < t.ProducerQueueCap && float64(q.Metal) < t.ProducerLedgerFraction*total &&
		!(s.Energy > 0 && c.HighEnergyDemand) {
		s.Metal = -(c.BuildFrames*f.MetalRate + snap.Metal.Stock - t.UnassignedCostWeight*in.Accounting.MetalLost - c.MetalCost) * f.MetalRatio
		if s.Metal <= 0 && in.Available.Extractor && q.Metal == 0 {
			s.Metal = t.ExtractorFloorDemand
		}
	}

	if in.Available.Constructor && q.Builder < t.ConstructorQueueCap && float64(q.Builder) < t.ConstructorLedgerFraction*total {
		reserve := t.ConstructorStorageBase + t.ConstructorStorageStep*float64(q.Builder)
		if f.EnergyRate > 0 && f.MetalRate > 0 &&
			t.ConstructorHorizonFrames*f.EnergyRate+snap.Energy.Stock-reserve*snap.Energy.Storage > 0 &&
			t.ConstructorHorizonFrames*f.MetalRate+snap.Metal.Stock-reserve*snap.Metal.Storage > 0 {
			s.Constructor = t.ConstructorDemand
		}
	}

	if in.Available.EnergyStorage && q.EnergyStorage < t.StorageQueueCap {
		capacity := snap.Energy.Storage + in.Accounting.EnergyStorage
		if capacity < t.StorageUsageFactor*snap.Energy.Usage || capacity < c.WeaponMaxEnergyCost {
			s.EnergyStorage = t.StorageDemand
		}
	}

	if in.Available.MetalStorage && q.MetalStorage < t.StorageQueueCap {
		if snap.Metal.Storage+in.Accounting.MetalStorage < t.StorageUsageFactor*snap.Metal.Usage {
			s.MetalStorage = t.StorageDemand
		}
	}
	return s
}

// Best returns the kind with the highest positive score. Ties keep the earlier
// kind in the order energy, metal, constructor, energy storage, metal storage.
func (s DemandScores) Best() (DemandKind, float64) {
	best, high := DemandNone, 0.0
	for _, c := range []struct {
		kind  DemandKind
		score float64
	}{
		{DemandEnergy, s.Energy},
		{DemandMetal, s.Metal},
		{DemandConstructor, s.Constructor},
		{DemandEnergyStorage, s.EnergyStorage},
		{DemandMetalStorage, s.MetalStorage},
	} {
		if c.score > high {
			best, high = c.kind, c.score
		}
	}
	return best, high
}

// OrderWeights rank existing unassigned orders by kind; higher is picked first
type OrderWeights struct {
	General       float64
	Energy        float64
	Metal         float64
	Builder       float64
	EnergyStorage float64
	MetalStorage  float64
	Prerequisite  float64
}

// ExistingOrderWeights favors whichever of energy or metal is scarcer relative to
// its flow, and boosts constructors when both resources are comfortable.
func ExistingOrderWeights(snap Snapshot, bothFavorable bool, unitCount int) OrderWeights {
	w := OrderWeights{General: 0, Energy: 3, Metal: 3, Builder: 2, EnergyStorage: 1, MetalStorage: 1, Prerequisite: 6}
	energyFlow := snap.Energy.Stock * (snap.Energy.Income / math.Max(0.1, snap.Energy.Usage))
	metalFlow := snap.Metal.Stock * (snap.Metal.Income / math.Max(0.1, snap.Metal.Usage))
	if energyFlow < metalFlow {
		w.Energy++
	} else {
		w.Metal++
	}
	if bothFavorable && unitCount >= 5 {
		w.Builder += 3
	}
	return w
}
