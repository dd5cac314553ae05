package economy

// BuilderCorrection is the resource use of a builder that finished an order
// moments ago; host income figures lag behind such changes.
type BuilderCorrection struct {
	Metal  float64
	Energy float64
}

// Forecast is the scheduler's short-horizon view of the economy
type Forecast struct {
	MetalRate   float64
	EnergyRate  float64
	MetalRatio  float64
	EnergyRatio float64

	onOffPower  float64
	weaponPower float64
}

// NewForecast computes rates and usage ratios from a snapshot and the queued-order accounting
func NewForecast(t Tuning, snap Snapshot, acc Accounting, correction BuilderCorrection) Forecast {
	f := Forecast{
		MetalRatio:  usageRatio(t, snap.Metal),
		EnergyRatio: usageRatio(t, snap.Energy),
		onOffPower:  cappedPower(-snap.Power.OffEnergyDifference, t.PowerCapFraction*snap.Energy.Income),
		weaponPower: cappedPower(-snap.Power.WeaponEnergyNeeded, t.PowerCapFraction*snap.Energy.Income),
	}
	f.MetalRate = snap.Metal.Income - snap.Metal.Usage + snap.Power.EtoMIncome + t.ConstructionRateWeight*acc.MetalRate
	f.EnergyRate = f.energyRate(t, snap, acc)
	f.MetalRate += correction.Metal
	f.EnergyRate += correction.Energy
	return f
}

// AfterOrder refreshes the rates once an order was queued. Converter income is
// heavily discounted and the builder correction is not re-applied.
func (f Forecast) AfterOrder(t Tuning, snap Snapshot, acc Accounting) Forecast {
	f.MetalRate = snap.Metal.Income - snap.Metal.Usage + t.ConverterWeightAfterOrder*snap.Power.EtoMIncome + t.ConstructionRateWeight*acc.MetalRate
	f.EnergyRate = f.energyRate(t, snap, acc)
	return f
}

func (f Forecast) energyRate(t Tuning, snap Snapshot, acc Accounting) float64 {
	return snap.Energy.Income - snap.Energy.Usage - f.onOffPower - f.weaponPower + t.ConstructionRateWeight*acc.EnergyRate
}

func usageRatio(t Tuning, r ResourceState) float64 {
	if r.Income == 0 || r.Usage == 0 {
		return 1
	}
	return t.UsageRatioScale * (r.Usage / r.Income)
}

func cappedPower(power, limit float64) float64 {
	if power > limit {
		return limit
	}
	return power
}
