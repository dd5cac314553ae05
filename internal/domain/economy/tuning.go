package economy

// Tuning holds the weights used by forecasts, favorability checks and demand scores
type Tuning struct {
	// PowerCapFraction caps switchable and weapon power at this fraction of energy income
	PowerCapFraction float64

	// ConstructionRateWeight scales the income expected from queued producers
	ConstructionRateWeight float64

	// ConverterWeightAfterOrder scales converter income once an order was queued in the same pass
	ConverterWeightAfterOrder float64

	// UsageRatioScale scales usage/income into the demand ratio
	UsageRatioScale float64

	// AbundantIncomeFactor makes metal favorable outright when income exceeds usage by this factor
	AbundantIncomeFactor float64

	// StorageIncomeFraction makes a resource favorable when income exceeds this fraction of storage
	StorageIncomeFraction float64

	// UnassignedCostWeight scales the cost of orders nobody is building yet
	UnassignedCostWeight float64

	// Demand caps, expressed per order kind as absolute and ledger-relative limits
	ProducerQueueCap          int
	ProducerLedgerFraction    float64
	ConstructorQueueCap       int
	ConstructorLedgerFraction float64
	ConstructorHorizonFrames  float64
	ConstructorStorageBase    float64
	ConstructorStorageStep    float64
	StorageQueueCap           int
	StorageUsageFactor        float64
	ExtractorFloorDemand      float64
	ConstructorDemand         float64
	StorageDemand             float64
}

// DefaultTuning returns the weights the scheduler was balanced with
func DefaultTuning() Tuning {
	return Tuning{
		PowerCapFraction:          0.25,
		ConstructionRateWeight:    0.75,
		ConverterWeightAfterOrder: 0.1,
		UsageRatioScale:           0.5,
		AbundantIncomeFactor:      5.0,
		StorageIncomeFraction:     0.33,
		UnassignedCostWeight:      0.1,
		ProducerQueueCap:          5,
		ProducerLedgerFraction:    0.4,
		ConstructorQueueCap:       2,
		ConstructorLedgerFraction: 0.3,
		ConstructorHorizonFrames:  30.0,
		ConstructorStorageBase:    0.6,
		ConstructorStorageStep:    0.1,
		StorageQueueCap:           1,
		StorageUsageFactor:        2.5,
		ExtractorFloorDemand:      3,
		ConstructorDemand:         2,
		StorageDemand:             1,
	}
}
