package build

import "github.com/andrescamacho/skirmish-economy-go/internal/domain/shared"

// UnitType is a host-provided unit definition, reduced to the figures the
// economy core reads.
type UnitType struct {
	ID   shared.UnitTypeID
	Name string

	MetalCost  float64
	EnergyCost float64
	BuildTime  float64

	BuildSpeed    float64
	BuildDistance float64
	// Speed is zero for structures
	Speed float64

	ExtractsMetal float64
	NeedsGeo      bool
	MakesMetal    float64
	MetalMake     float64
	EnergyMake    float64
	MetalUpkeep   float64
	EnergyUpkeep  float64
	MetalStorage  float64
	EnergyStorage float64
	// OnOffable units only pay their upkeep while activated
	OnOffable bool
	CanCloak  bool
	// CloakCost is the highest energy per second the unit burns while cloaked
	CloakCost float64

	BuildOptions []shared.UnitTypeID

	CanCapture   bool
	CanReclaim   bool
	CanRepair    bool
	CanResurrect bool
	CanAssist    bool
	IsCommander  bool

	WeaponMaxEnergyCost float64
	TechLevel           int
	// MovementClass is the terrain oracle class of a mobile unit, -1 for structures
	MovementClass int
	// MaxCount caps how many may exist at once; zero means no cap
	MaxCount int
}

// IsMobile reports whether the unit can move
func (u UnitType) IsMobile() bool {
	return u.Speed > 0
}

// IsBuilder reports whether the unit can put build power into a construction
func (u UnitType) IsBuilder() bool {
	return u.BuildSpeed > 0 && (len(u.BuildOptions) > 0 || u.BuildDistance > 0)
}

// IsFactory reports whether the unit is an immobile producer of other units
func (u UnitType) IsFactory() bool {
	return !u.IsMobile() && len(u.BuildOptions) > 0
}

// IsNano reports whether the unit is an immobile helper that only assists
func (u UnitType) IsNano() bool {
	return len(u.BuildOptions) == 0 && u.BuildDistance > 0 && u.BuildSpeed > 0
}

// NeedsSite reports whether the unit must be placed on a resource site
func (u UnitType) NeedsSite() bool {
	return u.ExtractsMetal > 0 || u.NeedsGeo
}

// CanBuild reports whether t is one of the unit's build options
func (u UnitType) CanBuild(t shared.UnitTypeID) bool {
	for _, o := range u.BuildOptions {
		if o == t {
			return true
		}
	}
	return false
}

// Profile holds the economic figures derived once per match from a UnitType
type Profile struct {
	MetalDifference  float64
	EnergyDifference float64
	HighEnergyDemand bool
	// MetalPCost and EnergyPCost are the income levels a type needs before it is affordable
	MetalPCost  float64
	EnergyPCost float64
}

func newProfile(u UnitType, cfg CatalogConfig, ratio float64, rng shared.Random) Profile {
	p := Profile{
		MetalDifference:  u.MetalMake + u.MakesMetal + cfg.SiteYield*u.ExtractsMetal - u.MetalUpkeep,
		EnergyDifference: u.EnergyMake - u.EnergyUpkeep,
	}
	p.HighEnergyDemand = p.EnergyDifference < 0 && ratio*p.MetalDifference+p.EnergyDifference < 0

	p.MetalPCost = cfg.MetalPressure * u.MetalCost * (1 + cfg.PressureJitter*float64(rng.Intn(101))/100)
	if p.MetalPCost > 0 && p.MetalPCost < p.MetalDifference {
		p.MetalPCost = p.MetalDifference
	}
	p.EnergyPCost = cfg.EnergyPressure * u.EnergyCost * (1 + cfg.PressureJitter*float64(rng.Intn(101))/100) * ratio
	if p.EnergyPCost < p.EnergyDifference && u.EnergyCost > p.EnergyDifference {
		p.EnergyPCost = p.EnergyDifference
	}
	if p.EnergyPCost < 1.5*-p.EnergyDifference {
		p.EnergyPCost = 1.5 * -p.EnergyDifference
	}
	return p
}
