package economy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/skirmish-economy-go/internal/domain/economy"
)

func TestNewForecast_CapsSwitchableAndWeaponPower(t *testing.T) {
	// Arrange
	tuning := economy.DefaultTuning()
	snap := economy.Snapshot{
		Metal:  economy.ResourceState{Income: 10, Usage: 5},
		Energy: economy.ResourceState{Income: 100, Usage: 40},
		Power:  economy.PowerState{EtoMIncome: 2, OffEnergyDifference: -80, WeaponEnergyNeeded: -10},
	}
	acc := economy.Accounting{MetalRate: 4, EnergyRate: 20}

	// Act
	f := economy.NewForecast(tuning, snap, acc, economy.BuilderCorrection{})

	// Assert - switchable power capped at 25, weapon power stays at 10
	assert.InDelta(t, 10-5+2+0.75*4, f.MetalRate, 1e-9)
	assert.InDelta(t, 100-40-25-10+0.75*20, f.EnergyRate, 1e-9)
	assert.InDelta(t, 0.25, f.MetalRatio, 1e-9)
	assert.InDelta(t, 0.2, f.EnergyRatio, 1e-9)
}

func TestNewForecast_RatioIsOneWithoutFlow(t *testing.T) {
	f := economy.NewForecast(economy.DefaultTuning(), economy.Snapshot{}, economy.Accounting{}, economy.BuilderCorrection{})

	assert.Equal(t, 1.0, f.MetalRatio)
	assert.Equal(t, 1.0, f.EnergyRatio)
}

func TestNewForecast_AppliesRecentBuilderCorrection(t *testing.T) {
	snap := economy.Snapshot{Metal: economy.ResourceState{Income: 5}, Energy: economy.ResourceState{Income: 20}}

	f := economy.NewForecast(economy.DefaultTuning(), snap, economy.Accounting{}, economy.BuilderCorrection{Metal: 3, Energy: 7})

	assert.InDelta(t, 8, f.MetalRate, 1e-9)
	assert.InDelta(t, 27, f.EnergyRate, 1e-9)
}

func TestForecast_AfterOrderDiscountsConverters(t *testing.T) {
	tuning := economy.DefaultTuning()
	snap := economy.Snapshot{Metal: economy.ResourceState{Income: 5}, Power: economy.PowerState{EtoMIncome: 10}}
	f := economy.NewForecast(tuning, snap, economy.Accounting{}, economy.BuilderCorrection{Metal: 3})

	refreshed := f.AfterOrder(tuning, snap, economy.Accounting{MetalRate: 2})

	assert.InDelta(t, 5+1+1.5, refreshed.MetalRate, 1e-9)
}

func TestAccounting_AssignmentOnlyMovesPendingTotals(t *testing.T) {
	// Arrange
	var acc economy.Accounting
	c := economy.Contribution{MetalCost: 50, EnergyCost: 500, MetalDrain: 1, EnergyDrain: 10, MetalRate: 2, EnergyStorage: 100}

	// Act
	acc.AddOrder(c)
	acc.BuilderAttached(c)

	// Assert
	assert.Zero(t, acc.MetalLost)
	assert.Zero(t, acc.EnergyLost)
	assert.Equal(t, 2.0, acc.MetalRate)
	assert.Equal(t, 100.0, acc.EnergyStorage)

	// Act - detach and remove restores zero
	acc.BuilderDetached(c)
	acc.RemoveOrder(c)

	assert.Equal(t, economy.Accounting{}, acc)
}
