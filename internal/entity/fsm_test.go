package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const step = 1.0 / 144

func advanceFor(m *AbilityMachine, seconds float64) {
	steps := int(seconds/step + 0.5)
	for i := 0; i < steps; i++ {
		m.Advance(step)
	}
}

func TestAbilityMachinePhases(t *testing.T) {
	fired := 0
	m := NewAbilityMachine(DefaultTiming(2), func() { fired++ })
	assert.Equal(t, PhaseIdle, m.Phase())

	advanceFor(m, 1.5)
	assert.Equal(t, PhaseIdle, m.Phase())

	advanceFor(m, 0.4)
	assert.Equal(t, PhaseWindup, m.Phase())
	assert.Equal(t, 0, fired)

	advanceFor(m, 0.15)
	assert.Equal(t, PhaseActive, m.Phase())
	assert.Equal(t, 1, fired, "срабатывание ровно на переходе в Active")

	advanceFor(m, 0.2)
	assert.Equal(t, PhaseRecovery, m.Phase())

	advanceFor(m, 0.3)
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Equal(t, 1, fired)
}

func TestAbilityMachinePeriod(t *testing.T) {
	fired := 0
	m := NewAbilityMachine(DefaultTiming(2), func() { fired++ })

	advanceFor(m, 10.1)
	assert.Equal(t, 5, fired)
	assert.Equal(t, 5, m.Fired)
}

func TestAbilityMachineDisabled(t *testing.T) {
	fired := 0
	m := NewAbilityMachine(DefaultTiming(0), func() { fired++ })
	assert.False(t, m.Enabled())

	advanceFor(m, 10)
	assert.Equal(t, 0, fired)
	assert.Equal(t, PhaseIdle, m.Phase())
}

func TestAbilityMachineReset(t *testing.T) {
	fired := 0
	m := NewAbilityMachine(DefaultTiming(2), func() { fired++ })
	advanceFor(m, 1.9)
	assert.Equal(t, PhaseWindup, m.Phase())

	m.Reset(DefaultTiming(5))
	assert.Equal(t, PhaseIdle, m.Phase())
	assert.Equal(t, 0.0, m.SinceFire)

	advanceFor(m, 4.5)
	assert.Equal(t, 0, fired)
	advanceFor(m, 0.6)
	assert.Equal(t, 1, fired)
}

func TestTimingNormalized(t *testing.T) {
	tm := Timing{Cooldown: 0.4, Windup: 0.25, Active: 0.1, Recovery: 0.25}.normalized()
	assert.InDelta(t, 0.075, tm.Active, 1e-9)
	assert.InDelta(t, 0.075, tm.Recovery, 1e-9)
}
