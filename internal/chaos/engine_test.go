package chaos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomFlowConservesValue(t *testing.T) {
	e, err := NewEngine(Config{
		Seed:        1,
		Traders:     5,
		MaxQuantity: 20,
		MaxPrice:    50,
		CancelRate:  0.2,
	})
	require.NoError(t, err)

	require.NoError(t, e.Run(500))

	total, _ := e.Steps()
	assert.Equal(t, 500, total)
	require.NoError(t, e.Check())
}

func TestTinyBudgetStillConservesValue(t *testing.T) {
	// Budget 1 forces remainder cancellations on nearly every sweep.
	e, err := NewEngine(Config{
		Seed:        7,
		Traders:     3,
		MaxQuantity: 10,
		MaxPrice:    10,
		Budget:      1,
	})
	require.NoError(t, err)
	require.NoError(t, e.Run(300))
}

func TestConfigValidation(t *testing.T) {
	base := Config{Traders: 2, MaxQuantity: 1, MaxPrice: 1}

	bad := base
	bad.Traders = 1
	_, err := NewEngine(bad)
	assert.ErrorContains(t, err, "traders")

	bad = base
	bad.MaxQuantity = 0
	_, err = NewEngine(bad)
	assert.ErrorContains(t, err, "maxQuantity")

	bad = base
	bad.CancelRate = 1.5
	_, err = NewEngine(bad)
	assert.ErrorContains(t, err, "cancelRate")

	bad = base
	bad.Budget = -1
	_, err = NewEngine(bad)
	assert.ErrorContains(t, err, "budget")
}
