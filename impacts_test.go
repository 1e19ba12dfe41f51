package gridimpact_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gridimpact "github.com/superdango/grid-impact"
)

func TestCombineImpacts(t *testing.T) {
	var a, b gridimpact.Impacts
	a[gridimpact.GWP] = 2
	b[gridimpact.GWP] = 4
	b[gridimpact.WU] = 1

	combined := gridimpact.CombineImpacts(a, 0.5, b, 0.25)
	assert.Equal(t, 2.0, combined[gridimpact.GWP])
	assert.Equal(t, 0.25, combined[gridimpact.WU])

	// operands are not modified
	assert.Equal(t, 2.0, a[gridimpact.GWP])
}

func TestImpactCategories(t *testing.T) {
	assert.Len(t, gridimpact.ImpactCategories, gridimpact.NumImpactCategories)
	assert.Equal(t, 9, gridimpact.NumImpactCategories)
	assert.Equal(t, "ctuh-nc", gridimpact.CTUHNC.String())

	c, found := gridimpact.ParseImpactCategory("gwp")
	assert.True(t, found)
	assert.Equal(t, gridimpact.GWP, c)
}

func TestImpactsJSON(t *testing.T) {
	var i gridimpact.Impacts
	i[gridimpact.CTUHC] = 1.5e-9
	b, err := json.Marshal(i)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"ctuh-c":1.5e-9`)

	var decoded gridimpact.Impacts
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, i, decoded)
}

func TestEnergies(t *testing.T) {
	assert.Len(t, gridimpact.Energies, gridimpact.NumEnergies)
	for _, e := range gridimpact.GreenEnergies {
		assert.True(t, e.IsGreen(), e.String())
	}
	assert.False(t, gridimpact.Nuclear.IsGreen())

	e, found := gridimpact.ParseEnergy("Other Renewables")
	assert.True(t, found)
	assert.Equal(t, gridimpact.OtherRenewables, e)
	_, found = gridimpact.ParseEnergy("Wind and Solar")
	assert.False(t, found)
}
