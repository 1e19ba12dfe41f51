package gridimpact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gridimpact "github.com/superdango/grid-impact"
)

func TestUnitConversions(t *testing.T) {
	assert.Equal(t, gridimpact.TWh(1), gridimpact.MWh(1_000_000))
	assert.Equal(t, gridimpact.TWh(0.5), gridimpact.ThousandMWh(500))
	assert.Greater(t, gridimpact.PlaceholderTWh, gridimpact.TWh(0))
	assert.Less(t, gridimpact.PlaceholderTWh.Float64(), 1e-6)
}
