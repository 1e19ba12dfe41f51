package export

import (
	"math"

	"github.com/shopspring/decimal"
	gridimpact "github.com/superdango/grid-impact"
)

const (
	mixPlaces         = 4
	impactSignificant = 6
)

// roundPlaces rounds v half away from zero to places decimals.
func roundPlaces(v float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return rounded
}

// roundSignificant rounds v to digits significant digits. Impacts span many
// orders of magnitude, fixed decimals would erase the smallest ones.
func roundSignificant(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	magnitude := int32(math.Floor(math.Log10(math.Abs(v))))
	return roundPlaces(v, int32(digits)-1-magnitude)
}

func roundMix(m gridimpact.Mix) gridimpact.Mix {
	for e := range m {
		m[e] = roundPlaces(m[e], mixPlaces)
	}
	return m
}

func roundImpacts(i gridimpact.Impacts) gridimpact.Impacts {
	for c := range i {
		i[c] = roundSignificant(i[c], impactSignificant)
	}
	return i
}
