package gridimpact

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Mix is the share of generation of every energy category. During ingestion
// some providers accumulate absolute amounts in it until normalization.
type Mix [NumEnergies]float64

// Sum returns the total of all shares.
func (m Mix) Sum() float64 {
	return floats.Sum(m[:])
}

// Normalize returns the mix scaled so that shares sum to 1. An empty mix is
// returned unchanged.
func (m Mix) Normalize() Mix {
	sum := m.Sum()
	if sum <= 0 {
		return m
	}
	floats.Scale(1/sum, m[:])
	return m
}

// GreenRatio returns the sum of green shares.
func (m Mix) GreenRatio() float64 {
	ratio := 0.0
	for _, e := range GreenEnergies {
		ratio += m[e]
	}
	return ratio
}

// Green returns the mix restricted to green energies, re-normalized so that
// green shares sum to 1. It returns an empty mix when no green generation exists.
func (m Mix) Green() Mix {
	var green Mix
	for _, e := range GreenEnergies {
		green[e] = m[e]
	}
	return green.Normalize()
}

// Impacts weights every energy impact vector of the table by its share.
func (m Mix) Impacts(table *ImpactTable) Impacts {
	var impacts Impacts
	for e, share := range m {
		if share == 0 {
			continue
		}
		impacts = CombineImpacts(impacts, 1, table[e], share)
	}
	return impacts
}

// BlendMix returns target*targetCoeff + source*sourceCoeff.
func BlendMix(target Mix, targetCoeff float64, source Mix, sourceCoeff float64) Mix {
	var blended Mix
	floats.AddScaledTo(blended[:], blended[:], targetCoeff, target[:])
	floats.AddScaled(blended[:], sourceCoeff, source[:])
	return blended
}

func (m Mix) MarshalJSON() ([]byte, error) {
	shares := make(map[string]float64, NumEnergies)
	for e, v := range m {
		shares[energyNames[e]] = v
	}
	return json.Marshal(shares)
}

func (m *Mix) UnmarshalJSON(b []byte) error {
	shares := make(map[string]float64)
	if err := json.Unmarshal(b, &shares); err != nil {
		return err
	}
	*m = Mix{}
	for name, v := range shares {
		e, ok := ParseEnergy(name)
		if !ok {
			return fmt.Errorf("unknown energy %q", name)
		}
		m[e] = v
	}
	return nil
}
