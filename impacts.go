package gridimpact

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ImpactCategory is one of the environmental impact indicators computed per kWh.
type ImpactCategory int

const (
	// ADPE is the abiotic depletion potential (minerals and metals)
	ADPE ImpactCategory = iota
	// AP is the acidification power
	AP
	// CTUE is the comparative toxic unit for freshwater ecotoxicity
	CTUE
	// CTUHC is the comparative toxic unit for human cancer effects
	CTUHC
	// CTUHNC is the comparative toxic unit for human non-cancer effects
	CTUHNC
	// GWP is the global warming potential
	GWP
	// IR is the ionising radiation impact on human health
	IR
	// PM is the particulate matter emission
	PM
	// WU is the water use
	WU

	NumImpactCategories = int(iota)
)

var impactKeys = [NumImpactCategories]string{
	ADPE:   "adpe",
	AP:     "ap",
	CTUE:   "ctue",
	CTUHC:  "ctuh-c",
	CTUHNC: "ctuh-nc",
	GWP:    "gwp",
	IR:     "ir",
	PM:     "pm",
	WU:     "wu",
}

// ImpactCategories lists every impact category in declaration order.
var ImpactCategories = []ImpactCategory{ADPE, AP, CTUE, CTUHC, CTUHNC, GWP, IR, PM, WU}

func (c ImpactCategory) String() string {
	if c < 0 || int(c) >= NumImpactCategories {
		return fmt.Sprintf("ImpactCategory(%d)", int(c))
	}
	return impactKeys[c]
}

// ParseImpactCategory returns the category for its short key (gwp, adpe, ...).
func ParseImpactCategory(key string) (ImpactCategory, bool) {
	for i, k := range impactKeys {
		if k == key {
			return ImpactCategory(i), true
		}
	}
	return 0, false
}

// Impacts holds one value per impact category for one kWh of electricity.
type Impacts [NumImpactCategories]float64

// CombineImpacts returns target*targetCoeff + source*sourceCoeff.
func CombineImpacts(target Impacts, targetCoeff float64, source Impacts, sourceCoeff float64) Impacts {
	var combined Impacts
	floats.AddScaledTo(combined[:], combined[:], targetCoeff, target[:])
	floats.AddScaled(combined[:], sourceCoeff, source[:])
	return combined
}

func (i Impacts) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumImpactCategories)
	for c, v := range i {
		m[impactKeys[c]] = v
	}
	return json.Marshal(m)
}

func (i *Impacts) UnmarshalJSON(b []byte) error {
	m := make(map[string]float64)
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*i = Impacts{}
	for k, v := range m {
		c, ok := ParseImpactCategory(k)
		if !ok {
			return fmt.Errorf("unknown impact category %q", k)
		}
		i[c] = v
	}
	return nil
}

// ImpactTable holds the impact vector of every energy category.
type ImpactTable [NumEnergies]Impacts
