package gridimpact

import "fmt"

// Energy is a generation source category.
type Energy int

const (
	Bioenergy Energy = iota
	Coal
	Gas
	Hydro
	Nuclear
	OtherFossil
	OtherRenewables
	Solar
	Wind

	NumEnergies = int(iota)
)

var energyNames = [NumEnergies]string{
	Bioenergy:       "Bioenergy",
	Coal:            "Coal",
	Gas:             "Gas",
	Hydro:           "Hydro",
	Nuclear:         "Nuclear",
	OtherFossil:     "Other Fossil",
	OtherRenewables: "Other Renewables",
	Solar:           "Solar",
	Wind:            "Wind",
}

// Energies lists every energy category in declaration order.
var Energies = []Energy{Bioenergy, Coal, Gas, Hydro, Nuclear, OtherFossil, OtherRenewables, Solar, Wind}

// GreenEnergies are the low-carbon categories used by green cubes.
var GreenEnergies = []Energy{Bioenergy, Hydro, Solar, Wind}

// Combustibles are the categories burning fuel. Providers reporting a single
// combustible-fuels total get it split over these.
var Combustibles = []Energy{Bioenergy, Coal, Gas, OtherFossil}

func (e Energy) String() string {
	if e < 0 || int(e) >= NumEnergies {
		return fmt.Sprintf("Energy(%d)", int(e))
	}
	return energyNames[e]
}

// IsGreen reports whether e belongs to GreenEnergies.
func (e Energy) IsGreen() bool {
	switch e {
	case Bioenergy, Hydro, Solar, Wind:
		return true
	}
	return false
}

// ParseEnergy returns the category named name, as labeled by the Ember feed.
func ParseEnergy(name string) (Energy, bool) {
	for i, n := range energyNames {
		if n == name {
			return Energy(i), true
		}
	}
	return 0, false
}
