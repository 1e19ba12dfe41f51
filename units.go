package gridimpact

// TWh is an amount of electricity in terawatt-hours, the common unit of the store.
type TWh float64

// PlaceholderTWh is the generation recorded for aggregates inherited from a
// parent region. It is never zero and weighs nothing in exports.
const PlaceholderTWh TWh = 1e-9

// MWh converts megawatt-hours.
func MWh(v float64) TWh {
	return TWh(v / 1_000_000)
}

// ThousandMWh converts thousands of megawatt-hours.
func ThousandMWh(v float64) TWh {
	return TWh(v / 1_000)
}

// Float64 returns the raw value.
func (e TWh) Float64() float64 {
	return float64(e)
}
