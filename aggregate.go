package gridimpact

// Aggregate is the state of one region over one period.
type Aggregate struct {
	// Mix holds generation shares per energy category
	Mix Mix
	// Generated is the electricity generated locally
	Generated TWh
	// Imported is the electricity imported from other regions
	Imported TWh
	// Global are the impacts of one kWh consumed, all energies
	Global Impacts
	// Green are the impacts of one kWh generated from green energies only
	Green Impacts
	// GreenRatio is the share of green energies in the mix
	GreenRatio float64
}

// Consumed is the total electricity used by the region, the weight of the
// aggregate wherever several are averaged.
func (a *Aggregate) Consumed() TWh {
	return a.Generated + a.Imported
}

// IsDead reports whether the aggregate carries nothing usable: neither
// generation nor imports, or no mix at all.
func (a *Aggregate) IsDead() bool {
	return a.Consumed() == 0 || a.Mix.Sum() == 0
}

// SetShare records the share of generation of e. A share reported twice for
// the same period replaces the previous one.
func (a *Aggregate) SetShare(e Energy, share float64) {
	a.Mix[e] = share
}

// AddAmount accumulates an absolute amount generated from e. The mix must be
// normalized once every amount has been added.
func (a *Aggregate) AddAmount(e Energy, amount TWh) {
	if amount <= 0 {
		return
	}
	a.Mix[e] += amount.Float64()
}

// Derive normalizes the mix and computes green ratio and impacts from it.
func (a *Aggregate) Derive(table *ImpactTable) {
	a.Mix = a.Mix.Normalize()
	a.GreenRatio = a.Mix.GreenRatio()
	a.Global = a.Mix.Impacts(table)
	a.Green = Impacts{}
	if a.GreenRatio > 0 {
		a.Green = a.Mix.Green().Impacts(table)
	}
}

// Inherit returns a copy of the aggregate flagged as not locally produced:
// generation is the placeholder amount and there are no imports.
func (a Aggregate) Inherit() Aggregate {
	a.Generated = PlaceholderTWh
	a.Imported = 0
	return a
}

// MonthShare returns a copy of a yearly aggregate standing for one of its
// months: amounts are divided by twelve. Placeholder amounts are kept.
func (a Aggregate) MonthShare() Aggregate {
	if a.Generated <= PlaceholderTWh {
		return a
	}
	a.Generated /= 12
	a.Imported /= 12
	return a
}
