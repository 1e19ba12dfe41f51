package export

import (
	"fmt"
	"strconv"

	gridimpact "github.com/superdango/grid-impact"
	"gonum.org/v1/gonum/floats"
)

// Dimension is a grouping key of a cube.
type Dimension int

const (
	Continent Dimension = iota
	Country
	Subdivision
	Year
	Period
)

func (d Dimension) String() string {
	switch d {
	case Continent:
		return "continent"
	case Country:
		return "country"
	case Subdivision:
		return "subdivision"
	case Year:
		return "year"
	case Period:
		return "period"
	}
	return "unknown"
}

// Cube is a weighted average of aggregates grouped by dimensions.
type Cube struct {
	// Scope names the cube: world, continent, country or subdivision
	Scope       gridimpact.Class
	Granularity gridimpact.Granularity
	Green       bool
	// Source is the class of the regions averaged
	Source     gridimpact.Class
	Dimensions []Dimension
}

// Name returns the file name of the cube without extension:
// country-yearly or subdivision-monthly-green for example.
func (c Cube) Name() string {
	name := c.Scope.String() + "-" + c.Granularity.String()
	if c.Green {
		name += "-green"
	}
	return name
}

// Cubes returns the sixteen cubes of an export.
func Cubes() []Cube {
	cubes := make([]Cube, 0, 16)
	for _, scope := range gridimpact.Classes {
		for _, granularity := range []gridimpact.Granularity{gridimpact.Yearly, gridimpact.Monthly} {
			for _, green := range []bool{false, true} {
				cubes = append(cubes, newCube(scope, granularity, green))
			}
		}
	}
	return cubes
}

func newCube(scope gridimpact.Class, granularity gridimpact.Granularity, green bool) Cube {
	time := Year
	if granularity == gridimpact.Monthly {
		time = Period
	}

	cube := Cube{Scope: scope, Granularity: granularity, Green: green, Source: gridimpact.CountryClass}
	switch scope {
	case gridimpact.WorldClass:
		cube.Dimensions = []Dimension{time}
	case gridimpact.ContinentClass:
		cube.Dimensions = []Dimension{Continent, time}
	case gridimpact.CountryClass:
		cube.Dimensions = []Dimension{Country, time}
	case gridimpact.SubdivisionClass:
		cube.Source = gridimpact.SubdivisionClass
		cube.Dimensions = []Dimension{Country, Subdivision, time}
	}
	return cube
}

// entry is one published aggregate of a source region.
type entry struct {
	region    gridimpact.Region
	continent gridimpact.Region
	period    gridimpact.Period
	weight    float64
	mix       gridimpact.Mix
	impacts   gridimpact.Impacts
}

func (e entry) key(d Dimension) string {
	switch d {
	case Continent:
		return string(e.continent)
	case Country:
		return string(e.region.Country())
	case Subdivision:
		return string(e.region)
	case Year:
		return strconv.Itoa(e.period.Year())
	case Period:
		return string(e.period)
	}
	panic(fmt.Sprintf("unknown dimension %d", d))
}

// Row is the weighted average of one group of a cube.
type Row struct {
	// Keys holds the value of every dimension of the cube, in order
	Keys    []string
	Weight  gridimpact.TWh
	Mix     gridimpact.Mix
	Impacts gridimpact.Impacts
}

// Build averages the yearly aggregates of the store for yearly cubes and its
// published months for monthly ones. Green cubes only take aggregates with
// green generation into account. Groups weighing nothing are left out. Rows
// are sorted by keys.
func (c Cube) Build(store *gridimpact.Store, r gridimpact.Range) []Row {
	entries := make([]entry, 0)
	periods := r.PublishedMonths()
	if c.Granularity == gridimpact.Yearly {
		periods = r.Periods(gridimpact.Yearly)
	}
	for _, region := range store.Regions(c.Source) {
		continent, hasContinent := store.Continent(region.Country())
		if c.Scope == gridimpact.ContinentClass && !hasContinent {
			continue
		}

		for _, period := range periods {
			a, found := store.Get(region, period)
			if !found {
				continue
			}

			e := entry{region: region, continent: continent, period: period, weight: a.Consumed().Float64()}
			switch {
			case !c.Green:
				e.mix, e.impacts = a.Mix, a.Global
			case a.GreenRatio > 0:
				e.mix, e.impacts = a.Mix.Green(), a.Green
			default:
				continue
			}
			entries = append(entries, e)
		}
	}

	keys := make([]func(e entry) string, 0, len(c.Dimensions))
	for _, d := range c.Dimensions {
		keys = append(keys, func(e entry) string { return e.key(d) })
	}

	rows := make([]Row, 0)
	GroupBy(entries, keys...).Walk(func(path []string, group []entry) {
		row, ok := average(group)
		if !ok {
			return
		}
		row.Keys = path
		rows = append(rows, row)
	})
	return rows
}

func average(group []entry) (Row, bool) {
	var (
		weight  float64
		mix     gridimpact.Mix
		impacts gridimpact.Impacts
	)
	for _, e := range group {
		weight += e.weight
		floats.AddScaled(mix[:], e.weight, e.mix[:])
		floats.AddScaled(impacts[:], e.weight, e.impacts[:])
	}
	if weight <= 0 {
		return Row{}, false
	}

	floats.Scale(1/weight, mix[:])
	floats.Scale(1/weight, impacts[:])

	return Row{
		Weight:  gridimpact.TWh(weight),
		Mix:     roundMix(mix),
		Impacts: roundImpacts(impacts),
	}, true
}
