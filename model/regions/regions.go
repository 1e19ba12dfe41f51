// Package regions is the reference catalog of countries and subdivisions.
package regions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	gridimpact "github.com/superdango/grid-impact"
	"github.com/superdango/grid-impact/internal/cache"
	"github.com/superdango/grid-impact/internal/must"
)

//go:embed data/countries.json
var countriesJSON []byte

//go:embed data/subdivisions.json
var subdivisionsJSON []byte

// Country is identified by its ISO 3166-1 codes.
type Country struct {
	Alpha2    string            `json:"alpha-2"`
	Alpha3    string            `json:"alpha-3"`
	Name      string            `json:"name"`
	Continent gridimpact.Region `json:"continent"`
}

// Region returns the key of the country in the aggregate store.
func (c Country) Region() gridimpact.Region {
	return gridimpact.Region(c.Alpha2)
}

// Subdivision is a state, province or territory of a country.
type Subdivision struct {
	Country gridimpact.Region `json:"country"`
	Code    string            `json:"code"`
	Name    string            `json:"name"`
}

// Region returns the key of the subdivision in the aggregate store.
func (s Subdivision) Region() gridimpact.Region {
	return gridimpact.Subdivision(s.Country, s.Code)
}

// Catalog resolves provider codes and names to region keys. It is safe for
// concurrent use.
type Catalog struct {
	countries    []Country
	byAlpha2     map[string]Country
	byAlpha3     map[string]Country
	subdivisions map[gridimpact.Region][]Subdivision
	names        *cache.Memory[string, gridimpact.Region]
}

// NewCatalog indexes countries and subdivisions.
func NewCatalog(countries []Country, subdivisions []Subdivision) *Catalog {
	c := &Catalog{
		countries:    countries,
		byAlpha2:     make(map[string]Country, len(countries)),
		byAlpha3:     make(map[string]Country, len(countries)),
		subdivisions: make(map[gridimpact.Region][]Subdivision),
		names:        cache.NewMemory[string, gridimpact.Region](),
	}
	for _, country := range countries {
		c.byAlpha2[country.Alpha2] = country
		c.byAlpha3[country.Alpha3] = country
	}
	for _, subdivision := range subdivisions {
		c.subdivisions[subdivision.Country] = append(c.subdivisions[subdivision.Country], subdivision)
	}
	return c
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	countries := make([]Country, 0)
	must.NoError(json.Unmarshal(countriesJSON, &countries), "invalid embedded countries")

	subdivisions := make([]Subdivision, 0)
	must.NoError(json.Unmarshal(subdivisionsJSON, &subdivisions), "invalid embedded subdivisions")

	for _, country := range countries {
		must.Assert(gridimpact.IsContinent(country.Continent), "unknown continent in embedded countries", "country", country.Alpha2, "continent", country.Continent)
	}

	return NewCatalog(countries, subdivisions)
})

// Default returns the embedded catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// Countries returns every country of the catalog.
func (c *Catalog) Countries() []Country {
	return slices.Clone(c.countries)
}

// Country returns the country of the given alpha-2 code.
func (c *Catalog) Country(alpha2 string) (Country, bool) {
	country, found := c.byAlpha2[alpha2]
	return country, found
}

// CountryByAlpha3 returns the country of the given alpha-3 code.
func (c *Catalog) CountryByAlpha3(alpha3 string) (Country, error) {
	country, found := c.byAlpha3[alpha3]
	if !found {
		return Country{}, fmt.Errorf("%w: alpha-3 code %q", gridimpact.ErrUnknownRegion, alpha3)
	}
	return country, nil
}

// Subdivisions returns the subdivisions of country.
func (c *Catalog) Subdivisions(country gridimpact.Region) []Subdivision {
	return slices.Clone(c.subdivisions[country])
}

// Subdivision returns the subdivision of the given region key, "US-TX" for example.
func (c *Catalog) Subdivision(region gridimpact.Region) (Subdivision, error) {
	if region.Class() == gridimpact.SubdivisionClass {
		for _, subdivision := range c.subdivisions[region.Country()] {
			if subdivision.Region() == region {
				return subdivision, nil
			}
		}
	}
	return Subdivision{}, fmt.Errorf("%w: subdivision %q", gridimpact.ErrUnknownRegion, region)
}

// SubdivisionByName resolves the name of a subdivision of country as written
// by a provider. Names are matched exactly first, ignoring case, then fuzzily
// ignoring case and diacritics.
func (c *Catalog) SubdivisionByName(country gridimpact.Region, name string) (gridimpact.Region, error) {
	return c.names.GetOrSet(string(country)+"/"+name, func() (gridimpact.Region, error) {
		subdivisions := c.subdivisions[country]
		names := make([]string, 0, len(subdivisions))
		for _, subdivision := range subdivisions {
			if strings.EqualFold(subdivision.Name, name) {
				return subdivision.Region(), nil
			}
			names = append(names, subdivision.Name)
		}

		ranks := fuzzy.RankFindNormalizedFold(name, names)
		if len(ranks) == 0 {
			return "", fmt.Errorf("%w: no subdivision of %s named %q", gridimpact.ErrUnknownRegion, country, name)
		}
		sort.Sort(ranks)

		match := subdivisions[ranks[0].OriginalIndex]
		slog.Debug("fuzzy found the closest subdivision", "source", name, "match", match.Name)
		return match.Region(), nil
	})
}
