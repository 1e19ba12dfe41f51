package gridimpact

import (
	"regexp"
	"slices"
)

// Region is a world, continent, country or subdivision key.
type Region string

// World is the root of the region hierarchy.
const World Region = "World"

// Continents are the seven regional groupings of the pan-country feed.
var Continents = []Region{
	"Africa",
	"Asia",
	"Europe",
	"Latin America and Caribbean",
	"Middle East",
	"North America",
	"Oceania",
}

var subdivisionPattern = regexp.MustCompile(`^[A-Z]{2}-[A-Z0-9]{2}$`)

// Class of a region in the hierarchy.
type Class int

const (
	WorldClass Class = iota
	ContinentClass
	CountryClass
	SubdivisionClass
)

// Classes lists region classes from the root of the hierarchy to its leaves.
var Classes = []Class{WorldClass, ContinentClass, CountryClass, SubdivisionClass}

func (c Class) String() string {
	switch c {
	case WorldClass:
		return "world"
	case ContinentClass:
		return "continent"
	case CountryClass:
		return "country"
	case SubdivisionClass:
		return "subdivision"
	}
	return "unknown"
}

// Class returns the structural class of the region.
func (r Region) Class() Class {
	switch {
	case r == World:
		return WorldClass
	case slices.Contains(Continents, r):
		return ContinentClass
	case subdivisionPattern.MatchString(string(r)):
		return SubdivisionClass
	}
	return CountryClass
}

// IsContinent reports whether r is one of the seven continents.
func IsContinent(r Region) bool {
	return r.Class() == ContinentClass
}

// Country returns the country prefix of a subdivision, or r itself otherwise.
func (r Region) Country() Region {
	if r.Class() != SubdivisionClass {
		return r
	}
	return r[:2]
}

// Subdivision builds the key of subdivision code within country.
func Subdivision(country Region, code string) Region {
	return country + "-" + Region(code)
}
