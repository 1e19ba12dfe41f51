// Package impacts provides the environmental impacts of one kWh of
// electricity generated from each energy category.
package impacts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	gridimpact "github.com/superdango/grid-impact"
	"github.com/superdango/grid-impact/internal/must"
)

//go:embed data/energy-impacts.json
var energyImpacts []byte

var defaultTable = sync.OnceValue(func() *gridimpact.ImpactTable {
	table, err := Parse(bytes.NewReader(energyImpacts))
	must.NoError(err, "invalid embedded impact table")
	return table
})

// Default returns the embedded impact table. The returned table is shared and
// must not be modified.
func Default() *gridimpact.ImpactTable {
	return defaultTable()
}

// Parse reads a JSON object mapping every energy name to its impacts by
// category key. Every energy and every category must be present.
func Parse(r io.Reader) (*gridimpact.ImpactTable, error) {
	raw := make(map[string]json.RawMessage)
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode impact table: %w", err)
	}

	table := new(gridimpact.ImpactTable)
	for name, values := range raw {
		energy, found := gridimpact.ParseEnergy(name)
		if !found {
			return nil, fmt.Errorf("unknown energy %q in impact table", name)
		}

		categories := make(map[string]float64)
		if err := json.Unmarshal(values, &categories); err != nil {
			return nil, fmt.Errorf("failed to decode impacts of %s: %w", name, err)
		}
		if len(categories) != gridimpact.NumImpactCategories {
			return nil, fmt.Errorf("energy %s has %d impact categories, expected %d", name, len(categories), gridimpact.NumImpactCategories)
		}
		if err := json.Unmarshal(values, &table[energy]); err != nil {
			return nil, fmt.Errorf("failed to decode impacts of %s: %w", name, err)
		}
	}

	for _, energy := range gridimpact.Energies {
		if _, found := raw[energy.String()]; !found {
			return nil, fmt.Errorf("energy %s is missing from impact table", energy)
		}
	}

	return table, nil
}

// Load reads an impact table file.
func Load(path string) (*gridimpact.ImpactTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}
