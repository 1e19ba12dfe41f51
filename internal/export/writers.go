package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	gridimpact "github.com/superdango/grid-impact"
	"github.com/xuri/excelize/v2"
)

// record is the leaf of a JSON cube: impacts by category key and the mix.
func record(row Row) map[string]any {
	rec := make(map[string]any, gridimpact.NumImpactCategories+2)
	for _, category := range gridimpact.ImpactCategories {
		rec[category.String()] = row.Impacts[category]
	}
	rec["mix"] = row.Mix
	rec["weight"] = row.Weight.Float64()
	return rec
}

// WriteJSON writes rows as objects nested by the keys of each row, one level
// per dimension.
func WriteJSON(w io.Writer, rows []Row) error {
	root := make(map[string]any)
	for _, row := range rows {
		level := root
		for _, k := range row.Keys[:len(row.Keys)-1] {
			child, found := level[k].(map[string]any)
			if !found {
				child = make(map[string]any)
				level[k] = child
			}
			level = child
		}
		level[row.Keys[len(row.Keys)-1]] = record(row)
	}

	return json.NewEncoder(w).Encode(root)
}

// columns returns the flat header of cube: dimensions, weight, mix then impacts.
func columns(cube Cube) []string {
	header := make([]string, 0, len(cube.Dimensions)+1+gridimpact.NumEnergies+gridimpact.NumImpactCategories)
	for _, d := range cube.Dimensions {
		header = append(header, d.String())
	}
	header = append(header, "weight")
	for _, energy := range gridimpact.Energies {
		header = append(header, energy.String())
	}
	for _, category := range gridimpact.ImpactCategories {
		header = append(header, category.String())
	}
	return header
}

func values(row Row) []float64 {
	values := make([]float64, 0, 1+gridimpact.NumEnergies+gridimpact.NumImpactCategories)
	values = append(values, row.Weight.Float64())
	values = append(values, row.Mix[:]...)
	values = append(values, row.Impacts[:]...)
	return values
}

// WriteCSV writes one comma separated line per row after a header line.
func WriteCSV(w io.Writer, cube Cube, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns(cube)); err != nil {
		return err
	}

	for _, row := range rows {
		line := append([]string{}, row.Keys...)
		for _, v := range values(row) {
			line = append(line, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes a workbook holding one sheet per cube, in the given order.
func WriteXLSX(w io.Writer, cubes []Cube, rows map[string][]Row) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	for i, cube := range cubes {
		sheet := cube.Name()
		if i == 0 {
			if err := workbook.SetSheetName(workbook.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := workbook.NewSheet(sheet); err != nil {
			return err
		}

		header := columns(cube)
		if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of sheet %s: %w", sheet, err)
		}

		for j, row := range rows[cube.Name()] {
			cells := make([]any, 0, len(header))
			for _, k := range row.Keys {
				cells = append(cells, k)
			}
			for _, v := range values(row) {
				cells = append(cells, v)
			}

			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := workbook.SetSheetRow(sheet, cell, &cells); err != nil {
				return fmt.Errorf("failed to write row %d of sheet %s: %w", j, sheet, err)
			}
		}
	}

	return workbook.Write(w)
}
