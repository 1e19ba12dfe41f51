package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupBy(t *testing.T) {
	type sale struct {
		country string
		year    string
		amount  int
	}
	sales := []sale{
		{"FR", "2022", 1},
		{"DE", "2021", 2},
		{"FR", "2021", 3},
		{"FR", "2022", 4},
	}

	tree := GroupBy(sales,
		func(s sale) string { return s.country },
		func(s sale) string { return s.year },
	)
	assert.Len(t, tree.Children, 2)
	assert.Len(t, tree.Children["FR"].Children, 2)

	paths := make([][]string, 0)
	totals := make([]int, 0)
	tree.Walk(func(path []string, items []sale) {
		paths = append(paths, path)
		total := 0
		for _, s := range items {
			total += s.amount
		}
		totals = append(totals, total)
	})

	assert.Equal(t, [][]string{{"DE", "2021"}, {"FR", "2021"}, {"FR", "2022"}}, paths)
	assert.Equal(t, []int{2, 3, 5}, totals)

	flat := GroupBy(sales)
	assert.Nil(t, flat.Children)
	assert.Len(t, flat.Items, 4)
}
