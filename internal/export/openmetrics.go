package export

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	gridimpact "github.com/superdango/grid-impact"
	"golang.org/x/sync/errgroup"
)

const metricPrefix = "grid_impact_"

// Metric holds the name and value of one sample in addition to its labels.
// A metric with Help set opens a new family and carries no sample.
type Metric struct {
	Name   string
	Help   string
	Labels map[string]string
	Value  float64
}

var invalidChars = []string{".", "/", "-", ":", ";", " "}

func sanitize(s string) string {
	for _, char := range invalidChars {
		s = strings.ReplaceAll(s, char, "_")
	}
	return s
}

// SanitizeLabels replaces the characters forbidden in metric and label names.
func (m Metric) SanitizeLabels() Metric {
	labels := make(map[string]string, len(m.Labels))
	for label, value := range m.Labels {
		labels[sanitize(label)] = value
	}
	return Metric{Name: sanitize(m.Name), Help: m.Help, Labels: labels, Value: m.Value}
}

// family describes the gauges written for one value of a row.
type family struct {
	name  string
	help  string
	value func(row Row) []Metric
}

func families() []family {
	fams := []family{
		{
			name: metricPrefix + "weight_twh",
			help: "Electricity consumed by the regions averaged.",
			value: func(row Row) []Metric {
				return []Metric{{Value: row.Weight.Float64()}}
			},
		},
		{
			name: metricPrefix + "mix_share",
			help: "Share of generation of an energy.",
			value: func(row Row) []Metric {
				metrics := make([]Metric, 0, gridimpact.NumEnergies)
				for _, energy := range gridimpact.Energies {
					metrics = append(metrics, Metric{Labels: map[string]string{"energy": energy.String()}, Value: row.Mix[energy]})
				}
				return metrics
			},
		},
	}

	for _, category := range gridimpact.ImpactCategories {
		fams = append(fams, family{
			name: metricPrefix + sanitize(category.String()) + "_per_kwh",
			help: fmt.Sprintf("Impact %s of one kWh consumed.", category),
			value: func(row Row) []Metric {
				return []Metric{{Value: row.Impacts[category]}}
			},
		})
	}
	return fams
}

// WriteOpenMetrics writes every row of cubes as gauges of the OpenMetrics
// text format, one family per value, labelled by cube and dimensions.
func WriteOpenMetrics(ctx context.Context, w io.Writer, cubes []Cube, rows map[string][]Row) error {
	metrics := make(chan Metric)
	errg, errgctx := errgroup.WithContext(ctx)

	errg.Go(func() error {
		defer close(metrics)
		for _, fam := range families() {
			if err := send(errgctx, metrics, Metric{Name: fam.name, Help: fam.help}); err != nil {
				return err
			}

			for _, cube := range cubes {
				for _, row := range rows[cube.Name()] {
					for _, metric := range fam.value(row) {
						metric.Name = fam.name
						metric.Labels = rowLabels(cube, row, metric.Labels)
						if err := send(errgctx, metrics, metric); err != nil {
							return err
						}
					}
				}
			}
		}
		return nil
	})

	errg.Go(func() error {
		return writeMetrics(errgctx, w, metrics)
	})

	if err := errg.Wait(); err != nil {
		return err
	}

	_, err := io.WriteString(w, "# EOF\n")
	return err
}

func send(ctx context.Context, metrics chan<- Metric, metric Metric) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case metrics <- metric:
		return nil
	}
}

func rowLabels(cube Cube, row Row, extra map[string]string) map[string]string {
	labels := make(map[string]string, len(cube.Dimensions)+1+len(extra))
	labels["cube"] = cube.Name()
	for i, d := range cube.Dimensions {
		labels[d.String()] = row.Keys[i]
	}
	for k, v := range extra {
		labels[k] = v
	}
	return labels
}

// writeMetrics writes all metrics sent over the channel.
func writeMetrics(ctx context.Context, w io.Writer, metrics chan Metric) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case metric, ok := <-metrics:
			if !ok {
				return nil
			}

			if metric.Help != "" {
				if _, err := fmt.Fprintf(w, "# TYPE %s gauge\n# HELP %s %s\n", metric.Name, metric.Name, metric.Help); err != nil {
					return fmt.Errorf("failed to write family %s: %w", metric.Name, err)
				}
				continue
			}

			if err := writeMetric(w, metric); err != nil {
				return err
			}
		}
	}
}

func writeMetric(w io.Writer, metric Metric) error {
	metric = metric.SanitizeLabels()

	// sort labels in lexicographical order
	labels := make([]string, 0, len(metric.Labels))
	for labelName, labelValue := range metric.Labels {
		labels = append(labels, fmt.Sprintf(`%s=%q`, labelName, labelValue))
	}
	slices.SortFunc(labels, strings.Compare)

	_, err := fmt.Fprintf(w, "%s{%s} %g\n", metric.Name, strings.Join(labels, ","), metric.Value)
	if err != nil {
		return fmt.Errorf("writing metric %s failed: %w", metric.Name, err)
	}

	return nil
}
