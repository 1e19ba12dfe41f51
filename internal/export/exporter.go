// Package export averages the aggregate store into reporting cubes and
// writes them as JSON, CSV and XLSX files.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gridimpact "github.com/superdango/grid-impact"
	"golang.org/x/sync/errgroup"
)

const (
	WorkbookName    = "grid-impact.xlsx"
	OpenMetricsName = "grid-impact.prom"
	ManifestName    = "manifest.json"
)

// File describes one written file.
type File struct {
	Name string `json:"name"`
	Cube string `json:"cube,omitempty"`
	Rows int    `json:"rows,omitempty"`
}

// Manifest describes a complete export.
type Manifest struct {
	RunID       string                    `json:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	MinYear     int                       `json:"min_year"`
	MaxYear     int                       `json:"max_year"`
	LastMonth   int                       `json:"last_month"`
	Sources     []gridimpact.SourceReport `json:"sources,omitempty"`
	Files       []File                    `json:"files"`
}

type Option func(e *Exporter)

// WithFormats selects the formats written among json, csv, xlsx and
// openmetrics.
func WithFormats(formats ...string) Option {
	return func(e *Exporter) {
		e.formats = formats
	}
}

// WithCubes replaces the exported cubes.
func WithCubes(cubes ...Cube) Option {
	return func(e *Exporter) {
		e.cubes = cubes
	}
}

// WithClock sets the time recorded in the manifest.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		e.now = now
	}
}

type Exporter struct {
	formats []string
	cubes   []Cube
	now     func() time.Time
}

func New(opts ...Option) *Exporter {
	e := &Exporter{
		formats: []string{"json", "csv", "xlsx"},
		cubes:   Cubes(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Export builds every cube in parallel and writes the files into dir. The
// store is only read.
func (e *Exporter) Export(ctx context.Context, store *gridimpact.Store, report *gridimpact.Report, dir string) (*Manifest, error) {
	mu := new(sync.Mutex)
	rows := make(map[string][]Row, len(e.cubes))
	files := make([]File, 0)

	errg, errgctx := errgroup.WithContext(ctx)
	errg.SetLimit(5)

	for _, cube := range e.cubes {
		errg.Go(func() error {
			if err := errgctx.Err(); err != nil {
				return err
			}

			built := cube.Build(store, report.Range)
			written, err := e.writeCube(dir, cube, built)
			if err != nil {
				return fmt.Errorf("failed to write cube %s: %w", cube.Name(), err)
			}
			slog.Debug("cube exported", "cube", cube.Name(), "rows", len(built))

			mu.Lock()
			defer mu.Unlock()
			rows[cube.Name()] = built
			files = append(files, written...)
			return nil
		})
	}

	if err := errg.Wait(); err != nil {
		return nil, err
	}

	if slices.Contains(e.formats, "xlsx") {
		err := writeFile(filepath.Join(dir, WorkbookName), func(w io.Writer) error {
			return WriteXLSX(w, e.cubes, rows)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write workbook: %w", err)
		}
		files = append(files, File{Name: WorkbookName})
	}

	if slices.Contains(e.formats, "openmetrics") {
		err := writeFile(filepath.Join(dir, OpenMetricsName), func(w io.Writer) error {
			return WriteOpenMetrics(ctx, w, e.cubes, rows)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to write metrics: %w", err)
		}
		files = append(files, File{Name: OpenMetricsName})
	}

	slices.SortFunc(files, func(a, b File) int {
		return strings.Compare(a.Name, b.Name)
	})

	manifest := &Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: e.now().UTC(),
		MinYear:     report.Range.MinYear,
		MaxYear:     report.Range.MaxYear,
		LastMonth:   report.Range.LastMonth,
		Sources:     report.Sources,
		Files:       files,
	}

	err := writeFile(filepath.Join(dir, ManifestName), func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(manifest)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	slog.Info("data exported", "files", len(files)+1, "run_id", manifest.RunID)
	return manifest, nil
}

func (e *Exporter) writeCube(dir string, cube Cube, rows []Row) ([]File, error) {
	files := make([]File, 0, 2)

	if slices.Contains(e.formats, "json") {
		name := cube.Name() + ".json"
		if err := writeFile(filepath.Join(dir, name), func(w io.Writer) error { return WriteJSON(w, rows) }); err != nil {
			return nil, err
		}
		files = append(files, File{Name: name, Cube: cube.Name(), Rows: len(rows)})
	}

	if slices.Contains(e.formats, "csv") {
		name := cube.Name() + ".csv"
		if err := writeFile(filepath.Join(dir, name), func(w io.Writer) error { return WriteCSV(w, cube, rows) }); err != nil {
			return nil, err
		}
		files = append(files, File{Name: name, Cube: cube.Name(), Rows: len(rows)})
	}

	return files, nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
