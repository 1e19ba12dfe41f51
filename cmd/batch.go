package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	gridimpact "github.com/superdango/grid-impact"
	"github.com/superdango/grid-impact/internal/config"
	"github.com/superdango/grid-impact/internal/demo"
	"github.com/superdango/grid-impact/internal/eia"
	"github.com/superdango/grid-impact/internal/ember"
	"github.com/superdango/grid-impact/internal/export"
	"github.com/superdango/grid-impact/internal/publish"
	"github.com/superdango/grid-impact/internal/statcan"
	"github.com/superdango/grid-impact/model/impacts"
)

type flags struct {
	config      string
	logLevel    string
	logFormat   string
	output      string
	minYear     int
	maxYear     int
	demo        bool
	impactsFile string
	formats     string
	publish     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])

		flag.PrintDefaults()

		fmt.Fprint(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprint(os.Stderr, "  EIA_API_KEY\n")
		fmt.Fprint(os.Stderr, "        eia open data api key, the us subdivisions source is disabled without it\n")
	}

	defaults := config.Default()
	f := new(flags)
	flag.StringVar(&f.config, "config", "", "yaml configuration file")
	flag.StringVar(&f.logLevel, "log.level", defaults.Log.Level, "log severity (debug, info, warn, error)")
	flag.StringVar(&f.logFormat, "log.format", defaults.Log.Format, "log format (text, json)")
	flag.StringVar(&f.output, "output", defaults.Output, "directory the export is written to")
	flag.IntVar(&f.minYear, "min-year", defaults.MinYear, "first year exported")
	flag.IntVar(&f.maxYear, "max-year", 0, "last year exported (default current year)")
	flag.BoolVar(&f.demo, "demo.enabled", false, "export fictive demo data instead of the real sources")
	flag.StringVar(&f.impactsFile, "impacts.file", "", "json file replacing the embedded energy impacts")
	flag.StringVar(&f.formats, "formats", strings.Join(defaults.Formats, ","), "comma separated export formats (json, csv, xlsx, openmetrics)")
	flag.StringVar(&f.publish, "publish", "", "comma separated gs:// or s3:// destinations the export is uploaded to")

	flag.Parse()

	cfg, err := config.Load(f.config)
	if err != nil {
		initLogging(f.logLevel, f.logFormat)
		slog.Error("failed to load configuration", "file", f.config, "err", err)
		os.Exit(1)
	}

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	f.apply(&cfg, set)

	initLogging(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		flag.Usage()
		os.Exit(1)
	}

	manifest, report, err := run(ctx, cfg)
	if err != nil {
		slog.Error("grid impact batch failed, nothing was published", "err", err)
		os.Exit(1)
	}

	printSummary(os.Stdout, report, manifest)
}

// apply overrides cfg with the flags explicitly set on the command line.
func (f *flags) apply(cfg *config.Config, set map[string]bool) {
	if set["log.level"] {
		cfg.Log.Level = f.logLevel
	}
	if set["log.format"] {
		cfg.Log.Format = f.logFormat
	}
	if set["output"] {
		cfg.Output = f.output
	}
	if set["min-year"] {
		cfg.MinYear = f.minYear
	}
	if set["max-year"] {
		cfg.MaxYear = f.maxYear
	}
	if set["demo.enabled"] {
		cfg.Sources.Demo.Enabled = f.demo
	}
	if set["impacts.file"] {
		cfg.ImpactsFile = f.impactsFile
	}
	if set["formats"] {
		cfg.Formats = splitList(f.formats)
	}
	if set["publish"] {
		cfg.Publish.Destinations = splitList(f.publish)
	}
}

func splitList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func initLogging(logLevel string, logFormat string) {
	switch logFormat {
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slogLevel(logLevel),
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				switch a.Key {
				case slog.LevelKey:
					a.Key = "severity"
					return a
				case slog.MessageKey:
					a.Key = "message"
					return a
				default:
					return a
				}
			},
		})))
	default:
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:   slogLevel(logLevel),
			NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
		})))
	}
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

// sources returns the sources enabled by cfg in ingestion order: the global
// feed first, subdivisions after the countries they refine.
func sources(cfg config.Config) ([]gridimpact.Source, error) {
	if cfg.Sources.Demo.Enabled {
		return []gridimpact.Source{demo.New(
			demo.WithSeed(cfg.Sources.Demo.Seed),
			demo.WithCountries(cfg.Sources.Demo.Countries),
		)}, nil
	}

	enabled := make([]gridimpact.Source, 0, 3)

	if cfg.Sources.Ember.Enabled {
		opts := make([]ember.Option, 0)
		if len(cfg.Sources.Ember.Pages) > 0 {
			opts = append(opts, ember.WithPages(cfg.Sources.Ember.Pages...))
		}
		if len(cfg.Sources.Ember.Feeds) > 0 {
			opts = append(opts, ember.WithFeeds(cfg.Sources.Ember.Feeds...))
		}
		enabled = append(enabled, ember.New(opts...))
	}

	if cfg.Sources.StatCan.Enabled {
		opts := make([]statcan.Option, 0)
		if cfg.Sources.StatCan.URL != "" {
			opts = append(opts, statcan.WithTable(cfg.Sources.StatCan.URL, statcan.TableEntry))
		}
		enabled = append(enabled, statcan.New(opts...))
	}

	if cfg.Sources.EIA.Enabled {
		opts := []eia.Option{eia.WithAPIKey(cfg.Sources.EIA.APIKey)}
		if cfg.Sources.EIA.BaseURL != "" {
			opts = append(opts, eia.WithBaseURL(cfg.Sources.EIA.BaseURL))
		}
		source, err := eia.New(opts...)
		switch {
		case errors.Is(err, eia.ErrMissingAPIKey):
			slog.Warn("eia api key is not set, us subdivisions are estimated from the country", "env", "EIA_API_KEY")
		case err != nil:
			return nil, err
		default:
			enabled = append(enabled, source)
		}
	}

	if len(enabled) == 0 {
		return nil, errors.New("no source enabled")
	}
	return enabled, nil
}

// run builds the store, exports it into a staged directory swapped into
// cfg.Output, then uploads it to every destination.
func run(ctx context.Context, cfg config.Config) (*export.Manifest, *gridimpact.Report, error) {
	impactTable := impacts.Default()
	if cfg.ImpactsFile != "" {
		loaded, err := impacts.Load(cfg.ImpactsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load impacts: %w", err)
		}
		impactTable = loaded
	}

	enabled, err := sources(cfg)
	if err != nil {
		return nil, nil, err
	}

	uploaders := make([]publish.Uploader, 0, len(cfg.Publish.Destinations))
	for _, destination := range cfg.Publish.Destinations {
		uploader, err := publish.New(ctx, destination,
			publish.WithAWSRegion(cfg.Publish.AWSRegion),
			publish.WithAWSRoleArn(cfg.Publish.AWSRoleArn),
			publish.WithAWSEndpoint(cfg.Publish.AWSEndpoint),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup destination %s: %w", destination, err)
		}
		if closer, ok := uploader.(io.Closer); ok {
			defer closer.Close()
		}
		uploaders = append(uploaders, uploader)
	}

	pipeline := gridimpact.NewPipeline(
		gridimpact.WithSources(enabled...),
		gridimpact.WithImpactTable(impactTable),
		gridimpact.WithYears(cfg.MinYear, cfg.MaxYear),
	)

	store, report, err := pipeline.Run(ctx)
	if err != nil {
		return nil, nil, err
	}

	var manifest *export.Manifest
	exporter := export.New(export.WithFormats(cfg.Formats...))
	err = publish.Stage(cfg.Output, func(tmp string) error {
		manifest, err = exporter.Export(ctx, store, report, tmp)
		return err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export: %w", err)
	}
	slog.Info("export written", "dir", cfg.Output, "run_id", manifest.RunID)

	for _, uploader := range uploaders {
		if _, err := publish.Upload(ctx, cfg.Output, uploader); err != nil {
			return nil, nil, err
		}
	}

	return manifest, report, nil
}

func printSummary(w io.Writer, report *gridimpact.Report, manifest *export.Manifest) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("grid impact %d-%d (last month %d)", report.Range.MinYear, report.Range.MaxYear, report.Range.LastMonth))
	t.AppendHeader(table.Row{"source", "lines", "deleted", "additions", "duration"})
	for _, source := range report.Sources {
		t.AppendRow(table.Row{source.Name, source.Lines, source.Deleted, source.Additions(), source.Duration.Round(1e6)})
	}
	t.AppendFooter(table.Row{"aggregates", report.Aggregates, "blended", report.Blended, fmt.Sprintf("%d files", len(manifest.Files))})
	t.Render()
}
