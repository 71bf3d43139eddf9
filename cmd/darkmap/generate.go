package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/oceantrace/darkmap/internal/assets"
	"github.com/oceantrace/darkmap/internal/config"
	"github.com/oceantrace/darkmap/internal/document"
	"github.com/oceantrace/darkmap/internal/geo"
	"github.com/oceantrace/darkmap/internal/influx"
	"github.com/oceantrace/darkmap/internal/storage"
	"github.com/oceantrace/darkmap/internal/track"
)

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configDir := fs.String("config", ".", "directory containing darkmap.cfg.json")
	input := fs.String("input", "", "CSV track file (time,lat,lon[,sog_kn])")
	vessel := fs.String("vessel", "", "load the track from the database instead of a CSV")
	out := fs.String("out", "darkmap.html", "output HTML path")
	inline := fs.Bool("inline", false, "embed asset contents instead of referencing local paths")
	strict := fs.Bool("strict", false, "fail when external references remain after rewriting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" && *vessel == "" {
		return errors.New("one of -input or -vessel is required")
	}

	logger := setup(*configDir)
	started := time.Now()

	tel, err := setupTelemetry(logger)
	if err != nil {
		return err
	}
	defer tel.Shutdown(context.Background())

	// load the track
	var t track.Track
	switch {
	case *input != "":
		f, err := os.Open(*input)
		if err != nil {
			return fmt.Errorf("opening track: %w", err)
		}
		t, err = track.ReadCSV(f)
		f.Close()
		if err != nil {
			return err
		}
	default:
		store := storage.NewManager(logger)
		if err := store.Connect(); err != nil {
			return err
		}
		if err := store.Setup(); err != nil {
			return err
		}
		var err error
		t, err = store.LoadTrack(*vessel)
		if err != nil {
			return err
		}
	}
	if len(t) == 0 {
		return errors.New("track has no fixes")
	}
	track.SortFixes(t)
	logger.Info().Int("fixes", len(t)).Msg("Track loaded")

	// detect the first reporting gap
	threshold, err := config.GapThreshold()
	if err != nil {
		return err
	}
	gap, err := track.FindFirstGap(t, threshold)
	if err != nil {
		return err
	}

	// reachability rings for the dark zone
	var rings []track.ReachabilityRing
	if gap != nil {
		logger.Info().
			Float64("hours", gap.Hours()).
			Time("from", gap.From.Time).
			Time("to", gap.To.Time).
			Msg("Reporting gap detected")
		rings, err = track.ReachEstimate(gap, track.ReachConfig{
			SpeedCapKn: viper.GetFloat64("gap.speedCapKn"),
			Segments:   viper.GetInt("gap.ringSegments"),
		})
		if err != nil {
			return err
		}
	} else {
		logger.Info().Msg("No reporting gap above threshold")
	}

	// assemble the document
	centerLat, centerLon := t.Center()
	zoom := 10
	if len(rings) > 0 {
		widest := rings[len(rings)-1]
		if ext, err := geo.MercatorExtent(widest.Vertices); err == nil {
			zoom = geo.ZoomForExtent(ext, 900)
		}
	}
	doc := document.New(viper.GetString("tiles.url"), centerLat, centerLon, zoom)
	for _, ring := range rings {
		opts := document.RingOptions{
			Name:    fmt.Sprintf("%s reach %.1fh @ %.1f kn", ring.Assumption, gap.Hours(), ring.SpeedKn),
			Tooltip: fmt.Sprintf("~%.1f km", ring.RadiusMeters/1000),
		}
		if ring.Assumption == track.AssumptionConservative {
			opts.LineColor = "#fd8d3c"
			opts.FillColor = "#fd8d3c"
		}
		if err := doc.AddRangeRing(ring.Vertices, ring.CenterLat, ring.CenterLon, opts); err != nil {
			return err
		}
	}
	rows := document.RowsFromTrack(t)
	if err := doc.AddTrack(rows, document.TrackOptions{Name: "Track"}); err != nil {
		return err
	}
	if err := doc.AddDots(rows, document.DotOptions{
		TooltipField: "time",
		PopupFields:  []string{"time", "sog_kn"},
		Name:         "AIS dots",
	}); err != nil {
		return err
	}
	doc.AddLayerControl()
	html := doc.Render()

	// rewrite external references for offline use
	rw, err := assets.NewRewriter(logger)
	if err != nil {
		return err
	}
	mode := assets.ModeReference
	if *inline || viper.GetString("assets.mode") == "inline" {
		mode = assets.ModeInline
	}
	table := assets.DirResolution(viper.GetString("assets.dir"), nil)
	html = rw.Rewrite(html, mode, table, viper.GetString("tiles.fallback"))

	runStats := func(pass bool) influx.RunStats {
		run := influx.RunStats{
			VesselID:   *vessel,
			Rings:      len(rings),
			Fixes:      len(t),
			StrictPass: pass,
			Duration:   time.Since(started),
		}
		if gap != nil {
			run.GapHours = gap.Hours()
		}
		return run
	}

	if *strict || viper.GetBool("assets.strict") {
		if err := assets.VerifyOffline(html); err != nil {
			var residual *assets.ResidualReferenceError
			if errors.As(err, &residual) {
				for _, url := range residual.URLs {
					logger.Error().Str("url", url).Msg("Residual external reference")
				}
			}
			// failed runs are recorded too, flagged as not passing
			writeRunStats(logger, runStats(false))
			return err
		}
	}

	if err := os.WriteFile(*out, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	documentsGenerated().Add(context.Background(), 1)
	logger.Info().Str("path", *out).Msg("Document written")

	writeRunStats(logger, runStats(true))
	return nil
}

// writeRunStats pushes run stats to the configured sink. Failure to reach the
// sink never fails the run.
func writeRunStats(logger zerolog.Logger, run influx.RunStats) {
	stats := influx.NewManager(logger)
	if err := stats.Connect(); err != nil {
		return
	}
	defer stats.Close()
	if err := stats.WriteRun(context.Background(), run); err != nil {
		logger.Warn().Err(err).Msg("Run stats write failed")
	}
}

func documentsGenerated() metric.Int64Counter {
	counter, err := otel.Meter("github.com/oceantrace/darkmap/cmd/darkmap").
		Int64Counter("documents.generated")
	if err != nil {
		// no-op meter never errors; a misconfigured SDK should not kill a run
		counter, _ = otel.Meter("").Int64Counter("documents.generated")
	}
	return counter
}
