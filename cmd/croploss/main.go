// Command croploss runs a single estimate or explanation and prints the
// result as JSON. It reads the same environment configuration as the server,
// except that audit publishing is always off.
//
// Usage:
//
//	croploss analyze -lat 17.2 -lon 78.1 -crop rice -area 2
//	croploss assess  -lat 17.2 -lon 78.1 -crop rice -area 2
//	croploss explain -ndvi-before 0.8 -ndvi-current 0.4 -lat 17.2 -lon 78.1 [-days 60] [-crop rice]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/crop-loss-service/internal/app"
	"github.com/couchcryptid/crop-loss-service/internal/config"
	"github.com/couchcryptid/crop-loss-service/internal/domain"
	"github.com/couchcryptid/crop-loss-service/internal/observability"
)

const usage = "usage: croploss <analyze|assess|explain> [flags]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one subcommand. Failures are printed to stdout as
// {"success":false,"error":...} and yield exit code 1.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return fail(stdout, errors.New(usage))
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(stdout, err)
	}
	cfg.KafkaEnabled = false

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cliLevel(cfg.LogLevel)}))
	svc, err := app.Build(ctx, cfg, logger, observability.NewUnregisteredMetrics())
	if err != nil {
		return fail(stdout, err)
	}
	defer svc.Close() //nolint:errcheck // process is exiting

	switch args[0] {
	case "analyze":
		req, err := parseEstimateFlags("analyze", args[1:])
		if err != nil {
			return fail(stdout, err)
		}
		est, err := svc.Assessor.Analyze(ctx, req)
		if err != nil {
			return fail(stdout, err)
		}
		return succeed(stdout, map[string]any{"success": true, "estimate": est})
	case "assess":
		req, err := parseEstimateFlags("assess", args[1:])
		if err != nil {
			return fail(stdout, err)
		}
		out, err := svc.Assessor.Assess(ctx, req)
		if err != nil {
			return fail(stdout, err)
		}
		return succeed(stdout, map[string]any{"success": true, "estimate": out.Estimate, "prediction": out.Prediction})
	case "explain":
		req, err := parseExplainFlags(args[1:])
		if err != nil {
			return fail(stdout, err)
		}
		result, err := svc.Assessor.Explain(req)
		if err != nil {
			return fail(stdout, err)
		}
		return succeed(stdout, map[string]any{"success": true, "prediction": result})
	default:
		return fail(stdout, fmt.Errorf("unknown command %q; %s", args[0], usage))
	}
}

func parseEstimateFlags(name string, args []string) (domain.EstimateRequest, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	lat := fs.Float64("lat", 0, "latitude in degrees")
	lon := fs.Float64("lon", 0, "longitude in degrees")
	crop := fs.String("crop", "", "crop type")
	area := fs.Float64("area", 0, "field area in hectares")
	if err := fs.Parse(args); err != nil {
		return domain.EstimateRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := requireFlags(fs, "lat", "lon", "crop", "area"); err != nil {
		return domain.EstimateRequest{}, err
	}
	return domain.EstimateRequest{Latitude: *lat, Longitude: *lon, CropType: *crop, FieldArea: *area}, nil
}

func parseExplainFlags(args []string) (domain.ExplainRequest, error) {
	fs := flag.NewFlagSet("explain", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	before := fs.Float64("ndvi-before", 0, "NDVI of the earlier window")
	current := fs.Float64("ndvi-current", 0, "NDVI of the recent window")
	lat := fs.Float64("lat", 0, "latitude in degrees")
	lon := fs.Float64("lon", 0, "longitude in degrees")
	days := fs.Float64("days", domain.DefaultDaysSinceSowing, "days since sowing")
	crop := fs.String("crop", domain.DefaultCropType, "crop type")
	if err := fs.Parse(args); err != nil {
		return domain.ExplainRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := requireFlags(fs, "ndvi-before", "ndvi-current", "lat", "lon"); err != nil {
		return domain.ExplainRequest{}, err
	}
	return domain.ExplainRequest{
		NDVIBefore:      before,
		NDVICurrent:     current,
		Latitude:        lat,
		Longitude:       lon,
		DaysSinceSowing: days,
		CropType:        *crop,
	}, nil
}

func requireFlags(fs *flag.FlagSet, names ...string) error {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, n := range names {
		if !set[n] {
			return fmt.Errorf("%w: -%s is required", domain.ErrInvalidInput, n)
		}
	}
	return nil
}

func cliLevel(level string) slog.Level {
	if level == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func succeed(w io.Writer, v any) int {
	if err := writeJSON(w, v); err != nil {
		return 1
	}
	return 0
}

func fail(w io.Writer, err error) int {
	_ = writeJSON(w, map[string]any{"success": false, "error": err.Error()})
	return 1
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
