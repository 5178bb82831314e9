package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/daefinder/internal/config"
	"github.com/kailas-cloud/daefinder/internal/domain/device"
	"github.com/kailas-cloud/daefinder/internal/domain/query"
	"github.com/kailas-cloud/daefinder/internal/geolocation"
	"github.com/kailas-cloud/daefinder/internal/presenter"
	"github.com/kailas-cloud/daefinder/internal/usecase/fetch"
	healthuc "github.com/kailas-cloud/daefinder/internal/usecase/health"
	seeduc "github.com/kailas-cloud/daefinder/internal/usecase/seed"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"search": runSearch,
	"near":   runNear,
	"seed":   runSeed,
	"health": runHealth,
}

var errUsage = errors.New("invalid arguments")

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	status := fs.String("status", string(device.StatusOperational), "operational, out_of_service or any")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	opt, err := statusOption(*status)
	if err != nil {
		return err
	}

	d := query.BuildFilter(strings.Join(fs.Args(), " "), opt)
	ctrl := fetch.New(a.repo, fetch.WithLogger(a.logger))
	ctrl.Execute(ctx, d)
	return settle(ctrl)
}

func runNear(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("near", flag.ContinueOnError)
	gcfg := a.cfg.Geolocation
	lat := fs.Float64("lat", gcfg.Latitude, "origin latitude")
	lon := fs.Float64("lon", gcfg.Longitude, "origin longitude")
	ip := fs.String("ip", "", "resolve the origin from this IP with the GeoIP database")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	latLonSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			latLonSet = true
		}
	})
	switch {
	case *ip != "":
		gcfg.Provider = config.ProviderGeoIP
		gcfg.IP = *ip
	case latLonSet:
		gcfg.Provider = config.ProviderStatic
		gcfg.Latitude, gcfg.Longitude = *lat, *lon
	}

	// A provider that cannot be built still goes through the controller so the
	// failure is reported as a location failure.
	loc := geolocation.New(gcfg)
	defer func() { _ = loc.Close() }()

	ctrl := fetch.New(a.repo, fetch.WithLogger(a.logger), fetch.WithLocator(loc))
	ctrl.Nearby(ctx)
	return settle(ctrl)
}

func runSeed(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	reset := fs.Bool("reset", false, "drop the index and its documents first")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: seed expects exactly one dataset file", errUsage)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	docs, err := seeduc.Decode(f)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Seeding devices..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	svc := seeduc.New(a.repo, seeduc.Config{
		BatchSize:   a.cfg.Seed.BatchSize,
		Concurrency: a.cfg.Seed.Concurrency,
		Reset:       *reset,
	}, a.logger)

	res, err := svc.Seed(ctx, docs, func(n int) { _ = bar.Add(n) })
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	active, err := a.repo.Count(ctx, query.Active())
	if err != nil {
		a.logger.Warn("Failed to count active devices", zap.Error(err))
		active = -1
	}

	fmt.Printf("%d devices written in %d batches to %s", res.Written, res.Batches, a.repo.IndexName())
	if active >= 0 {
		fmt.Printf(", %d operational", active)
	}
	fmt.Println()
	return nil
}

func runHealth(ctx context.Context, a *app, _ []string) error {
	loc := geolocation.New(a.cfg.Geolocation)
	defer func() { _ = loc.Close() }()

	report := healthuc.New(a.store, loc).Check(ctx)
	writeReport(os.Stdout, report)
	if report.Status != healthuc.Healthy {
		return fmt.Errorf("health status %s", report.Status)
	}
	return nil
}

func writeReport(w io.Writer, r healthuc.Report) {
	names := make([]string, 0, len(r.Checks))
	for name := range r.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "status: %s\n", r.Status)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, r.Checks[name])
	}
}

// settle waits for the issued request and renders the committed state.
func settle(ctrl *fetch.Controller) error {
	ctrl.Wait()
	ctrl.Close()

	st := ctrl.State()
	if err := presenter.New(os.Stdout).Render(st); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if st.Status == fetch.StatusFailure {
		return st.Err
	}
	return nil
}

func statusOption(s string) (query.Option, error) {
	switch s {
	case "any":
		return query.AnyStatus(), nil
	case string(device.StatusOperational), string(device.StatusOutOfService):
		return query.WithStatus(device.Status(s)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported status %q", errUsage, s)
	}
}
