package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/daefinder/internal/config"
	dbRedis "github.com/kailas-cloud/daefinder/internal/db/redis"
	logpkg "github.com/kailas-cloud/daefinder/internal/logger"
	"github.com/kailas-cloud/daefinder/internal/metrics"
	devicerepo "github.com/kailas-cloud/daefinder/internal/repository/device"
	"github.com/kailas-cloud/daefinder/internal/version"
)

const usage = `usage: daefinder [-metrics] <command> [args]

commands:
  search [-status operational|out_of_service|any] [text]   filter by postal code or city
  near [-lat N -lon N | -ip ADDR]                           rank active devices by distance
  seed [-reset] <file.json>                                 load a dataset into the store
  health                                                    check store and geolocation
  version                                                   print build information
`

// app is the composition root shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store
	repo   *devicerepo.Repo
}

func main() {
	fs := flag.NewFlagSet("daefinder", flag.ExitOnError)
	dumpMetrics := fs.Bool("metrics", false, "dump metrics to stderr on exit")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(2)
	}
	cmd, rest := args[0], args[1:]

	if cmd == "version" {
		fmt.Printf("daefinder %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		return
	}

	run, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := bootstrap(ctx)
	ctx = logpkg.ContextWithLogger(ctx, a.logger.With(zap.String("command", cmd)))
	code := 0
	if err := run(ctx, a, rest); err != nil {
		a.logger.Error("Command failed", zap.String("command", cmd), zap.Error(err))
		code = 1
	}

	if *dumpMetrics {
		if err := metrics.Dump(os.Stderr, prometheus.DefaultGatherer); err != nil {
			a.logger.Warn("Failed to dump metrics", zap.Error(err))
		}
	}

	a.store.Close()
	_ = a.logger.Sync()
	os.Exit(code)
}

// bootstrap loads config and logger, connects to the store and waits for it.
func bootstrap(ctx context.Context) *app {
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}

	logger.Debug("Starting daefinder",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	metrics.Register()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Debug("Connected to database")

	repo := devicerepo.New(store, devicerepo.Config{
		KeyPrefix: cfg.Storage.KeyPrefix,
		PageSize:  cfg.Storage.PageSize,
	})

	return &app{cfg: cfg, logger: logger, store: store, repo: repo}
}
