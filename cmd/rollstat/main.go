package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/peter-kozarec/rollstat/internal/dbg"
	"github.com/peter-kozarec/rollstat/pkg/datasource"
	"github.com/peter-kozarec/rollstat/pkg/datasource/duckdb"
	"github.com/peter-kozarec/rollstat/pkg/datasource/historical"
	"github.com/peter-kozarec/rollstat/pkg/datasource/synthetic"
	"github.com/peter-kozarec/rollstat/pkg/datasource/text"
	"github.com/peter-kozarec/rollstat/pkg/middleware"
	"github.com/peter-kozarec/rollstat/pkg/tools/indicators"
	"github.com/peter-kozarec/rollstat/pkg/tools/rolling"
	"github.com/peter-kozarec/rollstat/pkg/utility"
	"github.com/peter-kozarec/rollstat/pkg/utility/fixed"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		_, _ = io.WriteString(os.Stderr, err.Error()+"\n")
		os.Exit(2)
	}

	level := zapcore.InfoLevel
	if cfg.Verbose {
		level = zapcore.DebugLevel
	}

	var logger *zap.Logger
	if cfg.Prod {
		logger = dbg.NewProdLogger(level)
	} else {
		logger = dbg.NewDevLogger(level)
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	logger = logger.With(utility.ExecutionIDField())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, os.Stdin, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("rollstat failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, stdin io.Reader, logger *zap.Logger) error {
	stats, err := rolling.NewStatistics(cfg.WindowSize)
	if err != nil {
		return err
	}

	src, closeSource, err := openSource(cfg, stdin)
	if err != nil {
		return err
	}
	defer closeSource()

	flags := middleware.MonitorRejections
	if cfg.Verbose {
		flags |= middleware.MonitorSnapshots
	}

	monitor := middleware.NewMonitor(logger, stats, flags)
	telemetry := middleware.NewTelemetry(logger)
	handler := middleware.Chain(monitor.WithObservation, telemetry.WithObservation)(middleware.Insert(stats))

	logger.Info("rollstat started", zap.Int("window", cfg.WindowSize), zap.String("source", cfg.Source))

	err = datasource.Dispatch(ctx, src, handler)

	telemetry.PrintStatistics()
	monitor.PrintSnapshot()
	if z, zErr := indicators.NewZScore(stats).Value(); zErr == nil {
		logger.Info("latest z-score", zap.Stringer("zscore", z))
	}

	return err
}

func openSource(cfg Config, stdin io.Reader) (datasource.Source, func(), error) {
	switch cfg.Source {
	case "bin":
		file, err := historical.OpenFile[historical.BinaryObservation](cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		var options []historical.ReaderOption
		if !cfg.From.IsZero() || !cfg.To.IsZero() {
			options = append(options, historical.WithRange(cfg.From, cfg.To))
		}
		return historical.NewReader(file, options...), file.Close, nil

	case "duckdb":
		var options []duckdb.ReaderOption
		if cfg.OrderBy != "" {
			options = append(options, duckdb.WithOrderBy(cfg.OrderBy))
		}
		r := duckdb.NewReader(cfg.Path, cfg.Table, cfg.Query, options...)
		if err := r.Connect(); err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil

	case "synthetic":
		g, err := synthetic.NewGenerator(rand.New(rand.NewSource(cfg.Seed)),
			fixed.MustParse(SyntheticStartPrice),
			fixed.MustParse(SyntheticMu),
			fixed.MustParse(SyntheticSigma),
			fixed.MustParse(SyntheticDeltaT),
			cfg.Steps)
		if err != nil {
			return nil, nil, err
		}
		g.SetPriceDigits(SyntheticPriceDigits)
		return g, func() {}, nil

	default:
		in := stdin
		closeFn := func() {}
		if cfg.Path != "" {
			f, err := os.Open(cfg.Path)
			if err != nil {
				return nil, nil, err
			}
			in, closeFn = f, func() { _ = f.Close() }
		}
		options := []text.ReaderOption{text.WithColumn(cfg.Column)}
		if cfg.Header {
			options = append(options, text.WithHeader())
		}
		return text.NewReader(in, options...), closeFn, nil
	}
}
