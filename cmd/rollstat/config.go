package main

import (
	"flag"
	"fmt"
	"io"
	"time"
)

const (
	DefaultWindowSize = 20
	DefaultSource     = "text"

	SyntheticSteps       = 1_000
	SyntheticStartPrice  = "1.0550"
	SyntheticMu          = "0.0001"
	SyntheticSigma       = "0.01"
	SyntheticDeltaT      = "0.001"
	SyntheticPriceDigits = 5
)

type Config struct {
	WindowSize int
	Source     string
	Path       string

	Column int
	Header bool

	Table   string
	Query   string
	OrderBy string

	From time.Time
	To   time.Time

	Seed  int64
	Steps int64

	Prod    bool
	Verbose bool
}

func parseConfig(args []string, output io.Writer) (Config, error) {
	var (
		cfg      Config
		from, to string
	)

	fs := flag.NewFlagSet("rollstat", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.IntVar(&cfg.WindowSize, "window", DefaultWindowSize, "number of most recent observations in the window")
	fs.StringVar(&cfg.Source, "source", DefaultSource, "observation source: text, bin, duckdb or synthetic")
	fs.StringVar(&cfg.Path, "path", "", "input file (text, bin) or DuckDB database (empty for in-memory); text reads stdin when empty")
	fs.IntVar(&cfg.Column, "column", 0, "zero based CSV column holding the value (text)")
	fs.BoolVar(&cfg.Header, "header", false, "skip the first CSV record (text)")
	fs.StringVar(&cfg.Table, "table", "", "table or table function to read (duckdb)")
	fs.StringVar(&cfg.Query, "query-column", "value", "column expression to read (duckdb)")
	fs.StringVar(&cfg.OrderBy, "order-by", "", "ORDER BY expression (duckdb)")
	fs.StringVar(&from, "from", "", "RFC3339 lower timestamp bound (bin)")
	fs.StringVar(&to, "to", "", "RFC3339 upper timestamp bound (bin)")
	fs.Int64Var(&cfg.Seed, "seed", 1, "random seed (synthetic)")
	fs.Int64Var(&cfg.Steps, "steps", SyntheticSteps, "number of generated observations (synthetic)")
	fs.BoolVar(&cfg.Prod, "prod", false, "use the JSON production logger")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log the statistics after every observation")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if from != "" || to != "" {
		var err error
		cfg.From, cfg.To = time.Unix(0, 0).UTC(), time.Unix(0, 1<<62).UTC()
		if from != "" {
			if cfg.From, err = time.Parse(time.RFC3339Nano, from); err != nil {
				return cfg, fmt.Errorf("invalid -from: %w", err)
			}
		}
		if to != "" {
			if cfg.To, err = time.Parse(time.RFC3339Nano, to); err != nil {
				return cfg, fmt.Errorf("invalid -to: %w", err)
			}
		}
	}

	switch cfg.Source {
	case "text", "synthetic":
	case "bin":
		if cfg.Path == "" {
			return cfg, fmt.Errorf("-path is required for the bin source")
		}
	case "duckdb":
		if cfg.Table == "" {
			return cfg, fmt.Errorf("-table is required for the duckdb source")
		}
	default:
		return cfg, fmt.Errorf("unknown source %q", cfg.Source)
	}

	return cfg, nil
}
