// Package cli parses the shoplab command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Defaults describe the stock demo dataset: 300 customers, 2000 orders,
// generated from the fixed seed 2025 so repeat runs produce identical rows.
const (
	DefaultDBPath    = "data/shop.db"
	DefaultCustomers = 300
	DefaultOrders    = 2000
	DefaultRNGSeed   = 2025
)

// Options captures the parsed shoplab invocation.
type Options struct {
	DBPath        string
	InitDB        bool
	Seed          bool
	Demo          bool
	Customers     int
	Orders        int
	RNGSeed       uint64
	ProfilePath   string
	OutDir        string
	StrictProfile bool
	Verbose       bool
	Args          []string
}

// Stages reports whether any pipeline stage was selected.
func (o Options) Stages() bool {
	return o.InitDB || o.Seed || o.Demo
}

// Parse interprets args into Options.
func Parse(args []string) (Options, error) {
	opts := Options{
		DBPath:    DefaultDBPath,
		Customers: DefaultCustomers,
		Orders:    DefaultOrders,
		RNGSeed:   DefaultRNGSeed,
	}

	fs := flag.NewFlagSet("shoplab", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.DBPath, "db", opts.DBPath, "Path to the SQLite database file")
	fs.BoolVar(&opts.InitDB, "init-db", false, "Create the schema if it does not exist")
	fs.BoolVar(&opts.Seed, "seed", false, "Seed synthetic customers and orders")
	fs.BoolVar(&opts.Demo, "demo", false, "Run the demo queries and render artifacts")
	fs.IntVar(&opts.Customers, "n_customers", opts.Customers, "Number of customers to seed")
	fs.IntVar(&opts.Orders, "n_orders", opts.Orders, "Number of orders to seed")
	fs.Uint64Var(&opts.RNGSeed, "rng-seed", opts.RNGSeed, "Seed for the data generator")
	fs.StringVar(&opts.ProfilePath, "profile", "", "Dataset profile file (.toml, .yaml); built-in profile when empty")
	fs.StringVar(&opts.OutDir, "out", "", "Directory for demo artifacts; defaults to the database directory")
	fs.BoolVar(&opts.StrictProfile, "strict-profile", false, "Treat profile warnings as errors")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.Verbose, "v", false, "Enable verbose logging")

	if err := fs.Parse(args); err != nil {
		return Options{}, fmt.Errorf("%w\n\n%s", err, Usage(fs))
	}

	if err := validate(fs, &opts); err != nil {
		return Options{}, err
	}

	opts.Args = fs.Args()
	return opts, nil
}

func validate(fs *flag.FlagSet, opts *Options) error {
	if opts.DBPath == "" {
		return fmt.Errorf("--db must not be empty\n\n%s", Usage(fs))
	}
	if opts.Customers <= 0 {
		return fmt.Errorf("--n_customers must be positive, got %d\n\n%s", opts.Customers, Usage(fs))
	}
	if opts.Orders < 0 {
		return fmt.Errorf("--n_orders must not be negative, got %d\n\n%s", opts.Orders, Usage(fs))
	}
	return nil
}

// Usage renders the flag set's defaults as a help string.
func Usage(fs *flag.FlagSet) string {
	if fs == nil {
		return ""
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "Usage of %s:\n", fs.Name())
	out := fs.Output()
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fs.SetOutput(out)
	return buf.String()
}
