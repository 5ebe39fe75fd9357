package cli

import (
	"errors"
	"flag"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	opts, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if opts.DBPath != DefaultDBPath {
		t.Fatalf("DBPath = %q, want %q", opts.DBPath, DefaultDBPath)
	}
	if opts.Customers != DefaultCustomers {
		t.Fatalf("Customers = %d, want %d", opts.Customers, DefaultCustomers)
	}
	if opts.Orders != DefaultOrders {
		t.Fatalf("Orders = %d, want %d", opts.Orders, DefaultOrders)
	}
	if opts.RNGSeed != DefaultRNGSeed {
		t.Fatalf("RNGSeed = %d, want %d", opts.RNGSeed, DefaultRNGSeed)
	}
	if opts.InitDB || opts.Seed || opts.Demo {
		t.Fatalf("stage flags should default to false, got %+v", opts)
	}
	if opts.Stages() {
		t.Fatalf("Stages() = true with no stage flags")
	}
	if opts.ProfilePath != "" || opts.OutDir != "" {
		t.Fatalf("ProfilePath/OutDir should default empty, got %+v", opts)
	}
	if len(opts.Args) != 0 {
		t.Fatalf("Args = %v, want empty slice", opts.Args)
	}
}

func TestParseOverrides(t *testing.T) {
	args := []string{
		"--db", "tmp/lab.db",
		"--init-db",
		"--seed",
		"--demo",
		"--n_customers", "25",
		"--n_orders", "100",
		"--rng-seed", "7",
		"--profile", "profiles/chile.toml",
		"--out", "artifacts",
		"--strict-profile",
		"-v",
		"extra",
	}

	opts, err := Parse(args)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if got, want := opts.DBPath, "tmp/lab.db"; got != want {
		t.Fatalf("DBPath = %q, want %q", got, want)
	}
	if !opts.InitDB || !opts.Seed || !opts.Demo {
		t.Fatalf("expected all stage flags set, got %+v", opts)
	}
	if !opts.Stages() {
		t.Fatalf("Stages() = false, want true")
	}
	if opts.Customers != 25 || opts.Orders != 100 {
		t.Fatalf("counts = (%d, %d), want (25, 100)", opts.Customers, opts.Orders)
	}
	if opts.RNGSeed != 7 {
		t.Fatalf("RNGSeed = %d, want 7", opts.RNGSeed)
	}
	if got, want := opts.ProfilePath, "profiles/chile.toml"; got != want {
		t.Fatalf("ProfilePath = %q, want %q", got, want)
	}
	if got, want := opts.OutDir, "artifacts"; got != want {
		t.Fatalf("OutDir = %q, want %q", got, want)
	}
	if !opts.StrictProfile {
		t.Fatalf("StrictProfile = false, want true")
	}
	if !opts.Verbose {
		t.Fatalf("Verbose = false, want true")
	}
	if len(opts.Args) != 1 || opts.Args[0] != "extra" {
		t.Fatalf("Args = %v, want [extra]", opts.Args)
	}
}

func TestParseZeroOrders(t *testing.T) {
	opts, err := Parse([]string{"--seed", "--n_orders", "0"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if opts.Orders != 0 {
		t.Fatalf("Orders = %d, want 0", opts.Orders)
	}
}

func TestParseHelp(t *testing.T) {
	_, err := Parse([]string{"--help"})
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error = %v, want to wrap flag.ErrHelp", err)
	}
	if !strings.Contains(err.Error(), "Usage of shoplab") {
		t.Fatalf("error = %q, want usage string", err.Error())
	}
}

func TestParseInvalidFlag(t *testing.T) {
	_, err := Parse([]string{"--unknown"})
	if err == nil {
		t.Fatalf("Parse expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "Usage of shoplab") {
		t.Fatalf("error = %q, want usage string", err.Error())
	}
	if errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error unexpectedly wraps flag.ErrHelp")
	}
}

func TestParseInvalidCounts(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero customers", []string{"--n_customers", "0"}},
		{"negative customers", []string{"--n_customers", "-3"}},
		{"negative orders", []string{"--n_orders", "-1"}},
		{"empty db path", []string{"--db", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.args); err == nil {
				t.Fatalf("Parse(%v) expected error", tt.args)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	fs := flag.NewFlagSet("shoplab", flag.ContinueOnError)
	fs.String("flag", "value", "test flag")

	usage := Usage(fs)
	if !strings.Contains(usage, "Usage of shoplab:") {
		t.Fatalf("usage missing header: %q", usage)
	}
	if !strings.Contains(usage, "-flag") {
		t.Fatalf("usage missing flag definition: %q", usage)
	}
}
