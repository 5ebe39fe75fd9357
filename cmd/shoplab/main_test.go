package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/electwix/shoplab/internal/store"
)

func TestRunHelp(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"--help"}, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("unexpected stderr output: %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "Usage of shoplab") {
		t.Fatalf("stdout %q missing usage text", stdout.String())
	}
}

func TestRunNoStages(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), nil, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}
	if !strings.Contains(stdout.String(), "nothing to do") {
		t.Fatalf("stdout %q missing the no-stage hint", stdout.String())
	}
}

func TestRunInvalidFlag(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	exitCode := run(context.Background(), []string{"--bogus"}, stdout, stderr)
	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}
	if !strings.Contains(stderr.String(), "Usage of shoplab") {
		t.Fatalf("stderr %q missing usage text", stderr.String())
	}
}

func TestRunFullPipeline(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "shop.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	args := []string{
		"--db", dbPath,
		"--init-db",
		"--seed",
		"--demo",
		"--n_customers", "12",
		"--n_orders", "36",
		"--rng-seed", "2025",
	}
	exitCode := run(context.Background(), args, stdout, stderr)
	if exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}

	if !strings.Contains(stdout.String(), "[Query] top_customers") {
		t.Fatalf("stdout %q missing query previews", stdout.String())
	}

	for _, name := range []string{"shop.db", "query_plans.txt", "monthly_revenue.png"} {
		if _, err := os.Stat(filepath.Join(tmpDir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRunZeroOrders(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "shop.db")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	args := []string{
		"--db", dbPath,
		"--init-db",
		"--seed",
		"--n_customers", "5",
		"--n_orders", "0",
	}
	if exitCode := run(context.Background(), args, stdout, stderr); exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr=%q", exitCode, stderr.String())
	}

	db, err := store.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("reopen database: %v", err)
	}
	defer db.Close()

	var customers, orders int
	if err := db.QueryRow("SELECT COUNT(*) FROM customers").Scan(&customers); err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orders); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if customers != 5 || orders != 0 {
		t.Fatalf("table counts = (%d, %d), want (5, 0)", customers, orders)
	}
}

func TestRunSeedWithoutSchema(t *testing.T) {
	tmpDir := t.TempDir()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	args := []string{"--db", filepath.Join(tmpDir, "shop.db"), "--seed"}
	exitCode := run(context.Background(), args, stdout, stderr)
	if exitCode != 1 {
		t.Fatalf("exit code = %d, want 1", exitCode)
	}
	if stderr.Len() == 0 {
		t.Fatal("expected an error on stderr")
	}
}

func TestRunArtifactFailureExitCode(t *testing.T) {
	tmpDir := t.TempDir()
	blocked := filepath.Join(tmpDir, "blocked")
	if err := os.WriteFile(blocked, []byte("not a directory"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	args := []string{
		"--db", filepath.Join(tmpDir, "shop.db"),
		"--out", blocked,
		"--init-db",
		"--seed",
		"--demo",
		"--n_customers", "10",
		"--n_orders", "20",
	}
	exitCode := run(context.Background(), args, stdout, stderr)
	if exitCode != 2 {
		t.Fatalf("exit code = %d, want 2; stderr=%q", exitCode, stderr.String())
	}
	if !strings.Contains(stderr.String(), "write") {
		t.Fatalf("stderr %q missing write failure", stderr.String())
	}
}
