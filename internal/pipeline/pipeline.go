// Package pipeline orchestrates the init, seed, and demo stages.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/electwix/shoplab/internal/analytics"
	"github.com/electwix/shoplab/internal/explain"
	"github.com/electwix/shoplab/internal/logging"
	"github.com/electwix/shoplab/internal/profile"
	"github.com/electwix/shoplab/internal/report"
	"github.com/electwix/shoplab/internal/seed"
	"github.com/electwix/shoplab/internal/store"
)

// PlansFileName is the query plan artifact written by the demo stage.
const PlansFileName = "query_plans.txt"

// ChartFileName is the monthly revenue chart written by the demo stage.
const ChartFileName = "monthly_revenue.png"

// Environment captures external dependencies used by the pipeline.
type Environment struct {
	Logger *slog.Logger
	Writer Writer
	Stdout io.Writer
}

// Writer writes artifact files to persistent storage.
type Writer interface {
	WriteFile(path string, data []byte) error
}

// Pipeline orchestrates schema creation, seeding, and the analytics demo.
type Pipeline struct {
	Env   Environment
	Hooks Hooks
}

// Summary captures results and artifacts collected during a run.
type Summary struct {
	Warnings      []string
	SeedStats     seed.Stats
	ResultCounts  map[string]int
	PlanReports   []explain.Report
	ArtifactPaths []string
}

// RunOptions configures a pipeline execution.
type RunOptions struct {
	DBPath        string
	OutDir        string
	ProfilePath   string
	StrictProfile bool
	InitDB        bool
	Seed          bool
	Demo          bool
	Customers     int
	Orders        int
	RNGSeed       uint64
}

// ArtifactError wraps failures encountered while writing artifact files.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// NewOSWriter returns a Writer that writes to the local filesystem.
// Files are written atomically via a temp file and rename.
func NewOSWriter() Writer {
	return &osWriter{perm: 0o644}
}

type osWriter struct {
	perm fs.FileMode
}

func (w *osWriter) WriteFile(path string, data []byte) error {
	if path == "" {
		return errors.New("pipeline: empty artifact path")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".shoplab-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	success := false
	defer func() {
		_ = tmp.Close()
		if !success {
			_ = os.Remove(tmpName)
		}
	}()
	if w.perm != 0 {
		if err := tmp.Chmod(w.perm); err != nil {
			return fmt.Errorf("chmod temp file: %w", err)
		}
	}
	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}

// Run executes the selected stages in order: init, seed, demo.
// Stages not selected in opts are skipped; selecting none is a no-op.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (summary Summary, err error) {
	summary = Summary{ResultCounts: make(map[string]int)}
	defer func() {
		if hook := p.Hooks.AfterRun; hook != nil {
			if hookErr := hook(ctx, summary); err == nil {
				err = hookErr
			}
		}
	}()

	logger := p.Env.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With(slog.String("run_id", uuid.NewString()))

	stdout := p.Env.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	writer := p.Env.Writer
	if writer == nil {
		writer = NewOSWriter()
	}

	prof := profile.Default()
	if opts.ProfilePath != "" {
		result, loadErr := profile.Load(opts.ProfilePath, profile.LoadOptions{Strict: opts.StrictProfile})
		if loadErr != nil {
			return summary, loadErr
		}
		for _, warning := range result.Warnings {
			logger.Warn("profile warning", slog.String("detail", warning))
		}
		summary.Warnings = append(summary.Warnings, result.Warnings...)
		prof = result.Profile
		logger.Debug("profile loaded", slog.String("path", opts.ProfilePath))
	}

	if !opts.InitDB && !opts.Seed && !opts.Demo {
		return summary, nil
	}

	if opts.InitDB {
		if hookErr := callHook(ctx, p.Hooks.BeforeInit, opts.DBPath); hookErr != nil {
			return summary, hookErr
		}
		if dir := filepath.Dir(opts.DBPath); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
				return summary, fmt.Errorf("create database directory %s: %w", dir, mkErr)
			}
		}
	}

	db, openErr := store.Open(ctx, opts.DBPath)
	if openErr != nil {
		return summary, openErr
	}
	defer func() { _ = db.Close() }()

	if opts.InitDB {
		if schemaErr := store.EnsureSchema(ctx, db); schemaErr != nil {
			return summary, schemaErr
		}
		logger.Info("schema ready", slog.String("db", opts.DBPath))
		if hookErr := callHook(ctx, p.Hooks.AfterInit, opts.DBPath); hookErr != nil {
			return summary, hookErr
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return summary, ctxErr
	}

	if opts.Seed {
		if hookErr := callHook(ctx, p.Hooks.BeforeSeed, prof); hookErr != nil {
			return summary, hookErr
		}
		seeder := &seed.Seeder{DB: db, Logger: logger}
		stats, seedErr := seeder.Run(ctx, prof, seed.Options{
			Customers: opts.Customers,
			Orders:    opts.Orders,
			Seed:      opts.RNGSeed,
		})
		if seedErr != nil {
			return summary, seedErr
		}
		summary.SeedStats = stats
		if hookErr := callHook(ctx, p.Hooks.AfterSeed, stats); hookErr != nil {
			return summary, hookErr
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return summary, ctxErr
	}

	if opts.Demo {
		outDir := opts.OutDir
		if outDir == "" {
			outDir = filepath.Dir(opts.DBPath)
		}
		if hookErr := callHook(ctx, p.Hooks.BeforeDemo, outDir); hookErr != nil {
			return summary, hookErr
		}
		deps := demoDeps{
			logger: logger,
			stdout: stdout,
			writer: writer,
			outDir: outDir,
			prof:   prof,
		}
		if demoErr := p.demo(ctx, db, deps, &summary); demoErr != nil {
			return summary, demoErr
		}
	}

	return summary, nil
}

type demoDeps struct {
	logger *slog.Logger
	stdout io.Writer
	writer Writer
	outDir string
	prof   profile.Profile
}

func (p *Pipeline) demo(ctx context.Context, db *sql.DB, deps demoDeps, summary *Summary) error {
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	queries := analytics.New(db)

	top, err := queries.TopCustomers(ctx)
	if err != nil {
		return fmt.Errorf("query %s: %w", analytics.QueryTopCustomers, err)
	}
	if err := report.WriteTable(deps.stdout, analytics.QueryTopCustomers, report.TopCustomersTable(top)); err != nil {
		return fmt.Errorf("preview %s: %w", analytics.QueryTopCustomers, err)
	}
	summary.ResultCounts[analytics.QueryTopCustomers] = len(top)

	monthly, err := queries.MonthlyRevenue(ctx)
	if err != nil {
		return fmt.Errorf("query %s: %w", analytics.QueryMonthlyRevenue, err)
	}
	if err := report.WriteTable(deps.stdout, analytics.QueryMonthlyRevenue, report.MonthlyRevenueTable(monthly)); err != nil {
		return fmt.Errorf("preview %s: %w", analytics.QueryMonthlyRevenue, err)
	}
	summary.ResultCounts[analytics.QueryMonthlyRevenue] = len(monthly)

	matrix, err := queries.CategoryCityMatrix(ctx)
	if err != nil {
		return fmt.Errorf("query %s: %w", analytics.QueryCategoryCityMatrix, err)
	}
	if err := report.WriteTable(deps.stdout, analytics.QueryCategoryCityMatrix, report.CategoryCityTable(matrix)); err != nil {
		return fmt.Errorf("preview %s: %w", analytics.QueryCategoryCityMatrix, err)
	}
	summary.ResultCounts[analytics.QueryCategoryCityMatrix] = len(matrix)

	ranks, err := queries.RankInCity(ctx)
	if err != nil {
		return fmt.Errorf("query %s: %w", analytics.QueryRankInCity, err)
	}
	if err := report.WriteTable(deps.stdout, analytics.QueryRankInCity, report.RankInCityTable(ranks)); err != nil {
		return fmt.Errorf("preview %s: %w", analytics.QueryRankInCity, err)
	}
	summary.ResultCounts[analytics.QueryRankInCity] = len(ranks)

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, entry := range analytics.Catalog() {
		plan, err := explain.Explain(ctx, db, entry.Name, entry.SQL)
		if err != nil {
			return err
		}
		deps.logger.Debug("query plan",
			slog.String("query", plan.Query),
			slog.Any("indexes", plan.Indexes()),
			slog.Bool("temp_btree", plan.UsesTempBTree()))
		summary.PlanReports = append(summary.PlanReports, plan)
	}
	if err := callHook(ctx, p.Hooks.AfterExplain, summary.PlanReports); err != nil {
		return err
	}

	plansPath := filepath.Join(deps.outDir, PlansFileName)
	if err := p.writeArtifact(ctx, deps.writer, Artifact{Path: plansPath, Data: explain.FormatPlans(summary.PlanReports)}); err != nil {
		return err
	}
	summary.ArtifactPaths = append(summary.ArtifactPaths, plansPath)
	deps.logger.Info("query plans written", slog.String("path", plansPath))

	chart, err := report.RenderMonthlyRevenue(monthly)
	if err != nil {
		return err
	}
	chartPath := filepath.Join(deps.outDir, ChartFileName)
	if err := p.writeArtifact(ctx, deps.writer, Artifact{Path: chartPath, Data: chart}); err != nil {
		return err
	}
	summary.ArtifactPaths = append(summary.ArtifactPaths, chartPath)
	deps.logger.Info("chart written", slog.String("path", chartPath))

	return p.transactionWalkthrough(ctx, db, deps.logger, deps.prof.TopCity())
}

func (p *Pipeline) writeArtifact(ctx context.Context, writer Writer, artifact Artifact) error {
	if err := callHook(ctx, p.Hooks.BeforeWrite, artifact); err != nil {
		return err
	}
	if err := writer.WriteFile(artifact.Path, artifact.Data); err != nil {
		return &ArtifactError{Path: artifact.Path, Err: err}
	}
	return nil
}

const walkthroughInsert = `INSERT INTO customers (first_name, last_name, email, city, signup_date) VALUES (?, ?, ?, ?, ?)`

// transactionWalkthrough inserts a throwaway customer twice inside one
// transaction. The second insert violates the email UNIQUE constraint, the
// transaction rolls back, and a parameterized count keeps working afterwards.
func (p *Pipeline) transactionWalkthrough(ctx context.Context, db *sql.DB, logger *slog.Logger, city string) error {
	today := time.Now().UTC().Format(store.DateLayout)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("walkthrough: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, walkthroughInsert, "Temporal", "Test", "temporal@example.com", city, today); err != nil {
		return fmt.Errorf("walkthrough: first insert: %w", err)
	}
	_, dupErr := tx.ExecContext(ctx, walkthroughInsert, "Temporal", "Test", "temporal@example.com", city, today)
	if dupErr == nil {
		return errors.New("walkthrough: duplicate email insert unexpectedly succeeded")
	}
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("walkthrough: rollback: %w", err)
	}
	logger.Info("integrity error captured, transaction rolled back", slog.String("cause", dupErr.Error()))

	var count int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers WHERE city = ?;", city).Scan(&count); err != nil {
		return fmt.Errorf("walkthrough: count customers in %s: %w", city, err)
	}
	logger.Info("customers in city", slog.String("city", city), slog.Int64("count", count))
	return nil
}
