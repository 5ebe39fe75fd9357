// Package explain captures and classifies SQLite query plans.
package explain

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// StepKind classifies one plan step.
type StepKind string

const (
	// StepScan is a full table scan, optionally through a covering index.
	StepScan StepKind = "scan"
	// StepSearch is an indexed or rowid lookup.
	StepSearch StepKind = "search"
	// StepTemp is a transient b-tree built for sorting or grouping.
	StepTemp StepKind = "temp-btree"
	// StepOpaque is any detail line the grammar does not model.
	StepOpaque StepKind = "opaque"
)

// Step is one classified plan detail line.
type Step struct {
	Kind       StepKind
	Detail     string
	Target     string
	Index      string
	Covering   bool
	PrimaryKey bool
	Condition  string
	Purpose    string
}

// Report is the captured plan of one query.
type Report struct {
	Query string
	Steps []Step
}

// Details returns the raw detail lines in plan order.
func (r Report) Details() []string {
	details := make([]string, len(r.Steps))
	for i, step := range r.Steps {
		details[i] = step.Detail
	}
	return details
}

// Indexes returns the distinct index names used by the plan, in step order.
func (r Report) Indexes() []string {
	var names []string
	seen := make(map[string]struct{})
	for _, step := range r.Steps {
		if step.Index == "" {
			continue
		}
		if _, ok := seen[step.Index]; ok {
			continue
		}
		seen[step.Index] = struct{}{}
		names = append(names, step.Index)
	}
	return names
}

// UsesTempBTree reports whether any step builds a transient b-tree.
func (r Report) UsesTempBTree() bool {
	for _, step := range r.Steps {
		if step.Kind == StepTemp {
			return true
		}
	}
	return false
}

// planLexer tokenizes EXPLAIN QUERY PLAN detail lines. Key conditions such as
// (customer_id=?) stay single tokens.
var planLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Whitespace", `[ \t]+`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Condition", `\([^)]*\)`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"BTree", `B-TREE`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Ident", `[A-Za-z_][A-Za-z0-9_]*`, nil},
	},
})

//nolint:govet // Participle struct tags are DSL, not reflect tags
type planLine struct {
	Scan   *scanStep   `  @@`
	Search *searchStep `| @@`
	Temp   *tempStep   `| @@`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type scanStep struct {
	Target string    `"SCAN" @Ident`
	Using  *indexRef `("USING" @@)?`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type searchStep struct {
	Target    string     `"SEARCH" @Ident "USING"`
	Access    *accessRef `@@`
	Condition string     `@Condition?`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type accessRef struct {
	PrimaryKey bool      `  @("INTEGER" "PRIMARY" "KEY")`
	Index      *indexRef `| @@`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type indexRef struct {
	Covering bool   `@"COVERING"? "INDEX"`
	Name     string `@Ident`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type tempStep struct {
	Purpose []string `"USE" "TEMP" BTree "FOR" @Ident+`
}

var planParser = participle.MustBuild[planLine](
	participle.Lexer(planLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

// ParseLine classifies one plan detail line. Layouts the grammar does not
// model come back as opaque steps, never as errors.
func ParseLine(detail string) Step {
	line, err := planParser.ParseString("", detail)
	if err != nil {
		return Step{Kind: StepOpaque, Detail: detail}
	}
	switch {
	case line.Scan != nil:
		step := Step{Kind: StepScan, Detail: detail, Target: line.Scan.Target}
		if ref := line.Scan.Using; ref != nil {
			step.Index = ref.Name
			step.Covering = ref.Covering
		}
		return step
	case line.Search != nil:
		step := Step{Kind: StepSearch, Detail: detail, Target: line.Search.Target, Condition: line.Search.Condition}
		if access := line.Search.Access; access != nil {
			step.PrimaryKey = access.PrimaryKey
			if access.Index != nil {
				step.Index = access.Index.Name
				step.Covering = access.Index.Covering
			}
		}
		return step
	case line.Temp != nil:
		return Step{Kind: StepTemp, Detail: detail, Purpose: strings.Join(line.Temp.Purpose, " ")}
	default:
		return Step{Kind: StepOpaque, Detail: detail}
	}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Explain runs EXPLAIN QUERY PLAN over query and classifies each step. The
// detail text is the last column of each row; the column count varies across
// SQLite versions.
func Explain(ctx context.Context, db queryer, name, query string) (Report, error) {
	report := Report{Query: name}

	rows, err := db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+query)
	if err != nil {
		return report, fmt.Errorf("explain %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return report, fmt.Errorf("explain %s: %w", name, err)
	}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return report, fmt.Errorf("explain %s: %w", name, err)
		}
		detail := asString(values[len(values)-1])
		report.Steps = append(report.Steps, ParseLine(detail))
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("explain %s: %w", name, err)
	}
	return report, nil
}

// FormatPlans renders reports in the plans artifact layout: a `-- name --`
// header per query followed by its raw detail lines, sections separated by
// blank lines.
func FormatPlans(reports []Report) []byte {
	sections := make([]string, len(reports))
	for i, report := range reports {
		sections[i] = fmt.Sprintf("-- %s --\n%s\n", report.Query, strings.Join(report.Details(), "\n"))
	}
	return []byte(strings.Join(sections, "\n"))
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
