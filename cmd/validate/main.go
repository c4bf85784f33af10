// Command validate performs integrity checks on a region dataset: that it
// loads without dropped series, that every category override is recognized,
// and that the engine's output for every region satisfies its invariants.
//
// Usage:
//
//	go run ./cmd/validate -regions data/regions.json
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/groundwater-insights/internal/adapter/dataset"
	"github.com/couchcryptid/groundwater-insights/internal/analysis"
	"github.com/couchcryptid/groundwater-insights/internal/domain"
	"github.com/couchcryptid/groundwater-insights/internal/observability"
	"github.com/jonboulle/clockwork"
)

const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	regionsFile := flag.String("regions", "", "regions JSON file (default: embedded dataset)")
	flag.Parse()

	os.Exit(run(*regionsFile))
}

func run(regionsFile string) int {
	// Fixed clock so synthesized trends are reproducible between runs.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Groundwater Dataset Validation ===")
	fmt.Println()

	var warnings bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&warnings, &slog.HandlerOptions{Level: slog.LevelWarn}))

	catalog, err := dataset.LoadFile(regionsFile, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}
	records := catalog.All()

	reqs := make([]analysis.Request, len(records))
	for i, rec := range records {
		reqs[i] = rec.Request()
	}
	analyzer := analysis.New(42, 4, observability.NewMetricsForTesting(), logger)
	reports, err := analyzer.AnalyzeAll(context.Background(), reqs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: analyze dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSeries(warnings.String()),
		validateCategories(records),
		validateReports(reports),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Regions: %d across %d states\n", len(records), len(catalog.States()))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateSeries fails for every series the loader dropped as malformed.
func validateSeries(loaderOutput string) *phase {
	p := &phase{name: "Phase 1: Series Shape (levels, rainfall)"}
	for _, line := range strings.Split(strings.TrimSpace(loaderOutput), "\n") {
		if line != "" {
			p.errorf("%s", line)
		}
	}
	return p
}

func validateCategories(records []dataset.Record) *phase {
	p := &phase{name: "Phase 2: Category Overrides"}
	known := map[domain.Category]bool{
		domain.CategorySafe:          true,
		domain.CategorySemiCritical:  true,
		domain.CategoryCritical:      true,
		domain.CategoryOverExploited: true,
		domain.CategorySaline:        true,
		domain.CategoryHillyArea:     true,
		domain.CategoryNoData:        true,
	}
	for _, rec := range records {
		if rec.Category == "" {
			continue
		}
		if c := domain.NormalizeCategory(rec.Category); !known[c] {
			p.errorf("%s: unrecognized category %q", rec.Name(), rec.Category)
		}
	}
	return p
}

func validateReports(reports []analysis.Report) *phase {
	p := &phase{name: "Phase 3: Engine Invariants"}
	for _, r := range reports {
		pf := func(format string, args ...any) {
			p.errorf("%s: "+format, append([]any{r.Region}, args...)...)
		}
		checkProjection(pf, r)
		checkRisk(pf, r.Risk)
		checkBalance(pf, r.WaterBalance)
		if len(r.Rainfall) != len(domain.Months) {
			pf("rainfall has %d months", len(r.Rainfall))
		}
	}
	return p
}

func checkProjection(pf func(string, ...any), r analysis.Report) {
	if len(r.Projection) != domain.ProjectionHorizon {
		pf("projection has %d points, want %d", len(r.Projection), domain.ProjectionHorizon)
		return
	}
	prevWidth := 0.0
	for _, pt := range r.Projection {
		if pt.BusinessAsUsualLower > pt.BusinessAsUsual+tolerance || pt.BusinessAsUsual > pt.BusinessAsUsualUpper+tolerance {
			pf("%d: band [%v, %v] does not contain %v", pt.Year, pt.BusinessAsUsualLower, pt.BusinessAsUsualUpper, pt.BusinessAsUsual)
		}
		width := pt.BusinessAsUsualUpper - pt.BusinessAsUsualLower
		if width < prevWidth-tolerance {
			pf("%d: band narrowed from %v to %v", pt.Year, prevWidth, width)
		}
		prevWidth = width
	}
	if r.Projection[0].Current == nil {
		pf("anchor year %d has no current level", r.Projection[0].Year)
	}
}

func checkRisk(pf func(string, ...any), risk domain.RiskProfile) {
	if len(risk) != 5 {
		pf("risk profile has %d axes", len(risk))
	}
	for _, s := range risk {
		if s.Score < 0 || s.Score > 100 {
			pf("%s score %v outside [0, 100]", s.Axis, s.Score)
		}
	}
}

func checkBalance(pf func(string, ...any), b *domain.WaterBalance) {
	if b == nil {
		return
	}
	if want := b.Recharge - b.Extraction - b.NaturalDischarge; math.Abs(b.NetBalance-want) > tolerance {
		pf("net balance %v, want %v", b.NetBalance, want)
	}
}
