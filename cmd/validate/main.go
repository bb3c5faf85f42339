// Command validate checks that the availability and geometry artifacts agree
// with the ledger they were built from. It re-extracts the ledger, compares
// the result with availability.json, and verifies that every header ZIP has
// geometry or is a known gap.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -ledger exporter/refined.txt \
//	  -availability data/availability.json \
//	  -geometry data/columbus-zips.geojson
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/zip-coverage/internal/adapter/filestore"
	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
)

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
	ledger := flag.String("ledger", "exporter/refined.txt", "path to the availability ledger")
	availability := flag.String("availability", "data/availability.json", "path to the availability artifact")
	geometry := flag.String("geometry", "data/columbus-zips.geojson", "path to the geometry artifact")
	strict := flag.Bool("strict", false, "treat ledger diagnostics as failures")
	flag.Parse()

	os.Exit(run(filestore.New(*ledger, *availability, *geometry), *strict))
}

func run(store *filestore.Store, strict bool) int {
	fmt.Println("=== Coverage Artifact Validation ===")
	fmt.Println()

	ext, err := extract(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}
	table, tableRaw, err := store.LoadAvailability()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load availability: %v\n", err)
		return 1
	}
	fc, _, err := store.LoadGeometry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load geometry: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateLedger(ext, strict),
		validateAvailability(ext, table, tableRaw),
		validateGeometry(ext, fc),
	}

	fmt.Println()
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
	fmt.Printf("Ledger: %d header ZIPs, %d status lines, %d diagnostics\n",
		len(ext.ZIPs), ext.Counts[domain.LineStatus], len(ext.Diagnostics))
	fmt.Printf("Artifacts: %d availability entries, %d geometry features\n",
		table.Len(), len(fc.Features))

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

func extract(store *filestore.Store) (domain.Extraction, error) {
	rc, err := store.OpenLedger()
	if err != nil {
		return domain.Extraction{}, err
	}
	defer rc.Close()
	return domain.ScanLedger(rc)
}

// ── Phase 1: Ledger ──

func validateLedger(ext domain.Extraction, strict bool) *phase {
	p := &phase{name: "Phase 1: Ledger (diagnostics)"}
	if len(ext.ZIPs) == 0 {
		p.errorf("ledger has no ZIP headers")
	}
	for _, d := range ext.Diagnostics {
		if strict {
			p.errorf("%s", d)
		} else {
			fmt.Printf("  Note: %s\n", d)
		}
	}
	return p
}

// ── Phase 2: Availability ──
// The artifact must be exactly what a fresh extraction would write.

func validateAvailability(ext domain.Extraction, table domain.Table, raw []byte) *phase {
	p := &phase{name: "Phase 2: Availability (JSON vs ledger)"}

	if diff := cmp.Diff(ext.Table, table); diff != "" {
		p.errorf("availability.json differs from ledger (-ledger +artifact):\n%s", diff)
	}

	want, err := domain.MarshalTable(ext.Table)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if !bytes.Equal(bytes.TrimSpace(want), bytes.TrimSpace(raw)) {
		p.errorf("availability.json is not in canonical form; rebuild it")
	}

	for b, m := range table {
		if !b.Valid() {
			p.errorf("unknown brand key %q", b)
		}
		for zip, s := range m {
			if s != domain.StatusAvailable && s != domain.StatusUnavailable {
				p.errorf("%s/%s: invalid status %q", b, zip, s)
			}
		}
	}
	return p
}

// ── Phase 3: Geometry ──

func validateGeometry(ext domain.Extraction, fc geo.FeatureCollection) *phase {
	p := &phase{name: "Phase 3: Geometry (features vs headers)"}

	headers := make(map[string]bool, len(ext.ZIPs))
	for _, z := range ext.ZIPs {
		headers[z] = true
	}

	present := make(map[string]bool)
	for i, f := range fc.Features {
		zip := f.Properties.ZIP
		if zip == "" {
			p.errorf("feature %d: empty zip property", i)
			continue
		}
		if !headers[zip] {
			p.errorf("feature %d: ZIP %s is not a ledger header", i, zip)
		}
		present[zip] = true
	}

	if _, err := geo.Shapes(fc); err != nil {
		p.errorf("geometry does not parse: %v", err)
	}

	var missing []string
	for _, z := range ext.ZIPs {
		if !present[z] {
			missing = append(missing, z)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		fmt.Printf("  Note: %d header ZIP(s) without geometry: %v\n", len(missing), missing)
	}
	return p
}
